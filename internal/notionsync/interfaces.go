package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotePage links a page of the notes database to the note it mirrors.
// NoteID is empty for pages not created by the export.
type NotePage struct {
	PageID string
	NoteID string
}

// NotesDatabase is the part of Notion the library export needs.
type NotesDatabase interface {
	// NotePages lists every live page of the database.
	NotePages(ctx context.Context, databaseID string) ([]NotePage, error)

	// CreateNotePage adds a page and returns its id.
	CreateNotePage(ctx context.Context, databaseID string, properties notionapi.Properties) (string, error)

	// UpdateNotePage overwrites the given properties of a page.
	UpdateNotePage(ctx context.Context, pageID string, properties notionapi.Properties) error

	// ArchivePage removes a page whose note no longer exists.
	ArchivePage(ctx context.Context, pageID string) error
}
