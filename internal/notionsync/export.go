// Package notionsync mirrors the reading-notes library into a Notion database,
// one page per note keyed by its Note ID property.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/logger"
)

// Result counts what an export did (or would do, in a dry run).
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// ExportLibrary creates a page for every new note, updates pages of known notes,
// and archives pages whose note no longer exists. Individual page failures are
// counted and logged; only failing to list the database aborts the export.
func ExportLibrary(ctx context.Context, db NotesDatabase, databaseID string, books []domain.Book, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	if databaseID == "" {
		return res, fmt.Errorf("ExportLibrary: %w", domain.Invalid("databaseID", "must not be empty"))
	}

	pages, err := db.NotePages(ctx, databaseID)
	if err != nil {
		return res, fmt.Errorf("ExportLibrary: listing pages: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if page.NoteID != "" {
			existing[page.NoteID] = page.PageID
		}
	}

	current := make(map[string]bool)
	for _, book := range books {
		for _, note := range book.Notes {
			current[note.ID] = true
			props := NoteToNotionProperties(book, note)
			pageID, known := existing[note.ID]

			if dryRun {
				if known {
					res.Updated++
				} else {
					res.Created++
				}
				continue
			}

			if known {
				if err := db.UpdateNotePage(ctx, pageID, props); err != nil {
					log.Warn().Err(err).Str("note_id", note.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
					res.Failed++
					continue
				}
				res.Updated++
				continue
			}

			pageID, err := db.CreateNotePage(ctx, databaseID, props)
			if err != nil {
				log.Warn().Err(err).Str("note_id", note.ID).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			log.Debug().Str("note_id", note.ID).Str("page_id", pageID).Msg("Created Notion page")
			res.Created++
		}
	}

	for _, page := range pages {
		if page.NoteID != "" && current[page.NoteID] {
			continue
		}
		if dryRun {
			res.Deleted++
			continue
		}
		if err := db.ArchivePage(ctx, page.PageID); err != nil {
			log.Warn().Err(err).Str("note_id", page.NoteID).Str("page_id", page.PageID).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Deleted++
	}

	log.Info().
		Bool("dry_run", dryRun).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failed", res.Failed).
		Msg("Library export to Notion completed")
	return res, nil
}
