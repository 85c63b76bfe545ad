package notionsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/logger"
)

// MockNotesDatabase is a mock implementation of NotesDatabase for testing
type MockNotesDatabase struct {
	Pages    []NotePage
	created  []notionapi.Properties
	updated  map[string]notionapi.Properties
	archived []string

	NotePagesFunc      func(ctx context.Context, databaseID string) ([]NotePage, error)
	CreateNotePageFunc func(ctx context.Context, databaseID string, properties notionapi.Properties) (string, error)
}

func (m *MockNotesDatabase) NotePages(ctx context.Context, databaseID string) ([]NotePage, error) {
	if m.NotePagesFunc != nil {
		return m.NotePagesFunc(ctx, databaseID)
	}
	return m.Pages, nil
}

func (m *MockNotesDatabase) CreateNotePage(ctx context.Context, databaseID string, properties notionapi.Properties) (string, error) {
	if m.CreateNotePageFunc != nil {
		return m.CreateNotePageFunc(ctx, databaseID, properties)
	}
	m.created = append(m.created, properties)
	return "new-page", nil
}

func (m *MockNotesDatabase) UpdateNotePage(ctx context.Context, pageID string, properties notionapi.Properties) error {
	if m.updated == nil {
		m.updated = map[string]notionapi.Properties{}
	}
	m.updated[pageID] = properties
	return nil
}

func (m *MockNotesDatabase) ArchivePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func notePage(pageID, noteID string) notionapi.Page {
	props := notionapi.Properties{}
	if noteID != "" {
		props[PropNoteID] = &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{PlainText: noteID}},
		}
	}
	return notionapi.Page{ID: notionapi.ObjectID(pageID), Properties: props}
}

func testCtx() context.Context {
	return logger.WithContext(context.Background(), zerolog.New(io.Discard))
}

func library() []domain.Book {
	return []domain.Book{
		{
			ID: "b1", Title: "Deep Work", Author: "Cal Newport", Status: domain.BookCompleted,
			Notes: []domain.NeuralNote{
				{ID: "n1", Concept: "Focus blocks", Action: "Block 9-11"},
				{ID: "n2", Concept: "Shutdown ritual"},
			},
		},
		{ID: "b2", Title: "Empty", Status: domain.BookReading},
	}
}

func TestExportLibrary(t *testing.T) {
	db := &MockNotesDatabase{
		Pages: []NotePage{{PageID: "p1", NoteID: "n1"}, {PageID: "p-legacy"}, {PageID: "p9", NoteID: "n9"}},
	}

	res, err := ExportLibrary(testCtx(), db, "db", library(), false)
	if err != nil {
		t.Fatalf("ExportLibrary() error = %v", err)
	}

	want := Result{Created: 1, Updated: 1, Deleted: 2}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if _, ok := db.updated["p1"]; !ok {
		t.Error("known note n1 should update page p1")
	}
	if len(db.archived) != 2 || db.archived[0] != "p-legacy" || db.archived[1] != "p9" {
		t.Errorf("archived = %v", db.archived)
	}
}

func TestExportLibrary_DryRun(t *testing.T) {
	db := &MockNotesDatabase{Pages: []NotePage{{PageID: "p1", NoteID: "n1"}, {PageID: "p2", NoteID: "gone"}}}

	res, err := ExportLibrary(testCtx(), db, "db", library(), true)
	if err != nil {
		t.Fatalf("ExportLibrary() error = %v", err)
	}
	if res != (Result{Created: 1, Updated: 1, Deleted: 1}) {
		t.Errorf("result = %+v", res)
	}
	if len(db.created) != 0 || len(db.updated) != 0 || len(db.archived) != 0 {
		t.Error("dry run must not call the API")
	}
}

func TestExportLibrary_Failures(t *testing.T) {
	db := &MockNotesDatabase{
		CreateNotePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	res, err := ExportLibrary(testCtx(), db, "db", library(), false)
	if err != nil {
		t.Fatalf("page failures must not abort the export: %v", err)
	}
	if res.Failed != 2 || res.Created != 0 {
		t.Errorf("result = %+v", res)
	}

	db = &MockNotesDatabase{
		NotePagesFunc: func(ctx context.Context, databaseID string) ([]NotePage, error) {
			return nil, errors.New("unauthorized")
		},
	}
	if _, err := ExportLibrary(testCtx(), db, "db", library(), false); err == nil {
		t.Error("expected listing failure to abort")
	}
	if _, err := ExportLibrary(testCtx(), db, "", library(), false); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing database error = %v", err)
	}
}

func TestCollectPages(t *testing.T) {
	archived := notePage("p-old", "n0")
	archived.Archived = true
	batches := [][]notionapi.Page{
		{notePage("p1", "n1"), archived},
		{notePage("p2", ""), notePage("p3", "n3")},
	}

	var cursors []notionapi.Cursor
	calls := 0
	pages, err := collectPages(context.Background(), func(ctx context.Context, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
		if req.PageSize != queryPageSize {
			t.Errorf("PageSize = %d", req.PageSize)
		}
		cursors = append(cursors, req.StartCursor)
		i := calls
		calls++
		return &notionapi.DatabaseQueryResponse{
			Results:    batches[i],
			HasMore:    i < len(batches)-1,
			NextCursor: notionapi.Cursor(fmt.Sprintf("c%d", i+1)),
		}, nil
	})
	if err != nil {
		t.Fatalf("collectPages() error = %v", err)
	}

	want := []NotePage{{PageID: "p1", NoteID: "n1"}, {PageID: "p2"}, {PageID: "p3", NoteID: "n3"}}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %+v, want %+v", pages, want)
	}
	if len(cursors) != 2 || cursors[0] != "" || cursors[1] != "c1" {
		t.Errorf("cursors = %v", cursors)
	}

	boom := errors.New("unauthorized")
	_, err = collectPages(context.Background(), func(ctx context.Context, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestNoteToNotionProperties(t *testing.T) {
	book := library()[0]
	props := NoteToNotionProperties(book, book.Notes[0])

	title, ok := props[PropConcept].(notionapi.TitleProperty)
	if !ok || title.Title[0].Text.Content != "Focus blocks" {
		t.Errorf("Concept = %#v", props[PropConcept])
	}
	id, ok := props[PropNoteID].(notionapi.RichTextProperty)
	if !ok || id.RichText[0].Text.Content != "n1" {
		t.Errorf("Note ID = %#v", props[PropNoteID])
	}
	if _, ok := props[PropExample]; ok {
		t.Error("empty example should be omitted")
	}
	status, ok := props[PropStatus].(notionapi.SelectProperty)
	if !ok || status.Select.Name != domain.BookCompleted {
		t.Errorf("Status = %#v", props[PropStatus])
	}

	untitled := NoteToNotionProperties(book, domain.NeuralNote{ID: "x"})
	if title := untitled[PropConcept].(notionapi.TitleProperty); title.Title[0].Text.Content != "(untitled note)" {
		t.Errorf("untitled Concept = %q", title.Title[0].Text.Content)
	}
}
