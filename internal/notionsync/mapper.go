package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/lifeos/internal/domain"
)

// Property names of the notes database.
const (
	PropConcept = "Concept"
	PropNoteID  = "Note ID"
	PropBook    = "Book"
	PropAuthor  = "Author"
	PropStatus  = "Status"
	PropProblem = "Problem"
	PropAction  = "Action"
	PropExample = "Example"
)

// notionTextLimit is the maximum length of one rich text object.
const notionTextLimit = 2000

func richText(s string) []notionapi.RichText {
	if len(s) > notionTextLimit {
		s = s[:notionTextLimit]
	}
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

// NoteToNotionProperties maps one note of book onto a page of the notes database.
// Empty optional fields are left out so edits in Notion are not blanked.
func NoteToNotionProperties(book domain.Book, note domain.NeuralNote) notionapi.Properties {
	concept := note.Concept
	if concept == "" {
		concept = "(untitled note)"
	}

	props := notionapi.Properties{
		PropConcept: notionapi.TitleProperty{Title: richText(concept)},
		PropNoteID:  notionapi.RichTextProperty{RichText: richText(note.ID)},
		PropBook:    notionapi.RichTextProperty{RichText: richText(book.Title)},
	}

	if book.Author != "" {
		props[PropAuthor] = notionapi.RichTextProperty{RichText: richText(book.Author)}
	}
	if book.Status != "" {
		props[PropStatus] = notionapi.SelectProperty{Select: notionapi.Option{Name: book.Status}}
	}
	if note.Problem != "" {
		props[PropProblem] = notionapi.RichTextProperty{RichText: richText(note.Problem)}
	}
	if note.Action != "" {
		props[PropAction] = notionapi.RichTextProperty{RichText: richText(note.Action)}
	}
	if note.Example != "" {
		props[PropExample] = notionapi.RichTextProperty{RichText: richText(note.Example)}
	}
	return props
}

// extractNoteID returns the Note ID property of a page, or "" when absent.
func extractNoteID(page notionapi.Page) string {
	prop, ok := page.Properties[PropNoteID]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	return rt.RichText[0].PlainText
}
