package app

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/lifeos/internal/domain"
)

// AddBook adds a book in the reading state.
func (a *App) AddBook(ctx context.Context, title, author string) (domain.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Book{}, fmt.Errorf("AddBook: %w", domain.Invalid("title", "must not be empty"))
	}
	b := domain.Book{
		ID:     a.newID(),
		Title:  title,
		Author: strings.TrimSpace(author),
		Status: domain.BookReading,
		Notes:  []domain.NeuralNote{},
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := append(copyBooks(a.library), b)
	if err := a.commitLibrary(next); err != nil {
		return domain.Book{}, fmt.Errorf("AddBook: %w", err)
	}
	return b, nil
}

// SetBookStatus moves a book between reading and completed.
func (a *App) SetBookStatus(ctx context.Context, id, status string) (domain.Book, error) {
	if status != domain.BookReading && status != domain.BookCompleted {
		return domain.Book{}, fmt.Errorf("SetBookStatus: %w",
			domain.Invalid("status", fmt.Sprintf("must be %s or %s", domain.BookReading, domain.BookCompleted)))
	}
	return a.updateBook("SetBookStatus", id, func(b *domain.Book) error {
		b.Status = status
		return nil
	})
}

func (a *App) DeleteBook(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := findBook(a.library, id)
	if idx < 0 {
		return fmt.Errorf("DeleteBook: book %s: %w", id, domain.ErrNotFound)
	}
	next := copyBooks(a.library)
	next = append(next[:idx], next[idx+1:]...)
	if err := a.commitLibrary(next); err != nil {
		return fmt.Errorf("DeleteBook: %w", err)
	}
	return nil
}

// AddNote appends a note to book bookID and returns it with its new id.
func (a *App) AddNote(ctx context.Context, bookID string, note domain.NeuralNote) (domain.NeuralNote, error) {
	note, err := cleanNote(note)
	if err != nil {
		return domain.NeuralNote{}, fmt.Errorf("AddNote: %w", err)
	}
	note.ID = a.newID()

	_, err = a.updateBook("AddNote", bookID, func(b *domain.Book) error {
		b.Notes = append(b.Notes, note)
		return nil
	})
	if err != nil {
		return domain.NeuralNote{}, err
	}
	return note, nil
}

// UpdateNote replaces the content of note noteID, keeping its id.
func (a *App) UpdateNote(ctx context.Context, bookID, noteID string, note domain.NeuralNote) (domain.NeuralNote, error) {
	note, err := cleanNote(note)
	if err != nil {
		return domain.NeuralNote{}, fmt.Errorf("UpdateNote: %w", err)
	}
	note.ID = noteID

	_, err = a.updateBook("UpdateNote", bookID, func(b *domain.Book) error {
		idx := findNote(b.Notes, noteID)
		if idx < 0 {
			return fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
		}
		b.Notes[idx] = note
		return nil
	})
	if err != nil {
		return domain.NeuralNote{}, err
	}
	return note, nil
}

func (a *App) DeleteNote(ctx context.Context, bookID, noteID string) error {
	_, err := a.updateBook("DeleteNote", bookID, func(b *domain.Book) error {
		idx := findNote(b.Notes, noteID)
		if idx < 0 {
			return fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
		}
		b.Notes = append(b.Notes[:idx], b.Notes[idx+1:]...)
		return nil
	})
	return err
}

// updateBook applies fn to a copy of book id and commits the library.
func (a *App) updateBook(op, id string, fn func(*domain.Book) error) (domain.Book, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := findBook(a.library, id)
	if idx < 0 {
		return domain.Book{}, fmt.Errorf("%s: book %s: %w", op, id, domain.ErrNotFound)
	}

	next := copyBooks(a.library)
	if err := fn(&next[idx]); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := a.commitLibrary(next); err != nil {
		return domain.Book{}, fmt.Errorf("%s: %w", op, err)
	}
	return next[idx], nil
}

func cleanNote(n domain.NeuralNote) (domain.NeuralNote, error) {
	n.Concept = strings.TrimSpace(n.Concept)
	n.Problem = strings.TrimSpace(n.Problem)
	n.Action = strings.TrimSpace(n.Action)
	n.Example = strings.TrimSpace(n.Example)
	if n.Concept == "" {
		return n, domain.Invalid("concept", "must not be empty")
	}
	return n, nil
}

func findBook(books []domain.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func findNote(notes []domain.NeuralNote, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// AddJournalEntry stores a dated entry, newest first. An empty date means today.
func (a *App) AddJournalEntry(ctx context.Context, content, mood, date string) (domain.JournalEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.JournalEntry{}, fmt.Errorf("AddJournalEntry: %w", domain.Invalid("content", "must not be empty"))
	}
	day := a.Today()
	if s := strings.TrimSpace(date); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil || !d.IsValid() {
			return domain.JournalEntry{}, fmt.Errorf("AddJournalEntry: %w", domain.Invalid("date", fmt.Sprintf("%q is not YYYY-MM-DD", s)))
		}
		day = d
	}
	e := domain.JournalEntry{ID: a.newID(), Date: day, Content: content, Mood: strings.TrimSpace(mood)}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]domain.JournalEntry, 0, len(a.journal)+1)
	next = append(next, e)
	next = append(next, a.journal...)
	if err := a.commitJournal(next); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("AddJournalEntry: %w", err)
	}
	return e, nil
}

// ProfileUpdate carries the user-editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	Name      *string     `json:"name,omitempty"`
	Mission   *string     `json:"mission,omitempty"`
	BirthDate *civil.Date `json:"birthDate,omitempty"`
}

// UpdateProfile edits the descriptive profile fields. XP, level and rank are not editable.
func (a *App) UpdateProfile(ctx context.Context, u ProfileUpdate) (domain.UserProfile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.profile
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return p, fmt.Errorf("UpdateProfile: %w", domain.Invalid("name", "must not be empty"))
		}
		p.Name = name
	}
	if u.Mission != nil {
		p.Mission = strings.TrimSpace(*u.Mission)
	}
	if u.BirthDate != nil {
		if !u.BirthDate.IsValid() || u.BirthDate.After(a.Today()) {
			return a.profile, fmt.Errorf("UpdateProfile: %w", domain.Invalid("birthDate", "must be a past date"))
		}
		d := *u.BirthDate
		p.BirthDate = &d
	}
	if err := a.commitProfile(p); err != nil {
		return a.profile, fmt.Errorf("UpdateProfile: %w", err)
	}
	return p, nil
}
