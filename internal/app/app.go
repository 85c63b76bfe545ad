// Package app owns the committed application state and serializes every mutation.
//
// Engines compute an updated copy of a record; App persists it through the store
// and only then swaps it in, so a failed save leaves memory and disk in agreement.
// Network calls (assistant, sync, exports) never run while the lock is held.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/assistant"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/dispatch"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/gcs"
	"github.com/dvloznov/lifeos/internal/habits"
	"github.com/dvloznov/lifeos/internal/ledger"
	"github.com/dvloznov/lifeos/internal/metrics"
	"github.com/dvloznov/lifeos/internal/notionsync"
	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/syncer"
)

// ErrNotConfigured is returned by integrations that were not set up at startup.
var ErrNotConfigured = errors.New("integration not configured")

// LedgerExporter ships transactions to an analytics warehouse.
type LedgerExporter interface {
	ExportTransactions(ctx context.Context, txs []domain.Transaction) (int, error)
}

// Deps are the collaborators App is built from. Optional integrations may be nil.
type Deps struct {
	Store     *store.Store
	Ledger    *ledger.Engine
	Assistant *assistant.Service
	Sections  []config.Section
	Log       zerolog.Logger

	// Blobs enables push and pull.
	Blobs          gcs.BlobStore
	NetworkTimeout time.Duration

	Warehouse LedgerExporter

	Notion     notionsync.NotesDatabase
	NotionDBID string
}

// App is the single owner of the six records.
type App struct {
	mu sync.Mutex

	financial domain.FinancialRecord
	habits    []domain.Habit
	profile   domain.UserProfile
	library   []domain.Book
	journal   []domain.JournalEntry
	chat      []domain.ChatMessage

	store      *store.Store
	ledger     *ledger.Engine
	assistant  *assistant.Service
	dispatcher *dispatch.Dispatcher
	sync       *syncer.Adapter
	warehouse  LedgerExporter
	notion     notionsync.NotesDatabase
	notionDB   string
	log        zerolog.Logger

	newID func() string
	now   func() time.Time
}

// New loads every record through the store and returns what each load reported.
func New(deps Deps) (*App, []store.Report) {
	a := &App{
		store:     deps.Store,
		ledger:    deps.Ledger,
		assistant: deps.Assistant,
		warehouse: deps.Warehouse,
		notion:    deps.Notion,
		notionDB:  deps.NotionDBID,
		log:       deps.Log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	if a.ledger == nil {
		a.ledger = ledger.NewEngine(nil)
	}
	if a.assistant == nil {
		a.assistant = assistant.NewService(nil, config.DefaultNetworkTimeout, deps.Log)
	}

	sections := deps.Sections
	if sections == nil {
		sections = config.DefaultSections()
	}
	a.dispatcher = dispatch.New(sections, a, deps.Log)

	if deps.Blobs != nil {
		timeout := deps.NetworkTimeout
		if timeout == 0 {
			timeout = config.DefaultNetworkTimeout
		}
		a.sync = syncer.New(deps.Blobs, a, timeout, deps.Log)
	}

	reports := make([]store.Report, 0, 6)
	var rep store.Report
	a.financial, rep = a.store.LoadFinancial()
	reports = append(reports, rep)
	a.habits, rep = a.store.LoadHabits()
	reports = append(reports, rep)
	a.profile, rep = a.store.LoadProfile()
	reports = append(reports, rep)
	a.library, rep = a.store.LoadLibrary()
	reports = append(reports, rep)
	a.journal, rep = a.store.LoadJournal()
	reports = append(reports, rep)
	a.chat, rep = a.store.LoadChat()
	reports = append(reports, rep)

	a.log.Info().
		Int("transactions", len(a.financial.Transactions)).
		Int("habits", len(a.habits)).
		Int("books", len(a.library)).
		Msg("Application state loaded")
	return a, reports
}

// Today is the current calendar day in the configured location.
func (a *App) Today() civil.Date {
	return a.ledger.Today()
}

// State is a point-in-time copy of every record.
type State struct {
	Financial domain.FinancialRecord `json:"financial"`
	Habits    []domain.Habit         `json:"habits"`
	Profile   domain.UserProfile     `json:"profile"`
	Library   []domain.Book          `json:"library"`
	Journal   []domain.JournalEntry  `json:"journal"`
	Chat      []domain.ChatMessage   `json:"chat"`
}

// State returns copies the caller may keep. Habit streaks are refreshed for today.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Financial: a.financial.Clone(),
		Habits:    a.habitsForDisplay(),
		Profile:   a.profile,
		Library:   copyBooks(a.library),
		Journal:   append([]domain.JournalEntry{}, a.journal...),
		Chat:      append([]domain.ChatMessage{}, a.chat...),
	}
}

// Summary computes the dashboard metrics from the committed records.
func (a *App) Summary() metrics.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return metrics.Summarize(a.financial, a.habitsForDisplay(), a.profile, a.Today())
}

func (a *App) habitsForDisplay() []domain.Habit {
	today := a.Today()
	out := make([]domain.Habit, len(a.habits))
	for i, h := range a.habits {
		out[i] = habits.Refresh(h, today)
	}
	return out
}

func (a *App) snapshot() assistant.Snapshot {
	return assistant.NewSnapshot(a.financial, a.habitsForDisplay(), a.library, a.profile)
}

// commitFinancial persists rec and swaps it in. The stored systemic risk follows
// the new record; failing to save it is logged since the ledger is already committed.
func (a *App) commitFinancial(rec domain.FinancialRecord) error {
	if err := a.store.Save(store.KeyFinancial, rec); err != nil {
		return err
	}
	a.financial = rec

	risk := metrics.RiskScore(rec)
	if risk == a.profile.SystemicRisk {
		return nil
	}
	p := a.profile
	p.SystemicRisk = risk
	if err := a.commitProfile(p); err != nil {
		a.log.Warn().Err(err).Int("risk", risk).Msg("Failed to store systemic risk")
	}
	return nil
}

func (a *App) commitHabits(hs []domain.Habit) error {
	if err := a.store.Save(store.KeyHabits, hs); err != nil {
		return err
	}
	a.habits = hs
	return nil
}

func (a *App) commitProfile(p domain.UserProfile) error {
	if err := a.store.Save(store.KeyProfile, p); err != nil {
		return err
	}
	a.profile = p
	return nil
}

func (a *App) commitLibrary(books []domain.Book) error {
	if err := a.store.Save(store.KeyLibrary, books); err != nil {
		return err
	}
	a.library = books
	return nil
}

func (a *App) commitJournal(entries []domain.JournalEntry) error {
	if err := a.store.Save(store.KeyJournal, entries); err != nil {
		return err
	}
	a.journal = entries
	return nil
}

func (a *App) commitChat(msgs []domain.ChatMessage) error {
	if err := a.store.Save(store.KeyChat, msgs); err != nil {
		return err
	}
	a.chat = msgs
	return nil
}

// Raw serializes the committed record under key.
func (a *App) Raw(key store.Key) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.record(key)
	if err != nil {
		return nil, fmt.Errorf("Raw: %w", err)
	}
	return store.Encode(key, v)
}

func (a *App) record(key store.Key) (interface{}, error) {
	switch key {
	case store.KeyFinancial:
		return a.financial, nil
	case store.KeyHabits:
		return a.habits, nil
	case store.KeyProfile:
		return a.profile, nil
	case store.KeyLibrary:
		return a.library, nil
	case store.KeyJournal:
		return a.journal, nil
	case store.KeyChat:
		return a.chat, nil
	}
	return nil, domain.Invalid("key", string(key))
}

// Replace commits a whole sanitized record, as produced by store.Sanitize for key.
func (a *App) Replace(key store.Key, v interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	switch rec := v.(type) {
	case domain.FinancialRecord:
		err = a.expect(key, store.KeyFinancial, func() error { return a.commitFinancial(rec) })
	case []domain.Habit:
		err = a.expect(key, store.KeyHabits, func() error { return a.commitHabits(rec) })
	case domain.UserProfile:
		err = a.expect(key, store.KeyProfile, func() error { return a.commitProfile(rec) })
	case []domain.Book:
		err = a.expect(key, store.KeyLibrary, func() error { return a.commitLibrary(rec) })
	case []domain.JournalEntry:
		err = a.expect(key, store.KeyJournal, func() error { return a.commitJournal(rec) })
	case []domain.ChatMessage:
		err = a.expect(key, store.KeyChat, func() error { return a.commitChat(rec) })
	default:
		err = domain.Invalid("record", fmt.Sprintf("unexpected type %T", v))
	}
	if err != nil {
		return fmt.Errorf("Replace: %w", err)
	}
	return nil
}

func (a *App) expect(got, want store.Key, commit func() error) error {
	if got != want {
		return domain.Invalid("key", fmt.Sprintf("%s does not hold a %s record", got, want.Short()))
	}
	return commit()
}

// Close writes every record once more and closes the store.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, key := range []store.Key{store.KeyFinancial, store.KeyHabits, store.KeyProfile, store.KeyLibrary, store.KeyJournal, store.KeyChat} {
		v, _ := a.record(key)
		if err := a.store.Save(key, v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("Close: %w", err))
	}
	return errors.Join(errs...)
}

func copyBooks(books []domain.Book) []domain.Book {
	out := make([]domain.Book, len(books))
	for i, b := range books {
		b.Notes = append([]domain.NeuralNote{}, b.Notes...)
		out[i] = b
	}
	return out
}

var _ syncer.Local = (*App)(nil)
var _ dispatch.Actions = (*App)(nil)
