package store

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
)

func newTestStore(t *testing.T, kv KV) *Store {
	t.Helper()
	s := New(kv, zerolog.New(io.Discard))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_MissingRecordsUseDefaults(t *testing.T) {
	s := newTestStore(t, NewMemoryKV(nil))

	rec, rep := s.LoadFinancial()
	if !rep.Missing || rep.Err != nil {
		t.Errorf("report = %+v", rep)
	}
	if rec.Transactions == nil || !rec.BankA.IsZero() {
		t.Errorf("rec = %+v", rec)
	}

	p, _ := s.LoadProfile()
	if p.Level != 1 || p.Rank != "Initiate" {
		t.Errorf("profile = %+v", p)
	}

	habits, _ := s.LoadHabits()
	if habits == nil || len(habits) != 0 {
		t.Errorf("habits = %v", habits)
	}
}

func TestStore_CorruptRecordIsReportedNotReturned(t *testing.T) {
	s := newTestStore(t, NewMemoryKV(map[string]string{
		string(KeyFinancial): "not json at all",
	}))

	rec, rep := s.LoadFinancial()
	if !errors.Is(rep.Err, domain.ErrCorruptData) {
		t.Fatalf("report err = %v, want ErrCorruptData", rep.Err)
	}
	if len(rec.Transactions) != 0 {
		t.Errorf("expected default record, got %+v", rec)
	}
}

func TestStore_SaveAndReloadBolt(t *testing.T) {
	kv, err := OpenBolt(filepath.Join(t.TempDir(), "nested", "lifeos.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	s := newTestStore(t, kv)

	rec := domain.DefaultFinancialRecord()
	rec.BankC = decimal.RequireFromString("80.10")
	rec.Transactions = append(rec.Transactions, domain.Transaction{
		ID:          "t1",
		Date:        day("2024-01-02"),
		Amount:      decimal.RequireFromString("-19.90"),
		Description: "groceries",
		Category:    domain.CategoryNeeds,
		Bank:        domain.BankC,
	})
	if err := s.Save(KeyFinancial, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, rep := s.LoadFinancial()
	if rep.Err != nil || len(rep.Coercions) != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if !got.BankC.Equal(rec.BankC) {
		t.Errorf("BankC = %s, want %s", got.BankC, rec.BankC)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Date != day("2024-01-02") {
		t.Errorf("transactions = %+v", got.Transactions)
	}
	if !got.Transactions[0].Amount.Equal(decimal.RequireFromString("-19.9")) {
		t.Errorf("amount = %s", got.Transactions[0].Amount)
	}
}

func TestStore_SaveNilCollections(t *testing.T) {
	kv := NewMemoryKV(nil)
	s := newTestStore(t, kv)

	if err := s.Save(KeyHabits, []domain.Habit(nil)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	raw, err := s.Raw(KeyHabits)
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("Raw() = %s, want []", raw)
	}

	if _, err := s.Raw(KeyJournal); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Raw(absent) error = %v, want ErrNotFound", err)
	}
}

func TestParseKey(t *testing.T) {
	for _, in := range []string{"financial", "lifeos.financial"} {
		k, err := ParseKey(in)
		if err != nil || k != KeyFinancial {
			t.Errorf("ParseKey(%q) = %q, %v", in, k, err)
		}
	}
	if _, err := ParseKey("wallet"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseKey(wallet) error = %v, want ErrValidation", err)
	}
}
