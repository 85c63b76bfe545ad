package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/domain"
)

// Key names one logical record in the KV.
type Key string

const (
	KeyFinancial Key = "lifeos.financial"
	KeyHabits    Key = "lifeos.habits"
	KeyProfile   Key = "lifeos.profile"
	KeyLibrary   Key = "lifeos.library"
	KeyJournal   Key = "lifeos.journal"
	KeyChat      Key = "lifeos.chat"
)

// SyncKeys lists the records that can be pushed to and pulled from remote storage.
var SyncKeys = []Key{KeyFinancial, KeyHabits, KeyProfile, KeyLibrary, KeyJournal}

// ParseKey accepts a full key or its short name ("financial", "habits", ...).
func ParseKey(s string) (Key, error) {
	for _, k := range []Key{KeyFinancial, KeyHabits, KeyProfile, KeyLibrary, KeyJournal, KeyChat} {
		if s == string(k) || s == k.Short() {
			return k, nil
		}
	}
	return "", domain.Invalid("key", fmt.Sprintf("unknown record %q", s))
}

// Short returns the key without its namespace.
func (k Key) Short() string {
	return string(k)[len("lifeos."):]
}

// Report describes what happened while loading one record.
type Report struct {
	Key       Key
	Missing   bool
	Coercions []string
	// Err is set when the stored value was unreadable and the default was used instead.
	Err error
}

// Store reads and writes the six records through a KV.
// Reads never fail: unreadable data is replaced by the record's default and reported.
type Store struct {
	kv  KV
	log zerolog.Logger
}

func New(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func load[T any](s *Store, key Key, def T, sanitize func([]byte) (T, []string, error)) (T, Report) {
	rep := Report{Key: key}

	raw, found, err := s.kv.Get(string(key))
	if err != nil {
		rep.Err = fmt.Errorf("load %s: reading kv: %w", key, err)
		s.log.Error().Err(err).Str("key", string(key)).Msg("Failed to read record, using default")
		return def, rep
	}
	if !found {
		rep.Missing = true
		return def, rep
	}

	v, notes, err := sanitize([]byte(raw))
	rep.Coercions = notes
	if err != nil {
		rep.Err = err
		s.log.Warn().Err(err).Str("key", string(key)).Msg("Stored record is corrupt, using default")
		return def, rep
	}
	if len(notes) > 0 {
		s.log.Warn().
			Str("key", string(key)).
			Int("count", len(notes)).
			Strs("coercions", notes).
			Msg("Repaired stored record")
	}
	return v, rep
}

func (s *Store) LoadFinancial() (domain.FinancialRecord, Report) {
	return load(s, KeyFinancial, domain.DefaultFinancialRecord(), SanitizeFinancial)
}

func (s *Store) LoadHabits() ([]domain.Habit, Report) {
	return load(s, KeyHabits, []domain.Habit{}, SanitizeHabits)
}

func (s *Store) LoadProfile() (domain.UserProfile, Report) {
	return load(s, KeyProfile, domain.DefaultProfile(), SanitizeProfile)
}

func (s *Store) LoadLibrary() ([]domain.Book, Report) {
	return load(s, KeyLibrary, []domain.Book{}, SanitizeLibrary)
}

func (s *Store) LoadJournal() ([]domain.JournalEntry, Report) {
	return load(s, KeyJournal, []domain.JournalEntry{}, SanitizeJournal)
}

func (s *Store) LoadChat() ([]domain.ChatMessage, Report) {
	return load(s, KeyChat, []domain.ChatMessage{}, SanitizeChat)
}

// Save serializes v and commits it under key before returning.
func (s *Store) Save(key Key, v interface{}) error {
	data, err := Encode(key, v)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err := s.kv.Set(string(key), string(data)); err != nil {
		return fmt.Errorf("Save: writing %s: %w", key, err)
	}
	s.log.Debug().Str("key", string(key)).Int("bytes", len(data)).Msg("Record saved")
	return nil
}

// Raw returns the persisted bytes of a record. Absent records yield ErrNotFound.
func (s *Store) Raw(key Key) ([]byte, error) {
	raw, found, err := s.kv.Get(string(key))
	if err != nil {
		return nil, fmt.Errorf("Raw: reading %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("Raw: %s: %w", key, domain.ErrNotFound)
	}
	return []byte(raw), nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// Sanitize repairs data as if it had been read from key.
// The returned value has the record's concrete type (domain.FinancialRecord, []domain.Habit, ...).
func Sanitize(key Key, data []byte) (interface{}, []string, error) {
	switch key {
	case KeyFinancial:
		return SanitizeFinancial(data)
	case KeyHabits:
		return SanitizeHabits(data)
	case KeyProfile:
		return SanitizeProfile(data)
	case KeyLibrary:
		return SanitizeLibrary(data)
	case KeyJournal:
		return SanitizeJournal(data)
	case KeyChat:
		return SanitizeChat(data)
	}
	return nil, nil, fmt.Errorf("Sanitize: %w", domain.Invalid("key", string(key)))
}

// Encode serializes a record. Nil collections are written as [] and
// unmodelled financial fields are written back next to the known ones.
func Encode(key Key, v interface{}) ([]byte, error) {
	switch rec := v.(type) {
	case domain.FinancialRecord:
		rec.EnsureCollections()
		return encodeFinancial(rec)
	case *domain.FinancialRecord:
		if rec == nil {
			return nil, errors.New("encoding financial: nil record")
		}
		return Encode(key, *rec)
	case []domain.Habit:
		if rec == nil {
			rec = []domain.Habit{}
		}
		v = rec
	case []domain.Book:
		rec = append([]domain.Book{}, rec...)
		for i := range rec {
			if rec[i].Notes == nil {
				rec[i].Notes = []domain.NeuralNote{}
			}
		}
		v = rec
	case []domain.JournalEntry:
		if rec == nil {
			rec = []domain.JournalEntry{}
		}
		v = rec
	case []domain.ChatMessage:
		if rec == nil {
			rec = []domain.ChatMessage{}
		}
		v = rec
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return data, nil
}

func encodeFinancial(rec domain.FinancialRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding financial: %w", err)
	}
	if len(rec.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("encoding financial: merging extra fields: %w", err)
	}
	for k, v := range rec.Extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
