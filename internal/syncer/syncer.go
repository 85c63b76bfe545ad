// Package syncer pushes whole records to a remote blob store and pulls them back
// after an explicit confirmation. The last writer wins; there is no field-level merge.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/gcs"
	"github.com/dvloznov/lifeos/internal/store"
)

// Local is the committed application state the adapter reads from and replaces.
type Local interface {
	// Raw returns the serialized committed record.
	Raw(key store.Key) ([]byte, error)
	// Replace commits a sanitized record pulled from remote storage.
	Replace(key store.Key, v interface{}) error
}

// ConfirmFunc is shown the incoming data and decides whether it overwrites the local record.
type ConfirmFunc func(Preview) bool

// Preview describes a fetched remote record before it is applied.
type Preview struct {
	Key       store.Key `json:"key"`
	Blob      string    `json:"blob"`
	Bytes     int       `json:"bytes"`
	Items     int       `json:"items"`
	Coercions []string  `json:"coercions,omitempty"`
}

// Adapter moves records between Local and a BlobStore.
type Adapter struct {
	blobs   gcs.BlobStore
	local   Local
	timeout time.Duration
	log     zerolog.Logger
}

func New(blobs gcs.BlobStore, local Local, timeout time.Duration, log zerolog.Logger) *Adapter {
	return &Adapter{blobs: blobs, local: local, timeout: timeout, log: log}
}

// BlobName is the fixed remote name of a record.
func BlobName(key store.Key) string {
	return "lifeos-" + key.Short() + ".json"
}

func syncable(key store.Key) error {
	for _, k := range store.SyncKeys {
		if k == key {
			return nil
		}
	}
	return domain.Invalid("key", fmt.Sprintf("%s is not synced", key))
}

// Push uploads the whole committed record, replacing any previous blob of the same name.
func (a *Adapter) Push(ctx context.Context, key store.Key) error {
	if err := syncable(key); err != nil {
		return fmt.Errorf("Push: %w", err)
	}

	data, err := a.local.Raw(key)
	if err != nil {
		return fmt.Errorf("Push: reading %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	name := BlobName(key)
	if err := a.blobs.PutNamed(ctx, name, data); err != nil {
		a.log.Error().Err(err).Str("key", string(key)).Str("blob", name).Msg("Push failed")
		return fmt.Errorf("Push: %s: %w: %w", name, domain.ErrNetwork, err)
	}

	a.log.Info().Str("key", string(key)).Str("blob", name).Int("bytes", len(data)).Msg("Record pushed")
	return nil
}

// PushAll pushes every synced record and reports all failures together.
func (a *Adapter) PushAll(ctx context.Context) error {
	var errs []error
	for _, key := range store.SyncKeys {
		if err := a.Push(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pull fetches the remote record, asks confirm, and only then replaces the local record.
// Nothing local changes unless confirm returns true and the data passes validation.
func (a *Adapter) Pull(ctx context.Context, key store.Key, confirm ConfirmFunc) (Preview, error) {
	if err := syncable(key); err != nil {
		return Preview{}, fmt.Errorf("Pull: %w", err)
	}

	name := BlobName(key)
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	data, err := a.blobs.GetNamed(fetchCtx, name)
	cancel()
	if errors.Is(err, domain.ErrNotFound) {
		return Preview{}, fmt.Errorf("Pull: %s: %w", name, err)
	}
	if err != nil {
		a.log.Error().Err(err).Str("key", string(key)).Str("blob", name).Msg("Pull failed")
		return Preview{}, fmt.Errorf("Pull: %s: %w: %w", name, domain.ErrNetwork, err)
	}

	if err := CheckShape(key, data); err != nil {
		return Preview{}, fmt.Errorf("Pull: %s: %w", name, err)
	}

	v, notes, err := store.Sanitize(key, data)
	if err != nil {
		return Preview{}, fmt.Errorf("Pull: %s: %w", name, err)
	}

	preview := Preview{Key: key, Blob: name, Bytes: len(data), Items: countItems(v), Coercions: notes}
	if confirm == nil || !confirm(preview) {
		a.log.Info().Str("key", string(key)).Msg("Pull declined")
		return preview, fmt.Errorf("Pull: %s: %w", name, domain.ErrPullDeclined)
	}

	if err := a.local.Replace(key, v); err != nil {
		return preview, fmt.Errorf("Pull: applying %s: %w", key, err)
	}

	a.log.Info().
		Str("key", string(key)).
		Int("items", preview.Items).
		Int("coercions", len(notes)).
		Msg("Record pulled")
	return preview, nil
}

// CheckShape rejects remote data that is not valid JSON of the record's top-level kind.
// A financial record must also carry a transactions array.
func CheckShape(key store.Key, data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptData, err)
	}

	switch key {
	case store.KeyFinancial:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: financial record is not an object", domain.ErrCorruptData)
		}
		if _, ok := obj["transactions"].([]interface{}); !ok {
			return fmt.Errorf("%w: financial record has no transactions array", domain.ErrCorruptData)
		}
	case store.KeyProfile:
		if _, ok := v.(map[string]interface{}); !ok {
			return fmt.Errorf("%w: profile is not an object", domain.ErrCorruptData)
		}
	case store.KeyHabits:
		switch h := v.(type) {
		case []interface{}:
		case map[string]interface{}:
			if _, ok := h["habits"].([]interface{}); !ok {
				return fmt.Errorf("%w: habits object has no habits array", domain.ErrCorruptData)
			}
		default:
			return fmt.Errorf("%w: habits is not an array", domain.ErrCorruptData)
		}
	default:
		if _, ok := v.([]interface{}); !ok {
			return fmt.Errorf("%w: %s is not an array", domain.ErrCorruptData, key.Short())
		}
	}
	return nil
}

func countItems(v interface{}) int {
	switch r := v.(type) {
	case domain.FinancialRecord:
		return len(r.Transactions)
	case []domain.Habit:
		return len(r)
	case []domain.Book:
		return len(r)
	case []domain.JournalEntry:
		return len(r)
	case domain.UserProfile:
		return 1
	}
	return 0
}
