package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/notionsync"
	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/syncer"
)

// Push uploads the committed record under key.
func (a *App) Push(ctx context.Context, key store.Key) error {
	if a.sync == nil {
		return fmt.Errorf("Push: remote storage: %w", ErrNotConfigured)
	}
	return a.sync.Push(ctx, key)
}

// PushAll uploads every synced record.
func (a *App) PushAll(ctx context.Context) error {
	if a.sync == nil {
		return fmt.Errorf("PushAll: remote storage: %w", ErrNotConfigured)
	}
	return a.sync.PushAll(ctx)
}

// Pull fetches the remote copy of key and replaces the local record once confirm accepts it.
func (a *App) Pull(ctx context.Context, key store.Key, confirm syncer.ConfirmFunc) (syncer.Preview, error) {
	if a.sync == nil {
		return syncer.Preview{}, fmt.Errorf("Pull: remote storage: %w", ErrNotConfigured)
	}
	return a.sync.Pull(ctx, key, confirm)
}

// ExportLedger sends every transaction to the warehouse.
func (a *App) ExportLedger(ctx context.Context) (int, error) {
	if a.warehouse == nil {
		return 0, fmt.Errorf("ExportLedger: warehouse: %w", ErrNotConfigured)
	}

	a.mu.Lock()
	txs := append([]domain.Transaction{}, a.financial.Transactions...)
	a.mu.Unlock()

	n, err := a.warehouse.ExportTransactions(ctx, txs)
	if err != nil {
		return n, fmt.Errorf("ExportLedger: %w: %w", domain.ErrNetwork, err)
	}
	a.log.Info().Int("rows", n).Msg("Ledger exported")
	return n, nil
}

// ExportNotes mirrors every book note into the Notion notes database.
func (a *App) ExportNotes(ctx context.Context, dryRun bool) (notionsync.Result, error) {
	if a.notion == nil || a.notionDB == "" {
		return notionsync.Result{}, fmt.Errorf("ExportNotes: notion: %w", ErrNotConfigured)
	}

	a.mu.Lock()
	books := copyBooks(a.library)
	a.mu.Unlock()

	res, err := notionsync.ExportLibrary(ctx, a.notion, a.notionDB, books, dryRun)
	if err != nil {
		return res, fmt.Errorf("ExportNotes: %w: %w", domain.ErrNetwork, err)
	}
	return res, nil
}
