package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// updateFinancial runs fn on the committed record and commits its result.
// When fn or the save fails the committed record is unchanged.
func (a *App) updateFinancial(ctx context.Context, op string, fn func(domain.FinancialRecord) (domain.FinancialRecord, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := fn(a.financial)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.commitFinancial(rec); err != nil {
		a.log.Error().Err(err).Str("op", op).Msg("Failed to commit financial record")
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RecordTransaction records a new income or expense.
func (a *App) RecordTransaction(ctx context.Context, form ledger.Form) (domain.Transaction, error) {
	var tx domain.Transaction
	err := a.updateFinancial(ctx, "RecordTransaction", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, recorded, err := a.ledger.Record(rec, form)
		tx = recorded
		return out, err
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	a.log.Info().Str("id", tx.ID).Str("amount", tx.Amount.String()).Str("bank", string(tx.Bank)).Msg("Transaction recorded")
	return tx, nil
}

// LogExpense records a quick expense from the command palette.
func (a *App) LogExpense(ctx context.Context, form ledger.Form) (domain.Transaction, error) {
	return a.RecordTransaction(ctx, form)
}

// EditTransaction reverses transaction id and records form in its place.
func (a *App) EditTransaction(ctx context.Context, id string, form ledger.Form) (domain.Transaction, error) {
	var tx domain.Transaction
	err := a.updateFinancial(ctx, "EditTransaction", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, edited, err := a.ledger.Edit(rec, id, form)
		tx = edited
		return out, err
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction reverses and removes transaction id, returning what was removed.
func (a *App) DeleteTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var tx domain.Transaction
	err := a.updateFinancial(ctx, "DeleteTransaction", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, removed, err := a.ledger.Delete(rec, id)
		tx = removed
		return out, err
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Reconcile overwrites the selected balances with observed values.
func (a *App) Reconcile(ctx context.Context, b ledger.Balances) (domain.FinancialRecord, error) {
	var out domain.FinancialRecord
	err := a.updateFinancial(ctx, "Reconcile", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		var err error
		out, err = ledger.Reconcile(rec, b)
		return out, err
	})
	if err != nil {
		return domain.FinancialRecord{}, err
	}
	a.log.Info().Str("bankA", out.BankA.String()).Str("bankB", out.BankB.String()).Str("bankC", out.BankC.String()).Msg("Balances reconciled")
	return out.Clone(), nil
}

func (a *App) AddAsset(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	err := a.updateFinancial(ctx, "AddAsset", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, added, err := a.ledger.AddAsset(rec, asset)
		asset = added
		return out, err
	})
	return asset, err
}

func (a *App) DeleteAsset(ctx context.Context, id string) error {
	return a.updateFinancial(ctx, "DeleteAsset", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		return ledger.DeleteAsset(rec, id)
	})
}

func (a *App) AddBusiness(ctx context.Context, b domain.Business) (domain.Business, error) {
	err := a.updateFinancial(ctx, "AddBusiness", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, added, err := a.ledger.AddBusiness(rec, b)
		b = added
		return out, err
	})
	return b, err
}

func (a *App) DeleteBusiness(ctx context.Context, id string) error {
	return a.updateFinancial(ctx, "DeleteBusiness", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		return ledger.DeleteBusiness(rec, id)
	})
}

func (a *App) AddLoan(ctx context.Context, l domain.Loan) (domain.Loan, error) {
	err := a.updateFinancial(ctx, "AddLoan", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		out, added, err := a.ledger.AddLoan(rec, l)
		l = added
		return out, err
	})
	return l, err
}

func (a *App) DeleteLoan(ctx context.Context, id string) error {
	return a.updateFinancial(ctx, "DeleteLoan", func(rec domain.FinancialRecord) (domain.FinancialRecord, error) {
		return ledger.DeleteLoan(rec, id)
	})
}
