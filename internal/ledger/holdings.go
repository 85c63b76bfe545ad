package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
)

// AddAsset appends a validated asset, assigning an id when it has none.
func (e *Engine) AddAsset(rec domain.FinancialRecord, a domain.Asset) (domain.FinancialRecord, domain.Asset, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return rec, a, fmt.Errorf("AddAsset: %w", domain.Invalid("name", "must not be empty"))
	}
	if a.Value.IsNegative() {
		return rec, a, fmt.Errorf("AddAsset: %w", domain.Invalid("value", "must not be negative"))
	}
	if a.ID == "" {
		a.ID = e.NewID()
	}
	out := rec.Clone()
	out.Assets = append(out.Assets, a)
	return out, a, nil
}

func DeleteAsset(rec domain.FinancialRecord, id string) (domain.FinancialRecord, error) {
	for i, a := range rec.Assets {
		if a.ID == id {
			out := rec.Clone()
			out.Assets = append(out.Assets[:i], out.Assets[i+1:]...)
			return out, nil
		}
	}
	return rec, fmt.Errorf("DeleteAsset: asset %s: %w", id, domain.ErrNotFound)
}

func (e *Engine) AddBusiness(rec domain.FinancialRecord, b domain.Business) (domain.FinancialRecord, domain.Business, error) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return rec, b, fmt.Errorf("AddBusiness: %w", domain.Invalid("name", "must not be empty"))
	}
	if b.ID == "" {
		b.ID = e.NewID()
	}
	out := rec.Clone()
	out.Businesses = append(out.Businesses, b)
	return out, b, nil
}

func DeleteBusiness(rec domain.FinancialRecord, id string) (domain.FinancialRecord, error) {
	for i, b := range rec.Businesses {
		if b.ID == id {
			out := rec.Clone()
			out.Businesses = append(out.Businesses[:i], out.Businesses[i+1:]...)
			return out, nil
		}
	}
	return rec, fmt.Errorf("DeleteBusiness: business %s: %w", id, domain.ErrNotFound)
}

func (e *Engine) AddLoan(rec domain.FinancialRecord, l domain.Loan) (domain.FinancialRecord, domain.Loan, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return rec, l, fmt.Errorf("AddLoan: %w", domain.Invalid("name", "must not be empty"))
	}
	if !l.Amount.IsPositive() {
		return rec, l, fmt.Errorf("AddLoan: %w", domain.Invalid("amount", "must be greater than zero"))
	}
	if l.InterestRate.LessThan(decimal.Zero) {
		return rec, l, fmt.Errorf("AddLoan: %w", domain.Invalid("interestRate", "must not be negative"))
	}
	if l.ID == "" {
		l.ID = e.NewID()
	}
	out := rec.Clone()
	out.Loans = append(out.Loans, l)
	return out, l, nil
}

func DeleteLoan(rec domain.FinancialRecord, id string) (domain.FinancialRecord, error) {
	for i, l := range rec.Loans {
		if l.ID == id {
			out := rec.Clone()
			out.Loans = append(out.Loans[:i], out.Loans[i+1:]...)
			return out, nil
		}
	}
	return rec, fmt.Errorf("DeleteLoan: loan %s: %w", id, domain.ErrNotFound)
}
