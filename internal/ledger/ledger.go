// Package ledger records, edits and deletes transactions against the three bank balances.
//
// Every balance change goes through Impact, so recording, reversing and replaying
// a transaction always agree. Engine methods never modify their input record: they
// return an updated copy, which the caller persists before swapping it in.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
)

// TxType is the kind of entry a Form records.
type TxType string

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

// SubcategoryAutoSplit marks income distributed between banks B and C.
const SubcategoryAutoSplit = "Auto-Split"

// WealthShare is the fraction of auto-distributed income credited to bank B.
var WealthShare = decimal.RequireFromString("0.2")

// Form is the user-facing input for a new or edited transaction.
type Form struct {
	Type           TxType          `json:"type"`
	Amount         string          `json:"amount"`
	Description    string          `json:"description"`
	Category       domain.Category `json:"category"`
	TargetBank     domain.Bank     `json:"targetBank"`
	AutoDistribute bool            `json:"autoDistribute"`
	// Date is YYYY-MM-DD. Empty means today for new entries and the original date for edits.
	Date string `json:"date"`
}

// Deltas are signed changes to the three balances.
type Deltas struct {
	A, B, C decimal.Decimal
}

func (d Deltas) Add(o Deltas) Deltas {
	return Deltas{A: d.A.Add(o.A), B: d.B.Add(o.B), C: d.C.Add(o.C)}
}

func (d Deltas) Neg() Deltas {
	return Deltas{A: d.A.Neg(), B: d.B.Neg(), C: d.C.Neg()}
}

// Impact is the balance effect of tx. Reversal is Impact(tx).Neg().
func Impact(tx domain.Transaction) Deltas {
	d := Deltas{A: decimal.Zero, B: decimal.Zero, C: decimal.Zero}
	if tx.Amount.IsPositive() && tx.Subcategory == SubcategoryAutoSplit {
		wealth := tx.Amount.Mul(WealthShare)
		d.B = wealth
		d.C = tx.Amount.Sub(wealth)
		return d
	}
	switch tx.Bank {
	case domain.BankA:
		d.A = tx.Amount
	case domain.BankB:
		d.B = tx.Amount
	case domain.BankC:
		d.C = tx.Amount
	}
	return d
}

// Replay sums the impact of txs starting from zero balances.
func Replay(txs []domain.Transaction) Deltas {
	total := Deltas{A: decimal.Zero, B: decimal.Zero, C: decimal.Zero}
	for _, tx := range txs {
		total = total.Add(Impact(tx))
	}
	return total
}

func apply(rec *domain.FinancialRecord, d Deltas) {
	rec.BankA = rec.BankA.Add(d.A)
	rec.BankB = rec.BankB.Add(d.B)
	rec.BankC = rec.BankC.Add(d.C)
}

// Engine carries the clock and id source the ledger operations depend on.
type Engine struct {
	Today func() civil.Date
	NewID func() string
}

// NewEngine returns an Engine using the wall clock in loc (time.Local when nil) and random UUIDs.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		Today: func() civil.Date { return civil.DateOf(time.Now().In(loc)) },
		NewID: uuid.NewString,
	}
}

// Record validates form and returns rec with the new transaction prepended and applied.
func (e *Engine) Record(rec domain.FinancialRecord, form Form) (domain.FinancialRecord, domain.Transaction, error) {
	tx, err := Build(form, e.NewID(), e.Today())
	if err != nil {
		return rec, domain.Transaction{}, fmt.Errorf("Record: %w", err)
	}

	out := rec.Clone()
	apply(&out, Impact(tx))
	out.Transactions = prepend(out.Transactions, tx)
	return out, tx, nil
}

// Edit replaces transaction id: the original's impact is fully reversed and the
// form is recorded again under the same id. Nothing changes when the form is invalid.
func (e *Engine) Edit(rec domain.FinancialRecord, id string, form Form) (domain.FinancialRecord, domain.Transaction, error) {
	idx := rec.FindTransaction(id)
	if idx < 0 {
		return rec, domain.Transaction{}, fmt.Errorf("Edit: transaction %s: %w", id, domain.ErrNotFound)
	}
	orig := rec.Transactions[idx]

	tx, err := Build(form, id, orig.Date)
	if err != nil {
		return rec, domain.Transaction{}, fmt.Errorf("Edit: %w", err)
	}

	out := rec.Clone()
	apply(&out, Impact(orig).Neg())
	out.Transactions = remove(out.Transactions, idx)
	apply(&out, Impact(tx))
	out.Transactions = prepend(out.Transactions, tx)
	return out, tx, nil
}

// Delete reverses and removes transaction id.
func (e *Engine) Delete(rec domain.FinancialRecord, id string) (domain.FinancialRecord, domain.Transaction, error) {
	idx := rec.FindTransaction(id)
	if idx < 0 {
		return rec, domain.Transaction{}, fmt.Errorf("Delete: transaction %s: %w", id, domain.ErrNotFound)
	}
	orig := rec.Transactions[idx]

	out := rec.Clone()
	apply(&out, Impact(orig).Neg())
	out.Transactions = remove(out.Transactions, idx)
	return out, orig, nil
}

// Balances selects the balances Reconcile overwrites. Nil fields are left alone.
type Balances struct {
	A *decimal.Decimal `json:"bankA,omitempty"`
	B *decimal.Decimal `json:"bankB,omitempty"`
	C *decimal.Decimal `json:"bankC,omitempty"`
}

// Reconcile overwrites balances with observed values. Transactions are not touched,
// so after a reconcile Replay no longer reproduces the balances.
func Reconcile(rec domain.FinancialRecord, b Balances) (domain.FinancialRecord, error) {
	if b.A == nil && b.B == nil && b.C == nil {
		return rec, fmt.Errorf("Reconcile: %w", domain.Invalid("balances", "at least one bank is required"))
	}
	out := rec.Clone()
	if b.A != nil {
		out.BankA = *b.A
	}
	if b.B != nil {
		out.BankB = *b.B
	}
	if b.C != nil {
		out.BankC = *b.C
	}
	return out, nil
}

// Build validates form and turns it into a transaction with the given id.
// fallback is used when the form carries no date.
func Build(form Form, id string, fallback civil.Date) (domain.Transaction, error) {
	amount, err := ParseAmount(form.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	desc := strings.TrimSpace(form.Description)
	if desc == "" {
		return domain.Transaction{}, domain.Invalid("description", "must not be empty")
	}

	date := fallback
	if s := strings.TrimSpace(form.Date); s != "" {
		d, err := civil.ParseDate(s)
		if err != nil || !d.IsValid() {
			return domain.Transaction{}, domain.Invalid("date", fmt.Sprintf("%q is not YYYY-MM-DD", s))
		}
		date = d
	}

	tx := domain.Transaction{ID: id, Date: date, Description: desc}

	switch form.Type {
	case Income:
		tx.Category = form.Category
		if tx.Category == "" {
			tx.Category = domain.CategoryIncome
		}
		if !tx.Category.Valid() {
			return domain.Transaction{}, domain.Invalid("category", fmt.Sprintf("unknown category %q", form.Category))
		}
		tx.Amount = amount
		tx.Bank = domain.BankA
		if form.AutoDistribute {
			tx.Subcategory = SubcategoryAutoSplit
		}
	case Expense:
		tx.Category = form.Category
		if tx.Category == "" {
			tx.Category = domain.CategoryNeeds
		}
		if !tx.Category.Valid() || tx.Category == domain.CategoryIncome {
			return domain.Transaction{}, domain.Invalid("category", fmt.Sprintf("%q is not an expense category", form.Category))
		}
		tx.Bank = form.TargetBank
		if tx.Bank == "" {
			tx.Bank = domain.BankC
		}
		if !tx.Bank.Valid() {
			return domain.Transaction{}, domain.Invalid("targetBank", fmt.Sprintf("unknown bank %q", form.TargetBank))
		}
		tx.Amount = amount.Neg()
	default:
		return domain.Transaction{}, domain.Invalid("type", fmt.Sprintf("must be %s or %s, got %q", Income, Expense, form.Type))
	}

	return tx, nil
}

// ParseAmount parses a strictly positive decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.Invalid("amount", "must not be empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Invalid("amount", fmt.Sprintf("%q is not a number", s))
	}
	if !d.IsPositive() {
		return decimal.Zero, domain.Invalid("amount", "must be greater than zero")
	}
	return d, nil
}

// FormFromTransaction rebuilds the form tx was recorded with, for prefilling an edit.
func FormFromTransaction(tx domain.Transaction) Form {
	form := Form{
		Amount:      tx.Amount.Abs().String(),
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date.String(),
	}
	if tx.Amount.IsPositive() {
		form.Type = Income
		form.AutoDistribute = tx.Subcategory == SubcategoryAutoSplit
	} else {
		form.Type = Expense
		form.TargetBank = tx.Bank
	}
	return form
}

// MonthTransactions returns the transactions dated in the same calendar month as day.
func MonthTransactions(txs []domain.Transaction, day civil.Date) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txs {
		if tx.Date.Year == day.Year && tx.Date.Month == day.Month {
			out = append(out, tx)
		}
	}
	return out
}

func prepend(txs []domain.Transaction, tx domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs)+1)
	out = append(out, tx)
	return append(out, txs...)
}

func remove(txs []domain.Transaction, idx int) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs)-1)
	out = append(out, txs[:idx]...)
	return append(out, txs[idx+1:]...)
}
