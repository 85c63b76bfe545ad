package domain

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts round-trip as JSON numbers, matching records written before decimals were used.
	decimal.MarshalJSONWithoutQuotes = true
}

// Bank names one of the three cash balances.
type Bank string

const (
	// BankA is the inflow holding balance.
	BankA Bank = "A"
	// BankB is the wealth/investment balance.
	BankB Bank = "B"
	// BankC is the survival/spending balance.
	BankC Bank = "C"
)

// Valid reports whether b is one of A, B or C.
func (b Bank) Valid() bool {
	return b == BankA || b == BankB || b == BankC
}

// Category classifies a transaction.
type Category string

const (
	CategoryNeeds      Category = "Needs"
	CategoryWants      Category = "Wants"
	CategoryInvestment Category = "Investment"
	CategoryIncome     Category = "Income"
	CategoryDebt       Category = "Debt"
)

// Categories lists every accepted category.
var Categories = []Category{CategoryNeeds, CategoryWants, CategoryInvestment, CategoryIncome, CategoryDebt}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is one ledger line. Positive amounts are income.
type Transaction struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Bank        Bank            `json:"bank"`
	Subcategory string          `json:"subcategory,omitempty"`
}

type Asset struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
	ROI   decimal.Decimal `json:"roi"`
}

type Business struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Valuation      decimal.Decimal `json:"valuation"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
}

type Loan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

type LegacyProject struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
}

type BudgetSnapshot struct {
	ID      string          `json:"id"`
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type MindsetLog struct {
	ID    string     `json:"id"`
	Date  civil.Date `json:"date"`
	Entry string     `json:"entry"`
	Mood  string     `json:"mood"`
}

// FinancialRecord is the per-user ledger singleton.
// Transactions are kept newest first.
type FinancialRecord struct {
	BankA           decimal.Decimal  `json:"bankA"`
	BankB           decimal.Decimal  `json:"bankB"`
	BankC           decimal.Decimal  `json:"bankC"`
	Transactions    []Transaction    `json:"transactions"`
	Assets          []Asset          `json:"assets"`
	Businesses      []Business       `json:"businesses"`
	Loans           []Loan           `json:"loans"`
	LegacyProjects  []LegacyProject  `json:"legacyProjects"`
	BudgetSnapshots []BudgetSnapshot `json:"budgetSnapshots"`
	MindsetLogs     []MindsetLog     `json:"mindsetLogs"`

	// Extra holds top-level fields this version does not model (e.g. roadmapSettings).
	// They are written back untouched.
	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultFinancialRecord returns the record created on first launch.
func DefaultFinancialRecord() FinancialRecord {
	var r FinancialRecord
	r.EnsureCollections()
	return r
}

// EnsureCollections replaces nil collections with empty ones.
func (r *FinancialRecord) EnsureCollections() {
	if r.Transactions == nil {
		r.Transactions = []Transaction{}
	}
	if r.Assets == nil {
		r.Assets = []Asset{}
	}
	if r.Businesses == nil {
		r.Businesses = []Business{}
	}
	if r.Loans == nil {
		r.Loans = []Loan{}
	}
	if r.LegacyProjects == nil {
		r.LegacyProjects = []LegacyProject{}
	}
	if r.BudgetSnapshots == nil {
		r.BudgetSnapshots = []BudgetSnapshot{}
	}
	if r.MindsetLogs == nil {
		r.MindsetLogs = []MindsetLog{}
	}
}

// Clone returns a deep copy so a mutation can be prepared without touching r.
func (r FinancialRecord) Clone() FinancialRecord {
	out := r
	out.Transactions = append([]Transaction{}, r.Transactions...)
	out.Assets = append([]Asset{}, r.Assets...)
	out.Businesses = append([]Business{}, r.Businesses...)
	out.Loans = append([]Loan{}, r.Loans...)
	out.LegacyProjects = append([]LegacyProject{}, r.LegacyProjects...)
	out.BudgetSnapshots = append([]BudgetSnapshot{}, r.BudgetSnapshots...)
	out.MindsetLogs = append([]MindsetLog{}, r.MindsetLogs...)
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Balance returns the balance held in bank b.
func (r FinancialRecord) Balance(b Bank) decimal.Decimal {
	switch b {
	case BankA:
		return r.BankA
	case BankB:
		return r.BankB
	case BankC:
		return r.BankC
	}
	return decimal.Zero
}

// FindTransaction returns the index of the transaction with the given id, or -1.
func (r FinancialRecord) FindTransaction(id string) int {
	for i, tx := range r.Transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
