package warehouse

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// LedgerRow is one transaction in the ledger_transactions table.
type LedgerRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC, signed

	// Per-bank effect, so split income can be aggregated by bank.
	DeltaA *big.Rat `bigquery:"delta_a"` // NUMERIC
	DeltaB *big.Rat `bigquery:"delta_b"` // NUMERIC
	DeltaC *big.Rat `bigquery:"delta_c"` // NUMERIC

	Bank        string              `bigquery:"bank"`        // REQUIRED
	Category    string              `bigquery:"category"`    // REQUIRED
	Subcategory bigquery.NullString `bigquery:"subcategory"` // NULLABLE
	Description string              `bigquery:"description"` // REQUIRED

	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// ToLedgerRows converts transactions into rows stamped with exportedAt.
func ToLedgerRows(userID string, txs []domain.Transaction, exportedAt time.Time) []*LedgerRow {
	rows := make([]*LedgerRow, 0, len(txs))
	for _, tx := range txs {
		d := ledger.Impact(tx)
		rows = append(rows, &LedgerRow{
			TransactionID:   tx.ID,
			UserID:          userID,
			TransactionDate: tx.Date,
			Amount:          tx.Amount.Rat(),
			DeltaA:          d.A.Rat(),
			DeltaB:          d.B.Rat(),
			DeltaC:          d.C.Rat(),
			Bank:            string(tx.Bank),
			Category:        string(tx.Category),
			Subcategory:     bigquery.NullString{StringVal: tx.Subcategory, Valid: tx.Subcategory != ""},
			Description:     tx.Description,
			ExportedTS:      exportedAt.UTC(),
		})
	}
	return rows
}
