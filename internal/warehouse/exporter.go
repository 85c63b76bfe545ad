// Package warehouse exports the ledger to BigQuery for analysis outside the app.
package warehouse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dvloznov/lifeos/internal/domain"
)

const (
	// LedgerTable receives exported transactions.
	LedgerTable = "ledger_transactions"
	// BatchSize is the number of rows sent per streaming insert.
	BatchSize = 500
)

// RowInserter provides an interface for streaming rows into a table.
// *bigquery.Inserter satisfies it.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// Exporter streams ledger rows through a RowInserter.
type Exporter struct {
	inserter RowInserter
	userID   string
	now      func() time.Time
}

func NewExporter(inserter RowInserter, userID string) *Exporter {
	return &Exporter{inserter: inserter, userID: userID, now: time.Now}
}

// ExportTransactions inserts txs in batches and returns how many rows were sent.
// Rows carry the transaction id as insert id, so BigQuery de-duplicates retried batches.
func (e *Exporter) ExportTransactions(ctx context.Context, txs []domain.Transaction) (int, error) {
	rows := ToLedgerRows(e.userID, txs, e.now())

	sent := 0
	for start := 0; start < len(rows); start += BatchSize {
		end := start + BatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := make([]*bigquery.StructSaver, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, &bigquery.StructSaver{Struct: row, InsertID: e.userID + ":" + row.TransactionID})
		}
		if err := e.inserter.Put(ctx, batch); err != nil {
			return sent, fmt.Errorf("ExportTransactions: inserting rows %d-%d: %w", start, end, err)
		}
		sent += len(batch)
	}
	return sent, nil
}

// Client bundles the BigQuery client used by the exporter and reports.
type Client struct {
	bq      *bigquery.Client
	dataset string
}

// NewClient connects to BigQuery. When credsFile is empty Application Default Credentials are used.
func NewClient(ctx context.Context, project, dataset, credsFile string) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("NewClient: %w", domain.Invalid("project", "must not be empty"))
	}

	var opts []option.ClientOption
	if credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}

	bq, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: bigquery client: %w", err)
	}
	return &Client{bq: bq, dataset: dataset}, nil
}

// Exporter returns an Exporter writing to the ledger table.
func (c *Client) Exporter(userID string) *Exporter {
	return NewExporter(c.bq.Dataset(c.dataset).Table(LedgerTable).Inserter(), userID)
}

// MonthRow is one month of exported ledger totals.
type MonthRow struct {
	Month   civil.Date `bigquery:"month"`
	Income  *big.Rat   `bigquery:"income"`
	Expense *big.Rat   `bigquery:"expense"`
}

// MonthlyTotals aggregates exported transactions of userID per calendar month since from.
// Rows re-exported later are counted once, by their latest export.
func (c *Client) MonthlyTotals(ctx context.Context, userID string, from civil.Date) ([]MonthRow, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT
			DATE_TRUNC(transaction_date, MONTH) AS month,
			SUM(IF(amount > 0, amount, 0)) AS income,
			SUM(IF(amount < 0, -amount, 0)) AS expense
		FROM (
			SELECT * EXCEPT(rn) FROM (
				SELECT *, ROW_NUMBER() OVER (PARTITION BY transaction_id ORDER BY exported_ts DESC) AS rn
				FROM %s.%s
				WHERE user_id = @user_id
			)
			WHERE rn = 1
		)
		WHERE transaction_date >= @from
		GROUP BY month
		ORDER BY month
	`, c.dataset, LedgerTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "from", Value: from},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTotals: query read: %w", err)
	}

	var rows []MonthRow
	for {
		var r MonthRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("MonthlyTotals: iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (c *Client) Close() error {
	return c.bq.Close()
}
