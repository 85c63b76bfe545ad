package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

var txForm struct {
	kind      string
	amount    string
	desc      string
	category  string
	bank      string
	autoSplit bool
	date      string
}

var txListAll bool

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record, edit and list ledger transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an income or expense",
	Long: `Record an income or expense.

Income lands in bank A, or is split 20/80 between banks B and C with --auto-split.
Expenses are taken from --bank (default C).

Example:
  lifeos tx add --type income --amount 3000 --desc Salary --auto-split
  lifeos tx add --type expense --amount 42.10 --desc Groceries --category Needs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := ledger.Form{
			Type:           parseTxType(txForm.kind),
			Amount:         txForm.amount,
			Description:    txForm.desc,
			Category:       domain.Category(txForm.category),
			TargetBank:     domain.Bank(txForm.bank),
			AutoDistribute: txForm.autoSplit,
			Date:           txForm.date,
		}
		tx, err := rt.RecordTransaction(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", formatTx(tx))
		return nil
	},
}

var txEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a transaction; unspecified flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fin := rt.State().Financial
		idx := fin.FindTransaction(args[0])
		if idx < 0 {
			return fmt.Errorf("transaction %s: %w", args[0], domain.ErrNotFound)
		}

		form := ledger.FormFromTransaction(fin.Transactions[idx])
		flags := cmd.Flags()
		if flags.Changed("type") {
			form.Type = parseTxType(txForm.kind)
		}
		if flags.Changed("amount") {
			form.Amount = txForm.amount
		}
		if flags.Changed("desc") {
			form.Description = txForm.desc
		}
		if flags.Changed("category") {
			form.Category = domain.Category(txForm.category)
		}
		if flags.Changed("bank") {
			form.TargetBank = domain.Bank(txForm.bank)
		}
		if flags.Changed("auto-split") {
			form.AutoDistribute = txForm.autoSplit
		}
		if flags.Changed("date") {
			form.Date = txForm.date
		}

		tx, err := rt.EditTransaction(cmd.Context(), args[0], form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatTx(tx))
		return nil
	},
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction and reverse its effect on the balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := rt.DeleteTransaction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", formatTx(tx))
		return nil
	},
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List this month's transactions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		txs := rt.State().Financial.Transactions
		if !txListAll {
			txs = ledger.MonthTransactions(txs, rt.Today())
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tBANK\tCATEGORY\tDESCRIPTION")
		for _, tx := range txs {
			bank := string(tx.Bank)
			if tx.Subcategory == ledger.SubcategoryAutoSplit {
				bank = "B+C"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date, tx.Amount.StringFixed(2), bank, tx.Category, tx.Description)
		}
		return tw.Flush()
	},
}

func parseTxType(s string) ledger.TxType {
	switch s {
	case "income", "Income":
		return ledger.Income
	case "expense", "Expense":
		return ledger.Expense
	}
	return ledger.TxType(s)
}

func formatTx(tx domain.Transaction) string {
	return fmt.Sprintf("%s %s %s (%s, bank %s) [%s]", tx.Date, tx.Amount.StringFixed(2), tx.Description, tx.Category, tx.Bank, tx.ID)
}

func init() {
	for _, c := range []*cobra.Command{txAddCmd, txEditCmd} {
		c.Flags().StringVar(&txForm.kind, "type", "expense", "income or expense")
		c.Flags().StringVar(&txForm.amount, "amount", "", "Amount, always positive")
		c.Flags().StringVar(&txForm.desc, "desc", "", "Description")
		c.Flags().StringVar(&txForm.category, "category", "", "Needs, Wants, Investment, Income or Debt")
		c.Flags().StringVar(&txForm.bank, "bank", "", "Bank an expense is taken from (A, B or C)")
		c.Flags().BoolVar(&txForm.autoSplit, "auto-split", false, "Split income 20/80 between banks B and C")
		c.Flags().StringVar(&txForm.date, "date", "", "Date (YYYY-MM-DD), default today")
	}
	txAddCmd.MarkFlagRequired("amount")
	txAddCmd.MarkFlagRequired("desc")

	txListCmd.Flags().BoolVar(&txListAll, "all", false, "List every transaction, not only this month")

	txCmd.AddCommand(txAddCmd, txEditCmd, txDeleteCmd, txListCmd)
}

var reconcileBanks struct {
	a, b, c string
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Overwrite bank balances with the amounts actually held",
	Long: `Overwrite one or more bank balances with observed values.
Transactions are left untouched.

Example:
  lifeos reconcile --c 812.40`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			b   ledger.Balances
			err error
		)
		if b.A, err = balanceFlag(cmd, "a", reconcileBanks.a); err != nil {
			return err
		}
		if b.B, err = balanceFlag(cmd, "b", reconcileBanks.b); err != nil {
			return err
		}
		if b.C, err = balanceFlag(cmd, "c", reconcileBanks.c); err != nil {
			return err
		}

		rec, err := rt.Reconcile(cmd.Context(), b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "A %s  B %s  C %s\n", rec.BankA.StringFixed(2), rec.BankB.StringFixed(2), rec.BankC.StringFixed(2))
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileBanks.a, "a", "", "Observed balance of bank A")
	reconcileCmd.Flags().StringVar(&reconcileBanks.b, "b", "", "Observed balance of bank B")
	reconcileCmd.Flags().StringVar(&reconcileBanks.c, "c", "", "Observed balance of bank C")
}

// balanceFlag parses a balance flag, returning nil when it was not given.
func balanceFlag(cmd *cobra.Command, name, value string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, domain.Invalid(name, fmt.Sprintf("%q is not a number", value))
	}
	return &d, nil
}
