package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportDryRun bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data to external services",
}

var exportBigQueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "Stream all ledger transactions into BigQuery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rt.ExportLedger(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions\n", n)
		return nil
	},
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Mirror library notes into the Notion database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := rt.ExportNotes(cmd.Context(), exportDryRun)
		if err != nil {
			return err
		}
		prefix := ""
		if exportDryRun {
			prefix = "[dry run] "
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%screated=%d updated=%d archived=%d failed=%d\n",
			prefix, res.Created, res.Updated, res.Deleted, res.Failed)
		return nil
	},
}

func init() {
	exportNotionCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Report changes without writing to Notion")
	exportCmd.AddCommand(exportBigQueryCmd, exportNotionCmd)
}
