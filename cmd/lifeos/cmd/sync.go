package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/syncer"
)

var pullYes bool

var pushCmd = &cobra.Command{
	Use:   "push [record]",
	Short: "Upload one record, or every syncable record, to cloud storage",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if err := rt.PushAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pushed all records")
			return nil
		}

		key, err := store.ParseKey(args[0])
		if err != nil {
			return err
		}
		if err := rt.Push(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s\n", key.Short())
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <record>",
	Short: "Replace a local record with its cloud copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := store.ParseKey(args[0])
		if err != nil {
			return err
		}

		confirm := func(syncer.Preview) bool { return true }
		if !pullYes {
			confirm = func(p syncer.Preview) bool {
				return confirmPrompt(cmd.InOrStdin(), cmd.OutOrStdout(), p)
			}
		}

		p, err := rt.Pull(cmd.Context(), key, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pulled %s (%d items)\n", key.Short(), p.Items)
		return nil
	},
}

// confirmPrompt shows what a pull would apply and reads a y/N answer.
func confirmPrompt(in io.Reader, out io.Writer, p syncer.Preview) bool {
	fmt.Fprintf(out, "Remote %s: %d bytes, %d items\n", p.Blob, p.Bytes, p.Items)
	for _, c := range p.Coercions {
		fmt.Fprintf(out, "  reset: %s\n", c)
	}
	fmt.Fprintf(out, "Overwrite local %s? [y/N] ", p.Key.Short())

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	pullCmd.Flags().BoolVarP(&pullYes, "yes", "y", false, "Skip the confirmation prompt")
}
