package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/dispatch"
	"github.com/dvloznov/lifeos/internal/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant about your current state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := rt.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return nil
	},
}

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Interactive command line: section names, /log, /done or a question",
	Long: `Read commands line by line until esc, :q or end of input.

  finance              open a section by keyword
  /log 12.50 lunch     log an expense from bank C
  /done read           toggle the first habit matching "read"
  anything else        ask the assistant`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPalette(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), rt)
	},
}

// Dispatcher interprets one palette line.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) (dispatch.Outcome, error)
}

// runPalette reads lines from in until a dismiss command or EOF. Validation
// failures are printed and the loop continues; other errors end it.
func runPalette(ctx context.Context, in io.Reader, out io.Writer, d Dispatcher) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "esc", ":q", "\x1b":
			return nil
		}

		o, err := d.Dispatch(ctx, line)
		if errors.Is(err, domain.ErrValidation) {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		if err != nil {
			return err
		}
		printOutcome(out, o)
	}
}

func printOutcome(out io.Writer, o dispatch.Outcome) {
	switch o.Kind {
	case dispatch.KindNavigate:
		fmt.Fprintf(out, "-> %s\n", o.Section)
	case dispatch.KindReply:
		if o.Reply != nil && o.Reply.Offline {
			fmt.Fprintf(out, "(offline) %s\n", o.Message)
			return
		}
		fmt.Fprintln(out, o.Message)
	default:
		fmt.Fprintln(out, o.Message)
	}
}
