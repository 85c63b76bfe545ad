package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/lifeos/internal/domain"
)

var (
	bookAuthor  string
	noteFields  domain.NeuralNote
	journalMood string
	journalDate string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage the reading library",
}

var bookAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a book you are reading",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := rt.AddBook(cmd.Context(), strings.Join(args, " "), bookAuthor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q [%s]\n", b.Title, b.ID)
		return nil
	},
}

var bookDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a book completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := rt.SetBookStatus(cmd.Context(), args[0], domain.BookCompleted)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%q completed\n", b.Title)
		return nil
	},
}

var bookDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a book and its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.DeleteBook(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books and their note counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSTATUS\tNOTES")
		for _, b := range rt.State().Library {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.Status, len(b.Notes))
		}
		return tw.Flush()
	},
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes attached to a book",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Add a note to a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rt.AddNote(cmd.Context(), args[0], noteFields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added note %q [%s]\n", n.Concept, n.ID)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <book-id> <note-id>",
	Short: "Replace the content of a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rt.UpdateNote(cmd.Context(), args[0], args[1], noteFields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated note %q\n", n.Concept)
		return nil
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <book-id> <note-id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.DeleteNote(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
		return nil
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal <entry>",
	Short: "Write a journal entry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := rt.AddJournalEntry(cmd.Context(), strings.Join(args, " "), journalMood, journalDate)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved entry for %s\n", e.Date)
		return nil
	},
}

func init() {
	bookAddCmd.Flags().StringVar(&bookAuthor, "author", "", "Author")
	bookCmd.AddCommand(bookAddCmd, bookDoneCmd, bookDeleteCmd, bookListCmd)

	for _, c := range []*cobra.Command{noteAddCmd, noteEditCmd} {
		c.Flags().StringVar(&noteFields.Concept, "concept", "", "Core idea (required)")
		c.Flags().StringVar(&noteFields.Problem, "problem", "", "Problem it addresses")
		c.Flags().StringVar(&noteFields.Action, "action", "", "Action to take")
		c.Flags().StringVar(&noteFields.Example, "example", "", "Example")
	}
	noteCmd.AddCommand(noteAddCmd, noteEditCmd, noteDeleteCmd)

	journalCmd.Flags().StringVar(&journalMood, "mood", "", "Mood")
	journalCmd.Flags().StringVar(&journalDate, "date", "", "Date (YYYY-MM-DD), default today")
}
