package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jjtimmons/seqcmp/config"
	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/render"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/spf13/cobra"
)

// historyCmd is for past comparisons
var historyCmd = &cobra.Command{
	Use:                        "history",
	Short:                      "List, annotate and export past comparisons",
	SuggestionsMinimumDistance: 2,
	Long: `List, annotate and export past comparisons.

Each run of 'seqcmp compare' saves the names and sequences it compared, so the
report can be rebuilt after the FASTA file has changed or moved.`,
	Aliases: []string{"hist"},
}

// historyListCmd is for listing past comparisons, newest first
var historyListCmd = &cobra.Command{
	Use:                        "list",
	Short:                      "List past comparisons, newest first",
	Args:                       cobra.NoArgs,
	RunE:                       historyListExec,
	SuggestionsMinimumDistance: 2,
	Aliases:                    []string{"ls"},
}

// historyShowCmd is for the details of one comparison
var historyShowCmd = &cobra.Command{
	Use:                        "show [id]",
	Short:                      "Show a past comparison",
	Args:                       cobra.ExactArgs(1),
	RunE:                       historyShowExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  seqcmp history show 0b1e6c1a-5d0f-4d6c-a1c4-2f7c2f9b7e51 --fasta > compared.fa",
	Long: `Show a past comparison: when it was run, what it compared and its notes,
followed by a colored view of its alignments.

With --fasta, the compared sequences are written as FASTA instead, primaries first.`,
}

// historyNotesCmd is for replacing the notes on a comparison
var historyNotesCmd = &cobra.Command{
	Use:                        "notes [id] [notes]",
	Short:                      "Set the notes of a past comparison",
	Args:                       cobra.MinimumNArgs(1),
	RunE:                       historyNotesExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  seqcmp history notes 0b1e6c1a-5d0f-4d6c-a1c4-2f7c2f9b7e51 \"insertion in the test at 48\"",
	Long: `Replace the notes of a past comparison. Without notes, the notes are cleared.
Notes are written at the end of an exported report.`,
}

// historyExportCmd is for writing a past comparison's report
var historyExportCmd = &cobra.Command{
	Use:                        "export [id]",
	Short:                      "Write the report of a past comparison",
	Args:                       cobra.ExactArgs(1),
	RunE:                       historyExportExec,
	SuggestionsMinimumDistance: 2,
	Long: `Rebuild the report of a past comparison, with its notes, and write it to a file.

The file name is from the settings (export.history-file) unless -o is set.
"-o -" writes to stdout.`,
}

// historyDeleteCmd is for deleting a past comparison
var historyDeleteCmd = &cobra.Command{
	Use:                        "delete [id]",
	Short:                      "Delete a past comparison",
	Args:                       cobra.ExactArgs(1),
	RunE:                       historyDeleteExec,
	SuggestionsMinimumDistance: 2,
	Aliases:                    []string{"rm", "remove"},
}

// historyClearCmd is for deleting every past comparison
var historyClearCmd = &cobra.Command{
	Use:                        "clear",
	Short:                      "Delete every past comparison",
	Args:                       cobra.NoArgs,
	RunE:                       historyClearExec,
	SuggestionsMinimumDistance: 2,
}

// withHistory runs fn with the settings and the history store open.
func withHistory(fn func(c *config.Config, store *history.Store) error) error {
	c, logger, err := setup()
	if err != nil {
		return err
	}

	store, err := openHistory(c, logger)
	if err != nil {
		return err
	}
	return errors.Join(fn(c, store), store.Close())
}

func historyListExec(cmd *cobra.Command, args []string) error {
	return withHistory(func(c *config.Config, store *history.Store) error {
		entries, err := store.List()
		if err != nil {
			return err
		}
		return render.History(cmd.OutOrStdout(), entries)
	})
}

func historyShowExec(cmd *cobra.Command, args []string) error {
	asFASTA, _ := cmd.Flags().GetBool("fasta")

	return withHistory(func(c *config.Config, store *history.Store) error {
		e, err := store.Get(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asFASTA {
			recs := append(seq.Records(e.Primaries), seq.Records(e.Tests)...)
			return seq.WriteFASTA(w, recs, c.Wrap)
		}

		if err := render.Entry(w, e); err != nil {
			return err
		}
		rep, err := report.Build(e.Selection())
		if err != nil {
			return err
		}
		r, err := render.New(w, c.Color, c.Wrap)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "\n%s", r.Report(rep))
		return err
	})
}

func historyNotesExec(cmd *cobra.Command, args []string) error {
	notes := strings.Join(args[1:], " ")
	return withHistory(func(c *config.Config, store *history.Store) error {
		_, err := store.SetNotes(args[0], notes)
		return err
	})
}

func historyExportExec(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	return withHistory(func(c *config.Config, store *history.Store) error {
		if out == "" {
			out = c.Export.HistoryFile
		}
		e, err := store.Get(args[0])
		if err != nil {
			return err
		}
		text, err := history.Export(e)
		if err != nil {
			return err
		}

		w, done, err := create(cmd.OutOrStdout(), out)
		if err != nil {
			return err
		}
		if out == "-" {
			text += "\n"
		}
		_, err = io.WriteString(w, text)
		if err := errors.Join(err, done()); err != nil {
			return err
		}

		if out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
		}
		return nil
	})
}

func historyDeleteExec(cmd *cobra.Command, args []string) error {
	return withHistory(func(c *config.Config, store *history.Store) error {
		return store.Delete(args[0])
	})
}

func historyClearExec(cmd *cobra.Command, args []string) error {
	return withHistory(func(c *config.Config, store *history.Store) error {
		return store.Reset()
	})
}

func init() {
	historyShowCmd.Flags().Bool("fasta", false, "write the compared sequences as FASTA")
	historyExportCmd.Flags().StringP("out", "o", "", "output file name, \"-\" for stdout (default: export.history-file)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyNotesCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)

	RootCmd.AddCommand(historyCmd)
}
