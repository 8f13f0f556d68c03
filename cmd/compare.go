package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jjtimmons/seqcmp/config"
	"github.com/jjtimmons/seqcmp/internal/output"
	"github.com/jjtimmons/seqcmp/internal/render"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/jjtimmons/seqcmp/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var refsHelp = `sequences to compare, by ID or name. Repeat the flag for more
than one, or pass "all". 'seqcmp records' lists the IDs`

// compareCmd is for aligning every primary against every test
var compareCmd = &cobra.Command{
	Use:                        "compare [fasta]",
	Short:                      "Align primary sequences against test sequences",
	Args:                       cobra.ExactArgs(1),
	RunE:                       compareExec,
	SuggestionsMinimumDistance: 2,
	Example: `  seqcmp compare globins.fa -p HBA_HUMAN -t all
  seqcmp compare globins.fa -p 0 -t 1 -t 2 --notes "check the gap at 50" -o comparisons.txt
  seqcmp compare globins.fa --interactive --view`,
	Long: `Align every primary sequence against every test sequence with a global
(Needleman-Wunsch) alignment: +1 for a match, -1 for a mismatch or a gap.

Each comparison is written as:

  Primary: <primary name>
  Test: <test name>
  <aligned primary>
  <marker: '*' match, '.' mismatch, '-' gap>
  <aligned test>

Comparisons are in primary-major order and separated by a blank line. With
--notes, the notes are written at the end under "Notes:".

Each comparison run is saved to the history ('seqcmp history').`,
	Aliases: []string{"cmp", "align"},
}

func compareExec(cmd *cobra.Command, args []string) error {
	c, logger, err := setup()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	primaryRefs, _ := flags.GetStringArray("primary")
	testRefs, _ := flags.GetStringArray("test")
	format, _ := flags.GetString("format")
	view, _ := flags.GetBool("view")
	interactive, _ := flags.GetBool("interactive")
	noHistory, _ := flags.GetBool("no-history")
	notes, _ := flags.GetString("notes")
	out, _ := flags.GetString("out")
	save, _ := flags.GetBool("save")

	recs, err := seq.ReadFile(args[0])
	if err != nil {
		return err
	}
	logger.Debug("loaded records", "source", args[0], "records", len(recs))

	sess := session.New(report.Builder{Workers: c.Workers}, nil)
	if err := sess.Load(args[0], recs); err != nil {
		return err
	}

	primaries, err := session.Resolve(recs, primaryRefs)
	if err != nil {
		return fmt.Errorf("bad --primary: %w", err)
	}
	tests, err := session.Resolve(recs, testRefs)
	if err != nil {
		return fmt.Errorf("bad --test: %w", err)
	}

	if interactive {
		if primaries, tests, err = pick(recs, primaries, tests); err != nil {
			return err
		}
	}

	if err := sess.SetSelection(session.Primary, primaries); err != nil {
		return err
	}
	if err := sess.SetSelection(session.Test, tests); err != nil {
		return err
	}

	start := time.Now()
	rep, _, err := sess.Compare(commandContext(cmd))
	if err != nil {
		return err
	}
	logger.Debug("compared", "selection", sess.Summary(), "took", time.Since(start))

	if rep.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), render.NoSelection)
		return nil
	}
	if flags.Changed("notes") {
		rep = rep.WithNotes(notes)
	}

	if !noHistory {
		if err := record(c, logger, args[0], sess.Selection(), notes); err != nil {
			return err
		}
	}

	if save && out == "" {
		out = c.Export.File
	}
	w, done, err := create(cmd.OutOrStdout(), out)
	if err != nil {
		return err
	}

	if view {
		r, err := render.New(w, c.Color, c.Wrap)
		if err != nil {
			return errors.Join(err, done())
		}
		_, err = io.WriteString(w, r.Report(rep))
		return errors.Join(err, done())
	}
	return errors.Join(output.Write(w, format, rep), done())
}

// record adds the comparison to the history, with its notes.
func record(c *config.Config, logger *slog.Logger, source string, sel report.Selection, notes string) error {
	hist, err := openHistory(c, logger)
	if err != nil {
		return err
	}
	defer hist.Close()

	e, err := hist.Add(source, sel.Primaries, sel.Tests)
	if err != nil || e == nil {
		return err
	}
	if notes != "" {
		if _, err := hist.SetNotes(e.ID, notes); err != nil {
			return err
		}
	}
	logger.Info("saved comparison", "id", e.ID, "pairs", sel.Pairs())
	return nil
}

// create opens the file at path for writing, or returns stdout if path is
// empty or "-". done closes the file.
func create(stdout io.Writer, path string) (w io.Writer, done func() error, err error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// pick asks for the primary and test sequences with a form in the terminal,
// starting from the IDs already selected.
func pick(recs []seq.Record, primaries, tests []string) ([]string, []string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, nil, errors.New("--interactive needs a terminal")
	}

	options := func(selected []string) []huh.Option[string] {
		opts := make([]huh.Option[string], 0, len(recs))
		for _, r := range recs {
			label := fmt.Sprintf("%s (%d aa)", r.Name, r.Len())
			opts = append(opts, huh.NewOption(label, r.ID).Selected(slices.Contains(selected, r.ID)))
		}
		return opts
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Primary sequences").
				Options(options(primaries)...).
				Value(&primaries),
			huh.NewMultiSelect[string]().
				Title("Test sequences").
				Options(options(tests)...).
				Value(&tests),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil, errors.New("comparison canceled")
		}
		return nil, nil, err
	}
	return primaries, tests, nil
}

func init() {
	compareCmd.Flags().StringArrayP("primary", "p", nil, "primary "+refsHelp)
	compareCmd.Flags().StringArrayP("test", "t", nil, "test "+refsHelp)
	compareCmd.Flags().String("notes", "", "notes written at the end of the report")
	compareCmd.Flags().StringP("out", "o", "", "output file name (default: stdout)")
	compareCmd.Flags().Bool("save", false, "write the report to the export file from the settings")
	compareCmd.Flags().StringP("format", "f", output.Text, "output format: "+strings.Join(output.Formats, ", "))
	compareCmd.Flags().Bool("view", false, "draw a colored view of the alignments instead of the report")
	compareCmd.Flags().BoolP("interactive", "i", false, "pick the sequences in the terminal")
	compareCmd.Flags().Bool("no-history", false, "don't save the comparison to the history")

	RootCmd.AddCommand(compareCmd)
}
