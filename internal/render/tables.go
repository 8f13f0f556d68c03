package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/seq"
)

// Records writes a table of records: their ID, name and length.
func Records(w io.Writer, recs []seq.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "id\tname\tlength\t\n")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t(%d aa)\t\n", r.ID, r.Name, r.Len())
	}
	return tw.Flush()
}

// History writes a table of history entries, in the order given.
func History(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No comparisons yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "id\tcreated\tprimary\ttest\tnotes\t\n")
	for _, e := range entries {
		fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%s\t%s\t\n",
			e.ID,
			e.Created.Local().Format(time.DateTime),
			Names(e.Primaries),
			Names(e.Tests),
			firstLine(e.Notes, 40),
		)
	}
	return tw.Flush()
}

// Entry writes the details of one history entry.
func Entry(w io.Writer, e *history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", e.ID)
	fmt.Fprintf(tw, "Created\t%s\n", e.Created.Local().Format(time.DateTime))
	if e.Source != "" {
		fmt.Fprintf(tw, "Source\t%s\n", e.Source)
	}
	fmt.Fprintf(tw, "Primary\t%s\n", Names(e.Primaries))
	fmt.Fprintf(tw, "Test\t%s\n", Names(e.Tests))
	if err := tw.Flush(); err != nil {
		return err
	}

	if e.Notes == "" {
		_, err := fmt.Fprintln(w, "\nNo notes.")
		return err
	}
	_, err := fmt.Fprintf(w, "\nNotes:\n%s\n", strings.TrimRight(e.Notes, "\n"))
	return err
}

// Names joins the names of snapshots with commas.
func Names(snaps []seq.Snapshot) string {
	names := make([]string, 0, len(snaps))
	for _, s := range snaps {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

// firstLine of s, cut to n runes
func firstLine(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	return truncate(s, n)
}
