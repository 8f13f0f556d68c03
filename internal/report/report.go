// Package report is for aligning every primary against every test sequence and
// assembling the results into a text report.
package report

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jjtimmons/seqcmp/internal/align"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/jjtimmons/seqcmp/internal/report")

// Selection is the two groups of records to compare against one another.
type Selection struct {
	// Primaries are compared, in order, against each of the Tests
	Primaries []seq.Record

	// Tests are the records each primary is compared against
	Tests []seq.Record
}

// Empty is true if either group has no records.
func (s Selection) Empty() bool {
	return len(s.Primaries) == 0 || len(s.Tests) == 0
}

// Pairs is the number of comparisons in the selection.
func (s Selection) Pairs() int {
	return len(s.Primaries) * len(s.Tests)
}

// Comparison is the alignment between one primary and one test record.
type Comparison struct {
	Primary   seq.Record
	Test      seq.Record
	Alignment align.Alignment
	Marker    string
}

// String is the comparison's block in a report.
func (c Comparison) String() string {
	return fmt.Sprintf(
		"Primary: %s\nTest: %s\n%s\n%s\n%s",
		c.Primary.Name,
		c.Test.Name,
		c.Alignment.Primary,
		c.Marker,
		c.Alignment.Test,
	)
}

// Report is every comparison of a selection, primary-major, and optional notes.
type Report struct {
	// Comparisons in primary-major order
	Comparisons []Comparison

	notes    string
	hasNotes bool
}

// Empty is true if the report has no comparisons.
func (r *Report) Empty() bool {
	return r == nil || len(r.Comparisons) == 0
}

// WithNotes returns a copy of the report with notes appended.
func (r *Report) WithNotes(notes string) *Report {
	cp := &Report{notes: notes, hasNotes: true}
	if r != nil {
		cp.Comparisons = r.Comparisons
	}
	return cp
}

// Notes returns the report's notes, without trailing whitespace, and whether
// any were attached.
func (r *Report) Notes() (string, bool) {
	if r == nil || !r.hasNotes {
		return "", false
	}
	return strings.TrimRightFunc(r.notes, unicode.IsSpace), true
}

// String is the plain text report. An empty report is an empty string.
func (r *Report) String() string {
	if r.Empty() {
		return ""
	}

	blocks := make([]string, 0, len(r.Comparisons))
	for _, c := range r.Comparisons {
		blocks = append(blocks, c.String())
	}
	text := strings.Join(blocks, "\n\n")

	if notes, ok := r.Notes(); ok {
		text += "\n\nNotes:\n" + notes
	}
	return text
}

// Build compares each primary against each test, one pair at a time.
func Build(sel Selection) (*Report, error) {
	return Builder{}.Build(context.Background(), sel)
}

// Builder builds reports, aligning up to Workers pairs at once.
type Builder struct {
	// Workers is the max number of concurrent alignments. <= 1 is sequential
	Workers int
}

// Build compares each primary against each test. An empty selection yields an
// empty report, not an error. The only error from the alignments themselves
// is an align.ErrEmptySequence.
func (b Builder) Build(ctx context.Context, sel Selection) (*Report, error) {
	if sel.Empty() {
		return &Report{}, nil
	}

	ctx, span := tracer.Start(ctx, "report.Build", trace.WithAttributes(
		attribute.Int("primaries", len(sel.Primaries)),
		attribute.Int("tests", len(sel.Tests)),
		attribute.Int("workers", b.Workers),
	))
	defer span.End()

	comparisons := make([]Comparison, sel.Pairs())
	nTests := len(sel.Tests)

	if b.Workers <= 1 {
		for i := range comparisons {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, err := compare(sel.Primaries[i/nTests], sel.Tests[i%nTests])
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			comparisons[i] = c
		}
		return &Report{Comparisons: comparisons}, nil
	}

	// each pair writes to its own primary-major slot so order is kept
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Workers)
	for i := range comparisons {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := compare(sel.Primaries[i/nTests], sel.Tests[i%nTests])
			if err != nil {
				return err
			}
			comparisons[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &Report{Comparisons: comparisons}, nil
}

// compare aligns one pair of records.
func compare(primary, test seq.Record) (Comparison, error) {
	a, err := align.Align(primary.Seq, test.Seq)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to compare %q with %q: %w", primary.Name, test.Name, err)
	}

	return Comparison{
		Primary:   primary,
		Test:      test,
		Alignment: a,
		Marker:    a.Marker(),
	}, nil
}
