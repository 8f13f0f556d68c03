// Package render draws comparisons for a terminal, styling each residue as a
// match, mismatch or gap.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jjtimmons/seqcmp/internal/align"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// labelWidth is the widest a sequence label gets before it's truncated
const labelWidth = 24

const (
	// NoSelection is shown in place of an empty report
	NoSelection = "Select at least 1 primary and 1 test."
)

// class is how a residue compares to the one opposite it.
type class int

const (
	match class = iota
	mismatch
	gap
)

// Renderer draws reports, with or without color.
type Renderer struct {
	color bool
	wrap  int

	header   lipgloss.Style
	label    lipgloss.Style
	residues [3]lipgloss.Style
}

// New returns a Renderer for w. mode is one of auto, always or never; auto
// only colors a terminal. wrap is the residues per line, 0 for no wrapping.
func New(w io.Writer, mode string, wrap int) (*Renderer, error) {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorNever:
	case ColorAuto, "":
		color = isTerminal(w)
	default:
		return nil, fmt.Errorf("unknown color mode %q", mode)
	}

	if wrap < 0 {
		return nil, fmt.Errorf("wrap must be >= 0, got %d", wrap)
	}

	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		color:  color,
		wrap:   wrap,
		header: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7")),
		label:  lr.NewStyle().Foreground(lipgloss.Color("#20B9B4")),
		residues: [3]lipgloss.Style{
			match:    lr.NewStyle().Foreground(lipgloss.Color("#2ECC71")),
			mismatch: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
			gap:      lr.NewStyle().Foreground(lipgloss.Color("#5D6D7E")),
		},
	}, nil
}

// Color is whether the renderer emits styled output.
func (r *Renderer) Color() bool {
	return r.color
}

// Report draws every comparison in the report, then a count of them.
func (r *Renderer) Report(rep *report.Report) string {
	if rep.Empty() {
		return NoSelection + "\n"
	}

	var sb strings.Builder
	for i, c := range rep.Comparisons {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(r.Comparison(c))
	}
	fmt.Fprintf(&sb, "\n%d comparisons.\n", len(rep.Comparisons))
	return sb.String()
}

// Comparison draws one comparison: a header, then the two aligned sequences
// labelled with their names and wrapped.
func (r *Renderer) Comparison(c report.Comparison) string {
	var sb strings.Builder
	sb.WriteString(r.style(r.header, fmt.Sprintf("Primary: %s | Test: %s", c.Primary.Name, c.Test.Name)))
	sb.WriteString("\n")

	primaryLabel := truncate(c.Primary.Name, labelWidth)
	testLabel := truncate(c.Test.Name, labelWidth)
	width := max(len([]rune(primaryLabel)), len([]rune(testLabel)))

	primary, test := []rune(c.Alignment.Primary), []rune(c.Alignment.Test)
	step := r.wrap
	if step <= 0 {
		step = len(primary)
	}
	for start := 0; start < len(primary); start += step {
		end := min(start+step, len(primary))
		if start > 0 {
			sb.WriteString("\n")
		}
		r.line(&sb, primaryLabel, width, primary, test, start, end)
		r.line(&sb, testLabel, width, test, primary, start, end)
	}
	return sb.String()
}

// line writes seq[start:end], each residue styled against other
func (r *Renderer) line(sb *strings.Builder, label string, width int, seq, other []rune, start, end int) {
	pad := strings.Repeat(" ", width-len([]rune(label)))
	sb.WriteString(r.style(r.label, label))
	fmt.Fprintf(sb, "%s %6d ", pad, start+1)

	if !r.color {
		sb.WriteString(string(seq[start:end]))
		sb.WriteString("\n")
		return
	}

	// runs of the same class share one escape sequence
	runStart := start
	for i := start + 1; i <= end; i++ {
		if i < end && classify(seq[i], other[i]) == classify(seq[runStart], other[runStart]) {
			continue
		}
		sb.WriteString(r.residues[classify(seq[runStart], other[runStart])].Render(string(seq[runStart:i])))
		runStart = i
	}
	sb.WriteString("\n")
}

func (r *Renderer) style(st lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return st.Render(s)
}

// classify a residue by the one opposite it. only its own gap counts as a gap
func classify(residue, other rune) class {
	switch {
	case residue == align.Gap:
		return gap
	case residue == other:
		return match
	default:
		return mismatch
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
