package report

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jjtimmons/seqcmp/internal/align"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id, name, s string) seq.Record {
	return seq.Record{ID: id, Name: name, Seq: s}
}

func TestBuild_text(t *testing.T) {
	p1 := rec("0", "P1", "AC")
	t1 := rec("1", "T1", "AC")

	r, err := Build(Selection{Primaries: []seq.Record{p1}, Tests: []seq.Record{t1}})
	require.NoError(t, err)

	assert.Equal(t, "Primary: P1\nTest: T1\nAC\n**\nAC", r.String())
	assert.Equal(t, "Primary: P1\nTest: T1\nAC\n**\nAC\n\nNotes:\nok", r.WithNotes("ok").String())
}

func TestBuild_notes(t *testing.T) {
	r, err := Build(Selection{
		Primaries: []seq.Record{rec("0", "P1", "ACGT")},
		Tests:     []seq.Record{rec("1", "T1", "AGT")},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{"trailing whitespace is trimmed", "looks fine  \n\n", "\n\nNotes:\nlooks fine"},
		{"leading whitespace is kept", "  indented\nsecond line\t", "\n\nNotes:\n  indented\nsecond line"},
		{"blank notes still add the block", "", "\n\nNotes:\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := "Primary: P1\nTest: T1\nACGT\n*-**\nA-GT" + tt.want
			assert.Equal(t, want, r.WithNotes(tt.notes).String())
		})
	}

	// WithNotes leaves the receiver unchanged
	_, ok := r.Notes()
	assert.False(t, ok)
}

func TestBuild_order(t *testing.T) {
	sel := Selection{
		Primaries: []seq.Record{rec("0", "P1", "ACGT"), rec("1", "P2", "AGGT")},
		Tests:     []seq.Record{rec("2", "T1", "ACG"), rec("3", "T2", "CGT")},
	}

	r, err := Build(sel)
	require.NoError(t, err)
	require.Len(t, r.Comparisons, 4)

	var got []string
	for _, c := range r.Comparisons {
		got = append(got, c.Primary.Name+"/"+c.Test.Name)
	}
	assert.Equal(t, []string{"P1/T1", "P1/T2", "P2/T1", "P2/T2"}, got)

	// exactly one blank line between blocks
	blocks := strings.Split(r.String(), "\n\n")
	require.Len(t, blocks, 4)
	for i, b := range blocks {
		assert.Len(t, strings.Split(b, "\n"), 5, "block %d", i)
	}
	assert.True(t, strings.HasPrefix(blocks[2], "Primary: P2\nTest: T1\n"))
}

func TestBuild_emptySelection(t *testing.T) {
	p1 := rec("0", "P1", "AC")
	t1 := rec("1", "T1", "AC")

	tests := []struct {
		name string
		sel  Selection
	}{
		{"no primaries", Selection{Tests: []seq.Record{t1}}},
		{"no tests", Selection{Primaries: []seq.Record{p1}}},
		{"nothing", Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Build(tt.sel)
			require.NoError(t, err)
			assert.True(t, r.Empty())
			assert.Equal(t, "", r.String())
			assert.Equal(t, "", r.WithNotes("notes").String())
		})
	}
}

func TestBuild_emptySequence(t *testing.T) {
	sel := Selection{
		Primaries: []seq.Record{rec("0", "P1", "AC")},
		Tests:     []seq.Record{rec("1", "T1", "AC"), rec("2", "blank", "")},
	}

	_, err := Build(sel)
	assert.ErrorIs(t, err, align.ErrEmptySequence)
	assert.Contains(t, err.Error(), `"blank"`)

	_, err = Builder{Workers: 4}.Build(context.Background(), sel)
	assert.ErrorIs(t, err, align.ErrEmptySequence)
}

func TestBuilder_parallelMatchesSequential(t *testing.T) {
	var primaries, tests []seq.Record
	for i := 0; i < 6; i++ {
		primaries = append(primaries, rec(fmt.Sprint(i), fmt.Sprintf("P%d", i), strings.Repeat("ACGT", i+1)+"GA"))
		tests = append(tests, rec(fmt.Sprint(10+i), fmt.Sprintf("T%d", i), strings.Repeat("AGT", i+2)))
	}
	sel := Selection{Primaries: primaries, Tests: tests}

	want, err := Build(sel)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 2, 8, 64} {
		got, err := Builder{Workers: workers}.Build(context.Background(), sel)
		require.NoError(t, err)
		assert.Equal(t, want.String(), got.String(), "workers=%d", workers)
	}
}

func TestBuilder_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sel := Selection{
		Primaries: []seq.Record{rec("0", "P1", "AC")},
		Tests:     []seq.Record{rec("1", "T1", "AC")},
	}
	for _, workers := range []int{1, 4} {
		_, err := Builder{Workers: workers}.Build(ctx, sel)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestBuild_reentrant(t *testing.T) {
	sel := Selection{
		Primaries: []seq.Record{rec("0", "P1", "MKTAYIAKQR")},
		Tests:     []seq.Record{rec("1", "T1", "MKTAIAKQRW")},
	}

	first, err := Build(sel)
	require.NoError(t, err)
	second, err := Build(sel)
	require.NoError(t, err)

	assert.Equal(t, first.WithNotes("a").String(), second.WithNotes("a").String())
}
