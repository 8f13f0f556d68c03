package seq

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFASTA(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			"multi-line records",
			">alpha\nmvls\npadk\n>beta\nMVHL\n",
			[]Record{
				{ID: "0", Name: "alpha", Seq: "MVLSPADK"},
				{ID: "1", Name: "beta", Seq: "MVHL"},
			},
		},
		{
			"windows line endings and inner whitespace",
			">alpha one\r\nMV LS\r\n\r\n  PA\tDK  \r\n",
			[]Record{
				{ID: "0", Name: "alpha one", Seq: "MVLSPADK"},
			},
		},
		{
			"blank headers get positional names",
			">\nAC\n>named\nGT\n> \nTT\n",
			[]Record{
				{ID: "0", Name: "Sequence 1", Seq: "AC"},
				{ID: "1", Name: "named", Seq: "GT"},
				{ID: "2", Name: "Sequence 3", Seq: "TT"},
			},
		},
		{
			"records without residues are dropped",
			">empty\n>full\nAC\n>also empty\n\n",
			[]Record{
				{ID: "0", Name: "full", Seq: "AC"},
			},
		},
		{
			"placeholder names count kept records only",
			">dropped\n>\nAC\n",
			[]Record{
				{ID: "0", Name: "Sequence 1", Seq: "AC"},
			},
		},
		{
			"leading byte order mark",
			"\ufeff>first\nACGT\n>second\nGGT\n",
			[]Record{
				{ID: "0", Name: "first", Seq: "ACGT"},
				{ID: "1", Name: "second", Seq: "GGT"},
			},
		},
		{
			"lines before the first header are ignored",
			"ACGT\n>first\nTT\n",
			[]Record{
				{ID: "0", Name: "first", Seq: "TT"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFASTA(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFASTA_noRecords(t *testing.T) {
	for _, input := range []string{"", "ACGT\n", ">only a header\n", "\n\n"} {
		_, err := ParseFASTA(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrNoRecords, "input %q", input)
	}
}

func TestReadFile(t *testing.T) {
	recs, err := ReadFile(filepath.Join("..", "..", "test", "input", "proteins.fa"))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "sp|P69905|HBA_HUMAN Hemoglobin subunit alpha", recs[0].Name)
	assert.Equal(t, 142, recs[0].Len())
	assert.Equal(t, "2", recs[2].ID)
	for _, r := range recs {
		assert.Equal(t, strings.ToUpper(r.Seq), r.Seq)
	}
}

func TestReadFile_gzip(t *testing.T) {
	recs, err := ReadFile(filepath.Join("..", "..", "test", "input", "alpha.fa.gz"))
	require.NoError(t, err)
	assert.Equal(t, []Record{{ID: "0", Name: "sp|P69905|HBA_HUMAN", Seq: "MVLSPADKTNVKAAW"}}, recs)
}

func TestReadFile_missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.fa"))
	assert.Error(t, err)
}

func TestWriteFASTA(t *testing.T) {
	recs := []Record{
		{ID: "0", Name: "alpha", Seq: "ACGTACGTAC"},
		{ID: "1", Name: "beta", Seq: "MK"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, recs, 4))
	assert.Equal(t, ">alpha\nACGT\nACGT\nAC\n>beta\nMK\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteFASTA(&buf, recs, 0))
	assert.Equal(t, ">alpha\nACGTACGTAC\n>beta\nMK\n", buf.String())

	// and it reads back the same
	got, err := ParseFASTA(&buf)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestSnapshots(t *testing.T) {
	recs := []Record{{ID: "4", Name: "a", Seq: "AC"}, {ID: "9", Name: "b", Seq: "GT"}}

	snaps := Snapshots(recs)
	assert.Equal(t, []Snapshot{{Name: "a", Seq: "AC"}, {Name: "b", Seq: "GT"}}, snaps)
	assert.Equal(t, []Record{{ID: "0", Name: "a", Seq: "AC"}, {ID: "1", Name: "b", Seq: "GT"}}, Records(snaps))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "acgt", "ACGT"},
		{"whitespace", " mv ls\tpa\n", "MVLSPA"},
		{"blank", " \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}
