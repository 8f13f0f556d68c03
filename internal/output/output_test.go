package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testReport(t *testing.T) *report.Report {
	t.Helper()
	r, err := report.Build(report.Selection{
		Primaries: []seq.Record{{ID: "0", Name: "P1", Seq: "ACGT"}},
		Tests:     []seq.Record{{ID: "1", Name: "T1", Seq: "AGT"}},
	})
	require.NoError(t, err)
	return r
}

func TestWrite_text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, testReport(t).WithNotes("ok")))
	assert.Equal(t, "Primary: P1\nTest: T1\nACGT\n*-**\nA-GT\n\nNotes:\nok\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, Text, &report.Report{}))
	assert.Empty(t, buf.String())
}

func TestWrite_json(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, testReport(t)))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Comparisons, 1)

	c := doc.Comparisons[0]
	assert.Equal(t, "P1", c.Primary)
	assert.Equal(t, Aligned{Primary: "ACGT", Marker: "*-**", Test: "A-GT"}, c.Aligned)
	assert.Equal(t, 2, c.Score)
	assert.InDelta(t, 0.75, c.Identity, 1e-9)
	assert.Nil(t, doc.Notes)
	assert.NotContains(t, buf.String(), "notes")
}

func TestWrite_yaml(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "YAML", testReport(t).WithNotes("needs review\n")))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Comparisons, 1)
	assert.Equal(t, "A-GT", doc.Comparisons[0].Aligned.Test)
	require.NotNil(t, doc.Notes)
	assert.Equal(t, "needs review", *doc.Notes)
}

func TestWrite_emptyStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, &report.Report{}))
	assert.JSONEq(t, `{"comparisons": []}`, buf.String())
}

func TestWrite_unknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, "xml", testReport(t)))
}
