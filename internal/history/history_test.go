package history

import (
	"testing"
	"time"

	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

var (
	p1 = seq.Record{ID: "0", Name: "P1", Seq: "AC"}
	p2 = seq.Record{ID: "1", Name: "P2", Seq: "ACGT"}
	t1 = seq.Record{ID: "2", Name: "T1", Seq: "AC"}
	t2 = seq.Record{ID: "3", Name: "T2", Seq: "AGT"}
)

func TestStore_Add(t *testing.T) {
	s := openTestStore(t)

	e, err := s.Add("proteins.fa", []seq.Record{p1, p2}, []seq.Record{t1})
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "proteins.fa", e.Source)
	assert.Equal(t, []seq.Snapshot{{Name: "P1", Seq: "AC"}, {Name: "P2", Seq: "ACGT"}}, e.Primaries)
	assert.Equal(t, []seq.Snapshot{{Name: "T1", Seq: "AC"}}, e.Tests)
	assert.Empty(t, e.Notes)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestStore_Add_emptySelection(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name      string
		primaries []seq.Record
		tests     []seq.Record
	}{
		{"no primaries", nil, []seq.Record{t1}},
		{"no tests", []seq.Record{p1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := s.Add("", tt.primaries, tt.tests)
			require.NoError(t, err)
			assert.Nil(t, e)
		})
	}

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
	require.NoError(t, err)
	second, err := s.Add("", []seq.Record{p2}, []seq.Record{t2})
	require.NoError(t, err)
	third, err := s.Add("", []seq.Record{p1, p2}, []seq.Record{t1, t2})
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// newest first
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)
}

func TestStore_SetNotes(t *testing.T) {
	s := openTestStore(t)

	e, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
	require.NoError(t, err)

	updated, err := s.SetNotes(e.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", updated.Notes)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Notes)

	// updating notes doesn't add an entry
	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = s.SetNotes("missing", "ok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	e, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
	require.NoError(t, err)

	require.NoError(t, s.Delete(e.ID))

	_, err = s.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(e.ID), ErrNotFound)
}

func TestStore_Reset(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
		require.NoError(t, err)
	}
	require.NoError(t, s.Reset())

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport(t *testing.T) {
	s := openTestStore(t)

	e, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
	require.NoError(t, err)

	text, err := Export(e)
	require.NoError(t, err)
	assert.Equal(t, "Primary: P1\nTest: T1\nAC\n**\nAC\n\nNotes:\n", text)

	e, err = s.SetNotes(e.ID, "ok\n\n")
	require.NoError(t, err)

	text, err = Export(e)
	require.NoError(t, err)
	assert.Equal(t, "Primary: P1\nTest: T1\nAC\n**\nAC\n\nNotes:\nok", text)
}

func TestOpen_dir(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	e, err := s.Add("", []seq.Record{p1}, []seq.Record{t1})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// entries survive a reopen
	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Primaries, got.Primaries)
	assert.True(t, e.Created.Equal(got.Created))
}

func TestOpen_noDir(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}
