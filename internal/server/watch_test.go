package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
	"github.com/jjtimmons/seqcmp/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	require.NoError(t, os.WriteFile(path, []byte(">a\nAC\n>b\nGT\n"), 0644))

	sess := session.New(report.Builder{}, nil)
	require.NoError(t, Reload(sess, path))
	assert.Equal(t, path, sess.Source())
	assert.Len(t, sess.Records(), 2)

	require.NoError(t, os.WriteFile(path, []byte("nothing\n"), 0644))
	assert.ErrorIs(t, Reload(sess, path), seq.ErrNoRecords)
	assert.Len(t, sess.Records(), 2)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.fa")
	require.NoError(t, os.WriteFile(path, []byte(">a\nAC\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.fa"), []byte(">b\nGT\n"), 0644))

	// keep writing until the watcher is up and sees it
	require.Eventually(t, func() bool {
		if reloads.Load() > 0 {
			return true
		}
		_ = os.WriteFile(path, []byte(">a\nACGT\n"), 0644)
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_missingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "in.fa"), nil, func() error { return nil })
	assert.Error(t, err)
}

func TestNewTracerProvider(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider(&buf)
	require.NoError(t, err)

	_, err = report.Builder{Workers: 2}.Build(context.Background(), report.Selection{
		Primaries: []seq.Record{{ID: "0", Name: "P1", Seq: "ACGT"}},
		Tests:     []seq.Record{{ID: "1", Name: "T1", Seq: "AGT"}},
	})
	require.NoError(t, err)

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "report.Build"`)
}
