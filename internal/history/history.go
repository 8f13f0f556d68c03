// Package history keeps past comparison sessions and their notes.
//
// Each entry holds copies of the primary and test records that were compared,
// so an entry can be exported again after the file it came from has been
// replaced. Entries live in a BadgerDB, on disk or in memory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
)

// ErrNotFound is returned for an entry ID that isn't in the store.
var ErrNotFound = errors.New("history entry not found")

const (
	entryPrefix = "entry/"
	idPrefix    = "id/"
)

// Entry is one past comparison session.
type Entry struct {
	// ID is a random UUID
	ID string `json:"id" yaml:"id"`

	// Created is when the comparison was run
	Created time.Time `json:"created" yaml:"created"`

	// Source is the file the records were loaded from
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Primaries are copies of the primary records that were compared
	Primaries []seq.Snapshot `json:"primaries" yaml:"primaries"`

	// Tests are copies of the test records that were compared
	Tests []seq.Snapshot `json:"tests" yaml:"tests"`

	// Notes are free text, editable after the entry is created
	Notes string `json:"notes" yaml:"notes"`
}

// Selection is the entry's records as a selection to rebuild its report from.
func (e *Entry) Selection() report.Selection {
	return report.Selection{
		Primaries: seq.Records(e.Primaries),
		Tests:     seq.Records(e.Tests),
	}
}

// Export rebuilds the entry's report with its notes appended.
func Export(e *Entry) (string, error) {
	r, err := report.Build(e.Selection())
	if err != nil {
		return "", fmt.Errorf("failed to rebuild history entry %s: %w", e.ID, err)
	}
	return r.WithNotes(e.Notes).String(), nil
}

// Options for opening a Store.
type Options struct {
	// Dir is the database directory. Ignored when InMemory is true
	Dir string

	// InMemory keeps the history only for the life of the process
	InMemory bool

	// Logger receives BadgerDB's own logging. nil silences it
	Logger *slog.Logger
}

// Store is a BadgerDB backed history. Safe for concurrent use.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens, or creates, the history database.
func Open(opts Options) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errors.New("history directory is required")
		}
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory %s: %w", opts.Dir, err)
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}

	if opts.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{logger: opts.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores a new entry for a comparison between primaries and tests. Nothing
// is stored, and the entry is nil, if either group is empty.
func (s *Store) Add(source string, primaries, tests []seq.Record) (*Entry, error) {
	if len(primaries) == 0 || len(tests) == 0 {
		return nil, nil
	}

	e := &Entry{
		ID:        uuid.NewString(),
		Created:   s.now().UTC(),
		Source:    source,
		Primaries: seq.Snapshots(primaries),
		Tests:     seq.Snapshots(tests),
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return put(txn, e)
	}); err != nil {
		return nil, fmt.Errorf("failed to add history entry: %w", err)
	}
	return e, nil
}

// List returns every entry, newest first.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	// keys sort oldest first
	for l, r := 0, len(entries)-1; l < r; l, r = l+1, r-1 {
		entries[l], entries[r] = entries[r], entries[l]
	}
	return entries, nil
}

// Get returns the entry with the id.
func (s *Store) Get(id string) (*Entry, error) {
	var e *Entry
	err := s.db.View(func(txn *badger.Txn) (err error) {
		e, _, err = get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SetNotes replaces the notes of the entry with the id.
func (s *Store) SetNotes(id, notes string) (*Entry, error) {
	var e *Entry
	err := s.db.Update(func(txn *badger.Txn) (err error) {
		if e, _, err = get(txn, id); err != nil {
			return err
		}
		e.Notes = notes
		return put(txn, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the entry with the id.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, key, err := get(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete([]byte(idPrefix + id))
	})
}

// Reset removes every entry. History doesn't outlive the records it was made
// from, so this is called whenever a new file is loaded.
func (s *Store) Reset() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	return nil
}

// entryKey sorts chronologically: zero padded creation time, then the id
func entryKey(e *Entry) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", entryPrefix, e.Created.UnixNano(), e.ID))
}

func put(txn *badger.Txn, e *Entry) error {
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to serialize history entry: %w", err)
	}

	key := entryKey(e)
	if err := txn.Set(key, val); err != nil {
		return err
	}
	return txn.Set([]byte(idPrefix+e.ID), key)
}

// get looks up an entry through its id index, returning the entry's key too.
func get(txn *badger.Txn, id string) (*Entry, []byte, error) {
	item, err := txn.Get([]byte(idPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return nil, nil, err
	}

	key, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, err
	}

	item, err = txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return nil, nil, err
	}

	e := &Entry{}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, e)
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to parse history entry %s: %w", id, err)
	}
	return e, key, nil
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
