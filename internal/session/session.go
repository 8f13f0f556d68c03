// Package session is for the loaded records, the two groups selected from them,
// and the history of comparisons between those groups.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/seq"
)

// ErrUnknownRecord is returned when selecting a record that isn't loaded.
var ErrUnknownRecord = errors.New("unknown record")

// Group is one of the two sets of selected records.
type Group int

const (
	// Primary records are compared against each of the test records
	Primary Group = iota

	// Test records are those the primaries are compared against
	Test
)

func (g Group) String() string {
	switch g {
	case Primary:
		return "primary"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// ParseGroup parses "primary" or "test".
func ParseGroup(s string) (Group, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "primaries":
		return Primary, nil
	case "test", "tests":
		return Test, nil
	}
	return 0, fmt.Errorf("unknown group %q: expected primary or test", s)
}

// Session holds one loaded set of records and the selections made from it.
// Safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	source   string
	records  []seq.Record
	selected [2]map[string]bool
	gen      uint64 // bumped on every Load

	builder report.Builder
	history *history.Store
}

// New returns an empty session. hist may be nil, in which case comparisons
// are not recorded.
func New(builder report.Builder, hist *history.Store) *Session {
	s := &Session{builder: builder, history: hist}
	s.clearSelections()
	return s
}

// Load replaces the loaded records. Selections and history from the previous
// load are dropped.
func (s *Session) Load(source string, recs []seq.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.source = source
	s.records = append([]seq.Record(nil), recs...)
	s.clearSelections()

	if s.history != nil {
		return s.history.Reset()
	}
	return nil
}

// Source is the name of the loaded file.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Records returns the loaded records in file order.
func (s *Session) Records() []seq.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]seq.Record(nil), s.records...)
}

// History is the session's history store, or nil.
func (s *Session) History() *history.Store {
	return s.history
}

// Select adds records, by ID, to a group.
func (s *Session) Select(g Group, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIDs(ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.selected[g][id] = true
	}
	return nil
}

// Deselect removes records, by ID, from a group.
func (s *Session) Deselect(g Group, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.selected[g], id)
	}
}

// SetSelection replaces a group's selection.
func (s *Session) SetSelection(g Group, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIDs(ids); err != nil {
		return err
	}
	s.selected[g] = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[g][id] = true
	}
	return nil
}

// Selected returns a group's records in file order, regardless of the order
// they were selected in.
func (s *Session) Selected(g Group) []seq.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked(g)
}

// Selection is both groups, ready to build a report from.
func (s *Session) Selection() report.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Selection{
		Primaries: s.selectedLocked(Primary),
		Tests:     s.selectedLocked(Test),
	}
}

// Ready is true when at least one primary and one test are selected.
func (s *Session) Ready() bool {
	return !s.Selection().Empty()
}

// Summary describes the size of each group, ex: "2 primaries - 3 tests".
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("%d primaries - %d tests", len(s.selected[Primary]), len(s.selected[Test]))
}

// Compare builds the report for the current selection and records it in the
// history. The entry is nil if the selection is empty, there is no history,
// or the records were reloaded while the report was being built.
func (s *Session) Compare(ctx context.Context) (*report.Report, *history.Entry, error) {
	sel, source, gen := s.snapshot()

	r, err := s.builder.Build(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	if r.Empty() || s.history == nil {
		return r, nil, nil
	}

	e, err := s.record(gen, source, sel)
	if err != nil {
		return r, nil, err
	}
	return r, e, nil
}

// snapshot reads the selection, source and load generation together.
func (s *Session) snapshot() (report.Selection, string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel := report.Selection{
		Primaries: s.selectedLocked(Primary),
		Tests:     s.selectedLocked(Test),
	}
	return sel, s.source, s.gen
}

// record adds sel to the history unless a Load has happened since gen was read.
// The read lock is held across the add so a Load can't reset in between.
func (s *Session) record(gen uint64, source string, sel report.Selection) (*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen != gen {
		return nil, nil
	}
	return s.history.Add(source, sel.Primaries, sel.Tests)
}

func (s *Session) selectedLocked(g Group) []seq.Record {
	var recs []seq.Record
	for _, r := range s.records {
		if s.selected[g][r.ID] {
			recs = append(recs, r)
		}
	}
	return recs
}

func (s *Session) checkIDs(ids []string) error {
	known := make(map[string]bool, len(s.records))
	for _, r := range s.records {
		known[r.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
		}
	}
	return nil
}

func (s *Session) clearSelections() {
	s.selected = [2]map[string]bool{{}, {}}
}
