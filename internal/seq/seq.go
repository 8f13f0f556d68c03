// Package seq is for the named sequences that are compared against one another.
package seq

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Record is a single named sequence from a loaded file.
type Record struct {
	// ID is unique and stable within one load (its position in the file)
	ID string `json:"id" yaml:"id"`

	// Name is the record's header, or a positional placeholder
	Name string `json:"name" yaml:"name"`

	// Seq is the uppercase residue sequence, without whitespace
	Seq string `json:"sequence" yaml:"sequence"`
}

// Len is the number of residues in the record.
func (r Record) Len() int {
	return utf8.RuneCountInString(r.Seq)
}

// Snapshot is the name and sequence of a record, kept after the record's load
// has been replaced.
type Snapshot struct {
	Name string `json:"name" yaml:"name"`
	Seq  string `json:"sequence" yaml:"sequence"`
}

// Snapshots copies the name and sequence of each record.
func Snapshots(recs []Record) []Snapshot {
	snaps := make([]Snapshot, 0, len(recs))
	for _, r := range recs {
		snaps = append(snaps, Snapshot{Name: r.Name, Seq: r.Seq})
	}
	return snaps
}

// Records turns snapshots back into records, numbered by position.
func Records(snaps []Snapshot) []Record {
	recs := make([]Record, 0, len(snaps))
	for i, s := range snaps {
		recs = append(recs, Record{ID: strconv.Itoa(i), Name: s.Name, Seq: s.Seq})
	}
	return recs
}

// defaultName is the name of a record whose header is blank.
func defaultName(kept int) string {
	return fmt.Sprintf("Sequence %d", kept+1)
}
