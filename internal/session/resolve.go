package session

import (
	"fmt"
	"strings"

	"github.com/jjtimmons/seqcmp/internal/seq"
)

// Resolve turns references to records into their IDs, in reference order and
// without duplicates. A reference is a record's ID, its exact name, or "all".
func Resolve(recs []seq.Record, refs []string) ([]string, error) {
	byID := make(map[string]bool, len(recs))
	byName := make(map[string][]string, len(recs))
	for _, r := range recs {
		byID[r.ID] = true
		byName[r.Name] = append(byName[r.Name], r.ID)
	}

	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		switch {
		case ref == "":
			continue
		case strings.EqualFold(ref, "all"):
			for _, r := range recs {
				add(r.ID)
			}
		case byID[ref]:
			add(ref)
		case len(byName[ref]) > 0:
			for _, id := range byName[ref] {
				add(id)
			}
		default:
			return nil, fmt.Errorf("%w: no record with the ID or name %q", ErrUnknownRecord, ref)
		}
	}
	return ids, nil
}
