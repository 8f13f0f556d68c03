package align

const (
	// MarkMatch marks a position where both residues are equal
	MarkMatch = '*'

	// MarkMismatch marks a position where the residues differ
	MarkMismatch = '.'

	// MarkGap marks a position with a gap on either side
	MarkGap = '-'
)

// Marker builds the annotation line for two aligned sequences of equal length.
func Marker(alignedPrimary, alignedTest string) string {
	primary, test := []rune(alignedPrimary), []rune(alignedTest)
	marker := make([]byte, min(len(primary), len(test)))
	for i := range marker {
		p, t := primary[i], test[i]
		switch {
		case p == Gap || t == Gap:
			marker[i] = MarkGap
		case p == t:
			marker[i] = MarkMatch
		default:
			marker[i] = MarkMismatch
		}
	}
	return string(marker)
}
