// Package align is for pairwise global alignment of two sequences.
package align

import (
	"errors"
	"fmt"
)

const (
	// scores for the fixed scoring scheme
	match    = 1
	mismatch = -1
	gap      = -1

	// Gap is the symbol inserted into an aligned sequence opposite an extra residue
	Gap = '-'
)

// ErrEmptySequence is returned when either sequence passed to Align is empty.
var ErrEmptySequence = errors.New("empty sequence")

// direction is the transition that produced a cell's best score.
type direction uint8

const (
	diagonal direction = iota // residue against residue
	up                        // primary residue against a gap
	left                      // test residue against a gap
)

// Alignment is a global alignment between a primary and a test sequence.
type Alignment struct {
	// Primary is the primary sequence with gaps inserted
	Primary string `json:"primary" yaml:"primary"`

	// Test is the test sequence with gaps inserted
	Test string `json:"test" yaml:"test"`
}

// Align computes the optimal global alignment between primary and test. Each
// rune is one residue, whatever the alphabet.
//
// A full score matrix is filled with match +1, mismatch -1 and gap -1. When
// transitions tie, diagonal wins over up and up wins over left, so exactly one
// alignment is produced for a given pair of sequences.
func Align(primarySeq, testSeq string) (Alignment, error) {
	primary, test := []rune(primarySeq), []rune(testSeq)
	if len(primary) == 0 {
		return Alignment{}, fmt.Errorf("failed to align primary: %w", ErrEmptySequence)
	}
	if len(test) == 0 {
		return Alignment{}, fmt.Errorf("failed to align test: %w", ErrEmptySequence)
	}

	rows := len(primary) + 1
	cols := len(test) + 1

	// one backing array for each matrix, indexed [i*cols+j]
	scores := make([]int32, rows*cols)
	trace := make([]direction, rows*cols)

	for i := 1; i < rows; i++ {
		scores[i*cols] = scores[(i-1)*cols] + gap
		trace[i*cols] = up
	}
	for j := 1; j < cols; j++ {
		scores[j] = scores[j-1] + gap
		trace[j] = left
	}

	for i := 1; i < rows; i++ {
		p := primary[i-1]
		row := i * cols
		prev := (i - 1) * cols
		for j := 1; j < cols; j++ {
			diagScore := scores[prev+j-1] + mismatch
			if p == test[j-1] {
				diagScore = scores[prev+j-1] + match
			}
			upScore := scores[prev+j] + gap
			leftScore := scores[row+j-1] + gap

			best, dir := diagScore, diagonal
			if upScore > best {
				best, dir = upScore, up
			}
			if leftScore > best {
				best, dir = leftScore, left
			}

			scores[row+j] = best
			trace[row+j] = dir
		}
	}

	// walk back from the bottom-right corner. built in reverse
	alignedPrimary := make([]rune, 0, rows+cols)
	alignedTest := make([]rune, 0, rows+cols)
	i, j := len(primary), len(test)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && trace[i*cols+j] == diagonal:
			alignedPrimary = append(alignedPrimary, primary[i-1])
			alignedTest = append(alignedTest, test[j-1])
			i--
			j--
		case i > 0 && (j == 0 || trace[i*cols+j] == up):
			alignedPrimary = append(alignedPrimary, primary[i-1])
			alignedTest = append(alignedTest, Gap)
			i--
		default:
			alignedPrimary = append(alignedPrimary, Gap)
			alignedTest = append(alignedTest, test[j-1])
			j--
		}
	}

	reverse(alignedPrimary)
	reverse(alignedTest)

	return Alignment{
		Primary: string(alignedPrimary),
		Test:    string(alignedTest),
	}, nil
}

// Marker returns the match/mismatch/gap line for the alignment.
func (a Alignment) Marker() string {
	return Marker(a.Primary, a.Test)
}

// Score is the alignment's score under the fixed scoring scheme.
func (a Alignment) Score() int {
	primary, test := []rune(a.Primary), []rune(a.Test)
	score := 0
	for i := 0; i < len(primary) && i < len(test); i++ {
		switch {
		case primary[i] == Gap || test[i] == Gap:
			score += gap
		case primary[i] == test[i]:
			score += match
		default:
			score += mismatch
		}
	}
	return score
}

// Identity is the fraction of aligned positions that are matches.
func (a Alignment) Identity() float64 {
	primary, test := []rune(a.Primary), []rune(a.Test)
	if len(primary) == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < len(primary) && i < len(test); i++ {
		if primary[i] != Gap && primary[i] == test[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(primary))
}

// Cells is the number of score matrix cells filled to align sequences of
// these lengths.
func Cells(primaryLen, testLen int) int {
	return (primaryLen + 1) * (testLen + 1)
}

func reverse(b []rune) {
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
}
