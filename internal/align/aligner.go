package align

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyRead      = errors.New("empty read sequence")
	ErrEmptyReference = errors.New("empty reference window")
)

const negInf = math.MinInt32 / 2

// traceback states
const (
	stMatch uint8 = iota
	stIns
	stDel
)

// Aligner computes affine-gap alignments of a read against a reference
// window. The alignment is anchored at the start of both sequences, consumes
// the whole read and leaves the end of the reference free.
type Aligner struct {
	scoring Scoring
}

// NewAligner creates an aligner after validating the scores.
func NewAligner(s Scoring) (*Aligner, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring: %w", err)
	}
	return &Aligner{scoring: s}, nil
}

// Align returns the best-scoring script for read against ref. Ties prefer
// match/substitution over insertion over deletion, and the shortest
// reference span.
func (a *Aligner) Align(ref, read []byte) (Script, error) {
	m, n := len(read), len(ref)
	if m == 0 {
		return nil, ErrEmptyRead
	}
	if n == 0 {
		return nil, ErrEmptyReference
	}

	cols := n + 1
	size := (m + 1) * cols
	diag := make([]int, size)
	ins := make([]int, size)
	del := make([]int, size)
	diagBack := make([]uint8, size)
	insBack := make([]uint8, size)
	delBack := make([]uint8, size)
	for k := range diag {
		diag[k], ins[k], del[k] = negInf, negInf, negInf
	}
	diag[0] = 0

	s := a.scoring
	for i := 0; i <= m; i++ {
		for j := 0; j <= n; j++ {
			k := i*cols + j
			if i > 0 && j > 0 {
				p := k - cols - 1
				best, from := best3(diag[p], ins[p], del[p])
				if best > negInf {
					diag[k] = best + s.score(read[i-1], ref[j-1])
					diagBack[k] = from
				}
			}
			if i > 0 {
				p := k - cols
				open, from := best2(diag[p], stMatch, del[p], stDel)
				if open > negInf {
					open += s.GapOpen
				}
				ext := ins[p]
				if ext > negInf {
					ext += s.GapExtend
				}
				if open >= ext && open > negInf {
					ins[k], insBack[k] = open, from
				} else if ext > negInf {
					ins[k], insBack[k] = ext, stIns
				}
			}
			if j > 0 {
				p := k - 1
				open, from := best2(diag[p], stMatch, ins[p], stIns)
				if open > negInf {
					open += s.GapOpen
				}
				ext := del[p]
				if ext > negInf {
					ext += s.GapExtend
				}
				if open >= ext && open > negInf {
					del[k], delBack[k] = open, from
				} else if ext > negInf {
					del[k], delBack[k] = ext, stDel
				}
			}
		}
	}

	// The read must be consumed; the reference end is free. Trailing
	// deletions never improve the score, so only the diagonal and insertion
	// states are candidates.
	endJ, endState, endScore := -1, stMatch, negInf
	row := m * cols
	for j := 0; j <= n; j++ {
		if diag[row+j] > endScore {
			endJ, endState, endScore = j, stMatch, diag[row+j]
		}
		if ins[row+j] > endScore {
			endJ, endState, endScore = j, stIns, ins[row+j]
		}
	}
	if endJ < 0 {
		return nil, fmt.Errorf("no alignment of %d read bases against %d reference bases", m, n)
	}

	var rev Script
	i, j, state := m, endJ, endState
	for i > 0 || j > 0 {
		k := i*cols + j
		switch state {
		case stMatch:
			if read[i-1] == ref[j-1] {
				rev = append(rev, Match)
			} else {
				rev = append(rev, Substitution)
			}
			state = diagBack[k]
			i--
			j--
		case stIns:
			rev = append(rev, Insertion)
			state = insBack[k]
			i--
		case stDel:
			rev = append(rev, Deletion)
			state = delBack[k]
			j--
		}
	}

	script := make(Script, len(rev))
	for k, op := range rev {
		script[len(rev)-1-k] = op
	}
	return script, nil
}

func best2(a int, sa uint8, b int, sb uint8) (int, uint8) {
	if b > a {
		return b, sb
	}
	return a, sa
}

func best3(d, i, del int) (int, uint8) {
	best, from := d, stMatch
	if i > best {
		best, from = i, stIns
	}
	if del > best {
		best, from = del, stDel
	}
	return best, from
}
