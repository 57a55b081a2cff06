// Package genome provides reference sequence loading and lookup.
package genome

// Sequence is a contiguous stretch of reference bases. Bases[0] sits at the
// 0-based chromosome position Start.
type Sequence struct {
	Name  string
	Start int64
	Bases []byte
}

// End returns the 0-based exclusive end position of the sequence.
func (s *Sequence) End() int64 {
	return s.Start + int64(len(s.Bases))
}

// Len returns the number of bases.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// Contains returns true if the 0-based position pos is inside the sequence.
func (s *Sequence) Contains(pos int64) bool {
	return pos >= s.Start && pos < s.End()
}

// Base returns the base at the 0-based chromosome position pos.
// ok is false when pos is outside the loaded window.
func (s *Sequence) Base(pos int64) (b byte, ok bool) {
	if !s.Contains(pos) {
		return 0, false
	}
	return s.Bases[pos-s.Start], true
}

// Window returns the bases in [start, end), truncated at the end of the
// sequence. ok is false when start is outside the sequence.
func (s *Sequence) Window(start, end int64) (bases []byte, ok bool) {
	if !s.Contains(start) {
		return nil, false
	}
	if end > s.End() {
		end = s.End()
	}
	if end < start {
		end = start
	}
	return s.Bases[start-s.Start : end-s.Start], true
}
