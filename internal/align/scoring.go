package align

import "fmt"

// Scoring holds the affine-gap alignment scores. A gap of length k scores
// GapOpen + (k-1)*GapExtend.
type Scoring struct {
	Match     int `mapstructure:"match"`
	Mismatch  int `mapstructure:"mismatch"`
	GapOpen   int `mapstructure:"gap_open"`
	GapExtend int `mapstructure:"gap_extend"`
}

// DefaultScoring returns scores suited to short-read realignment.
func DefaultScoring() Scoring {
	return Scoring{
		Match:     1,
		Mismatch:  -4,
		GapOpen:   -6,
		GapExtend: -1,
	}
}

// Validate checks the sign conventions: a positive match score and
// non-positive penalties.
func (s Scoring) Validate() error {
	if s.Match <= 0 {
		return fmt.Errorf("match score must be positive, got %d", s.Match)
	}
	if s.Mismatch > 0 {
		return fmt.Errorf("mismatch penalty must be <= 0, got %d", s.Mismatch)
	}
	if s.GapOpen > 0 {
		return fmt.Errorf("gap open penalty must be <= 0, got %d", s.GapOpen)
	}
	if s.GapExtend > 0 {
		return fmt.Errorf("gap extend penalty must be <= 0, got %d", s.GapExtend)
	}
	return nil
}

func (s Scoring) score(a, b byte) int {
	if a == b && a != 'N' {
		return s.Match
	}
	return s.Mismatch
}

func (s Scoring) String() string {
	return fmt.Sprintf("match=%d mismatch=%d gap_open=%d gap_extend=%d",
		s.Match, s.Mismatch, s.GapOpen, s.GapExtend)
}
