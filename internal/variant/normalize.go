package variant

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when normalization needs reference bases outside
// the loaded window. It points at an upstream position bug and is fatal.
var ErrOutOfBounds = errors.New("normalization ran outside the reference window")

// Reference gives access to reference bases by 0-based chromosome position.
type Reference interface {
	Base(pos int64) (byte, bool)
}

// Normalize rewrites an insertion or deletion to its left-most equivalent
// representation. SNP and Replace records are left alone. The returned flag
// is true when the record moved.
//
// Indels carry an anchor base at Pos. While the anchor equals the last base
// of the inserted (or deleted) allele, the allele is rotated one base to the
// right around the preceding reference base and Pos moves left. Shifting
// stops at chromosome position 0.
func Normalize(ref Reference, r *Record) (bool, error) {
	switch r.Type {
	case Insertion:
		alt, pos, changed, err := shiftLeft(ref, r.Alt, r.Pos)
		if err != nil {
			return false, fmt.Errorf("normalize %s: %w", r, err)
		}
		anchor, _ := ref.Base(pos)
		r.Pos = pos
		r.Alt = alt
		r.Ref = string(anchor)
		return changed, nil

	case Deletion:
		del, pos, changed, err := shiftLeft(ref, r.Ref, r.Pos)
		if err != nil {
			return false, fmt.Errorf("normalize %s: %w", r, err)
		}
		anchor, _ := ref.Base(pos)
		r.Pos = pos
		r.Ref = del
		r.Alt = string(anchor)
		return changed, nil
	}

	return false, nil
}

// shiftLeft rotates allele leftwards through the reference while the base at
// pos matches the allele's last base.
func shiftLeft(ref Reference, allele string, pos int64) (string, int64, bool, error) {
	if allele == "" {
		return allele, pos, false, nil
	}

	base, ok := ref.Base(pos)
	if !ok {
		return "", 0, false, fmt.Errorf("%w: position %d", ErrOutOfBounds, pos)
	}

	buf := []byte(allele)
	last := len(buf) - 1
	changed := false
	for base == buf[last] && pos > 0 {
		prev, ok := ref.Base(pos - 1)
		if !ok {
			return "", 0, false, fmt.Errorf("%w: position %d", ErrOutOfBounds, pos-1)
		}
		copy(buf[1:], buf[:last])
		buf[0] = prev
		pos--
		base = prev
		changed = true
	}

	return string(buf), pos, changed, nil
}
