// Package align produces alignment scripts: per-base edit operations that
// describe how a read differs from the reference it is mapped to.
package align

import (
	"fmt"
	"strings"
)

// Op is one alignment script operation.
type Op byte

const (
	Match        Op = 'M' // read base equals reference base
	Insertion    Op = 'I' // read base absent from the reference
	Deletion     Op = 'D' // reference base absent from the read
	Substitution Op = 'X' // read base differs from reference base
)

// Valid reports whether o is one of the four defined operations.
func (o Op) Valid() bool {
	switch o {
	case Match, Insertion, Deletion, Substitution:
		return true
	}
	return false
}

// ConsumesRead reports whether o advances the read cursor.
func (o Op) ConsumesRead() bool {
	return o == Match || o == Insertion || o == Substitution
}

// ConsumesRef reports whether o advances the reference cursor.
func (o Op) ConsumesRef() bool {
	return o == Match || o == Deletion || o == Substitution
}

func (o Op) String() string {
	return string(rune(o))
}

// Script is an ordered sequence of operations for one read.
type Script []Op

// ParseScript converts a string such as "MMMXMM" into a Script. Unknown
// codes are rejected.
func ParseScript(s string) (Script, error) {
	script := make(Script, len(s))
	for i := 0; i < len(s); i++ {
		op := Op(s[i])
		if !op.Valid() {
			return nil, fmt.Errorf("invalid operation %q at offset %d", s[i], i)
		}
		script[i] = op
	}
	return script, nil
}

// String returns the one-letter form of the script.
func (s Script) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, op := range s {
		b.WriteByte(byte(op))
	}
	return b.String()
}

// ReadLen returns the number of read bases the script consumes.
func (s Script) ReadLen() int {
	n := 0
	for _, op := range s {
		if op.ConsumesRead() {
			n++
		}
	}
	return n
}

// RefLen returns the number of reference bases the script consumes.
func (s Script) RefLen() int {
	n := 0
	for _, op := range s {
		if op.ConsumesRef() {
			n++
		}
	}
	return n
}
