// Package caller discovers variants in aligned reads and aggregates them
// against a catalog of known variants.
package caller

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-vdb/internal/align"
	"github.com/inodb/vibe-vdb/internal/genome"
	"github.com/inodb/vibe-vdb/internal/reads"
	"github.com/inodb/vibe-vdb/internal/variant"
)

var (
	// ErrUnknownOp is returned for alignment script codes other than
	// Match, Insertion, Deletion and Substitution.
	ErrUnknownOp = errors.New("unknown alignment operation")
	// ErrScriptOverrun is returned when a script consumes more bases than
	// the read or the reference window holds.
	ErrScriptOverrun = errors.New("alignment script overruns sequence")
	// ErrNoAnchor is returned when an indel needs an anchor base that lies
	// before the reference window.
	ErrNoAnchor = errors.New("no anchor base before variant")
)

// ReadEvents is everything one read contributes to the index: closed,
// normalized candidates and the positions whose coverage it increments.
type ReadEvents struct {
	Candidates []*variant.Record
	Coverage   []int64
}

// Interpreter turns alignment scripts into candidate variants.
type Interpreter struct {
	normalize bool
}

// NewInterpreter creates an interpreter. With normalize false, candidates
// keep the position at which the script placed them.
func NewInterpreter(normalize bool) *Interpreter {
	return &Interpreter{normalize: normalize}
}

// pending is a candidate that has been opened but not yet closed by a
// Match.
type pending struct {
	open  bool
	start int64
	ref   []byte
	alt   []byte
}

func (p *pending) begin(pos int64) {
	if p.open {
		return
	}
	p.open = true
	p.start = pos
	p.ref = p.ref[:0]
	p.alt = p.alt[:0]
}

// Walk scans read.Script against ref without touching any index. A
// candidate still open when the script ends is dropped.
func (it *Interpreter) Walk(read *reads.Read, ref *genome.Sequence) (*ReadEvents, error) {
	ev := &ReadEvents{}
	refPos := read.Pos
	ri := 0
	var cand pending

	for i, op := range read.Script {
		switch op {
		case align.Insertion:
			if ri >= len(read.Seq) {
				return nil, overrun(read, i, "read")
			}
			cand.begin(refPos)
			cand.alt = append(cand.alt, read.Seq[ri])
			ri++

		case align.Deletion:
			b, ok := ref.Base(refPos)
			if !ok {
				return nil, overrun(read, i, "reference")
			}
			cand.begin(refPos)
			cand.ref = append(cand.ref, b)
			refPos++
			ev.Coverage = append(ev.Coverage, refPos)

		case align.Substitution:
			b, ok := ref.Base(refPos)
			if !ok {
				return nil, overrun(read, i, "reference")
			}
			if ri >= len(read.Seq) {
				return nil, overrun(read, i, "read")
			}
			cand.begin(refPos)
			cand.ref = append(cand.ref, b)
			cand.alt = append(cand.alt, read.Seq[ri])
			ri++
			refPos++
			ev.Coverage = append(ev.Coverage, refPos)

		case align.Match:
			if cand.open {
				rec, err := it.close(read.Chrom, &cand, ref)
				if err != nil {
					return nil, err
				}
				ev.Candidates = append(ev.Candidates, rec)
				cand.open = false
			}
			if _, ok := ref.Base(refPos); !ok {
				return nil, overrun(read, i, "reference")
			}
			if ri >= len(read.Seq) {
				return nil, overrun(read, i, "read")
			}
			ri++
			refPos++
			ev.Coverage = append(ev.Coverage, refPos)

		default:
			return nil, fmt.Errorf("%w %q at script offset %d of read %s", ErrUnknownOp, byte(op), i, read.Name)
		}
	}

	return ev, nil
}

// close builds the record for a pending candidate. A side with no bases is
// anchored on the reference base before the candidate, which is prepended
// to both alleles.
func (it *Interpreter) close(chrom string, cand *pending, ref *genome.Sequence) (*variant.Record, error) {
	start := cand.start
	refAllele, altAllele := string(cand.ref), string(cand.alt)
	if refAllele == "" || altAllele == "" {
		anchor, ok := ref.Base(start - 1)
		if !ok {
			return nil, fmt.Errorf("%w at %s:%d", ErrNoAnchor, chrom, start)
		}
		refAllele = string(anchor) + refAllele
		altAllele = string(anchor) + altAllele
		start--
	}

	rec := variant.New(chrom, start, variant.MissingID, refAllele, altAllele, variant.PlaceholderQuality)
	if it.normalize {
		if _, err := variant.Normalize(ref, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ProcessRead walks one read and merges the result into idx.
func (it *Interpreter) ProcessRead(read *reads.Read, ref *genome.Sequence, idx *Index) error {
	ev, err := it.Walk(read, ref)
	if err != nil {
		return err
	}
	idx.Apply(ev)
	return nil
}

// IsFatal reports whether a per-read error must abort the run rather than
// skip the read.
func IsFatal(err error) bool {
	return errors.Is(err, variant.ErrOutOfBounds)
}

func overrun(read *reads.Read, offset int, what string) error {
	return fmt.Errorf("%w: %s exhausted at script offset %d of read %s", ErrScriptOverrun, what, offset, read.Name)
}
