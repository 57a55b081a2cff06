package align

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ErrUnsupportedCigar is returned for CIGAR operations that cannot be
// expressed as an alignment script, such as spliced (N) alignments.
var ErrUnsupportedCigar = errors.New("unsupported CIGAR operation")

// FromCIGAR expands a CIGAR into a per-base script. ref must start at the
// read's mapped position and read must already have its soft clips removed;
// S, H and P operations are skipped. M operations are split into Match and
// Substitution by comparing bases.
func FromCIGAR(cigar sam.Cigar, ref, read []byte) (Script, error) {
	var script Script
	ri, fi := 0, 0
	for _, co := range cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if ri+n > len(read) {
				return nil, fmt.Errorf("CIGAR %v overruns read of length %d", cigar, len(read))
			}
			if fi+n > len(ref) {
				return nil, fmt.Errorf("CIGAR %v overruns reference window of length %d", cigar, len(ref))
			}
			for k := 0; k < n; k++ {
				if read[ri+k] == ref[fi+k] {
					script = append(script, Match)
				} else {
					script = append(script, Substitution)
				}
			}
			ri += n
			fi += n
		case sam.CigarInsertion:
			if ri+n > len(read) {
				return nil, fmt.Errorf("CIGAR %v overruns read of length %d", cigar, len(read))
			}
			for k := 0; k < n; k++ {
				script = append(script, Insertion)
			}
			ri += n
		case sam.CigarDeletion:
			if fi+n > len(ref) {
				return nil, fmt.Errorf("CIGAR %v overruns reference window of length %d", cigar, len(ref))
			}
			for k := 0; k < n; k++ {
				script = append(script, Deletion)
			}
			fi += n
		case sam.CigarSoftClipped, sam.CigarHardClipped, sam.CigarPadded:
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedCigar, co)
		}
	}

	if ri != len(read) {
		return nil, fmt.Errorf("CIGAR %v covers %d of %d read bases", cigar, ri, len(read))
	}
	return script, nil
}
