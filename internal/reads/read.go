// Package reads streams aligned reads from SAM files and applies the
// mapping-quality and flag filters used before variant discovery.
package reads

import (
	"github.com/biogo/hts/sam"

	"github.com/inodb/vibe-vdb/internal/align"
)

// Read is one aligned read with its soft clips removed.
type Read struct {
	Name  string
	Chrom string
	Pos   int64 // 0-based position of the first aligned base
	MapQ  byte
	Flags sam.Flags
	Cigar sam.Cigar
	Seq   []byte
	Qual  []byte // phred scores, not the +33 text encoding

	// Script is filled in by the alignment stage.
	Script align.Script
}

// RefSpan returns the number of reference bases covered by the CIGAR.
func (r *Read) RefSpan() int {
	n := 0
	for _, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion, sam.CigarSkipped:
			n += co.Len()
		}
	}
	return n
}

// clips returns the number of soft-clipped bases at each end and whether
// the CIGAR carries soft or hard clips at all.
func clips(cigar sam.Cigar) (lead, trail int, soft, hard bool) {
	seenAligned := false
	for _, co := range cigar {
		switch co.Type() {
		case sam.CigarSoftClipped:
			soft = true
			if seenAligned {
				trail += co.Len()
			} else {
				lead += co.Len()
			}
		case sam.CigarHardClipped:
			hard = true
		case sam.CigarPadded:
		default:
			seenAligned = true
		}
	}
	return lead, trail, soft, hard
}

// stripSoftClips removes soft-clipped bases from the read sequence and
// quality.
func stripSoftClips(r *Read) {
	lead, trail, _, _ := clips(r.Cigar)
	if lead+trail == 0 {
		return
	}
	if lead+trail >= len(r.Seq) {
		r.Seq = r.Seq[:0]
		r.Qual = r.Qual[:0]
		return
	}
	r.Seq = r.Seq[lead : len(r.Seq)-trail]
	if len(r.Qual) >= lead+trail {
		r.Qual = r.Qual[lead : len(r.Qual)-trail]
	}
}
