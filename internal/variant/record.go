// Package variant defines variant records and their canonical representation.
package variant

import "fmt"

// Type classifies a variant by the lengths of its alleles.
type Type int

const (
	SNP Type = iota
	Insertion
	Deletion
	Replace
)

func (t Type) String() string {
	switch t {
	case SNP:
		return "SNP"
	case Insertion:
		return "INS"
	case Deletion:
		return "DEL"
	case Replace:
		return "REPLACE"
	default:
		return "UNKNOWN"
	}
}

const (
	// MissingID is the identifier of variants that do not come from a catalog.
	MissingID = "."
	// PlaceholderQuality is the quality assigned to read-derived variants.
	PlaceholderQuality = 0.0
)

// Classify derives the variant type from the allele lengths.
func Classify(ref, alt string) Type {
	refLen, altLen := len(ref), len(alt)
	switch {
	case refLen == 1 && altLen == 1:
		return SNP
	case refLen > altLen && altLen == 1:
		return Deletion
	case altLen > refLen && refLen == 1:
		return Insertion
	default:
		return Replace
	}
}

// Record is a variant together with its read counts.
type Record struct {
	Chrom   string
	Pos     int64 // 0-based position of the first Ref base
	ID      string
	Ref     string
	Alt     string
	Quality float64
	// Type is fixed at construction and not recomputed when normalization
	// moves the variant.
	Type Type

	ReadSupport          int // reads carrying exactly this allele
	TotalReadsAtPosition int // reads covering Pos
}

// New creates a record and classifies it.
func New(chrom string, pos int64, id, ref, alt string, quality float64) *Record {
	if id == "" {
		id = MissingID
	}
	return &Record{
		Chrom:   chrom,
		Pos:     pos,
		ID:      id,
		Ref:     ref,
		Alt:     alt,
		Quality: quality,
		Type:    Classify(ref, alt),
	}
}

// Equal reports whether two records describe the same allele: same
// chromosome, position, Ref and Alt. Counters and identifiers are ignored.
func (r *Record) Equal(o *Record) bool {
	return r.Pos == o.Pos && r.Chrom == o.Chrom && r.Ref == o.Ref && r.Alt == o.Alt
}

// String returns the record in chrom:pos ref>alt form with a 1-based position.
func (r *Record) String() string {
	return fmt.Sprintf("%s:%d %s>%s", r.Chrom, r.Pos+1, r.Ref, r.Alt)
}
