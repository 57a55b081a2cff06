package vcf

// Variant represents a single catalog entry from a VCF file.
type Variant struct {
	Chrom  string                 // Chromosome name (e.g., "12", "chr12")
	Pos    int64                  // 1-based genomic position
	ID     string                 // Variant identifier (e.g., rs ID)
	Ref    string                 // Reference allele
	Alt    string                 // Alternate allele (single allele after splitting)
	Qual   float64                // Quality score
	Filter string                 // Filter status (PASS or filter name)
	Info   map[string]interface{} // INFO field key-value pairs

	SampleColumns string // FORMAT and sample columns, tab-joined
}

// IsInsertion returns true if the variant is an insertion.
func (v *Variant) IsInsertion() bool {
	return len(v.Alt) > len(v.Ref)
}

// IsDeletion returns true if the variant is a deletion.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.Alt)
}

// ZeroBasedPos returns Pos converted to a 0-based coordinate.
func (v *Variant) ZeroBasedPos() int64 {
	return v.Pos - 1
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
