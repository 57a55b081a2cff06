package genome

import "github.com/inodb/vibe-vdb/internal/region"

func isNucleotide(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// UnambiguousRegions splits the sequence into maximal runs of A/C/G/T bases,
// skipping N and IUPAC ambiguity codes. The result is sorted and can be used
// as a region filter when no BED file is given.
func (s *Sequence) UnambiguousRegions() []region.Region {
	var regions []region.Region
	runStart := -1
	for i, b := range s.Bases {
		switch {
		case isNucleotide(b) && runStart < 0:
			runStart = i
		case !isNucleotide(b) && runStart >= 0:
			regions = append(regions, region.Region{
				Chrom: s.Name,
				Start: s.Start + int64(runStart),
				End:   s.Start + int64(i),
			})
			runStart = -1
		}
	}
	if runStart >= 0 {
		regions = append(regions, region.Region{
			Chrom: s.Name,
			Start: s.Start + int64(runStart),
			End:   s.End(),
		})
	}
	return regions
}
