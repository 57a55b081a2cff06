// Package region answers whether genomic positions fall inside confidence regions.
package region

import (
	"fmt"
	"sort"
)

// Region is a half-open chromosomal interval [Start, End).
type Region struct {
	Chrom string
	Start int64 // 0-based, inclusive
	End   int64 // 0-based, exclusive
}

// Contains returns true if pos lies in [Start, End) on chrom.
func (r Region) Contains(chrom string, pos int64) bool {
	return r.Chrom == chrom && r.Start <= pos && pos < r.End
}

// Len returns the number of bases covered by the region.
func (r Region) Len() int64 {
	return r.End - r.Start
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// Filter decides which positions are confident. A filter is either
// match-all (no regions configured) or explicit (only listed regions match).
type Filter struct {
	matchAll bool
	regions  []Region
}

// MatchAll returns a filter that accepts every position. It is used when no
// BED file is supplied.
func MatchAll() *Filter {
	return &Filter{matchAll: true}
}

// Explicit returns a filter over regions. The regions must be sorted by
// (Chrom, Start) and must not overlap; Sort establishes the ordering. An
// explicit filter with no regions matches nothing.
func Explicit(regions []Region) *Filter {
	return &Filter{regions: regions}
}

// IsMatchAll returns true for a filter created by MatchAll.
func (f *Filter) IsMatchAll() bool {
	return f.matchAll
}

// Len returns the number of regions in an explicit filter.
func (f *Filter) Len() int {
	return len(f.regions)
}

// Regions returns the regions of an explicit filter.
func (f *Filter) Regions() []Region {
	return f.regions
}

// Contains reports whether pos on chrom falls inside one of the regions.
// Unsorted or overlapping input yields an unspecified but deterministic result.
func (f *Filter) Contains(chrom string, pos int64) bool {
	if f.matchAll {
		return true
	}

	lo, hi := 0, len(f.regions)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		r := &f.regions[mid]
		switch {
		case chrom < r.Chrom:
			hi = mid
		case chrom > r.Chrom:
			lo = mid + 1
		case pos < r.Start:
			hi = mid
		case pos >= r.End:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Sort orders regions by chromosome name, then start position.
func Sort(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Chrom != regions[j].Chrom {
			return regions[i].Chrom < regions[j].Chrom
		}
		return regions[i].Start < regions[j].Start
	})
}
