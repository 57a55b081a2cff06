package caller

import (
	"sort"

	"github.com/biogo/store/llrb"

	"github.com/inodb/vibe-vdb/internal/variant"
)

// MergeResult reports what Merge did with a candidate.
type MergeResult int

const (
	// MergedKnown means an identical catalog variant gained one read.
	MergedKnown MergeResult = iota
	// MergedDiscovered means an identical discovered variant gained one read.
	MergedDiscovered
	// NewDiscovered means the candidate became a new discovered variant.
	NewDiscovered
)

func (m MergeResult) String() string {
	switch m {
	case MergedKnown:
		return "merged_known"
	case MergedDiscovered:
		return "merged_discovered"
	case NewDiscovered:
		return "new_discovered"
	default:
		return "unknown"
	}
}

// position is a tree key for a 0-based reference position.
type position int64

func (p position) Compare(c llrb.Comparable) int {
	q := c.(position)
	switch {
	case p < q:
		return -1
	case p > q:
		return 1
	}
	return 0
}

// MergeStats counts merge outcomes.
type MergeStats struct {
	Known      int
	Discovered int
	New        int
}

// Index holds the known and discovered variants of one reference sequence,
// keyed by 0-based position. Each position holds its alternates in insertion
// order; the last one is the head.
type Index struct {
	known         map[int64][]*variant.Record
	discovered    map[int64][]*variant.Record
	knownPos      llrb.Tree
	discoveredPos llrb.Tree

	knownCount      int
	discoveredCount int
	merges          MergeStats
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		known:      make(map[int64][]*variant.Record),
		discovered: make(map[int64][]*variant.Record),
	}
}

// AddKnown inserts a catalog variant. A record at an occupied position
// becomes the head; earlier alternates stay reachable.
func (x *Index) AddKnown(r *variant.Record) {
	if _, ok := x.known[r.Pos]; !ok {
		x.knownPos.Insert(position(r.Pos))
	}
	x.known[r.Pos] = append(x.known[r.Pos], r)
	x.knownCount++
}

// Merge folds a normalized read-derived candidate into the index. An equal
// known variant takes precedence over an equal discovered one; otherwise v
// is kept as a new discovered head with one supporting read.
func (x *Index) Merge(v *variant.Record) MergeResult {
	for _, k := range x.known[v.Pos] {
		if k.Equal(v) {
			k.ReadSupport++
			x.merges.Known++
			return MergedKnown
		}
	}

	alts, ok := x.discovered[v.Pos]
	for _, d := range alts {
		if d.Equal(v) {
			d.ReadSupport++
			x.merges.Discovered++
			return MergedDiscovered
		}
	}

	if !ok {
		x.discoveredPos.Insert(position(v.Pos))
	}
	v.ReadSupport = 1
	x.discovered[v.Pos] = append(alts, v)
	x.discoveredCount++
	x.merges.New++
	return NewDiscovered
}

// AddCoverage counts one more read spanning pos for every known variant
// there. Positions without known variants are ignored.
func (x *Index) AddCoverage(pos int64) {
	for _, k := range x.known[pos] {
		k.TotalReadsAtPosition++
	}
}

// Apply merges the candidates and coverage of one read.
func (x *Index) Apply(ev *ReadEvents) {
	for _, c := range ev.Candidates {
		x.Merge(c)
	}
	for _, pos := range ev.Coverage {
		x.AddCoverage(pos)
	}
}

// KnownAt returns the known variants at pos, newest first.
func (x *Index) KnownAt(pos int64) []*variant.Record {
	return newestFirst(x.known[pos])
}

// DiscoveredAt returns the discovered variants at pos, newest first.
func (x *Index) DiscoveredAt(pos int64) []*variant.Record {
	return newestFirst(x.discovered[pos])
}

// KnownHead returns the most recently added known variant at pos.
func (x *Index) KnownHead(pos int64) *variant.Record {
	return head(x.known[pos])
}

// DiscoveredHead returns the most recently added discovered variant at pos.
func (x *Index) DiscoveredHead(pos int64) *variant.Record {
	return head(x.discovered[pos])
}

// KnownCount returns the number of known variants.
func (x *Index) KnownCount() int { return x.knownCount }

// DiscoveredCount returns the number of distinct discovered variants.
func (x *Index) DiscoveredCount() int { return x.discoveredCount }

// KnownPositions returns the number of positions holding known variants.
func (x *Index) KnownPositions() int { return x.knownPos.Len() }

// MergeStats returns merge outcome counters.
func (x *Index) MergeStats() MergeStats { return x.merges }

// Nearby returns the discovered variants with |d.Pos - pos| <= window,
// ordered by position, Ref and Alt.
func (x *Index) Nearby(pos int64, window int64) []*variant.Record {
	if window < 0 {
		window = 0
	}
	var out []*variant.Record
	x.discoveredPos.DoRange(func(c llrb.Comparable) bool {
		out = append(out, x.discovered[int64(c.(position))]...)
		return false
	}, position(pos-window), position(pos+window+1))

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if a.Ref != b.Ref {
			return a.Ref < b.Ref
		}
		return a.Alt < b.Alt
	})
	return out
}

// Report calls fn for every known variant in ascending position order,
// newest first within a position, together with the discovered variants
// within window bases of it. Iteration stops at the first error.
func (x *Index) Report(window int64, fn func(known *variant.Record, nearby []*variant.Record) error) error {
	var err error
	x.knownPos.Do(func(c llrb.Comparable) bool {
		pos := int64(c.(position))
		nearby := x.Nearby(pos, window)
		for _, k := range x.KnownAt(pos) {
			if err = fn(k, nearby); err != nil {
				return true
			}
		}
		return false
	})
	return err
}

func newestFirst(alts []*variant.Record) []*variant.Record {
	if len(alts) == 0 {
		return nil
	}
	out := make([]*variant.Record, len(alts))
	for i, r := range alts {
		out[len(alts)-1-i] = r
	}
	return out
}

func head(alts []*variant.Record) *variant.Record {
	if len(alts) == 0 {
		return nil
	}
	return alts[len(alts)-1]
}
