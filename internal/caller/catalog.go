package caller

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inodb/vibe-vdb/internal/fileio"
	"github.com/inodb/vibe-vdb/internal/genome"
	"github.com/inodb/vibe-vdb/internal/maf"
	"github.com/inodb/vibe-vdb/internal/region"
	"github.com/inodb/vibe-vdb/internal/variant"
	"github.com/inodb/vibe-vdb/internal/vcf"
)

// Catalog formats.
const (
	FormatVCF = "vcf"
	FormatMAF = "maf"
)

// DetectCatalogFormat guesses the catalog format from the file name and,
// failing that, from the first bytes of its content. VCF is the fallback.
func DetectCatalogFormat(path string) string {
	lowerPath := strings.TrimSuffix(strings.ToLower(path), ".gz")

	switch {
	case strings.HasSuffix(lowerPath, ".vcf"):
		return FormatVCF
	case strings.HasSuffix(lowerPath, ".maf"):
		return FormatMAF
	}

	// cBioPortal mutation files
	switch filepath.Base(lowerPath) {
	case "data_mutations.txt", "data_mutations_extended.txt":
		return FormatMAF
	}

	if path == "-" {
		return FormatVCF
	}
	rc, err := fileio.Open(path)
	if err != nil {
		return FormatVCF
	}
	defer rc.Close()

	head, _ := rc.Peek(4096)
	content := string(head)
	if strings.HasPrefix(content, "##fileformat=VCF") || strings.HasPrefix(content, "#CHROM") {
		return FormatVCF
	}
	if strings.Contains(content, maf.ColChromosome) && strings.Contains(content, maf.ColTumorSeqAllele2) {
		return FormatMAF
	}
	return FormatVCF
}

// openCatalog opens a catalog parser for format, detecting it when empty.
func openCatalog(path, format string) (vcf.VariantParser, string, error) {
	if format == "" {
		format = DetectCatalogFormat(path)
	}
	switch format {
	case FormatVCF:
		p, err := vcf.NewParser(path)
		return p, format, err
	case FormatMAF:
		p, err := maf.NewParser(path)
		return p, format, err
	default:
		return nil, format, fmt.Errorf("unknown catalog format %q", format)
	}
}

// matchChrom renames v to the reference chromosome when the names differ
// only by a "chr" prefix.
func matchChrom(v *vcf.Variant, name string) {
	if v.Chrom != name && v.NormalizeChrom() == strings.TrimPrefix(name, "chr") {
		v.Chrom = name
	}
}

// LoadCatalog reads a VCF or MAF catalog into 0-based records. Chromosome
// names are matched to ref with or without a "chr" prefix. MAF
// insertions and deletions on ref's chromosome are anchored against ref;
// those whose anchor base is not loaded are dropped and counted.
func LoadCatalog(path, format string, ref *genome.Sequence) ([]*variant.Record, int, error) {
	p, format, err := openCatalog(path, format)
	if err != nil {
		return nil, 0, err
	}
	defer p.Close()

	entries, err := vcf.Collect(p)
	if err != nil {
		return nil, 0, err
	}

	unanchored := 0
	records := make([]*variant.Record, 0, len(entries))
	for _, v := range entries {
		matchChrom(v, ref.Name)
		if format == FormatMAF && v.Chrom == ref.Name && !maf.Anchor(v, ref) {
			unanchored++
			continue
		}
		records = append(records, KnownRecords(v)...)
	}
	return records, unanchored, nil
}

// KnownRecords converts a catalog entry into 0-based records, one per
// alternate allele. All records share chromosome, position, identifier and
// quality.
func KnownRecords(v *vcf.Variant) []*variant.Record {
	split := vcf.SplitMultiAllelic(v)
	out := make([]*variant.Record, 0, len(split))
	for _, s := range split {
		out = append(out, variant.New(s.Chrom, s.ZeroBasedPos(), s.ID,
			strings.ToUpper(s.Ref), strings.ToUpper(s.Alt), s.Qual))
	}
	return out
}

// BuildStats counts what happened to catalog records while building the
// known index.
type BuildStats struct {
	Total            int
	OtherChrom       int
	OutsideReference int
	OutsideRegion    int
	Unanchored       int
	Normalized       int
	Inserted         int
}

// BuildKnown seeds the known index from catalog records on ref's chromosome.
// Records outside the loaded reference or rejected by filter are skipped;
// the rest are optionally normalized and inserted in order. A nil filter
// accepts everything. A normalization failure aborts the build.
func (x *Index) BuildKnown(records []*variant.Record, filter *region.Filter, ref *genome.Sequence, normalize bool) (BuildStats, error) {
	if filter == nil {
		filter = region.MatchAll()
	}

	var stats BuildStats
	for _, r := range records {
		stats.Total++
		if r.Chrom != ref.Name {
			stats.OtherChrom++
			continue
		}
		if !ref.Contains(r.Pos) {
			stats.OutsideReference++
			continue
		}
		if !filter.Contains(r.Chrom, r.Pos) {
			stats.OutsideRegion++
			continue
		}
		if normalize {
			changed, err := variant.Normalize(ref, r)
			if err != nil {
				return stats, fmt.Errorf("catalog variant %s: %w", r.ID, err)
			}
			if changed {
				stats.Normalized++
			}
		}
		x.AddKnown(r)
		stats.Inserted++
	}
	return stats, nil
}
