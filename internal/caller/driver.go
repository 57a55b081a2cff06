package caller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-vdb/internal/align"
	"github.com/inodb/vibe-vdb/internal/bed"
	"github.com/inodb/vibe-vdb/internal/genome"
	"github.com/inodb/vibe-vdb/internal/reads"
	"github.com/inodb/vibe-vdb/internal/region"
)

// Stage names the part of a run that failed.
type Stage string

const (
	StageReference  Stage = "reference"
	StageCatalog    Stage = "catalog"
	StageRegion     Stage = "region"
	StageReadStream Stage = "read-stream"
	StageReport     Stage = "report"
)

// StageError wraps the first failure of a run with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Config describes one counting run.
type Config struct {
	ReferencePath string
	CatalogPath   string
	ReadsPath     string
	RegionsPath   string // optional BED file
	// CatalogFormat is "vcf" or "maf"; empty detects it from the file.
	CatalogFormat string

	// Chrom selects the reference sequence; empty means the first one.
	Chrom string
	// Start and Stop restrict reads to mapped positions in [Start, Stop).
	// A zero Stop means the end of the reference.
	Start int64
	Stop  int64

	MinMapQ     int
	AlignMode   string
	WindowSlack int
	Scoring     align.Scoring
	Normalize   bool
	// ExcludeAmbiguous limits calls to runs of unambiguous reference bases
	// when no BED file is given.
	ExcludeAmbiguous bool
	Workers          int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinMapQ:     reads.DefaultMinMapQ,
		AlignMode:   ModeCIGAR,
		WindowSlack: 10,
		Scoring:     align.DefaultScoring(),
		Normalize:   true,
		Workers:     1,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Reference *genome.Sequence
	Filter    *region.Filter
	Index     *Index
	Catalog   BuildStats
	Reads     reads.Stats
	Calls     RunStats
}

// Run loads the reference, region filter and catalog, then streams the
// reads through the interpreter. Any failure is returned as a *StageError
// and no partial result is returned.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinMapQ < 0 || cfg.MinMapQ > 255 {
		return nil, stageErr(StageReadStream, fmt.Errorf("min MAPQ %d out of range", cfg.MinMapQ))
	}

	ref, err := genome.LoadReference(cfg.ReferencePath, cfg.Chrom)
	if err != nil {
		return nil, stageErr(StageReference, err)
	}
	logger.Info("loaded reference",
		zap.String("chrom", ref.Name),
		zap.Int64("start", ref.Start),
		zap.Int("bases", ref.Len()))

	filter, err := loadFilter(cfg, ref)
	if err != nil {
		return nil, stageErr(StageRegion, err)
	}
	logger.Info("region filter ready",
		zap.Bool("match_all", filter.IsMatchAll()),
		zap.Int("regions", filter.Len()))

	index := NewIndex()
	catalog, err := loadCatalog(cfg, ref, filter, index)
	if err != nil {
		return nil, stageErr(StageCatalog, err)
	}
	logger.Info("built known index",
		zap.Int("records", catalog.Total),
		zap.Int("inserted", catalog.Inserted),
		zap.Int("normalized", catalog.Normalized),
		zap.Int("other_chrom", catalog.OtherChrom),
		zap.Int("outside_reference", catalog.OutsideReference),
		zap.Int("outside_region", catalog.OutsideRegion),
		zap.Int("unanchored", catalog.Unanchored))

	scripts, err := NewScriptProvider(cfg.AlignMode, cfg.Scoring, cfg.WindowSlack)
	if err != nil {
		return nil, stageErr(StageReadStream, err)
	}

	opts := reads.Options{
		MinMapQ: byte(cfg.MinMapQ),
		Chrom:   ref.Name,
		Start:   max(cfg.Start, ref.Start),
		Stop:    ref.End(),
	}
	if cfg.Stop > 0 && cfg.Stop < opts.Stop {
		opts.Stop = cfg.Stop
	}

	rr, err := reads.NewReader(cfg.ReadsPath, opts)
	if err != nil {
		return nil, stageErr(StageReadStream, err)
	}
	defer rr.Close()

	c := NewCaller(ref, scripts, NewInterpreter(cfg.Normalize), index)
	c.SetLogger(logger)
	if err := c.CallAll(ctx, rr, cfg.Workers); err != nil {
		return nil, stageErr(StageReadStream, err)
	}

	readStats := rr.Stats()
	calls := c.Stats()
	merges := index.MergeStats()
	logger.Info("processed reads",
		zap.Int("total", readStats.Total),
		zap.Int("accepted", readStats.Accepted),
		zap.Int("filtered", readStats.Filtered),
		zap.Int("outside_window", readStats.OutsideWindow),
		zap.Int("skipped", calls.Skipped),
		zap.Int("candidates", calls.Candidates),
		zap.Int("merged_known", merges.Known),
		zap.Int("merged_discovered", merges.Discovered),
		zap.Int("new_discovered", merges.New))
	logger.Debug("read filters",
		zap.Int("low_mapq", readStats.LowMapQ),
		zap.Int("unmapped", readStats.Unmapped),
		zap.Int("secondary", readStats.Secondary),
		zap.Int("supplementary", readStats.Supplementary),
		zap.Int("duplicate", readStats.Duplicate),
		zap.Int("soft_clipped", readStats.SoftClipped),
		zap.Int("hard_clipped", readStats.HardClipped),
		zap.Int("both_clipped", readStats.BothClipped),
		zap.Int("paired", readStats.Paired))

	return &Result{
		Reference: ref,
		Filter:    filter,
		Index:     index,
		Catalog:   catalog,
		Reads:     readStats,
		Calls:     calls,
	}, nil
}

func loadFilter(cfg Config, ref *genome.Sequence) (*region.Filter, error) {
	switch {
	case cfg.RegionsPath != "":
		regions, err := bed.Load(cfg.RegionsPath, ref.Name)
		if err != nil {
			return nil, err
		}
		return region.Explicit(regions), nil
	case cfg.ExcludeAmbiguous:
		return region.Explicit(ref.UnambiguousRegions()), nil
	default:
		return region.MatchAll(), nil
	}
}

func loadCatalog(cfg Config, ref *genome.Sequence, filter *region.Filter, index *Index) (BuildStats, error) {
	records, unanchored, err := LoadCatalog(cfg.CatalogPath, cfg.CatalogFormat, ref)
	if err != nil {
		return BuildStats{}, err
	}

	stats, err := index.BuildKnown(records, filter, ref, cfg.Normalize)
	stats.Total += unanchored
	stats.Unanchored = unanchored
	return stats, err
}
