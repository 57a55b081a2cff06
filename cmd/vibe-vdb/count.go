package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vdb/internal/align"
	"github.com/inodb/vibe-vdb/internal/caller"
	"github.com/inodb/vibe-vdb/internal/duckdb"
	"github.com/inodb/vibe-vdb/internal/output"
)

func newCountCmd() *cobra.Command {
	var (
		noNormalize bool
		outputFile  string
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "count --ref <fasta> --sam <reads> --vcf <catalog> [flags]",
		Short: "Count read support and coverage for known variants",
		Long: `Load a reference sequence and a catalog of known variants, stream aligned
reads through the variant interpreter and report, for every known variant,
its read support and coverage followed by the read-derived variants found
within the report window.`,
		Example: `  vibe-vdb count --ref chr12.fa --sam sample.sam --vcf known.vcf
  vibe-vdb count --ref chr12.fa --sam sample.sam.gz --vcf known.vcf.gz --bed exome.bed -f vcf -o out.vcf
  vibe-vdb count --ref chr12.fa --sam sample.sam --vcf known.vcf --workers 8 --db vdb.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := countConfig(noNormalize)
			if err != nil {
				return usageError{err}
			}
			return runCount(cmd, cfg, outputFile, dbPath)
		},
	}

	f := cmd.Flags()
	f.String("ref", "", "Reference FASTA file (optionally gzipped)")
	f.String("sam", "", "Aligned reads in SAM format (optionally gzipped)")
	f.String("vcf", "", "Known-variant catalog in VCF or MAF format (optionally gzipped)")
	f.String("catalog-format", "", "Catalog format: vcf, maf (detected if not specified)")
	f.String("bed", "", "Confidence regions in BED format (default: whole reference)")
	f.String("chrom", "", "Reference sequence to use (default: first in FASTA)")
	f.Int64("start", 0, "Only count reads mapped at or after this 0-based position")
	f.Int64("stop", 0, "Only count reads mapped before this 0-based position (0: no limit)")
	f.BoolVar(&noNormalize, "dont-normalize", false, "Do not left-align indels")
	f.Bool("exclude-ambiguous", false, "Without --bed, restrict the catalog to runs of A/C/G/T in the reference")
	f.Int("min-mapq", 0, "Minimum mapping quality")
	f.String("align-mode", "", "Alignment script source: cigar or realign")
	f.Int("window-slack", 0, "Extra reference bases given to the realigner")
	f.Int("match", 0, "Realignment match score")
	f.Int("mismatch", 0, "Realignment mismatch score")
	f.Int("gap-open", 0, "Realignment gap open score")
	f.Int("gap-extend", 0, "Realignment gap extend score")
	f.Int("workers", 0, "Parallel read workers (1: sequential)")
	f.Int64("window", 0, "Report discovered variants within this many bases of a known variant")
	f.StringP("output-format", "f", "", "Output format: tab, vcf")
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&dbPath, "db", "", "Also store the report in this DuckDB database")
	f.SortFlags = false

	for key, flag := range map[string]string{
		"input.reference":      "ref",
		"input.reads":          "sam",
		"input.catalog":        "vcf",
		"input.regions":        "bed",
		"input.catalog_format": "catalog-format",
		"chrom":                "chrom",
		"start":                "start",
		"stop":                 "stop",
		"exclude_ambiguous":    "exclude-ambiguous",
		"reads.min_mapq":       "min-mapq",
		"align.mode":           "align-mode",
		"align.window_slack":   "window-slack",
		"scoring.match":        "match",
		"scoring.mismatch":     "mismatch",
		"scoring.gap_open":     "gap-open",
		"scoring.gap_extend":   "gap-extend",
		"workers":              "workers",
		"report.window":        "window",
		"report.format":        "output-format",
	} {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

// countConfig assembles the run configuration from flags, environment and
// config file.
func countConfig(noNormalize bool) (caller.Config, error) {
	cfg := caller.DefaultConfig()
	cfg.ReferencePath = viper.GetString("input.reference")
	cfg.ReadsPath = viper.GetString("input.reads")
	cfg.CatalogPath = viper.GetString("input.catalog")
	cfg.RegionsPath = viper.GetString("input.regions")
	cfg.CatalogFormat = viper.GetString("input.catalog_format")
	cfg.Chrom = viper.GetString("chrom")
	cfg.Start = viper.GetInt64("start")
	cfg.Stop = viper.GetInt64("stop")
	cfg.Normalize = viper.GetBool("normalize") && !noNormalize
	cfg.ExcludeAmbiguous = viper.GetBool("exclude_ambiguous")
	cfg.MinMapQ = viper.GetInt("reads.min_mapq")
	cfg.AlignMode = viper.GetString("align.mode")
	cfg.WindowSlack = viper.GetInt("align.window_slack")
	cfg.Workers = viper.GetInt("workers")

	var scores struct {
		Scoring align.Scoring `mapstructure:"scoring"`
	}
	if err := viper.Unmarshal(&scores); err != nil {
		return cfg, fmt.Errorf("invalid scoring config: %w", err)
	}
	cfg.Scoring = scores.Scoring

	switch {
	case cfg.ReferencePath == "":
		return cfg, fmt.Errorf("--ref is required")
	case cfg.ReadsPath == "":
		return cfg, fmt.Errorf("--sam is required")
	case cfg.CatalogPath == "":
		return cfg, fmt.Errorf("--vcf is required")
	case cfg.Start < 0 || (cfg.Stop > 0 && cfg.Stop <= cfg.Start):
		return cfg, fmt.Errorf("invalid read window [%d, %d)", cfg.Start, cfg.Stop)
	case cfg.Workers < 1:
		return cfg, fmt.Errorf("--workers must be at least 1")
	}
	if cfg.AlignMode == caller.ModeRealign {
		if err := cfg.Scoring.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func runCount(cmd *cobra.Command, cfg caller.Config, outputFile, dbPath string) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := caller.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	window := viper.GetInt64("report.window")
	if err := writeReport(cmd.OutOrStdout(), outputFile, res, window, cfg.ReferencePath); err != nil {
		return &caller.StageError{Stage: caller.StageReport, Err: err}
	}

	if dbPath != "" {
		if err := storeReport(ctx, dbPath, cfg, res, window, logger); err != nil {
			return &caller.StageError{Stage: caller.StageReport, Err: err}
		}
	}
	return nil
}

func writeReport(stdout io.Writer, outputFile string, res *caller.Result, window int64, refPath string) error {
	out := stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w output.Writer
	switch format := viper.GetString("report.format"); format {
	case "tab":
		rw := output.NewReportWriter(out)
		rw.SetHeader(viper.GetBool("report.header"))
		w = rw
	case "vcf":
		w = output.NewVCFReportWriter(out, refPath, []output.Contig{
			{Name: res.Reference.Name, Length: res.Reference.End()},
		})
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	return output.WriteReport(w, res.Index, window)
}

// storeReport persists the report, replacing an earlier run over the same
// input files.
func storeReport(ctx context.Context, dbPath string, cfg caller.Config, res *caller.Result, window int64, logger *zap.Logger) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &duckdb.Run{Chrom: res.Reference.Name, Window: window}
	for _, in := range []struct {
		path string
		fp   *duckdb.FileFingerprint
	}{
		{cfg.ReferencePath, &run.Reference},
		{cfg.CatalogPath, &run.Catalog},
		{cfg.ReadsPath, &run.Reads},
	} {
		fp, err := duckdb.StatFile(in.path)
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", in.path, err)
		}
		*in.fp = fp
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	saved, err := store.SaveRun(run, res.Index, window)
	if err != nil {
		return err
	}
	if saved.Replaced != 0 {
		logger.Info("replaced run over unchanged inputs", zap.Int64("run_id", saved.Replaced))
	}
	logger.Info("stored report",
		zap.String("db", dbPath),
		zap.Int64("run_id", saved.RunID),
		zap.Int("known", saved.Known),
		zap.Int("nearby", saved.Nearby))
	return nil
}
