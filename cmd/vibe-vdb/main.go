// Package main provides the vibe-vdb command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-vdb/internal/caller"
	"github.com/inodb/vibe-vdb/internal/output"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-vdb"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by invalid arguments.
type usageError struct{ error }

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "vibe-vdb",
		Short: "Count read support for known variants",
		Long: `vibe-vdb - Variant Database

Streams aligned reads against a reference, reconciles the variants found in
them with a catalog of known variants and reports, for every known variant,
how many reads support it and cover its position, plus the read-derived
variants found nearby.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-vdb.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newCountCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setDefaults registers the default of every configuration key.
func setDefaults() {
	d := caller.DefaultConfig()
	viper.SetDefault("normalize", d.Normalize)
	viper.SetDefault("exclude_ambiguous", d.ExcludeAmbiguous)
	viper.SetDefault("workers", d.Workers)
	viper.SetDefault("reads.min_mapq", d.MinMapQ)
	viper.SetDefault("align.mode", d.AlignMode)
	viper.SetDefault("align.window_slack", d.WindowSlack)
	viper.SetDefault("scoring.match", d.Scoring.Match)
	viper.SetDefault("scoring.mismatch", d.Scoring.Mismatch)
	viper.SetDefault("scoring.gap_open", d.Scoring.GapOpen)
	viper.SetDefault("scoring.gap_extend", d.Scoring.GapExtend)
	viper.SetDefault("report.window", output.DefaultWindow)
	viper.SetDefault("report.format", "tab")
	viper.SetDefault("report.header", true)
}

// initConfig reads the config file and VIBE_VDB_* environment variables.
// A missing default config file is not an error.
func initConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix("VIBE_VDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// defaultConfigPath returns ~/.vibe-vdb.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds a console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-vdb version %s (%s) built %s\n", version, commit, date)
		},
	}
}
