package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vdb/internal/align"
)

const (
	testFASTA = ">1\nACGTACGTAC\nGTTAGCCATG\n"
	testSAM   = "@HD\tVN:1.6\n@SQ\tSN:1\tLN:20\n" +
		"r1\t0\t1\t3\t60\t6M\t*\t0\t0\tGTAAGT\tIIIIII\n" +
		"r2\t0\t1\t3\t60\t6M\t*\t0\t0\tGTAAGT\tIIIIII\n" +
		"r3\t0\t1\t11\t60\t2M1D4M\t*\t0\t0\tGTAGCC\tIIIIII\n"
	testVCF = "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t6\trs1\tC\tA,G\t50\tPASS\t.\n" +
		"1\t12\tdel\tTT\tT\t20\tPASS\t.\n"
)

// setup isolates viper and the home directory and writes the inputs.
func setup(t *testing.T) (dir string, inputs []string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir = t.TempDir()
	t.Setenv("HOME", dir)

	files := map[string]string{"ref.fa": testFASTA, "reads.sam": testSAM, "known.vcf": testVCF}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	inputs = []string{
		"--ref", filepath.Join(dir, "ref.fa"),
		"--sam", filepath.Join(dir, "reads.sam"),
		"--vcf", filepath.Join(dir, "known.vcf"),
	}
	return dir, inputs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCount_Tab(t *testing.T) {
	_, inputs := setup(t)

	out, err := execute(t, append([]string{"count"}, inputs...)...)
	require.NoError(t, err)

	want := "#CHROM\tPOS\tID\tREF\tALT\tSUPPORT\tCOVERAGE\n" +
		"1\t6\trs1\tC\tG\t0\t2\n" +
		"1\t6\trs1\tC\tA\t2\t2\n" +
		"1\t11\tdel\tGT\tG\t1\t0\n"
	assert.Equal(t, want, out)
}

func TestCount_VCFToFile(t *testing.T) {
	dir, inputs := setup(t)
	outPath := filepath.Join(dir, "report.vcf")

	args := append([]string{"count", "-f", "vcf", "-o", outPath, "--workers", "2"}, inputs...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "##contig=<ID=1,length=20>\n")
	assert.Contains(t, string(data), "1\t6\trs1\tC\tA\t50\t.\tSUPPORT=2;DP=2\n")
	assert.Contains(t, string(data), "1\t11\tdel\tGT\tG\t20\t.\tSUPPORT=1;DP=0\n")
}

func TestCount_DontNormalize(t *testing.T) {
	_, inputs := setup(t)

	out, err := execute(t, append([]string{"count", "--dont-normalize"}, inputs...)...)
	require.NoError(t, err)

	// Catalog and read deletions both stay at the raw position.
	assert.Contains(t, out, "1\t12\tdel\tTT\tT\t1\t1\n")
}

func TestCount_ConfigFile(t *testing.T) {
	dir, inputs := setup(t)
	cfgPath := filepath.Join(dir, "vdb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("report:\n  header: false\n"), 0644))

	out, err := execute(t, append([]string{"count", "--config", cfgPath}, inputs...)...)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(out, "#"))
	assert.True(t, strings.HasPrefix(out, "1\t6\trs1"))
}

func TestCount_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(inputs []string) []string
		usage   bool
		message string
	}{
		{
			name:    "missing reference flag",
			args:    func(inputs []string) []string { return inputs[2:] },
			usage:   true,
			message: "--ref is required",
		},
		{
			name:    "zero workers",
			args:    func(inputs []string) []string { return append([]string{"--workers", "0"}, inputs...) },
			usage:   true,
			message: "--workers",
		},
		{
			name:    "unknown chromosome",
			args:    func(inputs []string) []string { return append([]string{"--chrom", "X"}, inputs...) },
			message: "reference: ",
		},
		{
			name:    "unknown output format",
			args:    func(inputs []string) []string { return append([]string{"-f", "maf"}, inputs...) },
			message: `report: unknown output format "maf"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, inputs := setup(t)
			_, err := execute(t, append([]string{"count"}, tt.args(inputs)...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			_, isUsage := err.(usageError)
			assert.Equal(t, tt.usage, isUsage)
		})
	}
}

func TestCountAndLookup(t *testing.T) {
	dir, inputs := setup(t)
	db := filepath.Join(dir, "vdb.duckdb")

	for i := 0; i < 2; i++ {
		_, err := execute(t, append([]string{"count", "--db", db, "-o", filepath.Join(dir, "out.tsv")}, inputs...)...)
		require.NoError(t, err)
	}

	out, err := execute(t, "lookup", "--db", db, "1", "6")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[0], "SUPPORT")
	assert.Regexp(t, `^2\s+1\s+6\s+rs1\s+C\s+A\s+SNP\s+2\s+2$`, lines[1])
	assert.Regexp(t, `^2\s+1\s+6\s+rs1\s+C\s+G\s+SNP\s+0\s+2$`, lines[2])

	out, err = execute(t, "lookup", "--db", db, "--runs")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2, "the second run replaces the first")
	assert.Regexp(t, `^2\s+.*\s+yes$`, lines[1])

	out, err = execute(t, "lookup", "--db", db, "1", "100")
	require.NoError(t, err)
	assert.Equal(t, "# no known variants at 1:100\n", out)

	_, err = execute(t, "lookup", "--db", db, "1", "zero")
	require.Error(t, err)
}

func TestLookup_MissingDatabase(t *testing.T) {
	dir, _ := setup(t)
	db := filepath.Join(dir, "typo", "vdb.duckdb")

	_, err := execute(t, "lookup", "--db", db, "1", "6")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(filepath.Join(dir, "typo"))
	assert.True(t, os.IsNotExist(err), "lookup must not create the database")
}

func TestCountConfig_Scoring(t *testing.T) {
	dir, _ := setup(t)
	t.Setenv("VIBE_VDB_SCORING_MISMATCH", "-3")
	require.NoError(t, initConfig(""))

	viper.Set("input.reference", filepath.Join(dir, "ref.fa"))
	viper.Set("input.reads", filepath.Join(dir, "reads.sam"))
	viper.Set("input.catalog", filepath.Join(dir, "known.vcf"))
	viper.Set("scoring.gap_open", -8)

	cfg, err := countConfig(false)
	require.NoError(t, err)
	assert.Equal(t, align.Scoring{Match: 1, Mismatch: -3, GapOpen: -8, GapExtend: -1}, cfg.Scoring)
}

func TestConfigSetGet(t *testing.T) {
	dir, _ := setup(t)

	out, err := execute(t, "config", "set", "report.window", "25")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, ".vibe-vdb.yaml"))

	viper.Reset()
	out, err = execute(t, "config", "get", "report.window")
	require.NoError(t, err)
	assert.Equal(t, "25\n", out)

	out, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "window: 25")
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "vibe-vdb version dev"))
}
