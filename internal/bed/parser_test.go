package bed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vdb/internal/region"
)

const confidentBED = `browser position chr1:1-1000
track name=confident
# high confidence calls
2	50	80	extra	0	+
1	300	400
1	100	200

1	0	10
`

func TestParser_Next(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(confidentBED))
	require.NoError(t, err)
	defer p.Close()

	r, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, region.Region{Chrom: "2", Start: 50, End: 80}, *r)
	assert.Equal(t, 4, p.LineNumber())

	var count int
	for {
		r, err := p.Next()
		require.NoError(t, err)
		if r == nil {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)
}

func TestLoad_SortsAndFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confident.bed")
	require.NoError(t, os.WriteFile(path, []byte(confidentBED), 0644))

	regions, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []region.Region{
		{Chrom: "1", Start: 0, End: 10},
		{Chrom: "1", Start: 100, End: 200},
		{Chrom: "1", Start: 300, End: 400},
		{Chrom: "2", Start: 50, End: 80},
	}, regions)

	regions, err = Load(path, "2")
	require.NoError(t, err)
	assert.Equal(t, []region.Region{{Chrom: "2", Start: 50, End: 80}}, regions)

	regions, err = Load(path, "X")
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestLoad_ChromPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confident.bed")
	require.NoError(t, os.WriteFile(path, []byte(confidentBED), 0644))

	regions, err := Load(path, "chr2")
	require.NoError(t, err)
	assert.Equal(t, []region.Region{{Chrom: "chr2", Start: 50, End: 80}}, regions)

	require.NoError(t, os.WriteFile(path, []byte("chr1\t5\t9\nchr12\t0\t3\n"), 0644))
	regions, err = Load(path, "1")
	require.NoError(t, err)
	assert.Equal(t, []region.Region{{Chrom: "1", Start: 5, End: 9}}, regions)
}

func TestParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few columns", "1\t100"},
		{"bad start", "1\tx\t200"},
		{"negative start", "1\t-5\t200"},
		{"bad end", "1\t100\ty"},
		{"end before start", "1\t200\t100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader("# header\n" + tt.line + "\n"))
			require.NoError(t, err)

			_, err = p.Next()
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, 2, perr.Line)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.bed"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
