package genome

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header string
		name   string
		start  int64
	}{
		{">chr1", "chr1", 0},
		{">chr1 Homo sapiens chromosome 1", "chr1", 0},
		{">12:25200000", "12", 25199999},
		{">12:25200000-25300000", "12", 25199999},
		{"> 7:1", "7", 0},
		{">chrM:abc", "chrM", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			name, start := parseHeader(tt.header)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.start, start)
		})
	}
}

func TestFASTALoader_ParseFASTA(t *testing.T) {
	content := `>1
ACGTACGTAC
gtacgt
>2:101 second
NNNNACGT
`

	l := NewFASTALoader("")
	require.NoError(t, l.parseFASTA(strings.NewReader(content)))

	assert.Equal(t, 2, l.SequenceCount())
	assert.Equal(t, []string{"1", "2"}, l.Names())

	one := l.Get("1")
	require.NotNil(t, one)
	assert.Equal(t, "ACGTACGTACGTACGT", string(one.Bases))
	assert.Equal(t, int64(0), one.Start)

	two := l.Get("2")
	require.NotNil(t, two)
	assert.Equal(t, int64(100), two.Start)
	assert.Equal(t, int64(108), two.End())

	assert.Same(t, one, l.First())
	assert.Nil(t, l.Get("3"))
}

func TestFASTALoader_DataBeforeHeader(t *testing.T) {
	l := NewFASTALoader("")
	err := l.parseFASTA(strings.NewReader("ACGT\n>1\nACGT\n"))
	require.Error(t, err)
}

func TestLoadReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.fa")
	require.NoError(t, os.WriteFile(path, []byte(">1\nACGT\n>2\nTTTT\n"), 0644))

	seq, err := LoadReference(path, "")
	require.NoError(t, err)
	assert.Equal(t, "1", seq.Name)

	seq, err = LoadReference(path, "2")
	require.NoError(t, err)
	assert.Equal(t, "TTTT", string(seq.Bases))

	_, err = LoadReference(path, "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"X" not found`)
}

func TestSequence_Base(t *testing.T) {
	s := &Sequence{Name: "1", Start: 100, Bases: []byte("ACGT")}

	b, ok := s.Base(100)
	assert.True(t, ok)
	assert.Equal(t, byte('A'), b)

	b, ok = s.Base(103)
	assert.True(t, ok)
	assert.Equal(t, byte('T'), b)

	_, ok = s.Base(99)
	assert.False(t, ok)
	_, ok = s.Base(104)
	assert.False(t, ok)
}

func TestSequence_Window(t *testing.T) {
	s := &Sequence{Name: "1", Start: 10, Bases: []byte("ACGTACGT")}

	w, ok := s.Window(12, 15)
	assert.True(t, ok)
	assert.Equal(t, "GTA", string(w))

	w, ok = s.Window(16, 100)
	assert.True(t, ok)
	assert.Equal(t, "GT", string(w))

	_, ok = s.Window(5, 12)
	assert.False(t, ok)
}
