package fileio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_Plain(t *testing.T) {
	rc, err := NewReader(strings.NewReader("chr1\t100\t200\n"))
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t100\t200\n", string(data))
}

func TestNewReader_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(">chr1\nACGT\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	rc, err := NewReader(&buf)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, ">chr1\nACGT\n", string(data))
}

func TestNewReader_Empty(t *testing.T) {
	rc, err := NewReader(strings.NewReader(""))
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.bed")
	require.NoError(t, os.WriteFile(path, []byte("1\t0\t10\n"), 0644))

	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	line, err := rc.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "1\t0\t10\n", line)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.vcf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
