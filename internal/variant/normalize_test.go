package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vdb/internal/genome"
)

func seq(start int64, bases string) *genome.Sequence {
	return &genome.Sequence{Name: "1", Start: start, Bases: []byte(bases)}
}

func TestNormalize_InsertionAfterHomopolymer(t *testing.T) {
	ref := seq(0, "AAAACGT")

	// An extra A inserted before the C at position 4, anchored on the A at 3.
	r := New("1", 3, "", "A", "AA", 0)
	changed, err := Normalize(ref, r)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, int64(0), r.Pos)
	assert.Equal(t, "A", r.Ref)
	assert.Equal(t, "AA", r.Alt)
	assert.Equal(t, Insertion, r.Type)
}

func TestNormalize_DeletionInHomopolymer(t *testing.T) {
	ref := seq(0, "GCAAAAT")

	r := New("1", 4, "", "AA", "A", 0)
	changed, err := Normalize(ref, r)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, int64(1), r.Pos)
	assert.Equal(t, "CA", r.Ref)
	assert.Equal(t, "C", r.Alt)
	assert.Equal(t, Deletion, r.Type)
}

func TestNormalize_DinucleotideRepeatInsertion(t *testing.T) {
	// GCACACT with an extra AC after position 5 is the same haplotype as an
	// extra CA right after the leading G.
	ref := seq(0, "GCACACT")

	r := New("1", 5, "", "C", "CAC", 0)
	_, err := Normalize(ref, r)
	require.NoError(t, err)

	assert.Equal(t, int64(0), r.Pos)
	assert.Equal(t, "G", r.Ref)
	assert.Equal(t, "GCA", r.Alt)
}

func TestNormalize_AlreadyLeftAligned(t *testing.T) {
	ref := seq(0, "ACGTACGT")

	r := New("1", 2, "", "G", "GTT", 0)
	changed, err := Normalize(ref, r)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, int64(2), r.Pos)
	assert.Equal(t, "G", r.Ref)
	assert.Equal(t, "GTT", r.Alt)
}

func TestNormalize_SNPAndReplaceUnchanged(t *testing.T) {
	ref := seq(0, "AAAAAAAA")

	snp := New("1", 5, "", "A", "C", 0)
	changed, err := Normalize(ref, snp)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(5), snp.Pos)

	mnv := New("1", 5, "", "AA", "CC", 0)
	changed, err = Normalize(ref, mnv)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "AA", mnv.Ref)
	assert.Equal(t, "CC", mnv.Alt)
}

func TestNormalize_Idempotent(t *testing.T) {
	ref := seq(0, "GATTTTTACACACAGGGCCCAAAAT")

	tests := []struct {
		name string
		pos  int64
		ref  string
		alt  string
	}{
		{"T deletion", 5, "TT", "T"},
		{"T insertion", 6, "T", "TT"},
		{"AC insertion", 11, "C", "CAC"},
		{"CA deletion", 10, "ACA", "A"},
		{"G deletion", 16, "GG", "G"},
		{"A insertion at end", 23, "A", "AA"},
		{"leading deletion", 0, "GA", "G"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := New("1", tt.pos, "", tt.ref, tt.alt, 0)
			_, err := Normalize(ref, once)
			require.NoError(t, err)

			twice := *once
			changed, err := Normalize(ref, &twice)
			require.NoError(t, err)

			assert.False(t, changed)
			assert.True(t, once.Equal(&twice))
		})
	}
}

func TestNormalize_EquivalentPositionsConverge(t *testing.T) {
	ref := seq(0, "GCAAAAT")

	var normalized []*Record
	for pos := int64(2); pos <= 5; pos++ {
		r := New("1", pos, "", "AA", "A", 0)
		_, err := Normalize(ref, r)
		require.NoError(t, err)
		normalized = append(normalized, r)
	}

	for _, r := range normalized[1:] {
		assert.True(t, normalized[0].Equal(r), "%s != %s", normalized[0], r)
	}
}

func TestNormalize_RunsOffWindow(t *testing.T) {
	// The window starts at 100, so the homopolymer may continue to the left
	// and the shift cannot be completed.
	ref := seq(100, "AAAACGT")

	r := New("1", 103, "", "A", "AA", 0)
	_, err := Normalize(ref, r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestNormalize_PositionOutsideWindow(t *testing.T) {
	ref := seq(0, "ACGT")

	r := New("1", 10, "", "A", "AT", 0)
	_, err := Normalize(ref, r)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
