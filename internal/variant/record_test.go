package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want Type
	}{
		{"A to G", "A", "G", SNP},
		{"deletion", "AT", "A", Deletion},
		{"larger deletion", "ATGC", "A", Deletion},
		{"insertion", "A", "AT", Insertion},
		{"larger insertion", "A", "ATGC", Insertion},
		{"MNV", "AT", "GC", Replace},
		{"complex", "ATG", "CT", Replace},
		{"empty alt", "A", "", Replace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ref, tt.alt))
		})
	}
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "SNP", SNP.String())
	assert.Equal(t, "INS", Insertion.String())
	assert.Equal(t, "DEL", Deletion.String())
	assert.Equal(t, "REPLACE", Replace.String())
	assert.Equal(t, "UNKNOWN", Type(42).String())
}

func TestNew(t *testing.T) {
	r := New("12", 25245350, "", "C", "A", 50)

	assert.Equal(t, "12", r.Chrom)
	assert.Equal(t, int64(25245350), r.Pos)
	assert.Equal(t, MissingID, r.ID)
	assert.Equal(t, SNP, r.Type)
	assert.Equal(t, 50.0, r.Quality)
	assert.Zero(t, r.ReadSupport)
	assert.Zero(t, r.TotalReadsAtPosition)
	assert.Equal(t, "12:25245351 C>A", r.String())
}

func TestRecord_Equal(t *testing.T) {
	a := New("1", 100, "rs1", "A", "T", 30)
	b := New("1", 100, ".", "A", "T", 0)
	b.ReadSupport = 7

	assert.True(t, a.Equal(b), "identifiers and counters are ignored")
	assert.True(t, b.Equal(a), "equality is symmetric")
	assert.True(t, a.Equal(a), "equality is reflexive")

	assert.False(t, a.Equal(New("2", 100, "", "A", "T", 0)))
	assert.False(t, a.Equal(New("1", 101, "", "A", "T", 0)))
	assert.False(t, a.Equal(New("1", 100, "", "C", "T", 0)))
	assert.False(t, a.Equal(New("1", 100, "", "A", "G", 0)))
}
