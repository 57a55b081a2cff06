package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAligner_Align(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		read string
		want string
	}{
		{
			name: "identical",
			ref:  "ACGTACGTAC",
			read: "ACGTACGTAC",
			want: "MMMMMMMMMM",
		},
		{
			name: "substitution",
			ref:  "ACGTACGTAC",
			read: "ACGAACGTAC",
			want: "MMMXMMMMMM",
		},
		{
			name: "reference end is free",
			ref:  "ACGTACGTACGGG",
			read: "ACGTACGTAC",
			want: "MMMMMMMMMM",
		},
		{
			name: "deletion",
			ref:  "GATTACAGGCTCATGCA",
			read: "GATTACACTCATGCA",
			want: "MMMMMMMDDMMMMMMMM",
		},
		{
			name: "insertion",
			ref:  "GATTACAGGCTCATGCA",
			read: "GATTACATTGGCTCATGCA",
			want: "MMMMMMMIIMMMMMMMMMM",
		},
	}

	a, err := NewAligner(DefaultScoring())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := a.Align([]byte(tt.ref), []byte(tt.read))
			require.NoError(t, err)
			assert.Equal(t, tt.want, script.String())
			assert.Equal(t, len(tt.read), script.ReadLen())
			assert.LessOrEqual(t, script.RefLen(), len(tt.ref))
		})
	}
}

func TestAligner_Errors(t *testing.T) {
	a, err := NewAligner(DefaultScoring())
	require.NoError(t, err)

	_, err = a.Align([]byte("ACGT"), nil)
	assert.ErrorIs(t, err, ErrEmptyRead)

	_, err = a.Align(nil, []byte("ACGT"))
	assert.ErrorIs(t, err, ErrEmptyReference)
}

func TestScoring_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scoring Scoring
		wantErr bool
	}{
		{"default", DefaultScoring(), false},
		{"zero match", Scoring{Match: 0, Mismatch: -1, GapOpen: -1, GapExtend: -1}, true},
		{"positive mismatch", Scoring{Match: 1, Mismatch: 1, GapOpen: -1, GapExtend: -1}, true},
		{"positive gap open", Scoring{Match: 1, Mismatch: -1, GapOpen: 2, GapExtend: -1}, true},
		{"positive gap extend", Scoring{Match: 1, Mismatch: -1, GapOpen: -2, GapExtend: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scoring.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				_, err = NewAligner(tt.scoring)
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
