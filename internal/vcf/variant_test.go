package vcf

import "testing"

func TestVariant_Shape(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		alt       string
		insertion bool
		deletion  bool
	}{
		{"substitution", "C", "A", false, false},
		{"insertion", "A", "AT", true, false},
		{"deletion", "AT", "A", false, true},
		{"multi-base substitution", "AT", "GC", false, false},
		{"complex deletion", "ATG", "C", false, true},
		{"MAF insertion", "", "T", true, false},
		{"MAF deletion", "TT", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsInsertion(); got != tt.insertion {
				t.Errorf("IsInsertion() = %v, want %v", got, tt.insertion)
			}
			if got := v.IsDeletion(); got != tt.deletion {
				t.Errorf("IsDeletion() = %v, want %v", got, tt.deletion)
			}
		})
	}
}

func TestVariant_ZeroBasedPos(t *testing.T) {
	v := &Variant{Pos: 1}
	if got := v.ZeroBasedPos(); got != 0 {
		t.Errorf("ZeroBasedPos() = %d, want 0", got)
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"chr", "chr"},
	}

	for _, tt := range tests {
		t.Run(tt.chrom, func(t *testing.T) {
			v := &Variant{Chrom: tt.chrom}
			if got := v.NormalizeChrom(); got != tt.want {
				t.Errorf("NormalizeChrom() = %q, want %q", got, tt.want)
			}
		})
	}
}
