package maf

import (
	"github.com/inodb/vibe-vdb/internal/variant"
	"github.com/inodb/vibe-vdb/internal/vcf"
)

// Anchor rewrites a MAF insertion or deletion into VCF form by prepending
// the reference base before the event to both alleles. For insertions MAF
// Start_Position already names that base; for deletions it names the first
// deleted base, so the position moves one base left. It reports false when
// the anchor base is not in ref. Substitutions are left unchanged.
func Anchor(v *vcf.Variant, ref variant.Reference) bool {
	switch {
	case v.Ref != "" && v.Alt != "":
		return true

	case v.IsInsertion():
		b, ok := ref.Base(v.Pos - 1)
		if !ok {
			return false
		}
		v.Ref = string(b)
		v.Alt = string(b) + v.Alt
		return true

	case v.IsDeletion():
		b, ok := ref.Base(v.Pos - 2)
		if !ok {
			return false
		}
		v.Pos--
		v.Ref = string(b) + v.Ref
		v.Alt = string(b)
		return true
	}
	return true
}
