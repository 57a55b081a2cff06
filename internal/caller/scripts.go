package caller

import (
	"fmt"

	"github.com/inodb/vibe-vdb/internal/align"
	"github.com/inodb/vibe-vdb/internal/genome"
	"github.com/inodb/vibe-vdb/internal/reads"
)

// Alignment modes.
const (
	ModeCIGAR   = "cigar"
	ModeRealign = "realign"
)

// ScriptProvider computes the alignment script of a read against the
// reference. Implementations must be safe for concurrent use.
type ScriptProvider interface {
	Script(read *reads.Read, ref *genome.Sequence) (align.Script, error)
}

// CIGARScripts expands each read's own CIGAR.
type CIGARScripts struct{}

// Script implements ScriptProvider.
func (CIGARScripts) Script(read *reads.Read, ref *genome.Sequence) (align.Script, error) {
	window, ok := ref.Window(read.Pos, read.Pos+int64(read.RefSpan()))
	if !ok {
		return nil, fmt.Errorf("read %s at %d is outside the reference", read.Name, read.Pos)
	}
	return align.FromCIGAR(read.Cigar, window, read.Seq)
}

// RealignScripts realigns each read against the reference starting at its
// mapped position. Slack extra reference bases allow for deletions.
type RealignScripts struct {
	Aligner *align.Aligner
	Slack   int
}

// Script implements ScriptProvider.
func (p RealignScripts) Script(read *reads.Read, ref *genome.Sequence) (align.Script, error) {
	window, ok := ref.Window(read.Pos, read.Pos+int64(len(read.Seq)+p.Slack))
	if !ok {
		return nil, fmt.Errorf("read %s at %d is outside the reference", read.Name, read.Pos)
	}
	return p.Aligner.Align(window, read.Seq)
}

// NewScriptProvider returns the provider for mode.
func NewScriptProvider(mode string, scoring align.Scoring, slack int) (ScriptProvider, error) {
	switch mode {
	case "", ModeCIGAR:
		return CIGARScripts{}, nil
	case ModeRealign:
		a, err := align.NewAligner(scoring)
		if err != nil {
			return nil, err
		}
		if slack < 0 {
			return nil, fmt.Errorf("window slack must be >= 0, got %d", slack)
		}
		return RealignScripts{Aligner: a, Slack: slack}, nil
	default:
		return nil, fmt.Errorf("unknown alignment mode %q (want %s or %s)", mode, ModeCIGAR, ModeRealign)
	}
}
