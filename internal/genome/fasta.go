package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/fileio"
)

// FASTALoader loads reference sequences from a FASTA file.
type FASTALoader struct {
	path      string
	sequences []*Sequence
	byName    map[string]*Sequence
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:   path,
		byName: make(map[string]*Sequence),
	}
}

// Load parses the FASTA file. Gzipped files are handled transparently.
func (l *FASTALoader) Load() error {
	rc, err := fileio.Open(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer rc.Close()

	return l.parseFASTA(rc)
}

// parseFASTA parses FASTA content. Headers may carry a 1-based start offset
// for sequences that cover only part of a chromosome:
//
//	>chr12:25200000
func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long sequences
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 256*1024*1024)

	var current *Sequence
	var bases bytes.Buffer

	save := func() {
		if current == nil {
			return
		}
		current.Bases = bytes.ToUpper(bases.Bytes())
		l.sequences = append(l.sequences, current)
		if _, dup := l.byName[current.Name]; !dup {
			l.byName[current.Name] = current
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			save()
			name, start := parseHeader(string(line))
			current = &Sequence{Name: name, Start: start}
			bases.Reset()
			continue
		}

		if current == nil {
			return fmt.Errorf("parse FASTA: sequence data before first header")
		}
		bases.Write(bytes.TrimSpace(line))
	}
	save()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}

	return nil
}

// parseHeader extracts the sequence name and 0-based start position from a
// FASTA header. Anything after the first whitespace is a description.
func parseHeader(header string) (name string, start int64) {
	header = strings.TrimSpace(strings.TrimPrefix(header, ">"))
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		header = header[:idx]
	}

	name, offset, ok := strings.Cut(header, ":")
	if !ok {
		return name, 0
	}

	// Accept name:start as well as samtools-style name:start-end.
	digits := offset
	if idx := strings.IndexFunc(offset, func(r rune) bool { return r < '0' || r > '9' }); idx != -1 {
		digits = offset[:idx]
	}
	pos, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || pos < 1 {
		return name, 0
	}
	return name, pos - 1
}

// Get returns the sequence with the given name, or nil if not loaded.
func (l *FASTALoader) Get(name string) *Sequence {
	return l.byName[name]
}

// First returns the first sequence in the file, or nil for an empty file.
func (l *FASTALoader) First() *Sequence {
	if len(l.sequences) == 0 {
		return nil
	}
	return l.sequences[0]
}

// Names returns sequence names in file order.
func (l *FASTALoader) Names() []string {
	names := make([]string, len(l.sequences))
	for i, s := range l.sequences {
		names[i] = s.Name
	}
	return names
}

// SequenceCount returns the number of loaded sequences.
func (l *FASTALoader) SequenceCount() int {
	return len(l.sequences)
}

// LoadReference loads path and returns the sequence named chrom, or the
// first sequence when chrom is empty.
func LoadReference(path, chrom string) (*Sequence, error) {
	l := NewFASTALoader(path)
	if err := l.Load(); err != nil {
		return nil, err
	}

	var seq *Sequence
	if chrom == "" {
		seq = l.First()
	} else {
		seq = l.Get(chrom)
	}
	if seq == nil {
		if chrom == "" {
			return nil, fmt.Errorf("no sequences in %s", path)
		}
		return nil, fmt.Errorf("sequence %q not found in %s (have %s)", chrom, path, strings.Join(l.Names(), ", "))
	}
	return seq, nil
}
