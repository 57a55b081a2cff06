// Package bed reads confidence regions from BED files.
package bed

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/fileio"
	"github.com/inodb/vibe-vdb/internal/region"
)

// Parser reads regions from a BED file.
type Parser struct {
	rc         *fileio.ReadCloser
	lineNumber int
}

// NewParser opens a plain or gzipped BED file.
func NewParser(path string) (*Parser, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}
	return &Parser{rc: rc}, nil
}

// NewParserFromReader creates a parser over r.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	rc, err := fileio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open bed stream: %w", err)
	}
	return &Parser{rc: rc}, nil
}

// Next returns the next region, or nil, nil at end of input. Comment, track
// and browser lines are skipped. Columns after the third are ignored.
func (p *Parser) Next() (*region.Region, error) {
	for {
		line, err := p.rc.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read bed line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if skipLine(line) {
			continue
		}
		return p.parseLine(line)
	}
}

func skipLine(line string) bool {
	return strings.TrimSpace(line) == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

func (p *Parser) parseLine(line string) (*region.Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 3 columns, found %d", len(fields)),
		}
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 0 {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid start: %s", fields[1])}
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid end: %s", fields[2])}
	}
	if end < start {
		return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("end %d before start %d", end, start)}
	}

	return &region.Region{Chrom: fields[0], Start: start, End: end}, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	return p.rc.Close()
}

// Load reads all regions from path, keeping only chrom when it is non-empty,
// and returns them sorted by chromosome and start. Regions whose chromosome
// differs from chrom only by a "chr" prefix are kept and renamed to chrom.
func Load(path, chrom string) ([]region.Region, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return collect(p, chrom)
}

func collect(p *Parser, chrom string) ([]region.Region, error) {
	var regions []region.Region
	for {
		r, err := p.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			break
		}
		if chrom != "" {
			if !sameChrom(r.Chrom, chrom) {
				continue
			}
			r.Chrom = chrom
		}
		regions = append(regions, *r)
	}

	region.Sort(regions)
	return regions, nil
}

func sameChrom(a, b string) bool {
	return strings.TrimPrefix(a, "chr") == strings.TrimPrefix(b, "chr")
}

// ParseError represents an error during BED parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed parse error at line %d: %s", e.Line, e.Message)
}
