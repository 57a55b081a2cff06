package vcf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/fileio"
)

// Parser reads variants from a VCF file.
type Parser struct {
	rc          *fileio.ReadCloser
	lineNumber  int
	header      []string
	sampleNames []string // sample names from #CHROM header line
	pending     string   // first data line when the file has no #CHROM line
	hasPending  bool
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{rc: rc}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	rc, err := fileio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open vcf stream: %w", err)
	}

	p := &Parser{rc: rc}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines. Catalog files are often
// trimmed down to bare records, so the #CHROM line is optional: the first
// data line is held back for Next.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.rc.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "##"):
			p.header = append(p.header, line)
		case strings.HasPrefix(line, "#CHROM"):
			p.header = append(p.header, line)
			// Extract sample names from columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		case line == "", strings.HasPrefix(line, "#"):
		default:
			p.pending = line
			p.hasPending = true
			return nil
		}

		if err == io.EOF {
			return nil
		}
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	if p.hasPending {
		p.hasPending = false
		return p.parseLine(p.pending)
	}

	for {
		line, err := p.rc.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" && err == io.EOF {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 5 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	if fields[3] == "" || fields[4] == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "empty REF or ALT",
		}
	}

	v := &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Filter: ".",
		Info:   map[string]interface{}{},
	}

	if len(fields) > 5 && fields[5] != "." {
		v.Qual, _ = strconv.ParseFloat(fields[5], 64)
	}
	if len(fields) > 6 {
		v.Filter = fields[6]
	}
	if len(fields) > 7 {
		v.Info = parseInfo(fields[7])
	}

	// Capture FORMAT + sample columns if present
	if len(fields) > 8 {
		v.SampleColumns = strings.Join(fields[8:], "\t")
	}

	return v, nil
}

// parseInfo parses the INFO field into a map.
func parseInfo(info string) map[string]interface{} {
	result := make(map[string]interface{})
	if info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			// Flag-type INFO field
			result[parts[0]] = true
		}
	}

	return result
}

// SplitMultiAllelic splits a multi-allelic variant into separate variants
// that share chromosome, position, identifier and quality.
func SplitMultiAllelic(v *Variant) []*Variant {
	alts := strings.Split(v.Alt, ",")
	if len(alts) == 1 {
		return []*Variant{v}
	}

	variants := make([]*Variant, 0, len(alts))
	for _, alt := range alts {
		if alt == "" {
			continue
		}
		variants = append(variants, &Variant{
			Chrom:         v.Chrom,
			Pos:           v.Pos,
			ID:            v.ID,
			Ref:           v.Ref,
			Alt:           alt,
			Qual:          v.Qual,
			Filter:        v.Filter,
			Info:          v.Info,
			SampleColumns: v.SampleColumns,
		})
	}

	return variants
}

// ReadAll reads every record from path and splits multi-allelic entries.
func ReadAll(path string) ([]*Variant, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return Collect(p)
}

// Collect drains p, splitting multi-allelic records.
func Collect(p VariantParser) ([]*Variant, error) {
	var out []*Variant
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return out, nil
		}
		out = append(out, SplitMultiAllelic(v)...)
	}
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.rc == nil {
		return nil
	}
	return p.rc.Close()
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
