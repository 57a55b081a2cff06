// Package maf reads known-variant catalogs from MAF (Mutation Annotation
// Format) files such as cBioPortal's data_mutations.txt.
package maf

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/fileio"
	"github.com/inodb/vibe-vdb/internal/vcf"
)

// Standard MAF column names
const (
	ColChromosome      = "Chromosome"
	ColStartPosition   = "Start_Position"
	ColReferenceAllele = "Reference_Allele"
	ColTumorSeqAllele2 = "Tumor_Seq_Allele2"
	ColDbSNPRS         = "dbSNP_RS"
	ColHugoSymbol      = "Hugo_Symbol"
)

// ColumnIndices holds the indices of the MAF columns read by the parser.
// Optional columns are -1 when absent.
type ColumnIndices struct {
	Chromosome      int
	StartPosition   int
	ReferenceAllele int
	TumorSeqAllele2 int
	DbSNPRS         int
	HugoSymbol      int
}

// Parser reads catalog variants from a MAF file. Alleles keep the MAF
// convention: an inserted or deleted allele has no anchor base and the
// missing side is empty. Use Anchor to convert them to VCF form.
type Parser struct {
	rc         *fileio.ReadCloser
	lineNumber int
	columns    ColumnIndices
	headerLine string
}

var _ vcf.VariantParser = (*Parser)(nil)

// NewParser creates a new MAF parser for the given file.
// Supports both plain MAF and gzipped MAF (.maf.gz) files.
func NewParser(path string) (*Parser, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
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
		return nil, err
	}

	p := &Parser{rc: rc}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// readLine returns the next line without its terminator.
func (p *Parser) readLine() (string, error) {
	line, err := p.rc.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader reads and parses the MAF header line to find column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}

		// Skip comment lines (#version 2.4) and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:      -1,
		StartPosition:   -1,
		ReferenceAllele: -1,
		TumorSeqAllele2: -1,
		DbSNPRS:         -1,
		HugoSymbol:      -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		case ColReferenceAllele:
			p.columns.ReferenceAllele = i
		case ColTumorSeqAllele2:
			p.columns.TumorSeqAllele2 = i
		case ColDbSNPRS:
			p.columns.DbSNPRS = i
		case ColHugoSymbol:
			p.columns.HugoSymbol = i
		}
	}

	for _, req := range []struct {
		name string
		idx  int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
	} {
		if req.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", req.name),
			}
		}
	}
	return nil
}

// Next reads the next variant from the MAF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*vcf.Variant, error) {
	for {
		line, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single MAF data line into a Variant with a 1-based
// position.
func (p *Parser) parseLine(line string) (*vcf.Variant, error) {
	fields := strings.Split(line, "\t")

	c := p.columns
	minCols := max(c.Chromosome, c.StartPosition, c.ReferenceAllele, c.TumorSeqAllele2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[c.StartPosition], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[c.StartPosition]),
		}
	}

	ref := fields[c.ReferenceAllele]
	alt := fields[c.TumorSeqAllele2]
	if ref == "-" {
		ref = ""
	}
	if alt == "-" {
		alt = ""
	}
	if ref == "" && alt == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "both alleles are empty",
		}
	}

	id := "."
	if c.DbSNPRS >= 0 && c.DbSNPRS < len(fields) {
		if rs := fields[c.DbSNPRS]; rs != "" && rs != "novel" {
			id = rs
		}
	}

	v := &vcf.Variant{
		Chrom:  fields[c.Chromosome],
		Pos:    pos,
		ID:     id,
		Ref:    ref,
		Alt:    alt,
		Filter: ".",
	}
	if c.HugoSymbol >= 0 && c.HugoSymbol < len(fields) {
		v.Info = map[string]interface{}{ColHugoSymbol: fields[c.HugoSymbol]}
	}
	return v, nil
}

// Header returns the MAF header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
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

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
