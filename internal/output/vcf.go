package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/variant"
)

// Contig describes a ##contig header line.
type Contig struct {
	Name   string
	Length int64
}

var infoHeaderLines = []string{
	`##INFO=<ID=SUPPORT,Number=1,Type=Integer,Description="Reads carrying this allele">`,
	`##INFO=<ID=DP,Number=1,Type=Integer,Description="Reads covering this position">`,
	`##INFO=<ID=NEARBY,Number=.,Type=String,Description="Discovered variants near this position. Format: POS:REF>ALT:SUPPORT">`,
}

// VCFReportWriter writes the report as VCF. Nearby discovered variants are
// folded into the NEARBY INFO field of their known variant.
type VCFReportWriter struct {
	w         *bufio.Writer
	source    string
	reference string
	contigs   []Contig
}

// NewVCFReportWriter creates a new VCF report writer.
func NewVCFReportWriter(w io.Writer, reference string, contigs []Contig) *VCFReportWriter {
	return &VCFReportWriter{
		w:         bufio.NewWriter(w),
		source:    "vibe-vdb",
		reference: reference,
		contigs:   contigs,
	}
}

// WriteHeader writes the meta-information lines and the #CHROM line.
func (vw *VCFReportWriter) WriteHeader() error {
	lines := []string{
		"##fileformat=VCFv4.2",
		"##source=" + vw.source,
	}
	if vw.reference != "" {
		lines = append(lines, "##reference="+vw.reference)
	}
	for _, c := range vw.contigs {
		lines = append(lines, fmt.Sprintf("##contig=<ID=%s,length=%d>", c.Name, c.Length))
	}
	lines = append(lines, infoHeaderLines...)
	lines = append(lines, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")

	for _, line := range lines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one known variant as a VCF data line.
func (vw *VCFReportWriter) Write(known *variant.Record, nearby []*variant.Record) error {
	var lb strings.Builder
	lb.Grow(128)

	lb.WriteString(known.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(known.Pos+1, 10))
	lb.WriteByte('\t')
	lb.WriteString(known.ID)
	lb.WriteByte('\t')
	lb.WriteString(known.Ref)
	lb.WriteByte('\t')
	lb.WriteString(known.Alt)
	lb.WriteByte('\t')
	if known.Quality != 0 {
		lb.WriteString(strconv.FormatFloat(known.Quality, 'g', -1, 64))
	} else {
		lb.WriteByte('.')
	}
	lb.WriteString("\t.\t")

	lb.WriteString("SUPPORT=")
	lb.WriteString(strconv.Itoa(known.ReadSupport))
	lb.WriteString(";DP=")
	lb.WriteString(strconv.Itoa(known.TotalReadsAtPosition))
	if len(nearby) > 0 {
		lb.WriteString(";NEARBY=")
		for i, d := range nearby {
			if i > 0 {
				lb.WriteByte(',')
			}
			lb.WriteString(strconv.FormatInt(d.Pos+1, 10))
			lb.WriteByte(':')
			lb.WriteString(d.Ref)
			lb.WriteByte('>')
			lb.WriteString(d.Alt)
			lb.WriteByte(':')
			lb.WriteString(strconv.Itoa(d.ReadSupport))
		}
	}
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFReportWriter) Flush() error {
	return vw.w.Flush()
}
