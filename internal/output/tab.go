// Package output provides report formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vdb/internal/variant"
)

// DefaultWindow is the distance around a known variant within which
// discovered variants are reported as nearby.
const DefaultWindow = 10

// Reporter walks known variants in position order together with the
// discovered variants near each of them.
type Reporter interface {
	Report(window int64, fn func(known *variant.Record, nearby []*variant.Record) error) error
}

// Writer is a report sink.
type Writer interface {
	WriteHeader() error
	Write(known *variant.Record, nearby []*variant.Record) error
	Flush() error
}

// WriteReport writes the header, one entry per known variant and flushes.
func WriteReport(w Writer, r Reporter, window int64) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := r.Report(window, w.Write); err != nil {
		return err
	}
	return w.Flush()
}

var reportColumns = []string{
	"#CHROM",
	"POS",
	"ID",
	"REF",
	"ALT",
	"SUPPORT",
	"COVERAGE",
}

// ReportWriter writes the tab-delimited report: one line per known variant
// followed by tab-indented lines for its nearby discovered variants.
type ReportWriter struct {
	w      *bufio.Writer
	header bool
}

// NewReportWriter creates a new tab-delimited report writer.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{w: bufio.NewWriter(w), header: true}
}

// SetHeader toggles the column header line.
func (rw *ReportWriter) SetHeader(on bool) {
	rw.header = on
}

// WriteHeader writes the header line.
func (rw *ReportWriter) WriteHeader() error {
	if !rw.header {
		return nil
	}
	_, err := rw.w.WriteString(strings.Join(reportColumns, "\t") + "\n")
	return err
}

// Write writes a known variant and its nearby discovered variants.
func (rw *ReportWriter) Write(known *variant.Record, nearby []*variant.Record) error {
	var lb strings.Builder
	lb.Grow(64 * (1 + len(nearby)))

	writeRow(&lb, known)
	for _, d := range nearby {
		lb.WriteByte('\t')
		writeRow(&lb, d)
	}

	_, err := rw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

func writeRow(b *strings.Builder, r *variant.Record) {
	b.WriteString(r.Chrom)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatInt(r.Pos+1, 10))
	b.WriteByte('\t')
	b.WriteString(r.ID)
	b.WriteByte('\t')
	b.WriteString(r.Ref)
	b.WriteByte('\t')
	b.WriteString(r.Alt)
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.ReadSupport))
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(r.TotalReadsAtPosition))
	b.WriteByte('\n')
}
