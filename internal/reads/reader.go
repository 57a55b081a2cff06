package reads

import (
	"errors"
	"fmt"
	"io"

	"github.com/biogo/hts/sam"

	"github.com/inodb/vibe-vdb/internal/fileio"
)

// DefaultMinMapQ is the mapping quality below which reads are discarded.
const DefaultMinMapQ = 20

// Options controls which reads the Reader returns.
type Options struct {
	MinMapQ byte
	// Chrom, Start and Stop restrict reads to those whose mapped position
	// lies on Chrom within [Start, Stop). An empty Chrom accepts every
	// chromosome and a zero Stop leaves the window open-ended.
	Chrom string
	Start int64
	Stop  int64
}

// DefaultOptions returns the standard read filters.
func DefaultOptions() Options {
	return Options{MinMapQ: DefaultMinMapQ}
}

func (o Options) inWindow(chrom string, pos int64) bool {
	if o.Chrom != "" && chrom != o.Chrom {
		return false
	}
	if pos < o.Start {
		return false
	}
	return o.Stop <= 0 || pos < o.Stop
}

// Stats counts reads seen and rejected by the Reader. A rejected read may
// be counted under several reasons.
type Stats struct {
	Total         int
	Paired        int
	OutsideWindow int
	Filtered      int
	LowMapQ       int
	Unmapped      int
	Secondary     int
	Supplementary int
	Duplicate     int
	SoftClipped   int
	HardClipped   int
	BothClipped   int
	Accepted      int
}

// Reader is a pull interface over a SAM file.
type Reader struct {
	rc    *fileio.ReadCloser
	sr    *sam.Reader
	opts  Options
	stats Stats
}

// NewReader opens a plain or gzipped SAM file. A path of "-" reads stdin.
func NewReader(path string, opts Options) (*Reader, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sam file: %w", err)
	}

	r, err := newReader(rc, opts)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return r, nil
}

// NewReaderFrom creates a Reader over an in-memory or streamed SAM source.
func NewReaderFrom(src io.Reader, opts Options) (*Reader, error) {
	rc, err := fileio.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("open sam stream: %w", err)
	}
	return newReader(rc, opts)
}

func newReader(rc *fileio.ReadCloser, opts Options) (*Reader, error) {
	sr, err := sam.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("read sam header: %w", err)
	}
	return &Reader{rc: rc, sr: sr, opts: opts}, nil
}

// Header returns the SAM header.
func (r *Reader) Header() *sam.Header {
	return r.sr.Header()
}

// Next returns the next read that passes the filters, or nil, nil at the
// end of the stream. Malformed records end the stream with an error.
func (r *Reader) Next() (*Read, error) {
	for {
		rec, err := r.sr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read sam record %d: %w", r.stats.Total+1, err)
		}
		r.stats.Total++

		if read := r.accept(rec); read != nil {
			return read, nil
		}
	}
}

// accept applies the window and quality filters and converts rec.
func (r *Reader) accept(rec *sam.Record) *Read {
	if rec.Flags&sam.Paired != 0 {
		r.stats.Paired++
	}

	chrom := "*"
	if rec.Ref != nil {
		chrom = rec.Ref.Name()
	}

	unmapped := rec.Flags&sam.Unmapped != 0 || rec.Ref == nil || rec.Pos < 0
	if !unmapped && !r.opts.inWindow(chrom, int64(rec.Pos)) {
		r.stats.OutsideWindow++
		return nil
	}

	bad := false
	if rec.MapQ < r.opts.MinMapQ {
		r.stats.LowMapQ++
		bad = true
	}
	if unmapped {
		r.stats.Unmapped++
		bad = true
	}
	if rec.Flags&sam.Secondary != 0 {
		r.stats.Secondary++
		bad = true
	}
	if rec.Flags&sam.Supplementary != 0 {
		r.stats.Supplementary++
		bad = true
	}
	if rec.Flags&sam.Duplicate != 0 {
		r.stats.Duplicate++
		bad = true
	}
	if bad {
		r.stats.Filtered++
		return nil
	}

	_, _, soft, hard := clips(rec.Cigar)
	switch {
	case soft && hard:
		r.stats.BothClipped++
	case soft:
		r.stats.SoftClipped++
	case hard:
		r.stats.HardClipped++
	}

	read := &Read{
		Name:  rec.Name,
		Chrom: chrom,
		Pos:   int64(rec.Pos),
		MapQ:  rec.MapQ,
		Flags: rec.Flags,
		Cigar: rec.Cigar,
		Seq:   rec.Seq.Expand(),
		Qual:  rec.Qual,
	}
	if len(read.Qual) != len(read.Seq) {
		read.Qual = nil
	}
	stripSoftClips(read)

	r.stats.Accepted++
	return read
}

// Stats returns the counters accumulated so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.rc.Close()
}
