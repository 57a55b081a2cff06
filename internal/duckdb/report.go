package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vdb/internal/variant"
)

// Reporter walks known variants together with their nearby discovered
// variants.
type Reporter interface {
	Report(window int64, fn func(known *variant.Record, nearby []*variant.Record) error) error
}

// KnownRow is a persisted known variant. Pos is 1-based.
type KnownRow struct {
	RunID    int64
	Chrom    string
	Pos      int64
	ID       string
	Ref      string
	Alt      string
	Quality  float64
	Type     string
	Support  int64
	Coverage int64
}

// NearbyRow is a discovered variant reported near a known variant. Both
// positions are 1-based.
type NearbyRow struct {
	RunID    int64
	Chrom    string
	KnownPos int64
	KnownRef string
	KnownAlt string
	Pos      int64
	Ref      string
	Alt      string
	Type     string
	Support  int64
}

// WriteReport appends the report produced by r under runID using the
// Appender API. It returns the number of known and nearby rows written.
func (s *Store) WriteReport(runID int64, r Reporter, window int64) (int, int, error) {
	var known []KnownRow
	var nearby []NearbyRow
	err := r.Report(window, func(k *variant.Record, near []*variant.Record) error {
		known = append(known, KnownRow{
			RunID:    runID,
			Chrom:    k.Chrom,
			Pos:      k.Pos + 1,
			ID:       k.ID,
			Ref:      k.Ref,
			Alt:      k.Alt,
			Quality:  k.Quality,
			Type:     k.Type.String(),
			Support:  int64(k.ReadSupport),
			Coverage: int64(k.TotalReadsAtPosition),
		})
		for _, d := range near {
			nearby = append(nearby, NearbyRow{
				RunID:    runID,
				Chrom:    d.Chrom,
				KnownPos: k.Pos + 1,
				KnownRef: k.Ref,
				KnownAlt: k.Alt,
				Pos:      d.Pos + 1,
				Ref:      d.Ref,
				Alt:      d.Alt,
				Type:     d.Type.String(),
				Support:  int64(d.ReadSupport),
			})
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if err := s.appendRows("known_variants", len(known), func(a *goduckdb.Appender, i int) error {
		k := known[i]
		return a.AppendRow(k.RunID, k.Chrom, k.Pos, k.ID, k.Ref, k.Alt, k.Quality, k.Type, k.Support, k.Coverage)
	}); err != nil {
		return 0, 0, err
	}
	if err := s.appendRows("nearby_variants", len(nearby), func(a *goduckdb.Appender, i int) error {
		n := nearby[i]
		return a.AppendRow(n.RunID, n.Chrom, n.KnownPos, n.KnownRef, n.KnownAlt, n.Pos, n.Ref, n.Alt, n.Type, n.Support)
	}); err != nil {
		return 0, 0, err
	}

	return len(known), len(nearby), nil
}

// appendRows appends n rows to table through a single appender.
func (s *Store) appendRows(table string, n int, row func(a *goduckdb.Appender, i int) error) error {
	if n == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := 0; i < n; i++ {
		if err := row(appender, i); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}

	return appender.Flush()
}

// LookupKnown returns the persisted known variants at a 1-based position,
// newest run first.
func (s *Store) LookupKnown(chrom string, pos int64) ([]KnownRow, error) {
	rows, err := s.db.Query(`SELECT
		run_id, chrom, pos, id, ref, alt, quality, variant_type, support, coverage
		FROM known_variants
		WHERE chrom=? AND pos=?
		ORDER BY run_id DESC, alt`,
		chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query known variant: %w", err)
	}
	defer rows.Close()

	var out []KnownRow
	for rows.Next() {
		var k KnownRow
		if err := rows.Scan(&k.RunID, &k.Chrom, &k.Pos, &k.ID, &k.Ref, &k.Alt,
			&k.Quality, &k.Type, &k.Support, &k.Coverage); err != nil {
			return nil, fmt.Errorf("scan known variant: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known variants: %w", err)
	}
	return out, nil
}

// NearbyFor returns the discovered variants reported near a known variant,
// newest run first and then by position.
func (s *Store) NearbyFor(chrom string, pos int64, ref, alt string) ([]NearbyRow, error) {
	rows, err := s.db.Query(`SELECT
		run_id, chrom, known_pos, known_ref, known_alt, pos, ref, alt, variant_type, support
		FROM nearby_variants
		WHERE chrom=? AND known_pos=? AND known_ref=? AND known_alt=?
		ORDER BY run_id DESC, pos, ref, alt`,
		chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query nearby variants: %w", err)
	}
	defer rows.Close()

	var out []NearbyRow
	for rows.Next() {
		var n NearbyRow
		if err := rows.Scan(&n.RunID, &n.Chrom, &n.KnownPos, &n.KnownRef, &n.KnownAlt,
			&n.Pos, &n.Ref, &n.Alt, &n.Type, &n.Support); err != nil {
			return nil, fmt.Errorf("scan nearby variant: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearby variants: %w", err)
	}
	return out, nil
}

// SaveStats describes a report stored by SaveRun.
type SaveStats struct {
	RunID    int64
	Replaced int64 // earlier run over the same inputs, 0 if none
	Known    int
	Nearby   int
}

// SaveRun records run and the report produced by r. An earlier run over the
// same input files is deleted only once the new run is fully written. If
// writing fails the new run is removed and the earlier one is kept.
func (s *Store) SaveRun(run *Run, r Reporter, window int64) (SaveStats, error) {
	prev, err := s.FindRun(run.Reference, run.Catalog, run.Reads)
	if err != nil {
		return SaveStats{}, err
	}

	id, err := s.BeginRun(run)
	if err != nil {
		return SaveStats{}, err
	}
	nKnown, nNearby, err := s.WriteReport(id, r, window)
	if err != nil {
		if derr := s.DeleteRun(id); derr != nil {
			return SaveStats{}, fmt.Errorf("%w (discard run %d: %v)", err, id, derr)
		}
		return SaveStats{}, err
	}

	stats := SaveStats{RunID: id, Known: nKnown, Nearby: nNearby}
	if prev != nil {
		if err := s.DeleteRun(prev.ID); err != nil {
			return stats, fmt.Errorf("replace run %d: %w", prev.ID, err)
		}
		stats.Replaced = prev.ID
	}
	return stats, nil
}
