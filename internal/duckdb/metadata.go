package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. ModTime is kept
// in UTC at microsecond precision, the resolution of a DuckDB TIMESTAMP.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Microsecond),
	}, nil
}

// Matches reports whether the file on disk still has this fingerprint.
func (f FileFingerprint) Matches() bool {
	cur, err := StatFile(f.Path)
	if err != nil {
		return false
	}
	return cur.Size == f.Size && cur.ModTime.Equal(f.ModTime)
}

// Run describes one count run and the inputs it was computed from.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Chrom     string
	Window    int64
	Reference FileFingerprint
	Catalog   FileFingerprint
	Reads     FileFingerprint
}

// BeginRun records a new run and returns its ID. A zero CreatedAt is set to
// the current time.
func (s *Store) BeginRun(run *Run) (int64, error) {
	var id int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(run_id), 0) + 1 FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.CreatedAt, run.Chrom, run.Window,
		run.Reference.Path, run.Reference.Size, run.Reference.ModTime,
		run.Catalog.Path, run.Catalog.Size, run.Catalog.ModTime,
		run.Reads.Path, run.Reads.Size, run.Reads.ModTime,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	run.ID = id
	return id, nil
}

// Runs returns all recorded runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, created_at, chrom, window_size,
		reference_path, reference_size, reference_mtime,
		catalog_path, catalog_size, catalog_mtime,
		reads_path, reads_size, reads_mtime
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.Chrom, &r.Window,
			&r.Reference.Path, &r.Reference.Size, &r.Reference.ModTime,
			&r.Catalog.Path, &r.Catalog.Size, &r.Catalog.ModTime,
			&r.Reads.Path, &r.Reads.Size, &r.Reads.ModTime,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindRun returns the newest run whose inputs have the given fingerprints,
// or nil when there is none.
func (s *Store) FindRun(reference, catalog, reads FileFingerprint) (*Run, error) {
	runs, err := s.Runs()
	if err != nil {
		return nil, err
	}
	for i := range runs {
		r := &runs[i]
		if sameFile(r.Reference, reference) && sameFile(r.Catalog, catalog) && sameFile(r.Reads, reads) {
			return r, nil
		}
	}
	return nil, nil
}

func sameFile(a, b FileFingerprint) bool {
	return a.Path == b.Path && a.Size == b.Size && a.ModTime.Equal(b.ModTime)
}

// DeleteRun removes a run and its report rows.
func (s *Store) DeleteRun(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, table := range []string{"nearby_variants", "known_variants", "runs"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}
