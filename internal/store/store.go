// Package store caches selected consequences in DuckDB so that repeated runs
// skip external annotation of variants already mapped. The table is
// append-only and keyed by the canonical descriptor fields.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ebivariation/vepmap/internal/pipeline"
	"github.com/ebivariation/vepmap/internal/variant"
)

// Store manages a DuckDB connection holding previously selected consequences.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS selected_consequences (
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		consequence VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		PRIMARY KEY (chrom, pos, ref, alt)
	)`)
	return err
}

// Lookup returns the cached selections for the given descriptors. Descriptors
// without a cached row are simply absent from the result.
func (s *Store) Lookup(descriptors []variant.Descriptor) (map[variant.Descriptor]pipeline.Selected, error) {
	out := make(map[variant.Descriptor]pipeline.Selected, len(descriptors))
	stmt, err := s.db.Prepare(`SELECT consequence, gene_id, gene_name
		FROM selected_consequences
		WHERE chrom = ? AND pos = ? AND ref = ? AND alt = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	defer stmt.Close()

	for _, d := range descriptors {
		var sel pipeline.Selected
		err := stmt.QueryRow(d.Chrom, d.Pos, d.Ref, d.Alt).
			Scan(&sel.Term, &sel.GeneID, &sel.GeneName)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", d, err)
		}
		sel.Found = true
		out[d] = sel
	}
	return out, nil
}

// Save batch-inserts selections using the Appender API. Descriptors already
// present are skipped: the first selection for a variant wins, keeping stored
// content stable across runs.
func (s *Store) Save(results map[variant.Descriptor]pipeline.Selected) error {
	if len(results) == 0 {
		return nil
	}

	descriptors := make([]variant.Descriptor, 0, len(results))
	for d := range results {
		descriptors = append(descriptors, d)
	}
	existing, err := s.Lookup(descriptors)
	if err != nil {
		return fmt.Errorf("check existing rows: %w", err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "selected_consequences")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, d := range descriptors {
		if _, ok := existing[d]; ok {
			continue
		}
		sel := results[d]
		if !sel.Found {
			continue
		}
		if err := appender.AppendRow(d.Chrom, d.Pos, d.Ref, d.Alt,
			sel.Term, sel.GeneID, sel.GeneName); err != nil {
			return fmt.Errorf("append %s: %w", d, err)
		}
	}

	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush appender: %w", err)
	}
	return nil
}

// Count returns the number of cached selections.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM selected_consequences`).Scan(&n)
	return n, err
}
