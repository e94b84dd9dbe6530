package samples

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/chrissnell/oysterdash/internal/types"
	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads samples from a table in a SQLite database file
type SQLiteSource struct {
	db     *sql.DB
	dbPath string
	table  string
}

// NewSQLiteSource opens the database at dbPath
func NewSQLiteSource(dbPath, table string) (*SQLiteSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	return &SQLiteSource{
		db:     db,
		dbPath: dbPath,
		table:  table,
	}, nil
}

// OpenSQLite opens and pings a SQLite database
func OpenSQLite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

// Load reads every row of the sample table
func (s *SQLiteSource) Load(ctx context.Context) ([]types.Sample, error) {
	query := fmt.Sprintf(`
		SELECT material, material_age, total, legal, sublegal, spat, site_name, year
		FROM %s
		ORDER BY id`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples from %s: %w", s.dbPath, err)
	}
	defer rows.Close()

	var samples []types.Sample
	for rows.Next() {
		var smp types.Sample
		var legal, sublegal, spat sql.NullFloat64
		if err := rows.Scan(&smp.Material, &smp.MaterialAge, &smp.Total,
			&legal, &sublegal, &spat, &smp.SiteName, &smp.Year); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		smp.Legal = legal.Float64
		smp.Sublegal = sublegal.Float64
		smp.Spat = spat.Float64
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample rows: %w", err)
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

// Close closes the database handle
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// WriteSQLite creates the sample table if needed and replaces its contents
// with samples in a single transaction.
func WriteSQLite(ctx context.Context, db *sql.DB, table string, samples []types.Sample) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name: %q", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			material     TEXT    NOT NULL,
			material_age REAL    NOT NULL,
			total        REAL    NOT NULL,
			legal        REAL,
			sublegal     REAL,
			spat         REAL,
			site_name    TEXT    NOT NULL,
			year         INTEGER NOT NULL
		)`, table)
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (material, material_age, total, legal, sublegal, spat, site_name, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.Material, s.MaterialAge, s.Total,
			s.Legal, s.Sublegal, s.Spat, s.SiteName, s.Year); err != nil {
			return fmt.Errorf("failed to insert sample for %s/%d: %w", s.SiteName, s.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
