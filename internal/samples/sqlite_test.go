package samples

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chrissnell/oysterdash/internal/types"
	"github.com/chrissnell/oysterdash/pkg/config"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "densities.db")

	input := []types.Sample{
		{Material: "Basalt", MaterialAge: 5, Total: 2200, Legal: 400, Sublegal: 1500, Spat: 300, SiteName: "West Bay", Year: 2022},
		{Material: "Consolidated Concrete", MaterialAge: 18, Total: 90, SiteName: "Long Shoal", Year: 2019},
	}

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := WriteSQLite(ctx, db, DefaultTable, input); err != nil {
		t.Fatalf("failed to write samples: %v", err)
	}
	// Writing again replaces rather than appends
	if err := WriteSQLite(ctx, db, DefaultTable, input); err != nil {
		t.Fatalf("failed to rewrite samples: %v", err)
	}
	db.Close()

	src, err := NewSQLiteSource(dbPath, DefaultTable)
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}
	defer src.Close()

	got, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(got))
	}
	for i := range input {
		if got[i] != input[i] {
			t.Errorf("sample %d: expected %+v, got %+v", i, input[i], got[i])
		}
	}
}

func TestSQLiteEmptyTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := WriteSQLite(ctx, db, "surveys", nil); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	db.Close()

	src, err := NewSQLiteSource(dbPath, "surveys")
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}
	defer src.Close()

	if _, err := src.Load(ctx); !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}

func TestTableNameValidation(t *testing.T) {
	if _, err := NewSQLiteSource(filepath.Join(t.TempDir(), "x.db"), "densities; DROP TABLE x"); err == nil {
		t.Error("expected invalid table name to be rejected")
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SourceData
		wantErr bool
	}{
		{name: "default is csv", cfg: config.SourceData{Path: "data.csv"}},
		{name: "explicit csv", cfg: config.SourceData{Type: config.SourceCSV, Path: "data.csv"}},
		{name: "sqlite", cfg: config.SourceData{Type: config.SourceSQLite, Path: filepath.Join(t.TempDir(), "s.db")}},
		{name: "unsupported", cfg: config.SourceData{Type: "parquet"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			src.Close()
		})
	}
}
