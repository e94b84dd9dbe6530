// Package samples loads oyster density observations from the configured
// backing store.
package samples

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/oysterdash/internal/types"
	"github.com/chrissnell/oysterdash/pkg/config"
	"go.uber.org/zap"
)

// DefaultTable is the table read by the database-backed sources
const DefaultTable = "oyster_densities"

var (
	// ErrMissingColumn is returned when a required column is absent from the input
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoSamples is returned when a source yields no rows
	ErrNoSamples = errors.New("no samples loaded")
)

// Source provides the full sample set. Each call to Load reads the backing
// store again.
type Source interface {
	Load(ctx context.Context) ([]types.Sample, error)
	Close() error
}

// NewSource builds the Source described by the configuration
func NewSource(sc config.SourceData, logger *zap.SugaredLogger) (Source, error) {
	table := sc.Table
	if table == "" {
		table = DefaultTable
	}

	switch sc.Type {
	case "", config.SourceCSV:
		return NewCSVSource(sc.Path), nil
	case config.SourceSQLite:
		return NewSQLiteSource(sc.Path, table)
	case config.SourceTimescaleDB:
		return NewTimescaleSource(sc.ConnectionString, table, logger)
	default:
		return nil, fmt.Errorf("unsupported sample source type: %s", sc.Type)
	}
}
