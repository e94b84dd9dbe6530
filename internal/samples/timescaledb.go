package samples

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/oysterdash/internal/database"
	"github.com/chrissnell/oysterdash/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TimescaleSource reads samples from a PostgreSQL/TimescaleDB table through GORM
type TimescaleSource struct {
	db     *gorm.DB
	table  string
	logger *zap.SugaredLogger
}

// NewTimescaleSource connects to the database behind connectionString
func NewTimescaleSource(connectionString, table string, logger *zap.SugaredLogger) (*TimescaleSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, fmt.Errorf("sample source could not connect to database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &TimescaleSource{
		db:     db,
		table:  table,
		logger: logger,
	}, nil
}

// Load reads every row of the sample table
func (t *TimescaleSource) Load(ctx context.Context) ([]types.Sample, error) {
	var rows []database.SampleRow
	if err := t.db.WithContext(ctx).Table(t.table).Order("id").Find(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSamples
		}
		return nil, fmt.Errorf("error querying database for samples: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNoSamples
	}

	t.logger.Debugf("loaded %d samples from %s", len(rows), t.table)
	return rowsToSamples(rows), nil
}

// Close closes the connection pool
func (t *TimescaleSource) Close() error {
	return database.Close(t.db)
}

func rowsToSamples(rows []database.SampleRow) []types.Sample {
	samples := make([]types.Sample, len(rows))
	for i, r := range rows {
		samples[i] = types.Sample{
			Material:    r.Material,
			MaterialAge: r.MaterialAge,
			Total:       r.Total,
			Legal:       deref(r.Legal),
			Sublegal:    deref(r.Sublegal),
			Spat:        deref(r.Spat),
			SiteName:    r.SiteName,
			Year:        r.Year,
		}
	}
	return samples
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
