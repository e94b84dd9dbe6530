package samples

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/oysterdash/internal/types"
)

// Column headers of the sanctuary density export
const (
	ColMaterial    = "Material"
	ColMaterialAge = "Material_Age"
	ColTotal       = "total"
	ColSiteName    = "OS_Name"
	ColYear        = "Year"
	ColLegal       = "legal"
	ColSublegal    = "sublegal"
	ColSpat        = "spat"
)

var requiredColumns = []string{ColMaterial, ColMaterialAge, ColTotal, ColSiteName, ColYear}

// CSVSource reads samples from a delimited file with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the file at path
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads and parses the whole file
func (c *CSVSource) Load(ctx context.Context) ([]types.Sample, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file: %w", err)
	}
	defer f.Close()

	samples, err := ParseCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return samples, nil
}

// Close is a no-op; the file is opened and closed on every Load
func (c *CSVSource) Close() error {
	return nil
}

// ParseCSV parses a density export. Columns are located by header name so
// extra or reordered columns are fine. The size-class columns are optional.
func ParseCSV(ctx context.Context, r io.Reader) ([]types.Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrNoSamples)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[strings.ToLower(h)] = i
	}

	col := func(name string) int {
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	for _, name := range requiredColumns {
		if col(name) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var (
		materialIdx = col(ColMaterial)
		ageIdx      = col(ColMaterialAge)
		totalIdx    = col(ColTotal)
		siteIdx     = col(ColSiteName)
		yearIdx     = col(ColYear)
		legalIdx    = col(ColLegal)
		sublegalIdx = col(ColSublegal)
		spatIdx     = col(ColSpat)
	)

	var samples []types.Sample
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := rowParser{row: row, line: line}
		s := types.Sample{
			Material:    p.text(materialIdx),
			MaterialAge: p.number(ageIdx, ColMaterialAge, true),
			Total:       p.number(totalIdx, ColTotal, true),
			SiteName:    p.text(siteIdx),
			Year:        p.year(yearIdx),
			Legal:       p.number(legalIdx, ColLegal, false),
			Sublegal:    p.number(sublegalIdx, ColSublegal, false),
			Spat:        p.number(spatIdx, ColSpat, false),
		}
		if p.err != nil {
			return nil, p.err
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

// rowParser keeps the first conversion error of a row so the field
// assignments above stay flat.
type rowParser struct {
	row  []string
	line int
	err  error
}

func (p *rowParser) cell(i int) string {
	if i < 0 || i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) text(i int) string {
	return p.cell(i)
}

func (p *rowParser) number(i int, name string, required bool) float64 {
	if p.err != nil {
		return 0
	}
	v := p.cell(i)
	if v == "" {
		if required {
			p.err = fmt.Errorf("line %d: column %s is empty", p.line, name)
		}
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.err = fmt.Errorf("line %d: column %s: invalid number %q", p.line, name, v)
		return 0
	}
	return f
}

// year accepts "2021" as well as "2021.0", which spreadsheet exports produce
func (p *rowParser) year(i int) int {
	if p.err != nil {
		return 0
	}
	v := p.cell(i)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		p.err = fmt.Errorf("line %d: column %s: invalid year %q", p.line, ColYear, v)
		return 0
	}
	return int(f)
}
