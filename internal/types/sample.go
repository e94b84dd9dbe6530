// Package types holds the data model shared by the sample sources, the trend
// estimator and the dashboard.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownClass is returned when a density class name is not recognized
var ErrUnknownClass = errors.New("unknown density class")

// Sample is one pre-aggregated density observation from a sanctuary site.
// Densities are live oysters per square meter.
type Sample struct {
	Material    string  `json:"material"`
	MaterialAge float64 `json:"material_age"`
	Total       float64 `json:"total"`
	Legal       float64 `json:"legal"`
	Sublegal    float64 `json:"sublegal"`
	Spat        float64 `json:"spat"`
	SiteName    string  `json:"site_name"`
	Year        int     `json:"year"`
}

// DensityClass selects which size class of a sample is plotted
type DensityClass string

const (
	ClassTotal    DensityClass = "total"
	ClassLegal    DensityClass = "legal"    // > 75mm
	ClassSublegal DensityClass = "sublegal" // 25mm < x < 75mm
	ClassSpat     DensityClass = "spat"     // <= 25mm
	ClassNonSpat  DensityClass = "nonspat"  // legal + sublegal
)

// Classes lists every density class in the order the dashboard offers them
var Classes = []DensityClass{ClassTotal, ClassLegal, ClassSublegal, ClassSpat, ClassNonSpat}

// ParseClass converts a query value into a DensityClass. An empty string
// selects ClassTotal.
func ParseClass(s string) (DensityClass, error) {
	if s == "" {
		return ClassTotal, nil
	}
	c := DensityClass(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Classes {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// Label returns the human-readable name used in the dashboard selector
func (c DensityClass) Label() string {
	switch c {
	case ClassLegal:
		return "Legal (>75mm)"
	case ClassSublegal:
		return "Sublegal (25-75mm)"
	case ClassSpat:
		return "Spat (≤25mm)"
	case ClassNonSpat:
		return "Non-spat (legal + sublegal)"
	default:
		return "All oysters"
	}
}

// Density returns the sample's density for the given class
func (s Sample) Density(c DensityClass) float64 {
	switch c {
	case ClassLegal:
		return s.Legal
	case ClassSublegal:
		return s.Sublegal
	case ClassSpat:
		return s.Spat
	case ClassNonSpat:
		return s.Legal + s.Sublegal
	default:
		return s.Total
	}
}

// TrendPoint is one fitted point of a smoothed trend curve
type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
