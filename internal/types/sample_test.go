package types

import (
	"errors"
	"testing"
)

func TestParseClass(t *testing.T) {
	tests := []struct {
		input   string
		want    DensityClass
		wantErr bool
	}{
		{input: "", want: ClassTotal},
		{input: "total", want: ClassTotal},
		{input: "legal", want: ClassLegal},
		{input: "Sublegal", want: ClassSublegal},
		{input: "  SPAT ", want: ClassSpat},
		{input: "nonspat", want: ClassNonSpat},
		{input: "jumbo", wantErr: true},
		{input: "non-spat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClass(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownClass) {
					t.Fatalf("expected ErrUnknownClass, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSampleDensity(t *testing.T) {
	s := Sample{Total: 1000, Legal: 150, Sublegal: 450, Spat: 400}

	tests := []struct {
		class DensityClass
		want  float64
	}{
		{ClassTotal, 1000},
		{ClassLegal, 150},
		{ClassSublegal, 450},
		{ClassSpat, 400},
		{ClassNonSpat, 600},
		{DensityClass("unknown"), 1000},
	}

	for _, tt := range tests {
		if got := s.Density(tt.class); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.class, tt.want, got)
		}
	}
}

func TestClassLabels(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Classes {
		label := c.Label()
		if label == "" || seen[label] {
			t.Errorf("class %q has an empty or duplicate label %q", c, label)
		}
		seen[label] = true
	}
}
