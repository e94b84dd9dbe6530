// Package figure assembles the Plotly figure drawn by the dashboard: one
// marker trace per substrate material plus the LOWESS trend overlay.
package figure

import (
	"sort"

	"github.com/chrissnell/oysterdash/internal/lowess"
	"github.com/chrissnell/oysterdash/internal/types"
	"github.com/chrissnell/oysterdash/pkg/config"
)

// TrendTraceName labels the overlay in the legend
const TrendTraceName = "Lowess Trendline"

// Colors for materials that are not in the configured palette
var extraColors = []string{"#B6E880", "#FF97FF", "#FECB52", "#7F7F7F", "#BCBD22"}

const hoverTemplate = "<b>%{fullData.name}</b><br>" +
	"Age: %{x} years<br>" +
	"Density: %{y} per m²<br>" +
	"Site: %{customdata[0]}<br>" +
	"Year: %{customdata[1]}<extra></extra>"

// Figure is the JSON document passed to Plotly.newPlot
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly scatter trace, either the markers of a material or the trend line
type Trace struct {
	Type          string      `json:"type"`
	Mode          string      `json:"mode"`
	Name          string      `json:"name"`
	X             []float64   `json:"x"`
	Y             []float64   `json:"y"`
	CustomData    [][2]any    `json:"customdata,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	HoverLabel    *HoverLabel `json:"hoverlabel,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
	Line          *Line       `json:"line,omitempty"`
}

// Marker styles the points of a marker trace
type Marker struct {
	Color   string  `json:"color"`
	Size    int     `json:"size"`
	Opacity float64 `json:"opacity"`
	Line    Line    `json:"line"`
}

// Line styles a trend line or a marker outline
type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

// HoverLabel styles the tooltip box
type HoverLabel struct {
	BgColor string `json:"bgcolor"`
	Font    Font   `json:"font"`
}

// Font sets text color and size
type Font struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Title is an axis or legend title
type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Axis holds the title and fixed initial range of one axis
type Axis struct {
	Title    Title     `json:"title"`
	Range    []float64 `json:"range"`
	TickFont Font      `json:"tickfont"`
}

// Legend places the material legend inside the plot area
type Legend struct {
	Title       Title   `json:"title"`
	Font        Font    `json:"font"`
	Orientation string  `json:"orientation"`
	XAnchor     string  `json:"xanchor"`
	YAnchor     string  `json:"yanchor"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	BgColor     string  `json:"bgcolor"`
}

// Margin is the plot margin in pixels
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Layout is the Plotly layout shared by every density class
type Layout struct {
	Height       int    `json:"height,omitempty"`
	PaperBgColor string `json:"paper_bgcolor"`
	PlotBgColor  string `json:"plot_bgcolor"`
	Font         Font   `json:"font"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
	Legend       Legend `json:"legend"`
	Margin       Margin `json:"margin"`
}

// Series extracts aligned age and density sequences from every sample
func Series(samples []types.Sample, class types.DensityClass) (x, y []float64) {
	x = make([]float64, len(samples))
	y = make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.MaterialAge
		y[i] = s.Density(class)
	}
	return x, y
}

// Trend smooths the density of class against material age over all samples
func Trend(samples []types.Sample, class types.DensityClass, params lowess.Params) ([]types.TrendPoint, error) {
	x, y := Series(samples, class)
	return lowess.Smooth(x, y, params)
}

// Build assembles the figure. Materials appear in palette order; materials
// missing from the palette follow alphabetically with fallback colors.
func Build(samples []types.Sample, class types.DensityClass, curve []types.TrendPoint, chart config.ChartData) Figure {
	groups := make(map[string][]types.Sample)
	for _, s := range samples {
		groups[s.Material] = append(groups[s.Material], s)
	}

	fig := Figure{Layout: buildLayout(chart)}

	for _, mc := range orderMaterials(groups, chart.Materials) {
		fig.Data = append(fig.Data, markerTrace(mc, groups[mc.Name], class))
	}

	if len(curve) > 0 {
		fig.Data = append(fig.Data, trendTrace(curve))
	}
	return fig
}

func orderMaterials(groups map[string][]types.Sample, palette []config.MaterialColor) []config.MaterialColor {
	var ordered []config.MaterialColor
	seen := make(map[string]bool, len(palette))

	for _, mc := range palette {
		seen[mc.Name] = true
		if len(groups[mc.Name]) > 0 {
			ordered = append(ordered, mc)
		}
	}

	var unknown []string
	for name := range groups {
		if !seen[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	for i, name := range unknown {
		ordered = append(ordered, config.MaterialColor{
			Name:  name,
			Color: extraColors[i%len(extraColors)],
		})
	}
	return ordered
}

func markerTrace(mc config.MaterialColor, samples []types.Sample, class types.DensityClass) Trace {
	t := Trace{
		Type:          "scatter",
		Mode:          "markers",
		Name:          mc.Name,
		X:             make([]float64, len(samples)),
		Y:             make([]float64, len(samples)),
		CustomData:    make([][2]any, len(samples)),
		HoverTemplate: hoverTemplate,
		HoverLabel: &HoverLabel{
			BgColor: "white",
			Font:    Font{Color: "black", Size: 16},
		},
		Marker: &Marker{
			Color:   mc.Color,
			Size:    15,
			Opacity: 0.7,
			Line:    Line{Color: "black", Width: 1},
		},
	}
	for i, s := range samples {
		t.X[i] = s.MaterialAge
		t.Y[i] = s.Density(class)
		t.CustomData[i] = [2]any{s.SiteName, s.Year}
	}
	return t
}

func trendTrace(curve []types.TrendPoint) Trace {
	t := Trace{
		Type: "scatter",
		Mode: "lines",
		Name: TrendTraceName,
		X:    make([]float64, len(curve)),
		Y:    make([]float64, len(curve)),
		Line: &Line{Color: "black", Width: 2},
	}
	for i, pt := range curve {
		t.X[i] = pt.X
		t.Y[i] = pt.Y
	}
	return t
}

func buildLayout(chart config.ChartData) Layout {
	black := func(size int) Font { return Font{Color: "black", Size: size} }

	return Layout{
		Height:       chart.Height,
		PaperBgColor: "#D6F2F4",
		PlotBgColor:  "white",
		Font:         black(18),
		XAxis: Axis{
			Title:    Title{Text: "Material Age (years)", Font: black(22)},
			Range:    append([]float64(nil), chart.XRange...),
			TickFont: black(16),
		},
		YAxis: Axis{
			Title:    Title{Text: "Oyster Density (per m²)", Font: black(22)},
			Range:    append([]float64(nil), chart.YRange...),
			TickFont: black(16),
		},
		Legend: Legend{
			Title:       Title{Text: "Material", Font: black(16)},
			Font:        black(16),
			Orientation: "v",
			XAnchor:     "right",
			YAnchor:     "top",
			X:           0.99,
			Y:           0.95,
			BgColor:     "rgba(255, 255, 255, 0.6)",
		},
		// The plot fills the whole figure area
		Margin: Margin{L: 0, R: 0, T: 0, B: 0},
	}
}
