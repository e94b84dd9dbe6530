package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chrissnell/oysterdash/internal/constants"
	"github.com/chrissnell/oysterdash/internal/figure"
	"github.com/chrissnell/oysterdash/internal/lowess"
	"github.com/chrissnell/oysterdash/internal/types"
	"github.com/chrissnell/oysterdash/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the dashboard server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// SamplesResponse is the body of /api/samples
type SamplesResponse struct {
	Class   types.DensityClass `json:"class"`
	Count   int                `json:"count"`
	Samples []types.Sample     `json:"samples"`
}

// TrendResponse is the body of /api/trend
type TrendResponse struct {
	Class      types.DensityClass `json:"class"`
	Frac       float64            `json:"frac"`
	Iterations int                `json:"iterations"`
	Points     []types.TrendPoint `json:"points"`
}

type classOption struct {
	Value types.DensityClass
	Label string
}

// ServeIndex renders the dashboard page
func (h *Handlers) ServeIndex(w http.ResponseWriter, req *http.Request) {
	class, err := types.ParseClass(req.URL.Query().Get("class"))
	if err != nil {
		class = types.ClassTotal
	}

	options := make([]classOption, len(types.Classes))
	for i, c := range types.Classes {
		options[i] = classOption{Value: c, Label: c.Label()}
	}

	templateData := struct {
		PageTitle string
		Classes   []classOption
		Selected  types.DensityClass
		Version   string
	}{
		PageTitle: "NC Oyster Sanctuary Data",
		Classes:   options,
		Selected:  class,
		Version:   constants.Version,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.controller.index.Execute(w, templateData); err != nil {
		h.controller.logger.Error("error executing dashboard template:", err)
	}
}

// GetHealth reports liveness
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, map[string]string{
		"status":  "ok",
		"version": constants.Version,
	})
}

// GetSamples returns every loaded sample
func (h *Handlers) GetSamples(w http.ResponseWriter, req *http.Request) {
	class, ok := h.parseClass(w, req)
	if !ok {
		return
	}

	samples, ok := h.loadSamples(w, req)
	if !ok {
		return
	}

	h.write(w, req, SamplesResponse{
		Class:   class,
		Count:   len(samples),
		Samples: samples,
	})
}

// GetTrend returns the LOWESS curve for the requested density class
func (h *Handlers) GetTrend(w http.ResponseWriter, req *http.Request) {
	class, ok := h.parseClass(w, req)
	if !ok {
		return
	}

	params := h.controller.trend
	if v := req.URL.Query().Get("frac"); v != "" {
		frac, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid frac %q", v))
			return
		}
		params.Frac = frac
	}
	if err := params.Validate(); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	samples, ok := h.loadSamples(w, req)
	if !ok {
		return
	}

	curve, ok := h.computeTrend(w, req, samples, class, params)
	if !ok {
		return
	}

	h.write(w, req, TrendResponse{
		Class:      class,
		Frac:       params.Frac,
		Iterations: params.Iterations,
		Points:     curve,
	})
}

// GetFigure returns the complete Plotly figure for the requested density class
func (h *Handlers) GetFigure(w http.ResponseWriter, req *http.Request) {
	class, ok := h.parseClass(w, req)
	if !ok {
		return
	}

	samples, ok := h.loadSamples(w, req)
	if !ok {
		return
	}

	// An empty sample set still draws the axes, without a trend
	var curve []types.TrendPoint
	if len(samples) > 0 {
		curve, ok = h.computeTrend(w, req, samples, class, h.controller.trend)
		if !ok {
			return
		}
	}

	h.write(w, req, figure.Build(samples, class, curve, h.controller.chart))
}

func (h *Handlers) parseClass(w http.ResponseWriter, req *http.Request) (types.DensityClass, bool) {
	class, err := types.ParseClass(req.URL.Query().Get("class"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return "", false
	}
	return class, true
}

func (h *Handlers) loadSamples(w http.ResponseWriter, req *http.Request) ([]types.Sample, bool) {
	samples, err := h.controller.samples.Get(req.Context())
	if err != nil {
		h.controller.logger.Errorw("error loading samples",
			"error", err,
			"request_id", requestIDFromContext(req.Context()),
		)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "unable to load oyster density samples")
		return nil, false
	}
	return samples, true
}

func (h *Handlers) computeTrend(w http.ResponseWriter, req *http.Request, samples []types.Sample, class types.DensityClass, params lowess.Params) ([]types.TrendPoint, bool) {
	curve, err := figure.Trend(samples, class, params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lowess.ErrEmptyInput) {
			status = http.StatusNotFound
		}
		h.controller.logger.Errorw("error computing trend",
			"error", err,
			"class", class,
			"request_id", requestIDFromContext(req.Context()),
		)
		h.formatter.WriteError(w, req, status, "unable to compute the density trend")
		return nil, false
	}
	return curve, true
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	w.Header().Set("Cache-Control", "no-cache")
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, data); err != nil {
		h.controller.logger.Error("error encoding response:", err)
	}
}
