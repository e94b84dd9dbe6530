// Package lowess implements locally weighted scatterplot smoothing (LOWESS).
//
// Each sorted x value gets its own weighted linear regression over its
// nearest neighbours. Weights follow the tricube kernel of distance over the
// window radius. Optional robustifying passes then down-weight points with
// large residuals using the bisquare function, so a single outlier only bends
// the curve inside its own neighbourhood.
package lowess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chrissnell/oysterdash/internal/types"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyInput is returned when there are no points to smooth
	ErrEmptyInput = errors.New("lowess: empty input")
	// ErrLengthMismatch is returned when x and y differ in length
	ErrLengthMismatch = errors.New("lowess: x and y have different lengths")
	// ErrInvalidFrac is returned when the bandwidth is outside (0, 1]
	ErrInvalidFrac = errors.New("lowess: frac must be in (0, 1]")
	// ErrInvalidIterations is returned for a negative robustness pass count
	ErrInvalidIterations = errors.New("lowess: iterations must not be negative")
	// ErrNonFinite is returned when an input value is NaN or infinite
	ErrNonFinite = errors.New("lowess: input contains NaN or Inf")
)

const (
	// DefaultFrac is the fraction of points used for each local fit
	DefaultFrac = 0.25
	// DefaultIterations is the number of robustifying passes after the first fit
	DefaultIterations = 3

	// x spread below this share of the window range is treated as no spread
	spreadTolerance = 1e-12
	// a median residual below this share of the largest |y| ends robustness early
	residualTolerance = 1e-12
)

// Params configures a LOWESS fit
type Params struct {
	// Frac is the fraction of the points used in each local regression, in (0, 1]
	Frac float64

	// Iterations is the number of robustifying re-weighting passes
	Iterations int
}

// DefaultParams returns the bandwidth and pass count used by the dashboard
func DefaultParams() Params {
	return Params{
		Frac:       DefaultFrac,
		Iterations: DefaultIterations,
	}
}

// Validate checks that p describes a usable fit
func (p Params) Validate() error {
	if math.IsNaN(p.Frac) || p.Frac <= 0 || p.Frac > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidFrac, p.Frac)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidIterations, p.Iterations)
	}
	return nil
}

// Smooth fits a LOWESS curve through the points (x[i], y[i]). The result holds
// one fitted point per input observation, sorted ascending by x. Smooth does
// not modify its arguments.
func Smooth(x, y []float64, p Params) ([]types.TrendPoint, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(x), len(y))
	}
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	maxAbsY := 0.0
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return nil, fmt.Errorf("%w: point %d is (%v, %v)", ErrNonFinite, i, x[i], y[i])
		}
		maxAbsY = math.Max(maxAbsY, math.Abs(y[i]))
	}

	xs, ys := sortByX(x, y)

	k := int(p.Frac*float64(n) + 1e-10)
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}
	fitted := make([]float64, n)
	residuals := make([]float64, n)
	scratch := make([]float64, n)
	weights := make([]float64, k)

	for pass := 0; pass <= p.Iterations; pass++ {
		fitPass(xs, ys, robust, k, weights, fitted)
		if pass == p.Iterations {
			break
		}
		if !reweight(ys, fitted, residuals, scratch, robust, maxAbsY) {
			break
		}
	}

	curve := make([]types.TrendPoint, n)
	for i := range curve {
		curve[i] = types.TrendPoint{X: xs[i], Y: fitted[i]}
	}
	return curve, nil
}

// fitPass computes one fitted value per point. The k-point window slides
// right as x grows, so the whole pass is linear in n apart from the fits.
func fitPass(xs, ys, robust []float64, k int, weights, fitted []float64) {
	n := len(xs)
	lo := 0
	for i := 0; i < n; i++ {
		xi := xs[i]
		for lo+k < n && xi-xs[lo] > xs[lo+k]-xi {
			lo++
		}
		hi := lo + k
		fitted[i] = fitLocal(xs[lo:hi], ys[lo:hi], robust[lo:hi], weights, xi, ys[i])
	}
}

// fitLocal runs the weighted regression for the window around xi and
// returns its value at xi. fallback is used when every weight is zero.
func fitLocal(xs, ys, robust, weights []float64, xi, fallback float64) float64 {
	last := len(xs) - 1
	radius := math.Max(xi-xs[0], xs[last]-xi)

	sum := 0.0
	for j := range xs {
		w := robust[j]
		if radius > 0 {
			w *= tricube((xs[j] - xi) / radius)
		}
		weights[j] = w
		sum += w
	}
	if sum <= 0 {
		return fallback
	}

	// gonum's weighted estimators divide by sum(w)-1, so keep sum(w) at the
	// window size.
	scale := float64(len(xs)) / sum
	for j := range xs {
		weights[j] *= scale
	}
	w := weights[:len(xs)]

	spread := xs[last] - xs[0]
	if spread == 0 {
		return stat.Mean(ys, w)
	}
	if _, variance := stat.MeanVariance(xs, w); variance <= spreadTolerance*spread*spread {
		return stat.Mean(ys, w)
	}

	alpha, beta := stat.LinearRegression(xs, ys, w, false)
	return alpha + beta*xi
}

// reweight updates the robustness weights from the current residuals. It
// reports false when the fit is already exact and further passes are pointless.
func reweight(ys, fitted, residuals, scratch, robust []float64, maxAbsY float64) bool {
	for i := range ys {
		residuals[i] = math.Abs(ys[i] - fitted[i])
	}
	copy(scratch, residuals)
	sort.Float64s(scratch)
	median := stat.Quantile(0.5, stat.Empirical, scratch, nil)

	if median <= residualTolerance*math.Max(1, maxAbsY) {
		return false
	}

	cut := 6 * median
	for i := range robust {
		robust[i] = bisquare(residuals[i] / cut)
	}
	return true
}

// sortByX returns copies of x and y ordered by ascending x. Ties keep their
// input order so repeated fits of the same data are identical.
func sortByX(x, y []float64) ([]float64, []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return x[idx[a]] < x[idx[b]]
	})

	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func tricube(u float64) float64 {
	u = math.Abs(u)
	if u >= 1 {
		return 0
	}
	t := 1 - u*u*u
	return t * t * t
}

func bisquare(u float64) float64 {
	u = math.Abs(u)
	if u >= 1 {
		return 0
	}
	t := 1 - u*u
	return t * t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
