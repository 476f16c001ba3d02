package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fixora/assetdash/internal/domain"
)

// LinearFit is a least squares line over the series index
type LinearFit struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at index x
func (f LinearFit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// FitIndexSeries fits ys against 0..n-1. Fewer than two points give a flat line.
func FitIndexSeries(ys []float64) LinearFit {
	switch len(ys) {
	case 0:
		return LinearFit{}
	case 1:
		return LinearFit{Intercept: ys[0]}
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return LinearFit{Intercept: alpha, Slope: beta}
}

// mean returns the arithmetic mean, or 0 for an empty slice
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func round2(v float64) float64 {
	return round(v, 2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// percent returns part/whole*100, or 0 when whole is 0
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// checkFinite returns a ComputationError naming the first non-finite value
func checkFinite(calculator string, values map[string]float64) error {
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &domain.ComputationError{Calculator: calculator, Reason: name + " is not finite"}
		}
	}
	return nil
}
