package chart

import (
	"bytes"
	"fmt"

	chartlib "github.com/wcharczuk/go-chart/v2"
)

const (
	canvasWidth  = 600
	canvasHeight = 400
)

// Render draws the series as a line chart on a fixed canvas and returns the
// PNG bytes. Degenerate input never fails: an empty series renders as a
// baseline, a single point as a flat line. The vertical range is pinned to
// [0, max(series)], with max forced to 1 when every value is zero so the
// scale stays finite.
func Render(series []float64, label string) ([]byte, error) {
	ys := normalize(series)
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}

	max := 0.0
	for _, v := range ys {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	graph := chartlib.Chart{
		Title:  label,
		Width:  canvasWidth,
		Height: canvasHeight,
		YAxis: chartlib.YAxis{
			Range: &chartlib.ContinuousRange{Min: 0, Max: max},
		},
		Series: []chartlib.Series{
			chartlib.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chartlib.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// normalize pads the series so the plotting library always gets at least
// two points: one point becomes a flat two-point line, none becomes a
// flat zero line.
func normalize(series []float64) []float64 {
	switch len(series) {
	case 0:
		return []float64{0, 0}
	case 1:
		return []float64{series[0], series[0]}
	default:
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}
}
