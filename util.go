package quantreg

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoPredictions = errors.New("no predictions to plot")

// LineSeries generates an echart multi-line chart indexed by sample position. Each series
// in y must have the same length. NaN values are left out of their series.
func LineSeries(title string, seriesName []string, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	var n int
	if len(y) > 0 {
		n = len(y[0])
	}
	x := make([]int, n)
	for i := range x {
		x[i] = i
	}

	line = line.SetXAxis(x)
	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for j, v := range y[i] {
			if math.IsNaN(v) {
				continue
			}
			lineData = append(lineData, opts.LineData{Value: []any{j, v}})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// PlotPredictions uses the Apache Echarts library to generate an html file comparing the test
// targets with the original and dequantized predictions, along with the prediction drift
// introduced by quantization. At most samples points are plotted, all when samples <= 0.
func (r *Report) PlotPredictions(path string, samples int) error {
	n := min(len(r.Actual), len(r.PredOriginal), len(r.PredDequant))
	if n == 0 {
		return ErrNoPredictions
	}
	if samples > 0 {
		n = min(n, samples)
	}

	drift := make([]float64, n)
	for i := range drift {
		drift[i] = r.PredDequant[i] - r.PredOriginal[i]
	}

	page := components.NewPage()
	page.AddCharts(
		LineSeries(
			fmt.Sprintf("Predictions (%s quantization)", r.Mode),
			[]string{"Actual", "Original", "Dequantized"},
			[][]float64{
				r.Actual[:n],
				r.PredOriginal[:n],
				r.PredDequant[:n],
			},
		),
		LineSeries(
			"Quantization Drift",
			[]string{"Dequantized - Original"},
			[][]float64{drift},
		),
	)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(file)
}
