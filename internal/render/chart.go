package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"TrendSentinel/internal/model"
)

// Chart draws the price window with the predicted next price appended
// and writes a PNG named after the dataset into dir. Returns the
// written path.
func Chart(window model.PriceWindow, pred *model.Prediction, name, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("chart dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stock Market Prediction - %s", name)
	p.X.Label.Text = "Day"
	p.Y.Label.Text = "Stock Price ($)"
	p.Add(plotter.NewGrid())

	actual := make(plotter.XYs, len(window))
	for i, v := range window {
		actual[i].X = float64(i + 1)
		actual[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(actual)
	if err != nil {
		return "", fmt.Errorf("actual series: %w", err)
	}
	green := color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
	line.Color = green
	line.Width = vg.Points(2)
	points.GlyphStyle.Color = green
	points.GlyphStyle.Shape = draw.CircleGlyph{}

	predicted, err := plotter.NewScatter(plotter.XYs{
		{X: float64(len(window) + 1), Y: pred.Predicted},
	})
	if err != nil {
		return "", fmt.Errorf("predicted point: %w", err)
	}
	predicted.GlyphStyle.Color = color.RGBA{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff}
	predicted.GlyphStyle.Radius = vg.Points(4)
	predicted.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(line, points, predicted)
	p.Legend.Add("Actual Prices", line, points)
	p.Legend.Add("Predicted Price", predicted)
	p.Legend.Top = true

	path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+"_prediction.png")
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}
