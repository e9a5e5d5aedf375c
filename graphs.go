package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/stojg/descent/linreg"
)

type xys struct{ x, y []float64 }

func (a xys) Len() int                { return len(a.x) }
func (a xys) XY(i int) (x, y float64) { return a.x[i], a.y[i] }

// plotFit draws the observations with the descent fit and the least squares line.
func plotFit(p *plot.Plot, xLabel, yLabel string, xs, ys []float64, fit linreg.Params) error {
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(xys{x: xs, y: ys})
	if err != nil {
		return fmt.Errorf("could not create scatter plot: %v", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.Color = color.RGBA{R: 90, G: 180, B: 234, A: 255}
	p.Legend.Add("data points", scatter)
	p.Add(scatter)

	line, err := addRegressionLine(p, scatter, fit)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 240, G: 20, B: 20, A: 255}
	line.Width = vg.Points(2)
	p.Legend.Add("line of best fit", line)

	for _, segment := range residualSegments(xs, ys, fit) {
		r, err := plotter.NewLine(segment)
		if err != nil {
			return fmt.Errorf("could not create residual line: %v", err)
		}
		r.Color = color.RGBA{R: 160, G: 160, B: 160, A: 255}
		r.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(r)
	}

	reference := linreg.ClosedForm(xs, ys)
	refLine, err := addRegressionLine(p, scatter, reference)
	if err != nil {
		return err
	}
	refLine.Color = color.RGBA{R: 20, G: 100, B: 240, A: 255}
	refLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Legend.Add("least squares", refLine)

	// a centroid shows the mean of all scatter points and must fall on the least squares line
	xMean := stat.Mean(xs, nil)
	yMean := stat.Mean(ys, nil)
	if err := addCentroid(p, xMean, yMean); err != nil {
		return err
	}

	addLabel(p, fmt.Sprintf("%s = %0.2f + %0.2f * %s", yLabel, fit.Theta0, fit.Theta1, xLabel))
	addLabel(p, fmt.Sprintf("R^2: %0.3f (least squares: %0.3f)", linreg.RSquared(xs, ys, fit), linreg.RSquared(xs, ys, reference)))
	addLabel(p, fmt.Sprintf("data points: %d", len(xs)))
	return nil
}

// maxResiduals bounds how many residual segments a fit plot draws.
const maxResiduals = 100

// residualSegments joins each observation to the fitted value below or above
// it, spread evenly over the data when there are more than maxResiduals.
func residualSegments(xs, ys []float64, fit linreg.Params) []plotter.XYs {
	every := (len(xs) + maxResiduals - 1) / maxResiduals
	if every < 1 {
		every = 1
	}
	var out []plotter.XYs
	for i := 0; i < len(xs); i += every {
		pred := fit.Predict(xs[i])
		if !isFinite(pred) {
			continue
		}
		out = append(out, plotter.XYs{{xs[i], ys[i]}, {xs[i], pred}})
	}
	return out
}

// plotLoss draws loss against iteration. Non-finite losses are left out.
func plotLoss(p *plot.Plot, losses []float64) error {
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "MSE loss"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(losses))
	for i, l := range losses {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			continue
		}
		pts = append(pts, plotter.XYs{{float64(i), l}}...)
	}
	if len(pts) == 0 {
		return errors.New("could not plot loss: no finite values")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("could not create loss line: %v", err)
	}
	line.Color = color.RGBA{G: 160, A: 255}
	line.Width = vg.Points(2)
	p.Add(line)

	if skipped := len(losses) - len(pts); skipped > 0 {
		addLabel(p, fmt.Sprintf("%d non-finite losses not shown", skipped))
	}
	addLabel(p, fmt.Sprintf("final loss: %0.4g", losses[len(losses)-1]))
	return nil
}

// costSurface samples the cost over a grid of (theta0, theta1).
type costSurface struct {
	xs, ys         []float64
	theta0, theta1 []float64
}

func newCostSurface(xs, ys []float64, path []linreg.Params, steps int) (*costSurface, error) {
	var t0, t1 []float64
	for _, p := range path {
		t0 = append(t0, p.Theta0)
		t1 = append(t1, p.Theta1)
	}
	if len(t0) == 0 {
		return nil, errors.New("could not plot cost surface: no finite parameters")
	}
	opt := linreg.ClosedForm(xs, ys)
	if isFinite(opt.Theta0) && isFinite(opt.Theta1) {
		t0 = append(t0, opt.Theta0)
		t1 = append(t1, opt.Theta1)
	}
	c := &costSurface{
		xs:     xs,
		ys:     ys,
		theta0: axisRange(floats.Min(t0), floats.Max(t0), steps),
		theta1: axisRange(floats.Min(t1), floats.Max(t1), steps),
	}
	// the cost is convex, so its largest value on the grid sits in a corner
	for _, col := range []int{0, steps - 1} {
		for _, row := range []int{0, steps - 1} {
			if !isFinite(c.Z(col, row)) {
				return nil, errors.New("could not plot cost surface: cost overflows on the grid")
			}
		}
	}
	return c, nil
}

func (c *costSurface) Dims() (int, int) { return len(c.theta0), len(c.theta1) }
func (c *costSurface) X(col int) float64 { return c.theta0[col] }
func (c *costSurface) Y(row int) float64 { return c.theta1[row] }

// Z is log scaled so the valley around the minimum stays visible.
func (c *costSurface) Z(col, row int) float64 {
	return math.Log1p(linreg.Cost(c.xs, c.ys, linreg.Params{Theta0: c.theta0[col], Theta1: c.theta1[row]}))
}

// axisRange spreads steps values over [min, max] padded by a fifth on each side.
func axisRange(min, max float64, steps int) []float64 {
	pad := (max - min) / 5
	if pad == 0 {
		pad = 1
	}
	min, max = min-pad, max+pad
	out := make([]float64, steps)
	for i := range out {
		out[i] = min + (max-min)*float64(i)/float64(steps-1)
	}
	return out
}

// plotCostSurface draws the cost as a heat map with the descent path on top.
func plotCostSurface(p *plot.Plot, xs, ys []float64, path []linreg.Params) error {
	p.X.Label.Text = "theta0"
	p.Y.Label.Text = "theta1"

	path = finitePath(xs, ys, path)
	surface, err := newCostSurface(xs, ys, path, 60)
	if err != nil {
		return err
	}
	p.Add(plotter.NewHeatMap(surface, palette.Heat(24, 1)))

	pts := make(plotter.XYs, 0, len(path))
	for _, step := range path {
		pts = append(pts, plotter.XYs{{step.Theta0, step.Theta1}}...)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("could not create descent path: %v", err)
	}
	line.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(1.5)
	points.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.Add(line, points)
	p.Legend.Add("descent path", line, points)

	last := pts[len(pts)-1]
	addLabel(p, fmt.Sprintf("start (%0.2f, %0.2f) end (%0.2f, %0.2f)", pts[0].X, pts[0].Y, last.X, last.Y))
	return nil
}

// finitePath keeps the parameters whose cost can still be represented.
func finitePath(xs, ys []float64, path []linreg.Params) []linreg.Params {
	var out []linreg.Params
	for _, p := range path {
		if isFinite(linreg.Cost(xs, ys, p)) {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func addLabel(p *plot.Plot, text string) {
	p.Legend.Add(text)
}

func addRegressionLine(p *plot.Plot, s *plotter.Scatter, fit linreg.Params) (*plotter.Line, error) {
	min, max, _, _ := s.DataRange()
	l, err := plotter.NewLine(plotter.XYs{
		{min, fit.Predict(min)}, {max, fit.Predict(max)},
	})
	if err != nil {
		return l, fmt.Errorf("could not create regression line: %v", err)
	}
	p.Add(l)
	return l, nil
}

func addCentroid(p *plot.Plot, xMean, yMean float64) error {
	centroidXYs := xys{
		x: []float64{xMean},
		y: []float64{yMean},
	}
	centroid, err := plotter.NewScatter(centroidXYs)
	if err != nil {
		return fmt.Errorf("could not create scatter: %v", err)
	}
	centroid.GlyphStyle.Shape = draw.CircleGlyph{}
	centroid.GlyphStyle.Radius = 4.0
	p.Add(centroid)
	return nil
}

func createPlot(label string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("could not create plot: %v", err)
	}
	p.Title.Text = label
	p.Legend.Left = true
	p.Legend.Top = true

	return p, nil
}

func writePlot(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, imageFormat)
	if err != nil {
		return fmt.Errorf("could not create writer: %v", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("could not write plot: %v", err)
	}
	return nil
}
