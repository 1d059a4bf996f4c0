// Package report renders optimization results as PNG charts.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/simulate"
)

var ErrNoData = errors.New("nothing to plot")

const dpi = 150

// SpeedPlot draws speed over distance, one line per car.
func SpeedPlot(title string, lines []simulate.OptimalLine) (*plot.Plot, error) {
	if len(lines) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "distance (m)"
	p.Y.Label.Text = "speed (m/s)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, l := range lines {
		dist := cumulative(l.Coordinates)
		pts := make(plotter.XYs, min(len(dist), len(l.Speeds)))
		for j := range pts {
			pts[j].X = dist[j]
			pts[j].Y = l.Speeds[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("car %s: %w", l.CarID, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s %.2fs", l.CarID, l.LapTime), line)
	}
	return p, nil
}

// TrackPlot draws the centerline and every car's line from above.
func TrackPlot(title string, center []common.Vec2, lines []simulate.OptimalLine) (*plot.Plot, error) {
	if len(center) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	c, err := plotter.NewLine(xys(center))
	if err != nil {
		return nil, err
	}
	c.LineStyle.Width = vg.Points(1)
	c.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(c)
	p.Legend.Add("centerline", c)

	for i, l := range lines {
		line, err := plotter.NewLine(xys(l.Coordinates))
		if err != nil {
			return nil, fmt.Errorf("car %s: %w", l.CarID, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(l.CarID, line)
	}
	return p, nil
}

// WritePNG renders p into w.
func WritePNG(p *plot.Plot, w io.Writer, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes p to filename, creating the directory when needed.
func SavePNG(p *plot.Plot, filename string, widthIn, heightIn float64) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()
	return WritePNG(p, f, widthIn, heightIn)
}

func cumulative(points []common.Vec2) []float64 {
	out := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		out[i] = out[i-1] + points[i].Dist(points[i-1])
	}
	return out
}

func xys(points []common.Vec2) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i].X = p.X
		pts[i].Y = p.Y
	}
	return pts
}
