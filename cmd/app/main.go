package main

import (
	"fmt"
	"image/color"
	"os"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/pflag"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/optimizer"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/simulate"
	"racing-line-optimizer/internal/track"
)

const (
	screenW = 1200
	screenH = 800

	fitFraction = 0.95
	maskScale   = 2.0 // mask pixels per meter
)

var (
	surfaceColors = map[track.CellType]color.RGBA{
		track.CellTarmac: {72, 72, 76, 255},
		track.CellGravel: {28, 24, 18, 255},
		track.CellStart:  {230, 30, 30, 255},
	}
	offTrackColor = color.RGBA{8, 8, 8, 255}

	ribColor   = color.RGBA{60, 140, 60, 40}
	axisColor  = color.RGBA{255, 255, 255, 90}
	slowColor  = color.RGBA{255, 40, 40, 255}
	fastColor  = color.RGBA{40, 255, 80, 255}
	panelColor = color.RGBA{0, 0, 0, 180}
)

// viewer shows every strategy's line over the rendered track mask.
type viewer struct {
	mesh     *track.Mesh
	width    float64
	backdrop *ebiten.Image
	results  []optimizer.Result
	selected int

	scale  float32
	shiftX float32
	shiftY float32
	origin common.Vec2 // world point drawn at (shiftX, shiftY)
}

func (g *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.selected = (g.selected + 1) % len(g.results)
	}
	return nil
}

func (g *viewer) project(p common.Vec2) (float32, float32) {
	return float32(p.X-g.origin.X)*g.scale + g.shiftX,
		float32(p.Y-g.origin.Y)*g.scale + g.shiftY
}

func (g *viewer) segment(screen *ebiten.Image, a, b common.Vec2, width float32, c color.Color) {
	ax, ay := g.project(a)
	bx, by := g.project(b)
	vector.StrokeLine(screen, ax, ay, bx, by, width, c, true)
}

func (g *viewer) Draw(screen *ebiten.Image) {
	if g.backdrop != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(g.scale)/maskScale, float64(g.scale)/maskScale)
		op.GeoM.Translate(float64(g.shiftX), float64(g.shiftY))
		screen.DrawImage(g.backdrop, op)
	}

	half := g.width / 2
	for _, wp := range g.mesh.Waypoints {
		g.segment(screen, wp.Position.Sub(wp.Normal.Scale(half)), wp.Position.Add(wp.Normal.Scale(half)), 1, ribColor)
	}
	center := g.mesh.Positions()
	for j := 1; j < len(center); j++ {
		g.segment(screen, center[j-1], center[j], 1, axisColor)
	}

	res := g.results[g.selected]
	lo, hi := speedRange(res.Speeds)
	for j := 1; j < len(res.Path) && j <= len(res.Speeds); j++ {
		g.segment(screen, res.Path[j-1], res.Path[j], 3, speedColor(res.Speeds[j-1], lo, hi))
	}

	vector.FillRect(screen, 0, 0, 220, 150, panelColor, true)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%.2fs lap, %d iterations (%s)\n", res.Strategy, res.LapTime, res.Iterations, res.Status)
	fmt.Fprintf(&sb, "speed %.1f..%.1f m/s\n\n", lo, hi)
	for i, other := range g.results {
		marker := " "
		if i == g.selected {
			marker = ">"
		}
		fmt.Fprintf(&sb, "%s %-9s %.2fs\n", marker, other.Strategy, other.LapTime)
	}
	sb.WriteString("\n[S] cycle strategy")
	ebitenutil.DebugPrint(screen, sb.String())
}

func (g *viewer) Layout(int, int) (int, int) {
	return screenW, screenH
}

func speedRange(speeds []float64) (float64, float64) {
	if len(speeds) == 0 {
		return physics.MinSpeed, physics.MaxSpeed
	}
	return slices.Min(speeds), slices.Max(speeds)
}

// speedColor blends from slowColor at lo to fastColor at hi.
func speedColor(v, lo, hi float64) color.RGBA {
	t := 1.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{
		R: mix(slowColor.R, fastColor.R),
		G: mix(slowColor.G, fastColor.G),
		B: mix(slowColor.B, fastColor.B),
		A: 255,
	}
}

// backdrop paints the drivable mask, one pixel per grid cell.
func backdrop(grid *track.Grid) *ebiten.Image {
	pix := make([]byte, 0, grid.Width*grid.Height*4)
	for y := range grid.Height {
		for x := range grid.Width {
			c, ok := surfaceColors[grid.Get(x, y).Type]
			if !ok {
				c = offTrackColor
			}
			pix = append(pix, c.R, c.G, c.B, 0xff)
		}
	}
	img := ebiten.NewImage(grid.Width, grid.Height)
	img.WritePixels(pix)
	return img
}

func main() {
	trackFile := pflag.StringP("track", "t", "", "track file (default: oval preset)")
	points := pflag.Int("points", 100, "resample the centerline to this many points")
	pflag.Parse()

	req := simulate.Request{Track: track.File{Name: "oval", Width: track.DefaultWidth, Friction: track.DefaultFriction}}
	if *trackFile != "" {
		loaded, err := simulate.LoadRequest(*trackFile)
		if err != nil {
			log.Fatal("cannot load track", log.ErrorField(err))
		}
		req = loaded
	} else {
		pts, _ := track.Preset("oval")
		req.Track.Points = pts
	}
	centerline := req.Track.Points
	if *points > 0 {
		centerline = track.Resample(centerline, *points)
	}
	car := physics.DefaultCar()
	if len(req.Cars) > 0 {
		car = req.Cars[0]
	}

	var results []optimizer.Result
	for _, s := range []optimizer.Strategy{optimizer.LateApex, optimizer.TwoStep} {
		res, err := optimizer.Optimize(centerline, req.Track.Width, req.Track.Friction, car, s)
		if err != nil {
			log.Fatal("optimization failed", log.String("strategy", s.Name()), log.ErrorField(err))
		}
		results = append(results, res)
	}

	mask := track.RenderMask(centerline, req.Track.Width, maskScale)
	grid := track.GridFromImage(mask, 1/maskScale)

	// fit the mask (track plus one width of margin) into the window
	low, high := track.Bounds(centerline)
	margin := req.Track.Width
	spanX := high.X - low.X + 2*margin
	spanY := high.Y - low.Y + 2*margin
	scale := float32(min(screenW/spanX, screenH/spanY) * fitFraction)

	v := &viewer{
		mesh:     track.BuildMesh(centerline),
		width:    req.Track.Width,
		backdrop: backdrop(grid),
		results:  results,
		scale:    scale,
		shiftX:   (screenW - float32(spanX)*scale) / 2,
		shiftY:   (screenH - float32(spanY)*scale) / 2,
		origin:   common.Vec2{X: low.X - margin, Y: low.Y - margin},
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("racingline")
	if err := ebiten.RunGame(v); err != nil {
		log.Error("viewer stopped", log.ErrorField(err))
		os.Exit(1)
	}
}
