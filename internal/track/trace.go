package track

import (
	"errors"
	"math"

	"racing-line-optimizer/internal/common"
)

var ErrOpenTrace = errors.New("centerline trace did not close")

const maxTraceSteps = 2000

// Trace is a centerline recovered from a rasterized track.
type Trace struct {
	Points []common.Vec2 // closed loop, meters
	Widths []float64     // per point wall-to-wall distance, meters
	Width  float64       // mean of Widths
}

type traceConfig struct {
	step float64
}

// TraceOption configures TraceCenterline.
type TraceOption func(*traceConfig)

// WithStepSize sets the walker step in cells.
func WithStepSize(step float64) TraceOption {
	return func(c *traceConfig) {
		if step > 0 {
			c.step = step
		}
	}
}

// TraceCenterline walks the drivable area of grid starting at (startX,
// startY), heading east, and returns the centered loop it followed.
func TraceCenterline(grid *Grid, startX, startY int, opts ...TraceOption) (*Trace, error) {
	cfg := traceConfig{step: 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	stepSize := cfg.step
	beam := 7.5 * stepSize
	probe := 4 * stepSize

	// 1. Find Center of Track at Start
	leftX := startX
	for leftX > 0 && grid.Drivable(leftX, startY) {
		leftX--
	}
	rightX := startX
	for rightX < grid.Width-1 && grid.Drivable(rightX, startY) {
		rightX++
	}

	start := common.Vec2{X: float64(leftX+rightX) / 2.0, Y: float64(startY)}
	startWidth := float64(rightX - leftX)

	curr := start
	dir := common.Vec2{X: 1}
	raw := []common.Vec2{}
	closed := false

	for i := 0; i < maxTraceSteps; i++ {
		// Raycast in an arc to find the "deepest" path; ties go to the
		// straightest direction
		baseAngle := math.Atan2(dir.Y, dir.X)
		bestAngle, bestRel, maxDepth := baseAngle, math.Pi, 0.0
		for rel := -math.Pi / 2; rel <= math.Pi/2+1e-9; rel += math.Pi / 32 {
			a := baseAngle + rel
			ray := common.Vec2{X: math.Cos(a), Y: math.Sin(a)}
			depth := 0.0
			for d := stepSize / 4; d < beam; d += stepSize / 4 {
				p := curr.Add(ray.Scale(d))
				if !grid.Drivable(int(p.X), int(p.Y)) {
					break
				}
				depth = d
			}
			if depth > maxDepth || (depth == maxDepth && math.Abs(rel) < math.Abs(bestRel)) {
				maxDepth = depth
				bestAngle = a
				bestRel = rel
			}
		}

		newDir := common.Vec2{X: math.Cos(bestAngle), Y: math.Sin(bestAngle)}
		curr = curr.Add(newDir.Scale(stepSize))
		// EMA keeps the heading from jittering between rays
		dir = dir.Scale(0.2).Add(newDir.Scale(0.8)).Normalize()
		raw = append(raw, curr)

		if i > 10 && curr.Dist(start) < stepSize*2 {
			closed = true
			break
		}
	}
	if !closed || len(raw) < MinPoints {
		return nil, ErrOpenTrace
	}

	// 2. Refinement pass: pull every point towards the middle of the walls
	refined := append([]common.Vec2(nil), raw...)
	widths := make([]float64, len(refined))
	for i := range widths {
		widths[i] = startWidth
	}
	n := len(refined)
	for iter := 0; iter < 10; iter++ {
		for i := range refined {
			normal := ringNormal(refined, i)
			if normal == (common.Vec2{}) {
				continue
			}
			dLeft, okLeft := wallDistance(grid, refined[i], normal, probe)
			dRight, okRight := wallDistance(grid, refined[i], normal.Scale(-1), probe)
			if okLeft && okRight {
				correction := (dLeft - dRight) / 2.0
				refined[i] = refined[i].Add(normal.Scale(correction * 0.5))
				widths[i] = dLeft + dRight
			}
		}
	}

	// 3. Two passes of a 5-point moving average
	smoothed := refined
	for pass := 0; pass < 2; pass++ {
		temp := append([]common.Vec2(nil), smoothed...)
		for i := range smoothed {
			sum := common.Vec2{}
			for j := -2; j <= 2; j++ {
				sum = sum.Add(temp[(i+j+n)%n])
			}
			smoothed[i] = sum.Scale(1.0 / 5)
		}
	}

	tr := &Trace{
		Points: make([]common.Vec2, 0, n+1),
		Widths: make([]float64, 0, n+1),
	}
	total := 0.0
	for i, p := range smoothed {
		tr.Points = append(tr.Points, p.Scale(grid.Scale))
		w := widths[i] * grid.Scale
		tr.Widths = append(tr.Widths, w)
		total += w
	}
	tr.Points = append(tr.Points, tr.Points[0])
	tr.Widths = append(tr.Widths, tr.Widths[0])
	tr.Width = total / float64(n)
	return tr, nil
}

// ringNormal is the left normal of the chord through the neighbours of i,
// treating pts as a loop.
func ringNormal(pts []common.Vec2, i int) common.Vec2 {
	n := len(pts)
	prev := pts[(i-1+n)%n]
	next := pts[(i+1)%n]
	return next.Sub(prev).Perp().Normalize()
}

func wallDistance(grid *Grid, from, dir common.Vec2, limit float64) (float64, bool) {
	for d := 1.0; d < limit; d++ {
		p := from.Add(dir.Scale(d))
		if !grid.Drivable(int(p.X), int(p.Y)) {
			return d, true
		}
	}
	return 0, false
}
