package line

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"racing-line-optimizer/internal/common"
)

const (
	// RelocateShare is the share of points, by |curvature|, that get moved.
	RelocateShare = 0.25

	referenceSpeed = 50.0 // m/s where the radius factor is 1
	minRadius      = 0.5
	maxRadius      = 2.0
)

// RadiusFactor grows as the car gets slower: slow points are moved less
// towards the inside.
func RadiusFactor(v float64) float64 {
	if v <= 0 {
		return maxRadius
	}
	return lo.Clamp(referenceSpeed/v, minRadius, maxRadius)
}

// MinCurvatureOffsets relocates the most curved points of the current path
// towards the inside of their turn, projects them onto the centerline normals
// and smooths the result with a 3-point moving average.
func MinCurvatureOffsets(c Context) Offsets {
	path := c.Current.Positions()
	n := len(path)
	kappa := c.Current.Curvatures()
	threshold := curvatureQuantile(kappa, 1-RelocateShare)

	moved := append([]common.Vec2(nil), path...)
	for i := 1; i < n-1; i++ {
		if math.Abs(kappa[i]) <= threshold {
			continue
		}
		moved[i] = relocate(path[i-1], path[i], path[i+1], c.maxOffset(), c.speed(i))
	}

	offsets := Project(c.Center, moved).Clamp(c.Width)
	smoothed := append(Offsets(nil), offsets...)
	for i := 1; i < n-1; i++ {
		smoothed[i] = (offsets[i-1] + offsets[i] + offsets[i+1]) / 3
	}
	if closedMesh(c.Center) && n > 1 {
		smoothed[n-1] = smoothed[0]
	}
	return smoothed
}

// relocate moves curr along the bisector of the directions to its
// neighbours, never past the midpoint of the prev-next chord.
func relocate(prev, curr, next common.Vec2, maxOffset, speed float64) common.Vec2 {
	toPrev := prev.Sub(curr)
	toNext := next.Sub(curr)
	if toPrev.Len() < 1e-6 || toNext.Len() < 1e-6 {
		return curr
	}
	bisector := toPrev.Normalize().Add(toNext.Normalize())
	if bisector.Len() < 1e-9 {
		return curr
	}
	bisector = bisector.Normalize()

	in := curr.Sub(prev).Normalize()
	out := next.Sub(curr).Normalize()
	turn := math.Acos(lo.Clamp(in.Dot(out), -1, 1))

	dist := maxOffset * (turn / math.Pi) / RadiusFactor(speed)
	dist = math.Min(dist, prev.Lerp(next, 0.5).Dist(curr))
	return curr.Add(bisector.Scale(dist))
}

func curvatureQuantile(kappa []float64, p float64) float64 {
	if len(kappa) == 0 {
		return 0
	}
	abs := lo.Map(kappa, func(k float64, _ int) float64 { return math.Abs(k) })
	slices.Sort(abs)
	return stat.Quantile(p, stat.LinInterp, abs, nil)
}

// MinCurvature returns the next path of the curvature minimizing strategy.
func MinCurvature(c Context) []common.Vec2 {
	return MinCurvatureOffsets(c).Clamp(c.Width).Path(c.Center)
}
