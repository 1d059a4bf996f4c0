package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/cnkei/gospline"

	"racing-line-optimizer/internal/common"
)

// ClosureTolerance is the distance under which first and last point are
// considered the same (meters).
const ClosureTolerance = 1e-3

// MinPoints is the smallest centerline the optimizer accepts.
const MinPoints = 3

var (
	ErrTooFewPoints   = errors.New("centerline needs at least 3 points")
	ErrNonFinitePoint = errors.New("centerline contains a non-finite coordinate")
)

// Validate is the only structural check the engine performs on a centerline.
func Validate(points []common.Vec2) error {
	if len(points) < MinPoints {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: index %d", ErrNonFinitePoint, i)
		}
	}
	return nil
}

// IsClosed reports whether the first and last point coincide.
func IsClosed(points []common.Vec2) bool {
	if len(points) < 2 {
		return false
	}
	return points[0].Dist(points[len(points)-1]) < ClosureTolerance
}

// Close returns points with the first point appended when the loop is open.
func Close(points []common.Vec2) []common.Vec2 {
	out := append([]common.Vec2(nil), points...)
	if len(out) > 1 && !IsClosed(out) {
		out = append(out, out[0])
	}
	return out
}

// Length is the polyline length of points.
func Length(points []common.Vec2) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i].Dist(points[i-1])
	}
	return total
}

// Resample redistributes points evenly along the arc length using a cubic
// spline. A closed loop yields count distinct points plus the closing
// duplicate, keeping the original start; an open path yields count points
// including both ends. Paths already at or below count are returned as is.
func Resample(points []common.Vec2, count int) []common.Vec2 {
	pts := dedupe(points)
	if count < 2 || len(pts) < 3 || len(points) <= count {
		return append([]common.Vec2(nil), points...)
	}

	closed := IsClosed(points)
	if closed && pts[0].Dist(pts[len(pts)-1]) < ClosureTolerance {
		pts = pts[:len(pts)-1]
	}

	// pad a closed loop with wrapped neighbours so the spline has no free
	// ends at the start line
	pad := 0
	if closed {
		pad = min(3, len(pts)-1)
		head := pts[len(pts)-pad:]
		tail := pts[:pad+1]
		pts = append(append(append([]common.Vec2(nil), head...), pts...), tail...)
	}

	s := make([]float64, len(pts))
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if i > 0 {
			s[i] = s[i-1] + p.Dist(pts[i-1])
		}
		xs[i] = p.X
		ys[i] = p.Y
	}
	sx := gospline.NewCubicSpline(s, xs)
	sy := gospline.NewCubicSpline(s, ys)

	start := s[pad]
	end := s[len(s)-1]
	if closed {
		end = s[len(s)-1-pad]
	}
	length := end - start

	out := make([]common.Vec2, 0, count+1)
	if closed {
		for i := range count {
			u := start + length*float64(i)/float64(count)
			out = append(out, common.Vec2{X: sx.At(u), Y: sy.At(u)})
		}
		out = append(out, out[0])
		return out
	}
	for i := range count {
		u := start + length*float64(i)/float64(count-1)
		out = append(out, common.Vec2{X: sx.At(u), Y: sy.At(u)})
	}
	return out
}

// dedupe drops consecutive points closer than the closure tolerance.
func dedupe(points []common.Vec2) []common.Vec2 {
	out := make([]common.Vec2, 0, len(points))
	for i, p := range points {
		if i > 0 && p.Dist(out[len(out)-1]) < ClosureTolerance {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Bounds returns the axis aligned bounding box of points.
func Bounds(points []common.Vec2) (low, high common.Vec2) {
	if len(points) == 0 {
		return common.Vec2{}, common.Vec2{}
	}
	low, high = points[0], points[0]
	for _, p := range points[1:] {
		low.X = math.Min(low.X, p.X)
		low.Y = math.Min(low.Y, p.Y)
		high.X = math.Max(high.X, p.X)
		high.Y = math.Max(high.Y, p.Y)
	}
	return low, high
}
