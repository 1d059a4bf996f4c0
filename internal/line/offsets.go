// Package line moves a driving path laterally across the track to lower lap
// time. Paths are handled as signed offsets along the centerline normals so
// the track edges reduce to a bound on each offset.
package line

import (
	"math"

	"github.com/samber/lo"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/track"
)

// MaxOffsetShare is the share of the track width the heuristics aim to use
// on either side of the centerline.
const MaxOffsetShare = 0.4

// Offsets are lateral displacements along the centerline normals, one per
// centerline point. Positive is left of the driving direction.
type Offsets []float64

// Project expresses path in centerline offsets: for each index the offset is
// the component of path[i]-center[i] along the center normal at i.
func Project(center *track.Mesh, path []common.Vec2) Offsets {
	out := make(Offsets, len(center.Waypoints))
	for i, wp := range center.Waypoints {
		if i >= len(path) {
			break
		}
		out[i] = path[i].Sub(wp.Position).Dot(wp.Normal)
	}
	return out
}

// Clamp bounds every offset to half the track width.
func (o Offsets) Clamp(width float64) Offsets {
	half := width / 2
	out := make(Offsets, len(o))
	for i, v := range o {
		out[i] = lo.Clamp(v, -half, half)
	}
	return out
}

// Path converts offsets back to world coordinates. On a closed centerline
// the last point repeats the first.
func (o Offsets) Path(center *track.Mesh) []common.Vec2 {
	wps := center.Waypoints
	path := make([]common.Vec2, len(wps))
	for i, wp := range wps {
		n := 0.0
		if i < len(o) {
			n = o[i]
		}
		path[i] = wp.Position.Add(wp.Normal.Scale(n))
	}
	if closedMesh(center) {
		path[len(path)-1] = path[0]
	}
	return path
}

// Max returns the largest absolute offset.
func (o Offsets) Max() float64 {
	return lo.Max(lo.Map(o, func(v float64, _ int) float64 {
		return math.Abs(v)
	}))
}

func closedMesh(m *track.Mesh) bool {
	n := len(m.Waypoints)
	return n > 1 && m.Waypoints[0].Position.Dist(m.Waypoints[n-1].Position) < track.ClosureTolerance
}

// Context is what both path strategies read.
type Context struct {
	Center          *track.Mesh // fixed reference, defines the track edges
	Current         *track.Mesh // path of the iteration being refined
	Speeds          []float64   // speed profile of Current
	Width           float64     // full track width (m)
	MaxAcceleration float64     // used for braking distances (m/s^2)
}

func (c Context) maxOffset() float64 {
	return c.Width * MaxOffsetShare
}

func (c Context) speed(i int) float64 {
	if i < len(c.Speeds) {
		return c.Speeds[i]
	}
	return 0
}
