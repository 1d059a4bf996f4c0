package track

import (
	"math"
	"sort"

	"racing-line-optimizer/internal/common"
)

// DefaultSmoothing is the Gaussian sigma (in samples) applied to curvature.
const DefaultSmoothing = 1.0

// segments shorter than this are treated as duplicate points
const minSegment = 1e-9

// Waypoint represents one sample of a path in curvilinear coordinates.
type Waypoint struct {
	ID        int
	Position  common.Vec2 // World coordinates (x, y)
	Tangent   common.Vec2 // Unit vector along the driving direction
	Normal    common.Vec2 // Unit vector pointing Left of the driving direction
	Distance  float64     // Arc length from start (s-coordinate)
	Heading   float64     // atan2 of the tangent, radians
	Curvature float64     // Signed, positive for left turns (1/m)
}

// Mesh is the curvilinear coordinate system built over a path.
// It has exactly one waypoint per path point.
type Mesh struct {
	Waypoints []Waypoint
	TotalLen  float64
}

type meshConfig struct {
	sigma float64
}

// MeshOption configures BuildMesh.
type MeshOption func(*meshConfig)

// WithSmoothing sets the Gaussian sigma used on curvature. Zero disables it.
func WithSmoothing(sigma float64) MeshOption {
	return func(c *meshConfig) {
		c.sigma = sigma
	}
}

// BuildMesh derives arc length, heading, curvature and the tangent/normal
// frame for every point of path. Duplicate points never cause a division by
// zero and the resulting curvature is always finite.
func BuildMesh(path []common.Vec2, opts ...MeshOption) *Mesh {
	cfg := meshConfig{sigma: DefaultSmoothing}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(path)
	if n == 0 {
		return &Mesh{}
	}

	tangents := forwardTangents(path)
	waypoints := make([]Waypoint, n)
	s := 0.0
	for i := range path {
		if i > 0 {
			s += path[i].Dist(path[i-1])
		}
		t := tangents[i]
		waypoints[i] = Waypoint{
			ID:       i,
			Position: path[i],
			Tangent:  t,
			Normal:   t.Perp(),
			Distance: s,
			Heading:  math.Atan2(t.Y, t.X),
		}
	}

	kappa := curvature(waypoints)
	if cfg.sigma > 0 {
		kappa = gaussianSmooth(kappa, cfg.sigma)
	}
	for i := range waypoints {
		k := kappa[i]
		if math.IsNaN(k) || math.IsInf(k, 0) {
			k = 0
		}
		waypoints[i].Curvature = k
	}

	return &Mesh{Waypoints: waypoints, TotalLen: s}
}

// forwardTangents returns p[i+1]-p[i] normalized, the last point reusing the
// previous direction. Zero-length segments borrow the nearest valid direction.
func forwardTangents(path []common.Vec2) []common.Vec2 {
	n := len(path)
	tangents := make([]common.Vec2, n)
	valid := make([]bool, n)
	for i := 0; i < n-1; i++ {
		d := path[i+1].Sub(path[i])
		if d.Len() > minSegment {
			tangents[i] = d.Normalize()
			valid[i] = true
		}
	}
	if n > 1 {
		tangents[n-1] = tangents[n-2]
		valid[n-1] = valid[n-2]
	}

	first := -1
	for i := range tangents {
		if valid[i] {
			first = i
			break
		}
	}
	if first < 0 {
		for i := range tangents {
			tangents[i] = common.Vec2{X: 1}
		}
		return tangents
	}
	for i := 0; i < first; i++ {
		tangents[i] = tangents[first]
	}
	for i := first + 1; i < n; i++ {
		if !valid[i] {
			tangents[i] = tangents[i-1]
		}
	}
	return tangents
}

// curvature is the inverse-distance weighted mean of the forward and backward
// heading rates. Sides with a zero-length segment are left out.
func curvature(wps []Waypoint) []float64 {
	n := len(wps)
	kappa := make([]float64, n)
	if n < 3 {
		return kappa
	}
	for i := 1; i < n-1; i++ {
		dsf := wps[i+1].Distance - wps[i].Distance
		dsb := wps[i].Distance - wps[i-1].Distance

		var sum, weight float64
		if dsf > minSegment {
			wf := 1 / dsf
			sum += wf * wrapAngle(wps[i+1].Heading-wps[i].Heading) / dsf
			weight += wf
		}
		if dsb > minSegment {
			wb := 1 / dsb
			sum += wb * wrapAngle(wps[i].Heading-wps[i-1].Heading) / dsb
			weight += wb
		}
		if weight > 0 {
			kappa[i] = sum / weight
		}
	}
	kappa[0] = kappa[1]
	kappa[n-1] = kappa[n-2]
	return kappa
}

// wrapAngle maps a to (-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// gaussianSmooth convolves values with a normalized Gaussian kernel of
// radius round(4*sigma), mirroring samples at the boundaries.
func gaussianSmooth(values []float64, sigma float64) []float64 {
	n := len(values)
	radius := int(4*sigma + 0.5)
	if n == 0 || radius == 0 {
		return append([]float64(nil), values...)
	}

	kernel := make([]float64, 2*radius+1)
	total := 0.0
	for j := -radius; j <= radius; j++ {
		w := math.Exp(-0.5 * float64(j*j) / (sigma * sigma))
		kernel[j+radius] = w
		total += w
	}

	out := make([]float64, n)
	for i := range values {
		acc := 0.0
		for j := -radius; j <= radius; j++ {
			acc += kernel[j+radius] * values[reflect(i+j, n)]
		}
		out[i] = acc / total
	}
	return out
}

// reflect folds idx into [0, n) as d c b a | a b c d | d c b a.
func reflect(idx, n int) int {
	for idx < 0 || idx >= n {
		if idx < 0 {
			idx = -idx - 1
		}
		if idx >= n {
			idx = 2*n - idx - 1
		}
	}
	return idx
}

// Positions returns the path the mesh was built from.
func (m *Mesh) Positions() []common.Vec2 {
	out := make([]common.Vec2, len(m.Waypoints))
	for i, wp := range m.Waypoints {
		out[i] = wp.Position
	}
	return out
}

// Curvatures returns the curvature field.
func (m *Mesh) Curvatures() []float64 {
	out := make([]float64, len(m.Waypoints))
	for i, wp := range m.Waypoints {
		out[i] = wp.Curvature
	}
	return out
}

// SegmentLength returns the distance from waypoint i to waypoint i+1,
// or 0 for the last waypoint.
func (m *Mesh) SegmentLength(i int) float64 {
	if i < 0 || i >= len(m.Waypoints)-1 {
		return 0
	}
	return m.Waypoints[i+1].Distance - m.Waypoints[i].Distance
}

// GetClosestWaypoint finds the waypoint closest to the given world position.
// Returns the waypoint and its index, or -1 for an empty mesh.
// Linear search is fine for the few hundred points a track carries.
func (m *Mesh) GetClosestWaypoint(pos common.Vec2) (Waypoint, int) {
	minDistSq := math.MaxFloat64
	closestIdx := -1

	for i, wp := range m.Waypoints {
		d := pos.Sub(wp.Position)
		distSq := d.Dot(d)
		if distSq < minDistSq {
			minDistSq = distSq
			closestIdx = i
		}
	}

	if closestIdx == -1 {
		return Waypoint{}, -1
	}
	return m.Waypoints[closestIdx], closestIdx
}

// WorldToFrenet converts World (x,y) to Frenet (s,n).
// s: Progress along the path
// n: Lateral offset (positive = left of center, negative = right)
func (m *Mesh) WorldToFrenet(pos common.Vec2) (float64, float64) {
	wp, idx := m.GetClosestWaypoint(pos)
	if idx < 0 {
		return 0, 0
	}

	d := pos.Sub(wp.Position)
	n := d.Dot(wp.Normal)
	s := wp.Distance + d.Dot(wp.Tangent)
	s = math.Max(0, math.Min(s, m.TotalLen))

	return s, n
}

// FrenetToWorld converts Frenet (s,n) back to World (x,y). Position and
// normal are interpolated linearly between the bracketing waypoints; s is
// clamped to the mesh.
func (m *Mesh) FrenetToWorld(s, n float64) common.Vec2 {
	wps := m.Waypoints
	switch len(wps) {
	case 0:
		return common.Vec2{}
	case 1:
		return wps[0].Position.Add(wps[0].Normal.Scale(n))
	}

	s = math.Max(0, math.Min(s, m.TotalLen))
	// first waypoint strictly past s
	hi := sort.Search(len(wps), func(i int) bool { return wps[i].Distance > s })
	if hi == 0 {
		hi = 1
	}
	if hi >= len(wps) {
		hi = len(wps) - 1
	}
	lo := hi - 1

	t := 0.0
	if span := wps[hi].Distance - wps[lo].Distance; span > minSegment {
		t = (s - wps[lo].Distance) / span
	}
	center := wps[lo].Position.Lerp(wps[hi].Position, t)
	normal := wps[lo].Normal.Lerp(wps[hi].Normal, t).Normalize()
	if normal == (common.Vec2{}) {
		normal = wps[lo].Normal
	}
	return center.Add(normal.Scale(n))
}
