package physics

import (
	"math"

	"racing-line-optimizer/internal/track"
)

// Passes holds the three speed limits of the forward/backward integration.
// For every index Final <= Forward <= Zero.
type Passes struct {
	Zero    []float64 // steady state ceiling, no longitudinal force
	Forward []float64 // ceiling reachable under acceleration
	Final   []float64 // ceiling that still allows braking for what follows
}

// ForwardBackward propagates acceleration limits forward and braking limits
// backward along the mesh. Each pass only lowers the previous one.
func (s *Solver) ForwardBackward(mesh *track.Mesh) Passes {
	n := len(mesh.Waypoints)
	p := Passes{
		Zero:    make([]float64, n),
		Forward: make([]float64, n),
		Final:   make([]float64, n),
	}
	if n == 0 {
		return p
	}

	for i, wp := range mesh.Waypoints {
		p.Zero[i] = s.CornerSpeed(wp.Curvature)
	}

	drive := s.car.DriveAcceleration()
	p.Forward[0] = p.Zero[0]
	for i := 0; i < n-1; i++ {
		reach := math.Sqrt(p.Forward[i]*p.Forward[i] + 2*drive*mesh.SegmentLength(i))
		p.Forward[i+1] = math.Min(p.Zero[i+1], reach)
	}

	brake := s.car.MaxAcceleration
	p.Final[n-1] = p.Forward[n-1]
	for i := n - 2; i >= 0; i-- {
		reach := math.Sqrt(p.Final[i+1]*p.Final[i+1] + 2*brake*mesh.SegmentLength(i))
		p.Final[i] = math.Min(p.Forward[i], reach)
	}
	return p
}
