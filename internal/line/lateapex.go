package line

import (
	"math"

	"racing-line-optimizer/internal/common"
)

const (
	// CornerCurvature separates corners from straights for path shaping.
	CornerCurvature = 0.003

	phaseWindow    = 10 // points looked at on each side to find the corner phase
	phaseTolerance = 1e-9 // relative margin a window mean must stay below |κ(i)|
	setupLookAhead = 15 // points a straight looks ahead for the next corner
	edgeSkip       = 5  // points at either end of the path that keep offset 0

	apexFactor  = 0.9
	entryFactor = -0.7
	exitFactor  = -0.6
	setupFactor = 0.7

	brakingZoneShare = 0.1 // share of the braking distance used to set up
)

// Phase is the position of a point inside a corner.
type Phase int

const (
	PhaseStraight Phase = iota
	PhaseEntry
	PhaseApex
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEntry:
		return "entry"
	case PhaseApex:
		return "apex"
	case PhaseExit:
		return "exit"
	default:
		return "straight"
	}
}

// SpeedFactor scales corner offsets down for fast corners.
func SpeedFactor(v float64) float64 {
	switch {
	case v < 30:
		return 1.0
	case v < 50:
		return 0.8
	default:
		return 0.6
	}
}

// CornerPhase classifies index i by comparing |curvature| at i with the mean
// over the points behind and ahead of it.
func CornerPhase(kappa []float64, i int) Phase {
	current := math.Abs(kappa[i])
	if current <= CornerCurvature {
		return PhaseStraight
	}
	behind, okBehind := meanAbs(kappa, i-phaseWindow, i)
	ahead, okAhead := meanAbs(kappa, i, i+phaseWindow)
	risingBehind := okBehind && below(behind, current)
	switch {
	case risingBehind && okAhead && below(ahead, current):
		return PhaseApex
	case risingBehind:
		return PhaseEntry
	default:
		return PhaseExit
	}
}

// below reports whether mean is clearly under current. Averaging a run of
// equal curvatures may land an ulp short of the value itself.
func below(mean, current float64) bool {
	return mean < current*(1-phaseTolerance)
}

// meanAbs averages |kappa| over [from, to) clipped to the slice. The ahead
// window ends one short of the last point.
func meanAbs(kappa []float64, from, to int) (float64, bool) {
	from = max(from, 0)
	to = min(to, len(kappa)-1)
	if to <= from {
		return 0, false
	}
	sum := 0.0
	for _, k := range kappa[from:to] {
		sum += math.Abs(k)
	}
	return sum / float64(to-from), true
}

// LateApexOffsets computes the late apex offset of every point. Corners move
// by phase and speed, straights ahead of a corner prepare the entry inside
// the braking zone.
func LateApexOffsets(c Context) Offsets {
	wps := c.Current.Waypoints
	n := len(wps)
	kappa := c.Current.Curvatures()
	maxOffset := c.maxOffset()
	out := make(Offsets, n)

	for i := range wps {
		if i < edgeSkip || i > n-edgeSkip {
			continue
		}
		if math.Abs(kappa[i]) > CornerCurvature {
			phase := CornerPhase(kappa, i)
			factor := SpeedFactor(c.speed(i))
			switch phase {
			case PhaseApex:
				factor *= apexFactor
			case PhaseEntry:
				factor *= entryFactor
			default:
				factor *= exitFactor
			}
			out[i] = maxOffset * factor * sign(-kappa[i])
			continue
		}
		out[i] = c.setupOffset(kappa, i)
	}
	return out
}

// setupOffset pre-positions a straight point for the first corner within the
// look-ahead, fading in linearly across the braking zone.
func (c Context) setupOffset(kappa []float64, i int) float64 {
	wps := c.Current.Waypoints
	last := min(i+setupLookAhead, len(wps)-1)
	for j := i + 1; j <= last; j++ {
		if math.Abs(kappa[j]) <= CornerCurvature {
			continue
		}
		v := c.speed(j)
		if c.MaxAcceleration <= 0 {
			return 0
		}
		zone := v * v / (2 * c.MaxAcceleration) * brakingZoneShare
		d := wps[j].Distance - wps[i].Distance
		if zone <= 0 || d > zone {
			return 0
		}
		return c.maxOffset() * setupFactor * sign(kappa[j]) * (1 - d/zone)
	}
	return 0
}

// LateApex returns the next path: centerline points shifted by the late apex
// offsets, bounded by the track edges.
func LateApex(c Context) []common.Vec2 {
	return LateApexOffsets(c).Clamp(c.Width).Path(c.Center)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
