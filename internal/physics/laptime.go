package physics

import (
	"math"

	"racing-line-optimizer/internal/common"
)

// LapTime sums segment length over speed along path. Each segment i->i+1 is
// driven at speeds[i]; speeds below MinSpeed (or not finite) are replaced by
// MinSpeed. A path with a non-finite point is undrivable and takes +Inf.
func LapTime(path []common.Vec2, speeds []float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(path) && i < len(speeds); i++ {
		d := path[i].Dist(path[i+1])
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return math.Inf(1)
		}
		if d <= 0 {
			continue
		}
		v := speeds[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < MinSpeed {
			v = MinSpeed
		}
		total += d / v
	}
	return total
}
