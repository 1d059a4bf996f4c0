package physics

import "math"

// Handling summarizes the steady state cornering balance of a car from its
// chassis data (linear single track model).
type Handling struct {
	Wheelbase          float64 `json:"wheelbase"`           // m
	UndersteerGradient float64 `json:"understeer_gradient"` // rad per m/s^2, >0 understeer
	// CharacteristicSpeed is where an understeering car needs twice the
	// kinematic steering angle. Zero for neutral or oversteering cars.
	CharacteristicSpeed float64 `json:"characteristic_speed"`
	// MinTurnRadius is the kinematic radius at full steering lock.
	MinTurnRadius float64 `json:"min_turn_radius"`
}

// Handling derives the handling summary of c.
func (c Car) Handling() Handling {
	l := c.FrontAxleDistance + c.RearAxleDistance
	h := Handling{Wheelbase: l}
	if l <= 0 || c.FrontCorneringStiffness <= 0 || c.RearCorneringStiffness <= 0 {
		return h
	}
	h.UndersteerGradient = c.Mass / l *
		(c.RearAxleDistance/c.FrontCorneringStiffness - c.FrontAxleDistance/c.RearCorneringStiffness)
	if h.UndersteerGradient > 0 {
		h.CharacteristicSpeed = math.Sqrt(l / h.UndersteerGradient)
	}
	if steer := c.MaxSteeringAngle * math.Pi / 180; steer > 0 && steer < math.Pi/2 {
		h.MinTurnRadius = l / math.Tan(steer)
	}
	return h
}
