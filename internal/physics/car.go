package physics

import "gopkg.in/yaml.v3"

const (
	Gravity  = 9.81  // m/s^2
	MinSpeed = 5.0   // m/s, lower bound of every speed profile
	MaxSpeed = 100.0 // m/s, upper bound and straight-line ceiling

	// DefaultFrontalArea is used when neither an area nor car dimensions are given.
	DefaultFrontalArea = 4.9 // m^2
	frontalAreaFactor  = 0.7 // share of length*width facing the flow
)

// Car holds the vehicle parameters of one optimization run. It is never
// modified by the solvers.
type Car struct {
	ID               string  `yaml:"id" json:"id"`
	Mass             float64 `yaml:"mass" json:"mass"`                             // kg
	Length           float64 `yaml:"length" json:"length"`                         // m
	Width            float64 `yaml:"width" json:"width"`                           // m
	MaxSteeringAngle float64 `yaml:"max_steering_angle" json:"max_steering_angle"` // degrees
	MaxAcceleration  float64 `yaml:"max_acceleration" json:"max_acceleration"`     // m/s^2
	DragCoefficient  float64 `yaml:"drag_coefficient" json:"drag_coefficient"`
	LiftCoefficient  float64 `yaml:"lift_coefficient" json:"lift_coefficient"`
	FrontalArea      float64 `yaml:"frontal_area" json:"frontal_area"` // m^2, 0 derives it from Length and Width

	// Chassis data. Only the forward/backward strategy and the handling
	// summary read these.
	YawInertia              float64 `yaml:"yaw_inertia" json:"yaw_inertia"`                             // kg m^2
	FrontAxleDistance       float64 `yaml:"front_axle_distance" json:"front_axle_distance"`             // CG to front axle, m
	RearAxleDistance        float64 `yaml:"rear_axle_distance" json:"rear_axle_distance"`               // CG to rear axle, m
	FrontCorneringStiffness float64 `yaml:"front_cornering_stiffness" json:"front_cornering_stiffness"` // N/rad
	RearCorneringStiffness  float64 `yaml:"rear_cornering_stiffness" json:"rear_cornering_stiffness"`   // N/rad
	MaxEngineForce          float64 `yaml:"max_engine_force" json:"max_engine_force"`                   // N, 0 means not limited
}

// DefaultCar is a generic downforce car.
func DefaultCar() Car {
	return Car{
		ID:                      "default",
		Mass:                    1500,
		Length:                  5.0,
		Width:                   1.4,
		MaxSteeringAngle:        30,
		MaxAcceleration:         5,
		DragCoefficient:         1.0,
		LiftCoefficient:         3.0,
		YawInertia:              2250,
		FrontAxleDistance:       1.04,
		RearAxleDistance:        1.42,
		FrontCorneringStiffness: 160000,
		RearCorneringStiffness:  180000,
	}
}

// WithDefaults returns a copy where every non-positive field is replaced by
// the DefaultCar value. Zero drag/lift coefficients and engine force are
// kept since they are meaningful.
func (c Car) WithDefaults() Car {
	def := DefaultCar()
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	if c.ID == "" {
		c.ID = def.ID
	}
	fill(&c.Mass, def.Mass)
	fill(&c.MaxSteeringAngle, def.MaxSteeringAngle)
	fill(&c.MaxAcceleration, def.MaxAcceleration)
	fill(&c.YawInertia, def.YawInertia)
	fill(&c.FrontAxleDistance, def.FrontAxleDistance)
	fill(&c.RearAxleDistance, def.RearAxleDistance)
	fill(&c.FrontCorneringStiffness, def.FrontCorneringStiffness)
	fill(&c.RearCorneringStiffness, def.RearCorneringStiffness)
	if c.DragCoefficient < 0 {
		c.DragCoefficient = def.DragCoefficient
	}
	if c.LiftCoefficient < 0 {
		c.LiftCoefficient = def.LiftCoefficient
	}
	if c.MaxEngineForce < 0 {
		c.MaxEngineForce = 0
	}
	return c
}

// EffectiveFrontalArea is FrontalArea, or 70% of the length*width rectangle
// when no area was given.
func (c Car) EffectiveFrontalArea() float64 {
	if c.FrontalArea > 0 {
		return c.FrontalArea
	}
	if c.Length > 0 && c.Width > 0 {
		return c.Length * c.Width * frontalAreaFactor
	}
	return DefaultFrontalArea
}

// DriveAcceleration is the longitudinal acceleration available on throttle.
func (c Car) DriveAcceleration() float64 {
	if c.MaxEngineForce > 0 && c.Mass > 0 {
		return min(c.MaxAcceleration, c.MaxEngineForce/c.Mass)
	}
	return c.MaxAcceleration
}

// UnmarshalYAML starts from DefaultCar so omitted keys keep their default
// while explicit zeros (e.g. a car without aero) are preserved.
func (c *Car) UnmarshalYAML(node *yaml.Node) error {
	type plain Car
	p := plain(DefaultCar())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Car(p)
	return nil
}
