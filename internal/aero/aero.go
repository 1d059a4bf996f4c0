// Package aero holds the speed dependent aerodynamic map used by the
// speed-profile solvers.
package aero

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/interp"
)

const (
	AirDensity        = 1.225 // kg/m^3 at standard conditions
	ReferenceDragCoef = 1.0
	ReferenceLiftCoef = 3.0

	dragLimitRounds    = 10
	dragLimitTolerance = 0.1 // m/s
)

// ControlPoint is one row of the aerodynamic map.
type ControlPoint struct {
	Speed            float64 // m/s
	Drag             float64
	Lift             float64
	CenterOfPressure float64 // meters from front axle
}

// DefaultTable is the fixed aerodynamic map.
var DefaultTable = []ControlPoint{
	{Speed: 0, Drag: 1.0, Lift: 0.5, CenterOfPressure: 2.5},
	{Speed: 20, Drag: 1.2, Lift: 1.5, CenterOfPressure: 2.6},
	{Speed: 40, Drag: 1.4, Lift: 2.5, CenterOfPressure: 2.7},
	{Speed: 60, Drag: 1.6, Lift: 3.2, CenterOfPressure: 2.8},
	{Speed: 80, Drag: 1.8, Lift: 3.7, CenterOfPressure: 2.9},
	{Speed: 100, Drag: 2.0, Lift: 4.0, CenterOfPressure: 3.0},
}

// Default is the process wide model built from DefaultTable.
// It is never mutated after package initialization.
var Default = MustNewModel(DefaultTable)

// Coefficients is the result of a map lookup.
type Coefficients struct {
	Drag             float64
	Lift             float64
	CenterOfPressure float64
}

// Model interpolates the aerodynamic map with a monotone cubic
// (Fritsch-Butland) so values between control points never leave the
// range spanned by their neighbours.
// A Model is safe for concurrent use.
type Model struct {
	table []ControlPoint
	drag  interp.FritschButland
	lift  interp.FritschButland
	cop   interp.FritschButland
	minV  float64
	maxV  float64
}

// NewModel fits the interpolators for the given table. Speeds must be
// strictly increasing.
func NewModel(table []ControlPoint) (*Model, error) {
	xs := make([]float64, len(table))
	cd := make([]float64, len(table))
	cl := make([]float64, len(table))
	cp := make([]float64, len(table))
	for i, p := range table {
		xs[i] = p.Speed
		cd[i] = p.Drag
		cl[i] = p.Lift
		cp[i] = p.CenterOfPressure
	}

	m := &Model{table: append([]ControlPoint(nil), table...)}
	if err := m.drag.Fit(xs, cd); err != nil {
		return nil, err
	}
	if err := m.lift.Fit(xs, cl); err != nil {
		return nil, err
	}
	if err := m.cop.Fit(xs, cp); err != nil {
		return nil, err
	}
	m.minV = xs[0]
	m.maxV = xs[len(xs)-1]
	return m, nil
}

// MustNewModel is like NewModel but panics on an invalid table.
func MustNewModel(table []ControlPoint) *Model {
	m, err := NewModel(table)
	if err != nil {
		panic(err)
	}
	return m
}

// Coefficients returns drag, lift and center of pressure at speed v.
// Speeds outside the table are clamped to the nearest control point.
func (m *Model) Coefficients(v float64) Coefficients {
	v = lo.Clamp(v, m.minV, m.maxV)
	for _, p := range m.table {
		if p.Speed == v {
			return Coefficients{Drag: p.Drag, Lift: p.Lift, CenterOfPressure: p.CenterOfPressure}
		}
	}
	return Coefficients{
		Drag:             m.drag.Predict(v),
		Lift:             m.lift.Predict(v),
		CenterOfPressure: m.cop.Predict(v),
	}
}

// Forces returns drag and downforce in Newton for a car travelling at v.
// carDragCoef and carLiftCoef scale the map relative to the reference car.
func (m *Model) Forces(v, frontalArea, carDragCoef, carLiftCoef float64) (drag, downforce float64) {
	c := m.Coefficients(v)
	q := 0.5 * AirDensity * frontalArea * v * v
	drag = q * c.Drag * (carDragCoef / ReferenceDragCoef)
	downforce = q * c.Lift * (carLiftCoef / ReferenceLiftCoef)
	return drag, downforce
}

// DragLimitedSpeed solves driveForce = drag(v) starting from guess.
// The drag coefficient is re-evaluated at each new estimate. Returns +Inf
// when the car has no effective drag.
func (m *Model) DragLimitedSpeed(driveForce, frontalArea, carDragCoef, guess float64) float64 {
	v := guess
	for range dragLimitRounds {
		cd := m.Coefficients(v).Drag * (carDragCoef / ReferenceDragCoef)
		denom := AirDensity * cd * frontalArea
		if denom <= 0 {
			return math.Inf(1)
		}
		next := math.Sqrt(2 * math.Max(driveForce, 0) / denom)
		if math.Abs(next-v) < dragLimitTolerance {
			return next
		}
		v = next
	}
	return v
}
