package aero

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoefficientsAtControlPoints(t *testing.T) {
	for _, p := range DefaultTable {
		c := Default.Coefficients(p.Speed)
		assert.Equal(t, p.Drag, c.Drag, "drag at %v", p.Speed)
		assert.Equal(t, p.Lift, c.Lift, "lift at %v", p.Speed)
		assert.Equal(t, p.CenterOfPressure, c.CenterOfPressure, "cop at %v", p.Speed)
	}
}

func TestCoefficientsClamped(t *testing.T) {
	first := DefaultTable[0]
	last := DefaultTable[len(DefaultTable)-1]

	assert.Equal(t, Coefficients{first.Drag, first.Lift, first.CenterOfPressure}, Default.Coefficients(-12))
	assert.Equal(t, Coefficients{last.Drag, last.Lift, last.CenterOfPressure}, Default.Coefficients(250))
}

func TestCoefficientsStayWithinNeighbours(t *testing.T) {
	for i := 0; i < len(DefaultTable)-1; i++ {
		a, b := DefaultTable[i], DefaultTable[i+1]
		prev := Default.Coefficients(a.Speed)
		for v := a.Speed; v <= b.Speed; v += 0.5 {
			c := Default.Coefficients(v)
			assert.GreaterOrEqual(t, c.Lift, a.Lift-1e-9)
			assert.LessOrEqual(t, c.Lift, b.Lift+1e-9)
			assert.GreaterOrEqual(t, c.Drag, a.Drag-1e-9)
			assert.LessOrEqual(t, c.Drag, b.Drag+1e-9)
			assert.GreaterOrEqual(t, c.Lift, prev.Lift-1e-9, "lift not monotone at %v", v)
			prev = c
		}
	}
}

func TestForces(t *testing.T) {
	t.Run("reference car", func(t *testing.T) {
		drag, down := Default.Forces(20, 2, ReferenceDragCoef, ReferenceLiftCoef)
		assert.InDelta(t, 0.5*1.225*2*400*1.2, drag, 1e-9)
		assert.InDelta(t, 0.5*1.225*2*400*1.5, down, 1e-9)
	})

	t.Run("car coefficients scale the map", func(t *testing.T) {
		dragRef, downRef := Default.Forces(37, 4.9, 1.0, 3.0)
		drag, down := Default.Forces(37, 4.9, 2.0, 1.5)
		assert.InDelta(t, 2*dragRef, drag, 1e-9)
		assert.InDelta(t, 0.5*downRef, down, 1e-9)
	})

	t.Run("zero coefficients", func(t *testing.T) {
		drag, down := Default.Forces(50, 4.9, 0, 0)
		assert.Zero(t, drag)
		assert.Zero(t, down)
	})
}

func TestDragLimitedSpeed(t *testing.T) {
	const (
		drive = 1500 * 5 * 0.8
		area  = 4.9
	)
	v := Default.DragLimitedSpeed(drive, area, 1.0, 60)
	require.False(t, math.IsInf(v, 0))

	balance := math.Sqrt(2 * drive / (AirDensity * Default.Coefficients(v).Drag * area))
	assert.InDelta(t, balance, v, 0.2)
	assert.InDelta(t, 38.0, v, 1.0)

	assert.True(t, math.IsInf(Default.DragLimitedSpeed(drive, area, 0, 60), 1))
}
