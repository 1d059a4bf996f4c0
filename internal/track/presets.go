package track

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"racing-line-optimizer/internal/common"
)

var ErrUnknownPreset = errors.New("unknown track preset")

// Circle returns a closed counter-clockwise loop of n distinct points plus the
// closing duplicate, or nil when n < 3.
func Circle(radius float64, n int) []common.Vec2 {
	if n < 3 {
		return nil
	}
	pts := make([]common.Vec2, 0, n+1)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, common.Vec2{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	return append(pts, pts[0])
}

// Oval returns a closed stadium shape: two straights of length straight
// joined by half circles of the given radius, sampled evenly by arc length.
func Oval(straight, radius float64, n int) []common.Vec2 {
	if n < 3 {
		return nil
	}
	perimeter := 2*straight + 2*math.Pi*radius
	half := straight / 2
	arc := math.Pi * radius

	at := func(u float64) common.Vec2 {
		switch {
		case u < straight:
			return common.Vec2{X: -half + u, Y: -radius}
		case u < straight+arc:
			a := -math.Pi/2 + (u-straight)/radius
			return common.Vec2{X: half + radius*math.Cos(a), Y: radius * math.Sin(a)}
		case u < 2*straight+arc:
			return common.Vec2{X: half - (u - straight - arc), Y: radius}
		default:
			a := math.Pi/2 + (u-2*straight-arc)/radius
			return common.Vec2{X: -half + radius*math.Cos(a), Y: radius * math.Sin(a)}
		}
	}

	pts := make([]common.Vec2, 0, n+1)
	for i := range n {
		pts = append(pts, at(perimeter*float64(i)/float64(n)))
	}
	return append(pts, pts[0])
}

// Kidney returns a closed loop with one concave section, giving both left
// and right hand corners.
func Kidney(radius float64, n int) []common.Vec2 {
	if n < 3 {
		return nil
	}
	pts := make([]common.Vec2, 0, n+1)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		r := radius * (1 + 0.3*math.Cos(2*a) + 0.1*math.Sin(a))
		pts = append(pts, common.Vec2{X: r * math.Cos(a), Y: 0.7 * r * math.Sin(a)})
	}
	return append(pts, pts[0])
}

// Straight returns an open path along +x with n points spaced by spacing.
func Straight(n int, spacing float64) []common.Vec2 {
	pts := make([]common.Vec2, n)
	for i := range pts {
		pts[i] = common.Vec2{X: float64(i) * spacing}
	}
	return pts
}

var presets = map[string]func() []common.Vec2{
	"circle":   func() []common.Vec2 { return Circle(50, 100) },
	"oval":     func() []common.Vec2 { return Oval(200, 60, 160) },
	"kidney":   func() []common.Vec2 { return Kidney(120, 160) },
	"straight": func() []common.Vec2 { return Straight(100, 1) },
}

// PresetNames lists the built in tracks in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the centerline of a built in track.
func Preset(name string) ([]common.Vec2, error) {
	gen, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return gen(), nil
}
