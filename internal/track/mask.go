package track

import (
	"image"
	"image/color"
	"math"

	"racing-line-optimizer/internal/common"
)

var (
	maskWall   = color.RGBA{0, 0, 0, 255}
	maskTarmac = color.RGBA{255, 255, 255, 255}
	maskStart  = color.RGBA{255, 0, 0, 255}
)

// RenderMask rasterizes a centerline of the given width (meters) into an
// image that GridFromImage reads back: black walls, white tarmac and a red
// start patch around the first point. pxPerMeter sets the resolution and a
// margin of one track width is kept around the track.
func RenderMask(points []common.Vec2, width, pxPerMeter float64) *image.RGBA {
	low, high := Bounds(points)
	margin := width
	w := int(math.Ceil((high.X - low.X + 2*margin) * pxPerMeter))
	h := int(math.Ceil((high.Y - low.Y + 2*margin) * pxPerMeter))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))

	half := width / 2
	startRadius := math.Min(half, 2)
	for py := 0; py < img.Bounds().Dy(); py++ {
		for px := 0; px < img.Bounds().Dx(); px++ {
			p := common.Vec2{
				X: low.X - margin + (float64(px)+0.5)/pxPerMeter,
				Y: low.Y - margin + (float64(py)+0.5)/pxPerMeter,
			}
			switch {
			case distanceToPolyline(points, p) > half:
				img.SetRGBA(px, py, maskWall)
			case len(points) > 0 && p.Dist(points[0]) <= startRadius:
				img.SetRGBA(px, py, maskStart)
			default:
				img.SetRGBA(px, py, maskTarmac)
			}
		}
	}
	return img
}

func distanceToPolyline(points []common.Vec2, p common.Vec2) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(points); i++ {
		best = math.Min(best, distanceToSegment(points[i], points[i+1], p))
	}
	return best
}

func distanceToSegment(a, b, p common.Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Dist(a.Add(ab.Scale(t)))
}
