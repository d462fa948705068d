package game

import "math"

// FullWindowWidth is the reference viewport width for the full speed and size tier.
const FullWindowWidth = 1200.0

// MaxViewportSide bounds either viewport dimension.
const MaxViewportSide = 8192.0

// Actor sizes per viewport tier.
var (
	FullActorSize    = Vec2{X: 100, Y: 100}
	ReducedActorSize = Vec2{X: 60, Y: 60}
)

// Vec2 is a 2D vector in world units. The world is centre-origin with y pointing up.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Viewport is the visible playfield. It is re-read every tick so resizes apply immediately.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// FullWidth overrides FullWindowWidth when positive.
	FullWidth float64 `json:"fullWidth,omitempty"`
}

func (v Viewport) referenceWidth() float64 {
	if v.FullWidth > 0 {
		return v.FullWidth
	}
	return FullWindowWidth
}

// ValidSize reports whether both dimensions are positive, finite and within MaxViewportSide.
func (v Viewport) ValidSize() bool {
	return validSide(v.Width) && validSide(v.Height)
}

func validSide(s float64) bool {
	return s > 0 && s <= MaxViewportSide
}

// Clamped bounds each dimension to MaxViewportSide. A dimension that is not a
// positive number falls back to the matching one in prev.
func (v Viewport) Clamped(prev Viewport) Viewport {
	v.Width = clampSide(v.Width, prev.Width)
	v.Height = clampSide(v.Height, prev.Height)
	if math.IsNaN(v.FullWidth) || v.FullWidth < 0 {
		v.FullWidth = 0
	}
	v.FullWidth = math.Min(v.FullWidth, MaxViewportSide)
	return v
}

func clampSide(s, prev float64) float64 {
	if !(s > 0) {
		s = prev
	}
	return math.Min(s, MaxViewportSide)
}

// IsFullTier reports whether the viewport is at least the reference width (inclusive).
func (v Viewport) IsFullTier() bool {
	return v.Width >= v.referenceWidth()
}

// ActorSize returns the controlled actor's size for this viewport tier.
func (v Viewport) ActorSize() Vec2 {
	if v.IsFullTier() {
		return FullActorSize
	}
	return ReducedActorSize
}

// Edges are the centre-position limits that keep an entity fully inside the viewport.
type Edges struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// ComputeEdges returns the playable boundary for an entity of the given size.
// Non-positive viewport dimensions or an entity larger than the viewport
// collapse that axis to zero, leaving an empty boundary at the origin.
func ComputeEdges(vp Viewport, size Vec2) Edges {
	halfW := math.Max(0, vp.Width/2-size.X/2)
	halfH := math.Max(0, vp.Height/2-size.Y/2)
	return Edges{
		Top:    halfH,
		Bottom: -halfH,
		Left:   -halfW,
		Right:  halfW,
	}
}

// BottomOut is the y coordinate at which an entity sits fully below the viewport.
func BottomOut(vp Viewport, size Vec2) float64 {
	return -math.Max(0, vp.Height)/2 - size.Y/2
}

// TopOut is the y coordinate at which an entity sits fully above the viewport.
func TopOut(vp Viewport, size Vec2) float64 {
	return math.Max(0, vp.Height)/2 + size.Y/2
}

// Overlaps reports whether two centred boxes intersect. Touching edges do not count.
func Overlaps(aPos, aSize, bPos, bSize Vec2) bool {
	return math.Abs(aPos.X-bPos.X)*2 < aSize.X+bSize.X &&
		math.Abs(aPos.Y-bPos.Y)*2 < aSize.Y+bSize.Y
}
