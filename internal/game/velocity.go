package game

// Motion is one of the eight compass directions or rest.
type Motion uint8

const (
	MotionRest Motion = iota
	MotionUp
	MotionDown
	MotionLeft
	MotionRight
	MotionUpLeft
	MotionUpRight
	MotionDownLeft
	MotionDownRight
)

func (m Motion) String() string {
	switch m {
	case MotionRest:
		return "rest"
	case MotionUp:
		return "up"
	case MotionDown:
		return "down"
	case MotionLeft:
		return "left"
	case MotionRight:
		return "right"
	case MotionUpLeft:
		return "up_left"
	case MotionUpRight:
		return "up_right"
	case MotionDownLeft:
		return "down_left"
	case MotionDownRight:
		return "down_right"
	default:
		return "unknown"
	}
}

// ParseMotion maps a motion name back to a Motion. Unknown names are rest.
func ParseMotion(s string) Motion {
	for m := MotionRest; m <= MotionDownRight; m++ {
		if m.String() == s {
			return m
		}
	}
	return MotionRest
}

// motionTable is indexed by up<<3 | down<<2 | left<<1 | right.
// Opposing keys on one axis cancel that axis.
var motionTable = [16]Motion{
	0b0000: MotionRest,
	0b0001: MotionRight,
	0b0010: MotionLeft,
	0b0011: MotionRest,
	0b0100: MotionDown,
	0b0101: MotionDownRight,
	0b0110: MotionDownLeft,
	0b0111: MotionDown,
	0b1000: MotionUp,
	0b1001: MotionUpRight,
	0b1010: MotionUpLeft,
	0b1011: MotionUp,
	0b1100: MotionRest,
	0b1101: MotionRight,
	0b1110: MotionLeft,
	0b1111: MotionRest,
}

// DecodeMotion maps the raw direction keys to a motion.
func DecodeMotion(in Input) Motion {
	return motionTable[in.index()]
}

// Direction returns the unit step of the motion on each axis.
func (m Motion) Direction() (dx, dy int) {
	switch m {
	case MotionUp:
		return 0, 1
	case MotionDown:
		return 0, -1
	case MotionLeft:
		return -1, 0
	case MotionRight:
		return 1, 0
	case MotionUpLeft:
		return -1, 1
	case MotionUpRight:
		return 1, 1
	case MotionDownLeft:
		return -1, -1
	case MotionDownRight:
		return 1, -1
	default:
		return 0, 0
	}
}

// IsDiagonal reports whether the motion moves on both axes.
func (m Motion) IsDiagonal() bool {
	dx, dy := m.Direction()
	return dx != 0 && dy != 0
}

// SpeedTier holds the per-tick axis speed and the per-axis diagonal speed.
type SpeedTier struct {
	Full float64
	Half float64
}

var (
	FullSpeed    = SpeedTier{Full: 10, Half: 7}
	ReducedSpeed = SpeedTier{Full: 7, Half: 5}
)

// SpeedFor selects the tier for the viewport width.
func SpeedFor(vp Viewport) SpeedTier {
	if vp.IsFullTier() {
		return FullSpeed
	}
	return ReducedSpeed
}

// ResolveVelocity turns a motion into a velocity for the actor at pos.
// Diagonals use the half speed on both axes without normalising.
// A component pointing at an edge the actor has reached is zeroed.
func ResolveVelocity(m Motion, pos Vec2, edges Edges, tier SpeedTier) Vec2 {
	if m == MotionRest {
		return Vec2{}
	}

	dx, dy := m.Direction()
	speed := tier.Full
	if m.IsDiagonal() {
		speed = tier.Half
	}

	vel := Vec2{X: float64(dx) * speed, Y: float64(dy) * speed}

	if dx < 0 && pos.X <= edges.Left {
		vel.X = 0
	}
	if dx > 0 && pos.X >= edges.Right {
		vel.X = 0
	}
	if dy > 0 && pos.Y >= edges.Top {
		vel.Y = 0
	}
	if dy < 0 && pos.Y <= edges.Bottom {
		vel.Y = 0
	}

	return vel
}
