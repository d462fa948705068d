package game

// ControlMode selects how the actor is driven.
type ControlMode uint8

const (
	// ControlKeyboard decodes discrete direction keys and the fire button.
	ControlKeyboard ControlMode = iota
	// ControlHover follows an external analog signal and fires continuously.
	ControlHover
)

func (m ControlMode) String() string {
	switch m {
	case ControlKeyboard:
		return "keyboard"
	case ControlHover:
		return "hover"
	default:
		return "unknown"
	}
}

// ParseControlMode maps a wire name to a mode. Unknown names fall back to keyboard.
func ParseControlMode(s string) ControlMode {
	if s == "hover" {
		return ControlHover
	}
	return ControlKeyboard
}

// Input is the per-tick snapshot of the player's controls.
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Fire  bool `json:"fire"`

	// Analog is the motion requested by the external signal in hover mode.
	Analog Motion `json:"analog,omitempty"`
}

// index packs the four direction flags into a motion table index.
func (in Input) index() int {
	i := 0
	if in.Up {
		i |= 8
	}
	if in.Down {
		i |= 4
	}
	if in.Left {
		i |= 2
	}
	if in.Right {
		i |= 1
	}
	return i
}

// FireAsserted reports whether the fire signal is active under the given mode.
func (in Input) FireAsserted(mode ControlMode) bool {
	return in.Fire || mode == ControlHover
}

// MotionFor returns the requested motion under the given mode.
func (in Input) MotionFor(mode ControlMode) Motion {
	if mode == ControlHover {
		if in.Analog > MotionDownRight {
			return MotionRest
		}
		return in.Analog
	}
	return DecodeMotion(in)
}
