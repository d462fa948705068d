package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMotionCoversAllCombinations(t *testing.T) {
	tests := []struct {
		up, down, left, right bool
		want                  Motion
	}{
		{false, false, false, false, MotionRest},
		{false, false, false, true, MotionRight},
		{false, false, true, false, MotionLeft},
		{false, false, true, true, MotionRest},
		{false, true, false, false, MotionDown},
		{false, true, false, true, MotionDownRight},
		{false, true, true, false, MotionDownLeft},
		{false, true, true, true, MotionDown},
		{true, false, false, false, MotionUp},
		{true, false, false, true, MotionUpRight},
		{true, false, true, false, MotionUpLeft},
		{true, false, true, true, MotionUp},
		{true, true, false, false, MotionRest},
		{true, true, false, true, MotionRight},
		{true, true, true, false, MotionLeft},
		{true, true, true, true, MotionRest},
	}

	seen := make(map[int]bool)
	for _, tt := range tests {
		in := Input{Up: tt.up, Down: tt.down, Left: tt.left, Right: tt.right}
		seen[in.index()] = true

		got := DecodeMotion(in)
		if got != tt.want {
			t.Errorf("Input %+v: expected %s, got %s", in, tt.want, got)
		}
		assert.True(t, got <= MotionDownRight, "motion out of range: %d", got)
	}
	assert.Len(t, seen, 16)
}

func TestOpposingKeysCancel(t *testing.T) {
	vertical := DecodeMotion(Input{Up: true, Down: true})
	horizontal := DecodeMotion(Input{Left: true, Right: true})

	assert.Equal(t, MotionRest, vertical)
	assert.Equal(t, MotionRest, horizontal)

	dx, dy := DecodeMotion(Input{Up: true, Down: true, Left: true}).Direction()
	assert.Equal(t, -1, dx)
	assert.Equal(t, 0, dy)
}

func TestSpeedTierBoundaryIsInclusive(t *testing.T) {
	wide := Viewport{Width: FullWindowWidth, Height: 800}
	narrow := Viewport{Width: FullWindowWidth - 0.01, Height: 800}
	edges := Edges{Top: 1000, Bottom: -1000, Left: -1000, Right: 1000}

	assert.Equal(t, Vec2{Y: 10}, ResolveVelocity(MotionUp, Vec2{}, edges, SpeedFor(wide)))
	assert.Equal(t, Vec2{Y: 7}, ResolveVelocity(MotionUp, Vec2{}, edges, SpeedFor(narrow)))
}

func TestDiagonalUsesHalfSpeedUnnormalised(t *testing.T) {
	edges := Edges{Top: 1000, Bottom: -1000, Left: -1000, Right: 1000}

	assert.Equal(t, Vec2{X: 7, Y: 7}, ResolveVelocity(MotionUpRight, Vec2{}, edges, FullSpeed))
	assert.Equal(t, Vec2{X: -5, Y: -5}, ResolveVelocity(MotionDownLeft, Vec2{}, edges, ReducedSpeed))

	for m := MotionRest; m <= MotionDownRight; m++ {
		dx, dy := m.Direction()
		assert.Equal(t, dx != 0 && dy != 0, m.IsDiagonal(), m.String())
	}
}

func TestResolveVelocityEdgeClamp(t *testing.T) {
	edges := Edges{Top: 100, Bottom: -100, Left: -200, Right: 200}

	tests := []struct {
		name   string
		motion Motion
		pos    Vec2
		want   Vec2
	}{
		{"left at left edge", MotionLeft, Vec2{X: -200}, Vec2{}},
		{"left past left edge", MotionLeft, Vec2{X: -250}, Vec2{}},
		{"right away from left edge", MotionRight, Vec2{X: -200}, Vec2{X: 10}},
		{"right at right edge", MotionRight, Vec2{X: 200}, Vec2{}},
		{"up at top edge", MotionUp, Vec2{Y: 100}, Vec2{}},
		{"down at bottom edge", MotionDown, Vec2{Y: -100}, Vec2{}},
		{"down away from top edge", MotionDown, Vec2{Y: 100}, Vec2{Y: -10}},
		{"diagonal keeps free axis", MotionUpRight, Vec2{X: 200}, Vec2{Y: 7}},
		{"diagonal in corner", MotionDownLeft, Vec2{X: -200, Y: -100}, Vec2{}},
		{"rest outside boundary", MotionRest, Vec2{X: 999, Y: -999}, Vec2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveVelocity(tt.motion, tt.pos, edges, FullSpeed)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLeftEdgeClampEndToEnd(t *testing.T) {
	vp := Viewport{Width: 660, Height: 600}
	size := vp.ActorSize()
	edges := ComputeEdges(vp, size)
	if edges.Left != -300 {
		t.Fatalf("Expected left edge -300, got %v", edges.Left)
	}

	motion := DecodeMotion(Input{Left: true})
	vel := ResolveVelocity(motion, Vec2{X: -300}, edges, SpeedFor(vp))

	assert.Equal(t, 0.0, vel.X)
	assert.NotEqual(t, -ReducedSpeed.Full, vel.X)
}

func TestHoverModeUsesAnalogAndFires(t *testing.T) {
	in := Input{Left: true, Analog: MotionUpRight}

	assert.Equal(t, MotionLeft, in.MotionFor(ControlKeyboard))
	assert.Equal(t, MotionUpRight, in.MotionFor(ControlHover))
	assert.False(t, in.FireAsserted(ControlKeyboard))
	assert.True(t, in.FireAsserted(ControlHover))

	bogus := Input{Analog: Motion(42)}
	assert.Equal(t, MotionRest, bogus.MotionFor(ControlHover))
}

func TestParseMotion(t *testing.T) {
	for m := MotionRest; m <= MotionDownRight; m++ {
		assert.Equal(t, m, ParseMotion(m.String()))
	}
	assert.Equal(t, MotionRest, ParseMotion("sideways"))
}
