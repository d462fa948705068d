package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufo-shooter/internal/game"
)

func testSnapshot() *game.Snapshot {
	return &game.Snapshot{
		Tick:     42,
		Phase:    game.PhaseActive.String(),
		Viewport: game.Viewport{Width: 400, Height: 300},
		Actor:    &game.EntitySnapshot{X: 0, Y: -100, Width: 60, Height: 60},
		Hostiles: []game.EntitySnapshot{
			{X: 50, Y: 100, Width: 60, Height: 60, Tag: 3},
		},
		Projectiles: []game.EntitySnapshot{{X: 0, Y: -50, Width: 10, Height: 20}},
		Records:     []game.PlayerRecord{{Tag: 1, Health: 3}},
	}
}

func TestRenderUsesViewportSize(t *testing.T) {
	img := NewRenderer().Render(testSnapshot())
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderDrawsActorAtWorldPosition(t *testing.T) {
	img := NewRenderer().Render(testSnapshot())

	// Actor centre (0, -100) maps to pixel (200, 250).
	r, g, b, _ := img.At(200, 250).RGBA()
	assert.Equal(t, uint32(colorActor.R), r>>8)
	assert.Equal(t, uint32(colorActor.G), g>>8)
	assert.Equal(t, uint32(colorActor.B), b>>8)
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer().EncodePNG(&buf, testSnapshot()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestRenderNilSnapshot(t *testing.T) {
	img := NewRenderer().Render(nil)
	assert.Equal(t, int(game.FullWindowWidth), img.Bounds().Dx())
}

func TestFrameSizeBounds(t *testing.T) {
	w, h := frameSize(game.Viewport{Width: 0, Height: 1e6})
	assert.Equal(t, 1, w)
	assert.Equal(t, MaxFrameSide, h)
}
