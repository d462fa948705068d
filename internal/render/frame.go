// Package render draws match snapshots into still frames for spectators and debugging.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"ufo-shooter/internal/game"
)

// MaxFrameSide bounds either frame dimension.
const MaxFrameSide = 4096

var (
	colorBackground = color.RGBA{12, 12, 28, 255}
	colorStar       = color.RGBA{200, 200, 220, 255}
	colorActor      = color.RGBA{80, 200, 255, 255}
	colorBlinking   = color.RGBA{80, 200, 255, 110}
	colorPeer       = color.RGBA{120, 255, 160, 160}
	colorHostile    = color.RGBA{255, 90, 90, 255}
	colorDome       = color.RGBA{255, 200, 200, 255}
	colorProjectile = color.RGBA{255, 240, 120, 255}
	colorEffect     = color.RGBA{255, 160, 40, 200}
	colorHUD        = color.RGBA{230, 230, 240, 255}
)

// Renderer draws snapshots. It keeps no per-frame state and is safe for concurrent use.
type Renderer struct {
	stars []game.Vec2
}

// NewRenderer creates a renderer with a fixed star field.
func NewRenderer() *Renderer {
	r := &Renderer{}
	// Deterministic scatter in unit coordinates.
	for i := 0; i < 64; i++ {
		x := float64((i*7919)%997) / 997
		y := float64((i*104729)%991) / 991
		r.stars = append(r.stars, game.Vec2{X: x, Y: y})
	}
	return r
}

// frameSize maps the snapshot viewport to pixel dimensions.
func frameSize(vp game.Viewport) (int, int) {
	w, h := int(vp.Width), int(vp.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w > MaxFrameSide {
		w = MaxFrameSide
	}
	if h > MaxFrameSide {
		h = MaxFrameSide
	}
	return w, h
}

// Render draws snap into a new image the size of its viewport.
func (r *Renderer) Render(snap *game.Snapshot) image.Image {
	return r.draw(snap).Image()
}

// EncodePNG renders snap and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.Snapshot) error {
	if err := r.draw(snap).EncodePNG(w); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

func (r *Renderer) draw(snap *game.Snapshot) *gg.Context {
	if snap == nil {
		snap = &game.Snapshot{Viewport: game.Viewport{Width: game.FullWindowWidth, Height: 800}}
	}
	width, height := frameSize(snap.Viewport)
	dc := gg.NewContext(width, height)
	r.drawBackground(dc, width, height)

	// World origin is the viewport centre with y pointing up.
	toScreen := func(e game.EntitySnapshot) (float64, float64) {
		return e.X + float64(width)/2, float64(height)/2 - e.Y
	}

	for _, e := range snap.Effects {
		x, y := toScreen(e)
		dc.SetColor(colorEffect)
		dc.DrawCircle(x, y, e.Width/2)
		dc.Fill()
	}
	for _, e := range snap.Hostiles {
		x, y := toScreen(e)
		dc.SetColor(colorHostile)
		dc.DrawEllipse(x, y, e.Width/2, e.Height/4)
		dc.Fill()
		dc.SetColor(colorDome)
		dc.DrawCircle(x, y-e.Height/6, e.Width/6)
		dc.Fill()
	}
	for _, e := range snap.Projectiles {
		x, y := toScreen(e)
		dc.SetColor(colorProjectile)
		dc.DrawRectangle(x-e.Width/2, y-e.Height/2, e.Width, e.Height)
		dc.Fill()
	}
	for _, e := range snap.Peers {
		x, y := toScreen(e)
		drawShip(dc, x, y, e.Width, e.Height, colorPeer)
	}
	if a := snap.Actor; a != nil {
		x, y := toScreen(*a)
		c := colorActor
		if a.Invulnerable {
			c = colorBlinking
		}
		drawShip(dc, x, y, a.Width, a.Height, c)
	}

	r.drawHUD(dc, snap)
	return dc
}

func (r *Renderer) drawBackground(dc *gg.Context, width, height int) {
	dc.SetColor(colorBackground)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	dc.SetColor(colorStar)
	for _, s := range r.stars {
		dc.DrawCircle(s.X*float64(width), s.Y*float64(height), 1)
		dc.Fill()
	}
}

// drawShip draws an upward-pointing triangle filling the bounding box.
func drawShip(dc *gg.Context, x, y, w, h float64, c color.Color) {
	dc.SetColor(c)
	dc.MoveTo(x, y-h/2)
	dc.LineTo(x+w/2, y+h/2)
	dc.LineTo(x-w/2, y+h/2)
	dc.ClosePath()
	dc.Fill()
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.Snapshot) {
	dc.SetColor(colorHUD)
	line := fmt.Sprintf("tick %d  %s", snap.Tick, snap.Phase)
	for _, rec := range snap.Records {
		line += fmt.Sprintf("  P%d hp %d score %d", rec.Tag, rec.Health, rec.Score)
	}
	if snap.GameOver {
		line += "  GAME OVER"
	}
	dc.DrawString(line, 10, 20)
}
