package game

import (
	"sort"

	"ufo-shooter/internal/game/spatial"
)

// ContactEvent is a pair of entities that overlapped this tick, in either order.
type ContactEvent struct {
	A Handle `json:"a"`
	B Handle `json:"b"`
}

// ContactDetector finds overlapping collidable entities using a broad-phase grid.
type ContactDetector struct {
	grid        *spatial.SpatialGrid
	viewport    Viewport
	cellSize    float64
	maxEntities int

	collidable []*Entity
}

// NewContactDetector creates a detector. The grid is sized lazily from the viewport.
func NewContactDetector(cellSize float64, maxEntities int) *ContactDetector {
	return &ContactDetector{
		cellSize:    cellSize,
		maxEntities: maxEntities,
		collidable:  make([]*Entity, 0, maxEntities),
	}
}

// Grid returns the broad-phase grid as of the last Detect call.
func (d *ContactDetector) Grid() *spatial.SpatialGrid {
	return d.grid
}

func (d *ContactDetector) ensureGrid(vp Viewport) {
	if d.grid != nil && d.viewport == vp {
		return
	}
	d.viewport = vp
	// One cell of margin on each side so off-screen spawns still get their own cells.
	w := vp.Width + 2*d.cellSize
	h := vp.Height + 2*d.cellSize
	d.grid = spatial.NewSpatialGrid(-w/2, -h/2, w, h, d.cellSize, d.maxEntities)
}

// Detect returns every overlapping pair of collidable entities, sorted by handle.
func (d *ContactDetector) Detect(reg *Registry, vp Viewport) []ContactEvent {
	d.ensureGrid(vp)
	d.grid.Clear()
	d.collidable = d.collidable[:0]

	var maxHalfW, maxHalfH float64
	for _, role := range Roles {
		if !role.Collidable() {
			continue
		}
		reg.Each(role, func(e *Entity) {
			d.collidable = append(d.collidable, e)
			d.grid.Insert(uint32(e.Handle), e.Position.X, e.Position.Y)
			if hw := e.Size.X / 2; hw > maxHalfW {
				maxHalfW = hw
			}
			if hh := e.Size.Y / 2; hh > maxHalfH {
				maxHalfH = hh
			}
		})
	}

	var contacts []ContactEvent
	for _, a := range d.collidable {
		reachX := a.Size.X/2 + maxHalfW
		reachY := a.Size.Y/2 + maxHalfH
		candidates := d.grid.QueryRect(
			a.Position.X-reachX, a.Position.Y-reachY,
			a.Position.X+reachX, a.Position.Y+reachY,
		)
		for _, id := range candidates {
			h := Handle(id)
			if h <= a.Handle {
				continue
			}
			b, ok := reg.Get(h)
			if !ok {
				continue
			}
			if Overlaps(a.Position, a.Size, b.Position, b.Size) {
				contacts = append(contacts, ContactEvent{A: a.Handle, B: h})
			}
		}
	}

	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].A != contacts[j].A {
			return contacts[i].A < contacts[j].A
		}
		return contacts[i].B < contacts[j].B
	})
	return contacts
}
