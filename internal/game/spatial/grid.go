// Package spatial provides the broad-phase grid used for contact detection.
//
// The grid stores entity handles (not pointers) in preallocated cell slices
// and is rebuilt from scratch every tick.
package spatial

import (
	"math"
)

// SpatialGrid buckets entity IDs into fixed-size cells over a rectangular world.
// The world rectangle starts at an arbitrary origin so centre-origin
// coordinates can be inserted directly.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col])
type SpatialGrid struct {
	originX, originY float64
	cellSize         float64
	invCellSize      float64 // 1/cellSize for faster division
	cols, rows       int
	cells            [][]uint32 // cells[row*cols+col] = list of entity IDs
	scratch          []uint32   // reusable buffer for query results
}

// MaxAxisCells bounds the columns and rows of one grid. Larger worlds get coarser cells.
const MaxAxisCells = 256

// NewSpatialGrid creates a grid covering [originX, originX+width) × [originY, originY+height).
// maxEntities is used to preallocate cell capacity.
// Positions outside the rectangle are clamped into the border cells.
func NewSpatialGrid(originX, originY, width, height, cellSize float64, maxEntities int) *SpatialGrid {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = 100
	}
	if !(width > 0) || math.IsInf(width, 0) {
		width = cellSize
	}
	if !(height > 0) || math.IsInf(height, 0) {
		height = cellSize
	}
	cellSize = math.Max(cellSize, math.Max(width, height)/MaxAxisCells)

	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))

	// At least 1x1, at most MaxAxisCells per axis.
	cols = min(max(cols, 1), MaxAxisCells)
	rows = min(max(rows, 1), MaxAxisCells)

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &SpatialGrid{
		originX:     originX,
		originY:     originY,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) col(x float64) int {
	return cellIndex((x-g.originX)*g.invCellSize, g.cols)
}

func (g *SpatialGrid) row(y float64) int {
	return cellIndex((y-g.originY)*g.invCellSize, g.rows)
}

// cellIndex clamps in float space so far-off or NaN positions never overflow int.
func cellIndex(f float64, n int) int {
	f = math.Floor(f)
	if !(f >= 0) {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return int(f)
}

// Insert adds an entity at position (x, y).
func (g *SpatialGrid) Insert(entityID uint32, x, y float64) {
	idx := g.row(y)*g.cols + g.col(x)
	g.cells[idx] = append(g.cells[idx], entityID)
}

// QueryRect returns all entity IDs inserted in cells touching the rectangle.
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Candidates may lie outside the rectangle; the caller does the narrow phase.
func (g *SpatialGrid) QueryRect(minX, minY, maxX, maxY float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, maxCol := g.col(minX), g.col(maxX)
	minRow, maxRow := g.row(minY), g.row(maxY)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}

	return g.scratch
}

// QueryRadius returns all entity IDs potentially within radius of (cx, cy).
// Same reuse rules as QueryRect.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	return g.QueryRect(cx-radius, cy-radius, cx+radius, cy+radius)
}

// Stats returns grid statistics for debugging/profiling.
func (g *SpatialGrid) Stats() GridStats {
	var totalEntities, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		count := len(cell)
		totalEntities += count
		if count > maxInCell {
			maxInCell = count
		}
		if count > 0 {
			nonEmpty++
		}
	}

	avgPerCell := 0.0
	if nonEmpty > 0 {
		avgPerCell = float64(totalEntities) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  totalEntities,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avgPerCell,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells     int     `json:"totalCells"`
	NonEmptyCells  int     `json:"nonEmptyCells"`
	TotalEntities  int     `json:"totalEntities"`
	MaxInCell      int     `json:"maxInCell"`
	AvgPerNonEmpty float64 `json:"avgPerNonEmpty"`
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
