// Package systems provides the flocking forces and per-tick ECS systems.
package systems

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/koipond/components"
	"github.com/pthm-cable/koipond/vmath"
)

// Neighbor holds a nearby koi with its precomputed distance.
type Neighbor struct {
	E    ecs.Entity
	Koi  *components.Koi
	Dist float64
}

// SpatialGrid provides neighbour lookups using a cell-based grid. Distances
// are plain euclidean; the pond wraps positions but perception does not see
// across the edge.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering the given pond size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 80
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos vmath.Vec) {
	idx := g.cellIndex(pos)
	g.cells[idx] = append(g.cells[idx], e)
}

// Move relocates an entity after its position changed. It is a no-op when
// both positions fall in the same cell.
func (g *SpatialGrid) Move(e ecs.Entity, from, to vmath.Vec) {
	src, dst := g.cellIndex(from), g.cellIndex(to)
	if src == dst {
		return
	}
	cell := g.cells[src]
	for i, other := range cell {
		if other == e {
			cell[i] = cell[len(cell)-1]
			g.cells[src] = cell[:len(cell)-1]
			break
		}
	}
	g.cells[dst] = append(g.cells[dst], e)
}

// QueryRadiusInto appends every entity strictly within radius of pos to dst,
// excluding exclude. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos vmath.Vec, radius float64, exclude ecs.Entity, koiMap *ecs.Map1[components.Koi]) []Neighbor {
	cellRadius := int(math.Ceil(radius / g.cellSize))
	centerCol, centerRow := g.cellCoords(pos)

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				k := koiMap.Get(e)
				if k == nil {
					continue
				}
				if d := vmath.Dist(pos, k.Pos); d < radius {
					dst = append(dst, Neighbor{E: e, Koi: k, Dist: d})
				}
			}
		}
	}
	return dst
}

// Nearest sorts neighbours by ascending distance (ties by koi ID) and keeps
// at most max of them.
func Nearest(neighbors []Neighbor, max int) []Neighbor {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Dist != neighbors[j].Dist {
			return neighbors[i].Dist < neighbors[j].Dist
		}
		return neighbors[i].Koi.ID < neighbors[j].Koi.ID
	})
	if max >= 0 && len(neighbors) > max {
		neighbors = neighbors[:max]
	}
	return neighbors
}

// cellCoords returns the clamped grid column and row for a position.
func (g *SpatialGrid) cellCoords(pos vmath.Vec) (col, row int) {
	col = int(pos.X / g.cellSize)
	row = int(pos.Y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat index for a position.
func (g *SpatialGrid) cellIndex(pos vmath.Vec) int {
	col, row := g.cellCoords(pos)
	return row*g.cols + col
}
