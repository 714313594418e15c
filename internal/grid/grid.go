package grid

import (
	"math/rand"

	"github.com/aresgrid/ares-engine/internal/hex"
)

// initialSearchBound is the starting half-width for random open cell
// sampling. The bound shrinks as samples miss the grid, converging on
// the true radius.
const initialSearchBound = 5000

// Grid owns the cell map and the mutable spatial indices. The cell map
// is immutable after generation; the engine is the only writer of the
// indices.
type Grid struct {
	Cells map[hex.Coord]*Cell

	robotLocs      map[hex.Coord]int64
	robotCoords    map[int64]hex.Coord
	robotStrengths map[int64]int32
	valuableLocs   map[hex.Coord]int64

	searchBound int32
}

// New wraps a generated (or store-loaded) cell map with empty indices.
func New(cells map[hex.Coord]*Cell) *Grid {
	return &Grid{
		Cells:          cells,
		robotLocs:      make(map[hex.Coord]int64),
		robotCoords:    make(map[int64]hex.Coord),
		robotStrengths: make(map[int64]int32),
		valuableLocs:   make(map[hex.Coord]int64),
		searchBound:    initialSearchBound,
	}
}

// CellAt returns the cell at coord, or nil when outside the disc.
func (g *Grid) CellAt(coord hex.Coord) *Cell {
	return g.Cells[coord]
}

// AddRobot registers a robot at coord along with its weapon strength,
// used for O(1) threat assessment by scanners.
func (g *Grid) AddRobot(id int64, coord hex.Coord, strength int32) {
	g.robotLocs[coord] = id
	g.robotCoords[id] = coord
	g.robotStrengths[id] = strength
}

// UpdateRobotLoc moves a robot's index entry from its old coord to the
// new one as a single swap.
func (g *Grid) UpdateRobotLoc(id int64, to hex.Coord) {
	if old, ok := g.robotCoords[id]; ok {
		delete(g.robotLocs, old)
	}
	g.robotLocs[to] = id
	g.robotCoords[id] = to
}

// RemoveRobotByID drops a robot from all indices.
func (g *Grid) RemoveRobotByID(id int64) {
	if coord, ok := g.robotCoords[id]; ok {
		delete(g.robotLocs, coord)
	}
	delete(g.robotCoords, id)
	delete(g.robotStrengths, id)
}

// RemoveRobotByLoc drops whatever robot occupies coord.
func (g *Grid) RemoveRobotByLoc(coord hex.Coord) {
	if id, ok := g.robotLocs[coord]; ok {
		delete(g.robotCoords, id)
		delete(g.robotStrengths, id)
	}
	delete(g.robotLocs, coord)
}

// RobotIDAt returns the robot occupying coord, if any.
func (g *Grid) RobotIDAt(coord hex.Coord) (int64, bool) {
	id, ok := g.robotLocs[coord]
	return id, ok
}

// RobotCoords returns the indexed position of a robot.
func (g *Grid) RobotCoords(id int64) (hex.Coord, bool) {
	coord, ok := g.robotCoords[id]
	return coord, ok
}

// RobotStrength returns the indexed weapon strength of a robot.
func (g *Grid) RobotStrength(id int64) (int32, bool) {
	s, ok := g.robotStrengths[id]
	return s, ok
}

// AddValuable registers a valuable pile at coord.
func (g *Grid) AddValuable(id int64, coord hex.Coord) {
	g.valuableLocs[coord] = id
}

// RemoveValuableByLoc unindexes the pile at coord.
func (g *Grid) RemoveValuableByLoc(coord hex.Coord) {
	delete(g.valuableLocs, coord)
}

// ValuableIDAt returns the pile at coord, if any.
func (g *Grid) ValuableIDAt(coord hex.Coord) (int64, bool) {
	id, ok := g.valuableLocs[coord]
	return id, ok
}

// RandomOpenCell samples coordinates uniformly within the current
// search bound until it finds a cell that exists, is at least partially
// open, and carries neither a robot nor a valuable. Misses outside the
// grid shrink the bound toward the grid's real radius, so the rejection
// rate improves over the life of the process. Returns false only if the
// grid has no eligible cell after a large number of attempts.
func (g *Grid) RandomOpenCell(rng *rand.Rand) (hex.Coord, bool) {
	for attempts := 0; attempts < 100000; attempts++ {
		q := rng.Int31n(2*g.searchBound+1) - g.searchBound
		r := rng.Int31n(2*g.searchBound+1) - g.searchBound
		coord := hex.Coord{Q: q, R: r}

		cell, ok := g.Cells[coord]
		if !ok {
			if bound := max32(abs32(q), abs32(r)); bound < g.searchBound && bound > 0 {
				g.searchBound = bound
			}
			continue
		}
		if !cell.IsOpen() {
			continue
		}
		if _, occupied := g.robotLocs[coord]; occupied {
			continue
		}
		if _, occupied := g.valuableLocs[coord]; occupied {
			continue
		}
		return coord, true
	}
	return hex.Coord{}, false
}

// GetCells enumerates the cells within dist rings of origin whose
// bearing from origin, facing the given orientation, lies within
// +-fov/2. The origin itself is always included exactly once. Results
// are ordered by expanding radius.
func (g *Grid) GetCells(origin hex.Coord, facing hex.Dir, fov, dist int32) []*Cell {
	var cells []*Cell

	if c, ok := g.Cells[origin]; ok {
		cells = append(cells, c)
	}

	for radius := int32(1); radius <= dist; radius++ {
		coord := origin.Step(hex.Dir240, radius)
		for _, dir := range hex.Dirs {
			for step := int32(0); step < radius; step++ {
				coord = coord.Step(dir, 1)
				cell, ok := g.Cells[coord]
				if !ok {
					continue
				}
				if fov < 360 {
					bearing, ok := hex.Bearing(facing, origin, coord)
					if !ok || abs32(int32(bearing))*2 > fov {
						continue
					}
				}
				cells = append(cells, cell)
			}
		}
	}

	return cells
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
