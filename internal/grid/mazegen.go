package grid

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/aresgrid/ares-engine/internal/hex"
)

// Generate builds the hex disc of the given radius and carves a maze
// into it: every edge starts as a wall, rooms and corridors open edges,
// and a final pass recloses the perimeter. All edge writes go through
// the paired writer so reciprocity holds throughout.
func Generate(radius int32, rng *rand.Rand) (*Grid, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("improper grid radius %d", radius)
	}

	cells := generateCells(radius)

	addRooms(cells, radius, rng)
	for i := int32(0); i < radius*2; i++ {
		carveCorridor(cells, rng)
	}
	enforceOuterWalls(cells)

	return New(cells), nil
}

// generateCells walks expanding rings out from the origin, assigning
// ids incrementally. Every cell starts fully walled.
func generateCells(radius int32) map[hex.Coord]*Cell {
	cells := make(map[hex.Coord]*Cell)
	origin := hex.Coord{}
	var id int32

	cells[origin] = NewCell(id, origin)

	for ring := int32(1); ring <= radius; ring++ {
		// start at the bottom-left corner of the ring; walking one full
		// lap never revisits the starting cell
		coord := origin.Step(hex.Dir240, ring)
		for _, dir := range hex.Dirs {
			for step := int32(0); step < ring; step++ {
				coord = coord.Step(dir, 1)
				id++
				cells[coord] = NewCell(id, coord)
			}
		}
	}

	return cells
}

// setEdgeBetween is the paired edge writer: it updates the edge on both
// sides so cell A's edge toward B always equals B's edge toward A.
func setEdgeBetween(cells map[hex.Coord]*Cell, coord hex.Coord, dir hex.Dir, t EdgeType) {
	cell, ok := cells[coord]
	if !ok {
		return
	}
	cell.setEdge(dir, t)

	if neighbor, ok := cells[coord.Step(dir, 1)]; ok {
		neighbor.setEdge(dir.Opposite(), t)
	}
}

func addRooms(cells map[hex.Coord]*Cell, radius int32, rng *rand.Rand) {
	maxSize := radius / 2
	if maxSize < 1 {
		return
	}

	coords := coordList(cells)
	numRooms := radius / 2

	for i := int32(0); i < numRooms; i++ {
		size := int32(1)
		if maxSize > 1 {
			size = 1 + rng.Int31n(maxSize-1)
		}
		center := coords[rng.Intn(len(coords))]
		carveRoom(cells, center, size)
	}
}

// carveRoom opens every edge of every cell within size of center, then
// recloses the outward edges of the room's outer ring so the room stays
// bounded.
func carveRoom(cells map[hex.Coord]*Cell, center hex.Coord, size int32) {
	for coord := range cells {
		if center.DistanceTo(coord) <= size {
			for _, dir := range hex.Dirs {
				setEdgeBetween(cells, coord, dir, Open)
			}
		}
	}

	for coord := range cells {
		if center.DistanceTo(coord) != size {
			continue
		}
		for _, dir := range hex.Dirs {
			beyond := coord.Step(dir, 1)
			if _, inside := cells[beyond]; !inside || center.DistanceTo(beyond) > size {
				setEdgeBetween(cells, coord, dir, Wall)
			}
		}
	}
}

// carveCorridor picks a partially open cell and walks outward from it,
// opening edges as it goes. Direction changes after a random segment
// length, drawn from the starting cell's wall set. The walk ends when
// it would leave the disc.
func carveCorridor(cells map[hex.Coord]*Cell, rng *rand.Rand) {
	var candidates []hex.Coord
	for coord, cell := range cells {
		if cell.IsOpen() && !cell.IsFullyOpen() {
			candidates = append(candidates, coord)
		}
	}
	if len(candidates) == 0 {
		return
	}
	sortCoords(candidates)

	current := candidates[rng.Intn(len(candidates))]
	walls := cells[current].Walls()
	if len(walls) == 0 {
		return
	}

	dir := walls[rng.Intn(len(walls))]
	length := 1 + rng.Int31n(9)

	for {
		length--
		setEdgeBetween(cells, current, dir, Open)

		if length <= 0 {
			length = 1 + rng.Int31n(9)
			dir = walls[rng.Intn(len(walls))]
			continue
		}

		current = current.Step(dir, 1)
		if _, ok := cells[current]; !ok {
			return
		}
	}
}

// enforceOuterWalls closes every edge that points outside the disc.
func enforceOuterWalls(cells map[hex.Coord]*Cell) {
	for coord, cell := range cells {
		for _, dir := range hex.Dirs {
			if _, ok := cells[coord.Step(dir, 1)]; !ok {
				cell.setEdge(dir, Wall)
			}
		}
	}
}

// coordList returns the cell coordinates in a stable order so a seeded
// rng reproduces the same maze.
func coordList(cells map[hex.Coord]*Cell) []hex.Coord {
	coords := make([]hex.Coord, 0, len(cells))
	for coord := range cells {
		coords = append(coords, coord)
	}
	sortCoords(coords)
	return coords
}

func sortCoords(coords []hex.Coord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})
}
