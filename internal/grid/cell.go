package grid

import "github.com/aresgrid/ares-engine/internal/hex"

// EdgeType is the state of one directed cell edge. The integer values
// are the wire/store encoding.
type EdgeType int16

const (
	Open EdgeType = 0
	Wall EdgeType = 1
)

// Cell is a single hex cell with six directed edges. Cells are immutable
// once maze generation completes; only the grid's indices mutate after
// that.
type Cell struct {
	ID    int32
	Coord hex.Coord
	edges [6]EdgeType
}

// NewCell creates a cell with every edge walled. Generation carves
// openings afterwards.
func NewCell(id int32, coord hex.Coord) *Cell {
	return &Cell{
		ID:    id,
		Coord: coord,
		edges: [6]EdgeType{Wall, Wall, Wall, Wall, Wall, Wall},
	}
}

func edgeIndex(dir hex.Dir) int {
	return int(dir) / 60
}

// Edge returns the state of the edge facing dir.
func (c *Cell) Edge(dir hex.Dir) EdgeType {
	return c.edges[edgeIndex(dir)]
}

func (c *Cell) setEdge(dir hex.Dir, t EdgeType) {
	c.edges[edgeIndex(dir)] = t
}

// Edges returns the six edges indexed by dir/60.
func (c *Cell) Edges() [6]EdgeType {
	return c.edges
}

// SetEdges overwrites all six edges at once, without touching the
// neighbors. The store's grid loader uses this to rebuild cells exactly
// as persisted.
func (c *Cell) SetEdges(edges [6]EdgeType) {
	c.edges = edges
}

// IsOpen reports whether at least one edge is open.
func (c *Cell) IsOpen() bool {
	for _, e := range c.edges {
		if e == Open {
			return true
		}
	}
	return false
}

// IsFullyOpen reports whether every edge is open.
func (c *Cell) IsFullyOpen() bool {
	for _, e := range c.edges {
		if e != Open {
			return false
		}
	}
	return true
}

// Walls returns the directions still closed off.
func (c *Cell) Walls() []hex.Dir {
	var walls []hex.Dir
	for _, d := range hex.Dirs {
		if c.Edge(d) == Wall {
			walls = append(walls, d)
		}
	}
	return walls
}
