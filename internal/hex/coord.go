package hex

import "fmt"

// Coord is an axial hex coordinate. Axial (q, r) is the storage form;
// the cube form (x, y, z) with x+y+z == 0 is derived for distance math.
type Coord struct {
	Q int32 `json:"q"`
	R int32 `json:"r"`
}

// Cube is the cube-coordinate form of a Coord.
type Cube struct {
	X, Y, Z int32
}

// ToCube derives the cube form: x = q, y = r, z = -q-r.
func (c Coord) ToCube() Cube {
	return Cube{X: c.Q, Y: c.R, Z: -c.Q - c.R}
}

// ToAxial converts back from cube form.
func (u Cube) ToAxial() Coord {
	return Coord{Q: u.X, R: u.Y}
}

// Step advances dist cells along dir using the axial offset table:
// 0 -> (0,+1), 60 -> (+1,0), 120 -> (+1,-1), 180 -> (0,-1),
// 240 -> (-1,0), 300 -> (-1,+1).
func (c Coord) Step(dir Dir, dist int32) Coord {
	q, r := c.Q, c.R

	switch dir {
	case Dir0:
		r += dist
	case Dir60:
		q += dist
	case Dir120:
		q += dist
		r -= dist
	case Dir180:
		r -= dist
	case Dir240:
		q -= dist
	case Dir300:
		q -= dist
		r += dist
	}

	return Coord{Q: q, R: r}
}

// DistanceTo is the hex grid distance: cube L1 norm halved.
func (c Coord) DistanceTo(o Coord) int32 {
	a, b := c.ToCube(), o.ToCube()
	return (abs32(a.X-b.X) + abs32(a.Y-b.Y) + abs32(a.Z-b.Z)) / 2
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
