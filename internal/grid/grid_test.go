package grid

import (
	"math/rand"
	"testing"

	"github.com/aresgrid/ares-engine/internal/hex"
)

func TestDiscCellCount(t *testing.T) {
	cases := []struct {
		radius int32
		want   int
	}{
		{1, 7},
		{2, 19},
		{4, 61},
	}

	for _, tc := range cases {
		cells := generateCells(tc.radius)
		if len(cells) != tc.want {
			t.Errorf("radius %d disc has %d cells, want %d", tc.radius, len(cells), tc.want)
		}
	}
}

func TestDiscIDsUnique(t *testing.T) {
	cells := generateCells(4)
	seen := make(map[int32]bool, len(cells))
	for _, cell := range cells {
		if seen[cell.ID] {
			t.Fatalf("duplicate cell id %d", cell.ID)
		}
		seen[cell.ID] = true
	}
}

func TestGetCellsRingCounts(t *testing.T) {
	g := New(openDisc(4))
	origin := hex.Coord{}

	cases := []struct {
		fov, dist int32
		want      int
	}{
		{0, 2, 3},
		{240, 1, 6},
		{120, 2, 9},
		{240, 2, 15},
		{360, 2, 19},
		{360, 0, 1},
	}

	for _, tc := range cases {
		got := g.GetCells(origin, hex.Dir0, tc.fov, tc.dist)
		if len(got) != tc.want {
			t.Errorf("GetCells(fov=%d, dist=%d) returned %d cells, want %d", tc.fov, tc.dist, len(got), tc.want)
		}
	}
}

func TestGetCellsOrderedByRadius(t *testing.T) {
	g := New(openDisc(4))
	origin := hex.Coord{}

	last := int32(0)
	for _, cell := range g.GetCells(origin, hex.Dir0, 360, 3) {
		d := origin.DistanceTo(cell.Coord)
		if d < last {
			t.Fatalf("cell %v at distance %d appeared after distance %d", cell.Coord, d, last)
		}
		last = d
	}
}

func TestMazeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	g, err := Generate(6, rng)
	if err != nil {
		t.Fatal(err)
	}

	for coord, cell := range g.Cells {
		for _, dir := range hex.Dirs {
			neighbor, ok := g.Cells[coord.Step(dir, 1)]
			if !ok {
				// perimeter closure: edges pointing outside the disc
				if cell.Edge(dir) != Wall {
					t.Errorf("cell %v edge %d points outside the disc but is open", coord, dir)
				}
				continue
			}
			// edge reciprocity
			if cell.Edge(dir) != neighbor.Edge(dir.Opposite()) {
				t.Errorf("edge mismatch between %v (%d) and %v", coord, dir, neighbor.Coord)
			}
		}
	}
}

func TestGenerateRejectsBadRadius(t *testing.T) {
	if _, err := Generate(0, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected an error for radius 0")
	}
}

func TestRandomOpenCell(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g, err := Generate(5, rng)
	if err != nil {
		t.Fatal(err)
	}

	coord, ok := g.RandomOpenCell(rng)
	if !ok {
		t.Fatal("no open cell found in a generated maze")
	}

	cell := g.CellAt(coord)
	if cell == nil || !cell.IsOpen() {
		t.Fatalf("sampled cell %v is not open", coord)
	}

	// occupied cells are excluded from future samples
	g.AddRobot(1, coord, 250)
	for i := 0; i < 50; i++ {
		next, ok := g.RandomOpenCell(rng)
		if !ok {
			t.Fatal("sampling stopped finding cells")
		}
		if next == coord {
			t.Fatalf("sampled the occupied cell %v", coord)
		}
	}

	if g.searchBound > initialSearchBound {
		t.Fatalf("search bound grew to %d", g.searchBound)
	}
}

func TestRobotIndexLockstep(t *testing.T) {
	g := New(openDisc(2))
	loc := hex.Coord{Q: 1, R: 0}

	g.AddRobot(42, loc, 500)

	if id, ok := g.RobotIDAt(loc); !ok || id != 42 {
		t.Fatalf("RobotIDAt = %d, %v", id, ok)
	}
	if s, ok := g.RobotStrength(42); !ok || s != 500 {
		t.Fatalf("RobotStrength = %d, %v", s, ok)
	}

	to := hex.Coord{Q: 0, R: 1}
	g.UpdateRobotLoc(42, to)
	if _, ok := g.RobotIDAt(loc); ok {
		t.Fatal("old location still indexed after move")
	}
	if id, _ := g.RobotIDAt(to); id != 42 {
		t.Fatal("new location not indexed after move")
	}

	g.RemoveRobotByID(42)
	if _, ok := g.RobotStrength(42); ok {
		t.Fatal("strength survived robot removal")
	}
	if _, ok := g.RobotIDAt(to); ok {
		t.Fatal("location survived robot removal")
	}
}
