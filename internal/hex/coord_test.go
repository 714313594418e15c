package hex

import "testing"

func TestStepOffsets(t *testing.T) {
	origin := Coord{}

	cases := []struct {
		dir  Dir
		dist int32
		want Coord
	}{
		{Dir0, 5, Coord{Q: 0, R: 5}},
		{Dir60, 24, Coord{Q: 24, R: 0}},
		{Dir120, 4, Coord{Q: 4, R: -4}},
		{Dir180, 934, Coord{Q: 0, R: -934}},
		{Dir240, 2, Coord{Q: -2, R: 0}},
		{Dir300, 32, Coord{Q: -32, R: 32}},
	}

	for _, tc := range cases {
		got := origin.Step(tc.dir, tc.dist)
		if got != tc.want {
			t.Errorf("Step(%d, %d) = %v, want %v", tc.dir, tc.dist, got, tc.want)
		}
	}
}

func TestStepRoundTrip(t *testing.T) {
	c := Coord{Q: 7, R: -3}
	for _, d := range Dirs {
		back := c.Step(d, 9).Step(d.Opposite(), 9)
		if back != c {
			t.Errorf("step/unstep along %d moved %v to %v", d, c, back)
		}
	}
}

func TestCubeConversion(t *testing.T) {
	cases := []struct {
		axial Coord
		cube  Cube
	}{
		{Coord{Q: 0, R: 0}, Cube{0, 0, 0}},
		{Coord{Q: -2, R: 0}, Cube{-2, 0, 2}},
		{Coord{Q: 1, R: 1}, Cube{1, 1, -2}},
	}

	for _, tc := range cases {
		got := tc.axial.ToCube()
		if got != tc.cube {
			t.Errorf("%v.ToCube() = %v, want %v", tc.axial, got, tc.cube)
		}
		if back := got.ToAxial(); back != tc.axial {
			t.Errorf("cube round trip of %v gave %v", tc.axial, back)
		}
	}
}

func TestDistance(t *testing.T) {
	c := Coord{Q: 2, R: -1}
	if d := c.DistanceTo(c); d != 0 {
		t.Errorf("distance to self = %d", d)
	}

	for _, dir := range Dirs {
		if d := c.DistanceTo(c.Step(dir, 1)); d != 1 {
			t.Errorf("distance to %d neighbor = %d", dir, d)
		}
	}

	if d := (Coord{}).DistanceTo(Coord{Q: 3, R: -1}); d != 3 {
		t.Errorf("distance((0,0),(3,-1)) = %d, want 3", d)
	}
}

func TestDirRotation(t *testing.T) {
	if Dir0.Left() != Dir300 {
		t.Errorf("Dir0.Left() = %d", Dir0.Left())
	}
	if Dir300.Right() != Dir0 {
		t.Errorf("Dir300.Right() = %d", Dir300.Right())
	}
	if Dir120.Opposite() != Dir300 {
		t.Errorf("Dir120.Opposite() = %d", Dir120.Opposite())
	}

	for _, d := range Dirs {
		got := d
		for i := 0; i < 4; i++ {
			got = got.Left()
		}
		for i := 0; i < 4; i++ {
			got = got.Right()
		}
		if got != d {
			t.Errorf("left/right 4x round trip moved %d to %d", d, got)
		}
	}
}

func TestDirFromDegrees(t *testing.T) {
	if DirFromDegrees(360) != Dir0 {
		t.Errorf("360 should wrap to Dir0")
	}
	if DirFromDegrees(-60) != Dir300 {
		t.Errorf("-60 should wrap to Dir300")
	}
	if DirFromDegrees(55) != Dir0 {
		t.Errorf("off-grid angle should collapse to Dir0")
	}
}

func TestSideScanOrder(t *testing.T) {
	got := SideScanOrder(Dir60)
	want := [6]Dir{Dir60, Dir0, Dir120, Dir300, Dir180, Dir240}
	if got != want {
		t.Errorf("SideScanOrder(Dir60) = %v, want %v", got, want)
	}
}
