package hex

import "math"

// planar projects an axial coordinate onto the plane for angle math.
// x grows with q (scaled by sqrt(3)), y is q + 2r so that Dir0 points
// straight up the +y axis.
func planar(c Coord) (x, y float64) {
	return math.Sqrt(3) * float64(c.Q), float64(c.Q) + 2*float64(c.R)
}

// planarAngle is the clockwise angle in degrees from the +y axis to the
// vector (x, y), in (-180, 180].
func planarAngle(x, y float64) float64 {
	return math.Atan2(x, y) * 180 / math.Pi
}

// NormalizeAngle folds an angle in degrees into (-180, 180].
func NormalizeAngle(deg int) int {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// Bearing returns the signed angle from the line of sight of an observer
// at from facing dir, to the target at to. The result is in (-180, 180];
// negative is to the observer's left. ok is false when the two
// coordinates coincide and no bearing exists.
func Bearing(facing Dir, from, to Coord) (deg int, ok bool) {
	if from == to {
		return 0, false
	}

	x, y := planar(Coord{Q: to.Q - from.Q, R: to.R - from.R})
	angle := planarAngle(x, y)

	return NormalizeAngle(int(math.Round(angle)) - int(facing)), true
}

// DirTowards returns the orientation whose axis lies closest to the
// target as seen from from. Falls back to Dir0 when the coordinates
// coincide.
func DirTowards(from, to Coord) Dir {
	if from == to {
		return Dir0
	}

	x, y := planar(Coord{Q: to.Q - from.Q, R: to.R - from.R})
	angle := planarAngle(x, y)

	sector := int(math.Round(angle/60)) * 60
	return DirFromDegrees(sector)
}
