package grid

import (
	"errors"

	"github.com/aresgrid/ares-engine/internal/hex"
)

// ErrNoPath is returned when the flood map never reached the target.
// Callers treat it as "no path" and degrade, they never retry.
var ErrNoPath = errors.New("no path to target in known cells")

// MoveStep is a single queued movement instruction.
type MoveStep int8

const (
	Forward MoveStep = iota
	Left
	Right
)

func (s MoveStep) String() string {
	switch s {
	case Forward:
		return "forward"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// FromStep records how the flood fill first arrived at a cell: the
// previous coordinate and the direction of the entering edge.
type FromStep struct {
	Coord hex.Coord
	Dir   hex.Dir
}

// CoordDir pairs a coordinate with an orientation.
type CoordDir struct {
	Coord hex.Coord
	Dir   hex.Dir
}

// FloodMap runs a breadth-first fill from start over the caller's cell
// subset (typically an agent's known cells) and returns the came-from
// table. The frontier is FIFO and each node expands its edges in
// side-scan order of the arrival direction, so equal-length paths
// prefer fewer turns. The fill stops once target is dequeued. The cost
// model is uniform; the result proves existence, not geodesic
// optimality.
func FloodMap(start hex.Coord, startDir hex.Dir, target hex.Coord, cells map[hex.Coord]*Cell) map[hex.Coord]FromStep {
	frontier := []CoordDir{{Coord: start, Dir: startDir}}

	cameFrom := map[hex.Coord]FromStep{
		start: {Coord: start, Dir: hex.Dir0},
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		if current.Coord == target {
			break
		}

		cell, ok := cells[current.Coord]
		if !ok {
			continue
		}

		for _, dir := range hex.SideScanOrder(current.Dir) {
			if cell.Edge(dir) == Wall {
				continue
			}
			next := current.Coord.Step(dir, 1)
			if _, seen := cameFrom[next]; seen {
				continue
			}
			if _, known := cells[next]; !known {
				continue
			}

			frontier = append(frontier, CoordDir{Coord: next, Dir: dir})
			cameFrom[next] = FromStep{Coord: current.Coord, Dir: dir}
		}
	}

	return cameFrom
}

// DepthToPath walks the came-from table backwards from target to start
// and returns the steps in travel order. Each returned step carries the
// direction of the edge that enters its cell, so the path length equals
// the number of edges traversed.
func DepthToPath(cameFrom map[hex.Coord]FromStep, target, start hex.Coord) ([]FromStep, error) {
	if target == start {
		return nil, nil
	}

	current, ok := cameFrom[target]
	if !ok {
		return nil, ErrNoPath
	}

	var path []FromStep
	at := target
	for current.Coord != start {
		path = append(path, FromStep{Coord: at, Dir: current.Dir})
		at = current.Coord
		current, ok = cameFrom[at]
		if !ok {
			return nil, ErrNoPath
		}
	}
	path = append(path, FromStep{Coord: at, Dir: current.Dir})

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

// FindSpin returns the Left or Right steps that rotate from one
// orientation to the other along the shorter arc. At most three steps.
func FindSpin(from, to hex.Dir) []MoveStep {
	diff := hex.NormalizeAngle(int(to) - int(from))

	var steps []MoveStep
	for diff != 0 {
		if diff < 0 {
			steps = append(steps, Left)
			diff += 60
		} else {
			steps = append(steps, Right)
			diff -= 60
		}
	}
	return steps
}

// PathToMoves compiles a reconstructed path into movement steps: for
// each path node, spin to match its entering edge, then one step
// forward.
func PathToMoves(start CoordDir, path []FromStep) []MoveStep {
	var moves []MoveStep
	orientation := start.Dir

	for _, step := range path {
		if orientation != step.Dir {
			moves = append(moves, FindSpin(orientation, step.Dir)...)
		}
		moves = append(moves, Forward)
		orientation = step.Dir
	}

	return moves
}

// FindPath plans a movement queue from start to target over the given
// cell subset.
func FindPath(start CoordDir, target hex.Coord, cells map[hex.Coord]*Cell) ([]MoveStep, error) {
	cameFrom := FloodMap(start.Coord, start.Dir, target, cells)

	path, err := DepthToPath(cameFrom, target, start.Coord)
	if err != nil {
		return nil, err
	}

	return PathToMoves(start, path), nil
}

// IsReachable reports whether a path of at most maxSteps edges connects
// start to target within the given cell subset. The starting direction
// does not matter because the path is never compiled to moves.
func IsReachable(start, target hex.Coord, cells map[hex.Coord]*Cell, maxSteps int32) bool {
	if start == target {
		return true
	}

	cameFrom := FloodMap(start, hex.Dir0, target, cells)
	path, err := DepthToPath(cameFrom, target, start)
	if err != nil {
		return false
	}

	return int32(len(path)) <= maxSteps
}

// FindClosest picks the candidate with the smallest hex distance from
// origin. Returns false for an empty candidate list.
func FindClosest(origin hex.Coord, candidates []hex.Coord) (hex.Coord, bool) {
	var best hex.Coord
	bestDist := int32(-1)

	for _, c := range candidates {
		d := origin.DistanceTo(c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, bestDist >= 0
}

// FindFarthest picks the candidate with the greatest hex distance from
// origin. Used for flee targets, which want to maximize separation.
func FindFarthest(origin hex.Coord, candidates []hex.Coord) (hex.Coord, bool) {
	var best hex.Coord
	bestDist := int32(-1)

	for _, c := range candidates {
		d := origin.DistanceTo(c)
		if d > bestDist {
			best, bestDist = c, d
		}
	}

	return best, bestDist >= 0
}
