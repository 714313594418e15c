package robot

import (
	"sort"

	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
)

// runNeutral is the idle-exploration behavior: bail out to extraction
// on a full inventory, scan, react to other agents, go after visible
// valuables, and otherwise push the frontier of known cells.
func (r *Robot) runNeutral() Result {
	if r.ValInventory >= r.MaxValInventory {
		r.SetStatusText("Inventory full, calling for extraction.")
		return Result{Kind: ToExfiltrate}
	}

	if res := r.scan(); res.Kind == ResultOutOfPower {
		return res
	}

	if res, reacted := r.respondToOthers(); reacted {
		return res
	}

	if res, found := r.seekValuable(); found {
		return res
	}

	return r.explore()
}

// seekValuable heads for the closest reachable visible pile that no
// other agent is sitting on. Standing on one already means mining.
func (r *Robot) seekValuable() (Result, bool) {
	occupied := make(map[hex.Coord]bool, len(r.VisibleOthers))
	for _, other := range r.VisibleOthers {
		occupied[other.Coord] = true
	}

	candidates := make([]hex.Coord, 0, len(r.VisibleValuables))
	for _, v := range r.VisibleValuables {
		if !occupied[v.Coord] {
			candidates = append(candidates, v.Coord)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return r.Coord.DistanceTo(candidates[i]) < r.Coord.DistanceTo(candidates[j])
	})

	known := r.KnownUnoccupiedCells()
	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}

	for _, coord := range candidates {
		if coord == r.Coord {
			return Result{Kind: ToCollect}, true
		}
		if _, err := grid.FindPath(start, coord, known); err == nil {
			r.SetStatusText("Moving to valuables at %v.", coord)
			return Result{Kind: ToMove, Target: coord, Facing: r.Orientation}, true
		}
	}

	return Result{}, false
}

// explore picks a known cell that borders unexplored territory: one
// with an open edge leading to a coordinate that is neither known nor
// seen occupied. Nearest frontier first; with no frontier left, fall
// back to a random known coordinate.
func (r *Robot) explore() Result {
	known := r.KnownUnoccupiedCells()
	if len(known) == 0 {
		return resOk()
	}

	occupied := make(map[hex.Coord]bool, len(r.VisibleOthers))
	for _, other := range r.VisibleOthers {
		occupied[other.Coord] = true
	}

	coords := make([]hex.Coord, 0, len(known))
	for coord := range known {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		di, dj := r.Coord.DistanceTo(coords[i]), r.Coord.DistanceTo(coords[j])
		if di != dj {
			return di < dj
		}
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})

	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}

	for _, coord := range coords {
		cell := known[coord]
		for _, dir := range hex.Dirs {
			if cell.Edge(dir) == grid.Wall {
				continue
			}
			beyond := coord.Step(dir, 1)
			if _, isKnown := known[beyond]; isKnown {
				continue
			}
			if occupied[beyond] {
				continue
			}
			if coord != r.Coord {
				if _, err := grid.FindPath(start, coord, known); err != nil {
					break
				}
			}
			r.SetStatusText("Exploring toward %v.", coord)
			return Result{Kind: ToMove, Target: coord, Facing: dir}
		}
	}

	// no frontier: wander to a random known coordinate
	fallback := coords[r.rng.Intn(len(coords))]
	r.SetStatusText("Wandering to %v.", fallback)
	return Result{Kind: ToMove, Target: fallback, Facing: r.Orientation}
}
