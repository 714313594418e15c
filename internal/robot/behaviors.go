package robot

import (
	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
)

// respondToOthers reacts to the latest scan's sightings: threats come
// first and force a flee, then — only when armed — weaker or equal
// targets invite a pursuit. Returns false when nothing needs a
// reaction.
func (r *Robot) respondToOthers() (Result, bool) {
	if res, fleeing := r.checkForThreats(); fleeing {
		return res, true
	}

	if WeaponMaxDamage(r.Modules.Weapons) > 0 {
		if res, hunting := r.checkForTargets(); hunting {
			return res, true
		}
	}

	return Result{}, false
}

// checkForThreats flees from the closest visibly stronger (or
// unreadable) agent, toward the known cell farthest from it.
func (r *Robot) checkForThreats() (Result, bool) {
	var threatCoords []hex.Coord
	for _, other := range r.VisibleOthers {
		if other.Threat == ThreatStronger || other.Threat == ThreatUnknown {
			threatCoords = append(threatCoords, other.Coord)
		}
	}

	closest, found := grid.FindClosest(r.Coord, threatCoords)
	if !found {
		return Result{}, false
	}

	r.SetStatusText("Must flee from %v.", closest)
	return r.fleeFromCoords(closest)
}

// fleeFromCoords picks the known unoccupied cell farthest from the
// threat as the flee target.
func (r *Robot) fleeFromCoords(threat hex.Coord) (Result, bool) {
	known := r.KnownUnoccupiedCells()
	candidates := make([]hex.Coord, 0, len(known))
	for coord := range known {
		candidates = append(candidates, coord)
	}

	target, found := grid.FindFarthest(threat, candidates)
	if !found {
		return Result{}, false
	}

	return Result{Kind: ToFlee, Target: target, Facing: r.Orientation}, true
}

// checkForTargets pursues the closest weaker or equal agent when a
// path to it exists. Only the closest one is tried; if it has no path,
// no pursuit starts.
func (r *Robot) checkForTargets() (Result, bool) {
	var targetCoords []hex.Coord
	for _, other := range r.VisibleOthers {
		if other.Threat == ThreatWeaker || other.Threat == ThreatEqual {
			targetCoords = append(targetCoords, other.Coord)
		}
	}

	closest, found := grid.FindClosest(r.Coord, targetCoords)
	if !found {
		return Result{}, false
	}

	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}
	if _, err := grid.FindPath(start, closest, r.KnownCellMap()); err != nil {
		return Result{}, false
	}

	for _, other := range r.VisibleOthers {
		if other.Coord == closest {
			return Result{Kind: ToPursue, TargetID: other.ID}, true
		}
	}

	return Result{}, false
}

// respondToAttack breaks off whatever the agent is doing and runs. The
// flee coordinate is two cells along the direction the attack came
// from. A pursuing agent is already committed and ignores the hit; the
// tick loop enforces that before calling here.
func (r *Robot) respondToAttack() (Result, bool) {
	target := r.Coord.Step(r.AttackedFrom, 2)
	r.SetStatusText("Running away from attacker at %v.", r.AttackedFrom)

	return Result{Kind: ToFlee, Target: target, Facing: r.Orientation}, true
}
