package robot

import (
	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
)

// initPursue locks onto a target from the latest scan, plans the first
// leg of the chase and records the target's last known position.
func (r *Robot) initPursue(msg Result) Result {
	r.MovementQueue = nil

	if msg.Kind != ToPursue {
		return resFail()
	}

	var targetCoord hex.Coord
	found := false
	for _, other := range r.VisibleOthers {
		if other.ID == msg.TargetID {
			targetCoord = other.Coord
			found = true
		}
	}
	if !found {
		return resFail()
	}

	// the chase path has to include the target's own cell, so it plans
	// over full known memory rather than the unoccupied subset
	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}
	moves, err := grid.FindPath(start, targetCoord, r.KnownCellMap())
	if err != nil {
		return resFail()
	}

	r.MovementQueue = moves
	r.updatePursuitDetails(msg.TargetID, targetCoord)
	r.SetStatusText("Pursuing robot %d.", msg.TargetID)

	return resOk()
}

// runPursue replans toward the target's last known position every
// tick, takes one step, rescans, and fires when the target sits inside
// the weapon envelope. Losing sight degrades to a plain move toward
// the last known position; losing the path gives up entirely.
func (r *Robot) runPursue() Result {
	lastKnown := r.PursuitLast

	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}
	moves, err := grid.FindPath(start, lastKnown, r.KnownCellMap())
	if err != nil {
		return resToNeutral()
	}
	r.MovementQueue = moves

	if !r.UsePower(DrivePowerUsage(r.Modules.DriveSystem)) {
		return resOutOfPower()
	}

	// a failed step is fine, we may be bumping into the target itself
	r.MoveRobot()

	if res := r.scan(); res.Kind == ResultOutOfPower {
		return res
	}

	var latest *VisibleRobot
	for i := range r.VisibleOthers {
		if r.VisibleOthers[i].ID == r.PursuitID {
			latest = &r.VisibleOthers[i]
		}
	}

	if latest == nil {
		// lost sight: head for where it was last seen
		return Result{Kind: ToMove, Target: lastKnown, Facing: hex.RandomDir(r.rng)}
	}

	r.updatePursuitDetails(r.PursuitID, latest.Coord)

	if WeaponInRange(r.Modules.Weapons, r.Coord, r.Orientation, latest.Coord) {
		cost := WeaponPowerUsage(r.Modules.Weapons)
		if r.Power < cost {
			return resOutOfPower()
		}
		r.UsePower(cost)
		r.SetStatusText("Firing on robot %d.", r.PursuitID)

		return Result{Kind: ResultRequest, Request: &Request{
			Kind:     ReqAttack,
			RobotID:  r.ID,
			TargetID: r.PursuitID,
		}}
	}

	return resOk()
}
