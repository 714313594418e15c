package robot

import (
	"github.com/aresgrid/ares-engine/internal/grid"
)

// initMove plans the movement queue for a ToMove or ToFlee message.
// A target equal to our own cell compiles to just the spin that lines
// up the requested final orientation; anything else is a flood-fill
// path through known unoccupied cells.
func (r *Robot) initMove(msg Result) Result {
	r.MovementQueue = nil

	if msg.Kind != ToMove && msg.Kind != ToFlee {
		return resFail()
	}

	if msg.Kind == ToFlee {
		r.SetStatusText("Fleeing to %v.", msg.Target)
	}

	if msg.Target == r.Coord {
		r.MovementQueue = grid.FindSpin(r.Orientation, msg.Facing)
		return resOk()
	}

	start := grid.CoordDir{Coord: r.Coord, Dir: r.Orientation}
	moves, err := grid.FindPath(start, msg.Target, r.KnownUnoccupiedCells())
	if err != nil {
		return resFail()
	}

	if msg.SpinAfter {
		final := r.Orientation
		for _, step := range moves {
			switch step {
			case grid.Left:
				final = final.Left()
			case grid.Right:
				final = final.Right()
			}
		}
		moves = append(moves, grid.FindSpin(final, final.Opposite())...)
	}

	r.MovementQueue = moves
	return resOk()
}

// runMove consumes drive power, performs one queued step, scans to
// keep memory fresh, and reacts to anything the scan surfaced. An
// empty queue hands control back to Neutral.
func (r *Robot) runMove() Result {
	if !r.UsePower(DrivePowerUsage(r.Modules.DriveSystem)) {
		return resOutOfPower()
	}

	r.MoveRobot()

	if res := r.scan(); res.Kind == ResultOutOfPower {
		return res
	}

	if res, reacted := r.respondToOthers(); reacted {
		return res
	}

	if len(r.MovementQueue) == 0 {
		return resToNeutral()
	}
	return resOk()
}
