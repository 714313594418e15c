package robot

import (
	"time"

	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
)

// ScanResult is what one scanner sweep sees.
type ScanResult struct {
	ScannedCells     []hex.Coord
	VisibleRobots    []VisibleRobot
	VisibleValuables []VisibleValuable
}

// scan sweeps the scanner's field of view. Cells pass into known
// memory only when line of sight exists: the cell must be reachable
// from the agent's position through open edges within the scanned
// subset, in no more steps than its ring distance. Sighted robots are
// classified by threat, sighted valuables recorded as-is.
func (r *Robot) scan() Result {
	if !r.UsePower(ScannerPowerUsage(r.Modules.Scanner)) {
		return resOutOfPower()
	}

	fov := ScannerFOV(r.Modules.Scanner)
	reach := ScannerRange(r.Modules.Scanner)

	cells := r.world.GetCells(r.Coord, r.Orientation, fov, reach)

	subset := make(map[hex.Coord]*grid.Cell, len(cells))
	for _, cell := range cells {
		subset[cell.Coord] = cell
	}

	now := time.Now()
	var scanned []KnownCell
	result := ScanResult{}

	for _, cell := range cells {
		dist := r.Coord.DistanceTo(cell.Coord)
		if dist != 0 && !grid.IsReachable(r.Coord, cell.Coord, subset, dist) {
			continue
		}

		scanned = append(scanned, KnownCell{
			CellID:        cell.ID,
			Coord:         cell.Coord,
			DiscoveryTime: now,
		})
		result.ScannedCells = append(result.ScannedCells, cell.Coord)

		if otherID, occupied := r.world.RobotIDAt(cell.Coord); occupied && otherID != r.ID {
			result.VisibleRobots = append(result.VisibleRobots, VisibleRobot{
				ID:     otherID,
				Coord:  cell.Coord,
				Threat: r.classifyThreat(otherID),
			})
		}

		if valID, present := r.world.ValuableIDAt(cell.Coord); present {
			result.VisibleValuables = append(result.VisibleValuables, VisibleValuable{
				ID:    valID,
				Coord: cell.Coord,
			})
		}
	}

	r.UpdateKnownCells(scanned)
	r.VisibleOthers = result.VisibleRobots
	r.VisibleValuables = result.VisibleValuables

	return Result{Kind: ResultScanned, Scan: &result}
}

// classifyThreat compares the other agent's indexed weapon strength to
// our own. A missing index entry, or a scanner miss drawn against the
// module's accuracy, yields Unknown — which flee logic treats as
// Stronger.
func (r *Robot) classifyThreat(otherID int64) ThreatLevel {
	strength, indexed := r.world.RobotStrength(otherID)
	if !indexed {
		return ThreatUnknown
	}

	if r.rng.Int31n(100) >= ScannerAccuracy(r.Modules.Scanner) {
		return ThreatUnknown
	}

	own := WeaponMaxDamage(r.Modules.Weapons)
	switch {
	case strength > own:
		return ThreatStronger
	case strength < own:
		return ThreatWeaker
	default:
		return ThreatEqual
	}
}
