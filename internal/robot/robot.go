package robot

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
)

// Recorder receives best-effort write-through of agent state. A nil
// recorder disables persistence; failures inside a recorder are its own
// problem and never surface here.
type Recorder interface {
	SaveRobot(*Robot)
	SaveRobotModules(*Robot)
	SaveKnownCells(robotID int64, cells []KnownCell)
}

// KnownCell is one entry of an agent's bounded cell memory.
type KnownCell struct {
	CellID        int32
	Coord         hex.Coord
	DiscoveryTime time.Time
}

// ThreatLevel classifies another agent's weapon strength relative to
// our own, as perceived through the scanner.
type ThreatLevel int8

const (
	ThreatUnknown ThreatLevel = iota
	ThreatWeaker
	ThreatEqual
	ThreatStronger
)

func (t ThreatLevel) String() string {
	switch t {
	case ThreatWeaker:
		return "weaker"
	case ThreatEqual:
		return "equal"
	case ThreatStronger:
		return "stronger"
	}
	return "unknown"
}

// VisibleRobot is another agent sighted by the most recent scan.
type VisibleRobot struct {
	ID     int64
	Coord  hex.Coord
	Threat ThreatLevel
}

// VisibleValuable is a pile sighted by the most recent scan.
type VisibleValuable struct {
	ID    int64
	Coord hex.Coord
}

// Robot is one autonomous agent. The engine owns the set of robots and
// ticks them in id order; a robot reads the shared grid during its tick
// but all index writes go through the grid API on the engine's single
// thread.
type Robot struct {
	ID          int64
	Name        string
	Owner       int32
	Affiliation int32

	Coord       hex.Coord
	Orientation hex.Dir

	Power        int32
	MaxPower     int32
	RechargeRate int32

	HullStrength    int32
	MaxHullStrength int32

	MinedAmount     int32
	ValInventory    int32
	MaxValInventory int32

	ExfilCountdown     int32
	HibernateCountdown int32

	StatusText string

	PursuitID   int64
	PursuitLast hex.Coord

	AttackedBy   int64
	AttackedFrom hex.Dir
	Attacked     int64
	DamageDone   int32

	Modules Modules

	KnownCells       []KnownCell
	VisibleOthers    []VisibleRobot
	VisibleValuables []VisibleValuable

	Active        ProcessKind
	MovementQueue []grid.MoveStep

	Destroyed bool

	world *grid.Grid
	rec   Recorder
	rng   *rand.Rand
}

// New builds a robot from a rolled module set, at full power and hull.
func New(id int64, name string, coord hex.Coord, orientation hex.Dir, modules Modules, world *grid.Grid, rec Recorder, rng *rand.Rand) *Robot {
	r := &Robot{
		ID:              id,
		Name:            name,
		Coord:           coord,
		Orientation:     orientation,
		Power:           PowerMax(modules.Power),
		MaxPower:        PowerMax(modules.Power),
		RechargeRate:    PowerRecharge(modules.Power),
		HullStrength:    HullMaxStrength(modules.Hull),
		MaxHullStrength: HullMaxStrength(modules.Hull),
		MaxValInventory: CollectorMax(modules.Collector),
		PursuitID:       -1,
		AttackedBy:      -1,
		Attacked:        -1,
		Modules:         modules,
		Active:          ProcNeutral,
		world:           world,
		rec:             rec,
		rng:             rng,
	}

	r.save()
	if rec != nil {
		rec.SaveRobotModules(r)
	}
	return r
}

// Grid exposes the shared world for read-only queries.
func (r *Robot) Grid() *grid.Grid {
	return r.world
}

func (r *Robot) save() {
	if r.rec != nil {
		r.rec.SaveRobot(r)
	}
}

// UsePower spends n power, failing without side effects when the
// budget is short.
func (r *Robot) UsePower(n int32) bool {
	if r.Power < n {
		return false
	}
	r.Power -= n
	r.save()
	return true
}

// RechargePower adds the recharge rate, clamped to capacity. The tick
// loop applies it after every process run.
func (r *Robot) RechargePower() {
	r.Power += r.RechargeRate
	if r.Power > r.MaxPower {
		r.Power = r.MaxPower
	}
	r.save()
}

// UpdateHullStrength applies damage (negative) or repair (positive)
// with no clamp; the tick loop detects death when strength drops to
// zero or below.
func (r *Robot) UpdateHullStrength(delta int32) {
	r.HullStrength += delta
	r.save()
}

// SetStatusText updates the free-form status line observers see.
func (r *Robot) SetStatusText(format string, args ...any) {
	r.StatusText = fmt.Sprintf(format, args...)
	r.save()
}

// RecordAttack notes who hit us and from which direction, for the next
// tick's flee decision.
func (r *Robot) RecordAttack(attackerID int64, from hex.Dir) {
	r.AttackedBy = attackerID
	r.AttackedFrom = from
	r.save()
}

// ClearAttackInfo resets the attacker and attack-result trios at the
// end of a tick.
func (r *Robot) ClearAttackInfo() {
	r.AttackedBy = -1
	r.AttackedFrom = hex.Dir0
	r.Attacked = -1
	r.DamageDone = 0
	r.save()
}

// IsPursuing reports whether the agent is committed to a chase.
func (r *Robot) IsPursuing() bool {
	return r.Active == ProcPursue
}

func (r *Robot) updatePursuitDetails(targetID int64, coord hex.Coord) {
	r.PursuitID = targetID
	r.PursuitLast = coord
	r.save()
}

// UpdateKnownCells merges freshly scanned cells into the bounded
// memory. Entries are keyed by cell id: a rescan refreshes the
// discovery time instead of duplicating. Overflow evicts the oldest
// discoveries first.
func (r *Robot) UpdateKnownCells(scanned []KnownCell) {
	byID := make(map[int32]int, len(r.KnownCells))
	for i, kc := range r.KnownCells {
		byID[kc.CellID] = i
	}

	for _, kc := range scanned {
		if i, ok := byID[kc.CellID]; ok {
			r.KnownCells[i].DiscoveryTime = kc.DiscoveryTime
			continue
		}
		byID[kc.CellID] = len(r.KnownCells)
		r.KnownCells = append(r.KnownCells, kc)
	}

	limit := MemorySize(r.Modules.Memory)
	if len(r.KnownCells) > limit {
		sort.SliceStable(r.KnownCells, func(i, j int) bool {
			return r.KnownCells[i].DiscoveryTime.Before(r.KnownCells[j].DiscoveryTime)
		})
		r.KnownCells = r.KnownCells[len(r.KnownCells)-limit:]
	}

	if r.rec != nil {
		r.rec.SaveKnownCells(r.ID, r.KnownCells)
	}
}

// KnownCellMap resolves the memory entries to full cells.
func (r *Robot) KnownCellMap() map[hex.Coord]*grid.Cell {
	cells := make(map[hex.Coord]*grid.Cell, len(r.KnownCells))
	for _, kc := range r.KnownCells {
		if cell := r.world.CellAt(kc.Coord); cell != nil {
			cells[kc.Coord] = cell
		}
	}
	return cells
}

// KnownUnoccupiedCells is the path-planning set: known cells minus any
// coordinate another visible agent stands on.
func (r *Robot) KnownUnoccupiedCells() map[hex.Coord]*grid.Cell {
	cells := r.KnownCellMap()
	for _, other := range r.VisibleOthers {
		delete(cells, other.Coord)
	}
	return cells
}

// MoveRobot pops and performs the head of the movement queue. Forward
// fails against a wall or an occupied neighbor; the step is consumed
// either way.
func (r *Robot) MoveRobot() bool {
	if len(r.MovementQueue) == 0 {
		return false
	}

	step := r.MovementQueue[0]
	r.MovementQueue = r.MovementQueue[1:]

	switch step {
	case grid.Left:
		r.Orientation = r.Orientation.Left()
	case grid.Right:
		r.Orientation = r.Orientation.Right()
	case grid.Forward:
		cell := r.world.CellAt(r.Coord)
		if cell == nil || cell.Edge(r.Orientation) == grid.Wall {
			return false
		}
		next := r.Coord.Step(r.Orientation, 1)
		if _, occupied := r.world.RobotIDAt(next); occupied {
			return false
		}
		r.Coord = next
		r.world.UpdateRobotLoc(r.ID, next)
	}

	r.save()
	return true
}

// SuccessfullyMined applies the engine's confirmation of a mine
// request to the inventory and the per-run counter.
func (r *Robot) SuccessfullyMined(actual int32) {
	r.MinedAmount += actual
	r.ValInventory += actual
	if r.ValInventory > r.MaxValInventory {
		r.ValInventory = r.MaxValInventory
	}
	r.save()
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
