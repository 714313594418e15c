package engine

import (
	"sort"

	"github.com/aresgrid/ares-engine/internal/robot"
	"github.com/aresgrid/ares-engine/pkg/models"
)

// Snapshot clones the whole world into an initializer message for a
// newly connected observer.
func (e *Engine) Snapshot() models.Message {
	msg := models.Message{Type: models.TypeInitializerData}

	msg.Cells = make([]models.CellState, 0, len(e.world.Cells))
	for _, cell := range e.world.Cells {
		var edges [6]int16
		for i, edge := range cell.Edges() {
			edges[i] = int16(edge)
		}
		msg.Cells = append(msg.Cells, models.CellState{
			ID:    cell.ID,
			Q:     cell.Coord.Q,
			R:     cell.Coord.R,
			Edges: edges,
		})
	}
	sort.Slice(msg.Cells, func(i, j int) bool { return msg.Cells[i].ID < msg.Cells[j].ID })

	for _, id := range sortedRobotIDs(e.robots) {
		msg.Robots = append(msg.Robots, *robotState(e.robots[id]))
	}

	valuableIDs := make([]int64, 0, len(e.valuables))
	for id := range e.valuables {
		valuableIDs = append(valuableIDs, id)
	}
	sort.Slice(valuableIDs, func(i, j int) bool { return valuableIDs[i] < valuableIDs[j] })
	for _, id := range valuableIDs {
		msg.Valuables = append(msg.Valuables, *valuableState(e.valuables[id]))
	}

	return msg
}

func robotState(r *robot.Robot) *models.RobotState {
	return &models.RobotState{
		ID:              r.ID,
		Name:            r.Name,
		Q:               r.Coord.Q,
		R:               r.Coord.R,
		Orientation:     int16(r.Orientation),
		Power:           r.Power,
		MaxPower:        r.MaxPower,
		HullStrength:    r.HullStrength,
		MaxHullStrength: r.MaxHullStrength,
		ValInventory:    r.ValInventory,
		MaxValInventory: r.MaxValInventory,
		ExfilCountdown:  r.ExfilCountdown,
		StatusText:      r.StatusText,
		ActiveProcess:   r.Active.String(),
	}
}

func valuableState(v *Valuable) *models.ValuableState {
	return &models.ValuableState{
		ID:     v.ID,
		Q:      v.Coord.Q,
		R:      v.Coord.R,
		Kind:   v.Kind,
		Amount: v.Amount,
	}
}
