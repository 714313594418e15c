// Package models defines the wire format shared between the engine and
// its observers. Everything here is a clone of engine state: observers
// never hold references back into the world.
package models

// Message types, carried in the Type field of every broadcast frame.
const (
	TypeInitializerData  = "InitializerData"
	TypeRobotAttacked    = "RobotAttacked"
	TypeRobotMoved       = "RobotMoved"
	TypeRobotSpawned     = "RobotSpawned"
	TypeRobotDestroyed   = "RobotDestroyed"
	TypeRobotExfiltrated = "RobotExfiltrated"
	TypeValuableCreated  = "ValuableCreated"
	TypeValuableUpdated  = "ValuableUpdated"
	TypeValuableDepleted = "ValuableDepleted"
)

// CellState is the observer view of one grid cell. Edges are indexed
// by direction/60 and encoded 0=open, 1=wall.
type CellState struct {
	ID    int32    `json:"id"`
	Q     int32    `json:"q"`
	R     int32    `json:"r"`
	Edges [6]int16 `json:"edges"`
}

// RobotState is the observer view of one robot.
type RobotState struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Q               int32  `json:"q"`
	R               int32  `json:"r"`
	Orientation     int16  `json:"orientation"`
	Power           int32  `json:"power"`
	MaxPower        int32  `json:"maxPower"`
	HullStrength    int32  `json:"hullStrength"`
	MaxHullStrength int32  `json:"maxHullStrength"`
	ValInventory    int32  `json:"valInventory"`
	MaxValInventory int32  `json:"maxValInventory"`
	ExfilCountdown  int32  `json:"exfilCountdown"`
	StatusText      string `json:"statusText"`
	ActiveProcess   string `json:"activeProcess"`
}

// ValuableState is the observer view of one valuable pile.
type ValuableState struct {
	ID     int64  `json:"id"`
	Q      int32  `json:"q"`
	R      int32  `json:"r"`
	Kind   string `json:"kind"`
	Amount int32  `json:"amount"`
}

// Message is the tagged union broadcast to observers. Only the fields
// relevant to the Type are populated.
type Message struct {
	Type string `json:"type"`

	// InitializerData; ClientID routes the snapshot to the observer
	// that just connected and is not part of the wire payload.
	ClientID  string          `json:"-"`
	ID        string          `json:"id,omitempty"`
	Cells     []CellState     `json:"cells,omitempty"`
	Robots    []RobotState    `json:"robots,omitempty"`
	Valuables []ValuableState `json:"valuables,omitempty"`

	// RobotAttacked
	AttackerID int64 `json:"attackerId,omitempty"`
	TargetID   int64 `json:"targetId,omitempty"`

	// RobotMoved / RobotSpawned
	Robot *RobotState `json:"robot,omitempty"`

	// RobotDestroyed / RobotExfiltrated
	RobotID int64 `json:"robotId,omitempty"`

	// ValuableCreated / ValuableUpdated
	Valuable *ValuableState `json:"valuable,omitempty"`

	// ValuableDepleted
	ValuableID int64 `json:"valuableId,omitempty"`
}
