package robot

import "log"

// initExplode has no side effects beyond the record of the death.
func (r *Robot) initExplode() Result {
	log.Printf("[Robot %d] hull gone, exploding", r.ID)
	return resOk()
}

// runExplode drops everything the agent was worth — its inventory plus
// its power plant's capacity — and asks the engine to remove it.
// Terminal.
func (r *Robot) runExplode() Result {
	r.SetStatusText("I'm dead!")

	drop := r.ValInventory + r.MaxPower
	r.Destroyed = true

	return Result{Kind: ResultRequest, Request: &Request{
		Kind:      ReqExplode,
		RobotID:   r.ID,
		DropValue: drop,
	}}
}
