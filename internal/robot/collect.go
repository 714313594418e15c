package robot

// initCollect starts a fresh mining run.
func (r *Robot) initCollect() Result {
	r.MinedAmount = 0
	r.SetStatusText("Mining.")
	r.save()
	return resOk()
}

// runCollect mines the pile under the agent one tick at a time. The
// run ends when the per-run cap (ten ticks worth of collection) is
// reached, the inventory fills, or the pile is gone. The actual
// extraction is arbitrated by the engine through a Mine request.
func (r *Robot) runCollect() Result {
	rate := CollectorRate(r.Modules.Collector)

	if r.MinedAmount >= rate*10 {
		r.SetStatusText("Collected the maximum for this run.")
		return resToNeutral()
	}

	if r.ValInventory >= r.MaxValInventory {
		r.SetStatusText("Inventory full.")
		return resToNeutral()
	}

	amount := rate
	if room := r.MaxValInventory - r.ValInventory; room < amount {
		amount = room
	}

	valuableID, present := r.world.ValuableIDAt(r.Coord)
	if !present {
		return resToNeutral()
	}

	return Result{Kind: ResultRequest, Request: &Request{
		Kind:       ReqMine,
		RobotID:    r.ID,
		ValuableID: valuableID,
		Amount:     amount,
	}}
}
