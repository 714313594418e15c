package robot

// initExfil lights the extraction beacon and starts its countdown.
func (r *Robot) initExfil() Result {
	r.ExfilCountdown = ExfilDelay(r.Modules.ExfilBeacon)
	r.SetStatusText("Exfiltrating in %d ticks.", r.ExfilCountdown)
	r.save()
	return resOk()
}

// runExfil counts down; at zero the agent marks itself gone and asks
// the engine to pull it from the world. Terminal.
func (r *Robot) runExfil() Result {
	if r.ExfilCountdown > 0 {
		r.ExfilCountdown--
		r.save()
	}
	r.SetStatusText("Exfiltrating in %d ticks.", r.ExfilCountdown)

	if r.ExfilCountdown > 0 {
		return resOk()
	}

	r.Destroyed = true
	return Result{Kind: ResultRequest, Request: &Request{
		Kind:    ReqExfiltrate,
		RobotID: r.ID,
	}}
}
