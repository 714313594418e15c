package robot

import (
	"log"

	"github.com/aresgrid/ares-engine/internal/hex"
)

// ProcessKind tags the active behavioral state of an agent. Scan is a
// sub-operation invoked by Neutral, Move and Pursue, not a top-level
// state.
type ProcessKind int8

const (
	ProcNeutral ProcessKind = iota
	ProcMove
	ProcCollect
	ProcPursue
	ProcExfil
	ProcExplode
)

func (p ProcessKind) String() string {
	switch p {
	case ProcNeutral:
		return "neutral"
	case ProcMove:
		return "move"
	case ProcCollect:
		return "collect"
	case ProcPursue:
		return "pursue"
	case ProcExfil:
		return "exfil"
	case ProcExplode:
		return "explode"
	}
	return "unknown"
}

// ResultKind tags a process step outcome.
type ResultKind int8

const (
	ResultOk ResultKind = iota
	ResultFail
	ResultOutOfPower
	ResultScanned
	ResultRequest
	ToCollect
	ToExfiltrate
	ToExplode
	ToFlee
	ToMove
	ToNeutral
	ToPursue
)

// Result is the tagged message a process step returns to the dispatch
// loop. Only the fields relevant to the kind are set.
type Result struct {
	Kind ResultKind

	// ToMove / ToFlee
	Target    hex.Coord
	Facing    hex.Dir
	SpinAfter bool

	// ToPursue
	TargetID int64

	// ResultScanned
	Scan *ScanResult

	// ResultRequest
	Request *Request
}

func resOk() Result         { return Result{Kind: ResultOk} }
func resFail() Result       { return Result{Kind: ResultFail} }
func resOutOfPower() Result { return Result{Kind: ResultOutOfPower} }
func resToNeutral() Result  { return Result{Kind: ToNeutral} }

// RequestKind tags a request for world-wide authority. Requests are the
// only channel through which an agent changes state it does not own.
type RequestKind int8

const (
	ReqAttack RequestKind = iota
	ReqExfiltrate
	ReqExplode
	ReqMine
)

// Request asks the engine to arbitrate a cross-agent action.
type Request struct {
	Kind    RequestKind
	RobotID int64

	// ReqAttack
	TargetID int64

	// ReqMine
	ValuableID int64
	Amount     int32

	// ReqExplode
	DropValue int32
}

// ResponseKind tags the engine's answer to a request.
type ResponseKind int8

const (
	RespFail ResponseKind = iota
	RespAttackSuccess
	RespMined
)

// Response carries the engine's authoritative outcome back to the
// requesting agent.
type Response struct {
	Kind ResponseKind

	// RespAttackSuccess
	TargetID int64
	Damage   int32

	// RespMined
	ValuableID int64
	Actual     int32
}

// Tick runs one simulation step for this agent: pre-emptions first,
// then the active process, then transition dispatch. A non-nil Request
// is arbitrated by the engine, which feeds any response back via
// HandleServerResponse before the tick's recharge; exfiltrate and
// explode requests get no response.
func (r *Robot) Tick() *Request {
	if r.HullStrength <= 0 && r.Active != ProcExplode {
		if r.initProcess(ProcExplode, Result{}).Kind == ResultOk {
			r.Active = ProcExplode
		}
	} else if r.AttackedBy != -1 && !r.IsPursuing() {
		if res, responded := r.respondToAttack(); responded {
			r.dispatch(res)
		}
	}

	result := r.runProcess()
	return r.dispatch(result)
}

// dispatch applies a process result: transitions initialize the target
// state and activate it when init succeeds; server requests bubble up
// to the engine; failures reset the agent to neutral.
func (r *Robot) dispatch(res Result) *Request {
	switch res.Kind {
	case ResultRequest:
		return res.Request
	case ResultFail:
		r.Active = ProcNeutral
	case ToCollect:
		r.transition(ProcCollect, res)
	case ToExfiltrate:
		r.transition(ProcExfil, res)
	case ToExplode:
		r.transition(ProcExplode, res)
	case ToFlee, ToMove:
		r.transition(ProcMove, res)
	case ToNeutral:
		r.transition(ProcNeutral, res)
	case ToPursue:
		r.transition(ProcPursue, res)
	}
	return nil
}

func (r *Robot) transition(kind ProcessKind, msg Result) {
	if r.initProcess(kind, msg).Kind != ResultOk {
		log.Printf("[Robot %d] transition to %s failed", r.ID, kind)
		r.Active = ProcNeutral
		return
	}
	r.Active = kind
}

// runProcess steps the active process.
func (r *Robot) runProcess() Result {
	switch r.Active {
	case ProcMove:
		return r.runMove()
	case ProcCollect:
		return r.runCollect()
	case ProcPursue:
		return r.runPursue()
	case ProcExfil:
		return r.runExfil()
	case ProcExplode:
		return r.runExplode()
	default:
		return r.runNeutral()
	}
}

// initProcess performs the transition side effects of entering a state.
func (r *Robot) initProcess(kind ProcessKind, msg Result) Result {
	switch kind {
	case ProcMove:
		return r.initMove(msg)
	case ProcCollect:
		return r.initCollect()
	case ProcPursue:
		return r.initPursue(msg)
	case ProcExfil:
		return r.initExfil()
	case ProcExplode:
		return r.initExplode()
	default:
		return resOk()
	}
}

// HandleServerResponse feeds an engine response back into the agent.
func (r *Robot) HandleServerResponse(resp Response) {
	switch resp.Kind {
	case RespMined:
		r.SuccessfullyMined(resp.Actual)
		r.SetStatusText("Mined %d (%d/%d aboard).", resp.Actual, r.ValInventory, r.MaxValInventory)
	case RespAttackSuccess:
		r.Attacked = resp.TargetID
		r.DamageDone = resp.Damage
		r.SetStatusText("Hit robot %d for %d damage.", resp.TargetID, resp.Damage)
	case RespFail:
		r.Active = ProcNeutral
	}
}
