package engine

import (
	"bufio"
	"context"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
	"github.com/aresgrid/ares-engine/internal/robot"
	"github.com/aresgrid/ares-engine/pkg/models"
)

// Store is the persistence boundary. Every method is best-effort: the
// in-memory world is the truth and a write failure never aborts a
// tick. A nil Store runs the engine purely in memory.
type Store interface {
	robot.Recorder
	DeleteRobot(id int64)
	SaveValuable(*Valuable)
	DeleteValuable(id int64)
}

// Broadcaster is the observer fan-out boundary. Broadcast clones go to
// every connected observer; SendTo targets the initializer snapshot at
// a single new client.
type Broadcaster interface {
	Broadcast(models.Message)
	SendTo(clientID string, msg models.Message)
	DrainNewClients() []string
}

// Config tunes one engine run.
type Config struct {
	MaxBots      int
	MaxValuables int
	NoKillDrops  bool
	Debug        bool
	TickInterval time.Duration
	Seed         int64
}

// Engine owns the world: the grid indices, every robot and valuable,
// and the single-threaded tick loop that arbitrates all cross-agent
// actions.
type Engine struct {
	cfg   Config
	world *grid.Grid
	store Store
	hub   Broadcaster
	rng   *rand.Rand

	robots    map[int64]*robot.Robot
	valuables map[int64]*Valuable

	tick           uint64
	nextRobotID    int64
	nextValuableID int64

	stdin *bufio.Reader
}

// New assembles an engine around an already generated or rehydrated
// world. store and hub may be nil (memory-only run, no observers).
func New(cfg Config, world *grid.Grid, store Store, hub Broadcaster) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	return &Engine{
		cfg:         cfg,
		world:       world,
		store:       store,
		hub:         hub,
		rng:         rand.New(rand.NewSource(seed)),
		robots:      make(map[int64]*robot.Robot),
		valuables:   make(map[int64]*Valuable),
		nextRobotID: 1, nextValuableID: 1,
		stdin: bufio.NewReader(os.Stdin),
	}
}

// AdoptRobot re-homes a rehydrated robot into the engine and its
// indices. Used at startup when the store holds a prior world.
func (e *Engine) AdoptRobot(r *robot.Robot) {
	e.robots[r.ID] = r
	e.world.AddRobot(r.ID, r.Coord, robot.WeaponMaxDamage(r.Modules.Weapons))
	if r.ID >= e.nextRobotID {
		e.nextRobotID = r.ID + 1
	}
}

// AdoptValuable re-homes a rehydrated valuable.
func (e *Engine) AdoptValuable(v *Valuable) {
	e.valuables[v.ID] = v
	e.world.AddValuable(v.ID, v.Coord)
	if v.ID >= e.nextValuableID {
		e.nextValuableID = v.ID + 1
	}
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// Population returns the current robot and valuable counts.
func (e *Engine) Population() (robots, valuables int) {
	return len(e.robots), len(e.valuables)
}

// Run drives the tick loop at the configured rate until the context is
// cancelled. An overrunning tick is followed immediately by the next;
// there are no catch-up bursts.
func (e *Engine) Run(ctx context.Context) {
	log.Printf("[Engine] tick loop starting (interval %s, max bots %d, max valuables %d)",
		e.cfg.TickInterval, e.cfg.MaxBots, e.cfg.MaxValuables)

	for {
		started := time.Now()
		e.Step()

		if e.cfg.Debug {
			log.Println("[Engine] debug: press enter for next tick")
			if _, err := e.stdin.ReadString('\n'); err != nil {
				log.Printf("[Engine] stdin closed, leaving debug stepping: %v", err)
				e.cfg.Debug = false
			}
		}

		delay := e.cfg.TickInterval - time.Since(started)
		if delay < 0 {
			delay = 0
		}

		select {
		case <-ctx.Done():
			log.Println("[Engine] tick loop stopping")
			return
		case <-time.After(delay):
		}
	}
}

// Step advances the world by exactly one tick: top up populations,
// tick every robot in id order, arbitrate their requests, sweep
// depleted valuables, and service observers.
func (e *Engine) Step() {
	e.tick++

	e.spawnRobots()
	e.spawnValuables()

	ids := make([]int64, 0, len(e.robots))
	for id := range e.robots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		r, alive := e.robots[id]
		if !alive {
			continue
		}

		if req := r.Tick(); req != nil {
			if resp, answered := e.handleRequest(req); answered {
				r.HandleServerResponse(resp)
			}
		}

		if _, alive := e.robots[id]; !alive {
			continue
		}
		r.RechargePower()
		r.ClearAttackInfo()
	}

	e.sweepValuables()
	e.serveObservers()
}

// spawnRobots tops the population up to the configured cap. It runs
// before Step snapshots the robot ids, so new robots act in the tick
// that spawned them.
func (e *Engine) spawnRobots() {
	for len(e.robots) < e.cfg.MaxBots {
		coord, ok := e.world.RandomOpenCell(e.rng)
		if !ok {
			log.Println("[Engine] no open cell available for a robot spawn")
			return
		}

		id := e.nextRobotID
		e.nextRobotID++

		modules := robot.RandomModules(e.rng)
		name := uuid.NewString()[:8]

		r := robot.New(id, name, coord, hex.RandomDir(e.rng), modules, e.world, e.recorder(), e.rng)
		e.robots[id] = r
		e.world.AddRobot(id, coord, robot.WeaponMaxDamage(modules.Weapons))

		log.Printf("[Engine] spawned robot %d (%s) at %v", id, name, coord)
		e.broadcast(models.Message{Type: models.TypeRobotSpawned, Robot: robotState(r)})
	}
}

// spawnValuables tops the pile count up to the configured cap, with a
// random amount in [50, 5000).
func (e *Engine) spawnValuables() {
	for len(e.valuables) < e.cfg.MaxValuables {
		coord, ok := e.world.RandomOpenCell(e.rng)
		if !ok {
			log.Println("[Engine] no open cell available for a valuable spawn")
			return
		}

		id := e.nextValuableID
		e.nextValuableID++

		v := &Valuable{
			ID:     id,
			Coord:  coord,
			Kind:   "basic",
			Amount: 50 + e.rng.Int31n(MaxValuableAmount-50),
		}
		e.valuables[id] = v
		e.world.AddValuable(id, coord)

		if e.store != nil {
			e.store.SaveValuable(v)
		}
		e.broadcast(models.Message{Type: models.TypeValuableCreated, Valuable: valuableState(v)})
	}
}

// handleRequest arbitrates a cross-agent action. The second return is
// false when the request kind carries no response.
func (e *Engine) handleRequest(req *robot.Request) (robot.Response, bool) {
	switch req.Kind {
	case robot.ReqAttack:
		return e.handleAttack(req)
	case robot.ReqExfiltrate:
		e.handleExfiltrate(req)
		return robot.Response{}, false
	case robot.ReqExplode:
		e.handleExplode(req)
		return robot.Response{}, false
	case robot.ReqMine:
		return e.handleMine(req)
	}
	return robot.Response{Kind: robot.RespFail}, true
}

// handleAttack rolls uniform damage from the attacker's weapon, tells
// the target where the hit came from, and applies the hull damage.
// Death is not resolved here; the target's own next tick detects it.
func (e *Engine) handleAttack(req *robot.Request) (robot.Response, bool) {
	attacker, ok := e.robots[req.RobotID]
	if !ok {
		return robot.Response{}, false
	}
	target, ok := e.robots[req.TargetID]
	if !ok {
		return robot.Response{Kind: robot.RespFail}, true
	}

	minDmg := robot.WeaponMinDamage(attacker.Modules.Weapons)
	maxDmg := robot.WeaponMaxDamage(attacker.Modules.Weapons)
	damage := minDmg
	if maxDmg > minDmg {
		damage += e.rng.Int31n(maxDmg - minDmg + 1)
	}

	attackedFrom := hex.DirTowards(target.Coord, attacker.Coord)
	target.RecordAttack(attacker.ID, attackedFrom)
	target.UpdateHullStrength(-damage)

	log.Printf("[Engine] robot %d hit robot %d for %d", attacker.ID, target.ID, damage)
	e.broadcast(models.Message{
		Type:       models.TypeRobotAttacked,
		AttackerID: attacker.ID,
		TargetID:   target.ID,
	})

	return robot.Response{Kind: robot.RespAttackSuccess, TargetID: target.ID, Damage: damage}, true
}

// handleExfiltrate pulls a robot cleanly out of the world.
func (e *Engine) handleExfiltrate(req *robot.Request) {
	r, ok := e.robots[req.RobotID]
	if !ok {
		return
	}

	e.removeRobot(r)
	log.Printf("[Engine] robot %d exfiltrated", r.ID)
	e.broadcast(models.Message{Type: models.TypeRobotExfiltrated, RobotID: r.ID})
}

// handleExplode removes the robot and, unless kill drops are disabled,
// leaves a pile worth the request's drop value at the wreck site. No
// pile is left for a non-positive drop or where a pile already lies.
func (e *Engine) handleExplode(req *robot.Request) {
	r, ok := e.robots[req.RobotID]
	if !ok {
		return
	}

	coord := r.Coord
	e.removeRobot(r)
	log.Printf("[Engine] robot %d destroyed", r.ID)
	e.broadcast(models.Message{Type: models.TypeRobotDestroyed, RobotID: r.ID})

	if e.cfg.NoKillDrops || req.DropValue <= 0 {
		return
	}
	if _, occupied := e.world.ValuableIDAt(coord); occupied {
		return
	}

	id := e.nextValuableID
	e.nextValuableID++

	v := &Valuable{ID: id, Coord: coord, Kind: "basic"}
	v.AddToAmount(req.DropValue)
	e.valuables[id] = v
	e.world.AddValuable(id, coord)

	if e.store != nil {
		e.store.SaveValuable(v)
	}
	e.broadcast(models.Message{Type: models.TypeValuableCreated, Valuable: valuableState(v)})
}

// handleMine extracts from a pile, capped at what the pile holds.
func (e *Engine) handleMine(req *robot.Request) (robot.Response, bool) {
	v, ok := e.valuables[req.ValuableID]
	if !ok {
		return robot.Response{Kind: robot.RespFail}, true
	}

	actual := v.Mine(req.Amount)
	if e.store != nil {
		e.store.SaveValuable(v)
	}
	e.broadcast(models.Message{Type: models.TypeValuableUpdated, Valuable: valuableState(v)})

	return robot.Response{Kind: robot.RespMined, ValuableID: v.ID, Actual: actual}, true
}

func (e *Engine) removeRobot(r *robot.Robot) {
	e.world.RemoveRobotByID(r.ID)
	delete(e.robots, r.ID)
	if e.store != nil {
		e.store.DeleteRobot(r.ID)
	}
}

// sweepValuables destroys piles mined down to nothing.
func (e *Engine) sweepValuables() {
	for id, v := range e.valuables {
		if v.Amount > 0 {
			continue
		}

		e.world.RemoveValuableByLoc(v.Coord)
		delete(e.valuables, id)
		if e.store != nil {
			e.store.DeleteValuable(id)
		}

		log.Printf("[Engine] valuable %d depleted", id)
		e.broadcast(models.Message{Type: models.TypeValuableDepleted, ValuableID: id})
	}
}

// serveObservers sends the full snapshot to observers that connected
// since the last tick, then refreshes everyone with per-robot moved
// deltas.
func (e *Engine) serveObservers() {
	if e.hub == nil {
		return
	}

	for _, clientID := range e.hub.DrainNewClients() {
		snapshot := e.Snapshot()
		snapshot.ClientID = clientID
		snapshot.ID = clientID
		e.hub.SendTo(clientID, snapshot)
	}

	for _, id := range sortedRobotIDs(e.robots) {
		e.broadcast(models.Message{Type: models.TypeRobotMoved, Robot: robotState(e.robots[id])})
	}
}

func (e *Engine) broadcast(msg models.Message) {
	if e.hub != nil {
		e.hub.Broadcast(msg)
	}
}

func (e *Engine) recorder() robot.Recorder {
	if e.store == nil {
		return nil
	}
	return e.store
}

func sortedRobotIDs(robots map[int64]*robot.Robot) []int64 {
	ids := make([]int64, 0, len(robots))
	for id := range robots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
