package engine

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
	"github.com/aresgrid/ares-engine/internal/robot"
	"github.com/aresgrid/ares-engine/pkg/models"
)

// openWorld builds a fully carved disc: every interior edge open,
// perimeter closed.
func openWorld(radius int32) *grid.Grid {
	cells := make(map[hex.Coord]*grid.Cell)
	origin := hex.Coord{}
	var id int32

	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			coord := hex.Coord{Q: q, R: r}
			if origin.DistanceTo(coord) <= radius {
				cells[coord] = grid.NewCell(id, coord)
				id++
			}
		}
	}

	for coord, cell := range cells {
		var edges [6]grid.EdgeType
		for _, dir := range hex.Dirs {
			if _, ok := cells[coord.Step(dir, 1)]; ok {
				edges[int(dir)/60] = grid.Open
			} else {
				edges[int(dir)/60] = grid.Wall
			}
		}
		cell.SetEdges(edges)
	}

	return grid.New(cells)
}

type fakeHub struct {
	messages []models.Message
	targeted map[string][]models.Message
	pending  []string
}

func newFakeHub() *fakeHub {
	return &fakeHub{targeted: make(map[string][]models.Message)}
}

func (h *fakeHub) Broadcast(msg models.Message) {
	h.messages = append(h.messages, msg)
}

func (h *fakeHub) SendTo(clientID string, msg models.Message) {
	h.targeted[clientID] = append(h.targeted[clientID], msg)
}

func (h *fakeHub) DrainNewClients() []string {
	pending := h.pending
	h.pending = nil
	return pending
}

func (h *fakeHub) countType(msgType string) int {
	n := 0
	for _, m := range h.messages {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

func testEngine(t *testing.T, cfg Config) (*Engine, *fakeHub) {
	t.Helper()

	world, err := grid.Generate(8, rand.New(rand.NewSource(21)))
	if err != nil {
		t.Fatal(err)
	}

	hub := newFakeHub()
	cfg.Seed = 99
	return New(cfg, world, nil, hub), hub
}

func adoptTestRobot(e *Engine, id int64, coord hex.Coord, weapons string) *robot.Robot {
	modules := robot.Modules{
		Collector:   "basic",
		DriveSystem: "basic",
		ExfilBeacon: "basic",
		Hull:        "basic",
		Memory:      "basic",
		Power:       "basic",
		Scanner:     "basic",
		Weapons:     weapons,
	}
	r := robot.New(id, "test", coord, hex.Dir0, modules, e.world, nil, e.rng)
	e.AdoptRobot(r)
	return r
}

func TestMineArbitration(t *testing.T) {
	Convey("Given a pile holding 30 units", t, func() {
		e, hub := testEngine(t, Config{})
		coord, _ := e.world.RandomOpenCell(e.rng)
		e.AdoptValuable(&Valuable{ID: 7, Coord: coord, Kind: "basic", Amount: 30})

		Convey("An oversized mine request returns only what the pile holds", func() {
			resp, answered := e.handleMine(&robot.Request{Kind: robot.ReqMine, ValuableID: 7, Amount: 100})

			So(answered, ShouldBeTrue)
			So(resp.Kind, ShouldEqual, robot.RespMined)
			So(resp.Actual, ShouldEqual, 30)
			So(e.valuables[int64(7)].Amount, ShouldEqual, 0)

			Convey("The sweep then destroys the pile and broadcasts depletion once", func() {
				e.sweepValuables()

				So(e.valuables, ShouldNotContainKey, int64(7))
				_, present := e.world.ValuableIDAt(coord)
				So(present, ShouldBeFalse)
				So(hub.countType(models.TypeValuableDepleted), ShouldEqual, 1)
			})
		})

		Convey("Mining a missing pile fails", func() {
			resp, answered := e.handleMine(&robot.Request{Kind: robot.ReqMine, ValuableID: 999, Amount: 10})

			So(answered, ShouldBeTrue)
			So(resp.Kind, ShouldEqual, robot.RespFail)
		})
	})
}

func TestAttackArbitration(t *testing.T) {
	Convey("Given an armed attacker next to a target", t, func() {
		e, hub := testEngine(t, Config{})
		attacker := adoptTestRobot(e, 1, hex.Coord{Q: 0, R: 0}, "blaster")
		target := adoptTestRobot(e, 2, hex.Coord{Q: 0, R: 1}, "none")

		before := target.HullStrength

		Convey("The damage roll stays inside the weapon's bounds", func() {
			resp, answered := e.handleAttack(&robot.Request{
				Kind: robot.ReqAttack, RobotID: 1, TargetID: 2,
			})

			So(answered, ShouldBeTrue)
			So(resp.Kind, ShouldEqual, robot.RespAttackSuccess)
			So(resp.Damage, ShouldBeBetweenOrEqual, robot.WeaponMinDamage("blaster"), robot.WeaponMaxDamage("blaster"))
			So(before-target.HullStrength, ShouldEqual, resp.Damage)

			Convey("The target learns who hit it and from where", func() {
				So(target.AttackedBy, ShouldEqual, attacker.ID)
				So(target.AttackedFrom, ShouldEqual, hex.Dir180)
			})

			Convey("Observers hear about the hit", func() {
				So(hub.countType(models.TypeRobotAttacked), ShouldEqual, 1)
			})
		})

		Convey("A missing target fails", func() {
			resp, answered := e.handleAttack(&robot.Request{Kind: robot.ReqAttack, RobotID: 1, TargetID: 99})
			So(answered, ShouldBeTrue)
			So(resp.Kind, ShouldEqual, robot.RespFail)
		})

		Convey("A missing attacker draws no response at all", func() {
			_, answered := e.handleAttack(&robot.Request{Kind: robot.ReqAttack, RobotID: 99, TargetID: 2})
			So(answered, ShouldBeFalse)
		})
	})
}

func TestExplodeArbitration(t *testing.T) {
	Convey("Given a doomed robot", t, func() {
		e, hub := testEngine(t, Config{})
		r := adoptTestRobot(e, 1, hex.Coord{Q: 0, R: 0}, "none")

		Convey("Exploding removes it and drops a pile worth its cargo", func() {
			e.handleExplode(&robot.Request{Kind: robot.ReqExplode, RobotID: 1, DropValue: 1200})

			So(e.robots, ShouldNotContainKey, int64(1))
			_, occupied := e.world.RobotIDAt(hex.Coord{Q: 0, R: 0})
			So(occupied, ShouldBeFalse)

			valID, present := e.world.ValuableIDAt(hex.Coord{Q: 0, R: 0})
			So(present, ShouldBeTrue)
			So(e.valuables[valID].Amount, ShouldEqual, 1200)
			So(hub.countType(models.TypeRobotDestroyed), ShouldEqual, 1)

			// the strengths index must stay in lockstep with robot_locs
			_, indexed := e.world.RobotStrength(r.ID)
			So(indexed, ShouldBeFalse)
		})

		Convey("An oversized drop clamps at the pile cap", func() {
			e.handleExplode(&robot.Request{Kind: robot.ReqExplode, RobotID: 1, DropValue: 99999})

			valID, present := e.world.ValuableIDAt(hex.Coord{Q: 0, R: 0})
			So(present, ShouldBeTrue)
			So(e.valuables[valID].Amount, ShouldEqual, int32(MaxValuableAmount))
		})
	})

	Convey("With kill drops disabled nothing is left behind", t, func() {
		e, _ := testEngine(t, Config{NoKillDrops: true})
		adoptTestRobot(e, 1, hex.Coord{Q: 0, R: 0}, "none")

		e.handleExplode(&robot.Request{Kind: robot.ReqExplode, RobotID: 1, DropValue: 1200})

		_, present := e.world.ValuableIDAt(hex.Coord{Q: 0, R: 0})
		So(present, ShouldBeFalse)
	})
}

func TestExfiltrateArbitration(t *testing.T) {
	Convey("Exfiltration removes the robot from the location index", t, func() {
		e, hub := testEngine(t, Config{})
		adoptTestRobot(e, 1, hex.Coord{Q: 1, R: 0}, "none")

		e.handleExfiltrate(&robot.Request{Kind: robot.ReqExfiltrate, RobotID: 1})

		So(e.robots, ShouldBeEmpty)
		_, occupied := e.world.RobotIDAt(hex.Coord{Q: 1, R: 0})
		So(occupied, ShouldBeFalse)
		So(hub.countType(models.TypeRobotExfiltrated), ShouldEqual, 1)
	})
}

func TestStepPopulations(t *testing.T) {
	Convey("A tick tops both populations up to their caps", t, func() {
		e, hub := testEngine(t, Config{MaxBots: 4, MaxValuables: 6})

		e.Step()

		robots, valuables := e.Population()
		So(robots, ShouldEqual, 4)
		So(valuables, ShouldEqual, 6)
		So(hub.countType(models.TypeRobotSpawned), ShouldEqual, 4)
		So(hub.countType(models.TypeValuableCreated), ShouldEqual, 6)

		Convey("No two robots share a cell", func() {
			seen := make(map[hex.Coord]bool)
			for _, r := range e.robots {
				So(seen[r.Coord], ShouldBeFalse)
				seen[r.Coord] = true
			}
		})

		Convey("Each robot's strength is indexed", func() {
			for id, r := range e.robots {
				s, ok := e.world.RobotStrength(id)
				So(ok, ShouldBeTrue)
				So(s, ShouldEqual, robot.WeaponMaxDamage(r.Modules.Weapons))
			}
		})

		Convey("Every robot gets a moved delta each tick", func() {
			So(hub.countType(models.TypeRobotMoved), ShouldBeGreaterThanOrEqualTo, 4)
		})
	})
}

func TestAttackedRobotFleesNextTick(t *testing.T) {
	Convey("Given an unarmed robot that was just shot at", t, func() {
		hub := newFakeHub()
		world := openWorld(3)
		e := New(Config{Seed: 99}, world, nil, hub)

		modules := robot.Modules{
			Collector:   "basic",
			DriveSystem: "basic",
			ExfilBeacon: "basic",
			Hull:        "basic",
			Memory:      "jindai", // enough to hold the whole disc
			Power:       "basic",
			Scanner:     "basic",
			Weapons:     "none",
		}
		prey := robot.New(1, "prey", hex.Coord{}, hex.Dir0, modules, world, nil, e.rng)
		e.AdoptRobot(prey)

		var known []robot.KnownCell
		for coord, cell := range world.Cells {
			known = append(known, robot.KnownCell{CellID: cell.ID, Coord: coord, DiscoveryTime: time.Now()})
		}
		prey.UpdateKnownCells(known)

		prey.RecordAttack(99, hex.Dir60)

		Convey("The next tick pre-empts into a flee two cells past the attack direction", func() {
			e.Step()

			So(prey.Active, ShouldEqual, robot.ProcMove)
			So(prey.StatusText, ShouldContainSubstring, "Fleeing to (2,0)")

			Convey("And the attack info is cleared at the end of the tick", func() {
				So(prey.AttackedBy, ShouldEqual, -1)
			})
		})
	})
}

func TestNewObserverGetsSnapshot(t *testing.T) {
	Convey("A freshly connected observer receives the initializer", t, func() {
		e, hub := testEngine(t, Config{MaxBots: 2, MaxValuables: 3})
		e.Step()

		hub.pending = []string{"client-a"}
		e.Step()

		frames := hub.targeted["client-a"]
		So(frames, ShouldHaveLength, 1)
		So(frames[0].Type, ShouldEqual, models.TypeInitializerData)
		So(frames[0].ID, ShouldEqual, "client-a")
		So(len(frames[0].Cells), ShouldEqual, len(e.world.Cells))
		So(frames[0].Robots, ShouldHaveLength, 2)
		So(frames[0].Valuables, ShouldHaveLength, 3)
	})
}
