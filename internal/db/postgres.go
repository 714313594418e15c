package db

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"math/rand"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aresgrid/ares-engine/internal/engine"
	"github.com/aresgrid/ares-engine/internal/grid"
	"github.com/aresgrid/ares-engine/internal/hex"
	"github.com/aresgrid/ares-engine/internal/robot"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore persists the world between runs. Every save method is
// write-through and best-effort: failures are logged and the tick
// continues from in-memory truth. Only the initial connection is
// allowed to be fatal to the process.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens the pool from the launcher's credentials.
func Connect(user, password, host, dbname string) (*PostgresStore, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s/%s",
		url.QueryEscape(user), url.QueryEscape(password), host, dbname)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Printf("[Store] connected to %s/%s", host, dbname)
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the five entity tables when missing.
func (s *PostgresStore) InitSchema() error {
	if _, err := s.pool.Exec(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	log.Println("[Store] schema initialized")
	return nil
}

// SaveGrid replaces the persisted maze with the given one. Used when a
// fresh maze is generated or regenerated.
func (s *PostgresStore) SaveGrid(g *grid.Grid) error {
	ctx := context.Background()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM gridcells`); err != nil {
		return fmt.Errorf("failed to clear gridcells: %w", err)
	}

	insertSQL := `
		INSERT INTO gridcells (id, q, r, edge0, edge60, edge120, edge180, edge240, edge300)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, cell := range g.Cells {
		edges := cell.Edges()
		_, err := tx.Exec(ctx, insertSQL,
			cell.ID, cell.Coord.Q, cell.Coord.R,
			int16(edges[0]), int16(edges[1]), int16(edges[2]),
			int16(edges[3]), int16(edges[4]), int16(edges[5]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert gridcell %d: %w", cell.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadGrid rehydrates the persisted maze. count is zero when no maze
// has been stored yet.
func (s *PostgresStore) LoadGrid() (*grid.Grid, int, error) {
	rows, err := s.pool.Query(context.Background(),
		`SELECT id, q, r, edge0, edge60, edge120, edge180, edge240, edge300 FROM gridcells`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cells := make(map[hex.Coord]*grid.Cell)
	for rows.Next() {
		var id, q, r int32
		var e [6]int16
		if err := rows.Scan(&id, &q, &r, &e[0], &e[1], &e[2], &e[3], &e[4], &e[5]); err != nil {
			return nil, 0, err
		}

		coord := hex.Coord{Q: q, R: r}
		cell := grid.NewCell(id, coord)
		var edges [6]grid.EdgeType
		for i, v := range e {
			edges[i] = grid.EdgeType(v)
		}
		cell.SetEdges(edges)
		cells[coord] = cell
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return grid.New(cells), len(cells), nil
}

// SaveRobot upserts one robot row. Recorder method, best-effort.
func (s *PostgresStore) SaveRobot(r *robot.Robot) {
	sql := `
		INSERT INTO robots (
			id, name, owner, affiliation, q, r, orientation,
			power, max_power, recharge_rate, hull_strength, max_hull_strength,
			mined_amount, val_inventory, max_val_inventory,
			exfil_countdown, hibernate_countdown, status_text,
			pursuit_id, pursuit_last_q, pursuit_last_r,
			attacked_from, attacked_by, attacked, damage_done
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (id) DO UPDATE SET
			q = EXCLUDED.q, r = EXCLUDED.r, orientation = EXCLUDED.orientation,
			power = EXCLUDED.power, hull_strength = EXCLUDED.hull_strength,
			mined_amount = EXCLUDED.mined_amount, val_inventory = EXCLUDED.val_inventory,
			exfil_countdown = EXCLUDED.exfil_countdown,
			hibernate_countdown = EXCLUDED.hibernate_countdown,
			status_text = EXCLUDED.status_text,
			pursuit_id = EXCLUDED.pursuit_id,
			pursuit_last_q = EXCLUDED.pursuit_last_q, pursuit_last_r = EXCLUDED.pursuit_last_r,
			attacked_from = EXCLUDED.attacked_from, attacked_by = EXCLUDED.attacked_by,
			attacked = EXCLUDED.attacked, damage_done = EXCLUDED.damage_done;
	`
	_, err := s.pool.Exec(context.Background(), sql,
		r.ID, r.Name, r.Owner, r.Affiliation, r.Coord.Q, r.Coord.R, int16(r.Orientation),
		r.Power, r.MaxPower, r.RechargeRate, r.HullStrength, r.MaxHullStrength,
		r.MinedAmount, r.ValInventory, r.MaxValInventory,
		r.ExfilCountdown, r.HibernateCountdown, r.StatusText,
		r.PursuitID, r.PursuitLast.Q, r.PursuitLast.R,
		int16(r.AttackedFrom), r.AttackedBy, r.Attacked, r.DamageDone,
	)
	if err != nil {
		log.Printf("[Store] failed to save robot %d: %v", r.ID, err)
	}
}

// SaveRobotModules upserts the robot's module fit. Written whenever a
// robot is constructed: at spawn and on rehydration.
func (s *PostgresStore) SaveRobotModules(r *robot.Robot) {
	sql := `
		INSERT INTO robot_modules (
			robot_id, m_collector, m_drivesystem, m_exfilbeacon, m_hull,
			m_memory, m_power, m_scanner, m_weapons
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (robot_id) DO UPDATE SET
			m_collector = EXCLUDED.m_collector, m_drivesystem = EXCLUDED.m_drivesystem,
			m_exfilbeacon = EXCLUDED.m_exfilbeacon, m_hull = EXCLUDED.m_hull,
			m_memory = EXCLUDED.m_memory, m_power = EXCLUDED.m_power,
			m_scanner = EXCLUDED.m_scanner, m_weapons = EXCLUDED.m_weapons;
	`
	m := r.Modules
	_, err := s.pool.Exec(context.Background(), sql,
		r.ID, m.Collector, m.DriveSystem, m.ExfilBeacon, m.Hull,
		m.Memory, m.Power, m.Scanner, m.Weapons,
	)
	if err != nil {
		log.Printf("[Store] failed to save modules for robot %d: %v", r.ID, err)
	}
}

// SaveKnownCells mirrors the robot's bounded memory: each entry is
// upserted (refreshing its discovery time) and rows that fell out of
// memory are deleted.
func (s *PostgresStore) SaveKnownCells(robotID int64, cells []robot.KnownCell) {
	ctx := context.Background()

	upsertSQL := `
		INSERT INTO robot_known_cells (robot_id, gridcell_id, discovery_time, q, r)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (robot_id, gridcell_id) DO UPDATE
		SET discovery_time = EXCLUDED.discovery_time;
	`

	kept := make([]int32, 0, len(cells))
	for _, kc := range cells {
		kept = append(kept, kc.CellID)
		_, err := s.pool.Exec(ctx, upsertSQL, robotID, kc.CellID, kc.DiscoveryTime, kc.Coord.Q, kc.Coord.R)
		if err != nil {
			log.Printf("[Store] failed to save known cell %d for robot %d: %v", kc.CellID, robotID, err)
			return
		}
	}

	_, err := s.pool.Exec(ctx,
		`DELETE FROM robot_known_cells WHERE robot_id = $1 AND gridcell_id != ALL($2)`,
		robotID, kept)
	if err != nil {
		log.Printf("[Store] failed to evict known cells for robot %d: %v", robotID, err)
	}
}

// DeleteRobot removes a robot and its dependent rows.
func (s *PostgresStore) DeleteRobot(id int64) {
	ctx := context.Background()
	for _, sql := range []string{
		`DELETE FROM robot_known_cells WHERE robot_id = $1`,
		`DELETE FROM robot_modules WHERE robot_id = $1`,
		`DELETE FROM robots WHERE id = $1`,
	} {
		if _, err := s.pool.Exec(ctx, sql, id); err != nil {
			log.Printf("[Store] failed to delete robot %d: %v", id, err)
		}
	}
}

// SaveValuable upserts one pile.
func (s *PostgresStore) SaveValuable(v *engine.Valuable) {
	sql := `
		INSERT INTO valuables (id, q, r, kind, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET amount = EXCLUDED.amount;
	`
	_, err := s.pool.Exec(context.Background(), sql, v.ID, v.Coord.Q, v.Coord.R, v.Kind, v.Amount)
	if err != nil {
		log.Printf("[Store] failed to save valuable %d: %v", v.ID, err)
	}
}

// DeleteValuable removes a depleted pile.
func (s *PostgresStore) DeleteValuable(id int64) {
	if _, err := s.pool.Exec(context.Background(), `DELETE FROM valuables WHERE id = $1`, id); err != nil {
		log.Printf("[Store] failed to delete valuable %d: %v", id, err)
	}
}

// LoadRobots rehydrates all persisted robots against the given world.
func (s *PostgresStore) LoadRobots(world *grid.Grid, rng *rand.Rand) ([]*robot.Robot, error) {
	ctx := context.Background()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(owner, 0), COALESCE(affiliation, 0), q, r, orientation,
			power, max_power, recharge_rate, hull_strength, max_hull_strength,
			mined_amount, val_inventory, max_val_inventory,
			exfil_countdown, hibernate_countdown, status_text,
			pursuit_id, pursuit_last_q, pursuit_last_r,
			attacked_from, attacked_by, attacked, damage_done
		FROM robots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var robots []*robot.Robot
	for rows.Next() {
		var (
			id                         int64
			name, status               string
			owner, affiliation         int32
			q, r, pq, pr               int32
			orientation, attackedFrom  int16
			power, maxPower, recharge  int32
			hull, maxHull              int32
			mined, inv, maxInv         int32
			exfil, hibernate           int32
			pursuitID, attackedBy, hit int64
			damageDone                 int32
		)
		if err := rows.Scan(&id, &name, &owner, &affiliation, &q, &r, &orientation,
			&power, &maxPower, &recharge, &hull, &maxHull,
			&mined, &inv, &maxInv, &exfil, &hibernate, &status,
			&pursuitID, &pq, &pr, &attackedFrom, &attackedBy, &hit, &damageDone); err != nil {
			return nil, err
		}

		modules, err := s.loadModules(ctx, id)
		if err != nil {
			return nil, err
		}

		rb := robot.New(id, name, hex.Coord{Q: q, R: r}, hex.DirFromDegrees(int(orientation)), modules, world, s, rng)
		rb.Owner = owner
		rb.Affiliation = affiliation
		rb.Power = power
		rb.MaxPower = maxPower
		rb.RechargeRate = recharge
		rb.HullStrength = hull
		rb.MaxHullStrength = maxHull
		rb.MinedAmount = mined
		rb.ValInventory = inv
		rb.MaxValInventory = maxInv
		rb.ExfilCountdown = exfil
		rb.HibernateCountdown = hibernate
		rb.StatusText = status
		rb.PursuitID = pursuitID
		rb.PursuitLast = hex.Coord{Q: pq, R: pr}
		rb.AttackedFrom = hex.DirFromDegrees(int(attackedFrom))
		rb.AttackedBy = attackedBy
		rb.Attacked = hit
		rb.DamageDone = damageDone

		if known, err := s.loadKnownCells(ctx, id); err == nil {
			rb.KnownCells = known
		} else {
			log.Printf("[Store] failed to load known cells for robot %d: %v", id, err)
		}

		// constructing through New wrote fresh-spawn defaults; put the
		// rehydrated truth back
		s.SaveRobot(rb)

		robots = append(robots, rb)
	}

	return robots, rows.Err()
}

func (s *PostgresStore) loadModules(ctx context.Context, robotID int64) (robot.Modules, error) {
	var m robot.Modules
	err := s.pool.QueryRow(ctx, `
		SELECT m_collector, m_drivesystem, m_exfilbeacon, m_hull, m_memory, m_power, m_scanner, m_weapons
		FROM robot_modules WHERE robot_id = $1`, robotID).
		Scan(&m.Collector, &m.DriveSystem, &m.ExfilBeacon, &m.Hull, &m.Memory, &m.Power, &m.Scanner, &m.Weapons)
	return m, err
}

func (s *PostgresStore) loadKnownCells(ctx context.Context, robotID int64) ([]robot.KnownCell, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT gridcell_id, discovery_time, q, r
		FROM robot_known_cells WHERE robot_id = $1 ORDER BY discovery_time`, robotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []robot.KnownCell
	for rows.Next() {
		var kc robot.KnownCell
		if err := rows.Scan(&kc.CellID, &kc.DiscoveryTime, &kc.Coord.Q, &kc.Coord.R); err != nil {
			return nil, err
		}
		cells = append(cells, kc)
	}
	return cells, rows.Err()
}

// LoadValuables rehydrates all persisted piles.
func (s *PostgresStore) LoadValuables() ([]*engine.Valuable, error) {
	rows, err := s.pool.Query(context.Background(),
		`SELECT id, q, r, kind, amount FROM valuables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var valuables []*engine.Valuable
	for rows.Next() {
		v := &engine.Valuable{}
		if err := rows.Scan(&v.ID, &v.Coord.Q, &v.Coord.R, &v.Kind, &v.Amount); err != nil {
			return nil, err
		}
		valuables = append(valuables, v)
	}
	return valuables, rows.Err()
}
