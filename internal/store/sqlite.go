// Package store persists named floor plans. The geometry core never
// touches it: plans are node sets snapshotted from the scene store and
// replayed back into one.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/planwright/floorplan-engine/internal/scene"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
    name       TEXT PRIMARY KEY,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS plan_nodes (
    plan_name TEXT NOT NULL,
    node_id   TEXT NOT NULL,
    kind      TEXT NOT NULL,
    parent_id TEXT NOT NULL DEFAULT '',
    doc       TEXT NOT NULL,
    PRIMARY KEY (plan_name, node_id),
    FOREIGN KEY (plan_name) REFERENCES plans(name) ON DELETE CASCADE
);
`

// DB wraps the plan database.
type DB struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and
// bootstraps the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenMemory opens a throwaway in-memory database.
func OpenMemory() (*DB, error) {
	db, err := sql.Open("sqlite3", "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// SavePlan replaces the stored node set of a plan atomically.
func (d *DB) SavePlan(ctx context.Context, name string, nodes []scene.Node) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO plans (name, updated_at) VALUES (?, datetime('now'))
        ON CONFLICT(name) DO UPDATE SET updated_at = datetime('now')
    `, name); err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_nodes WHERE plan_name = ?`, name); err != nil {
		return fmt.Errorf("clear plan: %w", err)
	}
	for _, n := range nodes {
		doc, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode node %s: %w", n.NodeID(), err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO plan_nodes (plan_name, node_id, kind, parent_id, doc)
            VALUES (?, ?, ?, ?, ?)
        `, name, n.NodeID(), string(n.Kind()), n.Parent(), string(doc)); err != nil {
			return fmt.Errorf("insert node %s: %w", n.NodeID(), err)
		}
	}
	return tx.Commit()
}

// LoadPlan replays a plan's nodes into the given scene store, parents
// before children, and returns the node count. An unknown plan loads
// zero nodes and is not an error.
func (d *DB) LoadPlan(ctx context.Context, name string, dst *scene.Store) (int, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT kind, parent_id, doc FROM plan_nodes WHERE plan_name = ?
    `, name)
	if err != nil {
		return 0, fmt.Errorf("query plan: %w", err)
	}
	defer rows.Close()

	type pending struct {
		node     scene.Node
		parentID string
	}
	var nodes []pending
	for rows.Next() {
		var kind, parentID, doc string
		if err := rows.Scan(&kind, &parentID, &doc); err != nil {
			return 0, fmt.Errorf("scan node: %w", err)
		}
		n, err := decodeNode(scene.Kind(kind), []byte(doc))
		if err != nil {
			return 0, err
		}
		nodes = append(nodes, pending{node: n, parentID: parentID})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate plan: %w", err)
	}

	// Insert in dependency order: a node goes in once its parent has.
	added := 0
	for added < len(nodes) {
		progressed := false
		for i := range nodes {
			p := &nodes[i]
			if p.node == nil {
				continue
			}
			if p.parentID != "" {
				if _, ok := dst.Get(p.parentID); !ok {
					continue
				}
			}
			if err := dst.Add(p.node); err != nil {
				return added, fmt.Errorf("replay node %s: %w", p.node.NodeID(), err)
			}
			p.node = nil
			added++
			progressed = true
		}
		if !progressed {
			return added, fmt.Errorf("plan %q has %d nodes with unresolvable parents", name, len(nodes)-added)
		}
	}
	return added, nil
}

// ListPlans returns the stored plan names, newest first.
func (d *DB) ListPlans(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM plans ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func decodeNode(kind scene.Kind, doc []byte) (scene.Node, error) {
	var n scene.Node
	switch kind {
	case scene.KindSite:
		n = &scene.SiteNode{}
	case scene.KindLevel:
		n = &scene.LevelNode{}
	case scene.KindZone:
		n = &scene.ZoneNode{}
	case scene.KindWall:
		n = &scene.WallNode{}
	case scene.KindSlab:
		n = &scene.SlabNode{}
	case scene.KindCeiling:
		n = &scene.CeilingNode{}
	case scene.KindRoof:
		n = &scene.RoofNode{}
	case scene.KindDoor:
		n = &scene.DoorNode{}
	case scene.KindWindow:
		n = &scene.WindowNode{}
	case scene.KindStair:
		n = &scene.StairNode{}
	case scene.KindItem:
		n = &scene.ItemNode{}
	default:
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
	if err := json.Unmarshal(doc, n); err != nil {
		return nil, fmt.Errorf("decode %s node: %w", kind, err)
	}
	return n, nil
}
