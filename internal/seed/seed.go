package seed

import (
	"database/sql"
	"fmt"
)

type demoMaterial struct {
	code  string
	name  string
	stock int
}

type demoLine struct {
	materialCode string
	quantity     int
}

type demoProduct struct {
	code        string
	name        string
	unitValue   string
	composition []demoLine
}

var demoMaterials = []demoMaterial{
	{code: "WOOD", name: "Wood", stock: 100},
	{code: "STEEL", name: "Steel", stock: 50},
}

var demoProducts = []demoProduct{
	{code: "CHAIR", name: "Chair", unitValue: "150.00", composition: []demoLine{{"WOOD", 10}, {"STEEL", 5}}},
	{code: "TABLE", name: "Table", unitValue: "500.00", composition: []demoLine{{"WOOD", 25}, {"STEEL", 15}}},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the demo catalog in an idempotent way. Existing rows with the
// same codes are left untouched.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, m := range demoMaterials {
		if err := ensureMaterial(tx, m, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, p := range demoProducts {
		if err := ensureProduct(tx, p, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureMaterial(tx *sql.Tx, m demoMaterial, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM raw_materials WHERE code = ? LIMIT 1)`, m.code).Scan(&exists); err != nil {
		return fmt.Errorf("check raw material %s existence: %w", m.code, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO raw_materials (code, name, stock_quantity)
		VALUES (?, ?, ?)
	`, m.code, m.name, m.stock); err != nil {
		return fmt.Errorf("insert raw material %s: %w", m.code, err)
	}
	stats.Inserts++
	return nil
}

func ensureProduct(tx *sql.Tx, p demoProduct, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE code = ? LIMIT 1)`, p.code).Scan(&exists); err != nil {
		return fmt.Errorf("check product %s existence: %w", p.code, err)
	}
	if exists {
		return nil
	}

	result, err := tx.Exec(`
		INSERT INTO products (code, name, unit_value)
		VALUES (?, ?, ?)
	`, p.code, p.name, p.unitValue)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.code, err)
	}
	productID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read product %s id: %w", p.code, err)
	}
	stats.Inserts++

	for _, line := range p.composition {
		if _, err := tx.Exec(`
			INSERT INTO product_compositions (product_id, raw_material_id, quantity)
			SELECT ?, id, ? FROM raw_materials WHERE code = ?
		`, productID, line.quantity, line.materialCode); err != nil {
			return fmt.Errorf("insert composition %s/%s: %w", p.code, line.materialCode, err)
		}
		stats.Inserts++
	}
	return nil
}
