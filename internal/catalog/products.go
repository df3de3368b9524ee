package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListProducts returns every product with its composition, ordered by id.
// Lines within a product keep insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin list products transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, code, name, unit_value, created_at, updated_at
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	index := make(map[int64]int)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	rows.Close()

	lines, err := tx.QueryContext(ctx, `
		SELECT product_id, raw_material_id, quantity
		FROM product_compositions
		ORDER BY product_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query product compositions: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var productID int64
		var line CompositionLine
		if err := lines.Scan(&productID, &line.RawMaterialID, &line.QuantityPerUnit); err != nil {
			return nil, fmt.Errorf("scan product composition: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Composition = append(products[i].Composition, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("iterate product compositions: %w", err)
	}

	return products, nil
}

// GetProduct returns the product with the given id and its composition.
func (s *Store) GetProduct(ctx context.Context, id int64) (Product, error) {
	return getProduct(ctx, s.db, id)
}

// CreateProduct validates and inserts a product together with its composition.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}

	var created Product
	err := s.inTx(ctx, "create product", func(tx *sql.Tx) error {
		if err := ensureRawMaterialsExist(ctx, tx, in.Composition); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO products (code, name, unit_value)
			VALUES (?, ?, ?)
		`, in.Code, in.Name, *in.UnitValue)
		if err != nil {
			return fmt.Errorf("insert product %q: %w", in.Code, translate(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read product id: %w", err)
		}
		if err := insertComposition(ctx, tx, id, in.Composition); err != nil {
			return err
		}

		created, err = getProduct(ctx, tx, id)
		return err
	})
	return created, err
}

// UpdateProduct validates and overwrites a product, replacing its whole composition.
func (s *Store) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}

	var updated Product
	err := s.inTx(ctx, "update product", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET
				code = ?,
				name = ?,
				unit_value = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, in.Code, in.Name, *in.UnitValue, id)
		if err != nil {
			return fmt.Errorf("update product %d: %w", id, translate(err))
		}
		if err := expectAffected(result, "product", id); err != nil {
			return err
		}

		if err := ensureRawMaterialsExist(ctx, tx, in.Composition); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_compositions WHERE product_id = ?`, id); err != nil {
			return fmt.Errorf("clear composition of product %d: %w", id, err)
		}
		if err := insertComposition(ctx, tx, id, in.Composition); err != nil {
			return err
		}

		updated, err = getProduct(ctx, tx, id)
		return err
	})
	return updated, err
}

// DeleteProduct removes a product; its composition lines go with it.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return expectAffected(result, "product", id)
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", op, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s transaction: %w", op, err)
	}
	return nil
}

func getProduct(ctx context.Context, q queryer, id int64) (Product, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, code, name, unit_value, created_at, updated_at
		FROM products
		WHERE id = ?
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Product{}, fmt.Errorf("query product %d: %w", id, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT raw_material_id, quantity
		FROM product_compositions
		WHERE product_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return Product{}, fmt.Errorf("query composition of product %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line CompositionLine
		if err := rows.Scan(&line.RawMaterialID, &line.QuantityPerUnit); err != nil {
			return Product{}, fmt.Errorf("scan composition of product %d: %w", id, err)
		}
		p.Composition = append(p.Composition, line)
	}
	if err := rows.Err(); err != nil {
		return Product{}, fmt.Errorf("iterate composition of product %d: %w", id, err)
	}

	return p, nil
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.UnitValue, &createdAt, &updatedAt); err != nil {
		return Product{}, err
	}

	p.Composition = make([]CompositionLine, 0)

	var err error
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return Product{}, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return Product{}, err
	}
	return p, nil
}

func ensureRawMaterialsExist(ctx context.Context, tx *sql.Tx, lines []CompositionInput) error {
	for _, line := range lines {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM raw_materials WHERE id = ?)`, *line.RawMaterialID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check raw material %d existence: %w", *line.RawMaterialID, err)
		}
		if !exists {
			return fmt.Errorf("raw material %d: %w", *line.RawMaterialID, ErrNotFound)
		}
	}
	return nil
}

func insertComposition(ctx context.Context, tx *sql.Tx, productID int64, lines []CompositionInput) error {
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_compositions (product_id, raw_material_id, quantity)
			VALUES (?, ?, ?)
		`, productID, *line.RawMaterialID, *line.Quantity); err != nil {
			return fmt.Errorf("insert composition line for product %d: %w", productID, translate(err))
		}
	}
	return nil
}
