package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is the SQLite-backed catalog.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ListRawMaterials returns every raw material ordered by id.
func (s *Store) ListRawMaterials(ctx context.Context) ([]RawMaterial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, stock_quantity, created_at, updated_at
		FROM raw_materials
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query raw materials: %w", err)
	}
	defer rows.Close()

	materials := make([]RawMaterial, 0)
	for rows.Next() {
		m, err := scanRawMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw materials: %w", err)
	}

	return materials, nil
}

// GetRawMaterial returns the raw material with the given id.
func (s *Store) GetRawMaterial(ctx context.Context, id int64) (RawMaterial, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, stock_quantity, created_at, updated_at
		FROM raw_materials
		WHERE id = ?
	`, id)

	m, err := scanRawMaterial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RawMaterial{}, fmt.Errorf("raw material %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return RawMaterial{}, fmt.Errorf("query raw material %d: %w", id, err)
	}
	return m, nil
}

// CreateRawMaterial validates and inserts a raw material.
func (s *Store) CreateRawMaterial(ctx context.Context, in RawMaterialInput) (RawMaterial, error) {
	if err := in.Validate(); err != nil {
		return RawMaterial{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_materials (code, name, stock_quantity)
		VALUES (?, ?, ?)
	`, in.Code, in.Name, *in.StockQuantity)
	if err != nil {
		return RawMaterial{}, fmt.Errorf("insert raw material %q: %w", in.Code, translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return RawMaterial{}, fmt.Errorf("read raw material id: %w", err)
	}
	return s.GetRawMaterial(ctx, id)
}

// UpdateRawMaterial validates and overwrites a raw material.
func (s *Store) UpdateRawMaterial(ctx context.Context, id int64, in RawMaterialInput) (RawMaterial, error) {
	if err := in.Validate(); err != nil {
		return RawMaterial{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE raw_materials
		SET
			code = ?,
			name = ?,
			stock_quantity = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, in.Code, in.Name, *in.StockQuantity, id)
	if err != nil {
		return RawMaterial{}, fmt.Errorf("update raw material %d: %w", id, translate(err))
	}

	if err := expectAffected(result, "raw material", id); err != nil {
		return RawMaterial{}, err
	}
	return s.GetRawMaterial(ctx, id)
}

// DeleteRawMaterial removes a raw material no product consumes.
func (s *Store) DeleteRawMaterial(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM raw_materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete raw material %d: %w", id, translate(err))
	}
	return expectAffected(result, "raw material", id)
}

func scanRawMaterial(row rowScanner) (RawMaterial, error) {
	var m RawMaterial
	var createdAt, updatedAt string
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &m.StockQuantity, &createdAt, &updatedAt); err != nil {
		return RawMaterial{}, err
	}

	var err error
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return RawMaterial{}, err
	}
	if m.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return RawMaterial{}, err
	}
	return m, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func expectAffected(result sql.Result, kind string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for %s %d: %w", kind, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// translate maps SQLite constraint failures onto catalog sentinel errors.
func translate(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	code := se.Code()
	msg := se.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", ErrInUse, err)
	// Connections without extended result codes only report the primary code.
	case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "FOREIGN KEY"):
		return fmt.Errorf("%w: %v", ErrInUse, err)
	default:
		return err
	}
}
