// Package catalog persists the factory's raw materials and products and
// hands read-only snapshots of them to the planner.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a raw material or product id does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrConflict is returned when a code is already taken.
	ErrConflict = errors.New("catalog: conflict")
	// ErrInUse is returned when deleting a raw material some product still consumes.
	ErrInUse = errors.New("catalog: in use")
)

// RawMaterial is a stocked input consumed by products.
type RawMaterial struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CompositionLine is one bill-of-materials row: how much of a raw material
// a single unit of the owning product consumes.
type CompositionLine struct {
	RawMaterialID   int64 `json:"rawMaterialId"`
	QuantityPerUnit int   `json:"quantity"`
}

// Product is a sellable item with a fixed unit value and composition.
type Product struct {
	ID          int64             `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	UnitValue   decimal.Decimal   `json:"value"`
	Composition []CompositionLine `json:"composition"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// RawMaterialInput carries the writable fields of a raw material.
type RawMaterialInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	StockQuantity *int   `json:"stockQuantity"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	UnitValue   *decimal.Decimal   `json:"value"`
	Composition []CompositionInput `json:"composition"`
}

// CompositionInput is a composition line as submitted by a client.
type CompositionInput struct {
	RawMaterialID *int64 `json:"rawMaterialId"`
	Quantity      *int   `json:"quantity"`
}

// ValidationError lists every rejected field of an input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks a raw material input and normalizes its text fields.
func (in *RawMaterialInput) Validate() error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)

	verr := &ValidationError{}
	if in.Code == "" {
		verr.add("code", "code cannot be blank")
	}
	if in.Name == "" {
		verr.add("name", "name cannot be blank")
	}
	switch {
	case in.StockQuantity == nil:
		verr.add("stockQuantity", "stock quantity cannot be null")
	case *in.StockQuantity < 0:
		verr.add("stockQuantity", "stock quantity must be zero or positive")
	}
	return verr.orNil()
}

// Validate checks a product input and normalizes its text fields.
func (in *ProductInput) Validate() error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)

	verr := &ValidationError{}
	if in.Code == "" {
		verr.add("code", "code cannot be blank")
	}
	if in.Name == "" {
		verr.add("name", "name cannot be blank")
	}
	switch {
	case in.UnitValue == nil:
		verr.add("value", "value cannot be null")
	case !in.UnitValue.IsPositive():
		verr.add("value", "value must be positive")
	}

	seen := make(map[int64]bool, len(in.Composition))
	for i, line := range in.Composition {
		field := fmt.Sprintf("composition[%d]", i)
		switch {
		case line.RawMaterialID == nil:
			verr.add(field+".rawMaterialId", "raw material id cannot be null")
		case *line.RawMaterialID <= 0:
			verr.add(field+".rawMaterialId", "raw material id must be positive")
		case seen[*line.RawMaterialID]:
			verr.add(field+".rawMaterialId", "raw material is listed more than once")
		default:
			seen[*line.RawMaterialID] = true
		}
		switch {
		case line.Quantity == nil:
			verr.add(field+".quantity", "quantity cannot be null")
		case *line.Quantity <= 0:
			verr.add(field+".quantity", "quantity must be positive")
		}
	}
	return verr.orNil()
}
