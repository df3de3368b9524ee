package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/factoryplan/internal/catalog"
)

// Catalog is the read-only view of the catalog the planner needs.
type Catalog interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListRawMaterials(ctx context.Context) ([]catalog.RawMaterial, error)
}

// Service computes production plans from a catalog snapshot.
type Service struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewService(c Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: c, logger: logger.Named("planner")}
}

// ComputeOptimalPlan reads the current catalog once and plans against it.
// A failed read is returned as-is and no plan is produced.
func (s *Service) ComputeOptimalPlan(ctx context.Context) (Plan, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load products: %w", err)
	}
	materials, err := s.catalog.ListRawMaterials(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load raw materials: %w", err)
	}

	plan := Compute(products, materials)

	s.logger.Debug("production plan computed",
		zap.Int("products", len(products)),
		zap.Int("raw_materials", len(materials)),
		zap.Int("entries", len(plan.Entries)),
		zap.Stringer("total_profit", plan.TotalProfit),
	)
	return plan, nil
}
