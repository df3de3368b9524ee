// Package planner decides how many units of each product to build from
// the raw-material stock on hand.
//
// The allocation is a single-pass greedy heuristic: products are ranked by
// value per unit of raw material consumed and each, in turn, is granted the
// largest quantity the remaining stock allows. Earlier grants are never
// revisited, so the result is not guaranteed to be a global optimum.
package planner

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/factoryplan/internal/catalog"
)

// Entry is one product's line in a production plan.
type Entry struct {
	ProductCode       string          `json:"productCode"`
	ProductName       string          `json:"productName"`
	QuantityToProduce int             `json:"quantityToProduce"`
	UnitValue         decimal.Decimal `json:"unitValue"`
	TotalValue        decimal.Decimal `json:"totalValue"`
}

// Plan lists entries in processing order together with their summed value.
type Plan struct {
	Entries     []Entry         `json:"productionPlan"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
}

// Score returns a product's value per unit of total raw material consumed.
// Products without composition, or whose quantities sum to zero, score 0.
func Score(p catalog.Product) float64 {
	if len(p.Composition) == 0 {
		return 0
	}

	var totalResourceCost float64
	for _, line := range p.Composition {
		totalResourceCost += float64(line.QuantityPerUnit)
	}
	if totalResourceCost == 0 {
		return 0
	}

	return p.UnitValue.InexactFloat64() / totalResourceCost
}

type ranked struct {
	product catalog.Product
	score   float64
}

// Compute builds a production plan from a catalog snapshot. The inputs are
// not modified.
func Compute(products []catalog.Product, materials []catalog.RawMaterial) Plan {
	stock := newLedger(materials)

	order := make([]ranked, len(products))
	for i, p := range products {
		order[i] = ranked{product: p, score: Score(p)}
	}
	// Ties keep catalog order.
	slices.SortStableFunc(order, func(a, b ranked) int {
		return cmp.Compare(b.score, a.score)
	})

	entries := make([]Entry, 0, len(order))
	totalProfit := decimal.Zero
	for _, r := range order {
		p := r.product
		if len(p.Composition) == 0 {
			continue
		}

		units := maxProducible(p.Composition, stock)
		if units <= 0 {
			continue
		}

		totalValue := p.UnitValue.Mul(decimal.NewFromInt(int64(units)))
		entries = append(entries, Entry{
			ProductCode:       p.Code,
			ProductName:       p.Name,
			QuantityToProduce: units,
			UnitValue:         p.UnitValue,
			TotalValue:        totalValue,
		})
		totalProfit = totalProfit.Add(totalValue)

		for _, line := range p.Composition {
			if line.QuantityPerUnit <= 0 {
				continue
			}
			stock.consume(line.RawMaterialID, units*line.QuantityPerUnit)
		}
	}

	return assemble(entries, totalProfit)
}

// maxProducible is the smallest floor(stock/quantity) across lines with a
// positive quantity. Lines with zero or negative quantity impose no limit;
// a composition with no positive line yields 0, not unlimited.
func maxProducible(lines []catalog.CompositionLine, stock ledger) int {
	limit := math.MaxInt
	for _, line := range lines {
		if line.QuantityPerUnit <= 0 {
			continue
		}
		limit = min(limit, stock.available(line.RawMaterialID)/line.QuantityPerUnit)
	}
	if limit == math.MaxInt {
		return 0
	}
	return limit
}

func assemble(entries []Entry, totalProfit decimal.Decimal) Plan {
	if entries == nil {
		entries = []Entry{}
	}
	return Plan{Entries: entries, TotalProfit: totalProfit}
}
