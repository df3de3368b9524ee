package planner

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/factoryplan/internal/catalog"
)

func material(id int64, code string, stock int) catalog.RawMaterial {
	return catalog.RawMaterial{ID: id, Code: code, Name: code, StockQuantity: stock}
}

func product(id int64, code, value string, lines ...catalog.CompositionLine) catalog.Product {
	return catalog.Product{
		ID:          id,
		Code:        code,
		Name:        code,
		UnitValue:   decimal.RequireFromString(value),
		Composition: lines,
	}
}

func uses(materialID int64, qty int) catalog.CompositionLine {
	return catalog.CompositionLine{RawMaterialID: materialID, QuantityPerUnit: qty}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertEntry(t *testing.T, e Entry, code string, qty int, total string) {
	t.Helper()
	assert.Equal(t, code, e.ProductCode)
	assert.Equal(t, qty, e.QuantityToProduce)
	assert.True(t, e.TotalValue.Equal(dec(total)), "%s total = %s, want %s", code, e.TotalValue, total)
	assert.True(t, e.TotalValue.Equal(e.UnitValue.Mul(decimal.NewFromInt(int64(qty)))))
}

func TestCompute_TablesBeforeChairs(t *testing.T) {
	const wood, steel = 1, 2
	materials := []catalog.RawMaterial{material(wood, "WOOD", 100), material(steel, "STEEL", 50)}
	products := []catalog.Product{
		product(1, "CHAIR", "150.00", uses(wood, 10), uses(steel, 5)),
		product(2, "TABLE", "500.00", uses(wood, 25), uses(steel, 15)),
	}

	plan := Compute(products, materials)

	require.Len(t, plan.Entries, 2)
	assertEntry(t, plan.Entries[0], "TABLE", 3, "1500.00")
	assertEntry(t, plan.Entries[1], "CHAIR", 1, "150.00")
	assert.True(t, plan.TotalProfit.Equal(dec("1650.00")), "total profit = %s", plan.TotalProfit)
}

func TestCompute_NoStockGivesEmptyPlan(t *testing.T) {
	materials := []catalog.RawMaterial{material(1, "WOOD", 0), material(2, "STEEL", 0)}
	products := []catalog.Product{
		product(1, "CHAIR", "150.00", uses(1, 10), uses(2, 5)),
		product(2, "TABLE", "500.00", uses(1, 25), uses(2, 15)),
	}

	plan := Compute(products, materials)

	assert.NotNil(t, plan.Entries)
	assert.Empty(t, plan.Entries)
	assert.True(t, plan.TotalProfit.IsZero())
}

func TestCompute_NoProductsGivesEmptyPlan(t *testing.T) {
	plan := Compute(nil, []catalog.RawMaterial{material(1, "WOOD", 100)})

	assert.NotNil(t, plan.Entries)
	assert.Empty(t, plan.Entries)
	assert.True(t, plan.TotalProfit.IsZero())
}

func TestCompute_EfficiencyBeatsRawValue(t *testing.T) {
	const steel, electronics = 1, 2
	materials := []catalog.RawMaterial{material(steel, "STEEL", 100), material(electronics, "ELEC", 30)}
	products := []catalog.Product{
		product(1, "LUXURY_CAR", "200000.00", uses(steel, 100), uses(electronics, 20)),
		product(2, "DRONE", "15000.00", uses(steel, 1), uses(electronics, 1)),
	}

	plan := Compute(products, materials)

	require.Len(t, plan.Entries, 1)
	assertEntry(t, plan.Entries[0], "DRONE", 30, "450000.00")
	assert.True(t, plan.TotalProfit.Equal(dec("450000.00")))
}

func TestCompute_EqualScoresKeepInputOrder(t *testing.T) {
	// Both score 10; only one can be built, so the first listed wins.
	materials := []catalog.RawMaterial{material(1, "WOOD", 10)}

	first := Compute([]catalog.Product{
		product(1, "A", "100", uses(1, 10)),
		product(2, "B", "50", uses(1, 5)),
	}, materials)
	require.Len(t, first.Entries, 1)
	assertEntry(t, first.Entries[0], "A", 1, "100")

	second := Compute([]catalog.Product{
		product(2, "B", "50", uses(1, 5)),
		product(1, "A", "100", uses(1, 10)),
	}, materials)
	require.Len(t, second.Entries, 1)
	assertEntry(t, second.Entries[0], "B", 2, "100")
}

func TestCompute_SkipsEmptyComposition(t *testing.T) {
	plan := Compute([]catalog.Product{
		product(1, "GHOST", "999"),
		product(2, "BOLT", "1", uses(1, 1)),
	}, []catalog.RawMaterial{material(1, "STEEL", 3)})

	require.Len(t, plan.Entries, 1)
	assertEntry(t, plan.Entries[0], "BOLT", 3, "3")
}

func TestCompute_UnknownMaterialIsZeroStock(t *testing.T) {
	plan := Compute([]catalog.Product{
		product(1, "WIDGET", "10", uses(1, 1), uses(99, 1)),
	}, []catalog.RawMaterial{material(1, "STEEL", 5)})

	assert.Empty(t, plan.Entries)
}

func TestCompute_NonPositiveQuantitiesImposeNoLimit(t *testing.T) {
	const steel, paint = 1, 2
	materials := []catalog.RawMaterial{material(steel, "STEEL", 6), material(paint, "PAINT", 0)}
	products := []catalog.Product{
		product(1, "FRAME", "4", uses(steel, 2), uses(paint, 0), uses(paint, -1)),
	}

	plan := Compute(products, materials)

	require.Len(t, plan.Entries, 1)
	assertEntry(t, plan.Entries[0], "FRAME", 3, "12")
}

func TestCompute_NoPositiveLineMeansNothingProduced(t *testing.T) {
	plan := Compute([]catalog.Product{
		product(1, "FREEBIE", "10", uses(1, 0)),
		product(2, "ODD", "10", uses(1, -2)),
	}, []catalog.RawMaterial{material(1, "STEEL", 100)})

	assert.Empty(t, plan.Entries)
	assert.True(t, plan.TotalProfit.IsZero())
}

func TestCompute_UnknownMaterialWithoutPositiveQuantityDoesNotLimit(t *testing.T) {
	const steel = 1
	plan := Compute([]catalog.Product{
		product(1, "BRACKET", "2", uses(steel, 1), uses(42, 0)),
	}, []catalog.RawMaterial{material(steel, "STEEL", 4)})

	require.Len(t, plan.Entries, 1)
	assertEntry(t, plan.Entries[0], "BRACKET", 4, "8")
}

func TestLedger_UnknownIDsAreNeverInserted(t *testing.T) {
	l := newLedger([]catalog.RawMaterial{material(1, "STEEL", 10)})

	l.consume(1, 4)
	l.consume(99, 4)

	assert.Equal(t, 6, l.available(1))
	assert.Equal(t, 0, l.available(99))
	_, tracked := l[99]
	assert.False(t, tracked)
	assert.Len(t, l, 1)
}

func TestCompute_DuplicateLinesAreNotMerged(t *testing.T) {
	// Each line is checked on its own: 10/5 = 2 for both, so 2 units are granted
	// even though together they need 20.
	plan := Compute([]catalog.Product{
		product(1, "DOUBLE", "7", uses(1, 5), uses(1, 5)),
	}, []catalog.RawMaterial{material(1, "STEEL", 10)})

	require.Len(t, plan.Entries, 1)
	assertEntry(t, plan.Entries[0], "DOUBLE", 2, "14")
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	materials := []catalog.RawMaterial{material(1, "WOOD", 100), material(2, "STEEL", 50)}
	products := []catalog.Product{
		product(1, "CHAIR", "150.00", uses(1, 10), uses(2, 5)),
		product(2, "TABLE", "500.00", uses(1, 25), uses(2, 15)),
	}

	Compute(products, materials)

	assert.Equal(t, 100, materials[0].StockQuantity)
	assert.Equal(t, 50, materials[1].StockQuantity)
	assert.Equal(t, "CHAIR", products[0].Code)
	assert.Equal(t, "TABLE", products[1].Code)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		p    catalog.Product
		want float64
	}{
		{"empty composition", product(1, "P", "10"), 0},
		{"zero total cost", product(1, "P", "10", uses(1, 0)), 0},
		{"cancelling quantities", product(1, "P", "10", uses(1, 3), uses(2, -3)), 0},
		{"value per unit", product(1, "P", "500", uses(1, 25), uses(2, 15)), 12.5},
		{"non-positive lines count", product(1, "P", "30", uses(1, 4), uses(2, -1)), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.p), 1e-12)
		})
	}
}

func TestCompute_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		materials := make([]catalog.RawMaterial, 1+rng.Intn(5))
		for i := range materials {
			materials[i] = material(int64(i+1), "M", rng.Intn(200))
		}

		products := make([]catalog.Product, rng.Intn(8))
		for i := range products {
			p := catalog.Product{
				ID:        int64(i + 1),
				Code:      string(rune('A' + i)),
				UnitValue: decimal.New(int64(1+rng.Intn(100000)), -2),
			}
			seen := map[int64]bool{}
			for n := rng.Intn(4); n > 0; n-- {
				id := int64(1 + rng.Intn(len(materials)+1)) // occasionally unknown
				if seen[id] {
					continue
				}
				seen[id] = true
				p.Composition = append(p.Composition, uses(id, 1+rng.Intn(20)))
			}
			products[i] = p
		}

		plan := Compute(products, materials)
		again := Compute(products, materials)
		require.Equal(t, plan, again, "round %d: plan must be deterministic", round)

		byCode := make(map[string]catalog.Product, len(products))
		for _, p := range products {
			byCode[p.Code] = p
		}

		consumed := make(map[int64]int)
		sum := decimal.Zero
		for _, e := range plan.Entries {
			require.Positive(t, e.QuantityToProduce, "round %d", round)
			p := byCode[e.ProductCode]
			require.NotEmpty(t, p.Composition, "round %d", round)
			for _, line := range p.Composition {
				consumed[line.RawMaterialID] += line.QuantityPerUnit * e.QuantityToProduce
			}
			sum = sum.Add(e.TotalValue)
		}
		require.True(t, sum.Equal(plan.TotalProfit), "round %d: profit %s != sum %s", round, plan.TotalProfit, sum)

		stock := make(map[int64]int)
		for _, m := range materials {
			stock[m.ID] = m.StockQuantity
		}
		for id, used := range consumed {
			require.LessOrEqual(t, used, stock[id], "round %d: material %d overdrawn", round, id)
		}
	}
}
