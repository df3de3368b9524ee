package planner

import "github.com/Simplici0/factoryplan/internal/catalog"

// ledger tracks the stock still available during one planning run.
// Materials missing from the snapshot read as zero and are never added.
type ledger map[int64]int

func newLedger(materials []catalog.RawMaterial) ledger {
	l := make(ledger, len(materials))
	for _, m := range materials {
		l[m.ID] = m.StockQuantity
	}
	return l
}

func (l ledger) available(id int64) int {
	return l[id]
}

// consume subtracts qty from a tracked material. Unknown ids are ignored.
func (l ledger) consume(id int64, qty int) {
	if cur, ok := l[id]; ok {
		l[id] = cur - qty
	}
}
