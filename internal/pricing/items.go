package pricing

import (
	"github.com/shopspring/decimal"
)

// LineItemInstance is one physical unit added to an order. Instances of the
// same product stay independent so a single unit can carry its own note or
// be removed on its own. UnitPrice is snapshotted when the unit is added.
type LineItemInstance struct {
	InstanceID string
	ProductID  string
	CategoryID string
	UnitPrice  decimal.Decimal
	Note       string
}

// GroupedLineItem is the derived rollup of every instance sharing a product
// within one order. It is recomputed from the instance list, never stored.
type GroupedLineItem struct {
	ProductID  string
	CategoryID string
	UnitPrice  decimal.Decimal
	Quantity   int
	Instances  []LineItemInstance
}

// GroupItems rolls an instance list up by product. Display order is the
// order in which each product first appeared in the instance list, and the
// quantities across all groups always add up to len(instances).
func GroupItems(instances []LineItemInstance) []GroupedLineItem {
	groups := make([]GroupedLineItem, 0, len(instances))
	index := make(map[string]int, len(instances))

	for _, inst := range instances {
		if i, ok := index[inst.ProductID]; ok {
			groups[i].Quantity++
			groups[i].Instances = append(groups[i].Instances, inst)
			continue
		}
		index[inst.ProductID] = len(groups)
		groups = append(groups, GroupedLineItem{
			ProductID:  inst.ProductID,
			CategoryID: inst.CategoryID,
			UnitPrice:  inst.UnitPrice,
			Quantity:   1,
			Instances:  []LineItemInstance{inst},
		})
	}

	return groups
}
