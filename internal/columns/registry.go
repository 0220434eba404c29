// Package columns is the static catalog of displayable table columns
// plus the user-configurable ordered/visible subset.
package columns

// Column ids. The id set is fixed at build time; the persisted order
// and visible subset reference columns by id.
const (
	ColName         = "name"
	ColCategory     = "category"
	ColCostUSD      = "cost_usd"
	ColPrice        = "price"
	ColPerUnit      = "per_unit"
	ColProfit       = "profit"
	ColWholesaleUSD = "wholesale_usd"
	ColCartonCost   = "carton_cost"
	ColHidden       = "hidden"
	ColActions      = "actions"
)

// Kind tells whether a column reads a stored field or a derived value.
type Kind string

const (
	KindData     Kind = "data"
	KindComputed Kind = "computed"
)

// Descriptor describes one displayable column.
type Descriptor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  Kind   `json:"kind"`
	Width int    `json:"width"`
	Align string `json:"align"`
}

// catalog is the fixed set of known columns in default order. ColActions
// is deliberately absent: it is appended while an edit is active, never
// part of the configurable order.
var catalog = []Descriptor{
	{ID: ColName, Title: "Product", Kind: KindData, Width: 4, Align: "left"},
	{ID: ColCategory, Title: "Category", Kind: KindData, Width: 2, Align: "left"},
	{ID: ColCostUSD, Title: "Cost (USD)", Kind: KindData, Width: 2, Align: "right"},
	{ID: ColPrice, Title: "Price", Kind: KindComputed, Width: 2, Align: "right"},
	{ID: ColPerUnit, Title: "Per Stick", Kind: KindComputed, Width: 2, Align: "right"},
	{ID: ColProfit, Title: "Profit", Kind: KindData, Width: 2, Align: "right"},
	{ID: ColWholesaleUSD, Title: "Wholesale (USD)", Kind: KindData, Width: 2, Align: "right"},
	{ID: ColCartonCost, Title: "Carton Cost", Kind: KindData, Width: 2, Align: "right"},
	{ID: ColHidden, Title: "Hidden", Kind: KindData, Width: 1, Align: "center"},
}

var actionsColumn = Descriptor{ID: ColActions, Title: "Actions", Kind: KindComputed, Width: 1, Align: "center"}

// Catalog returns the full known column set in default order.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultOrder returns the default column id sequence.
func DefaultOrder() []string {
	out := make([]string, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d.ID)
	}
	return out
}

// DefaultVisible returns the default visible subset.
func DefaultVisible() []string {
	return []string{ColName, ColCategory, ColCostUSD, ColPrice, ColPerUnit, ColProfit}
}

// Reconcile merges a persisted order with the current catalog: known
// ids keep their persisted position, ids unknown to the catalog are
// dropped, and catalog ids missing from the order are appended at the
// end. Run on every load so newly introduced columns always surface.
func Reconcile(order []string) []string {
	known := make(map[string]bool, len(catalog))
	for _, d := range catalog {
		known[d.ID] = true
	}
	out := make([]string, 0, len(catalog))
	seen := make(map[string]bool, len(catalog))
	for _, id := range order {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, d := range catalog {
		if !seen[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}

// SanitizeVisible replaces a corrupt visible set (empty, or missing the
// primary name column) with the default subset.
func SanitizeVisible(visible []string) []string {
	if len(visible) == 0 {
		return DefaultVisible()
	}
	for _, id := range visible {
		if id == ColName {
			return visible
		}
	}
	return DefaultVisible()
}

// OrderedVisible resolves the descriptors to display: the reconciled
// order filtered to the visible subset, with the actions column
// appended while an edit is active regardless of visibility.
func OrderedVisible(order, visible []string, editing bool) []Descriptor {
	byID := make(map[string]Descriptor, len(catalog))
	for _, d := range catalog {
		byID[d.ID] = d
	}
	want := make(map[string]bool, len(visible))
	for _, id := range SanitizeVisible(visible) {
		want[id] = true
	}
	out := make([]Descriptor, 0, len(catalog)+1)
	for _, id := range Reconcile(order) {
		if want[id] {
			out = append(out, byID[id])
		}
	}
	if editing {
		out = append(out, actionsColumn)
	}
	return out
}
