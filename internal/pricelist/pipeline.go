package pricelist

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// CategoryAll disables category filtering.
	CategoryAll = "all"
	// UncategorizedName labels the synthetic bucket for products whose
	// category cannot be resolved.
	UncategorizedName = "Uncategorized"
)

// RowKind discriminates the two view-row variants.
type RowKind int

const (
	// RowHeader marks the start of a category group.
	RowHeader RowKind = iota
	// RowProduct references one product row.
	RowProduct
)

// ViewRow is one unit of display: either a category header or a
// reference to a product. Exactly one of Header/Product is meaningful,
// selected by Kind.
type ViewRow struct {
	Kind    RowKind
	Header  string
	Product *Product
}

// Filter is the view state consumed by BuildRows.
type Filter struct {
	Search     string
	Category   string
	ShowHidden bool
}

type resolved struct {
	product *Product
	catName string
	catSort int64
	orphan  bool
}

// BuildRows produces the flattened header/product sequence for the
// given records and filter. The output is a deterministic function of
// its inputs: products sort by (category sort position, collated name),
// groups follow category sort order restricted to non-empty groups,
// and unresolved categories collect into a trailing synthetic bucket.
func BuildRows(products []Product, categories []Category, f Filter) []ViewRow {
	byID := make(map[int64]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	rows := make([]resolved, 0, len(products))
	for i := range products {
		p := &products[i]
		r := resolved{product: p}
		cat, ok := byID[p.CategoryID]
		if !ok {
			cat, ok = byID[DefaultCategoryID]
		}
		if ok {
			r.catName = cat.Name
			r.catSort = cat.SortOrder
		} else {
			r.catName = UncategorizedName
			r.orphan = true
		}
		rows = append(rows, r)
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.orphan != b.orphan {
			return !a.orphan
		}
		if a.catSort != b.catSort {
			return a.catSort < b.catSort
		}
		if c := coll.CompareString(a.catName, b.catName); c != 0 {
			return c < 0
		}
		return coll.CompareString(a.product.Name, b.product.Name) < 0
	})

	search := strings.ToLower(strings.TrimSpace(f.Search))
	filtered := rows[:0]
	for _, r := range rows {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.product.Name), search) &&
			!strings.Contains(strings.ToLower(r.catName), search) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && f.Category != r.catName {
			continue
		}
		if r.product.Hidden && !f.ShowHidden {
			continue
		}
		filtered = append(filtered, r)
	}

	out := make([]ViewRow, 0, len(filtered)+len(categories))
	prev := ""
	started := false
	for _, r := range filtered {
		if !started || r.catName != prev {
			out = append(out, ViewRow{Kind: RowHeader, Header: r.catName})
			prev = r.catName
			started = true
		}
		out = append(out, ViewRow{Kind: RowProduct, Product: r.product})
	}
	return out
}

// CategoryNames lists the distinct category names in display order,
// for populating the filter dropdown.
func CategoryNames(categories []Category) []string {
	sorted := make([]Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	names := make([]string, 0, len(sorted))
	for _, c := range sorted {
		names = append(names, c.Name)
	}
	return names
}
