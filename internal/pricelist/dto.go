package pricelist

// CreateProductRequest carries the fields accepted when adding a
// product. Numeric pointers distinguish "absent" from zero so the
// documented defaults can apply.
type CreateProductRequest struct {
	CategoryID      int64    `json:"category_id" validate:"required,gt=0"`
	Name            string   `json:"name" validate:"required"`
	CostUSD         *float64 `json:"cost_usd" validate:"omitempty,gte=0"`
	Profit          *float64 `json:"profit"`
	WholesaleProfit *float64 `json:"wholesale_profit"`
	WholesaleUSD    *float64 `json:"wholesale_usd" validate:"omitempty,gte=0"`
	Hidden          bool     `json:"hidden"`
}

// product materializes the request with defaults applied: profit 500,
// wholesale profit 250, and the cost falling back to the wholesale
// cost when absent or zero. The legacy carton cost mirrors the
// resolved cost.
func (r CreateProductRequest) product() Product {
	p := Product{
		CategoryID:      r.CategoryID,
		Name:            r.Name,
		Profit:          DefaultProfit,
		WholesaleProfit: DefaultWholesaleProfit,
		Hidden:          r.Hidden,
	}
	if r.Profit != nil {
		p.Profit = *r.Profit
	}
	if r.WholesaleProfit != nil {
		p.WholesaleProfit = *r.WholesaleProfit
	}
	if r.WholesaleUSD != nil {
		p.WholesaleUSD = *r.WholesaleUSD
	}
	if r.CostUSD != nil {
		p.CostUSD = *r.CostUSD
	}
	if p.CostUSD == 0 && p.WholesaleUSD != 0 {
		p.CostUSD = p.WholesaleUSD
	}
	p.CartonCost = p.CostUSD
	return p
}

// ProductPatch is a partial update: nil fields are left untouched by
// the repository. Setting only one of CostUSD/CartonCost mirrors the
// value into the other so the legacy field stays synchronized.
type ProductPatch struct {
	CategoryID      *int64   `json:"category_id,omitempty"`
	Name            *string  `json:"name,omitempty"`
	CostUSD         *float64 `json:"cost_usd,omitempty"`
	Profit          *float64 `json:"profit,omitempty"`
	WholesaleProfit *float64 `json:"wholesale_profit,omitempty"`
	WholesaleUSD    *float64 `json:"wholesale_usd,omitempty"`
	CartonCost      *float64 `json:"carton_cost,omitempty"`
	Hidden          *bool    `json:"hidden,omitempty"`
}

// IsZero reports whether the patch would touch nothing.
func (p ProductPatch) IsZero() bool {
	return p.CategoryID == nil && p.Name == nil && p.CostUSD == nil &&
		p.Profit == nil && p.WholesaleProfit == nil && p.WholesaleUSD == nil &&
		p.CartonCost == nil && p.Hidden == nil
}

// CategoryPosition assigns a new sort position to one category.
type CategoryPosition struct {
	ID        int64 `json:"id" validate:"required,gt=0"`
	SortOrder int64 `json:"sort_order"`
}
