// Package pricelist holds the price-list records, the mutation gateway
// backed by Postgres, and the grouping pipeline that turns products
// into display rows.
package pricelist

import "github.com/pricedesk/pricedesk/internal/pricing"

const (
	// DefaultProfit is the local-currency margin applied to new products.
	DefaultProfit = 500
	// DefaultWholesaleProfit is the wholesale margin for new products.
	DefaultWholesaleProfit = 250
	// DefaultCategoryID is the fallback bucket for products whose
	// category cannot be resolved.
	DefaultCategoryID = 1
	// RateSettingKey is the settings row holding the USD exchange rate.
	RateSettingKey = "usd_rate"
)

// Category groups products and defines their display order.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sort_order"`
}

// Product is a priced, categorized sellable item. CartonCost is the
// legacy USD cost field kept in sync with CostUSD on writes; on reads
// the nonzero one wins.
type Product struct {
	ID              int64   `json:"id"`
	CategoryID      int64   `json:"category_id"`
	Name            string  `json:"name"`
	CostUSD         float64 `json:"cost_usd"`
	Profit          float64 `json:"profit"`
	WholesaleProfit float64 `json:"wholesale_profit"`
	WholesaleUSD    float64 `json:"wholesale_usd"`
	CartonCost      float64 `json:"carton_cost"`
	Hidden          bool    `json:"hidden"`

	// Joined from the owning category on list reads.
	CategoryName string `json:"category_name"`
	CategorySort int64  `json:"category_sort"`
}

// PriceInputs adapts the product for the pricing calculator.
func (p Product) PriceInputs() pricing.Inputs {
	return pricing.Inputs{CostUSD: p.CostUSD, CartonCost: p.CartonCost, Profit: p.Profit}
}

// EffectiveCostUSD resolves the primary/legacy cost pair.
func (p Product) EffectiveCostUSD() float64 {
	if p.CostUSD != 0 {
		return p.CostUSD
	}
	return p.CartonCost
}
