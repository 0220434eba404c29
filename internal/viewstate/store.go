package viewstate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pricedesk/pricedesk/internal/pricelist"
)

// Gateway is the mutation boundary the store forwards edits to. The
// store treats it as an opaque service returning success or failure.
type Gateway interface {
	ListCategories(ctx context.Context) ([]pricelist.Category, error)
	ListProducts(ctx context.Context) ([]pricelist.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch pricelist.ProductPatch) error
	GetRate(ctx context.Context) (float64, error)
	SetRate(ctx context.Context, rate float64) error
}

// Edit is the single in-progress edit: one target row and a staging
// buffer of raw field text awaiting commit.
type Edit struct {
	ProductID int64
	Fields    map[string]string
}

// Store owns the mutable view session. The product list and view
// configuration are owned exclusively here; the pipeline and the
// calculator only ever read snapshots.
type Store struct {
	mu      sync.Mutex
	logger  *slog.Logger
	gateway Gateway
	prefs   *Prefs

	products   []pricelist.Product
	categories []pricelist.Category
	rate       float64

	search     string
	category   string
	showHidden bool
	fontSize   int

	edit       *Edit
	menuTarget int64
}

// NewStore constructs a Store with default view settings.
func NewStore(logger *slog.Logger, gateway Gateway, prefs *Prefs) *Store {
	return &Store{
		logger:   logger,
		gateway:  gateway,
		prefs:    prefs,
		category: pricelist.CategoryAll,
		fontSize: DefaultFontSize,
	}
}

// Load pulls authoritative state from the gateway and the persisted
// preferences. A persisted rate override takes precedence over the
// server rate once set.
func (s *Store) Load(ctx context.Context) error {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("viewstate: load products: %w", err)
	}
	categories, err := s.gateway.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("viewstate: load categories: %w", err)
	}
	rate, err := s.gateway.GetRate(ctx)
	if err != nil {
		return fmt.Errorf("viewstate: load rate: %w", err)
	}
	if override, ok := s.prefs.RateOverride(ctx); ok {
		rate = override
	}
	fontSize := s.prefs.FontSize(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.categories = categories
	s.rate = rate
	s.fontSize = fontSize
	return nil
}

// Rows recomputes the grouped/filtered sequence from the current
// snapshot. There is no incremental recomputation; every call runs the
// full pipeline. The pipeline runs over a copy of the product list so
// the returned rows never alias store-owned memory.
func (s *Store) Rows() []pricelist.ViewRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]pricelist.Product, len(s.products))
	copy(products, s.products)
	return pricelist.BuildRows(products, s.categories, pricelist.Filter{
		Search:     s.search,
		Category:   s.category,
		ShowHidden: s.showHidden,
	})
}

// Filter returns the active filter state.
func (s *Store) Filter() pricelist.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricelist.Filter{Search: s.search, Category: s.category, ShowHidden: s.showHidden}
}

// Rate returns the exchange rate in effect for display.
func (s *Store) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetRate applies a new exchange rate to the session: the loaded
// products adopt it at display time immediately, the override is
// persisted locally, and the server copy is updated. A failed server
// write is logged and does not block the session.
func (s *Store) SetRate(ctx context.Context, rate float64) error {
	if err := s.prefs.SetRateOverride(ctx, rate); err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	if err := s.gateway.SetRate(ctx, rate); err != nil {
		s.logger.Warn("persist rate failed", "error", err)
	}
	return nil
}

// SetSearch updates the search text.
func (s *Store) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
}

// SetCategory updates the category filter ("all" disables it).
func (s *Store) SetCategory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		name = pricelist.CategoryAll
	}
	s.category = name
}

// SetShowHidden toggles inclusion of hidden products.
func (s *Store) SetShowHidden(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHidden = show
}

// FontSize returns the current display font size.
func (s *Store) FontSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fontSize
}

// SetFontSize clamps, applies, and persists the display font size.
func (s *Store) SetFontSize(ctx context.Context, size int) error {
	size = ClampFontSize(size)
	s.mu.Lock()
	s.fontSize = size
	s.mu.Unlock()
	return s.prefs.SetFontSize(ctx, size)
}

// Editing reports the current edit target, if any.
func (s *Store) Editing() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return 0, false
	}
	return s.edit.ProductID, true
}

// BeginEdit opens an edit session for the given product. Any unsaved
// buffer from a previous row is discarded silently.
func (s *Store) BeginEdit(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return fmt.Errorf("viewstate: begin edit: product %d not loaded", id)
	}
	s.edit = &Edit{ProductID: id, Fields: map[string]string{}}
	return nil
}

// StageField records raw field text in the edit buffer.
func (s *Store) StageField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return fmt.Errorf("viewstate: no edit in progress")
	}
	s.edit.Fields[field] = value
	return nil
}

// CancelEdit discards the edit buffer.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// CommitEdit parses the staged values, optimistically patches the
// local snapshot, then forwards the patch to the gateway. On gateway
// failure the whole product list is reloaded to discard the optimistic
// patch; the failure is logged, not surfaced.
func (s *Store) CommitEdit(ctx context.Context) error {
	s.mu.Lock()
	if s.edit == nil {
		s.mu.Unlock()
		return fmt.Errorf("viewstate: no edit in progress")
	}
	id := s.edit.ProductID
	patch := patchFromBuffer(s.edit.Fields)
	s.edit = nil
	s.applyLocked(id, patch)
	s.mu.Unlock()

	s.forward(ctx, id, patch)
	return nil
}

// ToggleHidden flips a product's hidden flag through the same
// optimistic path as a field edit.
func (s *Store) ToggleHidden(ctx context.Context, id int64) error {
	s.mu.Lock()
	p := s.findLocked(id)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("viewstate: toggle hidden: product %d not loaded", id)
	}
	hidden := !p.Hidden
	patch := pricelist.ProductPatch{Hidden: &hidden}
	s.applyLocked(id, patch)
	s.mu.Unlock()

	s.forward(ctx, id, patch)
	return nil
}

// SetMenuTarget records the transient context-menu target.
func (s *Store) SetMenuTarget(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuTarget = id
}

// MenuTarget returns the transient context-menu target (0 when none).
func (s *Store) MenuTarget() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuTarget
}

// ClearMenuTarget resets the context-menu target.
func (s *Store) ClearMenuTarget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuTarget = 0
}

func (s *Store) forward(ctx context.Context, id int64, patch pricelist.ProductPatch) {
	if err := s.gateway.UpdateProduct(ctx, id, patch); err != nil {
		s.logger.Warn("forward edit failed, reloading", "product_id", id, "error", err)
		s.reload(ctx)
	}
}

// reload discards local state in favor of the source of truth. There
// is no partial-field rollback.
func (s *Store) reload(ctx context.Context) {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		s.logger.Error("reload products failed", "error", err)
		return
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

func (s *Store) findLocked(id int64) *pricelist.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Store) applyLocked(id int64, patch pricelist.ProductPatch) {
	p := s.findLocked(id)
	if p == nil {
		return
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.CostUSD != nil {
		p.CostUSD = *patch.CostUSD
	}
	if patch.Profit != nil {
		p.Profit = *patch.Profit
	}
	if patch.WholesaleProfit != nil {
		p.WholesaleProfit = *patch.WholesaleProfit
	}
	if patch.WholesaleUSD != nil {
		p.WholesaleUSD = *patch.WholesaleUSD
	}
	if patch.CartonCost != nil {
		p.CartonCost = *patch.CartonCost
	}
	if patch.Hidden != nil {
		p.Hidden = *patch.Hidden
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
}

// Editable field names accepted by the staging buffer.
const (
	FieldName            = "name"
	FieldCostUSD         = "cost_usd"
	FieldProfit          = "profit"
	FieldWholesaleProfit = "wholesale_profit"
	FieldWholesaleUSD    = "wholesale_usd"
	FieldCartonCost      = "carton_cost"
)

// patchFromBuffer converts staged text to a typed patch. Numeric
// fields go through ParseAmount, so invalid text coerces to 0 and the
// commit never fails on input. The legacy cost sync happens at the
// gateway, not here.
func patchFromBuffer(fields map[string]string) pricelist.ProductPatch {
	var patch pricelist.ProductPatch
	for field, raw := range fields {
		switch field {
		case FieldName:
			name := strings.TrimSpace(raw)
			patch.Name = &name
		case FieldCostUSD:
			v := ParseAmount(raw)
			patch.CostUSD = &v
		case FieldProfit:
			v := ParseAmount(raw)
			patch.Profit = &v
		case FieldWholesaleProfit:
			v := ParseAmount(raw)
			patch.WholesaleProfit = &v
		case FieldWholesaleUSD:
			v := ParseAmount(raw)
			patch.WholesaleUSD = &v
		case FieldCartonCost:
			v := ParseAmount(raw)
			patch.CartonCost = &v
		}
	}
	return patch
}
