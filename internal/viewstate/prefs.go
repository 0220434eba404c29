package viewstate

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/pricedesk/pricedesk/internal/columns"
)

// Font size display bounds.
const (
	MinFontSize     = 10
	MaxFontSize     = 24
	DefaultFontSize = 14
)

const (
	keyRateOverride   = "prefs:rate_override"
	keyColumnOrder    = "prefs:column_order"
	keyVisibleColumns = "prefs:visible_columns"
	keyFontSize       = "prefs:font_size"
)

// Prefs persists the client-side view configuration. Every read is
// tolerant of absence and of malformed content: both fall back to the
// defaults instead of failing the load.
type Prefs struct {
	rdb *redis.Client
}

// NewPrefs wires the preference store.
func NewPrefs(rdb *redis.Client) *Prefs {
	return &Prefs{rdb: rdb}
}

// RateOverride returns the locally persisted exchange rate and whether
// one is set. Once set it takes precedence over the server rate.
func (p *Prefs) RateOverride(ctx context.Context) (float64, bool) {
	raw, err := p.rdb.Get(ctx, keyRateOverride).Result()
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// SetRateOverride stores the local rate override.
func (p *Prefs) SetRateOverride(ctx context.Context, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return errors.New("invalid rate override")
	}
	return p.rdb.Set(ctx, keyRateOverride, strconv.FormatFloat(rate, 'f', -1, 64), 0).Err()
}

// ColumnOrder returns the persisted column order reconciled against
// the current catalog.
func (p *Prefs) ColumnOrder(ctx context.Context) []string {
	return columns.Reconcile(p.stringList(ctx, keyColumnOrder))
}

// SetColumnOrder persists the column order.
func (p *Prefs) SetColumnOrder(ctx context.Context, order []string) error {
	return p.setStringList(ctx, keyColumnOrder, columns.Reconcile(order))
}

// VisibleColumns returns the persisted visible subset, replaced with
// the defaults when corrupt.
func (p *Prefs) VisibleColumns(ctx context.Context) []string {
	return columns.SanitizeVisible(p.stringList(ctx, keyVisibleColumns))
}

// SetVisibleColumns persists the visible subset.
func (p *Prefs) SetVisibleColumns(ctx context.Context, visible []string) error {
	return p.setStringList(ctx, keyVisibleColumns, visible)
}

// FontSize returns the persisted display font size clamped to bounds.
func (p *Prefs) FontSize(ctx context.Context) int {
	raw, err := p.rdb.Get(ctx, keyFontSize).Result()
	if err != nil {
		return DefaultFontSize
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultFontSize
	}
	return ClampFontSize(v)
}

// SetFontSize persists the display font size.
func (p *Prefs) SetFontSize(ctx context.Context, size int) error {
	return p.rdb.Set(ctx, keyFontSize, strconv.Itoa(ClampFontSize(size)), 0).Err()
}

// Reset clears all persisted overrides, restoring defaults on the next
// read.
func (p *Prefs) Reset(ctx context.Context) error {
	return p.rdb.Del(ctx, keyRateOverride, keyColumnOrder, keyVisibleColumns, keyFontSize).Err()
}

// ClampFontSize bounds a font size to the displayable range.
func ClampFontSize(size int) int {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

func (p *Prefs) stringList(ctx context.Context, key string) []string {
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func (p *Prefs) setStringList(ctx context.Context, key string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, key, raw, 0).Err()
}
