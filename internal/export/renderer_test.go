package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricedesk/pricedesk/internal/columns"
	"github.com/pricedesk/pricedesk/internal/pricelist"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return r
}

func TestRenderShowsSameNumbersAsLiveView(t *testing.T) {
	r := testRenderer(t)

	products := []pricelist.Product{
		{ID: 1, CategoryID: 2, Name: "Marlboro Red", CostUSD: 4.74, Profit: 500, CategoryName: "Cigarettes"},
	}
	categories := []pricelist.Category{{ID: 2, Name: "Cigarettes", SortOrder: 1}}
	rows := pricelist.BuildRows(products, categories, pricelist.Filter{Category: pricelist.CategoryAll})

	html, err := r.Render(rows, columns.OrderedVisible(columns.DefaultOrder(), columns.DefaultVisible(), false), 11700, 14)
	require.NoError(t, err)

	// 4.74 * 11700 + 500 rounded to the nearest 500.
	require.Contains(t, html, "56,000")
	require.Contains(t, html, "560")
	require.Contains(t, html, "Marlboro Red")
	require.Contains(t, html, "Cigarettes")
	require.Contains(t, html, "font-size: 14px")
	require.Contains(t, html, "Generated 2026-03-01 09:30")
}

func TestRenderEmitsCategoryHeaderRows(t *testing.T) {
	r := testRenderer(t)

	products := []pricelist.Product{
		{ID: 1, CategoryID: 2, Name: "Drum", CategoryName: "Tobacco"},
	}
	categories := []pricelist.Category{{ID: 2, Name: "Tobacco", SortOrder: 1}}
	rows := pricelist.BuildRows(products, categories, pricelist.Filter{Category: pricelist.CategoryAll})

	html, err := r.Render(rows, columns.OrderedVisible(nil, nil, false), 0, 0)
	require.NoError(t, err)
	require.Contains(t, html, `class="category"`)
	require.Contains(t, html, "Tobacco")
}

func TestRenderHonorsColumnConfiguration(t *testing.T) {
	r := testRenderer(t)

	products := []pricelist.Product{
		{ID: 1, CategoryID: 2, Name: "Camel Blue", CostUSD: 3.1, Profit: 500, CategoryName: "Cigarettes"},
	}
	categories := []pricelist.Category{{ID: 2, Name: "Cigarettes", SortOrder: 1}}
	rows := pricelist.BuildRows(products, categories, pricelist.Filter{Category: pricelist.CategoryAll})

	descs := columns.OrderedVisible(
		[]string{columns.ColPrice, columns.ColName},
		[]string{columns.ColName, columns.ColPrice},
		false,
	)
	html, err := r.Render(rows, descs, 11700, 12)
	require.NoError(t, err)

	// Price column is configured before the name column.
	require.Less(t, strings.Index(html, "<th>Price</th>"), strings.Index(html, "<th>Product</th>"))
	require.NotContains(t, html, "Wholesale")
}
