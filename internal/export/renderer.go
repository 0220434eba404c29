package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricedesk/pricedesk/internal/columns"
	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/internal/pricing"
	"github.com/pricedesk/pricedesk/web"
)

// TableRow is one rendered line: a category header or a product's
// cell values in column order.
type TableRow struct {
	IsHeader bool
	Header   string
	Cells    []string
}

// TableData is the template payload for the export table.
type TableData struct {
	GeneratedAt string
	FontSize    int
	Rate        float64
	Columns     []columns.Descriptor
	Rows        []TableRow
}

// Renderer turns pipeline rows into the export HTML table. The same
// pipeline and calculator feed the live view, so the exported numbers
// are identical to the displayed ones.
type Renderer struct {
	tpl     *template.Template
	printer *message.Printer
	now     func() time.Time
}

// NewRenderer parses the export template.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.ParseFS(web.Templates, "templates/export/pricelist.html")
	if err != nil {
		return nil, fmt.Errorf("export: parse template: %w", err)
	}
	return &Renderer{
		tpl:     tpl,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}, nil
}

// Render executes the export template for the given rows and column
// configuration.
func (r *Renderer) Render(rows []pricelist.ViewRow, descs []columns.Descriptor, rate float64, fontSize int) (string, error) {
	data := TableData{
		GeneratedAt: r.now().Format("2006-01-02 15:04"),
		FontSize:    viewFontSize(fontSize),
		Rate:        rate,
		Columns:     descs,
		Rows:        make([]TableRow, 0, len(rows)),
	}
	for _, row := range rows {
		if row.Kind == pricelist.RowHeader {
			data.Rows = append(data.Rows, TableRow{IsHeader: true, Header: row.Header})
			continue
		}
		data.Rows = append(data.Rows, TableRow{Cells: r.cells(row.Product, descs, rate)})
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("export: render table: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) cells(p *pricelist.Product, descs []columns.Descriptor, rate float64) []string {
	price := pricing.FinalPrice(p.PriceInputs(), rate)
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		switch d.ID {
		case columns.ColName:
			out = append(out, p.Name)
		case columns.ColCategory:
			out = append(out, p.CategoryName)
		case columns.ColCostUSD:
			out = append(out, r.printer.Sprintf("%.2f", p.EffectiveCostUSD()))
		case columns.ColPrice:
			out = append(out, r.printer.Sprintf("%d", price))
		case columns.ColPerUnit:
			out = append(out, r.printer.Sprintf("%d", pricing.PerUnit(price)))
		case columns.ColProfit:
			out = append(out, r.printer.Sprintf("%.0f", p.Profit))
		case columns.ColWholesaleUSD:
			out = append(out, r.printer.Sprintf("%.2f", p.WholesaleUSD))
		case columns.ColCartonCost:
			out = append(out, r.printer.Sprintf("%.2f", p.CartonCost))
		case columns.ColHidden:
			if p.Hidden {
				out = append(out, "yes")
			} else {
				out = append(out, "")
			}
		default:
			out = append(out, "")
		}
	}
	return out
}

func viewFontSize(size int) int {
	if size <= 0 {
		return 14
	}
	return size
}
