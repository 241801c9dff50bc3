package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/tender"
	"github.com/MrJamesThe3rd/procura/internal/totals"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// Row is one exported line.
type Row struct {
	Section   string
	Code      string
	Name      string
	Unit      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.NullDecimal
}

func (r Row) Line() totals.Line {
	return totals.Line{Section: r.Section, Quantity: r.Quantity, UnitPrice: r.UnitPrice, Total: r.Total}
}

// Document is a header with its lines, flattened for export.
type Document struct {
	Kind   string
	Number string
	Title  string
	Status workflow.Badge
	Rows   []Row
}

func FromBOQ(b *boq.BOQ, items []boq.Item) Document {
	doc := Document{Kind: "ВОР", Number: b.Number, Title: b.Title, Status: boq.Workflow.Badge(b.Status)}
	for _, it := range items {
		doc.Rows = append(doc.Rows, Row{
			Section: it.Section, Code: it.Code, Name: it.Name, Unit: it.Unit,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}

	return doc
}

func FromEstimate(e *estimate.Estimate, items []estimate.Item) Document {
	doc := Document{Kind: "Смета", Number: e.Number, Title: e.Title, Status: estimate.Workflow.Badge(e.Status)}
	for _, it := range items {
		doc.Rows = append(doc.Rows, Row{
			Section: it.Section, Name: it.Name, Unit: it.Unit,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}

	return doc
}

func FromRequest(pr *request.PurchaseRequest, items []request.Item) Document {
	doc := Document{
		Kind:   "Заявка на закупку",
		Number: pr.Number,
		Title:  pr.FundingType.Label(),
		Status: request.Workflow.Badge(pr.Status),
	}

	for _, it := range items {
		doc.Rows = append(doc.Rows, Row{
			Section: it.Section, Name: it.Name, Unit: it.Unit,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}

	return doc
}

// FromTender exports the lots at their start prices.
func FromTender(t *tender.Tender, lots []tender.Lot) Document {
	doc := Document{Kind: "Тендер", Number: t.Number, Title: t.Title, Status: tender.Workflow.Badge(t.Status)}
	for _, l := range lots {
		doc.Rows = append(doc.Rows, Row{
			Code: fmt.Sprintf("Лот %d", l.Number), Name: l.Name, Unit: l.Unit,
			Quantity: l.Quantity, UnitPrice: l.StartPrice, Total: l.Total,
		})
	}

	return doc
}

func FromOrder(o *order.PurchaseOrder, items []order.Item) Document {
	doc := Document{Kind: "Заказ поставщику", Number: o.Number, Status: order.Workflow.Badge(o.Status)}
	for _, it := range items {
		doc.Rows = append(doc.Rows, Row{
			Name: it.Name, Unit: it.Unit,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}

	return doc
}

const sheetName = "Позиции"

var columns = []string{"№", "Шифр", "Наименование", "Ед. изм.", "Кол-во", "Цена", "Сумма"}

// WriteXLSX renders doc as a single-sheet workbook: lines grouped by section,
// a subtotal row after each section and the grand total at the bottom.
// Money cells are rounded to kopecks.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	row := 1
	set := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}

		row++

		return f.SetSheetRow(sheetName, cell, &values)
	}

	title := strings.TrimSpace(fmt.Sprintf("%s %s %s", doc.Kind, doc.Number, doc.Title))
	if err := set(title, "", "", "", "", "", doc.Status.Label); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}

	row++

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	headerRow := row
	if err := set(header...); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := f.SetRowStyle(sheetName, headerRow, headerRow, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	sections := totals.Sections(totals.Of(doc.Rows))
	n := 0

	for _, sec := range sections {
		if sec.Name != "" {
			if err := set("", "", sec.Name); err != nil {
				return fmt.Errorf("writing section %q: %w", sec.Name, err)
			}
		}

		for _, r := range doc.Rows {
			if r.Section != sec.Name {
				continue
			}

			n++

			if err := set(n, r.Code, r.Name, r.Unit, r.Quantity.InexactFloat64(), money(r.UnitPrice), money(totals.Row(r.Line()))); err != nil {
				return fmt.Errorf("writing line %d: %w", n, err)
			}
		}

		if sec.Name != "" {
			subtotal := row
			if err := set("", "", "Итого по разделу «"+sec.Name+"»", "", "", "", money(sec.Subtotal)); err != nil {
				return fmt.Errorf("writing subtotal: %w", err)
			}

			if err := f.SetRowStyle(sheetName, subtotal, subtotal, bold); err != nil {
				return fmt.Errorf("styling subtotal: %w", err)
			}
		}
	}

	grand := row
	if err := set("", "", "ВСЕГО", "", "", "", money(totals.Grand(totals.Of(doc.Rows)))); err != nil {
		return fmt.Errorf("writing grand total: %w", err)
	}

	if err := f.SetRowStyle(sheetName, grand, grand, bold); err != nil {
		return fmt.Errorf("styling grand total: %w", err)
	}

	if err := f.SetColWidth(sheetName, "C", "C", 60); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(totals.DisplayPlaces).InexactFloat64()
}

// Summary renders doc as plain text for pasting into a letter or a chat.
func Summary(doc Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s", doc.Kind, doc.Number)

	if doc.Title != "" {
		fmt.Fprintf(&sb, " «%s»", doc.Title)
	}

	fmt.Fprintf(&sb, " (%s)\n", doc.Status.Label)

	lines := totals.Of(doc.Rows)

	for _, sec := range totals.Sections(lines) {
		name := sec.Name
		if name == "" {
			name = "Без раздела"
		}

		fmt.Fprintf(&sb, "* %s | %d поз. | %s ₽\n", name, sec.Lines, totals.Format(sec.Subtotal))
	}

	fmt.Fprintf(&sb, "Итого: %s ₽\n", totals.Format(totals.Grand(lines)))

	return sb.String()
}
