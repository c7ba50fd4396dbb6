// Package export renders an estimate as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/pricing"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetEquipment    = "Equipment"
	SheetControls     = "Controls"
	SheetDistribution = "Distribution"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds the estimate workbook for p. Prices are recomputed against
// lookup.
func Workbook(p project.Project, lookup estimate.Lookup) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with "Sheet1"; rename it rather than leave it empty.
	if err := f.SetSheetName(f.GetSheetName(0), SheetEquipment); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetControls, SheetDistribution} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summary := estimate.Summarize(p.Items, lookup, p.Settings.ControlCounts, p.Settings.PriceAdjustments)
	steps := []func(*excelize.File) error{
		func(f *excelize.File) error { return writeEquipment(f, p, lookup) },
		func(f *excelize.File) error { return writeControls(f, summary) },
		func(f *excelize.File) error { return writeDistribution(f, summary) },
	}
	for _, step := range steps {
		if err := step(f); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Filename derives a download name from a project name.
func Filename(projectName string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(projectName) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "estimate"
	}
	return name + ".xlsx"
}

// Write renders the workbook for p to w.
func Write(w io.Writer, p project.Project, lookup estimate.Lookup) error {
	f, err := Workbook(p, lookup)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func controlHeaders() []any {
	out := make([]any, 0, len(catalog.ControlKinds()))
	for _, kind := range catalog.ControlKinds() {
		out = append(out, string(kind))
	}
	return out
}

func controlCells(c catalog.Controls) []any {
	out := make([]any, 0, len(catalog.ControlKinds()))
	for _, kind := range catalog.ControlKinds() {
		out = append(out, c[kind])
	}
	return out
}

func writeEquipment(f *excelize.File, p project.Project, lookup estimate.Lookup) error {
	header := append([]any{"id", "type", "name", "quantity", "pricing_model", "size", "unit_price", "price"}, controlHeaders()...)
	rows := [][]any{header}
	for _, item := range p.Items {
		model := ""
		if item.Spec != nil {
			model = string(item.Spec.Model())
		}
		controls := estimate.EffectiveControls(item, lookup, p.Settings.ControlCounts)
		row := []any{
			item.ID,
			item.Type,
			item.Name,
			pricing.NormalizeQuantity(item.Quantity),
			model,
			pricing.Size(item.Spec),
			item.UnitPrice,
			estimate.Price(item, lookup),
		}
		rows = append(rows, append(row, controlCells(controls)...))
	}
	return writeRows(f, SheetEquipment, rows)
}

func writeControls(f *excelize.File, summary estimate.Summary) error {
	header := append([]any{"type", "name", "quantity"}, controlHeaders()...)
	header = append(header, "components", "price")

	rows := [][]any{header}
	for _, sub := range append(summary.Subtotals, summary.Totals) {
		row := append([]any{sub.Type, sub.Name, sub.Quantity}, controlCells(sub.Controls)...)
		rows = append(rows, append(row, sub.Components, sub.Price))
	}
	return writeRows(f, SheetControls, rows)
}

func writeDistribution(f *excelize.File, summary estimate.Summary) error {
	rows := [][]any{{"type", "name", "price", "percent"}}
	for _, share := range summary.Distribution {
		rows = append(rows, []any{share.Type, share.Name, share.Price, share.Percent})
	}
	rows = append(rows, []any{"", "quoted_total", summary.QuotedTotal, ""})
	return writeRows(f, SheetDistribution, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
