// Package report renders tenant slices of the store as xlsx workbooks.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"dbf-pump/internal/dialect"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ErrNoData means no tenant had rows for the filter; no workbook is produced.
var ErrNoData = errors.New("no report data")

const (
	headerColor = "808080"
	minWidth    = 10
)

var (
	DefaultColumns     = []string{"wz__pat", "wz_name", "wz__dat", "wz_time", "wz__geb"}
	DefaultDateColumns = []string{"wz__dat", "wz__geb"}
)

type Tenant struct {
	ID   string
	Name string // sheet name, falls back to ID
}

type Options struct {
	Table       string
	Columns     []string
	DateColumn  string // range filter column
	From, To    string
	DateColumns []string // shown as DD.MM.YYYY
	Labels      map[string]string
}

// Build queries every tenant and adds one sheet per tenant with data, in
// tenant order.
func Build(ctx context.Context, q Querier, d dialect.Dialect, tenants []Tenant, opts Options, log zerolog.Logger) (*excelize.File, error) {
	if len(opts.Columns) == 0 {
		opts.Columns = DefaultColumns
	}
	if opts.DateColumns == nil {
		opts.DateColumns = DefaultDateColumns
	}
	dateCol := make(map[string]bool, len(opts.DateColumns))
	for _, c := range opts.DateColumns {
		dateCol[c] = true
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := 0
	for _, t := range tenants {
		rows, err := Query(ctx, q, d, Filter{
			Table:      opts.Table,
			Tenant:     t.ID,
			Columns:    opts.Columns,
			DateColumn: opts.DateColumn,
			From:       opts.From,
			To:         opts.To,
		})
		if err != nil {
			f.Close()
			return nil, err
		}
		if len(rows) == 0 {
			log.Debug().Str("tenant", t.ID).Msg("no rows, no sheet")
			continue
		}
		name := t.Name
		if name == "" {
			name = t.ID
		}
		if err := writeSheet(f, name, header, opts, dateCol, rows); err != nil {
			f.Close()
			return nil, err
		}
		sheets++
		log.Info().Str("tenant", t.ID).Str("sheet", name).Int("rows", len(rows)).Msg("sheet written")
	}

	if sheets == 0 {
		f.Close()
		return nil, ErrNoData
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, header int, opts Options, dateCol map[string]bool, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	widths := make([]int, len(opts.Columns))
	for i, c := range opts.Columns {
		label := Label(c, opts.Labels)
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, label); err != nil {
			return err
		}
		widths[i] = max(utf8.RuneCountInString(label), minWidth)
	}
	last, _ := excelize.CoordinatesToCellName(len(opts.Columns), 1)
	if err := f.SetCellStyle(name, "A1", last, header); err != nil {
		return err
	}

	for r, row := range rows {
		for i, v := range row {
			if dateCol[opts.Columns[i]] {
				v = formatDate(v)
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if v != nil {
				widths[i] = max(widths[i], utf8.RuneCountInString(fmt.Sprint(v)))
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, float64(w)); err != nil {
			return err
		}
	}
	return nil
}

// formatDate turns ISO dates into DD.MM.YYYY and leaves anything else alone.
func formatDate(v any) any {
	s, ok := v.(string)
	if !ok || len(s) < 10 {
		return v
	}
	d, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return v
	}
	return d.Format("02.01.2006")
}

// WriteFile builds the workbook and saves it to path.
func WriteFile(ctx context.Context, q Querier, d dialect.Dialect, tenants []Tenant, opts Options, path string, log zerolog.Logger) error {
	f, err := Build(ctx, q, d, tenants, opts, log)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
