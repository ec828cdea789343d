package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableView is a rendered listing. Numeric lists columns to right-align.
type tableView struct {
	Title   string
	Headers []string
	Rows    [][]string
	Numeric []int
	Caption string
}

func renderTable(view tableView) string {
	columns := len(view.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if view.Title != "" {
		tw.SetTitle(view.Title)
	}
	if view.Caption != "" {
		tw.SetCaption(view.Caption)
	}

	header := make(table.Row, columns)
	for i, h := range view.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range view.Rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	numeric := make(map[int]bool, len(view.Numeric))
	for _, col := range view.Numeric {
		numeric[col] = true
	}
	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if numeric[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
