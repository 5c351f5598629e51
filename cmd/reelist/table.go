package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable renders a rounded table. Every table in this CLI keeps its
// counter columns in a contiguous tail, so columns from numericFrom
// onward are right-aligned and the rest stay left-aligned.
func renderTable(headers []string, rows [][]string, numericFrom int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if numericFrom < 0 || numericFrom > len(headers) {
		numericFrom = len(headers)
	}
	configs := make([]table.ColumnConfig, 0, len(headers)-numericFrom)
	for i := numericFrom; i < len(headers); i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
