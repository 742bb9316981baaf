package main

import (
	"strconv"
	"strings"

	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var entryHeaders = table.Row{"#", "Offset", "Start", "End", "Lang", "Size", "Text"}

// renderEntries draws entries as a table. Line breaks inside a caption are shown as ⏎ so each entry stays on one row.
func renderEntries(entries []entry.Entry, maxText int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(entryHeaders)

	for i, e := range entries {
		caption := strings.NewReplacer("\r\n", "⏎", "\n", "⏎").Replace(e.Text)
		if maxText > 0 {
			caption = text.Trim(caption, maxText)
		}
		tw.AppendRow(table.Row{
			i + 1,
			"0x" + strconv.FormatInt(int64(e.Offset), 16),
			e.StartTime,
			e.EndTime,
			e.Label,
			e.Size,
			caption,
		})
	}

	configs := make([]table.ColumnConfig, 0, len(entryHeaders))
	for i := range entryHeaders {
		align := text.AlignRight
		if i >= 4 && i != 5 {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	tw.AppendFooter(table.Row{"", "", "", "", "", "", strconv.Itoa(len(entries)) + " entries"})

	return tw.Render()
}
