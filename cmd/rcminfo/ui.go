package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/alexeyco/simpletable"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

// bannerStyle styles the ASCII banner.
var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#d94f30")).
	Bold(true)

// printBanner prints the "RCM" ASCII art banner to stderr.
func printBanner() {
	banner := figure.NewFigure("RCM", "banner3", true)

	fmt.Fprintln(os.Stderr, bannerStyle.Render(banner.String()))
	fmt.Fprintln(os.Stderr)
}

// renderKeyValues prints a two-column metadata table with keys sorted.
func renderKeyValues(title string, md map[string]string) {
	if len(md) == 0 {
		return
	}

	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignLeft, Text: title},
			{Align: simpletable.AlignLeft, Text: "Value"},
		},
	}
	for _, k := range keys {
		v := md[k]
		if len(v) > 96 {
			v = v[:93] + "..."
		}
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Text: k},
			{Text: v},
		})
	}
	table.SetStyle(simpletable.StyleCompactLite)
	fmt.Println(table.String())
	fmt.Println()
}
