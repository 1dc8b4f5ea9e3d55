// Package report renders console summaries of a finished corpus.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/couchcryptid/f1-dataset-etl/internal/domain"
)

// Summary prints the corpus row count, a per-season breakdown and the
// column names.
func Summary(w io.Writer, corpus domain.Table, path string) {
	_, _ = fmt.Fprintf(w, "Saved %d rows to %s\n", corpus.Len(), path)
	if corpus.Empty() {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Year", "Events", "Rows", "Winners"})

	var totalEvents, totalWinners int
	for _, s := range seasonStats(corpus) {
		t.AppendRow(table.Row{s.year, s.events, s.rows, s.winners})
		totalEvents += s.events
		totalWinners += s.winners
	}
	t.AppendFooter(table.Row{"Total", totalEvents, corpus.Len(), totalWinners})
	t.Render()

	_, _ = fmt.Fprintf(w, "Columns: %s\n", strings.Join(corpus.Columns, ", "))
}

type seasonStat struct {
	year    int
	events  int
	rows    int
	winners int
}

// seasonStats groups rows by year in first-seen order.
func seasonStats(corpus domain.Table) []seasonStat {
	var stats []seasonStat
	index := make(map[int]int)
	seen := make(map[domain.Key]bool)

	for _, r := range corpus.Rows {
		i, ok := index[r.Year]
		if !ok {
			i = len(stats)
			index[r.Year] = i
			stats = append(stats, seasonStat{year: r.Year})
		}
		stats[i].rows++
		stats[i].winners += r.Winner

		event := domain.Key{Year: r.Year, Race: r.Race}
		if !seen[event] {
			seen[event] = true
			stats[i].events++
		}
	}
	return stats
}
