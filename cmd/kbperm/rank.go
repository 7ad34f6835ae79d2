package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	kb "github.com/kbperm/kbperm/internal/kbperm"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"
)

var rankCommand = &cli.Command{
	Name:      "rank",
	Usage:     "render a comparison table over a directory of previously written scorecards",
	ArgsUsage: "<scorecards-dir>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "metric", Usage: "metric columns to display, in order (repeatable; default: all)"},
		&cli.StringFlag{Name: "sort-by", Value: "", Usage: "metric to sort rows by (default: input order)"},
		&cli.BoolFlag{Name: "ascending", Usage: "sort ascending instead of descending"},
	},
	Action: rankAction,
}

func rankAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one argument: the scorecards directory")
	}
	cards, err := kb.LoadScorecards(c.Args().First())
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return fmt.Errorf("no scorecards found")
	}

	metrics := c.StringSlice("metric")
	if len(metrics) == 0 {
		metrics = defaultMetricColumns()
	}

	if sortBy := c.String("sort-by"); sortBy != "" {
		asc := c.Bool("ascending")
		sort.SliceStable(cards, func(i, j int) bool {
			vi, vj := cards[i].Percentages[sortBy], cards[j].Percentages[sortBy]
			if asc {
				return vi < vj
			}
			return vi > vj
		})
	}

	renderComparison(os.Stdout, cards, metrics)
	return nil
}

func defaultMetricColumns() []string {
	var names []string
	for _, m := range kb.AllUnigramMetrics {
		names = append(names, m.String())
	}
	for _, m := range kb.AllBigramMetrics {
		names = append(names, m.String())
	}
	for _, m := range kb.AllTrigramMetrics {
		names = append(names, m.String())
	}
	return names
}

// renderComparison prints a ranking table: one row per scorecard, one
// delta row between consecutive scorecards showing the change in each
// metric's percentage.
func renderComparison(w *os.File, cards []kb.Scorecard, metrics []string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Box.PaddingLeft = ""
	tw.Style().Box.PaddingRight = ""
	tw.Style().Title.Align = text.AlignCenter
	tw.SetTitle("Layout Ranking")

	colConfigs := []table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Name", Align: text.AlignLeft},
	}
	for _, m := range metrics {
		colConfigs = append(colConfigs, table.ColumnConfig{Name: m, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(colConfigs)

	header := table.Row{"#", "Name"}
	for _, m := range metrics {
		header = append(header, m)
	}
	tw.AppendHeader(header)

	var prev []float64
	for i, sc := range cards {
		curr := make([]float64, len(metrics))
		row := table.Row{i + 1, sc.Name}
		for j, m := range metrics {
			v, ok := sc.Percentages[m]
			curr[j] = kb.WithDefault(sc.Percentages, m, 0.0)
			if ok {
				row = append(row, fmt.Sprintf("%.2f%%", v))
			} else {
				row = append(row, "-")
			}
		}
		if i > 0 {
			deltaRow := table.Row{"", ""}
			for j := range metrics {
				deltaRow = append(deltaRow, formatRankDelta(curr[j]-prev[j]))
			}
			tw.AppendRow(deltaRow)
		}
		tw.AppendRow(row)
		prev = curr
	}

	tw.Render()
}

// formatRankDelta colors a percentage-point delta: green for an
// increase, red for a decrease, uncolored below the noise floor.
func formatRankDelta(delta float64) string {
	c := text.Reset
	if delta >= 0.005 || delta <= -0.005 {
		c = kb.IfThen(delta >= 0.005, text.FgGreen, text.FgRed)
	}
	return c.Sprintf("%+.2f%%", delta)
}
