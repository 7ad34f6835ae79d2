package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kb "github.com/kbperm/kbperm/internal/kbperm"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"
)

const (
	defaultRows = 8
	defaultCols = 16
)

var searchFlags = []cli.Flag{
	&cli.StringFlag{Name: "layout", Value: "default.lt.json", Usage: "path to the layout table file"},
	&cli.StringFlag{Name: "keys", Value: "default.kt.json", Usage: "path to the key table file"},
	&cli.StringFlag{Name: "unigrams", Required: true, Usage: "path to the unigram TSV file"},
	&cli.StringFlag{Name: "bigrams", Required: true, Usage: "path to the bigram TSV file"},
	&cli.StringFlag{Name: "trigrams", Required: true, Usage: "path to the trigram TSV file"},
	&cli.IntFlag{Name: "rows", Value: defaultRows, Usage: "key matrix row count"},
	&cli.IntFlag{Name: "cols", Value: defaultCols, Usage: "key matrix column count"},
	&cli.StringFlag{Name: "metric", Value: "sfb", Usage: "metric to optimise during search"},
	&cli.StringFlag{Name: "goal", Usage: "override the metric's default goal: max or min"},
	&cli.StringFlag{Name: "weight", Value: "effort", Usage: "raw or effort"},
	&cli.StringFlag{Name: "region1", Usage: "substitution pool for region marker 1"},
	&cli.StringFlag{Name: "region2", Usage: "substitution pool for region marker 2"},
	&cli.StringFlag{Name: "region3", Usage: "substitution pool for region marker 3"},
	&cli.StringSliceFlag{Name: "sort", Usage: "sort rule metric[:asc|desc], repeatable"},
	&cli.StringSliceFlag{Name: "filter", Usage: "filter expression over metric percentages, repeatable"},
	&cli.IntFlag{Name: "max-records", Value: 20, Usage: "maximum records to keep after selection"},
	&cli.IntFlag{Name: "select-index", Value: -2147483648, Usage: "promote the record at this index (negative counts from the tail)"},
	&cli.BoolFlag{Name: "parallel", Value: true, Usage: "use the parallel search variant"},
	&cli.IntFlag{Name: "threads", Value: 0, Usage: "worker count for the parallel variant (0 = GOMAXPROCS)"},
	&cli.DurationFlag{Name: "sleep", Value: 0, Usage: "sleep duration per batch"},
	&cli.UintFlag{Name: "permutation-cap", Value: 0, Usage: "maximum permutations to evaluate (0 = unbounded)"},
	&cli.IntFlag{Name: "record-cap", Value: 100, Usage: "maximum records kept during search"},
	&cli.Float64Flag{Name: "tolerance", Value: 1.0, Usage: "admission tolerance in [0,1]"},
	&cli.BoolFlag{Name: "partial-permutations", Value: true, Usage: "permit a region pool shorter than its marker count"},
	&cli.StringFlag{Name: "scorecards-dir", Usage: "write one JSON scorecard per selected record into this directory"},
}

var searchCommand = &cli.Command{
	Name:   "search",
	Usage:  "exhaustively search region permutations for the best-scoring key matrices",
	Flags:  searchFlags,
	Action: searchAction,
}

func searchAction(ctx context.Context, c *cli.Command) error {
	rows, cols := c.Int("rows"), c.Int("cols")

	layoutBytes, err := os.ReadFile(c.String("layout"))
	if err != nil {
		return fmt.Errorf("reading layout table: %w", err)
	}
	layout, err := kb.DecodeLayoutTable(layoutBytes, rows, cols)
	if err != nil {
		return fmt.Errorf("parsing layout table: %w", err)
	}

	keysBytes, err := os.ReadFile(c.String("keys"))
	if err != nil {
		return fmt.Errorf("reading key table: %w", err)
	}
	keys, err := kb.DecodeKeyTable(keysBytes, rows, cols)
	if err != nil {
		return fmt.Errorf("parsing key table: %w", err)
	}

	layout.Mask(func(row, col int, _ kb.Digit) bool {
		return keys.Get(row, col) != nil
	})

	unigramTable, err := openAndRead(c.String("unigrams"), kb.ReadUnigramTable)
	if err != nil {
		return err
	}
	bigramTable, err := openAndRead(c.String("bigrams"), kb.ReadBigramTable)
	if err != nil {
		return err
	}
	trigramTable, err := openAndRead(c.String("trigrams"), kb.ReadTrigramTable)
	if err != nil {
		return err
	}

	metric, err := kb.ParseMetric(c.String("metric"))
	if err != nil {
		return err
	}
	goal := metric.Goal()
	if g := c.String("goal"); g != "" {
		switch strings.ToLower(g) {
		case "max":
			goal = kb.Max
		case "min":
			goal = kb.Min
		default:
			return fmt.Errorf("invalid goal %q: must be max or min", g)
		}
	}
	weight := kb.Effort
	if strings.ToLower(c.String("weight")) == "raw" {
		weight = kb.Raw
	}

	regions, err := buildRegions(keys, c.String("region1"), c.String("region2"), c.String("region3"))
	if err != nil {
		return err
	}

	uf := kb.BuildUnigramFingeringSet(layout)
	bf := kb.BuildBigramFingeringSet(layout)
	tf := kb.BuildTrigramFingeringSet(layout)

	scoreFn := buildScoreFn(metric, weight, uf, bf, tf, unigramTable, bigramTable, trigramTable)

	selectIndexFlag := c.Int("select-index")
	var selectIndex *int
	if selectIndexFlag != -2147483648 {
		v := selectIndexFlag
		selectIndex = &v
	}

	engine := &kb.Engine{
		Base:    keys.ByteMatrix(),
		Regions: regions,
		Options: kb.EngineOptions{
			Goal:                      goal,
			Tolerance:                 c.Float64("tolerance"),
			PermutationCap:            c.Uint("permutation-cap"),
			RecordCap:                 c.Int("record-cap"),
			Parallel:                  c.Bool("parallel"),
			Threads:                   c.Int("threads"),
			BatchSleep:                c.Duration("sleep"),
			PermitPartialPermutations: c.Bool("partial-permutations"),
			ScoreFn:                   scoreFn,
			Progress:                  func(done, total uint64) { kb.MustFprintf(os.Stderr, "\r%d/%d", done, total) },
			ProgressInterval:          200 * time.Millisecond,
		},
	}

	result, err := engine.Run()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	records := make([]*kb.Record, len(result.Records))
	detail := kb.DetailRequest{
		Unigrams: map[kb.UnigramMetric]bool{},
		Bigrams:  map[kb.BigramMetric]bool{},
		Trigrams: map[kb.TrigramMetric]bool{},
	}
	for i, entry := range result.Records {
		r := kb.BuildRecord(entry.Matrix, uf, bf, tf, unigramTable, bigramTable, trigramTable, detail)
		r.Normalize(weight)
		records[i] = r
	}

	sortRules, err := parseSortRules(c.StringSlice("sort"))
	if err != nil {
		return err
	}
	if len(sortRules) > 0 {
		kb.SortRecords(records, sortRules, weight)
	}

	exprs, err := parseFilterExprs(c.StringSlice("filter"))
	if err != nil {
		return err
	}
	records, err = kb.FilterRecords(records, exprs, weight)
	if err != nil {
		return err
	}

	recordPtrs := make([]*kb.Record, len(records))
	copy(recordPtrs, records)
	selected, err := kb.SelectRecords(recordPtrs, c.Int("max-records"), selectIndex)
	if err != nil {
		return err
	}

	renderRecords(os.Stdout, selected, weight)

	if dir := c.String("scorecards-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating scorecards directory: %w", err)
		}
		for i, r := range selected {
			name := fmt.Sprintf("record-%03d", i)
			sc := kb.NewScorecard(name, r, weight)
			if err := kb.WriteScorecard(filepath.Join(dir, name+".json"), sc); err != nil {
				return err
			}
		}
	}

	if result.PermutationsTruncated {
		fmt.Fprintln(os.Stderr, "note: permutation cap reached; search was truncated")
	}
	if result.RecordsTruncated {
		fmt.Fprintln(os.Stderr, "note: record cap reached; some candidates were discarded")
	}
	return nil
}

func openAndRead[T any](path string, read func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

func buildRegions(keys *kb.KeyTable, pool1, pool2, pool3 string) ([3]kb.Region, error) {
	var regions [3]kb.Region
	pools := [3]string{pool1, pool2, pool3}
	markers := [3]kb.RegionMarker{kb.RegionOne, kb.RegionTwo, kb.RegionThree}
	for i, marker := range markers {
		var positions []kb.Cell
		for r := 0; r < keys.Rows; r++ {
			for c := 0; c < keys.Cols; c++ {
				if cell := keys.Get(r, c); cell != nil && cell.IsRegion() && cell.Region == marker {
					positions = append(positions, kb.Cell{Row: r, Col: c})
				}
			}
		}
		regions[i] = kb.Region{Pool: []byte(pools[i]), Positions: positions}
	}
	return regions, nil
}

func parseSortRules(specs []string) ([]kb.SortRule, error) {
	var rules []kb.SortRule
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 2)
		metric, err := kb.ParseMetric(parts[0])
		if err != nil {
			return nil, err
		}
		dir := kb.Descending
		if len(parts) == 2 && strings.EqualFold(parts[1], "asc") {
			dir = kb.Ascending
		}
		rules = append(rules, kb.SortRule{Metric: metric, Direction: dir})
	}
	return rules, nil
}

func parseFilterExprs(specs []string) ([]*kb.Expression, error) {
	var exprs []*kb.Expression
	for _, s := range specs {
		e, err := kb.ParseExpression(s)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", s, err)
		}
		exprs = append(exprs, e.Reduce())
	}
	return exprs, nil
}

func buildScoreFn(metric kb.Metric, weight kb.Weight, uf *kb.FingeringSet[kb.UnigramFingering, kb.UnigramMetric], bf *kb.FingeringSet[kb.BigramFingering, kb.BigramMetric], tf *kb.FingeringSet[kb.TrigramFingering, kb.TrigramMetric], ut kb.UnigramTable, bt kb.BigramTable, tt kb.TrigramTable) kb.ScoreFunc {
	return func(m kb.Matrix) float64 {
		var sum, sumEW uint64
		switch metric.Arity {
		case kb.ArityUnigram:
			sum, sumEW = kb.ScoreUnigramsSummary(uf.ByMetric(metric.Unigram), m, ut)
		case kb.ArityBigram:
			sum, sumEW = kb.ScoreBigramsSummary(bf.ByMetric(metric.Bigram), m, bt)
		default:
			sum, sumEW = kb.ScoreTrigramsSummary(tf.ByMetric(metric.Trigram), m, tt)
		}
		if weight == kb.Raw {
			return float64(sum)
		}
		return float64(sumEW)
	}
}

func formatMatrix(m kb.Matrix) string {
	var b strings.Builder
	for _, row := range m {
		for _, c := range row {
			if c == 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte(c)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// renderRecords prints one row per record: its rank, its matrix
// rendered compactly, and every metric percentage ("-" where the
// metric's arity total is zero).
func renderRecords(w io.Writer, records []*kb.Record, weight kb.Weight) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Search Results")
	tw.Style().Title.Align = text.AlignCenter

	header := table.Row{"#", "Layout"}
	for _, m := range kb.AllUnigramMetrics {
		header = append(header, strings.ToUpper(m.String()))
	}
	for _, m := range kb.AllBigramMetrics {
		header = append(header, strings.ToUpper(m.String()))
	}
	for _, m := range kb.AllTrigramMetrics {
		header = append(header, strings.ToUpper(m.String()))
	}
	tw.AppendHeader(header)

	for i, r := range records {
		syms := r.SymbolTable(weight)
		row := table.Row{i, formatMatrix(r.Matrix)}
		for _, m := range kb.AllUnigramMetrics {
			row = append(row, percentCell(syms, m.String()))
		}
		for _, m := range kb.AllBigramMetrics {
			row = append(row, percentCell(syms, m.String()))
		}
		for _, m := range kb.AllTrigramMetrics {
			row = append(row, percentCell(syms, m.String()))
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func percentCell(syms map[string]float64, name string) string {
	v, ok := syms[name]
	if !ok {
		return "-"
	}
	return formatPercent(v)
}
