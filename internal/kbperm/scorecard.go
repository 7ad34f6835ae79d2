package kbperm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scorecard is a Record's metric percentages under a name, persisted
// to disk so the rank command can compare candidates from separate
// search runs without re-scoring them.
type Scorecard struct {
	Name        string             `json:"name"`
	Percentages map[string]float64 `json:"percentages"`
}

// NewScorecard builds a Scorecard from a record's symbol table.
func NewScorecard(name string, r *Record, weight Weight) Scorecard {
	return Scorecard{Name: name, Percentages: r.SymbolTable(weight)}
}

// WriteScorecard writes sc as JSON to path.
func WriteScorecard(path string, sc Scorecard) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scorecard: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing scorecard %s: %w", path, err)
	}
	return nil
}

// LoadScorecards reads every *.json file in dir as a Scorecard, sorted
// by filename for a deterministic default order.
func LoadScorecards(dir string) ([]Scorecard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scorecards directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	cards := make([]Scorecard, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading scorecard %s: %w", name, err)
		}
		var sc Scorecard
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("parsing scorecard %s: %w", name, err)
		}
		if sc.Name == "" {
			sc.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		cards = append(cards, sc)
	}
	return cards, nil
}
