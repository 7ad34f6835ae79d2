package kbperm

import (
	"encoding/json"
	"fmt"
)

// Table is a C-by-R grid of optional cells. Rows and columns are
// runtime-dimensioned, unlike the const-generic matrix this idiom is
// grounded on; callers fix Rows/Cols once at construction.
type Table[T any] struct {
	Rows, Cols int
	cells      [][]*T
}

// NewTable allocates an empty Rows-by-Cols table; every cell is nil.
func NewTable[T any](rows, cols int) *Table[T] {
	cells := make([][]*T, rows)
	for r := range cells {
		cells[r] = make([]*T, cols)
	}
	return &Table[T]{Rows: rows, Cols: cols, cells: cells}
}

// Get returns the cell at (row, col), or nil if empty.
func (t *Table[T]) Get(row, col int) *T {
	return t.cells[row][col]
}

// Set assigns the cell at (row, col). A nil value clears the cell.
func (t *Table[T]) Set(row, col int, value *T) {
	t.cells[row][col] = value
}

// Mask nulls every cell for which predicate(row, col, value) returns
// false. Cells that are already empty are left alone.
func (t *Table[T]) Mask(predicate func(row, col int, value T) bool) {
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			if v := t.cells[r][c]; v != nil && !predicate(r, c, *v) {
				t.cells[r][c] = nil
			}
		}
	}
}

// tableEnvelope is the on-disk JSON shape: {"version":1,"data":<grid>}.
type tableEnvelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

const tableFormatVersion = 1

// cellCodec converts between a cell value and its JSON representation.
type cellCodec[T any] interface {
	toJSON(T) any
	fromJSON(any) (T, error)
}

// encodeTable renders a table to its envelope JSON form, eliding
// trailing null cells within a row and trailing all-null rows.
func encodeTable[T any](t *Table[T], codec cellCodec[T]) ([]byte, error) {
	rows := make([]any, t.Rows)
	for r := 0; r < t.Rows; r++ {
		row := make([]any, t.Cols)
		for c := 0; c < t.Cols; c++ {
			if v := t.cells[r][c]; v != nil {
				row[c] = codec.toJSON(*v)
			} else {
				row[c] = nil
			}
		}
		for len(row) > 0 && row[len(row)-1] == nil {
			row = row[:len(row)-1]
		}
		rows[r] = row
	}
	for len(rows) > 0 {
		last, ok := rows[len(rows)-1].([]any)
		if !ok || len(last) != 0 {
			break
		}
		rows = rows[:len(rows)-1]
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tableEnvelope{Version: tableFormatVersion, Data: data})
}

// decodeTable parses an envelope JSON document into a Rows-by-Cols
// table, validating the version and bounding row/column counts.
func decodeTable[T any](raw []byte, rows, cols int, codec cellCodec[T]) (*Table[T], error) {
	var env tableEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid table envelope: %w", err)
	}
	if env.Version != tableFormatVersion {
		return nil, fmt.Errorf("unsupported table version %d (expected %d)", env.Version, tableFormatVersion)
	}
	var grid []json.RawMessage
	if err := json.Unmarshal(env.Data, &grid); err != nil {
		return nil, fmt.Errorf("table data must be an array: %w", err)
	}
	if len(grid) > rows {
		return nil, fmt.Errorf("table has too many rows (maximum is %d)", rows)
	}
	t := NewTable[T](rows, cols)
	for r, rawRow := range grid {
		var row []json.RawMessage
		if err := json.Unmarshal(rawRow, &row); err != nil {
			return nil, fmt.Errorf("row %d must be an array: %w", r, err)
		}
		if len(row) > cols {
			return nil, fmt.Errorf("row %d has too many columns (maximum is %d)", r, cols)
		}
		for c, rawCell := range row {
			var cell any
			if err := json.Unmarshal(rawCell, &cell); err != nil {
				return nil, fmt.Errorf("invalid cell (%d, %d): %w", r, c, err)
			}
			if cell == nil {
				continue
			}
			v, err := codec.fromJSON(cell)
			if err != nil {
				return nil, fmt.Errorf("invalid cell (%d, %d): %w", r, c, err)
			}
			t.cells[r][c] = &v
		}
	}
	return t, nil
}
