package kbperm

import "fmt"

// RegionMarker identifies which of the three substitution pools fills
// a key-table cell during the permutation search.
type RegionMarker byte

const (
	RegionOne   RegionMarker = 1
	RegionTwo   RegionMarker = 2
	RegionThree RegionMarker = 3
)

// Key is one cell of a key table: either a literal ASCII byte or a
// region marker awaiting substitution.
type Key struct {
	Region RegionMarker // zero when Literal is set
	Literal byte
	isRegion bool
}

// LiteralKey builds a Key holding a literal byte.
func LiteralKey(b byte) Key { return Key{Literal: b} }

// RegionKey builds a Key holding a region marker.
func RegionKey(r RegionMarker) Key { return Key{Region: r, isRegion: true} }

// IsRegion reports whether this cell is a region marker awaiting substitution.
func (k Key) IsRegion() bool { return k.isRegion }

// Byte returns the key's current byte value: the literal byte, or the
// raw marker value (1, 2, 3) if it has not yet been substituted.
func (k Key) Byte() byte {
	if k.isRegion {
		return byte(k.Region)
	}
	return k.Literal
}

func keyFromJSON(v any) (Key, error) {
	switch val := v.(type) {
	case string:
		if len(val) != 1 || val[0] < 0x04 || val[0] > 0x7f {
			return Key{}, fmt.Errorf("invalid literal key %q: must be a single ASCII character in [0x04,0x7F]", val)
		}
		return LiteralKey(val[0]), nil
	case float64:
		switch RegionMarker(val) {
		case RegionOne, RegionTwo, RegionThree:
			return RegionKey(RegionMarker(val)), nil
		default:
			return Key{}, fmt.Errorf("invalid region marker %v: must be 1, 2, or 3", val)
		}
	default:
		return Key{}, fmt.Errorf("invalid key cell: expected a string or an integer 1/2/3")
	}
}

func keyToJSON(k Key) any {
	if k.isRegion {
		return int(k.Region)
	}
	return string(rune(k.Literal))
}

type keyCodec struct{}

func (keyCodec) toJSON(k Key) any          { return keyToJSON(k) }
func (keyCodec) fromJSON(v any) (Key, error) { return keyFromJSON(v) }

// KeyTable maps each physical position to a Key (literal or region marker).
type KeyTable struct {
	*Table[Key]
}

// NewKeyTable allocates an empty rows-by-cols key table.
func NewKeyTable(rows, cols int) *KeyTable {
	return &KeyTable{NewTable[Key](rows, cols)}
}

// DecodeKeyTable parses an envelope-JSON key table document.
func DecodeKeyTable(raw []byte, rows, cols int) (*KeyTable, error) {
	t, err := decodeTable[Key](raw, rows, cols, keyCodec{})
	if err != nil {
		return nil, err
	}
	return &KeyTable{t}, nil
}

// Encode renders the key table to its envelope-JSON form.
func (k *KeyTable) Encode() ([]byte, error) {
	return encodeTable[Key](k.Table, keyCodec{})
}

// ByteMatrix materialises the key table's current byte values into a
// dense Rows-by-Cols matrix, for the scoring kernel's hot loop. Empty
// cells are represented as 0x00.
func (k *KeyTable) ByteMatrix() [][]byte {
	m := make([][]byte, k.Rows)
	for r := 0; r < k.Rows; r++ {
		m[r] = make([]byte, k.Cols)
		for c := 0; c < k.Cols; c++ {
			if cell := k.Get(r, c); cell != nil {
				m[r][c] = cell.Byte()
			}
		}
	}
	return m
}
