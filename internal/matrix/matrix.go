package matrix

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Rows        = 16
	GridRows    = 10
	FirstColumn = 5
	Columns     = 16

	// SentinelBit marks a corner minute LED in rows 0..3 and the alarm LED in row 4.
	SentinelBit uint16 = 0b0000000000010000

	Corners   = 4
	AlarmRow  = 4
	SlotCount = Corners + 1
)

// Matrix is one frame of lit word segments. Bit x of row y lights logical column x, row y.
type Matrix [Rows]uint16

// Set ORs mask into row. Rows outside the matrix are ignored.
func (m *Matrix) Set(row int, mask uint16) {
	if row < 0 || row >= Rows {
		return
	}
	m[row] |= mask
}

// Test reports whether every bit of mask is set in row.
func (m *Matrix) Test(row int, mask uint16) bool {
	if row < 0 || row >= Rows {
		return false
	}
	return m[row]&mask == mask
}

func (m *Matrix) Clear(row int, mask uint16) {
	if row < 0 || row >= Rows {
		return
	}
	m[row] &^= mask
}

func (m *Matrix) Reset() {
	*m = Matrix{}
}

// SetCell lights the grid cell at logical (x, y).
func (m *Matrix) SetCell(x, y int) {
	if !InGrid(x, y) {
		return
	}
	m[y] |= 1 << uint(x)
}

// Lit reports whether the grid cell at logical (x, y) is set.
func (m *Matrix) Lit(x, y int) bool {
	if !InGrid(x, y) {
		return false
	}
	t := uint16(1) << uint(x)
	return m[y]&t == t
}

// SetCorner lights corner minute LED i (0 upper-left, 1 upper-right, 2 bottom-right, 3 bottom-left).
func (m *Matrix) SetCorner(i int) {
	if i < 0 || i >= Corners {
		return
	}
	m[i] |= SentinelBit
}

func (m *Matrix) Corner(i int) bool {
	if i < 0 || i >= Corners {
		return false
	}
	return m[i]&SentinelBit > 0
}

func (m *Matrix) SetAlarm() {
	m[AlarmRow] |= SentinelBit
}

func (m *Matrix) Alarm() bool {
	return m[AlarmRow]&SentinelBit > 0
}

// Slot reports whether special slot i (corners 0..3, alarm 4) is set.
func (m *Matrix) Slot(i int) bool {
	if i < 0 || i >= SlotCount {
		return false
	}
	return m[i]&SentinelBit > 0
}

// Empty reports whether no bit is set in any row.
func (m *Matrix) Empty() bool {
	for _, r := range m {
		if r != 0 {
			return false
		}
	}
	return true
}

// InGrid reports whether (x, y) is a word segment cell.
func InGrid(x, y int) bool {
	return x >= FirstColumn && x < Columns && y >= 0 && y < GridRows
}

// String dumps every row as a 16 digit bit string, most significant bit first.
func (m Matrix) String() string {
	var b strings.Builder
	for y, r := range m {
		fmt.Fprintf(&b, "%2d: %016b\n", y, r)
	}
	return b.String()
}

// Parse builds a matrix from up to 16 row values. Values accept 0b, 0x and decimal notation.
func Parse(rows []string) (Matrix, error) {
	var m Matrix
	if len(rows) > Rows {
		return m, fmt.Errorf("matrix: %d rows given, at most %d", len(rows), Rows)
	}
	for i, s := range rows {
		s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return m, fmt.Errorf("matrix: row %d: %w", i, err)
		}
		m[i] = uint16(v)
	}
	return m, nil
}
