// Package compressor shrinks the two-dimensional tables of a compiled grammar. Parse tables and DFA rows are
// sparse and have many identical rows, so they are first reduced to their unique rows and then, optionally,
// packed by row displacement.
package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	spec "github.com/nihei9/lrgen/spec/grammar"
)

// Compression levels accepted by CompressTable.
const (
	LevelNone            = 0
	LevelUniqueEntries   = 1
	LevelRowDisplacement = 2

	LevelMin = LevelNone
	LevelMax = LevelRowDisplacement
)

type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("enries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *OriginalTable) row(r int) []int {
	return t.entries[r*t.colCount : (r+1)*t.colCount]
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
)

// UniqueEntriesTable keeps one copy of each distinct row. RowNums maps an original row to its copy.
type UniqueEntriesTable struct {
	UniqueEntries    []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueEntriesTable() *UniqueEntriesTable {
	return &UniqueEntriesTable{}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueEntries[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueEntriesTable) Compress(orig *OriginalTable) error {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	key2RowNum := map[string]int{}
	buf := make([]byte, 0, orig.colCount*binary.MaxVarintLen64)
	for row := 0; row < orig.rowCount; row++ {
		entries := orig.row(row)

		// Entries may be negative, so they are encoded as signed varints.
		buf = buf[:0]
		for _, v := range entries {
			buf = binary.AppendVarint(buf, int64(v))
		}
		key := string(buf)

		rowNum, ok := key2RowNum[key]
		if !ok {
			rowNum = len(key2RowNum)
			key2RowNum[key] = rowNum
			uniqueEntries = append(uniqueEntries, entries...)
		}
		rowNums[row] = rowNum
	}

	tab.UniqueEntries = uniqueEntries
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

// ForbiddenValue marks a slot of RowDisplacementTable.Bounds no row owns.
const ForbiddenValue = -1

// RowDisplacementTable overlays the rows in one array so that the non-empty entries of different rows never share
// a slot. Row r starts at RowDisplacement[r], and Bounds tells which row owns each slot.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	i := tab.RowDisplacement[row] + col
	if i >= len(tab.Bounds) || tab.Bounds[i] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[i], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// Compress places the densest rows first, each one at the lowest displacement where it fits.
func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	rows := make([]*rowInfo, orig.rowCount)
	for r := range rows {
		info := &rowInfo{
			rowNum: r,
		}
		for c, v := range orig.row(r) {
			if v != tab.EmptyValue {
				info.nonEmptyCol = append(info.nonEmptyCol, c)
			}
		}
		rows[r] = info
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].nonEmptyCol) > len(rows[j].nonEmptyCol)
	})

	used := bitset.New(uint(len(orig.entries)))
	rowDisplacement := make([]int, orig.rowCount)
	size := 0
	for _, info := range rows {
		if len(info.nonEmptyCol) == 0 {
			continue
		}

		d := 0
		for ; ; d++ {
			fits := true
			for _, c := range info.nonEmptyCol {
				if used.Test(uint(d + c)) {
					fits = false
					break
				}
			}
			if fits {
				break
			}
		}

		rowDisplacement[info.rowNum] = d
		for _, c := range info.nonEmptyCol {
			used.Set(uint(d + c))
		}
		if d+orig.colCount > size {
			size = d + orig.colCount
		}
	}
	if size == 0 {
		size = orig.colCount
	}

	entries := make([]int, size)
	bounds := make([]int, size)
	for i := range entries {
		entries[i] = tab.EmptyValue
		bounds[i] = ForbiddenValue
	}
	for _, info := range rows {
		d := rowDisplacement[info.rowNum]
		row := orig.row(info.rowNum)
		for _, c := range info.nonEmptyCol {
			entries[d+c] = row[c]
			bounds[d+c] = info.rowNum
		}
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries
	tab.Bounds = bounds
	tab.RowDisplacement = rowDisplacement

	return nil
}

// CompressTable compresses a table of colCount columns into the serializable form. At LevelNone it returns
// nil, and the caller keeps the table uncompressed.
func CompressTable(entries []int, colCount int, emptyValue int, level int) (*spec.UniqueEntriesTable, error) {
	if level < LevelMin || level > LevelMax {
		return nil, fmt.Errorf("invalid compression level: %v", level)
	}
	if level == LevelNone {
		return nil, nil
	}

	ueTab := NewUniqueEntriesTable()
	{
		orig, err := NewOriginalTable(entries, colCount)
		if err != nil {
			return nil, err
		}
		err = ueTab.Compress(orig)
		if err != nil {
			return nil, err
		}
	}

	if level == LevelUniqueEntries {
		return &spec.UniqueEntriesTable{
			UncompressedUniqueEntries: ueTab.UniqueEntries,
			RowNums:                   ueTab.RowNums,
			OriginalRowCount:          ueTab.OriginalRowCount,
			OriginalColCount:          ueTab.OriginalColCount,
		}, nil
	}

	rdTab := NewRowDisplacementTable(emptyValue)
	{
		orig, err := NewOriginalTable(ueTab.UniqueEntries, ueTab.OriginalColCount)
		if err != nil {
			return nil, err
		}
		err = rdTab.Compress(orig)
		if err != nil {
			return nil, err
		}
	}

	return &spec.UniqueEntriesTable{
		UniqueEntries: &spec.RowDisplacementTable{
			OriginalRowCount: rdTab.OriginalRowCount,
			OriginalColCount: rdTab.OriginalColCount,
			EmptyValue:       rdTab.EmptyValue,
			Entries:          rdTab.Entries,
			Bounds:           rdTab.Bounds,
			RowDisplacement:  rdTab.RowDisplacement,
		},
		RowNums:          ueTab.RowNums,
		OriginalRowCount: ueTab.OriginalRowCount,
		OriginalColCount: ueTab.OriginalColCount,
	}, nil
}
