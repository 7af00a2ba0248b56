package compressor

import (
	"fmt"
	"testing"
)

func TestCompressor_Compress(t *testing.T) {
	x := 0 // an empty value

	allCompressors := func() []Compressor {
		return []Compressor{
			NewUniqueEntriesTable(),
			NewRowDisplacementTable(x),
		}
	}

	tests := []struct {
		original    []int
		rowCount    int
		colCount    int
		compressors []Compressor
	}{
		{
			original: []int{
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				x, x, x, x, x,
				x, x, x, x, x,
				x, x, x, x, x,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, 1, 1, 1, 1,
				x, x, x, x, x,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, x, 1, 1, 1,
				1, 1, x, 1, 1,
				1, 1, 1, x, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				-1, x, -3, x,
				x, 2, x, x,
				-1, x, -3, x,
				x, x, x, -100,
			},
			rowCount:    4,
			colCount:    4,
			compressors: allCompressors(),
		},
	}
	for i, tt := range tests {
		for _, comp := range tt.compressors {
			t.Run(fmt.Sprintf("%T #%v", comp, i), func(t *testing.T) {
				dup := make([]int, len(tt.original))
				copy(dup, tt.original)

				orig, err := NewOriginalTable(tt.original, tt.colCount)
				if err != nil {
					t.Fatal(err)
				}
				err = comp.Compress(orig)
				if err != nil {
					t.Fatal(err)
				}
				rowCount, colCount := comp.OriginalTableSize()
				if rowCount != tt.rowCount || colCount != tt.colCount {
					t.Fatalf("unexpected table size; want: %vx%v, got: %vx%v", tt.rowCount, tt.colCount, rowCount, colCount)
				}
				for i := 0; i < tt.rowCount; i++ {
					for j := 0; j < tt.colCount; j++ {
						v, err := comp.Lookup(i, j)
						if err != nil {
							t.Fatal(err)
						}
						expected := tt.original[i*tt.colCount+j]
						if v != expected {
							t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", i, j, expected, v)
						}
					}
				}

				// Calling with out-of-range indexes should be an error.
				if _, err := comp.Lookup(0, -1); err == nil {
					t.Fatalf("expected error didn't occur (0, -1)")
				}
				if _, err := comp.Lookup(-1, 0); err == nil {
					t.Fatalf("expected error didn't occur (-1, 0)")
				}
				if _, err := comp.Lookup(rowCount-1, colCount); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount-1, colCount)
				}
				if _, err := comp.Lookup(rowCount, colCount-1); err == nil {
					t.Fatalf("expected error didn't occur (%v, %v)", rowCount, colCount-1)
				}

				// The compressor must not break the original table.
				for i := 0; i < tt.rowCount; i++ {
					for j := 0; j < tt.colCount; j++ {
						idx := i*tt.colCount + j
						if tt.original[idx] != dup[idx] {
							t.Fatalf("the original table is broken (%v, %v); want: %v, got: %v", i, j, dup[idx], tt.original[idx])
						}
					}
				}
			})
		}
	}
}

func TestCompressTable(t *testing.T) {
	entries := []int{
		0, 3, 0, 0, -2,
		0, 0, 0, 0, 0,
		0, 3, 0, 0, -2,
		-1, 0, 0, 4, 0,
		0, 0, 5, 0, 0,
	}
	colCount := 5
	for level := LevelMin; level <= LevelMax; level++ {
		t.Run(fmt.Sprintf("level %v", level), func(t *testing.T) {
			tab, err := CompressTable(entries, colCount, 0, level)
			if err != nil {
				t.Fatal(err)
			}
			if level == LevelNone {
				if tab != nil {
					t.Fatalf("level 0 must leave the table uncompressed")
				}
				return
			}
			if level == LevelUniqueEntries && len(tab.UncompressedUniqueEntries) != 4*colCount {
				t.Fatalf("unexpected unique entries: %v", tab.UncompressedUniqueEntries)
			}
			if level == LevelRowDisplacement && len(tab.UniqueEntries.Entries) >= 4*colCount {
				t.Fatalf("row displacement must shrink the table: %v", tab.UniqueEntries.Entries)
			}
			for row := 0; row < len(entries)/colCount; row++ {
				for col := 0; col < colCount; col++ {
					if v := tab.Lookup(row, col); v != entries[row*colCount+col] {
						t.Fatalf("unexpected entry (%v, %v); want: %v, got: %v", row, col, entries[row*colCount+col], v)
					}
				}
			}
		})
	}

	_, err := CompressTable(entries, colCount, 0, LevelMax+1)
	if err == nil {
		t.Fatalf("an invalid level must be rejected")
	}
}
