package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const codePointMax = rune(0x10FFFF)

// normalizeRanges sorts ranges and merges overlapping or adjoining ones.
func normalizeRanges(ranges []CPRange) []CPRange {
	if len(ranges) == 0 {
		return nil
	}
	rs := append([]CPRange{}, ranges...)
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].From != rs[j].From {
			return rs[i].From < rs[j].From
		}
		return rs[i].To < rs[j].To
	})
	merged := []CPRange{rs[0]}
	for _, r := range rs[1:] {
		last := &merged[len(merged)-1]
		if r.From <= last.To+1 {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// complementRanges returns the code points in U+0000..U+10FFFF not covered by ranges, which must be
// normalized.
func complementRanges(ranges []CPRange) []CPRange {
	var comp []CPRange
	next := rune(0)
	for _, r := range ranges {
		if r.From > next {
			comp = append(comp, CPRange{
				From: next,
				To:   r.From - 1,
			})
		}
		next = r.To + 1
	}
	if next <= codePointMax {
		comp = append(comp, CPRange{
			From: next,
			To:   codePointMax,
		})
	}
	return comp
}

// classEscapeRanges returns the ranges of \d, \w, \s, and their inverses. They cover ASCII characters only.
func classEscapeRanges(c rune) []CPRange {
	var rs []CPRange
	switch unicode.ToLower(c) {
	case 'd':
		rs = []CPRange{{'0', '9'}}
	case 'w':
		rs = []CPRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
	case 's':
		rs = []CPRange{{'\t', '\r'}, {' ', ' '}}
	}
	if unicode.IsUpper(c) {
		return complementRanges(rs)
	}
	return rs
}

// findCharProperty resolves a property expression against the tables of the unicode package. A bare
// value is looked up as a general category, a script, and a property in this order.
func findCharProperty(name, value string) ([]CPRange, error) {
	var tab *unicode.RangeTable
	var ok bool
	switch strings.ToLower(name) {
	case "":
		tab, ok = unicode.Categories[value]
		if !ok {
			tab, ok = unicode.Scripts[value]
		}
		if !ok {
			tab, ok = unicode.Properties[value]
		}
	case "gc", "general_category":
		tab, ok = unicode.Categories[value]
	case "sc", "script":
		tab, ok = unicode.Scripts[value]
	default:
		return nil, fmt.Errorf("unknown property name: %v", name)
	}
	if !ok {
		if name == "" {
			return nil, fmt.Errorf("unknown property value: %v", value)
		}
		return nil, fmt.Errorf("unknown property value: %v=%v", name, value)
	}
	return rangeTableToRanges(tab), nil
}

func rangeTableToRanges(tab *unicode.RangeTable) []CPRange {
	var rs []CPRange
	for _, r := range tab.R16 {
		rs = appendStrideRanges(rs, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	for _, r := range tab.R32 {
		rs = appendStrideRanges(rs, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	return normalizeRanges(rs)
}

func appendStrideRanges(rs []CPRange, lo, hi, stride rune) []CPRange {
	if stride == 1 {
		return append(rs, CPRange{
			From: lo,
			To:   hi,
		})
	}
	for c := lo; c <= hi; c += stride {
		rs = append(rs, CPRange{
			From: c,
			To:   c,
		})
	}
	return rs
}
