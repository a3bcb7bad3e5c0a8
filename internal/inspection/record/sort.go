package record

import (
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
)

// SortKey orders records for the report: part category, element number,
// damage code, grade, then position.
type SortKey struct {
	PartRank     int
	Element      int
	DamageRank   int
	SeverityRank int
	X            float64
	Y            float64
}

// SortKeyOf computes the key of a record.
func SortKeyOf(r DamageRecord) SortKey {
	element, err := strconv.Atoi(r.ElementNumber)
	if err != nil {
		element = 1 << 30
	}

	first, _ := utf8.DecodeRuneInString(r.DamageCode)
	return SortKey{
		PartRank:     catalog.PartRank(r.PartName),
		Element:      element,
		DamageRank:   catalog.DamageRank(catalog.CodeOf(first), r.DamageCode == catalog.NoDamage),
		SeverityRank: catalog.SeverityRank(r.Severity),
		X:            r.DamageCoordinate.X,
		Y:            r.DamageCoordinate.Y,
	}
}

// Compare returns -1, 0 or +1.
func (k SortKey) Compare(o SortKey) int {
	for _, c := range [][2]int{
		{k.PartRank, o.PartRank},
		{k.Element, o.Element},
		{k.DamageRank, o.DamageRank},
		{k.SeverityRank, o.SeverityRank},
	} {
		if c[0] != c[1] {
			if c[0] < c[1] {
				return -1
			}
			return 1
		}
	}
	for _, c := range [][2]float64{{k.X, o.X}, {k.Y, o.Y}} {
		if c[0] != c[1] {
			if c[0] < c[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less orders two records. Records with equal keys fall back to their
// text fields so the order is total.
func Less(a, b DamageRecord) bool {
	if c := SortKeyOf(a).Compare(SortKeyOf(b)); c != 0 {
		return c < 0
	}
	if a.PartName != b.PartName {
		return a.PartName < b.PartName
	}
	if a.Symbol != b.Symbol {
		return a.Symbol < b.Symbol
	}
	if a.ElementNumber != b.ElementNumber {
		return a.ElementNumber < b.ElementNumber
	}
	if a.DamageName != b.DamageName {
		return a.DamageName < b.DamageName
	}
	return a.Span < b.Span
}

// Sort orders records in place.
func Sort(records []DamageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}
