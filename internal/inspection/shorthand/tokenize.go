package shorthand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
)

// RangeMarks separate the ends of an element number range.
const RangeMarks = "~〜～"

var (
	severityRe    = regexp.MustCompile(`-([A-Za-z])$`)
	partRe        = regexp.MustCompile(`^(.+?)\s+([A-Za-z]+)\s*(\d[\dA-Za-z~〜～,]*)`)
	joinerRe      = regexp.MustCompile(`\s*([~〜～,])\s*`)
	asideRe       = regexp.MustCompile(`\([^()]*\)`)
	symbolSpaceRe = regexp.MustCompile(`([^\sA-Za-z])([A-Za-z]+\d{2,})`)
	alphabetRe    = regexp.MustCompile(` [A-Za-z]+(\d+)`)
	continueRe    = regexp.MustCompile(`^[A-Za-z]*\d`)
	leadingAlpha  = regexp.MustCompile(`^[A-Za-z]+`)
)

// Fold converts full-width ASCII, spaces and tildes to their narrow forms.
// Kana and circled numerals are left alone.
func Fold(s string) string {
	return width.Fold.String(s)
}

// AddSymbolSpace inserts the space a drafter left out between part name and
// symbol: "PC定着部Cn0101" becomes "PC定着部 Cn0101".
func AddSymbolSpace(s string) string {
	return symbolSpaceRe.ReplaceAllString(s, "${1} ${2}")
}

// RemoveAlphabet drops the symbol in front of element numbers:
// "主桁 Mg0101" becomes "主桁 0101".
func RemoveAlphabet(s string) string {
	return alphabetRe.ReplaceAllString(s, " ${1}")
}

// ExpandRange expands "AABB" to "CCDD" into the cartesian product of the
// prefix range AA..CC and the suffix range BB..DD. A one or two digit end
// reuses the start prefix, so "0101" to "03" means 0101..0103.
func ExpandRange(start, end string) ([]string, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	s, err := Pad4(start)
	if err != nil {
		return nil, err
	}
	if len(end) <= 2 && len(start) >= 3 {
		end = s[:2] + strings.Repeat("0", 2-len(end)) + end
	}
	e, err := Pad4(end)
	if err != nil {
		return nil, err
	}

	sp, _ := strconv.Atoi(s[:2])
	ss, _ := strconv.Atoi(s[2:])
	ep, _ := strconv.Atoi(e[:2])
	es, _ := strconv.Atoi(e[2:])
	if ep < sp || es < ss {
		return nil, fmt.Errorf("range %s～%s runs backwards", s, e)
	}

	out := make([]string, 0, (ep-sp+1)*(es-ss+1))
	for p := sp; p <= ep; p++ {
		for q := ss; q <= es; q++ {
			out = append(out, fmt.Sprintf("%02d%02d", p, q))
		}
	}
	return out, nil
}

// Pad4 left-pads an element number to four digits.
func Pad4(n string) (string, error) {
	if n == "" || len(n) > 4 {
		return "", fmt.Errorf("element number %q is not 1 to 4 digits", n)
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("element number %q is not numeric", n)
		}
	}
	return strings.Repeat("0", 4-len(n)) + n, nil
}

// IsDate reports text carrying a month/day date, which is never a part.
func IsDate(s string) bool {
	return strings.Contains(s, "月") && strings.Contains(s, "日")
}

// ParsePart parses "主桁 Mg0101～0103,0105". The symbol may be repeated on
// listed numbers ("Mg0101,Mg0103"). Text opening with a damage code is never
// a part.
func ParsePart(s string) (Part, bool) {
	s = strings.TrimSpace(s)
	if IsDate(s) || catalog.IsNumeral(s) {
		return Part{}, false
	}

	clean := joinerRe.ReplaceAllString(asideRe.ReplaceAllString(s, ""), "$1")
	m := partRe.FindStringSubmatch(clean)
	if m == nil {
		return Part{}, false
	}
	p := Part{Text: s, Name: m[1], Symbol: m[2]}

	for _, piece := range strings.Split(m[3], ",") {
		if piece == "" {
			continue
		}
		numbers, err := expandPiece(piece)
		if err != nil {
			return Part{}, false
		}
		p.Numbers = append(p.Numbers, numbers...)
	}
	if len(p.Numbers) == 0 {
		return Part{}, false
	}
	return p, true
}

func expandPiece(piece string) ([]string, error) {
	if i := strings.IndexAny(piece, RangeMarks); i >= 0 {
		start := leadingAlpha.ReplaceAllString(piece[:i], "")
		_, size := firstRune(piece[i:])
		end := leadingAlpha.ReplaceAllString(piece[i+size:], "")
		return ExpandRange(start, end)
	}
	n, err := Pad4(leadingAlpha.ReplaceAllString(piece, ""))
	if err != nil {
		return nil, err
	}
	return []string{n}, nil
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

// Classify turns one fragment into a token.
func Classify(fragment string) Token {
	fragment = strings.TrimSpace(fragment)
	if d, ok := parseDamage(fragment); ok {
		return d
	}
	if p, ok := ParsePart(fragment); ok {
		return p
	}
	if fixed := AddSymbolSpace(fragment); fixed != fragment {
		if p, ok := ParsePart(fixed); ok {
			return p
		}
	}
	return Opaque{Text: fragment}
}

// Tokenize splits one line of shorthand into tokens.
//
// The line is split on commas, rejoining number fragments that continue the
// previous part ("主桁 Mg0101,0103"), then each fragment is split where a
// damage code starts after whitespace.
func Tokenize(line string) []Token {
	var out []Token
	for _, fragment := range splitCommas(Fold(line)) {
		for _, seg := range splitAtDamage(fragment) {
			out = append(out, Classify(seg))
		}
	}
	return out
}

func splitCommas(line string) []string {
	var out []string
	for _, piece := range strings.Split(line, ",") {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}
		if n := len(out); n > 0 && continueRe.MatchString(trimmed) && continuesPart(out[n-1]) {
			out[n-1] += "," + trimmed
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// continuesPart reports whether the last segment of a fragment is a part, so a
// following number belongs to it.
func continuesPart(fragment string) bool {
	segs := splitAtDamage(fragment)
	last := segs[len(segs)-1]
	if _, ok := parseDamage(last); ok {
		return false
	}
	if _, ok := ParsePart(last); ok {
		return true
	}
	_, ok := ParsePart(AddSymbolSpace(last))
	return ok
}

// splitAtDamage separates "対傾構 Cf0201 ①腐食-b ⑤防食機能の劣化-e" into the part
// and one segment per damage. A part written after a graded damage without a
// comma ("①腐食-b 横桁 Cr0101") starts a segment of its own.
func splitAtDamage(fragment string) []string {
	fields := strings.Fields(fragment)
	var out []string
	var cur []string
	for i, f := range fields {
		if len(cur) > 0 && (startsDamage(f) || closesDamage(cur) && startsPart(fields[i:])) {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
		cur = append(cur, f)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func startsDamage(f string) bool {
	return catalog.IsNumeral(f) || f == catalog.NoDamage || strings.HasPrefix(f, catalog.NoDamage+"-")
}

// closesDamage reports whether a segment is a complete damage: a code ending
// in its grade, or the bare no-damage sentinel.
func closesDamage(seg []string) bool {
	if !startsDamage(seg[0]) {
		return false
	}
	return severityRe.MatchString(seg[len(seg)-1]) || (len(seg) == 1 && seg[0] == catalog.NoDamage)
}

// startsPart reports whether fields open with a part reference.
func startsPart(fields []string) bool {
	if len(fields) >= 2 {
		if _, ok := ParsePart(fields[0] + " " + fields[1]); ok {
			return true
		}
	}
	fixed := AddSymbolSpace(fields[0])
	if fixed == fields[0] {
		return false
	}
	_, ok := ParsePart(fixed)
	return ok
}
