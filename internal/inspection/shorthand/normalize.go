package shorthand

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/geometry"
)

// AutoPictureNumber requests the next number from the running counter.
const AutoPictureNumber = 0

var (
	pictureRe      = regexp.MustCompile(`写真番号\s*[-‐ー－]\s*([\d,\s]+)`)
	spaceNumeralRe = regexp.MustCompile(`\s[①-⑳㉑-㉖]`)
	anyNumeralRe   = regexp.MustCompile(`[①-⑳㉑-㉖]`)
	leadNumeralRe  = regexp.MustCompile(`^[①-⑳㉑-㉖]`)
)

// Parsed is the tokenized form of one annotation, or of one line of a ※ block.
type Parsed struct {
	Source         geometry.RawAnnotation `json:"source"`
	Tokens         []Token                `json:"-"`
	Parts          [][]Part               `json:"parts"`
	Damages        [][]Damage             `json:"damages"`
	PhotoSpec      string                 `json:"photo_spec,omitempty"`
	PictureNumbers []int                  `json:"picture_numbers,omitempty"`
	Unspecified    bool                   `json:"unspecified,omitempty"`
}

// AutoPicture reports whether the annotation asked for automatic numbering.
func (p Parsed) AutoPicture() bool {
	return len(p.PictureNumbers) == 1 && p.PictureNumbers[0] == AutoPictureNumber
}

// Normalize tokenizes an annotation. A structured annotation yields one
// Parsed; a ※ block yields one per damaged line.
func Normalize(a geometry.RawAnnotation) []Parsed {
	if a.Unspecified() {
		return normalizeUnspecified(a)
	}

	p := Parsed{Source: a}
	for _, line := range splitLines(a.Text) {
		if nums, ok := pictureNumbers(line); ok {
			p.PictureNumbers = append(p.PictureNumbers, nums...)
			continue
		}
		p.Tokens = append(p.Tokens, Tokenize(line)...)
	}

	var spec []string
	for _, line := range splitLines(a.LinkedLabel) {
		if nums, ok := pictureNumbers(line); ok {
			p.PictureNumbers = append(p.PictureNumbers, nums...)
			continue
		}
		tokens := Tokenize(line)
		if allOpaque(tokens) {
			spec = append(spec, strings.TrimSpace(line))
			continue
		}
		p.Tokens = append(p.Tokens, tokens...)
	}
	p.PhotoSpec = strings.Join(spec, ",")

	p.Parts, p.Damages = Group(p.Tokens)
	return []Parsed{p}
}

// Group splits a token stream into alternating runs of parts and damages.
// Opaque tokens do not break a run.
func Group(tokens []Token) ([][]Part, [][]Damage) {
	var parts [][]Part
	var damages [][]Damage
	last := ""

	for _, t := range tokens {
		switch v := t.(type) {
		case Part:
			if last != "part" {
				parts = append(parts, nil)
			}
			parts[len(parts)-1] = append(parts[len(parts)-1], v)
			last = "part"
		case Damage:
			if last != "damage" {
				damages = append(damages, nil)
			}
			damages[len(damages)-1] = append(damages[len(damages)-1], v)
			last = "damage"
		}
	}
	return parts, damages
}

func normalizeUnspecified(a geometry.RawAnnotation) []Parsed {
	var out []Parsed
	for _, line := range UnspecifiedLines(splitLines(a.Text)) {
		p := Parsed{Source: a, Unspecified: true}
		p.Tokens = Tokenize(AddSymbolSpace(line))
		p.Parts, p.Damages = Group(p.Tokens)
		if len(p.Parts) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// UnspecifiedLines resolves the back-references of a ※ block.
//
// Lines are read bottom-up. The ※ heading is dropped. A line with a damage
// code after a space becomes the reference; following lines without a code
// take the reference's text from its second space on. Before any reference is
// seen, a line made only of damage codes is captured and appended to the lines
// above it that carry no code of their own.
func UnspecifiedLines(lines []string) []string {
	kept := make([]string, len(lines))
	keep := make([]bool, len(lines))
	lastFound, captured := "", ""

	for i := len(lines) - 1; i >= 0; i-- {
		item := strings.TrimSpace(Fold(lines[i]))
		switch {
		case strings.HasPrefix(item, geometry.UnspecifiedMarker):
		case spaceNumeralRe.MatchString(item):
			lastFound = item
			kept[i], keep[i] = item, true
		case lastFound != "":
			kept[i], keep[i] = item+inheritedSuffix(lastFound), true
		case leadNumeralRe.MatchString(item):
			captured = item
		default:
			if captured != "" && !anyNumeralRe.MatchString(item) {
				item += " " + captured
			}
			kept[i], keep[i] = item, true
		}
	}

	var out []string
	for i, k := range keep {
		if k && kept[i] != "" {
			out = append(out, kept[i])
		}
	}
	return out
}

// inheritedSuffix returns the damage part of a reference line, from its second
// space on ("地覆 Gf0101 ㉓-c" gives " ㉓-c").
func inheritedSuffix(ref string) string {
	first := strings.Index(ref, " ")
	if first < 0 {
		return ""
	}
	second := strings.Index(ref[first+1:], " ")
	if second < 0 {
		return ref[first:]
	}
	return ref[first+1+second:]
}

// pictureNumbers reads "写真番号-3,4". "00" is stored as AutoPictureNumber.
func pictureNumbers(line string) ([]int, bool) {
	m := pictureRe.FindStringSubmatch(Fold(line))
	if m == nil {
		return nil, false
	}
	var out []int
	for _, f := range strings.Split(m[1], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, len(out) > 0
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

func allOpaque(tokens []Token) bool {
	for _, t := range tokens {
		if _, ok := t.(Opaque); !ok {
			return false
		}
	}
	return len(tokens) > 0
}

// Describe returns the comma-joined report wording for a damage group.
func Describe(damages []Damage) string {
	var parts []string
	for _, d := range damages {
		if s := d.Describe(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}
