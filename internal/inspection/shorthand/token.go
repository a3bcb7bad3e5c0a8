// Package shorthand parses inspector shorthand into part and damage tokens.
//
// A line such as "主桁 Mg0101～0103,0105 ①腐食-d" names a part category, a
// member symbol and one or more 4 digit element numbers, followed by damage
// codes written as a circled numeral with an a..e grade.
package shorthand

import (
	"strings"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
)

// Token is one classified fragment: Part, Damage or Opaque.
type Token interface {
	Raw() string
	isToken()
}

// Part is a part reference with its element numbers already expanded.
type Part struct {
	Text    string   `json:"text"`
	Name    string   `json:"name"`
	Symbol  string   `json:"symbol"`
	Numbers []string `json:"numbers"`
}

func (p Part) Raw() string { return p.Text }
func (Part) isToken()      {}

// PartToken is a single structural element.
type PartToken struct {
	PartName      string `json:"part_name"`
	Symbol        string `json:"symbol"`
	ElementNumber string `json:"element_number"`
}

// String renders "主桁 Mg0101".
func (t PartToken) String() string {
	return t.PartName + " " + t.Symbol + t.ElementNumber
}

// Tokens expands the part into one token per element number.
func (p Part) Tokens() []PartToken {
	out := make([]PartToken, 0, len(p.Numbers))
	for _, n := range p.Numbers {
		out = append(out, PartToken{PartName: p.Name, Symbol: p.Symbol, ElementNumber: n})
	}
	return out
}

// Damage is a damage code with its grade, or the no-damage sentinel.
type Damage struct {
	Text     string `json:"text"`
	Code     int    `json:"code"`
	Name     string `json:"name,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Severity string `json:"severity,omitempty"`
	None     bool   `json:"none,omitempty"`
}

func (d Damage) Raw() string { return d.Text }
func (Damage) isToken()      {}

// Numeral returns the circled numeral, or NON for the sentinel.
func (d Damage) Numeral() string {
	if d.None {
		return catalog.NoDamage
	}
	if d.Code > 0 && d.Code < len(catalog.Numerals) {
		return catalog.Numerals[d.Code]
	}
	return ""
}

// Short renders the code and grade, "⑬-c".
func (d Damage) Short() string {
	if d.Severity == "" {
		return d.Numeral()
	}
	return d.Numeral() + "-" + d.Severity
}

// Title renders the code with its name, "⑬遊間の異常".
func (d Damage) Title() string {
	if d.None {
		return catalog.NoDamage
	}
	name := d.Name
	if name == "" && d.Code < len(catalog.DamageNames) {
		name = catalog.DamageNames[d.Code]
	}
	s := d.Numeral() + name
	if d.Variant != "" {
		s += "(" + d.Variant + ")"
	}
	return s
}

// Label renders the title with its grade, "⑬遊間の異常-c".
func (d Damage) Label() string {
	if d.None || d.Severity == "" {
		return d.Title()
	}
	return d.Title() + "-" + d.Severity
}

// Describe returns the report wording for the damage.
func (d Damage) Describe() string {
	if d.None {
		return ""
	}
	return catalog.Describe(d.Code, d.Name, d.Variant, d.Severity, d.Text)
}

// Opaque is a fragment that is neither a part nor a damage.
type Opaque struct {
	Text string `json:"text"`
}

func (o Opaque) Raw() string { return o.Text }
func (Opaque) isToken()      {}

// parseDamage reads "⑰その他(分類6:異物混入)-e" style fragments. A name with
// whitespace in it has swallowed a neighbouring fragment and is rejected.
func parseDamage(s string) (Damage, bool) {
	s = strings.TrimSpace(s)
	if s == catalog.NoDamage || strings.HasPrefix(s, catalog.NoDamage+"-") {
		return Damage{Text: s, None: true}, true
	}

	rs := []rune(s)
	if len(rs) == 0 {
		return Damage{}, false
	}
	code := catalog.CodeOf(rs[0])
	if code == 0 {
		return Damage{}, false
	}

	d := Damage{Text: s, Code: code}
	rest := string(rs[1:])

	if m := severityRe.FindStringSubmatch(rest); m != nil {
		d.Severity = strings.ToLower(m[1])
		rest = rest[:len(rest)-len(m[0])]
	}
	if strings.HasSuffix(rest, ")") {
		if open := strings.LastIndex(rest, "("); open >= 0 {
			d.Variant = rest[open+1 : len(rest)-1]
			rest = rest[:open]
		}
	}
	d.Name = strings.TrimSpace(rest)
	if strings.ContainsAny(d.Name, " \t") {
		return Damage{}, false
	}
	return d, true
}
