// Package record turns tokenized annotations into damage records.
package record

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
)

// Coordinate is a drawing position.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DamageRecord is one damage on one structural element.
type DamageRecord struct {
	ID                string      `json:"id"`
	Project           string      `json:"project"`
	Drawing           string      `json:"drawing"`
	Span              string      `json:"span"`
	PartName          string      `json:"part_name"`
	Symbol            string      `json:"symbol"`
	ElementNumber     string      `json:"element_number"`
	DamageCode        string      `json:"damage_code"`
	DamageName        string      `json:"damage_name"`
	Severity          string      `json:"severity"`
	Comment           string      `json:"comment"`
	Member            string      `json:"member"`
	Join              string      `json:"join"`
	Memo              string      `json:"memo"`
	DamageCoordinate  Coordinate  `json:"damage_coordinate"`
	PictureCoordinate *Coordinate `json:"picture_coordinate,omitempty"`
	PhotoRefs         []string    `json:"photo_refs"`
	PictureNumber     int         `json:"picture_number,omitempty"`
	Annotation        string      `json:"annotation"`
}

// Part renders "主桁 Mg0101".
func (r DamageRecord) Part() string {
	return r.PartName + " " + r.Symbol + r.ElementNumber
}

// Damage renders "①腐食-c".
func (r DamageRecord) Damage() string {
	if r.Severity == "" || r.DamageName == catalog.NoDamage {
		return r.DamageName
	}
	return r.DamageName + "-" + r.Severity
}

// NaturalKey identifies a record across re-imports.
func (r DamageRecord) NaturalKey() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s/%s/%g,%g",
		r.Project, r.Drawing, r.Span, r.PartName, r.ElementNumber,
		r.DamageCode, r.Severity, r.DamageCoordinate.X, r.DamageCoordinate.Y)
}

// Context is where an annotation was found.
type Context struct {
	Project           string
	Drawing           string
	Span              string
	DamageCoordinate  Coordinate
	PictureCoordinate *Coordinate
}

// Assembly is the result of assembling one parsed annotation.
type Assembly struct {
	Records  []DamageRecord
	Policy   Policy
	Pairs    []Pair
	Comment  string
	Warnings []error
}

// Assemble builds one record per element and damage of every aligned group
// pair. All records share the annotation's comment. Fragments that start
// with a damage code but did not parse are returned as warnings.
func Assemble(p shorthand.Parsed, ctx Context) *Assembly {
	pairs, policy, err := Align(p.Parts, p.Damages)
	out := &Assembly{Policy: policy, Pairs: pairs}
	if err != nil {
		out.Warnings = append(out.Warnings, err)
	}
	for _, t := range p.Tokens {
		if o, ok := t.(shorthand.Opaque); ok && catalog.IsNumeral(o.Text) {
			out.Warnings = append(out.Warnings, inserrors.NewUnrecognizedShorthand(o.Text))
		}
	}
	out.Comment = Comment(pairs, p.Parts, p.Damages)

	for _, pair := range pairs {
		damages := p.Damages[pair.B]
		for _, part := range p.Parts[pair.A] {
			for _, tok := range part.Tokens() {
				join := JoinText(tok, damages)
				memo := Memo(tok, damages)
				for _, d := range damages {
					out.Records = append(out.Records, DamageRecord{
						ID:                uuid.NewString(),
						Project:           ctx.Project,
						Drawing:           ctx.Drawing,
						Span:              ctx.Span,
						PartName:          tok.PartName,
						Symbol:            tok.Symbol,
						ElementNumber:     tok.ElementNumber,
						DamageCode:        d.Numeral(),
						DamageName:        d.Title(),
						Severity:          d.Severity,
						Comment:           out.Comment,
						Member:            catalog.MemberLabel(tok.PartName, tok.Symbol, tok.ElementNumber),
						Join:              join,
						Memo:              memo,
						DamageCoordinate:  ctx.DamageCoordinate,
						PictureCoordinate: ctx.PictureCoordinate,
						PhotoRefs:         []string{},
						Annotation:        p.Source.Text,
					})
				}
			}
		}
	}
	return out
}

// JoinText renders "主桁 Mg0101 : ①腐食-b/⑤防食機能の劣化-e".
func JoinText(tok shorthand.PartToken, damages []shorthand.Damage) string {
	labels := make([]string, 0, len(damages))
	for _, d := range damages {
		labels = append(labels, d.Label())
	}
	return tok.String() + " : " + strings.Join(labels, "/")
}

// Memo renders the photo ledger line, one "member,damage" entry per damage:
// "主桁 01,①腐食-b, 主桁 01,⑤防食機能の劣化-e".
func Memo(tok shorthand.PartToken, damages []shorthand.Damage) string {
	plain := shorthand.RemoveAlphabet(tok.String())
	member := strings.TrimSuffix(plain, tok.ElementNumber) + catalog.MemberNumber(tok.PartName, tok.ElementNumber)
	entries := make([]string, 0, len(damages))
	for _, d := range damages {
		entries = append(entries, member+","+d.Label())
	}
	return strings.Join(entries, ", ")
}
