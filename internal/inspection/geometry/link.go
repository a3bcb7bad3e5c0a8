package geometry

import (
	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
)

// Box is the area below and right of an annotation in which a label is
// considered to belong to it.
type Box struct {
	Left, Right, Bottom, Top float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p dxf.Point) bool {
	return b.Left <= p.X && p.X <= b.Right && b.Bottom <= p.Y && p.Y <= b.Top
}

// LabelBox returns the search box for source.
//
// The box spans the text width and extends one character height above the
// insertion point and one height per line below it. Wide, flat text only
// searches the left half of its width so it does not pick up the label of a
// neighbouring annotation.
func LabelBox(source *dxf.Entity) Box {
	lines := len(source.Lines())
	b := Box{
		Left:   source.Insert.X,
		Right:  source.Insert.X + source.Width,
		Top:    source.Insert.Y + source.CharHeight,
		Bottom: source.Insert.Y - source.CharHeight*float64(lines),
	}
	if 2*(b.Top-b.Bottom) <= b.Right-b.Left {
		b.Right = source.Insert.X + source.Width/2
	}
	return b
}

// Link attaches the first label whose insertion point lies in the source's
// label box. Returns false and leaves the annotation untouched when none does.
func Link(candidate *RawAnnotation, source *dxf.Entity, labels []*dxf.Entity) bool {
	box := LabelBox(source)
	for _, l := range labels {
		if l == source || !box.Contains(l.Insert) {
			continue
		}
		text := l.PlainText()
		if text == "" {
			continue
		}
		pos := l.Insert
		candidate.LinkedLabel = text
		candidate.LinkedPosition = &pos
		return true
	}
	return false
}
