package dxf

import "strings"

// Entity kinds the reader understands. Other entities are kept verbatim.
const (
	KindMText      = "MTEXT"
	KindText       = "TEXT"
	KindLWPolyline = "LWPOLYLINE"
)

// AttachBottomLeft is the MTEXT attachment point written by edits.
const AttachBottomLeft = 7

// Point is a 2D drawing coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entity is a drawing primitive from the ENTITIES section.
type Entity struct {
	Kind        string
	Handle      string
	Layer       string
	Insert      Point
	CharHeight  float64
	Width       float64
	LineSpacing float64
	Attachment  int
	Vertices    []Point
	PaperSpace  bool

	// Text is the raw content including MTEXT formatting codes, with
	// \U+XXXX escapes already decoded.
	Text string

	start, end int
	dirty      bool
}

// PlainText returns the text with MTEXT formatting removed and paragraph
// breaks turned into newlines.
func (e *Entity) PlainText() string {
	if e.Kind == KindMText {
		return plainText(e.Text)
	}
	return specialChars(e.Text)
}

// Lines returns the non-empty lines of the plain text.
func (e *Entity) Lines() []string {
	var out []string
	for _, l := range strings.Split(e.PlainText(), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// IsText reports whether the entity carries text.
func (e *Entity) IsText() bool {
	return e.Kind == KindMText || e.Kind == KindText
}

// SetText replaces the entity text. The new value is written as given.
func (e *Entity) SetText(s string) {
	e.Text = s
	e.dirty = true
}

// SetAttachment sets the MTEXT attachment point (1 top-left .. 9 bottom-right).
func (e *Entity) SetAttachment(n int) {
	e.Attachment = n
	e.dirty = true
}

// SetInsert moves the insertion point.
func (e *Entity) SetInsert(p Point) {
	e.Insert = p
	e.dirty = true
}

// Bounds returns the min/max X of the vertices.
func (e *Entity) Bounds() (minX, maxX float64) {
	if len(e.Vertices) == 0 {
		return 0, 0
	}
	minX, maxX = e.Vertices[0].X, e.Vertices[0].X
	for _, v := range e.Vertices[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
	}
	return minX, maxX
}

// apply reads one group code into the entity.
func (e *Entity) apply(t Tag, text *strings.Builder) {
	switch t.Code {
	case 5:
		e.Handle = t.Value
	case 8:
		e.Layer = t.Value
	case 67:
		e.PaperSpace = parseInt(t.Value) == 1
	}

	switch e.Kind {
	case KindMText:
		switch t.Code {
		case 10:
			e.Insert.X = parseFloat(t.Value)
		case 20:
			e.Insert.Y = parseFloat(t.Value)
		case 40:
			e.CharHeight = parseFloat(t.Value)
		case 41:
			e.Width = parseFloat(t.Value)
		case 44:
			e.LineSpacing = parseFloat(t.Value)
		case 71:
			e.Attachment = parseInt(t.Value)
		case 1, 3:
			text.WriteString(t.Value)
		}
	case KindText:
		switch t.Code {
		case 10:
			e.Insert.X = parseFloat(t.Value)
		case 20:
			e.Insert.Y = parseFloat(t.Value)
		case 40:
			e.CharHeight = parseFloat(t.Value)
		case 1:
			text.WriteString(t.Value)
		}
	case KindLWPolyline:
		switch t.Code {
		case 10:
			e.Vertices = append(e.Vertices, Point{X: parseFloat(t.Value)})
		case 20:
			if n := len(e.Vertices); n > 0 {
				e.Vertices[n-1].Y = parseFloat(t.Value)
			}
		}
	}
}
