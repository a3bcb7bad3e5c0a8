// Package dxf reads and rewrites ASCII DXF drawings.
//
// Only the parts needed to read inspection annotations are modelled: text
// entities, light-weight polylines and their layers. Every other tag is kept
// as read so that a drawing can be written back after an annotation edit.
package dxf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
)

// Code pages recorded for round-tripping.
const (
	CodePageUTF8     = "UTF-8"
	CodePageShiftJIS = "ANSI_932"
)

// Document is a parsed drawing.
type Document struct {
	Version  string
	CodePage string

	tags     []Tag
	newline  string
	entities []*Entity
}

// Parse reads an ASCII DXF drawing.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read drawing: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes reads an ASCII DXF drawing held in memory.
func ParseBytes(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty drawing")
	}

	text, codePage, err := decode(data)
	if err != nil {
		return nil, err
	}
	tags, newline, err := readTags(text)
	if err != nil {
		return nil, err
	}

	doc := &Document{CodePage: codePage, tags: tags, newline: newline}
	if err := doc.index(); err != nil {
		return nil, err
	}
	return doc, nil
}

// index walks the tag stream, picking up header variables and entities.
func (d *Document) index() error {
	section := ""
	sawEOF := false

	for i := 0; i < len(d.tags); i++ {
		t := d.tags[i]
		if t.Code != 0 {
			if section == "HEADER" && t.Code == 9 && t.Value == "$ACADVER" && i+1 < len(d.tags) {
				d.Version = strings.TrimSpace(d.tags[i+1].Value)
			}
			continue
		}

		switch t.Value {
		case "SECTION":
			if i+1 < len(d.tags) && d.tags[i+1].Code == 2 {
				section = d.tags[i+1].Value
			}
			continue
		case "ENDSEC":
			section = ""
			continue
		case "EOF":
			sawEOF = true
			continue
		}

		if section != "ENTITIES" {
			continue
		}

		end := i + 1
		for end < len(d.tags) && d.tags[end].Code != 0 {
			end++
		}
		d.entities = append(d.entities, newEntity(t.Value, d.tags, i, end))
		i = end - 1
	}

	if !sawEOF {
		return fmt.Errorf("missing EOF marker")
	}
	return nil
}

func newEntity(kind string, tags []Tag, start, end int) *Entity {
	e := &Entity{Kind: kind, start: start, end: end}
	var text strings.Builder
	for _, t := range tags[start+1 : end] {
		e.apply(t, &text)
	}
	e.Text = decodeUnicode(text.String())
	return e
}

// Entities returns every entity of the ENTITIES section in drawing order.
func (d *Document) Entities() []*Entity {
	return d.entities
}

// Query returns the model space entities of the given kind accepted by pred,
// in drawing order. An empty kind matches any entity and a nil pred accepts all.
func (d *Document) Query(kind string, pred func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, e := range d.entities {
		if e.PaperSpace {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		if pred != nil && !pred(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// OnLayer matches entities on the named layer.
func OnLayer(layer string) func(*Entity) bool {
	return func(e *Entity) bool { return e.Layer == layer }
}

// FindTextAt returns the first TEXT or MTEXT inserted within eps of (x, y).
func (d *Document) FindTextAt(x, y, eps float64) *Entity {
	for _, e := range d.Query("", (*Entity).IsText) {
		if math.Abs(e.Insert.X-x) < eps && math.Abs(e.Insert.Y-y) < eps {
			return e
		}
	}
	return nil
}
