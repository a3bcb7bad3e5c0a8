// Package geometry finds the damage annotations of one span on a drawing.
//
// A span sheet is a rectangle drawn on the frame layer with a title text
// ("1径間") inside it. Every MTEXT whose insertion point falls within the
// rectangle's horizontal extent is a candidate annotation. Labels on the frame
// layer written just below or right of a candidate are linked to it.
package geometry

import (
	"strings"

	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
)

// UnspecifiedMarker starts a block of damages listed without their own leader.
const UnspecifiedMarker = "※"

// RawAnnotation is one candidate text with its optional linked label.
type RawAnnotation struct {
	Text           string     `json:"text"`
	Position       dxf.Point  `json:"position"`
	LinkedLabel    string     `json:"linked_label,omitempty"`
	LinkedPosition *dxf.Point `json:"linked_position,omitempty"`
	Handle         string     `json:"handle,omitempty"`
}

// Unspecified reports whether the annotation is a ※ block.
func (a RawAnnotation) Unspecified() bool {
	return strings.HasPrefix(a.Text, UnspecifiedMarker)
}

// Frame is the horizontal extent of a span sheet.
type Frame struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
}

// Contains reports whether x lies within the frame, edges included.
func (f Frame) Contains(x float64) bool {
	return f.MinX <= x && x <= f.MaxX
}

// Options controls layer names and the candidate filter.
type Options struct {
	FrameLayer        string
	ExclusionKeywords []string
	ExceptedParts     []string
}

// DefaultOptions returns the conventions used on inspection drawings.
func DefaultOptions() Options {
	return Options{
		FrameLayer:        "Defpoints",
		ExclusionKeywords: catalog.ExclusionKeywords,
		ExceptedParts:     catalog.ExceptedParts,
	}
}

// Locate returns the annotations of the span titled title, trying fallback
// when title is absent. Annotations are returned in drawing order.
func Locate(doc *dxf.Document, title, fallback string, opts Options) ([]RawAnnotation, error) {
	if opts.FrameLayer == "" {
		opts.FrameLayer = DefaultOptions().FrameLayer
	}

	anchor := FindTitle(doc, title, fallback)
	if anchor == nil {
		return nil, inserrors.NewTitleNotFound(title, fallback)
	}

	frame, ok := FindFrame(doc, anchor.Insert.X, opts.FrameLayer)
	if !ok {
		return nil, inserrors.NewFrameNotFound(anchor.Text, opts.FrameLayer, anchor.Insert.X)
	}

	labels := doc.Query(dxf.KindMText, dxf.OnLayer(opts.FrameLayer))

	var out []RawAnnotation
	for _, e := range doc.Query(dxf.KindMText, nil) {
		if e == anchor || e.Layer == opts.FrameLayer || !frame.Contains(e.Insert.X) {
			continue
		}

		text := strings.Join(e.Lines(), "\n")
		if text == "" {
			continue
		}

		a := RawAnnotation{Text: text, Position: e.Insert, Handle: e.Handle}
		if !a.Unspecified() {
			if Excluded(text, opts) {
				continue
			}
			Link(&a, e, labels)
		}
		out = append(out, a)
	}
	return out, nil
}

// FindTitle returns the first MTEXT whose text equals title, else the first
// equal to fallback.
func FindTitle(doc *dxf.Document, title, fallback string) *dxf.Entity {
	for _, want := range []string{title, fallback} {
		if want == "" {
			continue
		}
		for _, e := range doc.Query(dxf.KindMText, nil) {
			if e.Text == want || e.PlainText() == want {
				return e
			}
		}
	}
	return nil
}

// FindFrame returns the extent of the first 4-vertex polyline on layer whose
// horizontal extent contains x.
func FindFrame(doc *dxf.Document, x float64, layer string) (Frame, bool) {
	for _, p := range doc.Query(dxf.KindLWPolyline, dxf.OnLayer(layer)) {
		if len(p.Vertices) != 4 {
			continue
		}
		minX, maxX := p.Bounds()
		f := Frame{MinX: minX, MaxX: maxX}
		if f.Contains(x) {
			return f, true
		}
	}
	return Frame{}, false
}

// Excluded reports whether text is dimensioning or a title rather than damage
// shorthand. Text naming an excepted part is kept regardless of keywords.
func Excluded(text string, opts Options) bool {
	if strings.HasSuffix(text, catalog.SpanTitleSuffix) {
		return true
	}
	for _, p := range opts.ExceptedParts {
		if strings.Contains(text, p) {
			return false
		}
	}
	for _, k := range opts.ExclusionKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
