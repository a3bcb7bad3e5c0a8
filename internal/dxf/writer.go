package dxf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// mtextChunk is the longest value AutoCAD accepts in one code 1/3 tag.
const mtextChunk = 250

// WriteTo serialises the drawing with every edit applied, in the code page
// it was read from.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	edits := make(map[int]*Entity)
	for _, e := range d.entities {
		if e.dirty {
			edits[e.start] = e
		}
	}

	for i := 0; i < len(d.tags); i++ {
		if e, ok := edits[i]; ok {
			for _, t := range e.render(d.tags[e.start:e.end]) {
				d.writeTag(&buf, t)
			}
			i = e.end - 1
			continue
		}
		d.writeTag(&buf, d.tags[i])
	}

	out := buf.Bytes()
	if d.CodePage == CodePageShiftJIS {
		enc := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
		b, err := enc.Bytes(out)
		if err != nil {
			return 0, fmt.Errorf("encode ANSI_932: %w", err)
		}
		out = b
	}

	n, err := w.Write(out)
	return int64(n), err
}

func (d *Document) writeTag(buf *bytes.Buffer, t Tag) {
	fmt.Fprintf(buf, "%3d%s%s%s", t.Code, d.newline, t.Value, d.newline)
}

// render rebuilds the tags of an edited entity from the original ones,
// replacing insert, attachment and text values.
func (e *Entity) render(orig []Tag) []Tag {
	out := make([]Tag, 0, len(orig)+2)
	wroteText, wroteAttach := false, false

	for _, t := range orig {
		switch {
		case t.Code == 10 && e.Kind != KindLWPolyline:
			t.Value = formatFloat(e.Insert.X)
		case t.Code == 20 && e.Kind != KindLWPolyline:
			t.Value = formatFloat(e.Insert.Y)
		case t.Code == 71 && e.Kind == KindMText:
			t.Value = fmt.Sprint(e.Attachment)
			wroteAttach = true
		case t.Code == 1 || (t.Code == 3 && e.Kind == KindMText):
			if !wroteText {
				out = append(out, e.textTags()...)
				wroteText = true
			}
			continue
		}
		out = append(out, t)
	}

	if e.Kind == KindMText && !wroteAttach && e.Attachment != 0 {
		out = append(out, Tag{Code: 71, Value: fmt.Sprint(e.Attachment)})
	}
	if !wroteText && e.IsText() {
		out = append(out, e.textTags()...)
	}
	return out
}

// textTags splits MTEXT text into code 3 chunks followed by a final code 1.
func (e *Entity) textTags() []Tag {
	text := strings.ReplaceAll(e.Text, "\n", `\P`)
	if e.Kind != KindMText {
		return []Tag{{Code: 1, Value: strings.ReplaceAll(e.Text, "\n", " ")}}
	}

	var chunks []string
	for len(text) > mtextChunk {
		cut := mtextChunk
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}

	tags := make([]Tag, 0, len(chunks)+1)
	for _, c := range chunks {
		tags = append(tags, Tag{Code: 3, Value: c})
	}
	return append(tags, Tag{Code: 1, Value: text})
}
