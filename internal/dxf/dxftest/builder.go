// Package dxftest builds small ASCII DXF drawings for tests.
package dxftest

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder accumulates entities and renders a minimal R2010 drawing.
type Builder struct {
	entities []string
	handle   int
}

// New returns an empty drawing builder.
func New() *Builder {
	return &Builder{handle: 0x100}
}

func (b *Builder) next() string {
	b.handle++
	return strconv.FormatInt(int64(b.handle), 16)
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MText adds an MTEXT entity. Newlines in text become paragraph breaks.
func (b *Builder) MText(layer, text string, x, y, height, width float64) *Builder {
	var sb strings.Builder
	pair(&sb, 0, "MTEXT")
	pair(&sb, 5, b.next())
	pair(&sb, 100, "AcDbEntity")
	pair(&sb, 8, layer)
	pair(&sb, 100, "AcDbMText")
	pair(&sb, 10, f(x))
	pair(&sb, 20, f(y))
	pair(&sb, 30, "0")
	pair(&sb, 40, f(height))
	pair(&sb, 41, f(width))
	pair(&sb, 71, "1")
	pair(&sb, 1, strings.ReplaceAll(text, "\n", `\P`))
	b.entities = append(b.entities, sb.String())
	return b
}

// Text adds a single-line TEXT entity.
func (b *Builder) Text(layer, text string, x, y, height float64) *Builder {
	var sb strings.Builder
	pair(&sb, 0, "TEXT")
	pair(&sb, 5, b.next())
	pair(&sb, 8, layer)
	pair(&sb, 10, f(x))
	pair(&sb, 20, f(y))
	pair(&sb, 40, f(height))
	pair(&sb, 1, text)
	b.entities = append(b.entities, sb.String())
	return b
}

// Rect adds a closed 4-vertex LWPOLYLINE.
func (b *Builder) Rect(layer string, x1, y1, x2, y2 float64) *Builder {
	var sb strings.Builder
	pair(&sb, 0, "LWPOLYLINE")
	pair(&sb, 5, b.next())
	pair(&sb, 8, layer)
	pair(&sb, 90, "4")
	pair(&sb, 70, "1")
	for _, p := range [][2]float64{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}} {
		pair(&sb, 10, f(p[0]))
		pair(&sb, 20, f(p[1]))
	}
	b.entities = append(b.entities, sb.String())
	return b
}

// Raw appends pre-rendered entity tags.
func (b *Builder) Raw(tags string) *Builder {
	b.entities = append(b.entities, tags)
	return b
}

// String renders the drawing.
func (b *Builder) String() string {
	var sb strings.Builder
	pair(&sb, 0, "SECTION")
	pair(&sb, 2, "HEADER")
	pair(&sb, 9, "$ACADVER")
	pair(&sb, 1, "AC1024")
	pair(&sb, 0, "ENDSEC")
	pair(&sb, 0, "SECTION")
	pair(&sb, 2, "ENTITIES")
	for _, e := range b.entities {
		sb.WriteString(e)
	}
	pair(&sb, 0, "ENDSEC")
	pair(&sb, 0, "EOF")
	return sb.String()
}

// Bytes renders the drawing as UTF-8 bytes.
func (b *Builder) Bytes() []byte {
	return []byte(b.String())
}

func pair(sb *strings.Builder, code int, value string) {
	fmt.Fprintf(sb, "%3d\n%s\n", code, value)
}
