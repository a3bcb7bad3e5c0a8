package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	"github.com/a3tai/mcp-bridge-inspector/internal/dxf/dxftest"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
)

func twoSpanDrawing() *dxftest.Builder {
	return dxftest.New().
		Rect("Defpoints", 0, 0, 400, 600).
		Rect("Defpoints", 500, 0, 900, 600).
		MText("文字", "1径間", 100, 550, 10, 40).
		MText("文字", "2径間", 600, 550, 10, 40).
		MText("損傷", "支承本体 Bh0201", 100, 50, 5, 40).
		MText("Defpoints", "9月8日 S47", 110, 45, 3, 30).
		MText("損傷", "4×500=2000", 200, 20, 5, 40).
		MText("損傷", "主桁 Mg0101\n①腐食-b", 250, 300, 5, 40).
		MText("損傷", "※特記なき損傷\n地覆 Gf0101 ㉓-c", 300, 100, 5, 60).
		MText("損傷", "横桁 Cr0201\n⑦剥離・鉄筋露出-d", 650, 300, 5, 40)
}

func parse(t *testing.T, b *dxftest.Builder) *dxf.Document {
	t.Helper()
	doc, err := dxf.ParseBytes(b.Bytes())
	require.NoError(t, err)
	return doc
}

func TestLocateFirstSpan(t *testing.T) {
	doc := parse(t, twoSpanDrawing())

	got, err := Locate(doc, "1径間", "損傷図", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "支承本体 Bh0201", got[0].Text)
	assert.Equal(t, dxf.Point{X: 100, Y: 50}, got[0].Position)
	assert.Equal(t, "9月8日 S47", got[0].LinkedLabel)
	require.NotNil(t, got[0].LinkedPosition)
	assert.Equal(t, dxf.Point{X: 110, Y: 45}, *got[0].LinkedPosition)

	assert.Equal(t, "主桁 Mg0101\n①腐食-b", got[1].Text)
	assert.Empty(t, got[1].LinkedLabel)
	assert.Nil(t, got[1].LinkedPosition)

	assert.True(t, got[2].Unspecified())
}

func TestLocateSecondSpan(t *testing.T) {
	doc := parse(t, twoSpanDrawing())

	got, err := Locate(doc, "2径間", "", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "横桁 Cr0201\n⑦剥離・鉄筋露出-d", got[0].Text)
}

func TestLocateFallbackTitle(t *testing.T) {
	doc := parse(t, dxftest.New().
		Rect("Defpoints", 0, 0, 100, 100).
		MText("0", "損傷図", 10, 90, 5, 20).
		MText("0", "床版 Ds0101\n⑪床版ひびわれ-d", 20, 40, 5, 40))

	got, err := Locate(doc, "1径間", "損傷図", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "床版 Ds0101\n⑪床版ひびわれ-d", got[0].Text)
}

func TestLocateMissingTitle(t *testing.T) {
	doc := parse(t, twoSpanDrawing())

	_, err := Locate(doc, "3径間", "損傷図", DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, inserrors.ErrTitleNotFound)
}

func TestLocateMissingFrame(t *testing.T) {
	doc := parse(t, dxftest.New().
		Rect("Defpoints", 0, 0, 100, 100).
		MText("0", "1径間", 300, 90, 5, 20))

	_, err := Locate(doc, "1径間", "", DefaultOptions())
	assert.ErrorIs(t, err, inserrors.ErrFrameNotFound)
}

func TestExcluded(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		text string
		want bool
	}{
		{"主桁 Mg0101", false},
		{"4×500", true},
		{"L=12.5", true},
		{"ボルト 12本", true},
		{"支承本体 Bh0101 2本", false},
		{"3径間", true},
		{"床版 Ds0101 ⑪-c", true},
		{"NON-a", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.text, opts))
		})
	}
}

func TestLabelBoxHalvesWideText(t *testing.T) {
	wide := &dxf.Entity{Kind: dxf.KindMText, Insert: dxf.Point{X: 0, Y: 0}, CharHeight: 5, Width: 100, Text: "主桁 Mg0101"}
	box := LabelBox(wide)
	assert.Equal(t, 50.0, box.Right)
	assert.Equal(t, 5.0, box.Top)
	assert.Equal(t, -5.0, box.Bottom)

	tall := &dxf.Entity{Kind: dxf.KindMText, Insert: dxf.Point{X: 0, Y: 0}, CharHeight: 5, Width: 15, Text: `a\Pb\Pc`}
	box = LabelBox(tall)
	assert.Equal(t, 15.0, box.Right)
	assert.Equal(t, -15.0, box.Bottom)
}

func TestLinkFirstMatchWins(t *testing.T) {
	src := &dxf.Entity{Kind: dxf.KindMText, Insert: dxf.Point{X: 0, Y: 0}, CharHeight: 5, Width: 15, Text: "主桁 Mg0101"}
	labels := []*dxf.Entity{
		{Kind: dxf.KindMText, Insert: dxf.Point{X: 40, Y: 0}, Text: "far"},
		{Kind: dxf.KindMText, Insert: dxf.Point{X: 5, Y: -2}, Text: "first"},
		{Kind: dxf.KindMText, Insert: dxf.Point{X: 6, Y: -3}, Text: "second"},
	}

	var a RawAnnotation
	require.True(t, Link(&a, src, labels))
	assert.Equal(t, "first", a.LinkedLabel)

	var none RawAnnotation
	assert.False(t, Link(&none, src, labels[:1]))
	assert.Empty(t, none.LinkedLabel)
}
