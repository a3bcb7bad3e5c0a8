package shorthand

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/geometry"
)

func TestExpandRangeCartesianProduct(t *testing.T) {
	for aa := 1; aa <= 3; aa++ {
		for bb := 0; bb <= 2; bb++ {
			for cc := aa; cc <= aa+2; cc++ {
				for dd := bb; dd <= bb+3; dd++ {
					start := fmt.Sprintf("%02d%02d", aa, bb)
					end := fmt.Sprintf("%02d%02d", cc, dd)

					got, err := ExpandRange(start, end)
					require.NoError(t, err)
					require.Len(t, got, (cc-aa+1)*(dd-bb+1), "%s～%s", start, end)

					seen := make(map[string]bool)
					for _, n := range got {
						assert.Len(t, n, 4)
						seen[n] = true
					}
					assert.Len(t, seen, len(got))
					for p := aa; p <= cc; p++ {
						for s := bb; s <= dd; s++ {
							assert.True(t, seen[fmt.Sprintf("%02d%02d", p, s)])
						}
					}
				}
			}
		}
	}
}

func TestExpandRangeShortEnd(t *testing.T) {
	got, err := ExpandRange("0101", "03")
	require.NoError(t, err)
	assert.Equal(t, []string{"0101", "0102", "0103"}, got)
}

func TestExpandRangeBackwards(t *testing.T) {
	_, err := ExpandRange("0105", "0103")
	assert.Error(t, err)
	_, err = ExpandRange("0201", "0105")
	assert.Error(t, err)
}

func TestPad4(t *testing.T) {
	n, err := Pad4("7")
	require.NoError(t, err)
	assert.Equal(t, "0007", n)

	_, err = Pad4("12345")
	assert.Error(t, err)
	_, err = Pad4("")
	assert.Error(t, err)
}

func TestParsePart(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		symbol  string
		numbers []string
	}{
		{"主桁 Mg0101", "主桁", "Mg", []string{"0101"}},
		{"主桁 Mg0101~0103", "主桁", "Mg", []string{"0101", "0102", "0103"}},
		{"主桁 Mg0101,0103", "主桁", "Mg", []string{"0101", "0103"}},
		{"主桁 Mg0101,Mg0103", "主桁", "Mg", []string{"0101", "0103"}},
		{"床版 Ds0101～0202", "床版", "Ds", []string{"0101", "0102", "0201", "0202"}},
		{"橋脚[柱部・壁部] P0101", "橋脚[柱部・壁部]", "P", []string{"0101"}},
		{"支承本体 Bh0201(端部)", "支承本体", "Bh", []string{"0201"}},
		{"横桁 Cr101", "横桁", "Cr", []string{"0101"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, ok := ParsePart(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.symbol, p.Symbol)
			assert.Equal(t, tt.numbers, p.Numbers)
		})
	}
}

func TestParsePartRejects(t *testing.T) {
	for _, in := range []string{"9月8日 S47", "主桁", "①腐食-b", "主桁 Mg12345", "主桁 Mg0105~0103", "⑦剥離 横桁 Cr0101"} {
		_, ok := ParsePart(in)
		assert.False(t, ok, in)
	}
}

func TestClassifyDamage(t *testing.T) {
	tests := []struct {
		in       string
		code     int
		name     string
		variant  string
		severity string
	}{
		{"⑦剥離・鉄筋露出-d", 7, "剥離・鉄筋露出", "", "d"},
		{"①腐食(小小)-b", 1, "腐食", "小小", "b"},
		{"⑰その他(分類6:異物混入)-e", 17, "その他", "分類6:異物混入", "e"},
		{"⑬-C", 13, "", "", "c"},
		{"㉑異常な音・振動", 21, "異常な音・振動", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := Classify(tt.in).(Damage)
			require.True(t, ok)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.variant, d.Variant)
			assert.Equal(t, tt.severity, d.Severity)
		})
	}

	none, ok := Classify("NON").(Damage)
	require.True(t, ok)
	assert.True(t, none.None)
	assert.Equal(t, "NON", none.Numeral())
}

func TestClassifyOpaqueAndSpacing(t *testing.T) {
	assert.IsType(t, Opaque{}, Classify("9月8日 S47"))
	assert.IsType(t, Opaque{}, Classify("全景"))

	p, ok := Classify("PC定着部Cn0101").(Part)
	require.True(t, ok)
	assert.Equal(t, "PC定着部", p.Name)
	assert.Equal(t, "Cn", p.Symbol)
}

func TestAddSymbolSpaceAndRemoveAlphabet(t *testing.T) {
	assert.Equal(t, "PC定着部 Cn0101", AddSymbolSpace("PC定着部Cn0101"))
	assert.Equal(t, "主桁 Mg0101", AddSymbolSpace("主桁 Mg0101"))
	assert.Equal(t, "主桁 0101,①腐食-b", RemoveAlphabet("主桁 Mg0101,①腐食-b"))
}

func TestTokenizeMixedLine(t *testing.T) {
	tokens := Tokenize("主桁 Mg0101～0103,対傾構 Cf0201 ①腐食-b")
	require.Len(t, tokens, 3)

	p1 := tokens[0].(Part)
	assert.Equal(t, "主桁", p1.Name)
	assert.Equal(t, []string{"0101", "0102", "0103"}, p1.Numbers)

	p2 := tokens[1].(Part)
	assert.Equal(t, "対傾構", p2.Name)
	assert.Equal(t, []string{"0201"}, p2.Numbers)

	d := tokens[2].(Damage)
	assert.Equal(t, "①-b", d.Short())
	assert.Equal(t, "①腐食-b", d.Label())
}

func TestTokenizeCommaDamages(t *testing.T) {
	tokens := Tokenize("地覆 Gf0101 ①-d,③-c")
	require.Len(t, tokens, 3)
	assert.IsType(t, Part{}, tokens[0])
	assert.Equal(t, "①-d", tokens[1].(Damage).Short())
	assert.Equal(t, "③-c", tokens[2].(Damage).Short())
}

func TestTokenizePartAfterGradedDamage(t *testing.T) {
	tokens := Tokenize("主桁 Mg0101 ①腐食-b 横桁 Cr0101 ⑦剥離・鉄筋露出-d 床版Ds0101 NON")
	require.Len(t, tokens, 6)

	assert.Equal(t, "主桁", tokens[0].(Part).Name)
	assert.Equal(t, "①-b", tokens[1].(Damage).Short())
	assert.Equal(t, "横桁", tokens[2].(Part).Name)
	assert.Equal(t, "⑦-d", tokens[3].(Damage).Short())
	assert.Equal(t, "床版", tokens[4].(Part).Name)
	assert.True(t, tokens[5].(Damage).None)
}

func TestClassifyRejectsDamageWithSpacedName(t *testing.T) {
	assert.Equal(t, Opaque{Text: "⑦剥離 横桁 Cr0101"}, Classify("⑦剥離 横桁 Cr0101"))

	tokens := Tokenize("主桁 Mg0101 ⑦剥離 横桁 Cr0101")
	require.Len(t, tokens, 2)
	assert.IsType(t, Part{}, tokens[0])
	assert.IsType(t, Opaque{}, tokens[1])
}

func TestTokenizeFullWidth(t *testing.T) {
	tokens := Tokenize("主桁　Ｍｇ０１０１，０１０２")
	require.Len(t, tokens, 1)
	p := tokens[0].(Part)
	assert.Equal(t, "Mg", p.Symbol)
	assert.Equal(t, []string{"0101", "0102"}, p.Numbers)
}

func TestGroupRuns(t *testing.T) {
	tokens := []Token{
		Part{Text: "a"}, Part{Text: "b"}, Opaque{Text: "x"},
		Damage{Text: "①"},
		Part{Text: "c"},
		Damage{Text: "②"}, Damage{Text: "③"},
	}
	parts, damages := Group(tokens)
	require.Len(t, parts, 2)
	require.Len(t, damages, 2)
	assert.Len(t, parts[0], 2)
	assert.Len(t, parts[1], 1)
	assert.Len(t, damages[0], 1)
	assert.Len(t, damages[1], 2)
}

func TestNormalizeLinkedDamageLabel(t *testing.T) {
	pos := dxf.Point{X: 101, Y: 49}
	got := Normalize(geometry.RawAnnotation{
		Text:           "支承本体 Bh0201",
		Position:       dxf.Point{X: 100, Y: 50},
		LinkedLabel:    "⑬遊間の異常-c",
		LinkedPosition: &pos,
	})
	require.Len(t, got, 1)

	p := got[0]
	require.Len(t, p.Parts, 1)
	require.Len(t, p.Damages, 1)
	assert.Equal(t, "支承本体", p.Parts[0][0].Name)
	assert.Equal(t, 13, p.Damages[0][0].Code)
	assert.Equal(t, "遊間の狭まり", p.Damages[0][0].Describe())
	assert.Empty(t, p.PhotoSpec)
}

func TestNormalizePhotoLabelAndPictureNumber(t *testing.T) {
	got := Normalize(geometry.RawAnnotation{
		Text:        "主桁 Mg0101\n⑦剥離・鉄筋露出-d\n写真番号-00",
		LinkedLabel: "9月8日 S47,53",
	})
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, "9月8日 S47,53", p.PhotoSpec)
	assert.True(t, p.AutoPicture())
	require.Len(t, p.Parts, 1)
	require.Len(t, p.Damages, 1)
}

func TestNormalizeExplicitPictureNumbers(t *testing.T) {
	got := Normalize(geometry.RawAnnotation{Text: "主桁 Mg0101\n①腐食-b\n写真番号-3,4"})
	require.Len(t, got, 1)
	assert.Equal(t, []int{3, 4}, got[0].PictureNumbers)
	assert.False(t, got[0].AutoPicture())
}

func TestUnspecifiedLines(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "reference below",
			in:   []string{"※特記なき損傷", "高欄 Hr0101", "地覆 Gf0101 ㉓-c"},
			want: []string{"高欄 Hr0101 ㉓-c", "地覆 Gf0101 ㉓-c"},
		},
		{
			name: "captured code line",
			in:   []string{"※", "主桁 Mg0101", "横桁 Cr0101", "⑦-d"},
			want: []string{"主桁 Mg0101 ⑦-d", "横桁 Cr0101 ⑦-d"},
		},
		{
			name: "full width spaces",
			in:   []string{"※", "高欄　Hr0101", "地覆　Gf0101　㉓-c"},
			want: []string{"高欄 Hr0101 ㉓-c", "地覆 Gf0101 ㉓-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnspecifiedLines(tt.in))
		})
	}
}

func TestNormalizeUnspecifiedBlock(t *testing.T) {
	got := Normalize(geometry.RawAnnotation{Text: "※特記なき損傷\n高欄 Hr0101\n地覆 Gf0101 ㉓-c,⑦-d"})
	require.Len(t, got, 2)

	for _, p := range got {
		assert.True(t, p.Unspecified)
		require.Len(t, p.Parts, 1)
		require.Len(t, p.Damages, 1)
		assert.Len(t, p.Damages[0], 2)
	}
	assert.Equal(t, "高欄", got[0].Parts[0][0].Name)
	assert.Equal(t, "地覆", got[1].Parts[0][0].Name)
}

func TestDescribeGroup(t *testing.T) {
	ds := []Damage{
		{Code: 1, Name: "腐食", Severity: "b"},
		{Code: 5, Name: "防食機能の劣化", Variant: "分類1", Severity: "e"},
		{None: true},
	}
	assert.Equal(t, "腐食,点錆", Describe(ds))
}
