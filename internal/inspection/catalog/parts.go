package catalog

import "strings"

// PartOrder is the report order of part categories: superstructure,
// substructure, bearings, then accessories.
var PartOrder = []string{
	"主桁", "横桁", "縦桁", "床版", "対傾構", "上横構", "下横構", "アーチリブ", "補剛桁", "吊り材",
	"支柱", "橋門構", "外ケーブル", "ゲルバー部", "PC定着部", "格点", "コンクリート埋込部", "その他",
	"橋脚[柱部・壁部]", "橋脚[梁部]", "橋脚[隅角部・接合部]", "橋台[胸壁]", "橋台[竪壁]", "橋台[翼壁]", "基礎[フーチング]", "基礎",
	"支承本体", "アンカーボルト", "沓座モルタル", "台座コンクリート", "落橋防止システム",
	"高欄", "防護柵", "地覆", "中央分離帯", "伸縮装置", "遮音施設", "照明施設", "縁石", "舗装", "排水ます",
	"排水管", "点検施設", "添架物", "袖擁壁",
}

var partRank = func() map[string]int {
	m := make(map[string]int, len(PartOrder))
	for i, p := range PartOrder {
		m[p] = i
	}
	return m
}()

// PartRank returns the category rank of a part name. Unmapped names rank
// after every known category.
func PartRank(name string) int {
	if r, ok := partRank[name]; ok {
		return r
	}
	return len(PartOrder)
}

// ExceptedParts are annotations kept even when they contain an exclusion keyword.
var ExceptedParts = []string{"支承本体"}

// ExclusionKeywords mark drawing text that is dimensioning, counts or units
// rather than damage shorthand.
var ExclusionKeywords = []string{
	"×", ".", "mm", "本", "/", "損傷図", "NON-a",
	"⑪-a", "⑪-b", "⑪-c", "⑪-d", "⑪-e",
}

// SpanTitleSuffix ends every span title ("1径間").
const SpanTitleSuffix = "径間"

// Member numbers keep the leading digits for girders, the trailing digits for
// cross members and substructure, and 00 for the slab and anything else.
var (
	membersLeft = []string{"主桁", "縦桁", "外ケーブル", "ゲルバー部", "PC定着部", "格点", "コンクリート埋込部"}
	membersRight = []string{
		"横桁", "橋脚", "橋脚[柱部・壁部]", "橋脚[梁部]", "橋脚[隅角部・接合部]",
		"橋台", "橋台[胸壁]", "橋台[竪壁]", "橋台[翼壁]", "基礎[フーチング]", "基礎",
	}
	membersZero = []string{"床版"}
)

// MemberNumber reduces a 4 digit element number to the 2 digit member number
// shown in the photo ledger.
func MemberNumber(part, element string) string {
	switch {
	case contains(membersZero, part):
		return "00"
	case len(element) < 4:
		return "00"
	case containsWord(membersLeft, part):
		return element[:2]
	case containsWord(membersRight, part):
		return element[len(element)-2:]
	default:
		return "00"
	}
}

// MemberLabel renders "主桁 Mg01" style labels.
func MemberLabel(part, symbol, element string) string {
	return part + " " + symbol + MemberNumber(part, element)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsWord(list []string, s string) bool {
	for _, v := range list {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}
