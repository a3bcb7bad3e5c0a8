// Package catalog holds the fixed lookup tables used while reading inspection
// drawings: damage codes and their report descriptions, part ordering, member
// number placement and the operator initials table.
package catalog

import (
	"strings"
	"unicode/utf8"
)

// NoDamage is the sentinel written for a part inspected without findings.
const NoDamage = "NON"

// Numerals maps damage codes 1..26 to their circled numeral.
var Numerals = [...]string{
	"", "①", "②", "③", "④", "⑤", "⑥", "⑦", "⑧", "⑨", "⑩",
	"⑪", "⑫", "⑬", "⑭", "⑮", "⑯", "⑰", "⑱", "⑲", "⑳",
	"㉑", "㉒", "㉓", "㉔", "㉕", "㉖",
}

// DamageNames holds the standard name of each damage code.
var DamageNames = [...]string{
	"",
	"腐食",
	"亀裂",
	"ゆるみ・脱落",
	"破断",
	"防食機能の劣化",
	"ひびわれ",
	"剥離・鉄筋露出",
	"漏水・遊離石灰",
	"抜け落ち",
	"補修・補強材の損傷",
	"床版ひびわれ",
	"うき",
	"遊間の異常",
	"路面の凹凸",
	"舗装の異常",
	"支承部の機能障害",
	"その他",
	"定着部の異常",
	"変色・劣化",
	"漏水・滞水",
	"異常な音・振動",
	"異常なたわみ",
	"変形・欠損",
	"土砂詰まり",
	"沈下・移動・傾斜",
	"洗掘",
}

// FreeTextCode is the "other" damage whose description is written by the
// inspector inside the parentheses, e.g. ⑰その他(分類6:異物混入)-e.
const FreeTextCode = 17

// CodeOf returns the damage code for a circled numeral, or 0.
func CodeOf(r rune) int {
	switch {
	case r >= '①' && r <= '⑳':
		return int(r-'①') + 1
	case r >= '㉑' && r <= '㉖':
		return int(r-'㉑') + 21
	}
	return 0
}

// IsNumeral reports whether s starts with a circled damage numeral.
func IsNumeral(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return CodeOf(r) != 0
}

// Description is one report sentence fragment for a damage.
type Description struct {
	Code     int
	Variant  string
	Severity string
	Text     string
}

var descriptions = []Description{
	{1, "小小", "b", "腐食"},
	{1, "小大", "c", "全体的な腐食"},
	{1, "大小", "d", "板厚減少を伴う腐食"},
	{1, "大大", "e", "全体的に板厚減少を伴う腐食"},
	{2, "", "c", "塗膜割れ"},
	{2, "", "e", "長さのある塗膜割れ・幅0.0mmの亀裂"},
	{3, "", "c", "ボルト・ナットにゆるみ、脱落(●本中●本)"},
	{3, "", "e", "ボルト・ナットにゆるみ、脱落(●本中●本)"},
	{4, "", "e", "鋼材の破断"},
	{5, "分類1", "c", "塗膜のうき"},
	{5, "分類1", "d", "塗膜の剥離"},
	{5, "分類1", "e", "点錆"},
	{5, "分類2", "c", "点錆"},
	{5, "分類2", "e", "点錆"},
	{6, "小小", "b", "最大幅0.0mmのひびわれ"},
	{6, "小大", "c", "最大幅0.0mmかつ間隔0.5m未満のひびわれ"},
	{6, "中小", "c", "最大幅0.0mmのひびわれ"},
	{6, "中大", "d", "最大幅0.0mmかつ間隔0.5m未満のひびわれ"},
	{6, "大小", "d", "最大幅0.0mmのひびわれ"},
	{6, "大大", "e", "最大幅0.0mmかつ間隔0.5m未満のひびわれ"},
	{7, "", "c", "コンクリートの剥離"},
	{7, "", "d", "鉄筋露出"},
	{7, "", "e", "断面減少を伴う鉄筋露出"},
	{8, "", "c", "漏水"},
	{8, "", "d", "遊離石灰"},
	{8, "", "e", "著しい遊離石灰・泥や錆汁の混入を伴う漏水"},
	{9, "", "e", "コンクリート塊の抜け落ち"},
	{10, "分類1", "c", "補修・補強材(鋼板)の損傷"},
	{10, "分類1", "e", "補修・補強材(鋼板)の損傷"},
	{10, "分類2", "c", "補修・補強材(繊維)の損傷"},
	{10, "分類2", "e", "補修・補強材(繊維)の損傷"},
	{10, "分類3", "c", "補修・補強材(コンクリート)の損傷"},
	{10, "分類3", "e", "補修・補強材(コンクリート)の損傷"},
	{10, "分類4", "c", "補修・補強材(塗装)の損傷"},
	{10, "分類4", "e", "補修・補強材(塗装)の損傷"},
	{10, "分類5", "c", "補修・補強材(鋼板)の損傷"},
	{10, "分類5", "e", "補修・補強材(鋼板)の損傷"},
	{11, "", "b", "最大幅0.0mmの1方向ひびわれ"},
	{11, "", "c", "最大幅0.0mmの1方向ひびわれ"},
	{11, "", "d", "最大幅0.0mmの1方向ひびわれ"},
	{11, "", "e", "最大幅0.0mmの角落ちを伴う1方向ひびわれ"},
	{12, "", "e", "コンクリートのうき"},
	{13, "", "c", "遊間の狭まり"},
	{13, "", "e", "遊間の接触"},
	{14, "", "c", "段差量0.0mmの凹凸"},
	{14, "", "e", "段差量0.0mmの凹凸"},
	{15, "", "c", "最大幅0.0mmのひびわれ"},
	{15, "", "e", "最大幅0.0mmのひびわれ・舗装の土砂化"},
	{16, "分類1", "e", "●●による機能障害"},
	{16, "分類2", "e", "●●による機能障害"},
	{18, "", "c", "定着部の損傷"},
	{18, "", "e", "定着部の著しい損傷"},
	{19, "", "e", "劣化"},
	{20, "", "e", "漏水・滞水"},
	{21, "", "", "異常な音や振動"},
	{22, "", "", "異常なたわみ"},
	{23, "", "c", "変形・欠損"},
	{23, "", "e", "著しい変形・欠損"},
	{24, "", "e", "土砂詰まり"},
	{25, "", "e", "下部工や支承部の沈下・移動・傾斜"},
	{26, "", "c", "深さ●●mmの洗掘"},
	{26, "", "e", "深さ●●mmの著しい洗掘"},
}

// Describe returns the report wording for a damage.
//
// Lookup is exact on (code, variant, severity) first, then on (code, severity)
// ignoring the variant. The free-text code returns what follows the colon in the
// variant. When nothing matches the damage name is returned, and failing that
// the raw text.
func Describe(code int, name, variant, severity, raw string) string {
	if code == FreeTextCode {
		if _, after, ok := strings.Cut(variant, ":"); ok && after != "" {
			return after
		}
		if variant != "" {
			return variant
		}
	}

	for _, d := range descriptions {
		if d.Code == code && d.Variant == variant && d.Severity == severity {
			return d.Text
		}
	}
	for _, d := range descriptions {
		if d.Code == code && d.Severity == severity {
			return d.Text
		}
	}

	if name != "" {
		return name
	}
	if code > 0 && code < len(DamageNames) {
		return DamageNames[code]
	}
	return raw
}

// DamageRank orders damages by code. The no-damage sentinel ranks first and
// unknown codes last.
func DamageRank(code int, sentinel bool) int {
	if sentinel {
		return 0
	}
	if code < 1 || code >= len(Numerals) {
		return len(Numerals)
	}
	return code
}

// Severities lists the grades from mildest to worst.
var Severities = []string{"a", "b", "c", "d", "e"}

// SeverityRank orders grades a..e, unknown grades last.
func SeverityRank(s string) int {
	for i, v := range Severities {
		if v == s {
			return i + 1
		}
	}
	return len(Severities) + 1
}
