package dxf

import (
	"strconv"
	"strings"
)

// decodeUnicode replaces \U+XXXX escapes used by pre-2007 drawings.
func decodeUnicode(s string) string {
	if !strings.Contains(s, `\U+`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i+7 <= len(s) && s[i] == '\\' && s[i+1] == 'U' && s[i+2] == '+' {
			if n, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
				b.WriteRune(rune(n))
				i += 6
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var specialReplacer = strings.NewReplacer(
	"%%d", "°", "%%D", "°",
	"%%p", "±", "%%P", "±",
	"%%c", "Ø", "%%C", "Ø",
	"%%%", "%",
)

// specialChars expands the %% control codes of TEXT entities.
func specialChars(s string) string {
	if !strings.Contains(s, "%%") {
		return s
	}
	return specialReplacer.Replace(s)
}

// plainText strips MTEXT inline formatting.
func plainText(s string) string {
	var b strings.Builder
	rs := []rune(s)

	for i := 0; i < len(rs); i++ {
		c := rs[i]
		if c == '{' || c == '}' {
			continue
		}
		if c != '\\' || i+1 >= len(rs) {
			b.WriteRune(c)
			continue
		}

		i++
		switch rs[i] {
		case 'P':
			b.WriteByte('\n')
		case '~':
			b.WriteByte(' ')
		case '\\', '{', '}':
			b.WriteRune(rs[i])
		case 'L', 'l', 'O', 'o', 'K', 'k', 'N':
			// on/off toggles carry no text
		case 'S':
			// stacked fraction "\S1^2;" renders as "1/2"
			j := i + 1
			for j < len(rs) && rs[j] != ';' {
				switch rs[j] {
				case '^', '#':
					b.WriteByte('/')
				default:
					b.WriteRune(rs[j])
				}
				j++
			}
			i = j
		case 'f', 'F', 'H', 'h', 'C', 'c', 'T', 't', 'Q', 'q', 'W', 'w', 'A', 'a', 'p':
			j := i + 1
			for j < len(rs) && rs[j] != ';' {
				j++
			}
			i = j
		default:
			b.WriteByte('\\')
			b.WriteRune(rs[i])
		}
	}
	return specialChars(b.String())
}
