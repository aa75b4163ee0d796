package models

import "strings"

// PlainText strips inline MTEXT formatting: paragraph breaks become
// newlines, property codes such as \H2.5; or \fArial|b1; are dropped,
// stacked fractions \S1/2; are kept as "1/2" and grouping braces vanish.
func PlainText(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch c {
		case '{', '}':
			continue
		case '%':
			if i+2 < len(rs) && rs[i+1] == '%' {
				if r, ok := specialChars[rs[i+2]]; ok {
					b.WriteRune(r)
					i += 2
					continue
				}
			}
			b.WriteRune(c)
		case '\\':
			if i+1 >= len(rs) {
				b.WriteRune(c)
				continue
			}
			i++
			code := rs[i]
			switch code {
			case 'P', 'X':
				b.WriteByte('\n')
			case '~':
				b.WriteByte(' ')
			case '\\', '{', '}':
				b.WriteRune(code)
			case 'L', 'l', 'O', 'o', 'K', 'k':
			case 'S':
				end := indexRune(rs, i+1, ';')
				stack := string(rs[i+1 : end])
				stack = strings.NewReplacer("^", "/", "#", "/").Replace(stack)
				b.WriteString(stack)
				i = end
			case 'A', 'C', 'c', 'f', 'F', 'H', 'Q', 'T', 'W', 'p':
				i = indexRune(rs, i+1, ';')
			default:
				b.WriteRune('\\')
				b.WriteRune(code)
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

var specialChars = map[rune]rune{
	'd': '°', 'D': '°',
	'p': '±', 'P': '±',
	'c': '⌀', 'C': '⌀',
}

// indexRune returns the index of r at or after from, or len(rs) when absent.
func indexRune(rs []rune, from int, r rune) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == r {
			return j
		}
	}
	return len(rs)
}

// CleanText collapses whitespace runs, strips NUL characters and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.Join(strings.Fields(s), " ")
}
