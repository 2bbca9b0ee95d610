package parser

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unquote decodes a single- or double-quoted string literal as it appears in source.  It reports false
// for anything else, template strings included.
func Unquote(lit string) (string, bool) {
	if len(lit) < 2 {
		return "", false
	}
	quote := lit[0]
	if (quote != '"' && quote != '\'') || lit[len(lit)-1] != quote {
		return "", false
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 == len(body) {
			return "", false
		}
		i++
		switch c = body[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			r, ok := hexRune(body, i+1, 2)
			if !ok {
				return "", false
			}
			b.WriteRune(r)
			i += 2
		case 'u':
			r, n, ok := unicodeEscape(body, i+1)
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(r) && i+2 < len(body) && body[i+1] == '\\' && body[i+2] == 'u' {
				if low, m, ok := unicodeEscape(body, i+3); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			// Any other escaped character stands for itself, multi-byte ones included.
			_, size := utf8.DecodeRuneInString(body[i:])
			b.WriteString(body[i : i+size])
			i += size - 1
		}
		i++
	}
	return b.String(), true
}

// unicodeEscape reads the digits after `\u` starting at body[at]: four hex digits or `{hex}`.  It
// returns the rune and the number of bytes read.
func unicodeEscape(body string, at int) (rune, int, bool) {
	if at < len(body) && body[at] == '{' {
		end := strings.IndexByte(body[at:], '}')
		if end < 2 {
			return 0, 0, false
		}
		r, ok := hexRune(body, at+1, end-1)
		if !ok || r > utf8.MaxRune {
			return 0, 0, false
		}
		return r, end + 1, true
	}
	r, ok := hexRune(body, at, 4)
	return r, 4, ok
}

func hexRune(body string, at, n int) (rune, bool) {
	if at+n > len(body) {
		return 0, false
	}
	v, err := strconv.ParseUint(body[at:at+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
