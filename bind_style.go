package selq

import (
	"strconv"
	"strings"
)

// BindStyle is the placeholder syntax a server expects. Queries are always compiled with "?"
// and rewritten by Rebind just before they reach the driver.
type BindStyle uint8

const (
	BindQuestion BindStyle = iota // ?
	BindDollar                    // $1, $2
	BindAt                        // @p1, @p2
)

// Rebind rewrites every "?" outside quoted text into style's numbered placeholders.
func Rebind(style BindStyle, query string) string {
	if style == BindQuestion || !strings.ContainsRune(query, '?') {
		return query
	}

	sb := strings.Builder{}
	sb.Grow(len(query) + 8)

	var (
		quote rune
		n     int
	)
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			n++
			if style == BindDollar {
				sb.WriteByte('$')
			} else {
				sb.WriteString("@p")
			}
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// countPlaceholders counts every "?" outside quoted text.
func countPlaceholders(s string) int {
	var (
		quote rune
		n     int
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			n++
		}
	}
	return n
}
