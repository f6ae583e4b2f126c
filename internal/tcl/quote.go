// internal/tcl/quote.go

package tcl

import (
	"fmt"
	"strings"
)

const specialChars = " \t\n\r\f\v{}[]$\";\\"

// Quote renders s as a single Tcl list element.
//
// Plain words are returned unchanged, words containing whitespace or Tcl
// metacharacters are wrapped in braces when that is safe, and escaped with
// backslashes otherwise.
func Quote(s string) string {
	if s == "" {
		return "{}"
	}
	if !strings.ContainsAny(s, specialChars) && !strings.HasPrefix(s, "#") {
		return s
	}
	if canBrace(s) {
		return "{" + s + "}"
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case ' ', '{', '}', '[', ']', '$', '"', ';', '\\', '#':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canBrace reports whether s survives being wrapped in braces: braces must
// balance, and a trailing backslash would escape the closing brace.
func canBrace(s string) bool {
	if strings.HasSuffix(s, `\`) {
		return false
	}
	depth := 0
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// List renders elems as a Tcl list, quoting each element.
func List(elems ...string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = Quote(e)
	}
	return strings.Join(quoted, " ")
}

// Command joins a verb and its arguments into one command line. Arguments
// are rendered with fmt.Sprint and are not quoted.
func Command(verb string, args ...any) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, a := range args {
		s := fmt.Sprint(a)
		if s == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(s)
	}
	return b.String()
}
