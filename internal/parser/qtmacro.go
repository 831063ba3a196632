package parser

import "strings"

// qtMacros maps Qt's class-body and declaration macros to the plain C++
// they stand for as far as reflection is concerned. The grammar knows
// nothing about moc, and an unexpanded Q_OBJECT makes it swallow the access
// section that follows.
var qtMacros = map[string]struct {
	replacement string
	args        bool
	statement   bool
	// label macros only count in front of a colon, e.g. "public slots:"
	label bool
}{
	"Q_OBJECT":              {statement: true},
	"Q_GADGET":              {statement: true},
	"Q_NAMESPACE":           {statement: true},
	"Q_PROPERTY":            {args: true, statement: true},
	"Q_CLASSINFO":           {args: true, statement: true},
	"Q_INTERFACES":          {args: true, statement: true},
	"Q_ENUM":                {args: true, statement: true},
	"Q_ENUMS":               {args: true, statement: true},
	"Q_FLAG":                {args: true, statement: true},
	"Q_FLAGS":               {args: true, statement: true},
	"Q_PLUGIN_METADATA":     {args: true, statement: true},
	"Q_DISABLE_COPY":        {args: true, statement: true},
	"Q_DISABLE_COPY_MOVE":   {args: true, statement: true},
	"Q_DECLARE_PRIVATE":     {args: true, statement: true},
	"Q_DECLARE_PRIVATE_D":   {args: true, statement: true},
	"Q_DECLARE_PUBLIC":      {args: true, statement: true},
	"Q_DECLARE_FLAGS":       {args: true, statement: true},
	"Q_INVOKABLE":           {},
	"Q_SLOT":                {},
	"Q_SIGNAL":              {},
	"Q_SCRIPTABLE":          {},
	"Q_REQUIRED_RESULT":     {},
	"Q_DECL_CONSTEXPR":      {},
	"Q_DECL_DEPRECATED":     {},
	"Q_DECL_NOTHROW":        {},
	"Q_DECL_NOEXCEPT":       {},
	"Q_DECL_OVERRIDE":       {replacement: "override"},
	"Q_DECL_FINAL":          {replacement: "final"},
	"slots":                 {label: true},
	"Q_SLOTS":               {label: true},
	"signals":               {replacement: "private", label: true},
	"Q_SIGNALS":             {replacement: "private", label: true},
	"QT_DEPRECATED":         {},
	"Q_DECL_IMPORT":         {},
	"Q_DECL_EXPORT":         {},
	"Q_DECL_HIDDEN":         {},
	"Q_DECL_UNUSED":         {},
	"Q_DECL_CONST_FUNCTION": {},
}

// maskQtMacros blanks Qt macros out of src without moving any byte, so node
// offsets still index the original header. Signal sections become private,
// which keeps them out of the public surface. Export macros such as
// Q_CORE_EXPORT are blanked as well.
func maskQtMacros(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	for i := 0; i < len(out); {
		c := out[i]
		switch {
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			i = skipUntil(out, i, "\n")
			continue
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			i = skipUntil(out, i+2, "*/")
			continue
		case c == '"':
			i = skipQuoted(out, i)
			continue
		case !isIdentStart(c):
			i++
			continue
		}

		start := i
		for i < len(out) && isIdentByte(out[i]) {
			i++
		}
		if start > 0 && isIdentByte(out[start-1]) {
			continue
		}
		word := string(out[start:i])
		m, ok := qtMacros[word]
		if !ok {
			if strings.HasSuffix(word, "_EXPORT") && strings.ToUpper(word) == word {
				blank(out, start, i)
			}
			continue
		}

		end := i
		if m.label && !beforeColon(out, end) {
			continue
		}
		if m.args {
			j := skipSpace(out, end)
			if j >= len(out) || out[j] != '(' {
				continue
			}
			end = matchParen(out, j)
		}
		if m.statement {
			if j := skipSpace(out, end); j < len(out) && out[j] == ';' {
				end = j + 1
			}
		}
		blank(out, start, end)
		copy(out[start:], m.replacement)
		i = end
	}
	return out
}

// blank overwrites out[from:to] with spaces, keeping line breaks.
func blank(out []byte, from, to int) {
	for k := from; k < to; k++ {
		if out[k] != '\n' {
			out[k] = ' '
		}
	}
}

func skipUntil(src []byte, i int, end string) int {
	if k := strings.Index(string(src[i:]), end); k >= 0 {
		return i + k + len(end)
	}
	return len(src)
}

func skipQuoted(src []byte, i int) int {
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"', '\n':
			return i + 1
		}
	}
	return i
}

func skipSpace(src []byte, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func beforeColon(src []byte, i int) bool {
	j := skipSpace(src, i)
	return j < len(src) && src[j] == ':' && (j+1 >= len(src) || src[j+1] != ':')
}

// matchParen returns the offset just past the parenthesis closing src[open].
func matchParen(src []byte, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(src)
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
