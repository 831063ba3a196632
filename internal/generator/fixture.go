package generator

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/seitarof/qt-stubgen/internal/parser"
	"github.com/seitarof/qt-stubgen/internal/resolver"
)

//go:embed templates/*.cpp.tmpl
var templateFS embed.FS

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// StubPlan is a stub request already bound to its method and strategy.
// Err is set when the request's target could not be bound; the plan is then
// reported instead of emitted.
type StubPlan struct {
	Target   string
	Method   *parser.MethodDescriptor
	Strategy resolver.StubStrategy
	Behavior parser.Behavior
	Err      error
}

// TestCaseSpec is one TEST_F: its per-test stubs are installed before Body.
type TestCaseSpec struct {
	Name  string
	Body  string
	Stubs []StubPlan
}

// FixtureSpec describes the fixture for one class under test.
type FixtureSpec struct {
	ClassName string
	Namespace string
	Header    string
	CtorArgs  string
	License   []string
	Stubs     []StubPlan
	TestCases []TestCaseSpec
}

// SourceUnit is one rendered test source file.
type SourceUnit struct {
	Filename  string
	ClassName string
	Content   []byte
}

// Renderer fills the fixture template for a class.
type Renderer interface {
	Render(spec FixtureSpec) (SourceUnit, []*StubError, error)
}

type rendererImpl struct {
	interceptor Interceptor
	emitter     Emitter
	tmpl        *template.Template
}

type fixtureData struct {
	License     []string
	Includes    []string
	Namespace   string
	Class       string
	CtorArgs    string
	Reset       string
	Declaration string
	Setup       []string
	Tests       []testCaseData
}

type testCaseData struct {
	Name  string
	Body  string
	Stubs []string
}

// NewRenderer creates a fixture renderer emitting stubs with em and spelling
// the fixture lifecycle for ic.
func NewRenderer(ic Interceptor, em Emitter) Renderer {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"indent":     indent,
		"indentBody": indentBody,
	}).ParseFS(templateFS, "templates/*.cpp.tmpl"))
	return &rendererImpl{interceptor: ic, emitter: em, tmpl: tmpl}
}

// FixtureFilename is the output file name for className.
func FixtureFilename(className string) string {
	return "test_" + strings.ToLower(className) + ".cpp"
}

func (r *rendererImpl) Render(spec FixtureSpec) (SourceUnit, []*StubError, error) {
	if err := validateFixture(spec); err != nil {
		return SourceUnit{}, nil, err
	}

	var stubErrs []*StubError
	data := fixtureData{
		License:     spec.License,
		Includes:    append(r.interceptor.Includes(), nonEmpty(spec.Header)...),
		Namespace:   spec.Namespace,
		Class:       spec.ClassName,
		CtorArgs:    spec.CtorArgs,
		Reset:       r.interceptor.ResetAll(),
		Declaration: r.interceptor.Declaration(),
	}

	for _, p := range spec.Stubs {
		text, err := r.emit(p)
		if err != nil {
			stubErrs = append(stubErrs, &StubError{Class: spec.ClassName, Target: p.Target, Err: err})
			continue
		}
		data.Setup = append(data.Setup, text)
	}

	for _, tc := range spec.TestCases {
		out := testCaseData{Name: tc.Name, Body: strings.Trim(tc.Body, "\n")}
		excluded := false
		for _, p := range tc.Stubs {
			text, err := r.emit(p)
			if err != nil {
				stubErrs = append(stubErrs, &StubError{Class: spec.ClassName, TestCase: tc.Name, Target: p.Target, Err: err})
				excluded = true
				continue
			}
			out.Stubs = append(out.Stubs, text)
		}
		if !excluded {
			data.Tests = append(data.Tests, out)
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "fixture.cpp.tmpl", data); err != nil {
		return SourceUnit{}, stubErrs, fmt.Errorf("template: %w", err)
	}
	return SourceUnit{
		Filename:  FixtureFilename(spec.ClassName),
		ClassName: spec.ClassName,
		Content:   buf.Bytes(),
	}, stubErrs, nil
}

func (r *rendererImpl) emit(p StubPlan) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	if p.Method == nil {
		return "", &ResolutionError{Method: p.Target, Reason: "no method bound to stub"}
	}
	reg, err := r.emitter.Emit(p.Method, p.Strategy, p.Behavior)
	if err != nil {
		return "", err
	}
	return reg.Text, nil
}

func validateFixture(spec FixtureSpec) error {
	if strings.TrimSpace(spec.ClassName) == "" {
		return &FixtureError{Reason: "class name is required"}
	}
	if !identifierPattern.MatchString(spec.ClassName) {
		return &FixtureError{Class: spec.ClassName, Reason: "class name is not an identifier"}
	}
	seen := make(map[string]struct{}, len(spec.TestCases))
	for _, tc := range spec.TestCases {
		if !identifierPattern.MatchString(tc.Name) {
			return &FixtureError{Class: spec.ClassName, Reason: fmt.Sprintf("invalid test case name %q", tc.Name)}
		}
		if _, ok := seen[tc.Name]; ok {
			return &FixtureError{Class: spec.ClassName, Reason: fmt.Sprintf("duplicate test case %q", tc.Name)}
		}
		seen[tc.Name] = struct{}{}
	}
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func indent(n int, text string) string {
	pad := strings.Repeat(" ", n)
	var b strings.Builder
	remaining := strings.TrimRight(text, "\n")
	for {
		line, rest, found := strings.Cut(remaining, "\n")
		if strings.TrimSpace(line) != "" {
			b.WriteString(pad)
			b.WriteString(strings.TrimRight(line, " \t"))
		}
		if !found {
			break
		}
		b.WriteString("\n")
		remaining = rest
	}
	return b.String()
}

// indentBody shifts a test body right by n columns and otherwise leaves it as
// written. Lines that start inside a raw string literal are not shifted and
// lines that end inside one keep their trailing blanks.
func indentBody(n int, text string) string {
	pad := strings.Repeat(" ", n)
	raw := rawStringSpans(text)
	inside := func(off int) bool {
		for _, sp := range raw {
			if sp[0] <= off && off <= sp[1] {
				return true
			}
		}
		return false
	}

	var b strings.Builder
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		line := text[start:end]
		switch {
		case inside(start):
			if !inside(end) {
				line = strings.TrimRight(line, " \t")
			}
			b.WriteString(line)
		case inside(end):
			b.WriteString(pad)
			b.WriteString(line)
		case strings.TrimSpace(line) != "":
			b.WriteString(pad)
			b.WriteString(strings.TrimRight(line, " \t"))
		}
		if end == len(text) {
			break
		}
		b.WriteString("\n")
		start = end + 1
	}
	return b.String()
}

// rawStringSpans returns the content offsets [open, close] of every C++ raw
// string literal in src: open is just past "R\"delim(" and close is the ')'
// ending it.
func rawStringSpans(src string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(src); i++ {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			if k := strings.IndexByte(src[i:], '\n'); k >= 0 {
				i += k
				continue
			}
			return spans
		case strings.HasPrefix(src[i:], "/*"):
			if k := strings.Index(src[i+2:], "*/"); k >= 0 {
				i += k + 3
				continue
			}
			return spans
		case src[i] == 'R' && i+1 < len(src) && src[i+1] == '"' && rawPrefixOK(src, i):
			open := strings.IndexByte(src[i+2:], '(')
			if open < 0 {
				return spans
			}
			delim := src[i+2 : i+2+open]
			contentStart := i + 2 + open + 1
			k := strings.Index(src[contentStart:], ")"+delim+"\"")
			if k < 0 {
				return append(spans, [2]int{contentStart, len(src)})
			}
			spans = append(spans, [2]int{contentStart, contentStart + k})
			i = contentStart + k + len(delim) + 1
		case src[i] == '"', src[i] == '\'' && (i == 0 || !isIdentByte(src[i-1])):
			// a quote after a digit is a digit separator, not a literal
			quote := src[i]
			for i++; i < len(src) && src[i] != quote && src[i] != '\n'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		}
	}
	return spans
}

// rawPrefixOK reports whether the R at src[i] starts a raw string literal,
// alone or after one of the encoding prefixes u8, u, U and L.
func rawPrefixOK(src string, i int) bool {
	before := src[:i]
	for _, p := range []string{"u8", "u", "U", "L"} {
		if strings.HasSuffix(before, p) {
			before = strings.TrimSuffix(before, p)
			break
		}
	}
	return before == "" || !isIdentByte(before[len(before)-1])
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
