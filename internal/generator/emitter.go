package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seitarof/qt-stubgen/internal/parser"
	"github.com/seitarof/qt-stubgen/internal/resolver"
)

// Emitter renders the registration of one replacement behavior.
type Emitter interface {
	Emit(d *parser.MethodDescriptor, s resolver.StubStrategy, b parser.Behavior) (StubRegistration, error)
}

// StubRegistration is one rendered interception: Target is the expression
// naming the function, Closure the replacement lambda, Text the full
// statement installing it.
type StubRegistration struct {
	Method   *parser.MethodDescriptor
	Strategy resolver.StubStrategy
	Target   string
	Closure  string
	Text     string
}

type emitterImpl struct {
	interceptor Interceptor
}

// NewEmitter creates an emitter spelling registrations for ic.
func NewEmitter(ic Interceptor) Emitter {
	return &emitterImpl{interceptor: ic}
}

func (e *emitterImpl) Emit(
	d *parser.MethodDescriptor,
	s resolver.StubStrategy,
	b parser.Behavior,
) (StubRegistration, error) {
	if err := checkBehavior(d, s, b); err != nil {
		return StubRegistration{}, err
	}

	target := e.target(d, s)
	closure := e.closure(d, b)
	return StubRegistration{
		Method:   d,
		Strategy: s,
		Target:   target,
		Closure:  closure,
		Text:     e.interceptor.Install(target, closure),
	}, nil
}

func (e *emitterImpl) target(d *parser.MethodDescriptor, s resolver.StubStrategy) string {
	var expr string
	switch {
	case s == resolver.StrategyFreeFunctionAddress:
		expr = d.QualifiedName()
	case s.ResolvesVirtual():
		expr = e.interceptor.VirtualTarget(d.Owner, d.Name)
	default:
		expr = "&" + d.QualifiedName()
	}
	if s.NeedsCast() {
		expr = "static_cast<" + functionPointerType(d) + ">(" + expr + ")"
	}
	return expr
}

// functionPointerType spells the pointer type selecting exactly d among its
// overloads, e.g. "int (Calc::*)(int, int)" or "QString (Calc::*)() const".
func functionPointerType(d *parser.MethodDescriptor) string {
	if !d.HasInstance() {
		return d.Return.String() + " (*)" + d.ParamList()
	}
	return d.Return.String() + " (" + d.Owner + "::*)" + d.Signature()
}

func (e *emitterImpl) closure(d *parser.MethodDescriptor, b parser.Behavior) string {
	params := make([]string, 0, len(d.Params)+1)
	if d.HasInstance() && b.BindInstance {
		params = append(params, declare(d.Owner+" *", "self"))
	}
	for i, p := range d.Params {
		params = append(params, declare(p.String(), paramName(b.ParamNames, i)))
	}

	var sb strings.Builder
	sb.WriteString("[](")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")")
	if !d.Return.IsVoid() {
		sb.WriteString(" -> ")
		sb.WriteString(d.Return.String())
	}
	sb.WriteString(" {\n")
	writeLine(&sb, e.interceptor.InvokeMarker())
	for _, line := range bodyLines(b.Body) {
		writeLine(&sb, line)
	}
	switch {
	case b.Returns != "":
		writeLine(&sb, "return "+strings.TrimSuffix(strings.TrimSpace(b.Returns), ";")+";")
	case strings.TrimSpace(b.Body) == "" && !d.Return.IsVoid():
		for _, line := range defaultReturn(d.Return) {
			writeLine(&sb, line)
		}
	}
	sb.WriteString("}")
	return sb.String()
}

func writeLine(sb *strings.Builder, line string) {
	if line == "" {
		sb.WriteString("\n")
		return
	}
	sb.WriteString("    ")
	sb.WriteString(line)
	sb.WriteString("\n")
}

// bodyLines splits a replacement body, dropping leading and trailing blank
// lines and trailing spaces.
func bodyLines(body string) []string {
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return nil
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

// defaultReturn produces a value-initialized result for behaviors that only
// record the call.
func defaultReturn(t parser.TypeDescriptor) []string {
	if t.Ref == parser.RefNone {
		return []string{"return " + t.String() + "{};"}
	}
	return []string{
		"static " + t.Name + " stubResult{};",
		"return stubResult;",
	}
}

func declare(typ, name string) string {
	if strings.HasSuffix(typ, "*") || strings.HasSuffix(typ, "&") {
		return typ + name
	}
	return typ + " " + name
}

func paramName(names []string, i int) string {
	if i < len(names) && strings.TrimSpace(names[i]) != "" {
		return strings.TrimSpace(names[i])
	}
	return "arg" + strconv.Itoa(i+1)
}

// checkBehavior enforces that b describes exactly d.
func checkBehavior(d *parser.MethodDescriptor, s resolver.StubStrategy, b parser.Behavior) error {
	name := d.QualifiedName()

	if s.NeedsCast() {
		if err := checkOverloadSelection(d, b); err != nil {
			return err
		}
	} else if b.Params != nil && !parser.SameParams(b.Params, d.Params) {
		if len(b.Params) != len(d.Params) {
			return &ResolutionError{
				Method: name,
				Reason: fmt.Sprintf("behavior takes %d parameter(s), method takes %d", len(b.Params), len(d.Params)),
			}
		}
		return &ResolutionError{
			Method: name,
			Reason: fmt.Sprintf("behavior parameters %s do not match %s", parser.RenderParamList(b.Params), d.ParamList()),
		}
	}

	if b.Const != nil && *b.Const != d.Const {
		return &ResolutionError{Method: name, Reason: fmt.Sprintf("behavior const=%v, method const=%v", *b.Const, d.Const)}
	}
	if b.Return != nil && b.Return.String() != d.Return.String() {
		return &ResolutionError{
			Method: name,
			Reason: fmt.Sprintf("behavior returns %s, method returns %s", b.Return, d.Return),
		}
	}
	if len(b.ParamNames) > len(d.Params) {
		return &ResolutionError{
			Method: name,
			Reason: fmt.Sprintf("%d parameter name(s) given for %d parameter(s)", len(b.ParamNames), len(d.Params)),
		}
	}
	if b.Returns != "" && d.Return.IsVoid() {
		return &ResolutionError{Method: name, Reason: "void method cannot return a value"}
	}
	return nil
}

// checkOverloadSelection requires b to match exactly one member of d's
// overload set, and that member to be d.
func checkOverloadSelection(d *parser.MethodDescriptor, b parser.Behavior) error {
	set := append([]*parser.MethodDescriptor{d}, d.Siblings...)
	candidates := make([]string, 0, len(set))
	for _, m := range set {
		candidates = append(candidates, m.Signature())
	}

	if b.Params == nil {
		return &AmbiguousOverloadError{Method: d.QualifiedName(), Candidates: candidates, Matches: len(set)}
	}

	var matched []*parser.MethodDescriptor
	for _, m := range set {
		if !parser.SameParams(m.Params, b.Params) {
			continue
		}
		if b.Const != nil && *b.Const != m.Const {
			continue
		}
		matched = append(matched, m)
	}

	switch {
	case len(matched) > 1:
		return &AmbiguousOverloadError{Method: d.QualifiedName(), Candidates: candidates, Matches: len(matched)}
	case len(matched) == 0:
		return &ResolutionError{
			Method: d.QualifiedName(),
			Reason: fmt.Sprintf("no overload takes %s", parser.RenderParamList(b.Params)),
		}
	case matched[0] != d:
		return &ResolutionError{
			Method: d.QualifiedName() + d.Signature(),
			Reason: fmt.Sprintf("behavior selects overload %s", matched[0].Signature()),
		}
	}
	return nil
}
