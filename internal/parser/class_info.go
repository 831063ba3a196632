package parser

import (
	"fmt"
	"strings"
)

// ClassInfo holds the interceptable surface of one class under test.
type ClassInfo struct {
	Name      string
	Namespace string
	Bases     []string
	Methods   []*MethodDescriptor
	// Functions are the free functions declared next to the class.
	Functions []*MethodDescriptor
}

// RefKind is the reference-ness of a type.
type RefKind int

const (
	RefNone RefKind = iota
	RefLValue
	RefRValue
)

// TypeDescriptor is one C++ parameter or return type.
type TypeDescriptor struct {
	Name  string
	Const bool
	Ref   RefKind
}

// Void is the descriptor of a function returning nothing.
var Void = TypeDescriptor{Name: "void"}

// IsVoid reports whether t is a plain void. The zero TypeDescriptor is void.
func (t TypeDescriptor) IsVoid() bool {
	return (t.Name == "void" || t.Name == "") && !t.Const && t.Ref == RefNone
}

// String renders t in the form used by generated code, e.g. "const QString &".
func (t TypeDescriptor) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	if t.Name == "" {
		b.WriteString("void")
	} else {
		b.WriteString(t.Name)
	}
	switch t.Ref {
	case RefLValue:
		b.WriteString(" &")
	case RefRValue:
		b.WriteString(" &&")
	}
	return b.String()
}

// ParseType parses a textual C++ type such as "const QString &" or "QObject*".
func ParseType(raw string) (TypeDescriptor, error) {
	s := normalizeTypeText(raw)
	if s == "" {
		return TypeDescriptor{}, fmt.Errorf("empty type")
	}

	t := TypeDescriptor{}
	switch {
	case strings.HasSuffix(s, "&&"):
		t.Ref = RefRValue
		s = strings.TrimSpace(strings.TrimSuffix(s, "&&"))
	case strings.HasSuffix(s, "&"):
		t.Ref = RefLValue
		s = strings.TrimSpace(strings.TrimSuffix(s, "&"))
	}
	if rest, ok := strings.CutPrefix(s, "const "); ok {
		t.Const = true
		s = rest
	} else if rest, ok := strings.CutSuffix(s, " const"); ok && !strings.HasSuffix(rest, "*") {
		// "QString const &" is the same type as "const QString &".
		t.Const = true
		s = rest
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "const" || strings.ContainsAny(s, "&") {
		return TypeDescriptor{}, fmt.Errorf("malformed type %q", raw)
	}
	t.Name = s
	return t, nil
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(raw string) TypeDescriptor {
	t, err := ParseType(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// normalizeTypeText collapses whitespace and spaces pointer and reference
// tokens the way generated code prints them.
func normalizeTypeText(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case '*', '&':
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	s = strings.ReplaceAll(s, "& &", "&&")
	s = strings.ReplaceAll(s, "* *", "**")
	s = strings.ReplaceAll(s, "< ", "<")
	s = strings.ReplaceAll(s, " >", ">")
	s = strings.ReplaceAll(s, " ,", ",")
	return s
}

// MethodDescriptor describes one interceptable member or free function.
type MethodDescriptor struct {
	Owner     string
	Namespace string
	Name      string
	Params    []TypeDescriptor
	Return    TypeDescriptor
	Virtual   bool
	Const     bool
	Static    bool
	Free      bool
	Siblings  []*MethodDescriptor
}

// NewMethodDescriptor validates m and returns it as a descriptor.
func NewMethodDescriptor(m MethodDescriptor) (*MethodDescriptor, error) {
	d := m
	if d.Return.Name == "" {
		d.Return = Void
	}
	// a nil parameter list means "not declared" to behavior matching
	if d.Params == nil {
		d.Params = []TypeDescriptor{}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the classification invariant of d.
func (d *MethodDescriptor) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "missing name"}
	case !d.Free && strings.TrimSpace(d.Owner) == "":
		return &MalformedDescriptorError{Method: d.Name, Reason: "member function without owner type"}
	case d.Free && d.Owner != "":
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "free function with owner type"}
	case d.Free && d.Virtual:
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "free function cannot be virtual"}
	case d.Free && len(d.Siblings) > 0:
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "free function cannot be overloaded"}
	case d.Free && d.Const:
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "free function cannot be const"}
	case d.Virtual && d.Static:
		return &MalformedDescriptorError{Method: d.QualifiedName(), Reason: "static member cannot be virtual"}
	}
	return nil
}

// QualifiedName returns Owner::Name for members and the namespace-qualified
// name for free functions.
func (d *MethodDescriptor) QualifiedName() string {
	if d.Free {
		if d.Namespace != "" {
			return d.Namespace + "::" + d.Name
		}
		return d.Name
	}
	return d.Owner + "::" + d.Name
}

// Overloaded reports whether naming d requires overload disambiguation.
func (d *MethodDescriptor) Overloaded() bool {
	return len(d.Siblings) > 0
}

// HasInstance reports whether calls to d carry a receiver.
func (d *MethodDescriptor) HasInstance() bool {
	return !d.Free && !d.Static
}

// ParamList renders the parameter types as "(int, const QString &)".
func (d *MethodDescriptor) ParamList() string {
	return RenderParamList(d.Params)
}

// Signature renders the part of the declaration that distinguishes overloads.
func (d *MethodDescriptor) Signature() string {
	sig := d.ParamList()
	if d.Const {
		sig += " const"
	}
	return sig
}

// RenderParamList renders types as a parenthesized, comma-separated list.
func RenderParamList(params []TypeDescriptor) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// SameParams reports whether two parameter lists are textually identical.
func SameParams(a, b []TypeDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
