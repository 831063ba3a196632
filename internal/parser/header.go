package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

type access int

const (
	accessPrivate access = iota
	accessProtected
	accessPublic
)

// headerClass is one class declaration found in a header.
type headerClass struct {
	name      string
	namespace string
	bases     []string
	methods   []*MethodDescriptor
}

type headerScan struct {
	src     []byte
	classes map[string]*headerClass
	free    []*MethodDescriptor
}

// ParseHeaderSource reflects className out of C++ header source. Public
// methods of base classes declared in the same source are included unless a
// derived class hides their name. Free functions declared or defined inline
// in the source are returned alongside. Qt macros are masked first, and
// signal sections are not part of the public surface.
func ParseHeaderSource(src []byte, className string) (*ClassInfo, error) {
	scan, err := scanSource(src)
	if err != nil {
		return nil, err
	}

	cls, ok := scan.classes[className]
	if !ok {
		return nil, fmt.Errorf("class %q not found", className)
	}
	return &ClassInfo{
		Name:      cls.name,
		Namespace: cls.namespace,
		Bases:     cls.bases,
		Methods:   flattenMethods(cls, scan.classes),
		Functions: scan.free,
	}, nil
}

// FreeFunctionsInSource returns free function declarations of a header.
func FreeFunctionsInSource(src []byte) ([]*MethodDescriptor, error) {
	scan, err := scanSource(src)
	if err != nil {
		return nil, err
	}
	return scan.free, nil
}

func scanSource(src []byte) (*headerScan, error) {
	p := sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(sitter.NewLanguage(cpp.Language())); err != nil {
		return nil, fmt.Errorf("load c++ grammar: %w", err)
	}

	src = maskQtMacros(src)
	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse failed: no root node")
	}

	scan := &headerScan{src: src, classes: map[string]*headerClass{}}
	scan.collect(root, "")
	return scan, nil
}

func (s *headerScan) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(s.src[n.StartByte():n.EndByte()])
}

func (s *headerScan) collect(n *sitter.Node, namespace string) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "namespace_definition":
			ns := s.text(child.ChildByFieldName("name"))
			if namespace != "" && ns != "" {
				ns = namespace + "::" + ns
			} else if ns == "" {
				ns = namespace
			}
			if body := child.ChildByFieldName("body"); body != nil {
				s.collect(body, ns)
			}
		case "class_specifier", "struct_specifier":
			s.collectClass(child, namespace)
		case "declaration", "function_definition":
			if ty := child.ChildByFieldName("type"); ty != nil &&
				(ty.Kind() == "class_specifier" || ty.Kind() == "struct_specifier") {
				s.collectClass(ty, namespace)
				continue
			}
			if m := s.function(child, "", namespace); m != nil {
				m.Free = true
				s.free = append(s.free, m)
			}
		case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif",
			"linkage_specification", "declaration_list":
			s.collect(child, namespace)
		}
	}
}

func (s *headerScan) collectClass(n *sitter.Node, namespace string) {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		// forward declaration
		return
	}

	cls := &headerClass{name: s.text(nameNode), namespace: namespace}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child.Kind() != "base_class_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			base := child.NamedChild(j)
			switch base.Kind() {
			case "type_identifier", "qualified_identifier", "template_type":
				cls.bases = append(cls.bases, s.text(base))
			}
		}
	}

	current := accessPrivate
	if n.Kind() == "struct_specifier" {
		current = accessPublic
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		switch member.Kind() {
		case "access_specifier":
			current = parseAccess(s.text(member))
		case "field_declaration", "function_definition", "declaration":
			if current != accessPublic {
				continue
			}
			if m := s.function(member, cls.name, namespace); m != nil {
				cls.methods = append(cls.methods, m)
			}
		case "class_specifier", "struct_specifier":
			s.collectClass(member, namespace)
		}
	}

	if _, seen := s.classes[cls.name]; !seen {
		s.classes[cls.name] = cls
	}
}

func parseAccess(text string) access {
	switch {
	case strings.HasPrefix(text, "public"):
		return accessPublic
	case strings.HasPrefix(text, "protected"):
		return accessProtected
	default:
		return accessPrivate
	}
}

// function builds a descriptor from a declaration whose declarator is a
// function declarator. It returns nil for data members, constructors,
// destructors and operators.
func (s *headerScan) function(n *sitter.Node, owner string, namespace string) *MethodDescriptor {
	typeNode := n.ChildByFieldName("type")
	decl := n.ChildByFieldName("declarator")
	if typeNode == nil || decl == nil {
		return nil
	}

	ret := TypeDescriptor{Name: normalizeTypeText(s.text(typeNode))}
	m := &MethodDescriptor{Owner: owner, Namespace: namespace}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "virtual":
			m.Virtual = true
		case "storage_class_specifier":
			if s.text(child) == "static" {
				m.Static = true
			}
		case "type_qualifier":
			if s.text(child) == "const" {
				ret.Const = true
			}
		}
		if !child.IsNamed() && s.text(child) == "virtual" {
			m.Virtual = true
		}
	}

	for decl != nil && decl.Kind() != "function_declarator" {
		switch decl.Kind() {
		case "pointer_declarator":
			ret.Name += " *"
		case "reference_declarator":
			ret.Ref = refKindOf(s.text(decl))
		default:
			return nil
		}
		decl = innerDeclarator(decl)
	}
	if decl == nil {
		return nil
	}

	nameNode := decl.ChildByFieldName("declarator")
	if nameNode == nil {
		return nil
	}
	switch nameNode.Kind() {
	case "field_identifier", "identifier":
		m.Name = s.text(nameNode)
	default:
		return nil
	}

	for i := uint(0); i < decl.ChildCount(); i++ {
		child := decl.Child(i)
		switch child.Kind() {
		case "type_qualifier":
			if s.text(child) == "const" {
				m.Const = true
			}
		case "virtual_specifier":
			// override / final only appear on virtual functions
			m.Virtual = true
		}
	}

	params, ok := s.params(decl.ChildByFieldName("parameters"))
	if !ok {
		return nil
	}
	m.Params = params
	m.Return = ret
	if m.Static {
		m.Virtual = false
	}
	return m
}

func (s *headerScan) params(list *sitter.Node) ([]TypeDescriptor, bool) {
	if list == nil {
		return nil, false
	}
	out := []TypeDescriptor{}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		switch p.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
		case "comment":
			continue
		default:
			// variadic and template parameter packs are not interceptable
			return nil, false
		}

		typeNode := p.ChildByFieldName("type")
		if typeNode == nil {
			return nil, false
		}
		t := TypeDescriptor{Name: normalizeTypeText(s.text(typeNode))}
		for j := uint(0); j < p.NamedChildCount(); j++ {
			q := p.NamedChild(j)
			if q.Kind() == "type_qualifier" && s.text(q) == "const" {
				t.Const = true
			}
		}

		decl := p.ChildByFieldName("declarator")
		for decl != nil {
			switch decl.Kind() {
			case "pointer_declarator", "abstract_pointer_declarator":
				t.Name += " *"
			case "reference_declarator", "abstract_reference_declarator":
				t.Ref = refKindOf(s.text(decl))
			}
			decl = innerDeclarator(decl)
		}

		// f(void)
		if t.Name == "void" && t.Ref == RefNone && !t.Const && list.NamedChildCount() == 1 {
			return []TypeDescriptor{}, true
		}
		out = append(out, t)
	}
	return out, true
}

func refKindOf(text string) RefKind {
	if strings.HasPrefix(strings.TrimSpace(text), "&&") {
		return RefRValue
	}
	return RefLValue
}

// innerDeclarator returns the declarator nested in n, if any.
func innerDeclarator(n *sitter.Node) *sitter.Node {
	if inner := n.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := n.NamedChildCount(); i > 0; i-- {
		child := n.NamedChild(i - 1)
		switch child.Kind() {
		case "pointer_declarator", "reference_declarator", "function_declarator",
			"abstract_pointer_declarator", "abstract_reference_declarator",
			"identifier", "field_identifier":
			return child
		}
	}
	return nil
}
