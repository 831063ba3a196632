package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the generator input: one entry per class under test.
type Manifest struct {
	License  string            `yaml:"license"`
	Fixtures []FixtureManifest `yaml:"fixtures"`
}

// FixtureManifest describes one class under test and what its fixture stubs.
type FixtureManifest struct {
	Class     string `yaml:"class"`
	Namespace string `yaml:"namespace"`
	// Header is the include path written into the generated unit.
	Header string `yaml:"header"`
	// Reflect is a header file on disk to derive methods from, relative
	// to the manifest.
	Reflect     string        `yaml:"reflect"`
	CtorArgs    string        `yaml:"ctorArgs"`
	Methods     []MethodSpec  `yaml:"methods"`
	Targets     []MethodSpec  `yaml:"targets"`
	Stubs       []StubRequest `yaml:"stubs"`
	Tests       []TestCase    `yaml:"tests"`
	TestArchive string        `yaml:"testArchive"`
}

// MethodSpec is the manifest form of a MethodDescriptor.
type MethodSpec struct {
	Owner     string           `yaml:"owner"`
	Namespace string           `yaml:"namespace"`
	Name      string           `yaml:"name"`
	Params    []TypeDescriptor `yaml:"params"`
	Return    *TypeDescriptor  `yaml:"return"`
	Virtual   bool             `yaml:"virtual"`
	Const     bool             `yaml:"const"`
	Static    bool             `yaml:"static"`
	Free      bool             `yaml:"free"`
}

// Descriptor converts s into a validated descriptor.
func (s MethodSpec) Descriptor() (*MethodDescriptor, error) {
	m := MethodDescriptor{
		Owner:     s.Owner,
		Namespace: s.Namespace,
		Name:      s.Name,
		Params:    s.Params,
		Virtual:   s.Virtual,
		Const:     s.Const,
		Static:    s.Static,
		Free:      s.Free,
	}
	if s.Return != nil {
		m.Return = *s.Return
	}
	return NewMethodDescriptor(m)
}

// StubRequest asks for one method to be replaced by a behavior.
type StubRequest struct {
	// Target is "Owner::name" for members or "[ns::]name" for free functions.
	Target     string           `yaml:"target"`
	Params     []TypeDescriptor `yaml:"params"`
	ParamNames []string         `yaml:"names"`
	Return     *TypeDescriptor  `yaml:"return"`
	Const      *bool            `yaml:"const"`
	Body       string           `yaml:"body"`
	Returns    string           `yaml:"returns"`
	Self       *bool            `yaml:"self"`
}

// Behavior converts r into the replacement behavior handed to the emitter.
func (r StubRequest) Behavior() Behavior {
	b := Behavior{
		Params:       r.Params,
		ParamNames:   r.ParamNames,
		Return:       r.Return,
		Const:        r.Const,
		Body:         r.Body,
		Returns:      r.Returns,
		BindInstance: true,
	}
	if r.Self != nil {
		b.BindInstance = *r.Self
	}
	return b
}

// TestCase is one author-supplied test; Body is emitted verbatim.
type TestCase struct {
	Name  string        `yaml:"name"`
	Body  string        `yaml:"body"`
	Stubs []StubRequest `yaml:"stubs"`
}

// Behavior is the replacement a stub installs.
//
// A nil Params means the parameter list was not declared; an empty non-nil
// slice declares a nullary replacement.
type Behavior struct {
	Params       []TypeDescriptor
	ParamNames   []string
	Return       *TypeDescriptor
	Const        *bool
	Body         string
	Returns      string
	BindInstance bool
}

// SplitTarget splits "a::b::name" into ("a::b", "name").
func SplitTarget(target string) (scope, name string) {
	target = strings.TrimSpace(target)
	target = strings.TrimPrefix(target, "&")
	i := strings.LastIndex(target, "::")
	if i < 0 {
		return "", target
	}
	return target[:i], target[i+2:]
}

// UnmarshalYAML decodes a scalar such as "const QString &".
func (t *TypeDescriptor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type must be a string", value.Line)
	}
	parsed, err := ParseType(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes t back to its textual form.
func (t TypeDescriptor) MarshalYAML() (any, error) {
	return t.String(), nil
}
