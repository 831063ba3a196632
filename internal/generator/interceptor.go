package generator

// Interceptor is the shape of the runtime call-interception facility the
// generated fixtures link against. The generator only needs to know how to
// spell its calls; how redirection happens is the library's business.
type Interceptor interface {
	// Includes lists headers the generated unit must include.
	Includes() []string
	// Declaration is the fixture member holding the interception state.
	Declaration() string
	// Install registers replacement for target.
	Install(target, replacement string) string
	// ResetAll removes every installed replacement.
	ResetAll() string
	// VirtualTarget names the runtime dispatch target of owner::method.
	VirtualTarget(owner, method string) string
	// InvokeMarker is the first statement of every replacement body.
	InvokeMarker() string
}

// Defaults for the stub_ext::StubExt facility.
const (
	DefaultStubVar      = "stub"
	DefaultInvokeMarker = "__DBG_STUB_INVOKE__"
)

type stubExt struct {
	varName string
	marker  string
}

// NewStubExt returns the interceptor for stub_ext::StubExt. Empty arguments
// select the defaults.
func NewStubExt(varName, marker string) Interceptor {
	if varName == "" {
		varName = DefaultStubVar
	}
	if marker == "" {
		marker = DefaultInvokeMarker
	}
	return &stubExt{varName: varName, marker: marker}
}

func (s *stubExt) Includes() []string {
	return []string{"stubext.h"}
}

func (s *stubExt) Declaration() string {
	return "stub_ext::StubExt " + s.varName + ";"
}

func (s *stubExt) Install(target, replacement string) string {
	return s.varName + ".set_lamda(" + target + ", " + replacement + ");"
}

func (s *stubExt) ResetAll() string {
	return s.varName + ".clear();"
}

func (s *stubExt) VirtualTarget(owner, method string) string {
	return "VADDR(" + owner + ", " + method + ")"
}

func (s *stubExt) InvokeMarker() string {
	return s.marker
}
