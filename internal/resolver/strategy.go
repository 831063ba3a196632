package resolver

import "github.com/seitarof/qt-stubgen/internal/parser"

// StubClassification is the strategy chosen for one descriptor.
type StubClassification struct {
	Method   *parser.MethodDescriptor
	Strategy StubStrategy
	Rule     string
}

// StubStrategy identifies how a stub names its target.
type StubStrategy int

const (
	// StrategyDirectAddress takes &Owner::name.
	StrategyDirectAddress StubStrategy = iota
	// StrategyVirtualAddressResolution resolves the dispatch target of a
	// virtual method instead of taking a static address.
	StrategyVirtualAddressResolution
	// StrategyOverloadCast casts &Owner::name to one overload's type.
	StrategyOverloadCast
	// StrategyVirtualOverloadCast casts the virtual-resolution expression.
	StrategyVirtualOverloadCast
	// StrategyFreeFunctionAddress names a free function; no receiver.
	StrategyFreeFunctionAddress
)

var strategyNames = [...]string{
	StrategyDirectAddress:            "DirectAddress",
	StrategyVirtualAddressResolution: "VirtualAddressResolution",
	StrategyOverloadCast:             "OverloadCast",
	StrategyVirtualOverloadCast:      "VirtualAddressResolution+OverloadCast",
	StrategyFreeFunctionAddress:      "FreeFunctionAddress",
}

func (s StubStrategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "StubStrategy(unknown)"
	}
	return strategyNames[s]
}

// ResolvesVirtual reports whether the target expression goes through
// virtual address resolution.
func (s StubStrategy) ResolvesVirtual() bool {
	return s == StrategyVirtualAddressResolution || s == StrategyVirtualOverloadCast
}

// NeedsCast reports whether the target expression is wrapped in an
// overload-selecting cast.
func (s StubStrategy) NeedsCast() bool {
	return s == StrategyOverloadCast || s == StrategyVirtualOverloadCast
}
