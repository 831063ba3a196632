package resolver

import "github.com/seitarof/qt-stubgen/internal/parser"

// DefaultRules returns built-in rules in decision-table order.
func DefaultRules() []Rule {
	return []Rule{
		&FreeFunctionRule{},
		&VirtualRule{},
		&VirtualOverloadRule{},
		&OverloadRule{},
		&DirectRule{},
	}
}

// FreeFunctionRule: free function -> address by name.
type FreeFunctionRule struct{}

func (r *FreeFunctionRule) Name() string { return "free-function" }

func (r *FreeFunctionRule) Try(d *parser.MethodDescriptor) (StubStrategy, bool) {
	if d.Free {
		return StrategyFreeFunctionAddress, true
	}
	return 0, false
}

// VirtualRule: virtual, unique name -> virtual address resolution.
type VirtualRule struct{}

func (r *VirtualRule) Name() string { return "virtual" }

func (r *VirtualRule) Try(d *parser.MethodDescriptor) (StubStrategy, bool) {
	if d.Virtual && !d.Overloaded() {
		return StrategyVirtualAddressResolution, true
	}
	return 0, false
}

// VirtualOverloadRule: virtual and overloaded -> cast around the resolved
// virtual address.
type VirtualOverloadRule struct{}

func (r *VirtualOverloadRule) Name() string { return "virtual-overload" }

func (r *VirtualOverloadRule) Try(d *parser.MethodDescriptor) (StubStrategy, bool) {
	if d.Virtual && d.Overloaded() {
		return StrategyVirtualOverloadCast, true
	}
	return 0, false
}

// OverloadRule: non-virtual, overloaded -> overload cast.
type OverloadRule struct{}

func (r *OverloadRule) Name() string { return "overload" }

func (r *OverloadRule) Try(d *parser.MethodDescriptor) (StubStrategy, bool) {
	if !d.Virtual && d.Overloaded() {
		return StrategyOverloadCast, true
	}
	return 0, false
}

// DirectRule: plain member -> &Owner::name.
type DirectRule struct{}

func (r *DirectRule) Name() string { return "direct" }

func (r *DirectRule) Try(d *parser.MethodDescriptor) (StubStrategy, bool) {
	return StrategyDirectAddress, true
}
