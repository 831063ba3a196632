package resolver

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/seitarof/qt-stubgen/internal/parser"
)

func sibling(owner, name string) *parser.MethodDescriptor {
	return &parser.MethodDescriptor{Owner: owner, Name: name, Params: []parser.TypeDescriptor{{Name: "double"}}}
}

func TestClassifier_DecisionTable(t *testing.T) {
	c := New(DefaultRules()...)

	tests := []struct {
		name string
		desc *parser.MethodDescriptor
		want StubStrategy
		rule string
	}{
		{
			name: "free function",
			desc: &parser.MethodDescriptor{Name: "qPrintable", Free: true},
			want: StrategyFreeFunctionAddress,
			rule: "free-function",
		},
		{
			name: "virtual unique",
			desc: &parser.MethodDescriptor{Owner: "QDialog", Name: "exec", Virtual: true},
			want: StrategyVirtualAddressResolution,
			rule: "virtual",
		},
		{
			name: "virtual overloaded",
			desc: &parser.MethodDescriptor{Owner: "Base", Name: "paint", Virtual: true, Siblings: []*parser.MethodDescriptor{sibling("Base", "paint")}},
			want: StrategyVirtualOverloadCast,
			rule: "virtual-overload",
		},
		{
			name: "overloaded",
			desc: &parser.MethodDescriptor{Owner: "Calc", Name: "add", Siblings: []*parser.MethodDescriptor{sibling("Calc", "add")}},
			want: StrategyOverloadCast,
			rule: "overload",
		},
		{
			name: "plain member",
			desc: &parser.MethodDescriptor{Owner: "QWidget", Name: "height", Const: true},
			want: StrategyDirectAddress,
			rule: "direct",
		},
		{
			name: "static member",
			desc: &parser.MethodDescriptor{Owner: "Calc", Name: "instance", Static: true},
			want: StrategyDirectAddress,
			rule: "direct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.desc); got != tt.want {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
			all := c.ClassifyAll([]*parser.MethodDescriptor{tt.desc})
			if len(all) != 1 || all[0].Rule != tt.rule || all[0].Method != tt.desc {
				t.Fatalf("ClassifyAll() = %#v, want rule %q", all, tt.rule)
			}
		})
	}
}

func TestClassifier_EmptyChainFallsBack(t *testing.T) {
	c := New()
	if got := c.Classify(&parser.MethodDescriptor{Owner: "QWidget", Name: "show"}); got != StrategyDirectAddress {
		t.Fatalf("member fallback = %v, want DirectAddress", got)
	}
	if got := c.Classify(&parser.MethodDescriptor{Name: "qrand", Free: true}); got != StrategyFreeFunctionAddress {
		t.Fatalf("free fallback = %v, want FreeFunctionAddress", got)
	}
}

func TestStubStrategy_Predicates(t *testing.T) {
	if !StrategyVirtualOverloadCast.ResolvesVirtual() || !StrategyVirtualOverloadCast.NeedsCast() {
		t.Fatal("combined strategy must resolve virtual and cast")
	}
	if StrategyDirectAddress.ResolvesVirtual() || StrategyDirectAddress.NeedsCast() {
		t.Fatal("direct address neither resolves nor casts")
	}
	if StrategyOverloadCast.ResolvesVirtual() || !StrategyOverloadCast.NeedsCast() {
		t.Fatal("overload cast casts without virtual resolution")
	}
	if StubStrategy(42).String() != "StubStrategy(unknown)" {
		t.Fatalf("unexpected name for unknown strategy: %s", StubStrategy(42))
	}
}

func drawMember(rt *rapid.T, virtual bool, overloaded bool) *parser.MethodDescriptor {
	owner := rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,12}`).Draw(rt, "owner")
	name := rapid.StringMatching(`[a-z][A-Za-z0-9_]{0,12}`).Draw(rt, "name")
	d := &parser.MethodDescriptor{
		Owner:   owner,
		Name:    name,
		Virtual: virtual,
		Const:   rapid.Bool().Draw(rt, "const"),
	}
	if overloaded {
		n := rapid.IntRange(1, 4).Draw(rt, "siblings")
		for i := 0; i < n; i++ {
			d.Siblings = append(d.Siblings, sibling(owner, name))
		}
	}
	return d
}

func TestClassify_FreeFunctionsAlwaysFreeAddress_Property(t *testing.T) {
	c := New(DefaultRules()...)
	rapid.Check(t, func(rt *rapid.T) {
		d := &parser.MethodDescriptor{
			Name:      rapid.StringMatching(`[a-z][A-Za-z0-9_]{0,12}`).Draw(rt, "name"),
			Namespace: rapid.StringMatching(`([a-z]{1,6}(::[a-z]{1,6})?)?`).Draw(rt, "namespace"),
			Free:      true,
			// Malformed combinations are rejected at construction; the
			// classifier still answers by the first row.
			Virtual: rapid.Bool().Draw(rt, "virtual"),
		}
		if got := c.Classify(d); got != StrategyFreeFunctionAddress {
			rt.Fatalf("Classify(%s) = %v", d.QualifiedName(), got)
		}
	})
}

func TestClassify_PlainMembersDirect_Property(t *testing.T) {
	c := New(DefaultRules()...)
	rapid.Check(t, func(rt *rapid.T) {
		d := drawMember(rt, false, false)
		if got := c.Classify(d); got != StrategyDirectAddress {
			rt.Fatalf("Classify(%s) = %v", d.QualifiedName(), got)
		}
	})
}

func TestClassify_VirtualMembersResolve_Property(t *testing.T) {
	c := New(DefaultRules()...)
	rapid.Check(t, func(rt *rapid.T) {
		d := drawMember(rt, true, false)
		if got := c.Classify(d); got != StrategyVirtualAddressResolution {
			rt.Fatalf("Classify(%s) = %v", d.QualifiedName(), got)
		}
	})
}

func TestClassify_OverloadsCast_Property(t *testing.T) {
	c := New(DefaultRules()...)
	rapid.Check(t, func(rt *rapid.T) {
		virtual := rapid.Bool().Draw(rt, "virtual")
		d := drawMember(rt, virtual, true)
		got := c.Classify(d)
		if !got.NeedsCast() {
			rt.Fatalf("Classify(%s) = %v, overloaded descriptors need a cast", d.QualifiedName(), got)
		}
		if got.ResolvesVirtual() != virtual {
			rt.Fatalf("Classify(%s) = %v, virtual resolution must follow Virtual=%v", d.QualifiedName(), got, virtual)
		}
	})
}
