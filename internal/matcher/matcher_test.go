package matcher

import (
	"errors"
	"testing"

	"github.com/seitarof/qt-stubgen/internal/parser"
)

func calcOverloads() []*parser.MethodDescriptor {
	return []*parser.MethodDescriptor{
		{Owner: "Calc", Name: "add", Params: []parser.TypeDescriptor{{Name: "int"}, {Name: "int"}}, Return: parser.TypeDescriptor{Name: "int"}},
		{Owner: "Calc", Name: "add", Params: []parser.TypeDescriptor{{Name: "double"}, {Name: "double"}}, Return: parser.TypeDescriptor{Name: "double"}},
		{Owner: "Calc", Name: "reset", Return: parser.Void},
		{Name: "qPrintable", Free: true, Params: []parser.TypeDescriptor{parser.MustParseType("const QString &")}},
	}
}

func TestOverloadGrouper_Group_LinksSiblings(t *testing.T) {
	descs := NewOverloadGrouper().Group(calcOverloads())
	if len(descs) != 4 {
		t.Fatalf("expected 4 descriptors, got %d", len(descs))
	}
	if len(descs[0].Siblings) != 1 || descs[0].Siblings[0] != descs[1] {
		t.Fatalf("add(int, int) should have add(double, double) as only sibling: %#v", descs[0].Siblings)
	}
	if len(descs[1].Siblings) != 1 || descs[1].Siblings[0] != descs[0] {
		t.Fatalf("add(double, double) should have add(int, int) as only sibling: %#v", descs[1].Siblings)
	}
	if len(descs[2].Siblings) != 0 || len(descs[3].Siblings) != 0 {
		t.Fatal("unique names must not get siblings")
	}
}

func TestOverloadGrouper_Group_DropsDuplicatesAndIsRepeatable(t *testing.T) {
	input := append(calcOverloads(), &parser.MethodDescriptor{
		Owner:  "Calc",
		Name:   "add",
		Params: []parser.TypeDescriptor{{Name: "int"}, {Name: "int"}},
	})

	g := NewOverloadGrouper()
	descs := g.Group(input)
	descs = g.Group(descs)
	if len(descs) != 4 {
		t.Fatalf("duplicate signature should be dropped, got %d descriptors", len(descs))
	}
	if len(descs[0].Siblings) != 1 {
		t.Fatalf("regrouping must not accumulate siblings, got %d", len(descs[0].Siblings))
	}
}

func TestOverloadGrouper_Group_ConstOverloadsAreSiblings(t *testing.T) {
	descs := NewOverloadGrouper().Group([]*parser.MethodDescriptor{
		{Owner: "QList", Name: "first"},
		{Owner: "QList", Name: "first", Const: true},
	})
	if len(descs) != 2 || len(descs[0].Siblings) != 1 {
		t.Fatalf("const and non-const overloads should both survive as siblings: %#v", descs)
	}
}

func TestTargetMatcher_Match_UniqueName(t *testing.T) {
	descs := NewOverloadGrouper().Group(calcOverloads())

	got, err := NewTargetMatcher().Match(descs, parser.StubRequest{Target: "Calc::reset"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got != descs[2] {
		t.Fatalf("unexpected descriptor %#v", got)
	}
}

func TestTargetMatcher_Match_SelectsOverloadByParams(t *testing.T) {
	descs := NewOverloadGrouper().Group(calcOverloads())

	got, err := NewTargetMatcher().Match(descs, parser.StubRequest{
		Target: "&Calc::add",
		Params: []parser.TypeDescriptor{{Name: "double"}, {Name: "double"}},
	})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got != descs[1] {
		t.Fatalf("expected add(double, double), got %s", got.ParamList())
	}
}

func TestTargetMatcher_Match_UndeclaredParamsFallsBackToFirst(t *testing.T) {
	descs := NewOverloadGrouper().Group(calcOverloads())

	got, err := NewTargetMatcher().Match(descs, parser.StubRequest{Target: "Calc::add"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got != descs[0] {
		t.Fatalf("expected first overload, got %s", got.ParamList())
	}
}

func TestTargetMatcher_Match_FreeFunction(t *testing.T) {
	descs := NewOverloadGrouper().Group(calcOverloads())

	got, err := NewTargetMatcher().Match(descs, parser.StubRequest{Target: "qPrintable"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !got.Free {
		t.Fatalf("expected free function, got %#v", got)
	}
}

func TestTargetMatcher_Match_Unknown(t *testing.T) {
	_, err := NewTargetMatcher().Match(calcOverloads(), parser.StubRequest{Target: "Calc::missing"})

	var unknown *UnknownTargetError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTargetError, got %v", err)
	}
	if unknown.Target != "Calc::missing" {
		t.Fatalf("unexpected target %q", unknown.Target)
	}
}
