package generator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	dir   string
	check bool
}

func (c testConfig) OutputDir() string { return c.dir }

func (c testConfig) CheckOnly() bool { return c.check }

func calcUnit(t *testing.T) SourceUnit {
	t.Helper()
	unit, _, err := newTestRenderer().Render(calcFixture())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return unit
}

func TestGenerate_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated")
	g := New(NewWhitespaceFormatter(), NewFileWriter())

	if err := g.Generate(testConfig{dir: dir}, []SourceUnit{calcUnit(t)}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "test_calc.cpp"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got := string(b)
	if !strings.Contains(got, "class CalcTest : public ::testing::Test {") {
		t.Fatalf("fixture class not found: %s", got)
	}
	if !strings.HasSuffix(got, "}  // namespace demo\n") {
		t.Fatalf("file must end with the namespace close and one newline: %q", got[len(got)-40:])
	}
}

func TestGenerate_CheckMode(t *testing.T) {
	dir := t.TempDir()
	g := New(NewWhitespaceFormatter(), NewFileWriter())
	unit := calcUnit(t)

	err := g.Generate(testConfig{dir: dir, check: true}, []SourceUnit{unit})
	var stale *StaleError
	if !errors.As(err, &stale) {
		t.Fatalf("Generate() on missing file error = %v, want StaleError", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, unit.Filename)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("check mode must not write files, stat error = %v", statErr)
	}

	if err := g.Generate(testConfig{dir: dir}, []SourceUnit{unit}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if err := g.Generate(testConfig{dir: dir, check: true}, []SourceUnit{unit}); err != nil {
		t.Fatalf("Generate() on fresh output error = %v", err)
	}

	path := filepath.Join(dir, unit.Filename)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	edited := strings.Replace(string(b), "return a + b;", "return 0;", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err = g.Generate(testConfig{dir: dir, check: true}, []SourceUnit{unit})
	if !errors.As(err, &stale) {
		t.Fatalf("Generate() on edited file error = %v, want StaleError", err)
	}
	if len(stale.Files) != 1 || stale.Files[0] != path {
		t.Fatalf("stale files = %v", stale.Files)
	}
	if !strings.Contains(stale.Diff, "-        return 0;") || !strings.Contains(stale.Diff, "+        return a + b;") {
		t.Fatalf("diff does not show the change:\n%s", stale.Diff)
	}
}

func TestGenerate_NoUnits(t *testing.T) {
	g := New(NewWhitespaceFormatter(), NewFileWriter())
	if err := g.Generate(testConfig{dir: t.TempDir()}, nil); err == nil {
		t.Fatal("Generate() error = nil, want error")
	}
}

func TestWhitespaceFormatter(t *testing.T) {
	src := "\n\n#include <a.h>\n\nclass A {\n};\n\n\n"
	got, err := NewWhitespaceFormatter().Format("a.cpp", []byte(src))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "#include <a.h>\n\nclass A {\n};\n"
	if string(got) != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}

	if _, err := NewWhitespaceFormatter().Format("empty.cpp", []byte(" \n\t\n")); err == nil {
		t.Fatal("Format() on blank source error = nil")
	}
}

func TestWhitespaceFormatter_KeepsInteriorVerbatim(t *testing.T) {
	src := "TEST_F(A, Raw) {\n    auto s = R\"(x  \n\n\n  y)\";\n}\n"
	got, err := NewWhitespaceFormatter().Format("a.cpp", []byte(src))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(got) != src {
		t.Fatalf("Format() = %q, want %q", got, src)
	}
}
