package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// Parser loads generator input: manifests, test archives and C++ headers.
type Parser interface {
	ParseManifest(path string) (*Manifest, error)
	ParseHeader(path string, className string) (*ClassInfo, error)
}

type parserImpl struct{}

// New returns default parser.
func New() Parser {
	return &parserImpl{}
}

func (p *parserImpl) ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	m, err := DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Fixtures {
		f := &m.Fixtures[i]
		if f.Reflect != "" && !filepath.IsAbs(f.Reflect) {
			f.Reflect = filepath.Join(dir, f.Reflect)
		}
		if f.TestArchive == "" {
			continue
		}
		archive := f.TestArchive
		if !filepath.IsAbs(archive) {
			archive = filepath.Join(dir, archive)
		}
		tests, err := LoadTestArchive(archive)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", f.Class, err)
		}
		f.Tests = append(f.Tests, tests...)
	}
	return m, nil
}

func (p *parserImpl) ParseHeader(path string, className string) (*ClassInfo, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read header %q: %w", path, err)
	}
	info, err := ParseHeaderSource(src, className)
	if err != nil {
		return nil, fmt.Errorf("header %q: %w", path, err)
	}
	return info, nil
}

// DecodeManifest decodes a YAML manifest, rejecting unknown keys.
func DecodeManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, err
	}
	return m, nil
}

// LoadTestArchive reads a txtar archive in which every file is one test case
// named after the file.
func LoadTestArchive(path string) ([]TestCase, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test archive %q: %w", path, err)
	}
	return TestsFromArchive(ar), nil
}

// TestsFromArchive converts archive files into test cases in archive order.
func TestsFromArchive(ar *txtar.Archive) []TestCase {
	tests := make([]TestCase, 0, len(ar.Files))
	for _, f := range ar.Files {
		name := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
		tests = append(tests, TestCase{
			Name: name,
			Body: string(f.Data),
		})
	}
	return tests
}
