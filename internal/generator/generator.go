package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akedrou/textdiff"
)

// Generator writes rendered fixtures, or compares them with the files on
// disk in check mode.
type Generator interface {
	Generate(cfg Config, units []SourceUnit) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputDir() string
	CheckOnly() bool
}

// Formatter normalizes generated C++ source.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter reads and writes generated files.
type FileWriter interface {
	Read(filename string) ([]byte, error)
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
}

type whitespaceFormatter struct{}

type fileWriter struct{}

// New creates a fixture generator.
func New(f Formatter, w FileWriter) Generator {
	return &generatorImpl{formatter: f, writer: w}
}

// NewWhitespaceFormatter creates a formatter that drops blank lines before
// the first line and ends the file with exactly one newline.
func NewWhitespaceFormatter() Formatter {
	return &whitespaceFormatter{}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) Generate(cfg Config, units []SourceUnit) error {
	if len(units) == 0 {
		return fmt.Errorf("no fixtures to generate")
	}

	var stale []string
	var diffs strings.Builder
	for _, u := range units {
		filename := filepath.Join(cfg.OutputDir(), u.Filename)
		formatted, err := g.formatter.Format(filename, u.Content)
		if err != nil {
			return fmt.Errorf("format %s: %w", u.Filename, err)
		}

		if !cfg.CheckOnly() {
			if err := g.writer.Write(filename, formatted); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			continue
		}

		current, err := g.writer.Read(filename)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read: %w", err)
		}
		if bytes.Equal(current, formatted) {
			continue
		}
		stale = append(stale, filename)
		diffs.WriteString(textdiff.Unified(filename, filename, string(current), string(formatted)))
	}

	if len(stale) > 0 {
		return &StaleError{Files: stale, Diff: diffs.String()}
	}
	return nil
}

func (f *whitespaceFormatter) Format(filename string, src []byte) ([]byte, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, fmt.Errorf("%s: empty source", filename)
	}

	// only the ends of the file are normalized; test bodies inside it are
	// written exactly as rendered
	out := bytes.TrimLeft(src, "\r\n")
	out = bytes.TrimRight(out, " \t\r\n")
	return append(append([]byte(nil), out...), '\n'), nil
}

func (w *fileWriter) Read(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
