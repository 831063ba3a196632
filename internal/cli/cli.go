package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seitarof/qt-stubgen/internal/generator"
)

// ParseArgs parses command line arguments into Config.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	var licenses []string

	fs := pflag.NewFlagSet("qt-stubgen", pflag.ContinueOnError)
	fs.StringVarP(&cfg.Manifest, "manifest", "m", "", "fixture manifest (YAML)")
	fs.StringVarP(&cfg.OutDir, "out-dir", "o", ".", "directory generated fixtures are written to")
	fs.BoolVar(&cfg.Check, "check", false, "report fixtures that differ from disk instead of writing them")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail the run when any stub cannot be emitted")
	fs.StringVar(&cfg.StubVar, "stub-var", generator.DefaultStubVar, "name of the fixture's interception member")
	fs.StringVar(&cfg.InvokeMarker, "invoke-marker", generator.DefaultInvokeMarker, "first statement of every replacement body")
	fs.StringArrayVar(&licenses, "license", nil, "license header line, kept whole; repeat for several")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log per-fixture progress")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	if strings.TrimSpace(cfg.Manifest) == "" {
		return nil, fmt.Errorf("--manifest is required")
	}
	if strings.TrimSpace(cfg.OutDir) == "" {
		return nil, fmt.Errorf("--out-dir must not be empty")
	}
	if !isIdentifier(cfg.StubVar) {
		return nil, fmt.Errorf("--stub-var %q is not a C++ identifier", cfg.StubVar)
	}

	cfg.License = trimList(licenses)
	return cfg, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func trimList(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
