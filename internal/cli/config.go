package cli

// DefaultLicense is written at the top of generated units when neither the
// command line nor the manifest names one.
var DefaultLicense = []string{"SPDX-License-Identifier: GPL-3.0-or-later"}

// Config stores CLI options for a single generation run.
type Config struct {
	Manifest     string
	OutDir       string
	Check        bool
	Strict       bool
	StubVar      string
	InvokeMarker string
	License      []string
	Verbose      bool
	ShowVersion  bool
}

// OutputDir returns the directory generated fixtures are written to.
func (c *Config) OutputDir() string {
	return c.OutDir
}

// CheckOnly reports whether generated output is compared instead of written.
func (c *Config) CheckOnly() bool {
	return c.Check
}
