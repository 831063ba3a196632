package generator

import (
	"fmt"
	"strings"
)

// ResolutionError reports a behavior whose declared signature disagrees
// with the method it stubs.
type ResolutionError struct {
	Method string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve stub for %s: %s", e.Method, e.Reason)
}

// AmbiguousOverloadError reports an overload cast that does not single out
// exactly one overload.
type AmbiguousOverloadError struct {
	Method     string
	Candidates []string
	Matches    int
}

func (e *AmbiguousOverloadError) Error() string {
	return fmt.Sprintf(
		"ambiguous overload %s: behavior matches %d of [%s]; declare params to select one",
		e.Method, e.Matches, strings.Join(e.Candidates, ", "),
	)
}

// FixtureError is a structural problem that prevents a whole fixture from
// being rendered.
type FixtureError struct {
	Class  string
	Reason string
}

func (e *FixtureError) Error() string {
	if e.Class == "" {
		return "fixture: " + e.Reason
	}
	return fmt.Sprintf("fixture %s: %s", e.Class, e.Reason)
}

// StubError records one stub that could not be emitted. TestCase is empty
// for setup stubs; otherwise the named test case was excluded.
type StubError struct {
	Class    string
	TestCase string
	Target   string
	Err      error
}

func (e *StubError) Error() string {
	where := "setup"
	if e.TestCase != "" {
		where = "test " + e.TestCase
	}
	return fmt.Sprintf("%s (%s) stub %s: %v", e.Class, where, e.Target, e.Err)
}

func (e *StubError) Unwrap() error {
	return e.Err
}

// StaleError is returned in check mode when generated output differs from
// the files on disk.
type StaleError struct {
	Files []string
	Diff  string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%d generated file(s) out of date: %s", len(e.Files), strings.Join(e.Files, ", "))
}
