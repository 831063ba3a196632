package matcher

import (
	"fmt"

	"github.com/seitarof/qt-stubgen/internal/parser"
)

// OverloadGrouper links descriptors that share owner and name as overload
// siblings.
type OverloadGrouper interface {
	Group(descs []*parser.MethodDescriptor) []*parser.MethodDescriptor
}

// TargetMatcher finds the descriptor a stub request refers to.
type TargetMatcher interface {
	Match(descs []*parser.MethodDescriptor, req parser.StubRequest) (*parser.MethodDescriptor, error)
}

// UnknownTargetError reports a stub request naming no known descriptor.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("no method descriptor for stub target %q", e.Target)
}

type overloadGrouperImpl struct{}

type targetMatcherImpl struct{}

// NewOverloadGrouper returns default overload grouper.
func NewOverloadGrouper() OverloadGrouper {
	return &overloadGrouperImpl{}
}

// NewTargetMatcher returns default target matcher.
func NewTargetMatcher() TargetMatcher {
	return &targetMatcherImpl{}
}

// Group drops exact duplicates (same name, owner and signature; first one
// wins) and sets Siblings on every remaining descriptor.
func (g *overloadGrouperImpl) Group(descs []*parser.MethodDescriptor) []*parser.MethodDescriptor {
	groups := map[string][]*parser.MethodDescriptor{}
	out := make([]*parser.MethodDescriptor, 0, len(descs))
	for _, d := range descs {
		key := d.QualifiedName()
		if containsSignature(groups[key], d) {
			continue
		}
		groups[key] = append(groups[key], d)
		out = append(out, d)
	}

	for _, d := range out {
		group := groups[d.QualifiedName()]
		d.Siblings = nil
		for _, other := range group {
			if other != d {
				d.Siblings = append(d.Siblings, other)
			}
		}
	}
	return out
}

func containsSignature(group []*parser.MethodDescriptor, d *parser.MethodDescriptor) bool {
	for _, other := range group {
		if other.Const == d.Const && parser.SameParams(other.Params, d.Params) {
			return true
		}
	}
	return false
}

// Match returns the only candidate named by req.Target, or the single
// overload whose signature equals the declared params. When the declared
// params do not single out one overload the first candidate is returned so
// the emitter can report the ambiguity against the whole sibling set.
func (m *targetMatcherImpl) Match(
	descs []*parser.MethodDescriptor,
	req parser.StubRequest,
) (*parser.MethodDescriptor, error) {
	candidates := candidatesFor(descs, req.Target)
	if len(candidates) == 0 {
		return nil, &UnknownTargetError{Target: req.Target}
	}
	if len(candidates) == 1 || req.Params == nil {
		return candidates[0], nil
	}

	var found []*parser.MethodDescriptor
	for _, c := range candidates {
		if !parser.SameParams(c.Params, req.Params) {
			continue
		}
		if req.Const != nil && *req.Const != c.Const {
			continue
		}
		found = append(found, c)
	}
	if len(found) == 1 {
		return found[0], nil
	}
	return candidates[0], nil
}

func candidatesFor(descs []*parser.MethodDescriptor, target string) []*parser.MethodDescriptor {
	scope, name := parser.SplitTarget(target)
	var out []*parser.MethodDescriptor
	for _, d := range descs {
		if d.Name != name {
			continue
		}
		if d.Free {
			if d.Namespace == scope {
				out = append(out, d)
			}
			continue
		}
		if d.Owner == scope {
			out = append(out, d)
		}
	}
	return out
}
