package resolver

import "github.com/seitarof/qt-stubgen/internal/parser"

// Classifier selects the interception strategy for method descriptors.
type Classifier interface {
	Classify(d *parser.MethodDescriptor) StubStrategy
	ClassifyAll(descs []*parser.MethodDescriptor) []StubClassification
}

// Rule tries to classify one descriptor.
type Rule interface {
	Name() string
	Try(d *parser.MethodDescriptor) (StubStrategy, bool)
}

type classifierImpl struct {
	rules []Rule
}

// New builds classifier with rule chain.
func New(rules ...Rule) Classifier {
	return &classifierImpl{rules: rules}
}

func (c *classifierImpl) Classify(d *parser.MethodDescriptor) StubStrategy {
	s, _ := c.classifyOne(d)
	return s
}

func (c *classifierImpl) ClassifyAll(descs []*parser.MethodDescriptor) []StubClassification {
	out := make([]StubClassification, 0, len(descs))
	for _, d := range descs {
		s, rule := c.classifyOne(d)
		out = append(out, StubClassification{Method: d, Strategy: s, Rule: rule})
	}
	return out
}

func (c *classifierImpl) classifyOne(d *parser.MethodDescriptor) (StubStrategy, string) {
	for _, rule := range c.rules {
		if s, ok := rule.Try(d); ok {
			return s, rule.Name()
		}
	}
	// Classification is total; a chain without a catch-all falls back to
	// the last row of the table.
	if d.Free {
		return StrategyFreeFunctionAddress, "fallback"
	}
	return StrategyDirectAddress, "fallback"
}
