package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seitarof/qt-stubgen/internal/generator"
	"github.com/seitarof/qt-stubgen/internal/matcher"
	"github.com/seitarof/qt-stubgen/internal/parser"
	"github.com/seitarof/qt-stubgen/internal/resolver"
)

// Runner orchestrates parser/matcher/resolver/generator layers.
type Runner interface {
	Run(cfg *Config) error
}

type runnerImpl struct {
	parser     parser.Parser
	grouper    matcher.OverloadGrouper
	matcher    matcher.TargetMatcher
	classifier resolver.Classifier
	renderer   generator.Renderer
	generator  generator.Generator
	log        logrus.FieldLogger
}

// NewRunner creates a default runner implementation.
func NewRunner(
	p parser.Parser,
	og matcher.OverloadGrouper,
	tm matcher.TargetMatcher,
	c resolver.Classifier,
	rd generator.Renderer,
	g generator.Generator,
	log logrus.FieldLogger,
) Runner {
	return &runnerImpl{
		parser:     p,
		grouper:    og,
		matcher:    tm,
		classifier: c,
		renderer:   rd,
		generator:  g,
		log:        log,
	}
}

// Run renders every fixture of the manifest and writes (or checks) the ones
// that rendered. Failures of one fixture or stub never stop the others; they
// are collected into the returned error.
func (r *runnerImpl) Run(cfg *Config) error {
	m, err := r.parser.ParseManifest(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Fixtures) == 0 {
		return fmt.Errorf("manifest %q declares no fixtures", cfg.Manifest)
	}

	license := licenseLines(cfg, m)
	var errs []error
	units := make([]generator.SourceUnit, 0, len(m.Fixtures))
	for _, f := range m.Fixtures {
		log := r.log.WithField("class", f.Class)

		spec, err := r.plan(f, license)
		if err != nil {
			log.WithError(err).Error("fixture skipped")
			errs = append(errs, fmt.Errorf("fixture %q: %w", f.Class, err))
			continue
		}

		unit, stubErrs, err := r.renderer.Render(spec)
		for _, se := range stubErrs {
			log.WithFields(logrus.Fields{
				"target": se.Target,
				"test":   se.TestCase,
			}).Warn(se.Err)
			if cfg.Strict {
				errs = append(errs, se)
			}
		}
		if err != nil {
			log.WithError(err).Error("fixture skipped")
			errs = append(errs, fmt.Errorf("fixture %q: %w", f.Class, err))
			continue
		}

		log.WithFields(logrus.Fields{
			"file":   unit.Filename,
			"stubs":  len(spec.Stubs),
			"tests":  len(spec.TestCases),
			"failed": len(stubErrs),
		}).Debug("fixture rendered")
		units = append(units, unit)
	}

	if len(units) > 0 {
		if err := r.generator.Generate(cfg, units); err != nil {
			errs = append(errs, err)
		} else {
			msg := "fixtures written"
			if cfg.CheckOnly() {
				msg = "fixtures up to date"
			}
			r.log.WithFields(logrus.Fields{
				"dir":      cfg.OutputDir(),
				"fixtures": len(units),
			}).Info(msg)
		}
	}
	return errors.Join(errs...)
}

// plan binds every stub request of f to a classified method descriptor.
func (r *runnerImpl) plan(f parser.FixtureManifest, license []string) (generator.FixtureSpec, error) {
	if strings.TrimSpace(f.Class) == "" {
		return generator.FixtureSpec{}, &generator.FixtureError{Reason: "class name is required"}
	}

	descs, namespace, err := r.descriptors(f)
	if err != nil {
		return generator.FixtureSpec{}, err
	}
	descs = r.grouper.Group(descs)
	// grouping can make a descriptor malformed, e.g. overloaded free functions
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return generator.FixtureSpec{}, err
		}
	}
	for _, c := range r.classifier.ClassifyAll(descs) {
		r.log.WithFields(logrus.Fields{
			"class":    f.Class,
			"method":   c.Method.QualifiedName() + c.Method.Signature(),
			"strategy": c.Strategy,
			"rule":     c.Rule,
		}).Debug("classified")
	}

	header := f.Header
	if header == "" && f.Reflect != "" {
		header = filepath.Base(f.Reflect)
	}

	spec := generator.FixtureSpec{
		ClassName: f.Class,
		Namespace: namespace,
		Header:    header,
		CtorArgs:  f.CtorArgs,
		License:   license,
		Stubs:     r.bind(descs, f.Stubs),
	}
	for _, tc := range f.Tests {
		spec.TestCases = append(spec.TestCases, generator.TestCaseSpec{
			Name:  tc.Name,
			Body:  tc.Body,
			Stubs: r.bind(descs, tc.Stubs),
		})
	}
	return spec, nil
}

// descriptors collects the reflected header surface, the class's own
// declared methods and the declared foreign targets.
func (r *runnerImpl) descriptors(f parser.FixtureManifest) ([]*parser.MethodDescriptor, string, error) {
	var descs []*parser.MethodDescriptor
	namespace := f.Namespace

	if f.Reflect != "" {
		info, err := r.parser.ParseHeader(f.Reflect, f.Class)
		if err != nil {
			return nil, "", fmt.Errorf("reflect: %w", err)
		}
		descs = append(descs, info.Methods...)
		descs = append(descs, r.addressableFunctions(f.Class, info.Functions)...)
		if namespace == "" {
			namespace = info.Namespace
		}
	}

	for _, s := range f.Methods {
		if s.Owner == "" && !s.Free {
			s.Owner = f.Class
		}
		d, err := s.Descriptor()
		if err != nil {
			return nil, "", err
		}
		descs = append(descs, d)
	}
	for _, s := range f.Targets {
		d, err := s.Descriptor()
		if err != nil {
			return nil, "", err
		}
		descs = append(descs, d)
	}
	return descs, namespace, nil
}

// addressableFunctions drops reflected free functions that are overloaded:
// no stub can name one of them, and they must not fail the whole class.
func (r *runnerImpl) addressableFunctions(class string, fns []*parser.MethodDescriptor) []*parser.MethodDescriptor {
	var out []*parser.MethodDescriptor
	for _, fn := range r.grouper.Group(fns) {
		if len(fn.Siblings) > 0 {
			r.log.WithFields(logrus.Fields{
				"class":    class,
				"function": fn.QualifiedName() + fn.Signature(),
			}).Warn("overloaded free function skipped")
			continue
		}
		out = append(out, fn)
	}
	return out
}

func (r *runnerImpl) bind(descs []*parser.MethodDescriptor, reqs []parser.StubRequest) []generator.StubPlan {
	plans := make([]generator.StubPlan, 0, len(reqs))
	for _, req := range reqs {
		p := generator.StubPlan{Target: req.Target, Behavior: req.Behavior()}
		d, err := r.matcher.Match(descs, req)
		if err != nil {
			p.Err = err
		} else {
			p.Method = d
			p.Strategy = r.classifier.Classify(d)
		}
		plans = append(plans, p)
	}
	return plans
}

func licenseLines(cfg *Config, m *parser.Manifest) []string {
	if len(cfg.License) > 0 {
		return cfg.License
	}
	if strings.TrimSpace(m.License) != "" {
		var out []string
		for _, line := range strings.Split(strings.TrimSpace(m.License), "\n") {
			out = append(out, strings.TrimSpace(line))
		}
		return out
	}
	return DefaultLicense
}
