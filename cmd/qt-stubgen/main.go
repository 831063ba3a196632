package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/seitarof/qt-stubgen/internal/cli"
	"github.com/seitarof/qt-stubgen/internal/generator"
	"github.com/seitarof/qt-stubgen/internal/matcher"
	"github.com/seitarof/qt-stubgen/internal/parser"
	"github.com/seitarof/qt-stubgen/internal/resolver"
)

var version = "dev"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ic := generator.NewStubExt(cfg.StubVar, cfg.InvokeMarker)
	rd := generator.NewRenderer(ic, generator.NewEmitter(ic))
	g := generator.New(generator.NewWhitespaceFormatter(), generator.NewFileWriter())

	runner := cli.NewRunner(
		parser.New(),
		matcher.NewOverloadGrouper(),
		matcher.NewTargetMatcher(),
		resolver.New(resolver.DefaultRules()...),
		rd,
		g,
		log,
	)
	if err := runner.Run(cfg); err != nil {
		var stale *generator.StaleError
		if errors.As(err, &stale) {
			fmt.Print(stale.Diff)
		}
		log.Fatal(err)
	}
}
