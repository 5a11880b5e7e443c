package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alnah/go-md2tex/internal/lint"
)

// runCheckCmd lints the documents a conversion would read and returns the
// number of findings.
func runCheckCmd(ctx context.Context, args []string, env *Environment) (int, error) {
	flags, positional, err := parseCheckFlags(args, env.Stderr)
	if err != nil {
		return 0, err
	}

	lc, err := loadConfig(flags.common, env)
	if err != nil {
		return 0, err
	}
	setIfNotEmpty(&lc.cfg.Input.Dir, flags.inputDir)
	if err := lc.validate(); err != nil {
		return 0, err
	}

	logger, closeLog, err := lc.logger(env)
	if err != nil {
		return 0, err
	}
	defer func() { _ = closeLog() }()

	inputDir := env.path(lc.cfg.Input.Dir)
	order, err := resolveOrder(positional, lc.cfg, inputDir)
	if err != nil {
		return 0, err
	}
	input := readDocuments(inputDir, order, logger)

	linter := lint.New(lint.WithLogger(logger), lint.WithLanguages(lc.cfg.Listings.Languages))
	total := 0
	for _, name := range order {
		content, ok := input.Documents[name]
		if !ok {
			fmt.Fprintf(env.Stderr, "%s: missing or unreadable\n", filepath.Join(inputDir, name))
			total++
			continue
		}
		findings, err := linter.Lint(ctx, name, content)
		if err != nil {
			return total, err
		}
		for _, f := range findings {
			fmt.Fprintln(env.Stdout, f)
		}
		total += len(findings)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Checked %d documents: %d findings\n", len(order), total)
	}
	return total, nil
}
