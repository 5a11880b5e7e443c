package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-md2tex/internal/assets"
	"github.com/alnah/go-md2tex/internal/hints"
)

// configSample is written as md2tex.yaml so the next run finds it.
const configSample = "config"

// runInitCmd writes the embedded samples into a directory (default: the
// working directory). Existing files are kept unless --force is given.
func runInitCmd(args []string, env *Environment) error {
	flags, positional, err := parseInitFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: init takes at most one directory", ErrUsage)
	}

	dir := env.path(".")
	if len(positional) == 1 {
		dir = env.path(positional[0])
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrCreateOutputDir, err, hints.ForOutputDirectory())
	}

	for _, name := range env.Samples.Samples() {
		sample, err := env.Samples.LoadSample(name)
		if err != nil {
			if errors.Is(err, assets.ErrSampleNotFound) {
				return fmt.Errorf("%w%s", err, hints.ForSampleNotFound(env.Samples.Samples()))
			}
			return err
		}

		fileName := sample.FileName
		if name == configSample {
			fileName = defaultConfigName + filepath.Ext(sample.FileName)
		}
		path := filepath.Join(dir, fileName)

		if !flags.force {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(env.Stderr, "skipped %s (exists, use --force to overwrite)\n", path)
				continue
			}
		}
		if err := os.WriteFile(path, []byte(sample.Content), filePermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		fmt.Fprintf(env.Stdout, "created %s\n", path)
	}
	return nil
}
