package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage indicates invalid command line arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	logFile string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	inputDir  string
	outputDir string
	bib       string
	index     string
	db        string
}

// checkFlags holds all flags for the check command.
type checkFlags struct {
	common   commonFlags
	inputDir string
}

// initFlags holds all flags for the init command.
type initFlags struct {
	force bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logFile, "log-file", "", "write a debug log to this file")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// newFlagSet creates a FlagSet reporting errors instead of exiting.
func newFlagSet(name string, usage func(io.Writer), w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newFlagSet("convert", printConvertUsage, w)

	fs.StringVarP(&f.inputDir, "input-dir", "i", "", "directory holding the Markdown documents")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "directory receiving the sections and the index")
	fs.StringVar(&f.bib, "bib", "", "BibTeX output file")
	fs.StringVar(&f.index, "index", "", "inclusion file name")
	fs.StringVar(&f.db, "db", "", "SQLite audit database")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	if err := validateCommon(f.common); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseCheckFlags parses check command flags and returns positional args.
func parseCheckFlags(args []string, w io.Writer) (*checkFlags, []string, error) {
	f := &checkFlags{}
	fs := newFlagSet("check", printCheckUsage, w)

	fs.StringVarP(&f.inputDir, "input-dir", "i", "", "directory holding the Markdown documents")
	addCommonFlags(fs, &f.common)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	if err := validateCommon(f.common); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string, w io.Writer) (*initFlags, []string, error) {
	f := &initFlags{}
	fs := newFlagSet("init", printInitUsage, w)

	fs.BoolVarP(&f.force, "force", "f", false, "overwrite existing files")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, w io.Writer) (*commonFlags, error) {
	f := &commonFlags{}
	fs := newFlagSet("config", printConfigUsage, w)
	addCommonFlags(fs, f)

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}
	return f, nil
}

// parse wraps flag errors so they map to the usage exit code.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func validateCommon(f commonFlags) error {
	if f.quiet && f.verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return nil
}
