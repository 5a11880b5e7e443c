package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	md2tex "github.com/alnah/go-md2tex"
	"github.com/alnah/go-md2tex/internal/auditdb"
	"github.com/alnah/go-md2tex/internal/config"
	"github.com/alnah/go-md2tex/internal/fileutil"
	"github.com/alnah/go-md2tex/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput         = errors.New("no input documents")
	ErrCreateOutputDir = errors.New("failed to create output directory")
	ErrWriteOutput     = errors.New("failed to write output")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// markdownExtensions are listed when no reading order is configured.
var markdownExtensions = []string{"md", "markdown"}

// Converter is the interface for the conversion service.
type Converter interface {
	Convert(ctx context.Context, input md2tex.Input) (*md2tex.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*md2tex.Converter)(nil)

// runConvertCmd parses flags and runs a conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	lc, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeFlags(flags, lc.cfg)
	if err := lc.validate(); err != nil {
		return err
	}
	cfg := lc.cfg

	logger, closeLog, err := lc.logger(env)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	defer func() { _ = logger.Sync() }()

	entities, err := cfg.AllEntities(lc.baseDir)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForEntitiesFile())
	}

	inputDir := env.path(cfg.Input.Dir)
	order, err := resolveOrder(positionalArgs, cfg, inputDir)
	if err != nil {
		return err
	}
	input := readDocuments(inputDir, order, logger)

	converter := md2tex.NewConverter(converterOptions(cfg, entities, logger)...)
	result, err := converter.Convert(ctx, input)
	if err != nil {
		if errors.Is(err, md2tex.ErrNoDocuments) {
			return fmt.Errorf("converting: %w%s", err, hints.ForInputDirectory(inputDir))
		}
		return fmt.Errorf("converting: %w", err)
	}

	outputDir := env.path(cfg.Output.Dir)
	if err := os.MkdirAll(outputDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrCreateOutputDir, err, hints.ForOutputDirectory())
	}
	if err := writeOutputs(result, outputDir, env.path(cfg.Output.Bibliography), cfg.Output.Index, logger); err != nil {
		return err
	}

	if cfg.Audit.Database != "" {
		if err := writeAudit(ctx, env.path(cfg.Audit.Database), result, env); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForAuditDatabase())
		}
		logger.Debug("audit database rebuilt", zap.String("path", cfg.Audit.Database))
	}

	if !flags.common.quiet {
		printSummary(env.Stdout, result, outputDir)
	}
	return nil
}

// mergeFlags applies CLI flags over the configuration (CLI wins).
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	setIfNotEmpty(&cfg.Input.Dir, flags.inputDir)
	setIfNotEmpty(&cfg.Output.Dir, flags.outputDir)
	setIfNotEmpty(&cfg.Output.Bibliography, flags.bib)
	setIfNotEmpty(&cfg.Output.Index, flags.index)
	setIfNotEmpty(&cfg.Audit.Database, flags.db)
}

// converterOptions maps the configuration onto converter options.
func converterOptions(cfg *config.Config, entities []md2tex.Entity, logger *zap.Logger) []md2tex.Option {
	includeDir := cfg.Sections.IncludeDir
	if includeDir == "" {
		includeDir = filepath.ToSlash(filepath.Clean(cfg.Output.Dir))
	}
	return []md2tex.Option{
		md2tex.WithLogger(logger),
		md2tex.WithEntities(entities),
		md2tex.WithEntityCommand(cfg.Entities.Command),
		md2tex.WithLanguages(cfg.Listings.Languages),
		md2tex.WithLexerNames(cfg.Listings.LexerNames),
		md2tex.WithTranscriptionMarkers(cfg.Citations.TranscriptionMarkers...),
		md2tex.WithPageFromNote(cfg.Citations.PageFromNote),
		md2tex.WithLayout(md2tex.Layout{
			IntroName:      cfg.Sections.IntroName,
			ConclusionName: cfg.Sections.ConclusionName,
			SectionPrefix:  cfg.Sections.Prefix,
			IncludeDir:     includeDir,
		}),
	}
}

// resolveOrder returns the document names to convert: positional arguments,
// then the configured order, then every Markdown file of inputDir.
func resolveOrder(args []string, cfg *config.Config, inputDir string) ([]string, error) {
	if !fileutil.DirExists(inputDir) {
		return nil, fmt.Errorf("%w: %s is not a directory%s", ErrNoInput, inputDir, hints.ForInputDirectory(inputDir))
	}
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Input.Order) > 0 {
		return cfg.Input.Order, nil
	}

	names, err := fileutil.ListFiles(inputDir, markdownExtensions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrNoInput, err, hints.ForInputDirectory(inputDir))
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .md files in %s%s", ErrNoInput, inputDir, hints.ForInputDirectory(inputDir))
	}
	return names, nil
}

// readDocuments reads every document of order from inputDir. Documents that
// cannot be read are left out so the converter skips them.
func readDocuments(inputDir string, order []string, logger *zap.Logger) md2tex.Input {
	input := md2tex.Input{Order: order, Documents: make(map[string]string, len(order))}
	for _, name := range order {
		data, err := os.ReadFile(filepath.Join(inputDir, name)) // #nosec G304 -- document names are user-provided
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("cannot read document", zap.String("document", name), zap.Error(err))
			}
			continue
		}
		input.Documents[name] = string(data)
	}
	return input
}

// writeOutputs writes every section, the bibliography and the index.
// A failed file does not stop the others; all failures are reported.
func writeOutputs(result *md2tex.Result, outputDir, bibPath, indexName string, logger *zap.Logger) error {
	var errs error
	write := func(path, content string) {
		if err := fileutil.WriteFileAtomic(path, []byte(content)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			return
		}
		logger.Debug("file written", zap.String("path", path))
	}

	for _, s := range result.Sections {
		write(filepath.Join(outputDir, s.FileName), s.Content)
	}
	if result.Bibliography != "" {
		write(bibPath, result.Bibliography)
	} else {
		logger.Warn("no bibliography entries, bibliography file not written", zap.String("path", bibPath))
	}
	write(filepath.Join(outputDir, indexName), result.Index)

	if errs != nil {
		return fmt.Errorf("%w: %w%s", ErrWriteOutput, errs, hints.ForOutputDirectory())
	}
	return nil
}

// writeAudit rebuilds the audit database from result.
func writeAudit(ctx context.Context, path string, result *md2tex.Result, env *Environment) (err error) {
	db, err := auditdb.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	return db.Rebuild(ctx, auditdb.Snapshot{
		Time:     env.Now(),
		Sections: len(result.Sections),
		Entries:  result.Entries,
		Notes:    result.Notes,
		Entities: result.Applied,
	})
}

// printSummary reports what a run produced.
func printSummary(w io.Writer, result *md2tex.Result, outputDir string) {
	s := result.Stats
	fmt.Fprintf(w, "Converted %d documents into %s", len(result.Sections), outputDir)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, " (%d skipped)", len(result.Skipped))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bibliography: %d entries from %d notes (%d transcriptions, %d back-references, %d unresolved)\n",
		s.Entries, s.Notes, s.Transcriptions, s.BackReferences, s.Unresolved)
	fmt.Fprintf(w, "Entities annotated: %d\n", len(result.Applied))
	if h := hints.ForUnresolvedCitations(s.Unresolved); h != "" {
		fmt.Fprintln(w, h[1:])
	}
}
