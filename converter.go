package md2tex

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/bibliography"
	"github.com/alnah/go-md2tex/internal/entity"
	"github.com/alnah/go-md2tex/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Citer  = (*bibliography.Registry)(nil)
	_ pipeline.Tagger = (*entity.Tagger)(nil)
)

// Converter orchestrates a run: collection over every document, then the
// rewriting of each document in order.
type Converter struct {
	cfg      converterConfig
	logger   *zap.Logger
	registry *bibliography.Registry
	tags     *entity.Registry
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			entityCommand: entity.DefaultCommand,
			markers:       bibliography.DefaultTranscriptionMarkers,
			pageFromNote:  true,
			layout:        DefaultLayout(),
		},
		logger: zap.NewNop(),
		tags:   entity.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.registry = bibliography.NewRegistry(
		bibliography.WithLogger(c.logger),
		bibliography.WithTranscriptionMarkers(c.cfg.markers...),
		bibliography.WithPageFromNote(c.cfg.pageFromNote),
	)
	return c
}

// Layout returns the layout in effect.
func (c *Converter) Layout() Layout {
	return c.cfg.layout
}

// Convert runs collection and rewriting over input and returns the generated
// sections, bibliography and index. Documents missing from input.Documents
// or empty are skipped with a warning. Entity annotation state starts fresh
// on every call.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if len(input.Order) == 0 {
		return nil, ErrNoDocuments
	}
	if err := c.cfg.layout.Validate(); err != nil {
		return nil, err
	}

	c.tags.Reset()
	result = &Result{}

	docs, positions := c.load(input, result)
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: all %d documents missing or empty", ErrNoDocuments, len(input.Order))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Every note must be resolved before the first substitution.
	c.registry.Collect(docs)
	result.Entries = c.registry.Entries()
	result.Notes = c.registry.Resolutions()
	result.Stats = c.registry.Stats()
	result.Bibliography = bibliography.Render(result.Entries)

	rewriter := c.newRewriter()
	files := make([]string, 0, len(docs))
	for i, doc := range docs {
		pos := positions[i]
		body, err := rewriter.Rewrite(ctx, doc.Name, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRewrite, err)
		}

		name := c.cfg.layout.FileName(pos, input.Order)
		result.Sections = append(result.Sections, Section{
			Document: doc.Name,
			Position: pos,
			FileName: name,
			Content:  pipeline.Provenance(doc.Name, pos+1) + body,
		})
		files = append(files, name)
		c.logger.Info("document converted", zap.String("document", doc.Name), zap.String("output", name))
	}

	result.Index = c.cfg.layout.Index(files)
	result.Applied = c.tags.Applied()
	return result, nil
}

// load returns the usable documents of input in order with their positions,
// recording skipped names in result.
func (c *Converter) load(input Input, result *Result) ([]bibliography.Document, []int) {
	docs := make([]bibliography.Document, 0, len(input.Order))
	positions := make([]int, 0, len(input.Order))
	for pos, name := range input.Order {
		text, ok := input.Documents[name]
		switch {
		case !ok:
			c.logger.Warn("document not found, skipping", zap.String("document", name))
		case strings.TrimSpace(text) == "":
			c.logger.Warn("document is empty, skipping", zap.String("document", name))
		default:
			docs = append(docs, bibliography.Document{Name: name, Text: text})
			positions = append(positions, pos)
			continue
		}
		result.Skipped = append(result.Skipped, name)
	}
	return docs, positions
}

func (c *Converter) newRewriter() *pipeline.Rewriter {
	tagger := entity.NewTagger(c.tags, c.cfg.entities,
		entity.WithCommand(c.cfg.entityCommand),
		entity.WithLogger(c.logger),
	)
	return pipeline.NewRewriter(
		pipeline.WithLogger(c.logger),
		pipeline.WithCiter(c.registry),
		pipeline.WithTagger(tagger),
		pipeline.WithTranscriptionMarkers(c.cfg.markers...),
		pipeline.WithLanguages(c.cfg.languages),
		pipeline.WithLexerNames(c.cfg.lexerNames),
	)
}
