package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/protect"
)

// Line ending normalization
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Pass is one named rewriting step. Apply must be pure.
type Pass struct {
	Name  string
	Apply func(string) string
}

// Citer replaces citation markers of a document with citation commands.
type Citer interface {
	Substitute(document, text string) string
}

// Tagger annotates known entities.
type Tagger interface {
	Tag(text string) string
}

// Rewriter turns one Markdown document into a LaTeX fragment.
type Rewriter struct {
	logger     *zap.Logger
	citer      Citer
	tagger     Tagger
	markers    []string
	languages  map[string]string
	lexerNames bool
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rewriter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCiter sets the citation substitution step.
func WithCiter(c Citer) Option {
	return func(r *Rewriter) {
		r.citer = c
	}
}

// WithTagger sets the entity annotation step.
func WithTagger(t Tagger) Option {
	return func(r *Rewriter) {
		r.tagger = t
	}
}

// WithTranscriptionMarkers sets the words flagging transcription notes.
func WithTranscriptionMarkers(markers ...string) Option {
	return func(r *Rewriter) {
		r.markers = markers
	}
}

// WithLanguages adds listing language mappings, overriding the built-in table.
func WithLanguages(m map[string]string) Option {
	return func(r *Rewriter) {
		r.languages = m
	}
}

// WithLexerNames resolves unmapped code block languages to lexer names.
func WithLexerNames(enabled bool) Option {
	return func(r *Rewriter) {
		r.lexerNames = enabled
	}
}

// NewRewriter returns a Rewriter. Without a Citer or Tagger the matching
// passes leave the text unchanged.
func NewRewriter(opts ...Option) *Rewriter {
	r := &Rewriter{
		logger:  zap.NewNop(),
		markers: []string{"trascrizione", "transcription"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Passes returns the ordered passes applied to document.
func (r *Rewriter) Passes(document string) []Pass {
	code := protect.Code
	listing := []protect.Rule{protect.Listing}
	languages := r.languageFunc()

	return []Pass{
		{"transcriptions", guarded(func(s string) string { return stripTranscriptions(s, r.markers) }, code...)},
		{"bold", guarded(convertBold, code...)},
		{"italics", guarded(convertItalics, code...)},
		{"tilde", guarded(convertTilde, code...)},
		{"percent", guarded(escapePercent, code...)},
		{"ellipsis", guarded(convertEllipsis, protect.CodeFence, protect.InlineCode, protect.Command)},
		{"math", guarded(convertMath, protect.CodeFence, protect.InlineCode, protect.Math, protect.Command)},
		{"codeblocks", func(s string) string { return convertCodeBlocks(s, languages) }},
		{"inlinecode", guarded(convertInlineCode, listing...)},
		{"headings", guarded(convertHeadings, listing...)},
		{"lists", guarded(convertLists, listing...)},
		{"entities", guarded(r.tag, protect.Listing, protect.Texttt, protect.Math, protect.NoteDefinition)},
		{"citations", guarded(func(s string) string { return r.cite(document, s) }, protect.Listing, protect.Texttt)},
		{"definitions", guarded(stripDefinitions, listing...)},
		{"paragraphs", guarded(collapseBlankLines, listing...)},
	}
}

// guarded runs fn with the spans matched by rules protected.
func guarded(fn func(string) string, rules ...protect.Rule) func(string) string {
	return func(s string) string {
		return protect.Apply(s, fn, rules...)
	}
}

func (r *Rewriter) tag(s string) string {
	if r.tagger == nil {
		return s
	}
	return r.tagger.Tag(s)
}

func (r *Rewriter) cite(document, s string) string {
	if r.citer == nil {
		return s
	}
	return r.citer.Substitute(document, s)
}

// Rewrite applies every pass to content in order.
func (r *Rewriter) Rewrite(ctx context.Context, document, content string) (string, error) {
	content = normalizeLineEndings(content)
	for _, p := range r.Passes(document) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("rewriting %s: %w", document, err)
		}
		out := p.Apply(content)
		if out != content {
			r.logger.Debug("pass applied", zap.String("document", document), zap.String("pass", p.Name))
		}
		content = out
	}
	return content, nil
}

// Provenance returns the comment heading a generated section.
func Provenance(document string, section int) string {
	return fmt.Sprintf("%% --- Auto-generated from %s (section %d) ---\n\n", document, section)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
