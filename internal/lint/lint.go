package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/pipeline"
)

// ErrParse indicates a document could not be parsed.
var ErrParse = errors.New("markdown parsing failed")

// Kind classifies a finding.
type Kind string

// Finding kinds.
const (
	KindHeading       Kind = "heading"
	KindEmphasis      Kind = "emphasis"
	KindLink          Kind = "link"
	KindImage         Kind = "image"
	KindTable         Kind = "table"
	KindStrikethrough Kind = "strikethrough"
	KindLanguage      Kind = "language"
	KindUnusedNote    Kind = "unused-note"
	KindUndefinedNote Kind = "undefined-note"
	KindDuplicateNote Kind = "duplicate-note"
)

// Deepest heading level the rewriter converts.
const maxConvertedHeading = 3

// Finding is one construct the conversion will not handle.
type Finding struct {
	Document string
	Line     int // 1-based, 0 when unknown
	Kind     Kind
	Message  string
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", f.Document, f.Line, f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Document, f.Kind, f.Message)
}

// Note grammar shared with the rewriter.
var (
	noteDefinition = regexp.MustCompile(`(?m)^[ \t]*\[\^([\p{L}\p{N}_]+)\]:`)
	noteReference  = regexp.MustCompile(`\[\^([\p{L}\p{N}_]+)(?:,[^\]\n]*)?\]`)
)

// Linter checks Markdown documents.
type Linter struct {
	md        goldmark.Markdown
	logger    *zap.Logger
	languages map[string]string
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(li *Linter) {
		if l != nil {
			li.logger = l
		}
	}
}

// WithLanguages declares configured listing languages as known.
func WithLanguages(m map[string]string) Option {
	return func(li *Linter) {
		li.languages = m
	}
}

// New creates a Linter parsing GFM with footnotes.
func New(opts ...Option) *Linter {
	l := &Linter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,      // Tables, strikethrough, autolinks, task lists
				extension.Footnote, // [^1] footnotes
			),
		),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lint returns the findings for one document, ordered by line.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (l *Linter) Lint(ctx context.Context, document, content string) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		findings []Finding
		err      error
	}
	done := make(chan result, 1)

	go func() {
		findings, err := l.lint(document, []byte(content))
		done <- result{findings: findings, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err == nil {
			l.logger.Debug("document checked", zap.String("document", document), zap.Int("findings", len(r.findings)))
		}
		return r.findings, r.err
	}
}

func (l *Linter) lint(document string, source []byte) (findings []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrParse, document, r)
		}
	}()

	lines := newLineIndex(source)
	addAt := func(offset int, kind Kind, msg string) {
		findings = append(findings, Finding{
			Document: document,
			Line:     lines.line(offset),
			Kind:     kind,
			Message:  msg,
		})
	}
	add := func(n ast.Node, kind Kind, msg string) {
		addAt(nodeOffset(n), kind, msg)
	}

	doc := l.md.Parser().Parse(text.NewReader(source))
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level > maxConvertedHeading {
				add(n, KindHeading, fmt.Sprintf("level %d heading is not converted", node.Level))
			}
		case *ast.Emphasis:
			if node.Level == 1 {
				add(n, KindEmphasis, "single emphasis is not converted, use quotes for italics")
			}
		case *ast.Link:
			add(n, KindLink, fmt.Sprintf("link to %s is not converted", node.Destination))
		case *ast.AutoLink:
			add(n, KindLink, fmt.Sprintf("autolink %s is not converted", node.URL(source)))
		case *ast.Image:
			add(n, KindImage, fmt.Sprintf("image %s is not converted", node.Destination))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			add(n, KindTable, "table is not converted")
			return ast.WalkSkipChildren, nil
		case *east.Strikethrough:
			add(n, KindStrikethrough, "strikethrough is not converted")
		case *ast.FencedCodeBlock:
			if lang := string(node.Language(source)); lang != "" && !pipeline.IsKnownLanguage(lang, l.languages) {
				addAt(node.Info.Segment.Start, KindLanguage, fmt.Sprintf("code language %q has no listings mapping", lang))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, document, err)
	}

	findings = append(findings, checkNotes(document, source, lines)...)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Line < findings[j].Line
	})
	return findings, nil
}

// checkNotes reconciles note markers with their definitions.
func checkNotes(document string, source []byte, lines lineIndex) []Finding {
	var findings []Finding

	defined := make(map[string]int)
	for _, m := range noteDefinition.FindAllSubmatchIndex(source, -1) {
		key := string(source[m[2]:m[3]])
		if _, dup := defined[key]; dup {
			findings = append(findings, Finding{
				Document: document,
				Line:     lines.line(m[0]),
				Kind:     KindDuplicateNote,
				Message:  fmt.Sprintf("note [^%s] is defined again, the last definition wins", key),
			})
		}
		defined[key] = m[0]
	}

	// Blank out definition labels so only markers remain.
	masked := noteDefinition.ReplaceAllFunc(source, func(b []byte) []byte {
		return bytes.Repeat([]byte(" "), len(b))
	})

	referenced := make(map[string]bool)
	for _, m := range noteReference.FindAllSubmatchIndex(masked, -1) {
		key := string(masked[m[2]:m[3]])
		if _, ok := defined[key]; !ok && !referenced[key] {
			findings = append(findings, Finding{
				Document: document,
				Line:     lines.line(m[0]),
				Kind:     KindUndefinedNote,
				Message:  fmt.Sprintf("note [^%s] has no definition", key),
			})
		}
		referenced[key] = true
	}

	keys := make([]string, 0, len(defined))
	for key := range defined {
		if !referenced[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		findings = append(findings, Finding{
			Document: document,
			Line:     lines.line(defined[key]),
			Kind:     KindUnusedNote,
			Message:  fmt.Sprintf("note [^%s] is never referenced", key),
		})
	}
	return findings
}

// nodeOffset returns the source offset where n starts, or -1.
func nodeOffset(n ast.Node) int {
	for ; n != nil; n = n.Parent() {
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			return n.Lines().At(0).Start
		}
		if off := firstTextOffset(n); off >= 0 {
			return off
		}
	}
	return -1
}

func firstTextOffset(n ast.Node) int {
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off := firstTextOffset(c); off >= 0 {
			return off
		}
	}
	return -1
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	starts := lineIndex{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) line(offset int) int {
	if offset < 0 {
		return 0
	}
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}
