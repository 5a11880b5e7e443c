package md2tex

import (
	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/bibliography"
	"github.com/alnah/go-md2tex/internal/entity"
)

// Entity is a person annotated on first mention.
type Entity = entity.Entity

// Entry is a generated bibliography record.
type Entry = bibliography.Entry

// Resolution records what became of one citation note.
type Resolution = bibliography.Resolution

// Stats summarizes the collection pass of a run.
type Stats = bibliography.Stats

// Input contains the documents of one run.
type Input struct {
	Order     []string          // document names in reading order (required)
	Documents map[string]string // Markdown content by name; names absent here are skipped
}

// Section is one rewritten document.
type Section struct {
	Document string // source document name
	Position int    // zero-based position in Input.Order
	FileName string // output file name given by the Layout
	Content  string // LaTeX fragment, provenance comment included
}

// Result holds everything produced by a run.
type Result struct {
	Sections     []Section
	Bibliography string       // BibTeX content, empty when no entry was generated
	Index        string       // inclusion file listing Sections in order
	Entries      []Entry      // bibliography entries in generation order
	Notes        []Resolution // outcome of every collected note
	Stats        Stats        // collection summary
	Applied      []string     // entities annotated during the run, sorted
	Skipped      []string     // documents missing or empty
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	entities      []Entity
	entityCommand string
	languages     map[string]string
	lexerNames    bool
	markers       []string
	pageFromNote  bool
	layout        Layout
}

// WithLogger sets the logger shared by every stage. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEntities sets the people annotated on first mention, in priority order.
func WithEntities(entities []Entity) Option {
	return func(c *Converter) {
		c.cfg.entities = entities
	}
}

// WithEntityCommand sets the annotation command name, without backslash.
func WithEntityCommand(name string) Option {
	return func(c *Converter) {
		c.cfg.entityCommand = name
	}
}

// WithLanguages adds code block language mappings to the listings table.
func WithLanguages(m map[string]string) Option {
	return func(c *Converter) {
		c.cfg.languages = m
	}
}

// WithLexerNames names unmapped code block languages after their lexer.
func WithLexerNames(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.lexerNames = enabled
	}
}

// WithTranscriptionMarkers replaces the words flagging transcription notes.
// Matching is case-insensitive.
func WithTranscriptionMarkers(markers ...string) Option {
	return func(c *Converter) {
		if len(markers) > 0 {
			c.cfg.markers = markers
		}
	}
}

// WithPageFromNote takes the page locator of a citation from its note text
// when the inline marker has none.
func WithPageFromNote(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.pageFromNote = enabled
	}
}

// WithLayout sets how output files are named and included.
// Empty fields keep their default.
func WithLayout(l Layout) Option {
	return func(c *Converter) {
		c.cfg.layout = l.withDefaults()
	}
}
