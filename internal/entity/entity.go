// Package entity annotates the first mention of known people.
//
// Annotation state is shared by every document of a run: once any variant of
// an entity has been annotated, later mentions in any document stay plain
// text. The Registry holding that state must be Reset at the start of a run.
package entity

import (
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/protect"
)

// Defaults for the annotation command and missing dates.
const (
	DefaultCommand = "persona"
	UnknownBirth   = "0000"
	UnknownDeath   = "9999"
)

// Entity is a known person and the names it may appear under.
type Entity struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants,omitempty"`
	Birth    string   `yaml:"birth,omitempty"`
	Death    string   `yaml:"death,omitempty"`
}

// variants returns the names to search for, longest first. The canonical
// name is used when no variant is listed.
func (e Entity) variants() []string {
	v := slices.Clone(e.Variants)
	if len(v) == 0 {
		v = []string{e.Name}
	}
	sort.SliceStable(v, func(i, j int) bool {
		return utf8.RuneCountInString(v[i]) > utf8.RuneCountInString(v[j])
	})
	return v
}

// Registry records the entities annotated during a run.
type Registry struct {
	applied map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{applied: make(map[string]bool)}
}

// Reset forgets every annotation.
func (r *Registry) Reset() {
	clear(r.applied)
}

// IsApplied reports whether name has been annotated.
func (r *Registry) IsApplied(name string) bool {
	return r.applied[name]
}

// Applied returns the annotated names, sorted.
func (r *Registry) Applied() []string {
	return slices.Sorted(maps.Keys(r.applied))
}

func (r *Registry) mark(name string) {
	r.applied[name] = true
}

// Tagger annotates entities in text.
type Tagger struct {
	entities   []Entity
	registry   *Registry
	command    string
	annotation protect.Rule
	logger     *zap.Logger
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithCommand sets the annotation command name, without backslash.
func WithCommand(name string) Option {
	return func(t *Tagger) {
		if name != "" {
			t.command = name
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tagger) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTagger returns a tagger for entities sharing registry.
func NewTagger(registry *Registry, entities []Entity, opts ...Option) *Tagger {
	t := &Tagger{
		entities: entities,
		registry: registry,
		command:  DefaultCommand,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.annotation = protect.Rule{
		Name:    "annotation",
		Pattern: regexp.MustCompile(`\\` + regexp.QuoteMeta(t.command) + `\{[^}]*\}\{[^}]*\}\{[^}]*\}`),
	}
	return t
}

// Tag annotates the first mention of every entity not yet annotated.
func (t *Tagger) Tag(text string) string {
	for _, e := range t.entities {
		if e.Name == "" || t.registry.IsApplied(e.Name) {
			continue
		}
		text = protect.Apply(text, func(s string) string {
			return t.tagEntity(s, e)
		}, t.annotation)
	}
	return text
}

func (t *Tagger) tagEntity(text string, e Entity) string {
	for _, variant := range e.variants() {
		i := findWord(text, variant)
		if i < 0 {
			continue
		}
		t.registry.mark(e.Name)
		t.logger.Debug("entity annotated", zap.String("entity", e.Name), zap.String("variant", variant))
		return text[:i] + t.annotate(e) + text[i+len(variant):]
	}
	return text
}

func (t *Tagger) annotate(e Entity) string {
	birth, death := e.Birth, e.Death
	if birth == "" {
		birth = UnknownBirth
	}
	if death == "" {
		death = UnknownDeath
	}
	return `\` + t.command + `{` + e.Name + `}{` + birth + `}{` + death + `}`
}

// findWord returns the byte offset of the first occurrence of variant that
// is not part of a longer word, or -1. Edges of variant that are not word
// characters (a trailing "." for instance) need no boundary.
func findWord(text, variant string) int {
	if variant == "" {
		return -1
	}
	first, _ := utf8.DecodeRuneInString(variant)
	last, _ := utf8.DecodeLastRuneInString(variant)

	for from := 0; from < len(text); {
		i := strings.Index(text[from:], variant)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(variant)

		before := !isWord(first) || i == 0
		if !before {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			before = !isWord(prev)
		}
		after := !isWord(last) || end == len(text)
		if !after {
			next, _ := utf8.DecodeRuneInString(text[end:])
			after = !isWord(next)
		}
		if before && after {
			return i
		}

		_, size := utf8.DecodeRuneInString(text[i:])
		from = i + size
	}
	return -1
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
