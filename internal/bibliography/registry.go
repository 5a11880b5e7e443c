// Package bibliography collects citation notes across documents, resolves
// them to deduplicated entries and substitutes inline markers.
//
// A run is split in two phases. Collect scans every document and builds the
// registry; only then may Substitute be called for each document. The
// registry is not modified by Substitute.
package bibliography

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/citation"
)

// DefaultTranscriptionMarkers flag notes excluded from the bibliography.
var DefaultTranscriptionMarkers = []string{"trascrizione", "transcription"}

// Entry is a deduplicated bibliography record.
type Entry struct {
	Key        string
	Type       citation.EntryType
	Fields     *citation.Fields
	SourceText string
}

// Stats summarizes a collection pass.
type Stats struct {
	Notes          int // definitions found, transcriptions included
	Transcriptions int
	Entries        int
	Merged         int // notes mapped onto an existing entry
	BackReferences int
	Unresolved     int
}

// Outcome tells what became of a collected note.
type Outcome string

// Note outcomes.
const (
	OutcomeEntry         Outcome = "entry"
	OutcomeMerged        Outcome = "merged"
	OutcomeBackReference Outcome = "back-reference"
	OutcomeUnresolved    Outcome = "unresolved"
	OutcomeTranscription Outcome = "transcription"
)

// Resolution records the outcome of one note. EntryKey is empty for
// transcriptions and unresolved back-references.
type Resolution struct {
	Note
	Outcome  Outcome
	EntryKey string
}

type noteID struct {
	document string
	key      string
}

// Registry maps notes to bibliography entries.
type Registry struct {
	logger       *zap.Logger
	markers      []string
	pageFromNote bool

	entries    []*Entry
	byKey      map[string]*Entry
	byIdentity map[string]string
	resolved   map[noteID]string
	notes      map[noteID]Note
	outcomes   []Resolution
	stats      Stats
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTranscriptionMarkers replaces the words that flag transcription notes.
func WithTranscriptionMarkers(markers ...string) Option {
	return func(r *Registry) {
		r.markers = markers
	}
}

// WithPageFromNote makes Substitute take the page locator from a regular
// note's text when the marker has none. Back-references always do.
func WithPageFromNote(enabled bool) Option {
	return func(r *Registry) {
		r.pageFromNote = enabled
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:       zap.NewNop(),
		markers:      DefaultTranscriptionMarkers,
		pageFromNote: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Reset()
	return r
}

// Reset drops every note, entry and resolution.
func (r *Registry) Reset() {
	r.entries = nil
	r.byKey = make(map[string]*Entry)
	r.byIdentity = make(map[string]string)
	r.resolved = make(map[noteID]string)
	r.notes = make(map[noteID]Note)
	r.outcomes = nil
	r.stats = Stats{}
}

// Markers returns the transcription markers in use.
func (r *Registry) Markers() []string {
	return r.markers
}

// Collect rebuilds the registry from docs. Notes are visited document by
// document, keys in natural order, so a back-reference finds its
// predecessor already resolved.
func (r *Registry) Collect(docs []Document) {
	r.Reset()

	var notes []Note
	for pos, doc := range docs {
		seen := make(map[string]int)
		for _, n := range ScanNotes(doc.Name, doc.Text) {
			n.Position = pos
			if i, ok := seen[n.Key]; ok {
				r.logger.Warn("duplicate note definition, keeping the last one",
					zap.String("document", doc.Name), zap.String("note", n.Key))
				notes[i] = n
				continue
			}
			seen[n.Key] = len(notes)
			notes = append(notes, n)
		}
	}
	r.stats.Notes = len(notes)

	kept := notes[:0]
	for _, n := range notes {
		if citation.IsTranscription(n.Text, r.markers) {
			r.stats.Transcriptions++
			r.record(n, OutcomeTranscription, "")
			r.logger.Info("transcription note excluded from bibliography",
				zap.String("document", n.Document), zap.String("note", n.Key))
			continue
		}
		kept = append(kept, n)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Position != kept[j].Position {
			return kept[i].Position < kept[j].Position
		}
		return natural.Less(kept[i].Key, kept[j].Key)
	})

	for _, n := range kept {
		r.add(n)
	}
	r.stats.Entries = len(r.entries)

	r.logger.Info("bibliography collected",
		zap.Int("notes", r.stats.Notes),
		zap.Int("transcriptions", r.stats.Transcriptions),
		zap.Int("entries", r.stats.Entries),
		zap.Int("backReferences", r.stats.BackReferences),
		zap.Int("unresolved", r.stats.Unresolved))
}

func (r *Registry) add(n Note) {
	id := noteID{document: n.Document, key: n.Key}
	r.notes[id] = n
	parsed := citation.Parse(n.Text)

	if parsed.BackReference {
		key, err := r.resolveBackReference(n)
		if err != nil {
			r.stats.Unresolved++
			r.record(n, OutcomeUnresolved, "")
			r.logger.Warn("back-reference left unresolved",
				zap.String("document", n.Document), zap.String("note", n.Key), zap.Error(err))
			return
		}
		r.resolved[id] = key
		r.stats.BackReferences++
		r.record(n, OutcomeBackReference, key)
		r.logger.Debug("back-reference resolved",
			zap.String("document", n.Document), zap.String("note", n.Key), zap.String("key", key))
		return
	}

	identity := citation.Identity(parsed, n.Text)
	if key, ok := r.byIdentity[identity]; ok {
		r.resolved[id] = key
		r.stats.Merged++
		r.record(n, OutcomeMerged, key)
		return
	}

	key := r.uniqueKey(parsed.Key())
	entry := &Entry{
		Key:        key,
		Type:       parsed.Type,
		Fields:     parsed.Fields,
		SourceText: n.Text,
	}
	r.entries = append(r.entries, entry)
	r.byKey[key] = entry
	r.byIdentity[identity] = key
	r.resolved[id] = key
	r.record(n, OutcomeEntry, key)
}

func (r *Registry) record(n Note, outcome Outcome, key string) {
	r.outcomes = append(r.outcomes, Resolution{Note: n, Outcome: outcome, EntryKey: key})
}

// resolveBackReference maps a note onto the entry of the note numbered one
// less in the same document.
func (r *Registry) resolveBackReference(n Note) (string, error) {
	num, err := strconv.Atoi(n.Key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNonNumericKey, n.Key)
	}
	prev := num - 1
	if prev <= 0 {
		return "", fmt.Errorf("%w: note %d", ErrNoPredecessor, num)
	}
	key, ok := r.resolved[noteID{document: n.Document, key: strconv.Itoa(prev)}]
	if !ok {
		return "", fmt.Errorf("%w: note %d", ErrPredecessorUnresolved, prev)
	}
	return key, nil
}

// uniqueKey appends 1, 2, ... to base until it names no existing entry.
func (r *Registry) uniqueKey(base string) string {
	key := base
	for i := 1; ; i++ {
		if _, taken := r.byKey[key]; !taken {
			return key
		}
		key = base + strconv.Itoa(i)
	}
}

// Resolve returns the entry key a note maps to.
func (r *Registry) Resolve(document, key string) (string, bool) {
	k, ok := r.resolved[noteID{document: document, key: key}]
	return k, ok
}

// NoteText returns the collected text of a note.
func (r *Registry) NoteText(document, key string) (string, bool) {
	n, ok := r.notes[noteID{document: document, key: key}]
	return n.Text, ok
}

// Entry returns the entry stored under key.
func (r *Registry) Entry(key string) (Entry, bool) {
	e, ok := r.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns all entries in creation order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Resolutions returns the outcome of every collected note, ordered by
// document position then natural key.
func (r *Registry) Resolutions() []Resolution {
	out := make([]Resolution, len(r.outcomes))
	copy(out, r.outcomes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return natural.Less(out[i].Key, out[j].Key)
	})
	return out
}

// Stats returns counters of the last Collect.
func (r *Registry) Stats() Stats {
	return r.stats
}
