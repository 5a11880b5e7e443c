package bibliography

// Notes:
// - Tests go through Collect/Substitute, the way the converter drives the
//   registry; helpers only build documents.
// - Warnings are asserted with zaptest/observer rather than by parsing output.

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const bernardini = `Bernardini, N., "Sound Objects," Computer Music Journal, 18(4), 1994, p. 12.`

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func collect(t *testing.T, opts []Option, docs ...Document) *Registry {
	t.Helper()
	r := NewRegistry(opts...)
	r.Collect(docs)
	return r
}

// ---------------------------------------------------------------------------
// TestCollect - Resolution
// ---------------------------------------------------------------------------

func TestCollect_EndToEndExample(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "cap1.md", Text: "See [^1]. Again [^2].\n\n[^1]: " + bernardini + "\n[^2]: Ibid., p. 30.\n"}
	r := collect(t, nil, doc)

	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() = %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Type != "article" {
		t.Errorf("Type = %q, want article", e.Type)
	}
	want := map[string]string{
		"author":  "Bernardini, N.",
		"title":   "Sound Objects",
		"year":    "1994",
		"journal": "Computer Music Journal",
		"volume":  "18",
	}
	for name, value := range want {
		if got, _ := e.Fields.Get(name); got != value {
			t.Errorf("field %s = %q, want %q", name, got, value)
		}
	}

	k1, ok1 := r.Resolve("cap1.md", "1")
	k2, ok2 := r.Resolve("cap1.md", "2")
	if !ok1 || !ok2 || k1 != k2 || k1 != e.Key {
		t.Fatalf("Resolve() = (%q, %v) and (%q, %v), want both %q", k1, ok1, k2, ok2, e.Key)
	}

	got := r.Substitute("cap1.md", "See [^1]. Again [^2].")
	expected := `See \cite[p. 12]{Bernardini1994soundobj}. Again \cite[p. 30]{Bernardini1994soundobj}.`
	if got != expected {
		t.Errorf("Substitute() = %q, want %q", got, expected)
	}
}

func TestCollect_BackReferenceChain(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "a.md", Text: "[^1]: " + bernardini + "\n[^2]: Ibid., p. 14.\n[^3]: Ibid.\n"}
	r := collect(t, nil, doc)

	k1, _ := r.Resolve("a.md", "1")
	k3, ok := r.Resolve("a.md", "3")
	if !ok || k3 != k1 {
		t.Errorf("Resolve(3) = (%q, %v), want %q", k3, ok, k1)
	}
	if s := r.Stats(); s.BackReferences != 2 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, want 2 back-references and 1 entry", s)
	}
}

func TestCollect_NaturalKeyOrder(t *testing.T) {
	t.Parallel()

	// Note 10 is written before note 9; sorting must still resolve it.
	doc := Document{Name: "a.md", Text: "[^10]: Ibid., p. 5.\n[^9]: " + bernardini + "\n"}
	r := collect(t, nil, doc)

	k9, _ := r.Resolve("a.md", "9")
	k10, ok := r.Resolve("a.md", "10")
	if !ok || k10 != k9 {
		t.Errorf("Resolve(10) = (%q, %v), want %q", k10, ok, k9)
	}
}

func TestCollect_UnresolvedBackReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		note    string
		wantErr error
	}{
		{
			name:    "first note",
			text:    "[^1]: Ibid., p. 3.\n",
			note:    "1",
			wantErr: ErrNoPredecessor,
		},
		{
			name:    "non numeric key",
			text:    "[^a]: " + bernardini + "\n[^b]: Ibid.\n",
			note:    "b",
			wantErr: ErrNonNumericKey,
		},
		{
			name:    "missing predecessor",
			text:    "[^1]: " + bernardini + "\n[^3]: Eco, op. cit., p. 4.\n",
			note:    "3",
			wantErr: ErrPredecessorUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, logs := observed()
			r := collect(t, []Option{WithLogger(logger)}, Document{Name: "a.md", Text: tt.text})

			if _, ok := r.Resolve("a.md", tt.note); ok {
				t.Errorf("Resolve(%s) succeeded, want unresolved", tt.note)
			}
			if r.Stats().Unresolved != 1 {
				t.Errorf("Unresolved = %d, want 1", r.Stats().Unresolved)
			}

			warnings := logs.FilterMessage("back-reference left unresolved").All()
			if len(warnings) != 1 {
				t.Fatalf("got %d warnings, want 1", len(warnings))
			}
			err, _ := warnings[0].ContextMap()["error"].(string)
			if !strings.Contains(err, tt.wantErr.Error()) {
				t.Errorf("warning error = %q, want it to mention %q", err, tt.wantErr)
			}

			marker := "[^" + tt.note + "]"
			if got := r.Substitute("a.md", marker); got != marker {
				t.Errorf("Substitute(%q) = %q, want unchanged", marker, got)
			}
		})
	}
}

func TestCollect_Transcriptions(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "a.md", Text: "Quote[^1].\n\n[^1]: Trascrizione dell'intervista.\n"}
	r := collect(t, nil, doc)

	if len(r.Entries()) != 0 {
		t.Errorf("Entries() = %d, want 0", len(r.Entries()))
	}
	if _, ok := r.Resolve("a.md", "1"); ok {
		t.Error("transcription note should not resolve")
	}
	if s := r.Stats(); s.Transcriptions != 1 || s.Notes != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCollect_CustomTranscriptionMarkers(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "a.md", Text: "[^1]: Verbatim interview notes.\n"}
	r := collect(t, []Option{WithTranscriptionMarkers("verbatim")}, doc)

	if r.Stats().Transcriptions != 1 {
		t.Errorf("Transcriptions = %d, want 1", r.Stats().Transcriptions)
	}
}

func TestCollect_EveryNoteResolves(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Name: "a.md", Text: "[^1]: " + bernardini + "\n[^2]: Eco, U., \"Opera aperta\", 1962.\n[^3]: Ibid., p. 9.\n"},
		{Name: "b.md", Text: "[^1]: Archivio privato, busta 3.\n[^x]: Smith J. \"Title\", 2001\n"},
	}
	r := collect(t, nil, docs...)

	for _, doc := range docs {
		for _, n := range ScanNotes(doc.Name, doc.Text) {
			if _, ok := r.Resolve(doc.Name, n.Key); !ok {
				t.Errorf("note (%s, %s) has no resolution", doc.Name, n.Key)
			}
		}
	}
}

func TestCollect_Resolutions(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Name: "a.md", Text: "[^3]: Trascrizione dell'intervista.\n[^1]: " + bernardini + "\n[^2]: Ibid., p. 30.\n"},
		{Name: "b.md", Text: "[^1]: Ibid.\n[^2]: " + strings.Replace(bernardini, "p. 12", "p. 40", 1) + "\n"},
	}
	r := collect(t, nil, docs...)
	key := r.Entries()[0].Key

	expected := []struct {
		document string
		note     string
		outcome  Outcome
		entryKey string
	}{
		{"a.md", "1", OutcomeEntry, key},
		{"a.md", "2", OutcomeBackReference, key},
		{"a.md", "3", OutcomeTranscription, ""},
		{"b.md", "1", OutcomeUnresolved, ""},
		{"b.md", "2", OutcomeMerged, key},
	}

	got := r.Resolutions()
	if len(got) != len(expected) {
		t.Fatalf("Resolutions() = %d records, want %d", len(got), len(expected))
	}
	for i, want := range expected {
		g := got[i]
		if g.Document != want.document || g.Key != want.note || g.Outcome != want.outcome || g.EntryKey != want.entryKey {
			t.Errorf("Resolutions()[%d] = (%s, %s, %s, %q), want (%s, %s, %s, %q)", i,
				g.Document, g.Key, g.Outcome, g.EntryKey,
				want.document, want.note, want.outcome, want.entryKey)
		}
	}
}

// ---------------------------------------------------------------------------
// TestCollect - Keys and Deduplication
// ---------------------------------------------------------------------------

func TestCollect_DeduplicatesAcrossDocuments(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{Name: "a.md", Text: "[^1]: " + bernardini + "\n"},
		{Name: "b.md", Text: "[^4]: " + strings.Replace(bernardini, "p. 12", "p. 40", 1) + "\n"},
	}
	r := collect(t, nil, docs...)

	if len(r.Entries()) != 1 {
		t.Fatalf("Entries() = %d, want 1", len(r.Entries()))
	}
	ka, _ := r.Resolve("a.md", "1")
	kb, _ := r.Resolve("b.md", "4")
	if ka != kb {
		t.Errorf("keys differ: %q vs %q", ka, kb)
	}
	if r.Stats().Merged != 1 {
		t.Errorf("Merged = %d, want 1", r.Stats().Merged)
	}
}

func TestCollect_KeysAreUnique(t *testing.T) {
	t.Parallel()

	// Same base key, different works.
	text := "[^1]: Eco, U., \"Opera aperta\", 1962.\n" +
		"[^2]: Eco, U., \"Opera apertissima\", 1962.\n" +
		"[^3]: Eco, U., \"Opera apertura\", 1962.\n"
	r := collect(t, nil, Document{Name: "a.md", Text: text})

	seen := make(map[string]bool)
	for _, e := range r.Entries() {
		if seen[e.Key] {
			t.Errorf("duplicate key %q", e.Key)
		}
		seen[e.Key] = true
	}
	for _, want := range []string{"Eco1962operaape", "Eco1962operaape1", "Eco1962operaape2"} {
		if !seen[want] {
			t.Errorf("missing key %q in %v", want, seen)
		}
	}
}

func TestCollect_DuplicateDefinitionLastWins(t *testing.T) {
	t.Parallel()

	logger, logs := observed()
	text := "[^1]: Eco, U., \"Opera aperta\", 1962.\n[^1]: " + bernardini + "\n"
	r := collect(t, []Option{WithLogger(logger)}, Document{Name: "a.md", Text: text})

	if got, _ := r.NoteText("a.md", "1"); got != bernardini {
		t.Errorf("NoteText() = %q, want last definition", got)
	}
	if logs.FilterMessage("duplicate note definition, keeping the last one").Len() != 1 {
		t.Error("expected a duplicate definition warning")
	}
}

func TestCollect_ResetsBetweenRuns(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Collect([]Document{{Name: "a.md", Text: "[^1]: " + bernardini + "\n"}})
	r.Collect([]Document{{Name: "b.md", Text: "no notes"}})

	if len(r.Entries()) != 0 {
		t.Errorf("Entries() = %d after second run, want 0", len(r.Entries()))
	}
	if _, ok := r.Resolve("a.md", "1"); ok {
		t.Error("resolution leaked from the previous run")
	}
}

// ---------------------------------------------------------------------------
// TestSubstitute
// ---------------------------------------------------------------------------

func TestSubstitute(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "a.md", Text: "[^1]: Eco, U., \"Opera aperta\", 1962.\n[^2]: Ibid., pp. 4-6.\n"}
	logger, logs := observed()
	r := collect(t, []Option{WithLogger(logger)}, doc)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain marker", "x[^1] y", `x\cite{Eco1962operaape} y`},
		{"explicit page", "x[^1, p. 7]", `x\cite[p. 7]{Eco1962operaape}`},
		{"explicit range overrides note", "x[^2, pp. 1-2]", `x\cite[pp. 1-2]{Eco1962operaape}`},
		{"back-reference page from note", "x[^2]", `x\cite[pp. 4-6]{Eco1962operaape}`},
		{"definition left alone", "[^1]: Eco", "[^1]: Eco"},
		{"unknown marker unchanged", "x[^9] y", "x[^9] y"},
		{"no markers", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := r.Substitute("a.md", tt.input); got != tt.expected {
				t.Errorf("Substitute(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	t.Cleanup(func() {
		if logs.FilterMessage("citation marker left unresolved").Len() == 0 {
			t.Error("expected an unresolved marker warning")
		}
	})
}

func TestSubstitute_PageFromNoteDisabled(t *testing.T) {
	t.Parallel()

	doc := Document{Name: "a.md", Text: "[^1]: " + bernardini + "\n[^2]: Ibid., p. 30.\n"}
	r := collect(t, []Option{WithPageFromNote(false)}, doc)

	got := r.Substitute("a.md", "[^1] [^2]")
	expected := `\cite{Bernardini1994soundobj} \cite[p. 30]{Bernardini1994soundobj}`
	if got != expected {
		t.Errorf("Substitute() = %q, want %q", got, expected)
	}
}

func TestSubstitute_OtherDocumentKeysDoNotLeak(t *testing.T) {
	t.Parallel()

	r := collect(t, nil, Document{Name: "a.md", Text: "[^1]: " + bernardini + "\n"})
	if got := r.Substitute("b.md", "[^1]"); got != "[^1]" {
		t.Errorf("Substitute() = %q, want unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestScanNotes
// ---------------------------------------------------------------------------

func TestScanNotes(t *testing.T) {
	t.Parallel()

	text := "intro\n[^1]: First note.\n  [^b2]: Second `code` note.\n" +
		"```\n[^3]: inside a fence\n```\n`[^4]: inline`\n[^5]:\n"
	notes := ScanNotes("a.md", text)

	if len(notes) != 2 {
		t.Fatalf("ScanNotes() = %d notes, want 2: %+v", len(notes), notes)
	}
	if notes[0].Key != "1" || notes[0].Text != "First note." {
		t.Errorf("notes[0] = %+v", notes[0])
	}
	if notes[1].Key != "b2" || notes[1].Text != "Second `code` note." {
		t.Errorf("notes[1] = %+v", notes[1])
	}
}

// ---------------------------------------------------------------------------
// TestRender
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	r := collect(t, nil, Document{Name: "a.md", Text: "[^1]: " + bernardini + "\n"})
	got := Render(r.Entries())

	expected := Header +
		"@article{Bernardini1994soundobj,\n" +
		"  author     = {Bernardini, N.},\n" +
		"  title      = {Sound Objects},\n" +
		"  year       = {1994},\n" +
		"  pages      = {12},\n" +
		"  journal    = {Computer Music Journal},\n" +
		"  volume     = {18},\n" +
		"  note        = {Orig: Bernardini, N., \"Sound Objects,\" Computer Music Jo...}\n" +
		"}\n\n"
	if got != expected {
		t.Errorf("Render() =\n%s\nwant\n%s", got, expected)
	}
}

func TestRender_EscapesValues(t *testing.T) {
	t.Parallel()

	r := collect(t, nil, Document{Name: "a.md", Text: "[^1]: Rossi, A., \"Rock & Roll_100%\", 1999.\n"})
	got := Render(r.Entries())
	if !strings.Contains(got, `title      = {Rock \& Roll\_100\%}`) {
		t.Errorf("Render() did not escape title:\n%s", got)
	}
}

func TestRender_EscapesBraces(t *testing.T) {
	t.Parallel()

	r := collect(t, nil, Document{Name: "a.md", Text: "[^1]: Rossi, A., \"Sets {a, b\", 1999.\n"})
	got := Render(r.Entries())
	if !strings.Contains(got, `title      = {Sets \{a, b}`) {
		t.Errorf("Render() did not escape the lone brace:\n%s", got)
	}
	if strings.Count(got, "{")-strings.Count(got, `\{`) != strings.Count(got, "}")-strings.Count(got, `\}`) {
		t.Errorf("Render() produced unbalanced braces:\n%s", got)
	}
}

func TestWriteBibTeX_Empty(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := WriteBibTeX(&b, nil); !errors.Is(err, ErrEmptyBibliography) {
		t.Errorf("WriteBibTeX(nil) error = %v, want ErrEmptyBibliography", err)
	}
	if Render(nil) != "" {
		t.Error("Render(nil) should be empty")
	}
}
