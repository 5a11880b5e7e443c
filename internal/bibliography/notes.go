package bibliography

import (
	"regexp"
	"strings"

	"github.com/alnah/go-md2tex/internal/protect"
)

// definitionPattern matches "[^key]: text" on its own line.
var definitionPattern = regexp.MustCompile(`(?m)^[ \t]*\[\^([\p{L}\p{N}_]+)\]:[ \t]*(.+)$`)

// Note is one citation note definition found in a document.
type Note struct {
	Document string
	Key      string
	Text     string
	Position int // index of the document in the run
}

// Document is a named source text taking part in a run.
type Document struct {
	Name string
	Text string
}

// ScanNotes returns every note definition of text in order of appearance.
// Definitions inside code are ignored.
func ScanNotes(document, text string) []Note {
	protected, regions := protect.Protect(text, protect.Code...)

	var notes []Note
	for _, m := range definitionPattern.FindAllStringSubmatch(protected, -1) {
		body := strings.TrimSpace(regions.Restore(m[2]))
		if body == "" {
			continue
		}
		notes = append(notes, Note{
			Document: document,
			Key:      m[1],
			Text:     body,
		})
	}
	return notes
}
