package bibliography

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/citation"
)

// markerPattern matches [^key], [^key, p. N] and [^key, pp. N-M]. A marker
// followed by ':' is a definition and is skipped by Substitute.
var markerPattern = regexp.MustCompile(`\[\^([\p{L}\p{N}_]+)(,\s*(?:p|pp)\.?\s*[\d\-]+)?\]`)

// Substitute replaces the inline markers of document with citation commands.
// Markers without a resolution are left as they are.
func (r *Registry) Substitute(document, text string) string {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		if m[1] < len(text) && text[m[1]] == ':' {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(r.cite(document, text, m))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r *Registry) cite(document, text string, m []int) string {
	marker := text[m[0]:m[1]]
	noteKey := text[m[2]:m[3]]

	key, ok := r.Resolve(document, noteKey)
	if !ok {
		r.logger.Warn("citation marker left unresolved",
			zap.String("document", document), zap.String("marker", marker))
		return marker
	}

	var locator string
	if m[4] >= 0 {
		locator = strings.Trim(text[m[4]:m[5]], ", ")
	} else if note, ok := r.NoteText(document, noteKey); ok {
		if r.pageFromNote || citation.IsBackReference(note) {
			locator = citation.PageLocator(note)
		}
	}

	if locator == "" {
		return `\cite{` + key + `}`
	}
	return `\cite[` + locator + `]{` + key + `}`
}
