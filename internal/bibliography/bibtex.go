package bibliography

import (
	"fmt"
	"io"
	"strings"
)

// Header opens every generated bibliography file.
const Header = "@Comment{This file was generated by md2tex from the citation notes of the source documents.}\n\n"

// auditPrefix is the number of runes of the source note kept in the audit note.
const auditPrefix = 50

var bibtexEscaper = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
)

// Render formats entries as BibTeX. It returns an empty string for no entries.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Header)
	for _, e := range entries {
		b.WriteString(stanza(e))
	}
	return b.String()
}

// WriteBibTeX writes entries to w.
func WriteBibTeX(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyBibliography
	}
	_, err := io.WriteString(w, Render(entries))
	return err
}

func stanza(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	e.Fields.Each(func(name, value string) {
		fmt.Fprintf(&b, "  %-10s = {%s},\n", name, bibtexEscaper.Replace(value))
	})
	fmt.Fprintf(&b, "  note        = {Orig: %s...}\n", bibtexEscaper.Replace(truncate(e.SourceText, auditPrefix)))
	b.WriteString("}\n\n")
	return b.String()
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
