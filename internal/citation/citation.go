// Package citation extracts bibliography fields from free-text citation notes.
//
// Parsing is heuristic: a fixed chain of independent extractors runs over
// the note, and each one either yields a field or leaves it out. Notes that
// repeat the previous citation ("Ibid.", ", cit.") are only flagged here;
// resolving them needs the registry built by the bibliography package.
package citation

import (
	"strings"
)

// EntryType is a BibTeX entry type.
type EntryType string

// Entry types produced by Classify.
const (
	Misc          EntryType = "misc"
	Article       EntryType = "article"
	InProceedings EntryType = "inproceedings"
	InCollection  EntryType = "incollection"
)

// Parsed is the result of running the extractor chain over one note.
type Parsed struct {
	Type          EntryType
	Fields        *Fields
	Author        string
	Title         string
	Year          string
	BackReference bool
}

type extractor struct {
	field string
	fn    func(string) string
}

var commonExtractors = []extractor{
	{field: "author", fn: ExtractAuthor},
	{field: "title", fn: ExtractTitle},
	{field: "year", fn: ExtractYear},
	{field: "pages", fn: ExtractPages},
}

var typeExtractors = map[EntryType][]extractor{
	InProceedings: {
		{field: "booktitle", fn: extractProceedingsBooktitle},
		{field: "address", fn: literal("Copenhagen")},
		{field: "publisher", fn: literal("International Computer Music Association")},
	},
	InCollection: {
		{field: "booktitle", fn: extractCollectionBooktitle},
		{field: "editor", fn: ExtractEditor},
		{field: "publisher", fn: literal("Springer")},
		{field: "address", fn: literal("Berlin")},
	},
	Article: {
		{field: "journal", fn: ExtractJournal},
		{field: "volume", fn: ExtractVolume},
	},
}

// Parse runs the extractor chain over a note.
func Parse(text string) Parsed {
	text = strings.TrimSpace(text)
	p := Parsed{
		Type:          Classify(text),
		Fields:        NewFields(),
		BackReference: IsBackReference(text),
	}

	for _, e := range commonExtractors {
		p.Fields.Set(e.field, e.fn(text))
	}
	for _, e := range typeExtractors[p.Type] {
		p.Fields.Set(e.field, e.fn(text))
	}

	p.Author, _ = p.Fields.Get("author")
	p.Title, _ = p.Fields.Get("title")
	p.Year, _ = p.Fields.Get("year")

	if _, ok := p.Fields.Get("volume"); ok && p.Type == Article {
		p.Fields.Set("number", ExtractNumber(text, p.Year))
	}
	return p
}

// Key returns the base bibliography key for the parsed note.
func (p Parsed) Key() string {
	return BaseKey(p.Author, p.Year, p.Title)
}

// Identity returns a normalized author/year/title string. Two notes with
// the same identity describe the same work. When neither author nor title
// could be extracted, the normalized note text is used instead.
func Identity(p Parsed, text string) string {
	if p.Author == "" && p.Title == "" {
		return "raw|" + normalize(text)
	}
	return normalize(p.Author) + "|" + p.Year + "|" + normalize(p.Title)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
