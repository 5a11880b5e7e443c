// Package md2tex converts ordered Markdown manuscripts into LaTeX sections
// and a BibTeX bibliography built from their citation notes.
//
// # Quick Start
//
// Create a converter and pass it every document of the run in reading order:
//
//	conv := md2tex.NewConverter()
//
//	result, err := conv.Convert(ctx, md2tex.Input{
//	    Order: []string{"introduzione.md", "capitolo1.md"},
//	    Documents: map[string]string{
//	        "introduzione.md": intro,
//	        "capitolo1.md":    chapter,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range result.Sections {
//	    os.WriteFile(filepath.Join("sections", s.FileName), []byte(s.Content), 0o644)
//	}
//	os.WriteFile("bibliography_generated.bib", []byte(result.Bibliography), 0o644)
//
// # Conversion Pipeline
//
// A run has two phases:
//
//  1. Collection: every note definition of every document is parsed into a
//     bibliography entry, deduplicated and keyed. Back-references ("Ibid.",
//     ", cit.") resolve to the note before them.
//  2. Rewriting: each document goes through an ordered list of passes
//     (emphasis, escapes, math, listings, headings, lists, entity
//     annotation, citations) that never touch code, math or emitted commands.
//
// Citations of one document may depend on notes of another, so no document
// is rewritten before collection has seen them all.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv := md2tex.NewConverter(
//	    md2tex.WithLogger(logger),
//	    md2tex.WithEntities([]md2tex.Entity{
//	        {Name: "Giacinto Scelsi", Variants: []string{"Giacinto Scelsi", "Scelsi"}, Birth: "1905", Death: "1988"},
//	    }),
//	    md2tex.WithLayout(md2tex.Layout{IntroName: "intro", SectionPrefix: "chapter"}),
//	)
//
// A Converter is not safe for concurrent use.
package md2tex
