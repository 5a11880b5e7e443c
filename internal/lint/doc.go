// Package lint reports Markdown constructs that md2tex leaves unconverted.
//
// The rewriter handles a deliberate subset of Markdown. Documents are parsed
// with goldmark (GFM and footnote extensions) and every node outside that
// subset yields a Finding: headings deeper than three levels, single
// emphasis, links, images, tables and strikethrough. Fenced code blocks with
// a language no listings mapping or lexer knows are reported too.
//
// Note markers are checked against definitions by scanning the source,
// since goldmark drops footnote definitions that nothing references.
package lint
