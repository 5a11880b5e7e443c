// Package pipeline implements the Markdown-to-LaTeX rewriting passes.
//
// Each document goes through the same ordered stages:
//   - Normalization (line endings, trailing whitespace)
//   - Block structure: headings, lists, block quotes and fenced code
//   - Inline markup: bold, italics, inline code and LaTeX escaping
//   - Note markers replaced by the citation commands chosen for them
//
// Code blocks, inline code and existing LaTeX commands are shielded by the
// protect package so later passes never rewrite them. Resolving notes into
// bibliography entries is the job of the bibliography package; this package
// only consumes its substitutions.
package pipeline
