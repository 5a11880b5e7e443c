// Package protect shields opaque spans (code, math, emitted commands) from
// rewriting passes.
//
// A pass calls Apply with the rules it must not cross. Every span matched by a
// rule is swapped for a token before the pass runs and swapped back afterwards,
// so the pass cannot alter a single byte inside a protected span.
package protect

import (
	"regexp"
	"strconv"
	"strings"
)

// Token delimiters use Unicode Private Use Area characters, which are not
// word characters for any pattern used by the rewriting passes. Delimiters
// already present in the input are protected like any other span.
const (
	TokenStart = "\uE010"
	TokenEnd   = "\uE011"
)

var (
	delimiterRun = regexp.MustCompile("[" + TokenStart + TokenEnd + "]+")
	tokenPattern = regexp.MustCompile(TokenStart + `(\d+)` + TokenEnd)
)

// Rule names a class of spans to protect.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Predefined rules, in the order passes usually apply them.
var (
	// CodeFence matches a fenced code block including both fences.
	CodeFence = Rule{Name: "codefence", Pattern: regexp.MustCompile("(?s)```.*?```")}

	// InlineCode matches a single-backtick code span on one line.
	InlineCode = Rule{Name: "inlinecode", Pattern: regexp.MustCompile("`[^`\n]+`")}

	// Math matches an inline math span.
	Math = Rule{Name: "math", Pattern: regexp.MustCompile(`\$[^$\n]*\$`)}

	// Command matches an emitted command with one brace argument.
	Command = Rule{Name: "command", Pattern: regexp.MustCompile(`\\[a-zA-Z]+\{[^}]*\}`)}

	// Listing matches an emitted listings environment.
	Listing = Rule{Name: "listing", Pattern: regexp.MustCompile(`(?s)\\begin\{lstlisting\}.*?\\end\{lstlisting\}`)}

	// Texttt matches an emitted fixed-width span; escaped braces are allowed inside.
	Texttt = Rule{Name: "texttt", Pattern: regexp.MustCompile(`\\texttt\{(?:\\.|[^\\{}]|\{-\}|\{\})*\}`)}

	// NoteDefinition matches a whole note definition line.
	NoteDefinition = Rule{Name: "notedef", Pattern: regexp.MustCompile(`(?m)^[ \t]*\[\^[\p{L}\p{N}_]+\]:.*$`)}
)

// Code protects fenced blocks and inline code, the set most passes need.
var Code = []Rule{CodeFence, InlineCode}

// Regions records the spans replaced by Protect.
type Regions struct {
	tokens []string
	spans  []string // indexed by token number
}

// Protect replaces every span matched by rules with a unique token.
// Rules run in order, so later rules only see text left unprotected by
// earlier ones.
func Protect(text string, rules ...Rule) (string, *Regions) {
	r := &Regions{}
	if strings.ContainsAny(text, TokenStart+TokenEnd) {
		text = delimiterRun.ReplaceAllStringFunc(text, r.add)
	}
	for _, rule := range rules {
		text = rule.Pattern.ReplaceAllStringFunc(text, r.add)
	}
	return text, r
}

func (r *Regions) add(span string) string {
	token := TokenStart + strconv.Itoa(len(r.tokens)) + TokenEnd
	r.tokens = append(r.tokens, token)
	r.spans = append(r.spans, span)
	return token
}

// Len returns the number of protected spans.
func (r *Regions) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tokens)
}

// Restore puts every protected span back in a single pass over text. A span
// protected by a later rule may contain tokens of an earlier rule; those are
// expanded inside the span. Restored text is never scanned again, so
// delimiters that were part of the input cannot be taken for a token.
func (r *Regions) Restore(text string) string {
	if r.Len() == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, r.expand)
}

// expand returns the span recorded for token, its own tokens expanded.
// A span only holds tokens created before it, so the recursion ends.
func (r *Regions) expand(token string) string {
	i, err := strconv.Atoi(token[len(TokenStart) : len(token)-len(TokenEnd)])
	if err != nil || i >= len(r.spans) {
		return token
	}
	return tokenPattern.ReplaceAllStringFunc(r.spans[i], r.expand)
}

// Apply protects text with rules, runs fn on the remainder and restores.
func Apply(text string, fn func(string) string, rules ...Rule) string {
	protected, regions := Protect(text, rules...)
	if regions.Len() == 0 {
		return fn(text)
	}
	return regions.Restore(fn(protected))
}
