package pipeline

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fencedBlock matches a fenced code block, language tag in group 1.
var fencedBlock = regexp.MustCompile("(?s)```(\\w*)\n(.*?)\n```")

// listingLanguages maps code block tags to listings language names.
var listingLanguages = map[string]string{
	"csound":     "C",
	"yaml":       "Python",
	"yml":        "Python",
	"json":       "Python",
	"bash":       "bash",
	"shell":      "bash",
	"javascript": "Java",
	"js":         "Java",
	"markdown":   "TeX",
	"md":         "TeX",
}

// Unicode characters with no fixed-width glyph, typeset in math mode.
var codeMath = map[rune]string{
	'≈': `$\approx$`,
	'π': `$\pi$`,
	'×': `$\times$`,
	'÷': `$\div$`,
	'±': `$\pm$`,
	'∞': `$\infty$`,
	'≤': `$\leq$`,
	'≥': `$\geq$`,
	'≠': `$\neq$`,
	'²': `$^2$`,
	'³': `$^3$`,
}

var codeEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"_", `\_`,
	"^", `\textasciicircum{}`,
	"-", `{-}`,
	"&", `\&`,
	"%", `\%`,
	"#", `\#`,
	"$", `\$`,
	"~", `\textasciitilde{}`,
)

// IsKnownLanguage reports whether tag maps to a listings language through
// extra, the built-in table, or a syntax lexer.
func IsKnownLanguage(tag string, extra map[string]string) bool {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if _, ok := extra[lower]; ok {
		return true
	}
	if _, ok := listingLanguages[lower]; ok {
		return true
	}
	return lexers.Get(lower) != nil
}

// languageFunc returns the tag to listings name mapping in effect.
func (r *Rewriter) languageFunc() func(string) string {
	return func(tag string) string {
		lower := strings.ToLower(tag)
		if name, ok := r.languages[lower]; ok {
			return name
		}
		if name, ok := listingLanguages[lower]; ok {
			return name
		}
		if r.lexerNames {
			if l := lexers.Get(lower); l != nil {
				return l.Config().Name
			}
		}
		return cases.Title(language.Und).String(lower)
	}
}

// convertCodeBlocks transforms fenced code blocks to lstlisting environments.
func convertCodeBlocks(text string, languageName func(string) string) string {
	return fencedBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := fencedBlock.FindStringSubmatch(block)
		var option string
		if tag := strings.TrimSpace(m[1]); tag != "" {
			option = "[language=" + languageName(tag) + "]"
		}
		return `\begin{lstlisting}` + option + "\n" + m[2] + "\n" + `\end{lstlisting}`
	})
}

// convertInlineCode transforms `code` to \texttt{code}. Backticks that touch
// another backtick do not open or close a span.
func convertInlineCode(text string) string {
	if !strings.Contains(text, "`") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '`' || (i > 0 && text[i-1] == '`') {
			b.WriteByte(text[i])
			i++
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != '`' && text[j] != '\n' {
			j++
		}
		closed := j < len(text) && text[j] == '`' && j > i+1
		if !closed || (j+1 < len(text) && text[j+1] == '`') {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(texttt(text[i+1 : j]))
		i = j + 1
	}
	return b.String()
}

// texttt renders code in a fixed-width span. Math characters close the span,
// appear in math mode and reopen it.
func texttt(code string) string {
	var b, seg strings.Builder
	flush := func() {
		if seg.Len() > 0 {
			b.WriteString(`\texttt{` + codeEscaper.Replace(seg.String()) + `}`)
			seg.Reset()
		}
	}
	for _, r := range code {
		if m, ok := codeMath[r]; ok {
			flush()
			b.WriteString(m)
			continue
		}
		seg.WriteRune(r)
	}
	flush()
	return b.String()
}
