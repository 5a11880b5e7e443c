package pipeline

import (
	"regexp"
	"strings"

	"github.com/alnah/go-md2tex/internal/citation"
)

// Precompiled regex patterns for inline passes.
var (
	// Note definition line including its newline, key in group 1, body in group 2
	definitionLine = regexp.MustCompile(`(?m)^[ \t]*\[\^([\p{L}\p{N}_]+)\]:[ \t]*(.*)(?:\n|$)`)

	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

	// Quoting conventions rendered in italics
	straightQuotes      = regexp.MustCompile(`"([^"\n]*)"`)
	curlyQuotes         = regexp.MustCompile(`“([^”\n]*)”`)
	doubledSingleQuotes = regexp.MustCompile(`''(.*?)''`)
	doubledCurlyQuotes  = regexp.MustCompile(`‘‘(.*?)’’`)

	ellipsisPattern = regexp.MustCompile(`\.{3,}|…`)
	exponentPattern = regexp.MustCompile(`\b(\d+)\^(\d+)\b`)
)

var mathSymbols = strings.NewReplacer(
	"≈", `$\approx$`,
	"π", `$\pi$`,
	"×", `$\times$`,
	"÷", `$\div$`,
)

// stripTranscriptions removes transcription note definitions and every
// marker referring to them.
func stripTranscriptions(text string, markers []string) string {
	var keys []string
	text = definitionLine.ReplaceAllStringFunc(text, func(line string) string {
		m := definitionLine.FindStringSubmatch(line)
		if !citation.IsTranscription(m[2], markers) {
			return line
		}
		keys = append(keys, regexp.QuoteMeta(m[1]))
		return ""
	})
	if len(keys) == 0 {
		return text
	}
	refs := regexp.MustCompile(`\[\^(?:` + strings.Join(keys, "|") + `)(?:,[^\]]*)?\]`)
	return refs.ReplaceAllString(text, "")
}

// convertBold transforms **text** to \textbf{text}.
func convertBold(text string) string {
	return boldPattern.ReplaceAllString(text, `\textbf{${1}}`)
}

// convertItalics transforms quoted spans to \textit{text}.
func convertItalics(text string) string {
	for _, re := range []*regexp.Regexp{straightQuotes, curlyQuotes, doubledSingleQuotes, doubledCurlyQuotes} {
		text = re.ReplaceAllString(text, `\textit{${1}}`)
	}
	return text
}

func convertTilde(text string) string {
	return strings.ReplaceAll(text, "~", `\textasciitilde{}`)
}

func escapePercent(text string) string {
	return strings.ReplaceAll(text, "%", `\%`)
}

// convertEllipsis transforms runs of three or more dots and the ellipsis
// character to \ldots{}.
func convertEllipsis(text string) string {
	return ellipsisPattern.ReplaceAllLiteralString(text, `\ldots{}`)
}

// convertMath wraps bare exponents like 2^20 and a few symbols in math mode.
func convertMath(text string) string {
	text = exponentPattern.ReplaceAllString(text, `$$${1}^{${2}}$$`)
	return mathSymbols.Replace(text)
}
