package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for block-level passes.
var (
	// Headings, deepest first; a trailing {#id .class} block is dropped
	headingLevels = []struct {
		pattern *regexp.Regexp
		command string
	}{
		{regexp.MustCompile(`(?m)^[ \t]*###[ \t]+(.*?)(?:[ \t]+\{.*\})?[ \t]*$`), `\subsubsection{${1}}`},
		{regexp.MustCompile(`(?m)^[ \t]*##[ \t]+(.*?)(?:[ \t]+\{.*\})?[ \t]*$`), `\subsection{${1}}`},
		{regexp.MustCompile(`(?m)^[ \t]*#[ \t]+(.*?)(?:[ \t]+\{.*\})?[ \t]*$`), `\section{${1}}`},
	}

	orderedItem   = regexp.MustCompile(`^\s*(\d+)\.\s+(.*)`)
	orderedStart  = regexp.MustCompile(`^\s*\d+\.\s+`)
	continuation  = regexp.MustCompile(`^\s+\S`)
	bulletItem    = regexp.MustCompile(`^\s*-\s+(.*)`)
	blankLineRuns = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

const itemIndent = "    "

// convertHeadings transforms #, ## and ### headings to sectioning commands.
func convertHeadings(text string) string {
	for _, h := range headingLevels {
		text = h.pattern.ReplaceAllString(text, h.command)
	}
	return text
}

// convertLists transforms ordered, then unordered lists.
func convertLists(text string) string {
	return convertBulletLists(convertOrderedLists(text))
}

// convertOrderedLists transforms "1. item" blocks to enumerate. Indented
// lines following an item are joined to it, across blank lines too. A blank
// line keeps the list open only when the next non-blank line is an item.
func convertOrderedLists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+2)
	inList := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := orderedItem.FindStringSubmatch(line); m != nil {
			if !inList {
				out = append(out, `\begin{enumerate}`)
				inList = true
			}
			item := itemIndent + `\item ` + m[2]
			j := i + 1
			for j < len(lines) {
				next := lines[j]
				if orderedStart.MatchString(next) {
					break
				}
				if isBlank(next) {
					k := nextNonBlank(lines, j)
					if k < len(lines) && continuation.MatchString(lines[k]) && !orderedStart.MatchString(lines[k]) {
						j = k
						continue
					}
					break
				}
				if !continuation.MatchString(next) {
					break
				}
				item += " " + strings.TrimSpace(next)
				j++
			}
			out = append(out, item)
			i = j - 1
			continue
		}

		if inList && isBlank(line) {
			if k := nextNonBlank(lines, i); k < len(lines) && orderedStart.MatchString(lines[k]) {
				i = k - 1
				continue
			}
		}
		if inList {
			out = append(out, `\end{enumerate}`)
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, `\end{enumerate}`)
	}
	return strings.Join(out, "\n")
}

// convertBulletLists transforms "- item" blocks to itemize.
func convertBulletLists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+2)
	inList := false

	for _, line := range lines {
		if m := bulletItem.FindStringSubmatch(line); m != nil {
			if !inList {
				out = append(out, `\begin{itemize}`)
				inList = true
			}
			out = append(out, itemIndent+`\item `+m[1])
			continue
		}
		if inList {
			out = append(out, `\end{itemize}`)
			inList = false
		}
		out = append(out, line)
	}
	if inList {
		out = append(out, `\end{itemize}`)
	}
	return strings.Join(out, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// nextNonBlank returns the index of the first non-blank line at or after
// from, or len(lines).
func nextNonBlank(lines []string, from int) int {
	for from < len(lines) && isBlank(lines[from]) {
		from++
	}
	return from
}

// stripDefinitions removes note definition lines left after substitution.
func stripDefinitions(text string) string {
	return definitionLine.ReplaceAllLiteralString(text, "")
}

// collapseBlankLines reduces every run of blank lines to a single one.
func collapseBlankLines(text string) string {
	return blankLineRuns.ReplaceAllLiteralString(text, "\n\n")
}
