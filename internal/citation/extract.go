package citation

import (
	"regexp"
	"strings"
)

// wordRun is a Unicode-aware replacement for \w in the author heuristics.
const wordRun = `[\p{L}\p{N}_\s.\-]+`

const authorList = `(?:` + wordRun + `,\s*` + wordRun + `)(?:\s*and\s*` + wordRun + `,\s*` + wordRun + `)*`

var (
	// "Surname, I.[ and Surname, I.]*," at the start of the note.
	authorTrailingComma = regexp.MustCompile(`^(` + authorList + `),`)

	// Same list or a bare "Surname I." closed by a comma, parenthesis or quote.
	authorDelimited = regexp.MustCompile(`^(` + authorList + `|[\p{L}\p{N}_]+\s*[\p{L}\p{N}_]\.)\s*(?:,|\(|` + "``" + `|"|“)`)

	titlePattern   = regexp.MustCompile(`["“](.+?)["”]`)
	yearPattern    = regexp.MustCompile(`\b(\d{4})\b`)
	pagesPattern   = regexp.MustCompile(`[,\s](?:p|pp)\.?\s*([\d\-]+)`)
	locatorPattern = regexp.MustCompile(`[,\s](p|pp)\.?\s*([\d\-]+)`)

	proceedingsBooktitle = regexp.MustCompile(`(?i)\bin\b:?\s*\*?([\p{L}\p{N}_\s:,]+?)\*?,\s*(?:edited|Copenhagen|Berlin)`)
	collectionBooktitle  = regexp.MustCompile(`(?i)\bin\b:?\s*\*?(.+?)\*?,\s*(?:edited by|Berlin)`)
	editorPattern        = regexp.MustCompile(`(?i)edited by\s+([^,]+)`)

	journalPattern = regexp.MustCompile(`([A-Za-z\s]+ Journal)`)
	volumePattern  = regexp.MustCompile(`,\s*(\d+)\(\d+\)`)
	numberPattern  = regexp.MustCompile(`\((\d+)\)`)
)

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractAuthor returns the leading author list of a note.
func ExtractAuthor(text string) string {
	if author := firstGroup(authorTrailingComma, text); author != "" {
		return strings.TrimSpace(author)
	}
	return strings.TrimSpace(firstGroup(authorDelimited, text))
}

// ExtractTitle returns the first quoted span, without trailing punctuation.
func ExtractTitle(text string) string {
	title := firstGroup(titlePattern, text)
	return strings.TrimSpace(strings.TrimRight(title, " ,.;:"))
}

// ExtractYear returns the first bare four-digit token.
func ExtractYear(text string) string {
	return firstGroup(yearPattern, text)
}

// ExtractPages returns the digits following "p." or "pp.".
func ExtractPages(text string) string {
	return firstGroup(pagesPattern, text)
}

// ExtractJournal returns a "<Words> Journal" name.
func ExtractJournal(text string) string {
	return strings.TrimSpace(firstGroup(journalPattern, text))
}

// ExtractVolume returns N from a ", N(M)" volume and issue pair.
func ExtractVolume(text string) string {
	return firstGroup(volumePattern, text)
}

// ExtractNumber returns the first parenthesized number not followed by a
// comma, unless it repeats year.
func ExtractNumber(text, year string) string {
	for _, m := range numberPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[1] < len(text) && text[m[1]] == ',' {
			continue
		}
		if n := text[m[2]:m[3]]; n != year {
			return n
		}
		return ""
	}
	return ""
}

// ExtractEditor returns the name following "edited by".
func ExtractEditor(text string) string {
	return strings.TrimSpace(firstGroup(editorPattern, text))
}

func extractProceedingsBooktitle(text string) string {
	return cleanBooktitle(firstGroup(proceedingsBooktitle, text))
}

func extractCollectionBooktitle(text string) string {
	return cleanBooktitle(firstGroup(collectionBooktitle, text))
}

func cleanBooktitle(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "*", "")
}

// literal returns an extractor yielding s when the note mentions it.
func literal(s string) func(string) string {
	return func(text string) string {
		if strings.Contains(text, s) {
			return s
		}
		return ""
	}
}

// Classify infers the entry type from keywords in the note.
func Classify(text string) EntryType {
	switch {
	case strings.Contains(text, "Proceedings of") || strings.Contains(text, "Conference"):
		return InProceedings
	case strings.Contains(text, "edited by") ||
		(strings.Contains(text, "in:") && strings.Contains(text, "Springer")):
		return InCollection
	case strings.Contains(text, "Journal"):
		return Article
	default:
		return Misc
	}
}

// IsBackReference reports whether a note repeats the previous citation
// ("Ibid." at the start or ", cit." anywhere, case-insensitive).
func IsBackReference(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(lower, "ibid.") || strings.Contains(lower, ", cit.")
}

// PageLocator returns the page reference of a note formatted for a citation
// command, e.g. "p. 30" or "pp. 12-14".
func PageLocator(text string) string {
	m := locatorPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + ". " + m[2]
}

// IsTranscription reports whether a note body mentions any of markers,
// case-insensitively. Transcription notes never enter the bibliography.
func IsTranscription(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
