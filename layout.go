package md2tex

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Layout defaults.
const (
	DefaultIntroName      = "introduzione"
	DefaultConclusionName = "conclusione"
	DefaultSectionPrefix  = "sezione"
	DefaultIncludeDir     = "sections"
)

const (
	texExt      = ".tex"
	indexHeader = "% --- Auto-generated include file ---\n"
)

// Layout names generated sections and renders the file including them.
type Layout struct {
	IntroName      string // document stem written as <IntroName>.tex when first
	ConclusionName string // document stem written as <ConclusionName>.tex when last
	SectionPrefix  string // body sections are <SectionPrefix><N>.tex
	IncludeDir     string // directory prefixed to every \input path
}

// DefaultLayout returns the layout used when none is configured.
func DefaultLayout() Layout {
	return Layout{
		IntroName:      DefaultIntroName,
		ConclusionName: DefaultConclusionName,
		SectionPrefix:  DefaultSectionPrefix,
		IncludeDir:     DefaultIncludeDir,
	}
}

func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.IntroName == "" {
		l.IntroName = d.IntroName
	}
	if l.ConclusionName == "" {
		l.ConclusionName = d.ConclusionName
	}
	if l.SectionPrefix == "" {
		l.SectionPrefix = d.SectionPrefix
	}
	if l.IncludeDir == "" {
		l.IncludeDir = d.IncludeDir
	}
	return l
}

// Validate checks that generated names stay inside the output directory.
func (l Layout) Validate() error {
	if strings.ContainsAny(l.SectionPrefix, `/\`) {
		return fmt.Errorf("%w: %q (must not contain path separators)", ErrInvalidSectionPrefix, l.SectionPrefix)
	}
	return nil
}

// FileName returns the output file name of the document at pos in order.
// The first document is the introduction when its stem is IntroName, the
// last is the conclusion when its stem is ConclusionName, ignoring case.
// Body sections are numbered from 1, counting the introduction as section 0
// when present.
func (l Layout) FileName(pos int, order []string) string {
	if pos < 0 || pos >= len(order) {
		return ""
	}
	stem := documentStem(order[pos])
	switch {
	case pos == 0 && strings.EqualFold(stem, l.IntroName):
		return l.IntroName + texExt
	case pos == len(order)-1 && strings.EqualFold(stem, l.ConclusionName):
		return l.ConclusionName + texExt
	}

	n := pos + 1
	if strings.EqualFold(documentStem(order[0]), l.IntroName) {
		n = pos
	}
	return l.SectionPrefix + strconv.Itoa(n) + texExt
}

// Index renders the inclusion file for files, in order.
func (l Layout) Index(files []string) string {
	var b strings.Builder
	b.WriteString(indexHeader)
	for _, f := range files {
		fmt.Fprintf(&b, "\\input{%s}  %% Auto-generated: include %s\n", path.Join(l.IncludeDir, f), f)
	}
	return b.String()
}

// documentStem returns the base name of a document without its extension.
func documentStem(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
