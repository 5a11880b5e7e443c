package md2tex

import (
	"errors"
	"testing"
)

func TestLayout_FileName(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	tests := []struct {
		name     string
		order    []string
		expected []string
	}{
		{
			name:     "introduction and conclusion",
			order:    []string{"introduzione.md", "cap1.md", "cap2.md", "conclusione.md"},
			expected: []string{"introduzione.tex", "sezione1.tex", "sezione2.tex", "conclusione.tex"},
		},
		{
			name:     "no introduction",
			order:    []string{"cap1.md", "cap2.md"},
			expected: []string{"sezione1.tex", "sezione2.tex"},
		},
		{
			name:     "introduction not first",
			order:    []string{"cap1.md", "introduzione.md"},
			expected: []string{"sezione1.tex", "sezione2.tex"},
		},
		{
			name:     "conclusion not last",
			order:    []string{"conclusione.md", "cap1.md"},
			expected: []string{"sezione1.tex", "sezione2.tex"},
		},
		{
			name:     "single conclusion",
			order:    []string{"conclusione.md"},
			expected: []string{"conclusione.tex"},
		},
		{
			name:     "stems compared ignoring case",
			order:    []string{"Introduzione.md", "cap1.md", "CONCLUSIONE.md"},
			expected: []string{"introduzione.tex", "sezione1.tex", "conclusione.tex"},
		},
		{
			name:     "paths are reduced to stems",
			order:    []string{"docs/introduzione.md", `docs\cap1.markdown`},
			expected: []string{"introduzione.tex", "sezione1.tex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for pos, want := range tt.expected {
				if got := l.FileName(pos, tt.order); got != want {
					t.Errorf("FileName(%d) = %q, want %q", pos, got, want)
				}
			}
		})
	}
}

func TestLayout_FileNameOutOfRange(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	for _, pos := range []int{-1, 1} {
		if got := l.FileName(pos, []string{"a.md"}); got != "" {
			t.Errorf("FileName(%d) = %q, want empty", pos, got)
		}
	}
}

func TestLayout_Index(t *testing.T) {
	t.Parallel()

	got := DefaultLayout().Index([]string{"introduzione.tex", "sezione1.tex"})
	expected := "% --- Auto-generated include file ---\n" +
		"\\input{sections/introduzione.tex}  % Auto-generated: include introduzione.tex\n" +
		"\\input{sections/sezione1.tex}  % Auto-generated: include sezione1.tex\n"
	if got != expected {
		t.Errorf("Index() =\n%q\nwant\n%q", got, expected)
	}

	if got := DefaultLayout().Index(nil); got != indexHeader {
		t.Errorf("Index(nil) = %q, want header only", got)
	}
}

func TestLayout_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Layout{SectionPrefix: "chapter"}.withDefaults()
	expected := Layout{
		IntroName:      DefaultIntroName,
		ConclusionName: DefaultConclusionName,
		SectionPrefix:  "chapter",
		IncludeDir:     DefaultIncludeDir,
	}
	if got != expected {
		t.Errorf("withDefaults() = %+v, want %+v", got, expected)
	}
}

func TestLayout_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix  string
		wantErr bool
	}{
		{"sezione", false},
		{"part-", false},
		{"a/b", true},
		{`a\b`, true},
	}

	for _, tt := range tests {
		err := Layout{SectionPrefix: tt.prefix}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidSectionPrefix) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidSectionPrefix", tt.prefix, err)
		}
	}
}
