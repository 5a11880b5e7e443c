package pipeline

// Notes:
// - Each pass is tested directly; TestRewrite checks ordering and protection
//   through the public Rewrite entry point with fake Citer and Tagger.

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeCiter struct{}

func (fakeCiter) Substitute(document, text string) string {
	return strings.Replace(text, "[^1]", `\cite{`+document+`}`, 1)
}

type fakeTagger struct{}

func (fakeTagger) Tag(text string) string {
	return strings.ReplaceAll(text, "Scelsi", `\persona{Scelsi}{1905}{1988}`)
}

// ---------------------------------------------------------------------------
// TestRewrite - Pass Composition
// ---------------------------------------------------------------------------

func TestRewrite(t *testing.T) {
	t.Parallel()

	input := "# Intro {#intro}\r\n\r\n" +
		"Scelsi said **hi**[^1] at 50% ~ \"quoted\"...\n\n\n\n" +
		"```bash\necho **x** 50% \"q\" ~\n```\n\n" +
		"Use `a_b` now.\n\n" +
		"[^1]: Eco, U., \"Opera aperta\", 1962.\n"

	r := NewRewriter(WithCiter(fakeCiter{}), WithTagger(fakeTagger{}))
	got, err := r.Rewrite(context.Background(), "cap1.md", input)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	expected := "\\section{Intro}\n\n" +
		"\\persona{Scelsi}{1905}{1988} said \\textbf{hi}\\cite{cap1.md} at 50\\% \\textasciitilde{} \\textit{quoted}\\ldots{}\n\n" +
		"\\begin{lstlisting}[language=bash]\necho **x** 50% \"q\" ~\n\\end{lstlisting}\n\n" +
		"Use \\texttt{a\\_b} now.\n\n"
	if got != expected {
		t.Errorf("Rewrite() =\n%q\nwant\n%q", got, expected)
	}
}

func TestRewrite_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRewriter().Rewrite(ctx, "a.md", "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Rewrite() error = %v, want context.Canceled", err)
	}
}

func TestRewrite_LogsChangedPasses(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRewriter(WithLogger(zap.New(core)))
	if _, err := r.Rewrite(context.Background(), "a.md", "**b**"); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterMessage("pass applied").All()
	if len(entries) != 1 {
		t.Fatalf("got %d pass logs, want 1", len(entries))
	}
	if pass := entries[0].ContextMap()["pass"]; pass != "bold" {
		t.Errorf("pass = %v, want bold", pass)
	}
}

func TestPasses_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, p := range NewRewriter().Passes("a.md") {
		names = append(names, p.Name)
	}
	expected := []string{
		"transcriptions", "bold", "italics", "tilde", "percent", "ellipsis", "math",
		"codeblocks", "inlinecode", "headings", "lists", "entities", "citations",
		"definitions", "paragraphs",
	}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Passes() = %v, want %v", names, expected)
	}
}

func TestProvenance(t *testing.T) {
	t.Parallel()

	got := Provenance("capitolo1.md", 2)
	if got != "% --- Auto-generated from capitolo1.md (section 2) ---\n\n" {
		t.Errorf("Provenance() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Inline passes
// ---------------------------------------------------------------------------

func TestStripTranscriptions(t *testing.T) {
	t.Parallel()

	markers := []string{"trascrizione", "transcription"}
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "definition and markers removed",
			input:    "Quote[^1] and [^1, p. 2] and [^2, p. 3].\n\n[^1]: Trascrizione dell'intervista.\n[^2]: Eco, U., 1962.\n",
			expected: "Quote and  and [^2, p. 3].\n\n[^2]: Eco, U., 1962.\n",
		},
		{
			name:     "longer key untouched",
			input:    "a[^1] b[^10]\n[^1]: Transcription of tape.\n",
			expected: "a b[^10]\n",
		},
		{
			name:     "no transcriptions",
			input:    "a[^1]\n[^1]: Eco.\n",
			expected: "a[^1]\n[^1]: Eco.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := stripTranscriptions(tt.input, markers); got != tt.expected {
				t.Errorf("stripTranscriptions(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInlinePasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       func(string) string
		input    string
		expected string
	}{
		{"bold", convertBold, "a **b** c **d**", `a \textbf{b} c \textbf{d}`},
		{"straight quotes", convertItalics, `say "x" now`, `say \textit{x} now`},
		{"curly quotes", convertItalics, "say “x” now", `say \textit{x} now`},
		{"doubled single quotes", convertItalics, "say ''x'' now", `say \textit{x} now`},
		{"doubled curly quotes", convertItalics, "say ‘‘x’’ now", `say \textit{x} now`},
		{"unbalanced quote", convertItalics, "a \"b\nc\" d", "a \"b\nc\" d"},
		{"tilde", convertTilde, "~5", `\textasciitilde{}5`},
		{"percent", escapePercent, "50%", `50\%`},
		{"ellipsis", convertEllipsis, "wait... and…....", `wait\ldots{} and\ldots{}\ldots{}`},
		{"exponent", convertMath, "2^20 bytes", `$2^{20}$ bytes`},
		{"symbols", convertMath, "x ≈ π × 2 ÷ 3", `x $\approx$ $\pi$ $\times$ 2 $\div$ 3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.fn(tt.input); got != tt.expected {
				t.Errorf("%s(%q) = %q, want %q", tt.name, tt.input, got, tt.expected)
			}
		})
	}
}

func TestPasses_ProtectCode(t *testing.T) {
	t.Parallel()

	r := NewRewriter()
	inputs := []string{
		"`a **b** 50% ~ \"c\"...`",
		"```\n2^3 ≈ **b**\n```",
	}
	for _, p := range r.Passes("a.md") {
		switch p.Name {
		case "bold", "italics", "tilde", "percent", "ellipsis", "math":
		default:
			continue
		}
		for _, in := range inputs {
			if got := p.Apply(in); got != in {
				t.Errorf("pass %s changed code %q to %q", p.Name, in, got)
			}
		}
	}
}

func TestMath_ProtectsExistingMath(t *testing.T) {
	t.Parallel()

	var math Pass
	for _, p := range NewRewriter().Passes("a.md") {
		if p.Name == "math" {
			math = p
		}
	}
	input := `$2^3 ≈ x$ and \emph{π}`
	if got := math.Apply(input); got != input {
		t.Errorf("math pass = %q, want unchanged", got)
	}
}
