package yamlutil_test

// Notes:
// - Marshal error branch: not tested because yaml.Marshal only fails with
//   unmarshalable types (channels, functions), not realistic here.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2tex/internal/yamlutil"
)

type person struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
	Birth    string   `yaml:"birth"`
}

type document struct {
	Entities []person `yaml:"entities"`
	Prefix   string   `yaml:"prefix"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict_Decodes - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshalStrict_Decodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "entity list",
			data: []byte("prefix: sezione\nentities:\n  - name: Giacinto Scelsi\n    variants: [Giacinto Scelsi, Scelsi]\n    birth: \"1905\"\n"),
			dest: &document{},
			check: func(t *testing.T, v any) {
				d := v.(*document)
				if d.Prefix != "sezione" {
					t.Errorf("Prefix = %q, want sezione", d.Prefix)
				}
				if len(d.Entities) != 1 || len(d.Entities[0].Variants) != 2 {
					t.Fatalf("Entities = %+v", d.Entities)
				}
				if d.Entities[0].Birth != "1905" {
					t.Errorf("Birth = %q, want 1905", d.Entities[0].Birth)
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &document{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("prefix: x"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid YAML syntax",
			data:    []byte("prefix: [unclosed"),
			dest:    &document{},
			wantErr: errors.New("yamlutil:"),
		},
		{
			name: "unicode content",
			data: []byte("prefix: capitolo\nentities:\n  - name: Iannis Xenakis\n    variants: [Ξενάκης]\n"),
			dest: &document{},
			check: func(t *testing.T, v any) {
				if got := v.(*document).Entities[0].Variants[0]; got != "Ξενάκης" {
					t.Errorf("variant = %q, want Ξενάκης", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			checkResult(t, err, tt.wantErr)
			if err == nil && tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"known fields", []byte("prefix: sezione"), nil},
		{"unknown top-level field", []byte("prefix: x\nsufix: y"), errors.New("yamlutil:")},
		{"unknown nested field", []byte("entities:\n  - name: A\n    born: 1900\n"), errors.New("yamlutil:")},
		{"empty data", []byte{}, yamlutil.ErrNilData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			checkResult(t, yamlutil.UnmarshalStrict(tt.data, &document{}), tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - Reads and decodes files
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("prefix: parte\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("nope: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var d document
	if err := yamlutil.ReadFileStrict(good, &d); err != nil {
		t.Fatalf("ReadFileStrict(good) error = %v", err)
	}
	if d.Prefix != "parte" {
		t.Errorf("Prefix = %q, want parte", d.Prefix)
	}

	if err := yamlutil.ReadFileStrict(bad, &document{}); err == nil {
		t.Error("ReadFileStrict(bad) error = nil, want unknown field error")
	}

	err := yamlutil.ReadFileStrict(filepath.Join(dir, "missing.yaml"), &document{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFileStrict(missing) error = %v, want os.ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Serializes Go structs to YAML
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(&document{
		Prefix:   "sezione",
		Entities: []person{{Name: "Giacinto Scelsi", Birth: "1905"}},
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{"prefix: sezione", "name: Giacinto Scelsi", `birth: "1905"`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q, got:\n%s", want, s)
		}
	}
	if strings.Index(s, "entities:") > strings.Index(s, "prefix:") {
		t.Errorf("fields out of declaration order:\n%s", s)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Note: This test modifies the global MaxInputSize variable, so it cannot
// run in parallel with other tests to avoid data races.

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })
	yamlutil.MaxInputSize = 50

	data := []byte("prefix: " + strings.Repeat("x", 92))
	err := yamlutil.UnmarshalStrict(data, &document{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "100 bytes") || !strings.Contains(msg, "max 50") {
		t.Errorf("error = %q, want sizes", msg)
	}

	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := yamlutil.ReadFileStrict(path, &document{}); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("ReadFileStrict() error = %v, want ErrInputTooLarge", err)
	}
}

func checkResult(t *testing.T, err, wantErr error) {
	t.Helper()
	if wantErr == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", wantErr)
	}
	if errors.Is(err, wantErr) {
		return
	}
	if !strings.Contains(err.Error(), wantErr.Error()) {
		t.Fatalf("error = %q, want containing %q", err, wantErr)
	}
}
