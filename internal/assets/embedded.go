package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed samples/*
var samples embed.FS

const samplesDir = "samples"

// EmbeddedLoader loads samples from the embedded filesystem.
// Implements SampleLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadSample loads a sample by stem, whatever its extension.
func (e *EmbeddedLoader) LoadSample(name string) (*Sample, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	matches, err := fs.Glob(samples, path.Join(samplesDir, name+".*"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, name)
	}

	content, err := samples.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, name)
	}

	return &Sample{Name: name, FileName: path.Base(matches[0]), Content: string(content)}, nil
}

// Samples lists the embedded sample stems, sorted.
func (e *EmbeddedLoader) Samples() []string {
	entries, err := samples.ReadDir(samplesDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		n := entry.Name()
		names = append(names, strings.TrimSuffix(n, path.Ext(n)))
	}
	sort.Strings(names)
	return names
}

// ValidateAssetName checks that a sample stem is safe to look up.
// Returns ErrInvalidAssetName if the name is empty or contains path separators
// or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.*?[") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// Compile-time interface check.
var _ SampleLoader = (*EmbeddedLoader)(nil)
