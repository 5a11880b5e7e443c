package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2tex/internal/entity"
	"github.com/alnah/go-md2tex/internal/fileutil"
	"github.com/alnah/go-md2tex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrEntitiesFile    = errors.New("failed to load entities file")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // Directory and file paths
	MaxNameLength     = 100  // Document stems, prefixes, entity names
	MaxCommandLength  = 50   // LaTeX command name
	MaxDateLength     = 10   // "1905", "c. 1905"
	MaxMarkerLength   = 50   // Transcription marker word
	MaxLanguageLength = 50   // Listings language name
)

// Log levels.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// Config holds all configuration for a conversion run.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Sections  SectionsConfig  `yaml:"sections"`
	Citations CitationsConfig `yaml:"citations"`
	Entities  EntitiesConfig  `yaml:"entities"`
	Listings  ListingsConfig  `yaml:"listings"`
	Logging   LoggingConfig   `yaml:"logging"`
	Audit     AuditConfig     `yaml:"audit"`
}

// InputConfig defines input source options.
type InputConfig struct {
	Dir   string   `yaml:"dir"`   // Directory holding the Markdown documents
	Order []string `yaml:"order"` // Document names in reading order (empty = all .md files, natural order)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir          string `yaml:"dir"`          // Directory receiving the sections and the index
	Bibliography string `yaml:"bibliography"` // BibTeX file path, relative to the working directory
	Index        string `yaml:"index"`        // Inclusion file name, inside Dir
}

// SectionsConfig defines how generated sections are named.
type SectionsConfig struct {
	IntroName      string `yaml:"introName"`      // Stem of the first document written as <introName>.tex
	ConclusionName string `yaml:"conclusionName"` // Stem of the last document written as <conclusionName>.tex
	Prefix         string `yaml:"prefix"`         // Body sections are <prefix><N>.tex
	IncludeDir     string `yaml:"includeDir"`     // Directory used in \input paths (default: output.dir)
}

// CitationsConfig defines citation collection options.
type CitationsConfig struct {
	TranscriptionMarkers []string `yaml:"transcriptionMarkers"` // Words flagging notes excluded from the bibliography
	PageFromNote         bool     `yaml:"pageFromNote"`         // Take the page locator from the note text when the marker has none
}

// EntitiesConfig defines the people annotated on first mention.
type EntitiesConfig struct {
	Command string          `yaml:"command"` // Annotation command, without backslash (default: "persona")
	File    string          `yaml:"file"`    // Optional YAML file holding a list of entities
	List    []entity.Entity `yaml:"list"`    // Inline entities, checked before those of File
}

// ListingsConfig defines code block options.
type ListingsConfig struct {
	Languages  map[string]string `yaml:"languages"`  // Code block tag to listings language, added to the built-in table
	LexerNames bool              `yaml:"lexerNames"` // Name unmapped tags after their syntax lexer
}

// LoggingConfig defines log output options.
type LoggingConfig struct {
	Level string `yaml:"level"` // "none", "normal", "debug" (default: "normal")
	File  string `yaml:"file"`  // Optional log file receiving debug output
}

// AuditConfig defines the optional audit database.
type AuditConfig struct {
	Database string `yaml:"database"` // SQLite file rebuilt on every run (empty = disabled)
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	// Validate paths
	for field, value := range map[string]string{
		"input.dir":           c.Input.Dir,
		"output.dir":          c.Output.Dir,
		"output.bibliography": c.Output.Bibliography,
		"output.index":        c.Output.Index,
		"sections.includeDir": c.Sections.IncludeDir,
		"entities.file":       c.Entities.File,
		"logging.file":        c.Logging.File,
		"audit.database":      c.Audit.Database,
	} {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}
	for i, name := range c.Input.Order {
		field := fmt.Sprintf("input.order[%d]", i)
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: %s: empty document name", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, name, MaxPathLength); err != nil {
			return err
		}
	}
	if strings.ContainsAny(c.Output.Index, `/\`) {
		return fmt.Errorf("%w: output.index: %q must be a file name", ErrInvalidValue, c.Output.Index)
	}

	// Validate sections
	if err := validateFieldLength("sections.introName", c.Sections.IntroName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("sections.conclusionName", c.Sections.ConclusionName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("sections.prefix", c.Sections.Prefix, MaxNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Sections.Prefix, `/\`) {
		return fmt.Errorf("%w: sections.prefix: %q must not contain path separators", ErrInvalidValue, c.Sections.Prefix)
	}

	// Validate citations
	for i, m := range c.Citations.TranscriptionMarkers {
		field := fmt.Sprintf("citations.transcriptionMarkers[%d]", i)
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("%w: %s: empty marker", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, m, MaxMarkerLength); err != nil {
			return err
		}
	}

	// Validate entities
	if err := validateFieldLength("entities.command", c.Entities.Command, MaxCommandLength); err != nil {
		return err
	}
	if c.Entities.Command != "" && !isCommandName(c.Entities.Command) {
		return fmt.Errorf("%w: entities.command: %q must contain letters only", ErrInvalidValue, c.Entities.Command)
	}
	if err := validateEntities("entities.list", c.Entities.List); err != nil {
		return err
	}

	// Validate listings
	for tag, name := range c.Listings.Languages {
		if err := validateFieldLength("listings.languages."+tag, name, MaxLanguageLength); err != nil {
			return err
		}
	}

	// Validate logging
	switch c.Logging.Level {
	case "", LevelNone, LevelNormal, LevelDebug:
		// valid
	default:
		return fmt.Errorf("%w: logging.level: %q (must be none, normal, or debug)", ErrInvalidValue, c.Logging.Level)
	}

	return nil
}

// validateEntities checks names and dates of an entity list.
func validateEntities(field string, list []entity.Entity) error {
	for i, e := range list {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: %s.name: required", ErrInvalidValue, prefix)
		}
		if err := validateFieldLength(prefix+".name", e.Name, MaxNameLength); err != nil {
			return err
		}
		for j, v := range e.Variants {
			if err := validateFieldLength(fmt.Sprintf("%s.variants[%d]", prefix, j), v, MaxNameLength); err != nil {
				return err
			}
		}
		if err := validateFieldLength(prefix+".birth", e.Birth, MaxDateLength); err != nil {
			return err
		}
		if err := validateFieldLength(prefix+".death", e.Death, MaxDateLength); err != nil {
			return err
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// isCommandName reports whether s is a valid LaTeX control word.
func isCommandName(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{Dir: "MarkDownSections"},
		Output: OutputConfig{Dir: "sections", Bibliography: "bibliography_generated.bib", Index: "all.tex"},
		Sections: SectionsConfig{
			IntroName:      "introduzione",
			ConclusionName: "conclusione",
			Prefix:         "sezione",
		},
		Citations: CitationsConfig{
			TranscriptionMarkers: []string{"trascrizione", "transcription"},
			PageFromNote:         true,
		},
		Entities: EntitiesConfig{Command: entity.DefaultCommand},
		Logging:  LoggingConfig{Level: LevelNormal},
	}
}

// AllEntities returns the inline entities followed by those of the entities
// file, if any. A relative file path is resolved against baseDir.
func (c *Config) AllEntities(baseDir string) ([]entity.Entity, error) {
	list := append([]entity.Entity(nil), c.Entities.List...)
	if c.Entities.File == "" {
		return list, nil
	}

	path := c.Entities.File
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	var fromFile []entity.Entity
	if err := yamlutil.ReadFileStrict(path, &fromFile); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEntitiesFile, path, err)
	}
	if err := validateEntities(path, fromFile); err != nil {
		return nil, err
	}
	return append(list, fromFile...), nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, string, error) {
	if nameOrPath == "" {
		return nil, "", ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, "", err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, "", fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, configPath, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return fileutil.IsFilePath(s) || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// SearchPaths lists the files tried for a config name, in lookup order:
// the current directory, then the user config directory (go-md2tex/),
// each with .yaml then .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-md2tex", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
