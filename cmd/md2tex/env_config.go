package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-md2tex/internal/config"
	"github.com/alnah/go-md2tex/internal/fileutil"
)

// dotEnvFile is read from the working directory when present.
const dotEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // MD2TEX_CONFIG: config file name or path
	InputDir   string // MD2TEX_INPUT_DIR: directory holding the documents
	OutputDir  string // MD2TEX_OUTPUT_DIR: directory receiving the sections

	// Tier 2 - Outputs
	Bibliography string // MD2TEX_BIB: BibTeX file path
	Index        string // MD2TEX_INDEX: inclusion file name
	Database     string // MD2TEX_DB: audit database path

	// Tier 3 - Extended
	EntitiesFile string // MD2TEX_ENTITIES_FILE: entities YAML file
	LogLevel     string // MD2TEX_LOG_LEVEL: none, normal, debug
	LogFile      string // MD2TEX_LOG_FILE: debug log file
}

// knownEnvVars lists valid MD2TEX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MD2TEX_CONFIG":     true,
	"MD2TEX_INPUT_DIR":  true,
	"MD2TEX_OUTPUT_DIR": true,
	// Tier 2 - Outputs
	"MD2TEX_BIB":   true,
	"MD2TEX_INDEX": true,
	"MD2TEX_DB":    true,
	// Tier 3 - Extended
	"MD2TEX_ENTITIES_FILE": true,
	"MD2TEX_LOG_LEVEL":     true,
	"MD2TEX_LOG_FILE":      true,
}

// loadDotEnv reads .env from the working directory into the process
// environment. Variables already set are never overridden.
func loadDotEnv(env *Environment) {
	path := env.path(dotEnvFile)
	if !fileutil.FileExists(path) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(env.Stderr, "warning: ignoring %s: %v\n", path, err)
	}
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MD2TEX_* values.
func loadEnvConfig() *envConfig {
	return &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("MD2TEX_CONFIG"),
		InputDir:   os.Getenv("MD2TEX_INPUT_DIR"),
		OutputDir:  os.Getenv("MD2TEX_OUTPUT_DIR"),
		// Tier 2
		Bibliography: os.Getenv("MD2TEX_BIB"),
		Index:        os.Getenv("MD2TEX_INDEX"),
		Database:     os.Getenv("MD2TEX_DB"),
		// Tier 3
		EntitiesFile: os.Getenv("MD2TEX_ENTITIES_FILE"),
		LogLevel:     os.Getenv("MD2TEX_LOG_LEVEL"),
		LogFile:      os.Getenv("MD2TEX_LOG_FILE"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized MD2TEX_* variables.
// Helps catch typos like MD2TEX_OUPUT_DIR instead of MD2TEX_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MD2TEX_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// The config already holds file values over defaults, so a set variable
// always wins: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - I/O
	setIfNotEmpty(&cfg.Input.Dir, env.InputDir)
	setIfNotEmpty(&cfg.Output.Dir, env.OutputDir)

	// Tier 2 - Outputs
	setIfNotEmpty(&cfg.Output.Bibliography, env.Bibliography)
	setIfNotEmpty(&cfg.Output.Index, env.Index)
	setIfNotEmpty(&cfg.Audit.Database, env.Database)

	// Tier 3 - Extended
	setIfNotEmpty(&cfg.Entities.File, env.EntitiesFile)
	setIfNotEmpty(&cfg.Logging.Level, env.LogLevel)
	setIfNotEmpty(&cfg.Logging.File, env.LogFile)
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
