package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-md2tex/internal/config"
	"github.com/alnah/go-md2tex/internal/fileutil"
	"github.com/alnah/go-md2tex/internal/hints"
)

// defaultConfigName is looked up when neither --config nor MD2TEX_CONFIG is set.
const defaultConfigName = "md2tex"

// loadedConfig is the effective configuration of one command.
type loadedConfig struct {
	cfg     *config.Config
	path    string // file the config was read from, empty for defaults
	baseDir string // directory relative entity files are resolved against
}

// loadConfig builds the effective configuration:
// CLI flags > env vars > config file > defaults. Flags are applied by the
// caller through merge before validate is called.
func loadConfig(f commonFlags, env *Environment) (*loadedConfig, error) {
	envCfg := loadEnvConfig()

	name := f.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	lc := &loadedConfig{cfg: config.DefaultConfig(), baseDir: env.WorkDir}
	if name != "" {
		cfg, path, err := config.LoadConfig(configArg(name, env))
		if err != nil {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		lc.cfg, lc.path = cfg, path
	} else {
		for _, p := range config.SearchPaths(defaultConfigName) {
			p = env.path(p)
			if !fileutil.FileExists(p) {
				continue
			}
			cfg, path, err := config.LoadConfig(p)
			if err != nil {
				return nil, fmt.Errorf("loading config: %w", err)
			}
			lc.cfg, lc.path = cfg, path
			break
		}
	}
	if lc.path != "" {
		lc.baseDir = filepath.Dir(lc.path)
	}

	applyEnvConfig(envCfg, lc.cfg)

	// Logging flags
	switch {
	case f.quiet:
		lc.cfg.Logging.Level = config.LevelNone
	case f.verbose:
		lc.cfg.Logging.Level = config.LevelDebug
	}
	setIfNotEmpty(&lc.cfg.Logging.File, f.logFile)

	return lc, nil
}

// validate checks the configuration once every source has been applied.
func (lc *loadedConfig) validate() error {
	if err := lc.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// logger builds the command logger from the logging configuration.
func (lc *loadedConfig) logger(env *Environment) (*zap.Logger, func() error, error) {
	logging := lc.cfg.Logging
	logging.File = env.path(logging.File)
	logger, closer, err := logging.Prepare(env.Stdout, env.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	return logger, closer, nil
}

// configArg resolves file-like config names against the working directory.
func configArg(name string, env *Environment) string {
	if fileutil.IsFilePath(name) || strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return env.path(name)
	}
	return name
}
