package main

import (
	"errors"
	"os"

	md2tex "github.com/alnah/go-md2tex"
	"github.com/alnah/go-md2tex/internal/assets"
	"github.com/alnah/go-md2tex/internal/auditdb"
	"github.com/alnah/go-md2tex/internal/config"
)

// Exit codes for md2tex CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion, or check without findings
	ExitGeneral = 1 // General/unexpected error, or check with findings
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEntitiesFile) ||
		errors.Is(err, md2tex.ErrInvalidSectionPrefix) ||
		errors.Is(err, assets.ErrSampleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, os.ErrExist) ||
		errors.Is(err, md2tex.ErrNoDocuments) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, auditdb.ErrDatabase) {
		return ExitIO
	}

	return ExitGeneral
}
