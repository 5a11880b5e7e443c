package md2tex

import "errors"

// Sentinel errors for library operations.
var (
	ErrNoDocuments = errors.New("no documents to convert")
	ErrRewrite     = errors.New("rewriting document failed")

	// Layout validation errors.
	ErrInvalidSectionPrefix = errors.New("invalid section prefix")
)
