package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrSampleNotFound indicates the requested sample does not exist.
	ErrSampleNotFound = errors.New("sample not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")
)
