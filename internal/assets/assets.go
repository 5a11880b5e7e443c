package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadSample loads a sample by stem using the default embedded loader.
// Returns ErrSampleNotFound if the sample does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadSample(name string) (*Sample, error) {
	return defaultLoader.LoadSample(name)
}

// Samples lists the embedded sample stems.
func Samples() []string {
	return defaultLoader.Samples()
}
