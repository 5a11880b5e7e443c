package assets

// Sample is an embedded file ready to be written to disk.
type Sample struct {
	Name     string // stem used to address the sample
	FileName string // file name written by init
	Content  string
}

// SampleLoader defines the contract for loading sample files.
type SampleLoader interface {
	// LoadSample loads a sample by stem.
	// Returns ErrSampleNotFound if the sample doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadSample(name string) (*Sample, error)

	// Samples lists the available stems, sorted.
	Samples() []string
}
