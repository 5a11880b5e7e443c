// Package assets provides the sample files written by "md2tex init".
//
// Samples are embedded at compile time:
//
//	samples/
//	├── config.yaml   # annotated configuration with every default
//	├── people.yaml   # entities file referenced by config.yaml
//	└── persona.sty   # LaTeX package defining the commands md2tex emits
//
// A sample is addressed by the file stem ("config", "people", "persona").
// Names are validated to prevent path traversal.
package assets
