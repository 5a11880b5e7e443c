package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-md2tex/internal/assets"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the working directory and sample loading.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	WorkDir string // base of relative paths; empty means the process working directory
	Samples assets.SampleLoader
}

// DefaultEnv returns production environment with embedded samples.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Samples: assets.NewEmbeddedLoader(),
	}
}

// path resolves a relative path against WorkDir.
func (e *Environment) path(p string) string {
	if p == "" || e.WorkDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.WorkDir, p)
}
