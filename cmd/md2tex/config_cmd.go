package main

import (
	"fmt"

	"github.com/alnah/go-md2tex/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	lc, err := loadConfig(*flags, env)
	if err != nil {
		return err
	}
	if err := lc.validate(); err != nil {
		return err
	}

	data, err := yamlutil.Marshal(lc.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if lc.path != "" {
		fmt.Fprintf(env.Stdout, "# loaded from %s\n", lc.path)
	} else {
		fmt.Fprintln(env.Stdout, "# defaults (no config file found)")
	}
	_, err = env.Stdout.Write(data)
	return err
}
