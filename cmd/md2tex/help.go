package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert Markdown documents to LaTeX sections and BibTeX")
	fmt.Fprintln(w, "  check      Report Markdown the conversion leaves unconverted")
	fmt.Fprintln(w, "  init       Write a sample configuration")
	fmt.Fprintln(w, "  config     Show the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2tex help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by commands.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-file <path>     Write a debug log to this file")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex convert [documents...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown documents to LaTeX sections, a BibTeX file and an index.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  documents    Document names inside the input directory, in reading order")
	fmt.Fprintln(w, "               (default: input.order, or every .md file in natural order)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input-dir <dir>     Directory holding the documents")
	fmt.Fprintln(w, "  -o, --output-dir <dir>    Directory receiving the sections and the index")
	fmt.Fprintln(w, "      --bib <path>          BibTeX output file")
	fmt.Fprintln(w, "      --index <name>        Inclusion file name")
	fmt.Fprintln(w, "      --db <path>           SQLite audit database, rebuilt on every run")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2TEX_CONFIG, MD2TEX_INPUT_DIR, MD2TEX_OUTPUT_DIR, MD2TEX_BIB, MD2TEX_INDEX,")
	fmt.Fprintln(w, "  MD2TEX_DB, MD2TEX_ENTITIES_FILE, MD2TEX_LOG_LEVEL, MD2TEX_LOG_FILE")
	fmt.Fprintln(w, "  A .env file in the working directory is read first.")
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex check [documents...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Report headings, emphasis, links, images, tables, code languages and notes")
	fmt.Fprintln(w, "the conversion does not handle. Exits with 1 when findings were reported.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -i, --input-dir <dir>     Directory holding the documents")
	printCommonUsage(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex init [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write md2tex.yaml, people.yaml and persona.sty into dir (default: .).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --force               Overwrite existing files")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the configuration after file, environment and flags are applied.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2tex version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2tex help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
