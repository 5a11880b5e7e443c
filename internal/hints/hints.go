// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// userConfigMarker identifies the per-user config directory in searched paths.
const userConfigMarker = "go-md2tex"

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or run md2tex init"

	// Find a user config path to suggest
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "/"+userConfigMarker+"/") {
			hint += "; or create " + p
			break
		}
	}

	return format(hint)
}

// ForInputDirectory returns hints for an unreadable or empty input directory.
func ForInputDirectory(dir string) string {
	return format("put the .md documents in " + dir + " or use --input-dir")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForEntitiesFile returns hints for an entities file that cannot be loaded.
func ForEntitiesFile() string {
	return format("the file must be a YAML list of {name, variants}; see md2tex init")
}

// ForAuditDatabase returns hints for audit database errors.
func ForAuditDatabase() string {
	return format("check the --db path is writable, or leave it empty to skip the audit")
}

// ForUnresolvedCitations returns a hint when some citations found no entry.
func ForUnresolvedCitations(count int) string {
	if count == 0 {
		return ""
	}
	return format("write each source in full once (Author, Title, Year) before citing it as \"cit.\" or \"Ibid.\"")
}

// ForSampleNotFound returns hints listing the available samples.
func ForSampleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
