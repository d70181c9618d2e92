package manifest

import (
	"sort"
	"strings"
)

// InstallSuffix marks a manifest file as a package list to dispatch.
const InstallSuffix = ".install"

// Manifest maps a backup file name to its raw text content.
type Manifest map[string]string

// IsInstallFile reports whether name carries the install marker suffix.
func IsInstallFile(name string) bool {
	return strings.HasSuffix(name, InstallSuffix)
}

// Key derives the installer lookup key from an install file name,
// e.g. "brew.install" -> "brew". The suffix is removed exactly once.
func Key(name string) string {
	return strings.TrimSuffix(name, InstallSuffix)
}

// InstallFiles returns the names of every install file, sorted so runs are reproducible.
func (m Manifest) InstallFiles() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		if IsInstallFile(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Items splits file content into its non-empty lines, in order.
func Items(content string) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}
