package imgresize

import (
	"path/filepath"
	"strings"
)

// OutputPaths returns intermediate and final artifact paths for the input
// path. Both are derived from the path only, so re-running the same batch
// overwrites the same files.
func OutputPaths(path string, cfg Config) (intermediate, final string) {
	stem := strings.TrimSuffix(path, extension(path))
	intermediate = stem + cfg.Suffix + cfg.IntermediateExt
	final = strings.TrimSuffix(intermediate, extension(intermediate)) + cfg.FinalExt
	return intermediate, final
}

// extension returns the file name extension. Leading dots of the base name
// are part of the stem, so ".png" has no extension.
func extension(path string) string {
	return filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
}
