package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// parseFormats splits a comma-separated --format value, falling back to def.
func parseFormats(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// basePath strips a known format extension from output, or derives a file
// name from the taxon name when output is empty.
func basePath(output, name string, formats []string) string {
	if output == "" {
		return slug(name)
	}
	ext := filepath.Ext(output)
	if slices.Contains(formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// slug turns a taxon name into a file name: "Panthera leo" -> "panthera-leo".
func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	if s == "" {
		return appName
	}
	return s
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim when given; otherwise files are named <base>.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, name string) ([]string, error) {
	base := basePath(output, name, formats)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
