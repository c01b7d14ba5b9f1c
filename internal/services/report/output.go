package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName derives the report file name from the destination:
// spaces become underscores and commas are dropped
// ("Tokyo, Japan" -> "travel_report_Tokyo_Japan.pdf"). Path separators are
// replaced so the name always stays inside its directory.
func DefaultFileName(destination string) string {
	name := strings.TrimSpace(destination)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ",", "")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		name = "untitled"
	}
	return "travel_report_" + name + ".pdf"
}

// ResolveOutputPath returns outputPath when given, joined with the default file
// name when it names an existing directory. Without an explicit path the
// report goes to dir.
func ResolveOutputPath(outputPath, dir, destination string) string {
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return filepath.Join(dir, DefaultFileName(destination))
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		return filepath.Join(outputPath, DefaultFileName(destination))
	}
	return outputPath
}

// writeFileAtomic writes data to a temp file in the destination directory and
// renames it into place, so a failed write never leaves a partial file behind.
func writeFileAtomic(dest string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".travelpdf-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, perm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
