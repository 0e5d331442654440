// =============================================================================
// PackOut Sync - File Manager Utility
// =============================================================================
//
// File handling shared by the commands:
//   - SQL input discovery (a single file or every *.sql in a directory)
//   - byte-preserving line split/join for the line patcher
//   - atomic output writes via a uuid-named temp file and rename
//   - backup copies before in-place overwrites
//
// WRITE STRATEGY:
//   The patched document is written to a temp file in the target directory
//   and renamed over the destination, so a crash mid-write never leaves a
//   truncated PackOut.xml behind.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CollectSQLFiles resolves the SQL input argument to a list of files. A
// directory yields every *.sql file in it, sorted by name; a file yields
// itself. Anything else is an error.
func CollectSQLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("SQL input not found: %s", path)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list SQL files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadLines reads a file and splits it on newlines without discarding any
// bytes: carriage returns stay attached to their lines, and a trailing
// newline round-trips through JoinLines unchanged.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// JoinLines is the exact inverse of ReadLines' split.
func JoinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// WriteFileAtomic writes data to path through a uniquely named temp file in
// the same directory, then renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// BackupFile copies path to path.bak, overwriting any previous backup.
func BackupFile(path string) (string, error) {
	backup := path + ".bak"

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(backup)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", backup, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy to %s: %w", backup, err)
	}
	return backup, nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
