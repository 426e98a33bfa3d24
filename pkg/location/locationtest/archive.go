// Package locationtest builds archive locations for tests.
package locationtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// Archive writes the contents of sourceDir to archivePath. The archive
// format follows the extension of archivePath: .zip, or gzipped tar for
// anything else.
func Archive(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	var format archives.Archiver = archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if strings.EqualFold(filepath.Ext(archivePath), ".zip") {
		format = archives.Zip{}
	}

	if err := format.Archive(ctx, file, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}
