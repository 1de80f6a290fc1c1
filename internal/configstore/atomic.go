package configstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix          = ".lock"
	temporaryFilePattern    = ".snapgrab-store-*"
	directoryPermissionMode = 0o755
)

// lockedAtomicWrite acquires an exclusive flock on a sibling lock file and
// replaces destinationPath through a write-temp-then-rename, so readers never
// observe a partial store and an interrupted write leaves the previous file
// untouched. The lock is released on every exit path.
func lockedAtomicWrite(destinationPath string, data []byte) error {
	destinationDirectory := filepath.Dir(destinationPath)
	if mkdirError := os.MkdirAll(destinationDirectory, directoryPermissionMode); mkdirError != nil {
		return fmt.Errorf("create store directory %s: %w", destinationDirectory, mkdirError)
	}

	storeLock := flock.New(destinationPath + lockFileSuffix)
	if lockError := storeLock.Lock(); lockError != nil {
		return fmt.Errorf("acquire store lock: %w", lockError)
	}
	defer storeLock.Unlock()

	return atomicWrite(destinationPath, data)
}

// atomicWrite writes data to a temporary file in the destination directory and
// renames it over destinationPath. The temporary file lives on the same
// filesystem as the destination, which keeps the rename atomic.
func atomicWrite(destinationPath string, data []byte) error {
	destinationDirectory := filepath.Dir(destinationPath)
	temporaryFile, createError := os.CreateTemp(destinationDirectory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf("create temporary store file: %w", createError)
	}
	temporaryPath := temporaryFile.Name()
	defer func() {
		if temporaryFile != nil {
			temporaryFile.Close()
			os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		return fmt.Errorf("write temporary store file: %w", writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return fmt.Errorf("sync temporary store file: %w", syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf("close temporary store file: %w", closeError)
	}
	if chmodError := os.Chmod(temporaryPath, storeFilePermissionMode); chmodError != nil {
		return fmt.Errorf("set store file permissions: %w", chmodError)
	}
	if renameError := os.Rename(temporaryPath, destinationPath); renameError != nil {
		return fmt.Errorf("replace store file %s: %w", destinationPath, renameError)
	}

	temporaryFile = nil
	return nil
}
