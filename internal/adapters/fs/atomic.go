package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/nftgen/internal/core/domain"
)

// WriteFileAtomic writes data to a file atomically by writing to a temp file
// in the same directory and renaming it over path.
func WriteFileAtomic(path string, data []byte) error {
	tmpName, err := StageFile(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp", data)
	if err != nil {
		return err
	}

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	return os.Rename(tmpName, path)
}

// StageFile writes data to a new temp file in dir and returns its name.
// The caller publishes it with a rename or link and removes it on failure.
func StageFile(dir, pattern string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return "", err
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return "", err
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}

	return tmpName, nil
}
