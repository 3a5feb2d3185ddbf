package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"media-index/internal/logging"
)

// Vault is a rooted file tree addressed by vault-relative slash paths.
// It is the only component that touches the disk directly; everything above
// it works in terms of relative paths and File snapshots.
type Vault struct {
	root  string
	retry RetryConfig
}

// New creates a Vault rooted at dir. The directory must exist.
func New(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}
	return &Vault{root: abs, retry: DefaultRetryConfig()}, nil
}

// Root returns the absolute path of the vault root.
func (v *Vault) Root() string {
	return v.root
}

// Abs converts a vault-relative slash path to an absolute filesystem path.
func (v *Vault) Abs(relPath string) string {
	return filepath.Join(v.root, filepath.FromSlash(relPath))
}

// Rel converts an absolute filesystem path to a vault-relative slash path.
// Returns an error if the path lies outside the vault.
func (v *Vault) Rel(absPath string) (string, error) {
	rel, err := filepath.Rel(v.root, absPath)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside the vault", absPath)
	}
	return rel, nil
}

// GetFile stats a vault-relative path and returns its File snapshot.
// Returns fs.ErrNotExist (wrapped) when the file is absent.
func (v *Vault) GetFile(relPath string) (*File, error) {
	info, err := StatWithRetry(v.Abs(relPath), v.retry)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", relPath)
	}
	return newFile(relPath, info), nil
}

// Exists reports whether a vault-relative path refers to an existing file.
func (v *Vault) Exists(relPath string) bool {
	info, err := StatWithRetry(v.Abs(relPath), v.retry)
	return err == nil && !info.IsDir()
}

// AllFiles enumerates every regular file in the vault, skipping dotfiles and
// dot-directories. The result order is unspecified.
func (v *Vault) AllFiles() ([]*File, error) {
	var files []*File

	err := filepath.Walk(v.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("Error accessing path %s: %v", p, err)
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := v.Rel(p)
		if err != nil {
			return err
		}
		files = append(files, newFile(rel, info))
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return nil, fmt.Errorf("walk error: %w", err)
	}
	return files, nil
}

// Read returns the contents of a vault-relative path.
func (v *Vault) Read(relPath string) ([]byte, error) {
	f, err := OpenWithRetry(v.Abs(relPath), v.retry)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", relPath, err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return data, nil
}

// Write replaces the contents of a vault-relative path, creating parent
// directories as needed.
func (v *Vault) Write(relPath string, data []byte) error {
	abs := v.Abs(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", relPath, err)
	}
	return os.WriteFile(abs, data, 0o644)
}

// Create creates a new file at a vault-relative path with the given
// contents. The create-if-absent check and the creation itself are a single
// step: if the file already exists, Create returns fs.ErrExist (wrapped) and
// the existing contents are left untouched.
func (v *Vault) Create(relPath string, data []byte) error {
	abs := v.Abs(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", relPath, err)
	}
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, werr)
	}
	return cerr
}

// Delete removes a vault-relative path. Deleting an absent path is not an
// error.
func (v *Vault) Delete(relPath string) error {
	err := os.Remove(v.Abs(relPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Rename moves a file between two vault-relative paths, creating parent
// directories for the destination as needed.
func (v *Vault) Rename(oldPath, newPath string) error {
	absNew := v.Abs(newPath)
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", newPath, err)
	}
	return os.Rename(v.Abs(oldPath), absNew)
}
