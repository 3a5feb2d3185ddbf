package vault

import (
	"os"
	"path"
	"strings"
	"time"
)

// File describes a single file inside the vault at the moment it was
// last observed. It is a snapshot, not a live handle.
type File struct {
	// Path is the vault-relative slash path, e.g. "photos/2024/IMG_0001.jpg".
	Path string
	// Name is the base name including extension.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file's last modification time.
	ModTime time.Time
}

// newFile builds a File snapshot from a vault-relative path and stat info.
func newFile(relPath string, info os.FileInfo) *File {
	return &File{
		Path:    relPath,
		Name:    path.Base(relPath),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Ext returns the lowercase extension without the leading dot ("jpg"), or
// the empty string when the file has none.
func (f *File) Ext() string {
	ext := path.Ext(f.Name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Dir returns the vault-relative directory containing the file, or "" for
// files at the vault root.
func (f *File) Dir() string {
	dir := path.Dir(f.Path)
	if dir == "." {
		return ""
	}
	return dir
}
