package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind represents the classified kind of a media file.
type Kind string

const (
	// KindImage represents a still image file.
	KindImage Kind = "image"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindOther represents an unknown or unsupported file kind.
	KindOther Kind = "other"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

// GetKind returns the Kind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindOther if the extension is not recognized.
func GetKind(ext string) Kind {
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// KindOfPath classifies a path by its (case-insensitive) extension.
func KindOfPath(path string) Kind {
	return GetKind(strings.ToLower(filepath.Ext(path)))
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetKind(ext) != KindOther
}

// DefaultExtensions returns the default set of indexed extensions: every
// supported image and video extension, without the leading dot.
func DefaultExtensions() map[string]bool {
	exts := make(map[string]bool, len(ImageExtensions)+len(VideoExtensions))
	for ext := range ImageExtensions {
		exts[strings.TrimPrefix(ext, ".")] = true
	}
	for ext := range VideoExtensions {
		exts[strings.TrimPrefix(ext, ".")] = true
	}
	return exts
}

// ParseExtensionList parses a comma-separated extension list ("jpg,png,mp4")
// into a set. Entries are lowercased and stripped of leading dots; empty
// entries are ignored. Returns nil for an empty list.
func ParseExtensionList(list string) map[string]bool {
	exts := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(part)), ".")
		if part != "" {
			exts[part] = true
		}
	}
	if len(exts) == 0 {
		return nil
	}
	return exts
}
