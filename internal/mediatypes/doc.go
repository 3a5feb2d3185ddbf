// Package mediatypes provides shared type definitions and utilities for media
// file classification across the media-index application.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions with no external dependencies beyond the
// standard library.
//
// # Kinds
//
// The package defines a Kind enum for categorizing media files:
//
//	mediatypes.KindImage // Supported image formats (jpg, png, gif, etc.)
//	mediatypes.KindVideo // Supported video formats (mp4, mkv, avi, etc.)
//	mediatypes.KindOther // Unrecognized or unsupported files
//
// # Extension Detection
//
// Use GetKind to classify a file by its extension:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	kind := mediatypes.GetKind(ext)
//
//	switch kind {
//	case mediatypes.KindImage:
//	    // Handle image
//	case mediatypes.KindVideo:
//	    // Handle video
//	}
//
// or KindOfPath when only the path is at hand.
//
// # MIME Types
//
// Use GetMimeType to get the appropriate MIME type for HTTP responses:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	mimeType := mediatypes.GetMimeType(ext) // e.g., "image/jpeg"
//
// # Configured Extension Sets
//
// The index tracks only files whose extension is in a configured set.
// DefaultExtensions returns the full supported set; ParseExtensionList builds a
// set from a comma-separated configuration value.
package mediatypes
