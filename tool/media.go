package tool

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxMediaBytes is the provider's ceiling for uploaded media files.
const maxMediaBytes = 16 * 1024 * 1024

var imageMimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

var audioMimeTypes = map[string]string{
	"wav":  "audio/wav",
	"mp3":  "audio/mpeg",
	"mp4":  "audio/mp4",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"opus": "audio/opus",
}

// imageMimeType resolves an image file extension to its MIME type,
// defaulting to image/jpeg for unknown extensions.
func imageMimeType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if mt, ok := imageMimeTypes[ext]; ok {
		return mt
	}
	return "image/jpeg"
}

// audioMimeType resolves an audio file extension to its MIME type,
// defaulting to audio/wav for unknown extensions.
func audioMimeType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if mt, ok := audioMimeTypes[ext]; ok {
		return mt
	}
	return "audio/wav"
}

// fileSHA256 hashes the raw file bytes. Encoding (base64 for images, hex
// for voice) is applied by the caller; the two downstream providers expect
// different encodings.
func fileSHA256(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// validateMediaFile applies the shared file checks: presence, regular
// file, allowed extension and size ceiling. kind names the family in
// error messages ("Image", "Voice").
func validateMediaFile(path, kind string, allowed map[string]string) []string {
	var errs []string

	info, err := os.Stat(path)
	if err != nil {
		return []string{fmt.Sprintf("%s file not found: %s", kind, path)}
	}
	if info.IsDir() {
		return []string{fmt.Sprintf("%s path is not a file: %s", kind, path)}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if _, ok := allowed[ext]; !ok {
		errs = append(errs, fmt.Sprintf("unsupported %s format: .%s", strings.ToLower(kind), ext))
	}
	if info.Size() > maxMediaBytes {
		errs = append(errs, fmt.Sprintf("%s file too large: %.1fMB (max 16MB)",
			kind, float64(info.Size())/(1024*1024)))
	}
	return errs
}
