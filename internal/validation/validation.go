package validation

import (
	"errors"
	"mime/multipart"
	"net/url"
	"strings"
)

const (
	MaxFileSize = 500 * 1024 * 1024 // 500MB
)

var (
	ErrFileTooLarge    = errors.New("file too large - maximum 500MB allowed")
	ErrInvalidFileType = errors.New("invalid file type - only mp4, mov, webm, mkv allowed")
	ErrFilenameTooLong = errors.New("filename too long - maximum 255 characters")
	ErrEmptyFile       = errors.New("file is empty")

	ErrSourceRequired  = errors.New("either a video link or an uploaded file is required")
	ErrSourceAmbiguous = errors.New("provide a video link or an uploaded file, not both")
	ErrInvalidURL      = errors.New("video link must be an absolute http(s) URL")
	ErrInvalidDuration = errors.New("duration_sec must be a positive number")
)

var AllowedMimeTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
}

func ValidateUpload(fileHeader *multipart.FileHeader) error {

	if fileHeader.Size == 0 {
		return ErrEmptyFile
	}

	if fileHeader.Size > MaxFileSize {
		return ErrFileTooLarge
	}

	if len(fileHeader.Filename) > 255 {
		return ErrFilenameTooLong
	}

	contentType := ContentType(fileHeader)

	if !AllowedMimeTypes[contentType] {
		return ErrInvalidFileType
	}

	return nil
}

// ContentType returns the declared type, or one guessed from the extension
// when the client sent none or a generic one.
func ContentType(fileHeader *multipart.FileHeader) string {
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = guessContentType(fileHeader.Filename)
	}
	return contentType
}

func guessContentType(filename string) string {

	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return "application/octet-stream"
	}

	ext := strings.ToLower(filename[idx+1:])

	typeMap := map[string]string{
		"mp4":  "video/mp4",
		"m4v":  "video/mp4",
		"mov":  "video/quicktime",
		"webm": "video/webm",
		"mkv":  "video/x-matroska",
	}

	if ct, ok := typeMap[ext]; ok {
		return ct
	}

	return "application/octet-stream"
}

// ValidateSourceURL accepts absolute http and https links.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// ValidateSource enforces that exactly one of link and upload is set.
func ValidateSource(link, uploadURL string) error {
	link, uploadURL = strings.TrimSpace(link), strings.TrimSpace(uploadURL)
	switch {
	case link == "" && uploadURL == "":
		return ErrSourceRequired
	case link != "" && uploadURL != "":
		return ErrSourceAmbiguous
	case link != "":
		return ValidateSourceURL(link)
	default:
		return ValidateSourceURL(uploadURL)
	}
}

func ValidateDuration(seconds float64) error {
	if !(seconds > 0) || seconds > 24*60*60 {
		return ErrInvalidDuration
	}
	return nil
}
