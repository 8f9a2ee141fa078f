package validation

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileSize     = errors.New("file size exceeds limit")
	ErrFileType     = errors.New("invalid file type")
	ErrFileRequired = errors.New("no file provided")
)

const (
	MaxImageSize   = 10 * 1024 * 1024  // 10MB
	MaxArchiveSize = 200 * 1024 * 1024 // 200MB, plan bundles with DWG sources get big
)

var AllowedImageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var AllowedPlanFileTypes = map[string]bool{
	".pdf": true,
	".dwg": true,
	".zip": true,
}

func ValidateImage(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	if file.Size > MaxImageSize {
		return ErrFileSize
	}
	ext := filepath.Ext(strings.ToLower(file.Filename))
	if !AllowedImageTypes[ext] {
		return ErrFileType
	}
	return nil
}

func ValidatePlanFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrFileRequired
	}
	if file.Size > MaxArchiveSize {
		return ErrFileSize
	}
	ext := filepath.Ext(strings.ToLower(file.Filename))
	if !AllowedPlanFileTypes[ext] {
		return ErrFileType
	}
	return nil
}
