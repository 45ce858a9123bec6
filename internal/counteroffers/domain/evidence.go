package domain

import (
	"mime"
	"strings"

	"recycle_portal_backend/platform/apperr"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether ct names a raster image format we accept.
// Parameters such as charset are ignored.
func IsAllowedImageType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(ct))
	if err != nil {
		return false
	}
	return allowedImageTypes[strings.ToLower(mediaType)]
}

// ValidateEvidenceFile checks one file before it is stored.
// contentType must come from the file's bytes, not the client's header.
func ValidateEvidenceFile(fileName, contentType string, sizeBytes, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxEvidenceBytes
	}
	if sizeBytes <= 0 {
		return apperr.Validation("empty file").WithDetails(map[string]string{"file": fileName})
	}
	if sizeBytes > maxBytes {
		return apperr.Validation(MsgImageTooLarge).WithDetails(map[string]interface{}{
			"file":     fileName,
			"maxBytes": maxBytes,
		})
	}
	if !IsAllowedImageType(contentType) {
		return apperr.Validation(MsgUnsupportedImage).WithDetails(map[string]string{
			"file":        fileName,
			"contentType": contentType,
		})
	}
	return nil
}
