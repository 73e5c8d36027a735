package keys

import "strings"

// ContentTypePDF is the only non-image type accepted, and only for receipts.
const ContentTypePDF = "application/pdf"

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoExtension returns the key extension for an allowed photo content type.
func PhotoExtension(contentType string) (string, bool) {
	ext, ok := photoExtensions[normalize(contentType)]
	return ext, ok
}

// ReceiptExtension accepts every photo type plus PDF.
func ReceiptExtension(contentType string) (string, bool) {
	ct := normalize(contentType)
	if ct == ContentTypePDF {
		return ".pdf", true
	}
	return PhotoExtension(ct)
}

// AllowedPhotoContentTypes lists the photo allow-list in a stable order.
func AllowedPhotoContentTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}

// IsPDF reports whether the content type is application/pdf.
func IsPDF(contentType string) bool {
	return normalize(contentType) == ContentTypePDF
}

func normalize(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}
