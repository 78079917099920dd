package filegate

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen is how many leading bytes of an upload are inspected for
// magic-number detection. Matches the largest signature the detector needs.
const SniffLen = 3072

// allowedTypes is the fixed allow-list of media types the gateway accepts,
// checked against the sniffed type, never the client-declared one.
// Executables, scripts and archives are deliberately absent.
var allowedTypes = []string{
	// images
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
	"image/svg+xml",
	// videos
	"video/mp4",
	"video/webm",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-matroska",
	"video/mpeg",
	// audio
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"audio/flac",
	"audio/aac",
	"audio/midi",
	// documents
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.oasis.opendocument.text",
	"application/rtf",
}

// ValidateContent sniffs the true media type from the leading bytes of an
// upload and checks it against the allow-list. The declared Content-Type is
// attacker-controlled and plays no part here. Any text/* type passes as a
// document. Empty input and any type outside the allow-list are rejected
// with ErrInvalidContent.
func ValidateContent(head []byte) (string, error) {
	if len(head) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrInvalidContent)
	}

	mtype := mimetype.Detect(head)
	sniffed := trimMimeParams(mtype.String())

	if strings.HasPrefix(sniffed, "text/") {
		return sniffed, nil
	}

	for _, allowed := range allowedTypes {
		if mtype.Is(allowed) {
			return sniffed, nil
		}
	}

	return "", fmt.Errorf("%w: sniffed type %s is not allowed", ErrInvalidContent, sniffed)
}

// trimMimeParams drops parameters like "; charset=utf-8" from a media type.
func trimMimeParams(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		return strings.TrimSpace(mt[:i])
	}
	return mt
}
