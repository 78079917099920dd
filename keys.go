package filegate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Categories used in storage keys, derived from the declared mimetype.
const (
	CategoryImages    = "images"
	CategoryVideos    = "videos"
	CategoryAudio     = "audio"
	CategoryDocuments = "documents"
	CategoryOthers    = "others"
)

// DeriveKey builds a fresh storage key for an uploaded object from its
// declared name and mimetype. The key has the shape
//
//	{YYYY-MM-DD}/{category}/{uuid}-{sanitized-name}
//
// where the date is the UTC date of upload. The random token makes keys
// unique across repeated uploads of identical content; the sanitized name
// and hierarchical segments exist for operational legibility only and are
// never parsed back.
func DeriveKey(declaredName, mimetype string, now time.Time) (key, category string) {
	category = CategoryFor(mimetype)
	date := now.UTC().Format("2006-01-02")
	key = fmt.Sprintf("%s/%s/%s-%s", date, category, uuid.New().String(), SanitizeName(declaredName))
	return key, category
}

// SanitizeName lowercases a client-supplied filename and replaces every rune
// outside [A-Za-z0-9.-] with '-'. The result is URL and filesystem safe but
// not unique; it is only ever used combined with a random token.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// CategoryFor maps a mimetype to a coarse storage category. Rules are
// evaluated top to bottom, first match wins.
func CategoryFor(mimetype string) string {
	switch {
	case strings.HasPrefix(mimetype, "image/"):
		return CategoryImages
	case strings.HasPrefix(mimetype, "video/"):
		return CategoryVideos
	case strings.HasPrefix(mimetype, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mimetype, "text/"),
		mimetype == "application/pdf",
		strings.Contains(mimetype, "word"),
		strings.Contains(mimetype, "document"):
		return CategoryDocuments
	default:
		return CategoryOthers
	}
}
