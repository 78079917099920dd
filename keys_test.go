package filegate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obaudys/filegate"
)

func TestDeriveKey(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.FixedZone("UTC+5", 5*3600))

	t.Run("key structure", func(t *testing.T) {
		key, category := filegate.DeriveKey("Holiday Photo.PNG", "image/png", now)

		assert.Equal(t, "images", category)
		parts := strings.SplitN(key, "/", 3)
		assert.Len(t, parts, 3)
		// date segment is the UTC date, not the zone-local one
		assert.Equal(t, "2026-03-14", parts[0])
		assert.Equal(t, "images", parts[1])
		assert.True(t, strings.HasSuffix(parts[2], "-holiday-photo.png"), "got %s", parts[2])
	})

	t.Run("utc date rollover", func(t *testing.T) {
		lateEvening := time.Date(2026, 3, 14, 1, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
		key, _ := filegate.DeriveKey("a.txt", "text/plain", lateEvening)
		assert.True(t, strings.HasPrefix(key, "2026-03-13/"), "got %s", key)
	})

	t.Run("unique across identical inputs", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 50 {
			key, _ := filegate.DeriveKey("same.pdf", "application/pdf", now)
			assert.False(t, seen[key], "duplicate key %s", key)
			seen[key] = true
		}
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "report.pdf", "report.pdf"},
		{"uppercase lowered", "REPORT.PDF", "report.pdf"},
		{"spaces replaced", "my summer trip.mp4", "my-summer-trip.mp4"},
		{"specials replaced", "a/b\\c:d*e.txt", "a-b-c-d-e.txt"},
		{"unicode replaced", "日本語.png", "---.png"},
		{"kept chars", "v1.2-final.tar", "v1.2-final.tar"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filegate.SanitizeName(tt.in))
		})
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		mimetype string
		want     string
	}{
		{"image/png", "images"},
		{"image/svg+xml", "images"},
		{"video/mp4", "videos"},
		{"audio/mpeg", "audio"},
		{"text/plain", "documents"},
		{"application/pdf", "documents"},
		{"application/msword", "documents"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "documents"},
		{"application/zip", "others"},
		{"application/octet-stream", "others"},
		{"", "others"},
	}

	for _, tt := range tests {
		t.Run(tt.mimetype, func(t *testing.T) {
			assert.Equal(t, tt.want, filegate.CategoryFor(tt.mimetype))
		})
	}
}
