// Package sanitize derives safe display strings and collision-resistant
// storage keys from user-supplied text. All functions are pure except
// StorageKey, which embeds a timestamp and a random token.
package sanitize

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	maxTextLen     = 255 // display strings, bounded for the database
	maxFilenameLen = 50  // key prefix, bounded for readability
)

// FallbackFilename is used when sanitization leaves nothing usable.
const FallbackFilename = "untitled"

// NormalizeText trims the input, collapses internal whitespace runs to a
// single space, strips control characters, and caps the length. An empty
// result means the input had no usable content and must fail validation.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case r < 0x20 || r == 0x7F:
			// control characters are dropped outright
		default:
			if inSpace {
				b.WriteByte(' ')
				inSpace = false
			}
			b.WriteRune(r)
		}
	}

	return truncateRunes(b.String(), maxTextLen)
}

// SanitizeFilename lowercases the input and reduces it to [a-z0-9-]:
// every other character becomes a hyphen, runs of hyphens collapse to one,
// and leading/trailing hyphens are stripped. The result is capped at 50
// characters and falls back to "untitled" when empty. Idempotent.
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		switch {
		case ok:
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	out := strings.Trim(b.String(), "-")
	out = truncateRunes(out, maxFilenameLen)
	// truncation can reintroduce a trailing hyphen
	out = strings.TrimRight(out, "-")
	if out == "" {
		return FallbackFilename
	}
	return out
}

// FileExtension extracts the extension after the last dot, lowercased.
// Extensions outside the allow-list (including a missing one) yield
// defaultExt. File contents are not inspected.
func FileExtension(filename string, allowed []string, defaultExt string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return defaultExt
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, a := range allowed {
		if ext == a {
			return ext
		}
	}
	return defaultExt
}

// StorageKey builds an object key of the form
// "{sanitized-title}-{unixMillis}-{token}.{ext}". The timestamp plus random
// token make keys from concurrent uploads of the same title distinct, so no
// in-process locking is needed and retries never collide with earlier
// attempts' objects.
func StorageKey(title, ext string) string {
	return fmt.Sprintf("%s-%d-%s.%s",
		SanitizeFilename(title),
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		ext,
	)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
