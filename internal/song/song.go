// Package song owns the track catalog: the songs and liked_songs tables,
// the upload and delete flows against object storage, and likes.
package song

import (
	"errors"
	"fmt"
	"time"
)

// Song is a track. SongPath and ImagePath are opaque keys into the audio
// and image buckets, assigned at upload time and never changed; SongURL and
// ImageURL are the resolved public URLs, filled in on the way out and never
// stored.
type Song struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	SongPath  string    `json:"songPath"`
	ImagePath string    `json:"imagePath"`
	SongURL   string    `json:"songUrl,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a referenced song id does not exist.
var ErrNotFound = errors.New("song not found")

// ValidationError reports unusable input, detected before any remote call.
// The message is user-facing. TooLarge distinguishes size-ceiling failures
// so the handler can answer 413 instead of 400.
type ValidationError struct {
	msg      string
	TooLarge bool
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func tooLargef(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...), TooLarge: true}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
