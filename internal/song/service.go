package song

import (
	"context"
	"io"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/ajay-develops/spotify-clone/internal/config"
	"github.com/ajay-develops/spotify-clone/internal/identity"
	"github.com/ajay-develops/spotify-clone/internal/saga"
	"github.com/ajay-develops/spotify-clone/internal/sanitize"
	"github.com/ajay-develops/spotify-clone/internal/storage"
)

// Allowed upload extensions per namespace; anything else falls back to the
// default. Contents are not inspected.
var (
	audioExtensions = []string{"mp3", "wav", "m4a", "ogg"}
	imageExtensions = []string{"jpg", "jpeg", "png", "webp"}
)

const (
	defaultAudioExt  = "mp3"
	defaultImageExt  = "jpg"
	defaultAudioType = "audio/mpeg"
	defaultImageType = "image/jpeg"
)

// Store is the record-store gateway the service writes songs through.
// *Repository implements it; tests inject fakes.
type Store interface {
	Insert(ctx context.Context, userID *string, title, artist, songPath, imagePath string) (*Song, error)
	GetByID(ctx context.Context, id int64) (*Song, error)
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Song, error)
	SearchByTitle(ctx context.Context, q string) ([]Song, error)
	SearchByArtist(ctx context.Context, q string) ([]Song, error)
	ListByUser(ctx context.Context, userID string) ([]Song, error)
	Like(ctx context.Context, userID string, songID int64) error
	Unlike(ctx context.Context, userID string, songID int64) error
	IsLiked(ctx context.Context, userID string, songID int64) (bool, error)
	ListLiked(ctx context.Context, userID string) ([]Song, error)
}

// File is one uploaded payload.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// UploadInput is everything the upload flow needs from the caller.
type UploadInput struct {
	Title  string
	Artist string
	Song   File
	Image  File
}

// Service orchestrates the record store and the two blob namespaces.
// Each method is an independent, sequential unit of work; concurrent
// invocations only contend on the remote stores, and generated storage
// keys keep simultaneous uploads from colliding.
type Service struct {
	store    Store
	audio    storage.Storage
	images   storage.Storage
	verifier identity.Verifier
}

// NewService creates a song Service.
func NewService(store Store, audio, images storage.Storage, verifier identity.Verifier) *Service {
	return &Service{store: store, audio: audio, images: images, verifier: verifier}
}

// Upload creates a song: audio blob, then image blob, then the database
// row. The row is never created before both blobs exist. On any step
// failure the blobs this invocation already uploaded are removed, so no
// orphan survives a failed upload. Steps are not retried; the caller may
// retry the whole operation, and fresh keys guarantee a retry never
// collides with this attempt's objects.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Song, error) {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return nil, err
	}

	title := sanitize.NormalizeText(in.Title)
	artist := sanitize.NormalizeText(in.Artist)
	if err := validateUpload(title, artist, in); err != nil {
		return nil, err
	}

	songKey := sanitize.StorageKey(title, sanitize.FileExtension(in.Song.Name, audioExtensions, defaultAudioExt))
	imageKey := sanitize.StorageKey(title, sanitize.FileExtension(in.Image.Name, imageExtensions, defaultImageExt))

	var created *Song
	err = saga.Run(ctx, []saga.Step{
		{
			Name: "upload audio",
			Do: func(ctx context.Context) error {
				return s.audio.Upload(ctx, songKey, in.Song.Reader, in.Song.Size, contentType(in.Song, defaultAudioType))
			},
			Compensate: func(ctx context.Context) error {
				return s.audio.Remove(ctx, songKey)
			},
		},
		{
			Name: "upload image",
			Do: func(ctx context.Context) error {
				return s.images.Upload(ctx, imageKey, in.Image.Reader, in.Image.Size, contentType(in.Image, defaultImageType))
			},
			Compensate: func(ctx context.Context) error {
				return s.images.Remove(ctx, imageKey)
			},
		},
		{
			Name: "insert record",
			Do: func(ctx context.Context) error {
				var err error
				created, err = s.store.Insert(ctx, &id.UserID, title, artist, songKey, imageKey)
				return err
			},
		},
	})
	if err != nil {
		return nil, err
	}

	s.resolveURLs(created)
	return created, nil
}

// Delete removes a song: look it up, remove both blobs concurrently, then
// delete the row. Blob removal is best-effort and never aborts the flow —
// an object already missing, or a transient storage failure, must not block
// deletion. If the final row delete fails the blobs stay gone; that
// inconsistency is accepted and surfaced to the caller as the error.
//
// Ownership is not enforced: any authenticated user may delete any song.
func (s *Service) Delete(ctx context.Context, songID int64) error {
	if _, err := s.verifier.Verify(ctx); err != nil {
		return err
	}

	found, err := s.store.GetByID(ctx, songID)
	if err != nil {
		return err
	}

	errs := saga.SettleAll(ctx,
		func(ctx context.Context) error { return s.audio.Remove(ctx, found.SongPath) },
		func(ctx context.Context) error { return s.images.Remove(ctx, found.ImagePath) },
	)
	for _, err := range errs {
		if err != nil {
			log.Printf("song: delete %d blob cleanup: %v", songID, err)
		}
	}

	return s.store.DeleteByID(ctx, songID)
}

// Like records a like for the caller. Liking an already-liked song is a
// no-op success.
func (s *Service) Like(ctx context.Context, songID int64) error {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return err
	}
	return s.store.Like(ctx, id.UserID, songID)
}

// Unlike removes the caller's like. Removing an absent like is a no-op success.
func (s *Service) Unlike(ctx context.Context, songID int64) error {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return err
	}
	return s.store.Unlike(ctx, id.UserID, songID)
}

// IsLiked reports whether the caller has liked the song.
func (s *Service) IsLiked(ctx context.Context, songID int64) (bool, error) {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return false, err
	}
	return s.store.IsLiked(ctx, id.UserID, songID)
}

// ListLiked returns the caller's liked songs, most recently liked first.
func (s *Service) ListLiked(ctx context.Context) ([]Song, error) {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.ListLiked(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(songs), nil
}

// Mine returns the caller's uploaded songs, newest first.
func (s *Service) Mine(ctx context.Context) ([]Song, error) {
	id, err := s.verifier.Verify(ctx)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(songs), nil
}

// Get returns one song by id.
func (s *Service) Get(ctx context.Context, songID int64) (*Song, error) {
	found, err := s.store.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	s.resolveURLs(found)
	return found, nil
}

// List returns all songs, or a case-insensitive substring search when title
// or artist is set (title takes precedence).
func (s *Service) List(ctx context.Context, title, artist string) ([]Song, error) {
	var (
		songs []Song
		err   error
	)
	switch {
	case title != "":
		songs, err = s.store.SearchByTitle(ctx, title)
	case artist != "":
		songs, err = s.store.SearchByArtist(ctx, artist)
	default:
		songs, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.resolveAll(songs), nil
}

func (s *Service) resolveURLs(song *Song) {
	song.SongURL = s.audio.PublicURL(song.SongPath)
	song.ImageURL = s.images.PublicURL(song.ImagePath)
}

func (s *Service) resolveAll(songs []Song) []Song {
	for i := range songs {
		s.resolveURLs(&songs[i])
	}
	return songs
}

func validateUpload(title, artist string, in UploadInput) error {
	if in.Song.Reader == nil || in.Image.Reader == nil {
		return validationf("please fill in all fields")
	}
	if title == "" {
		return validationf("song title is required")
	}
	if artist == "" {
		return validationf("artist name is required")
	}
	if in.Song.Size > config.MaxSongSize {
		return tooLargef("song file is too large, maximum size is %s", humanize.IBytes(config.MaxSongSize))
	}
	if in.Image.Size > config.MaxImageSize {
		return tooLargef("image file is too large, maximum size is %s", humanize.IBytes(config.MaxImageSize))
	}
	return nil
}

func contentType(f File, fallback string) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return fallback
}
