package song

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ajay-develops/spotify-clone/internal/identity"
	"github.com/ajay-develops/spotify-clone/internal/storage"
)

// fakeStore is an in-memory Store that counts calls and supports error
// injection.
type fakeStore struct {
	mu     sync.Mutex
	songs  map[int64]Song
	likes  map[string]map[int64]bool
	nextID int64
	calls  int

	insertErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		songs: make(map[int64]Song),
		likes: make(map[string]map[int64]bool),
	}
}

func (f *fakeStore) called() {
	f.calls++
}

func (f *fakeStore) Insert(ctx context.Context, userID *string, title, artist, songPath, imagePath string) (*Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	s := Song{ID: f.nextID, UserID: userID, Title: title, Artist: artist, SongPath: songPath, ImagePath: imagePath}
	f.songs[s.ID] = s
	return &s, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	s, ok := f.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.songs[id]; !ok {
		return ErrNotFound
	}
	delete(f.songs, id)
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	out := []Song{}
	for _, s := range f.songs {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) SearchByTitle(ctx context.Context, q string) ([]Song, error)  { return f.List(ctx) }
func (f *fakeStore) SearchByArtist(ctx context.Context, q string) ([]Song, error) { return f.List(ctx) }
func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]Song, error) {
	return f.List(ctx)
}

func (f *fakeStore) Like(ctx context.Context, userID string, songID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	if _, ok := f.songs[songID]; !ok {
		return ErrNotFound
	}
	if f.likes[userID] == nil {
		f.likes[userID] = make(map[int64]bool)
	}
	// duplicate insert is a no-op, matching the unique-constraint behavior
	f.likes[userID][songID] = true
	return nil
}

func (f *fakeStore) Unlike(ctx context.Context, userID string, songID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	delete(f.likes[userID], songID)
	return nil
}

func (f *fakeStore) IsLiked(ctx context.Context, userID string, songID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	return f.likes[userID][songID], nil
}

func (f *fakeStore) ListLiked(ctx context.Context, userID string) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called()
	out := []Song{}
	for id := range f.likes[userID] {
		out = append(out, f.songs[id])
	}
	return out, nil
}

func (f *fakeStore) likeCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likes[userID])
}

// okVerifier always authenticates as the given user.
type okVerifier struct{ userID string }

func (v okVerifier) Verify(ctx context.Context) (identity.Identity, error) {
	return identity.Identity{UserID: v.userID}, nil
}

// noVerifier always refuses.
type noVerifier struct{}

func (noVerifier) Verify(ctx context.Context) (identity.Identity, error) {
	return identity.Identity{}, identity.ErrNotLoggedIn
}

type fixture struct {
	svc    *Service
	store  *fakeStore
	audio  *storage.MemStorage
	images *storage.MemStorage
}

func newFixture(v identity.Verifier) *fixture {
	f := &fixture{
		store:  newFakeStore(),
		audio:  storage.NewMemStorage(),
		images: storage.NewMemStorage(),
	}
	f.svc = NewService(f.store, f.audio, f.images, v)
	return f
}

func uploadInput() UploadInput {
	return UploadInput{
		Title:  "  My   Song ",
		Artist: "Some Artist",
		Song:   File{Name: "track.mp3", Size: 1024, Reader: strings.NewReader("audio-bytes")},
		Image:  File{Name: "cover.png", Size: 512, Reader: strings.NewReader("image-bytes")},
	}
}

func TestUploadHappyPath(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})

	s, err := f.svc.Upload(context.Background(), uploadInput())
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if s.Title != "My Song" {
		t.Errorf("title not normalized: %q", s.Title)
	}
	if s.UserID == nil || *s.UserID != "user-1" {
		t.Errorf("owner not recorded: %v", s.UserID)
	}
	if !f.audio.Has(s.SongPath) {
		t.Error("audio object missing after successful upload")
	}
	if !f.images.Has(s.ImagePath) {
		t.Error("image object missing after successful upload")
	}
	if !strings.HasPrefix(s.SongPath, "my-song-") || !strings.HasSuffix(s.SongPath, ".mp3") {
		t.Errorf("unexpected song key %q", s.SongPath)
	}
	if !strings.HasSuffix(s.ImagePath, ".png") {
		t.Errorf("unexpected image key %q", s.ImagePath)
	}
	if s.SongURL == "" || s.ImageURL == "" {
		t.Error("public URLs not resolved")
	}
}

func TestUploadWithoutSessionTouchesNothing(t *testing.T) {
	f := newFixture(noVerifier{})

	_, err := f.svc.Upload(context.Background(), uploadInput())
	if !errors.Is(err, identity.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	if up, rm := f.audio.Calls(); up != 0 || rm != 0 {
		t.Errorf("audio store touched: %d uploads, %d removes", up, rm)
	}
	if up, rm := f.images.Calls(); up != 0 || rm != 0 {
		t.Errorf("image store touched: %d uploads, %d removes", up, rm)
	}
	if f.store.calls != 0 {
		t.Errorf("record store touched %d times", f.store.calls)
	}
}

func TestUploadValidationBeforeRemoteCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UploadInput)
		want   string
	}{
		{
			name:   "missing song file",
			mutate: func(in *UploadInput) { in.Song.Reader = nil },
			want:   "fill in all fields",
		},
		{
			name:   "missing image file",
			mutate: func(in *UploadInput) { in.Image.Reader = nil },
			want:   "fill in all fields",
		},
		{
			name:   "whitespace title",
			mutate: func(in *UploadInput) { in.Title = " \t " },
			want:   "title is required",
		},
		{
			name:   "whitespace artist",
			mutate: func(in *UploadInput) { in.Artist = "\n" },
			want:   "artist name is required",
		},
		{
			name:   "oversized song",
			mutate: func(in *UploadInput) { in.Song.Size = 51 << 20 },
			want:   "song file is too large",
		},
		{
			name:   "oversized image",
			mutate: func(in *UploadInput) { in.Image.Size = 6 << 20 },
			want:   "image file is too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(okVerifier{userID: "user-1"})
			in := uploadInput()
			tt.mutate(&in)

			_, err := f.svc.Upload(context.Background(), in)
			if !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if up, _ := f.audio.Calls(); up != 0 {
				t.Error("validation failure still reached storage")
			}
			if f.store.calls != 0 {
				t.Error("validation failure still reached the record store")
			}
		})
	}
}

func TestUploadImageFailureRemovesAudio(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	f.images.UploadErr = errors.New("storage unavailable")

	_, err := f.svc.Upload(context.Background(), uploadInput())
	if err == nil {
		t.Fatal("expected failure")
	}

	if f.audio.Len() != 0 {
		t.Error("audio object orphaned after image upload failure")
	}
	if f.images.Len() != 0 {
		t.Error("image object present despite failed upload")
	}
	if f.store.calls != 0 {
		t.Error("record store reached despite image failure")
	}
}

func TestUploadInsertFailureRemovesBothBlobs(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	f.store.insertErr = errors.New("insert rejected")

	_, err := f.svc.Upload(context.Background(), uploadInput())
	if err == nil {
		t.Fatal("expected failure")
	}

	if f.audio.Len() != 0 {
		t.Error("audio object orphaned after insert failure")
	}
	if f.images.Len() != 0 {
		t.Error("image object orphaned after insert failure")
	}
}

func TestUploadConcurrentSameTitleDistinctKeys(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})

	const n = 8
	results := make([]*Song, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Upload(context.Background(), uploadInput())
		}(i)
	}
	wg.Wait()

	songKeys := make(map[string]bool)
	imageKeys := make(map[string]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("upload %d failed: %v", i, errs[i])
		}
		if songKeys[results[i].SongPath] {
			t.Fatalf("song key collision: %s", results[i].SongPath)
		}
		if imageKeys[results[i].ImagePath] {
			t.Fatalf("image key collision: %s", results[i].ImagePath)
		}
		songKeys[results[i].SongPath] = true
		imageKeys[results[i].ImagePath] = true
	}
	if f.audio.Len() != n || f.images.Len() != n {
		t.Errorf("expected %d objects per namespace, got %d audio / %d image", n, f.audio.Len(), f.images.Len())
	}
}

func TestDeleteRemovesRowAndBlobs(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	s, err := f.svc.Upload(context.Background(), uploadInput())
	if err != nil {
		t.Fatalf("setup upload failed: %v", err)
	}

	if err := f.svc.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("row still present after delete: %v", err)
	}
	if f.audio.Has(s.SongPath) || f.images.Has(s.ImagePath) {
		t.Error("blobs still present after delete")
	}
}

func TestDeleteToleratesMissingBlob(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	s, err := f.svc.Upload(context.Background(), uploadInput())
	if err != nil {
		t.Fatalf("setup upload failed: %v", err)
	}

	// simulate an operator manually removing the cover image
	_ = f.images.Remove(context.Background(), s.ImagePath)

	if err := f.svc.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete should tolerate a missing blob: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), s.ID); !errors.Is(err, ErrNotFound) {
		t.Error("row still present after delete")
	}
}

func TestDeleteToleratesStorageFailure(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	s, err := f.svc.Upload(context.Background(), uploadInput())
	if err != nil {
		t.Fatalf("setup upload failed: %v", err)
	}

	f.audio.RemoveErr = errors.New("transient storage failure")

	if err := f.svc.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete should survive a blob removal failure: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), s.ID); !errors.Is(err, ErrNotFound) {
		t.Error("row still present after delete")
	}
}

func TestDeleteUnknownSong(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})

	if err := f.svc.Delete(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, rm := f.audio.Calls(); rm != 0 {
		t.Error("blob removal attempted for an unknown song")
	}
}

func TestDeleteWithoutSessionTouchesNothing(t *testing.T) {
	f := newFixture(noVerifier{})

	if err := f.svc.Delete(context.Background(), 1); !errors.Is(err, identity.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if f.store.calls != 0 {
		t.Error("record store touched without a session")
	}
	if _, rm := f.audio.Calls(); rm != 0 {
		t.Error("blob store touched without a session")
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})
	s, err := f.svc.Upload(context.Background(), uploadInput())
	if err != nil {
		t.Fatalf("setup upload failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := f.svc.Like(context.Background(), s.ID); err != nil {
			t.Fatalf("like #%d failed: %v", i+1, err)
		}
	}
	if n := f.store.likeCount("user-1"); n != 1 {
		t.Errorf("expected 1 like row, got %d", n)
	}

	liked, err := f.svc.IsLiked(context.Background(), s.ID)
	if err != nil || !liked {
		t.Errorf("IsLiked = %v, %v; want true, nil", liked, err)
	}
}

func TestUnlikeMissingPairIsNoOp(t *testing.T) {
	f := newFixture(okVerifier{userID: "user-1"})

	if err := f.svc.Unlike(context.Background(), 42); err != nil {
		t.Fatalf("unlike of absent pair should succeed: %v", err)
	}
}

func TestLikeWithoutSession(t *testing.T) {
	f := newFixture(noVerifier{})

	if err := f.svc.Like(context.Background(), 1); !errors.Is(err, identity.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if f.store.calls != 0 {
		t.Error("record store touched without a session")
	}
}
