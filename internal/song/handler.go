package song

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ajay-develops/spotify-clone/internal/config"
	"github.com/ajay-develops/spotify-clone/internal/identity"
	"github.com/ajay-develops/spotify-clone/internal/response"
)

// Per-request deadlines for the flows that touch object storage. Remote
// calls inherit them through the context.
const (
	uploadTimeout = 30 * time.Second
	deleteTimeout = 15 * time.Second
)

// Handler holds HTTP handlers for song endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new song Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary		List songs
//	@Description	Returns all songs newest first. With ?title= or ?artist= performs a case-insensitive substring search.
//	@Tags			songs
//	@Produce		json
//	@Param			title	query		string	false	"Title substring"
//	@Param			artist	query		string	false	"Artist substring"
//	@Success		200		{object}	response.Envelope{data=[]Song}
//	@Failure		500		{object}	response.Envelope
//	@Router			/songs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.List(r.Context(), r.URL.Query().Get("title"), r.URL.Query().Get("artist"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, songs)
}

// Get godoc
//
//	@Summary		Get song
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		int	true	"Song ID"
//	@Success		200	{object}	response.Envelope{data=Song}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, s)
}

// Upload godoc
//
//	@Summary		Upload song
//	@Description	Uploads the audio file, then the cover image, then creates the song record. A failed step removes everything this request already stored.
//	@Tags			songs
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	formData	string	true	"Song title"
//	@Param			artist	formData	string	true	"Artist name"
//	@Param			song	formData	file	true	"Audio file (mp3, wav, m4a, ogg; max 50 MiB)"
//	@Param			image	formData	file	true	"Cover image (jpg, jpeg, png, webp; max 5 MiB)"
//	@Success		201		{object}	response.Envelope{data=Song}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/songs [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxSongSize+config.MaxImageSize+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := UploadInput{
		Title:  r.FormValue("title"),
		Artist: r.FormValue("artist"),
	}

	if songFile, header, err := r.FormFile("song"); err == nil {
		defer songFile.Close()
		in.Song = File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      songFile,
		}
	}
	if imageFile, header, err := r.FormFile("image"); err == nil {
		defer imageFile.Close()
		in.Image = File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      imageFile,
		}
	}

	s, err := h.svc.Upload(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, s)
}

// Delete godoc
//
//	@Summary		Delete song
//	@Description	Removes the song's audio and image objects (best-effort) and deletes the record.
//	@Tags			songs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Song ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), deleteTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// Like godoc
//
//	@Summary		Like song
//	@Description	Likes the song for the caller. Liking twice is a no-op.
//	@Tags			likes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Song ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id}/like [put]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Like(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"liked": true})
}

// Unlike godoc
//
//	@Summary		Unlike song
//	@Description	Removes the caller's like. Removing an absent like is a no-op.
//	@Tags			likes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Song ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id}/like [delete]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unlike(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"liked": false})
}

// IsLiked godoc
//
//	@Summary		Liked state
//	@Description	Reports whether the caller has liked the song.
//	@Tags			likes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Song ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id}/like [get]
func (h *Handler) IsLiked(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	liked, err := h.svc.IsLiked(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"liked": liked})
}

// ListLiked godoc
//
//	@Summary		Liked songs
//	@Description	Returns the caller's liked songs, most recently liked first.
//	@Tags			likes
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Song}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/me/likes [get]
func (h *Handler) ListLiked(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.ListLiked(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, songs)
}

// ListMine godoc
//
//	@Summary		My songs
//	@Description	Returns the songs the caller uploaded, newest first.
//	@Tags			songs
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Song}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/me/songs [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.Mine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, songs)
}

func songID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid song id")
		return 0, false
	}
	return id, true
}

// writeError maps service errors to HTTP responses. Every saga failure
// surfaces here as a definite outcome with a user-facing message.
func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.Is(err, identity.ErrNotLoggedIn):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, ErrNotFound.Error())
	case errors.As(err, &ve):
		if ve.TooLarge {
			response.PayloadTooLarge(w, ve.Error())
		} else {
			response.BadRequest(w, ve.Error())
		}
	default:
		response.InternalError(w)
	}
}
