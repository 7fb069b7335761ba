package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/ajay-develops/spotify-clone/internal/response"
)

const minPasswordLen = 8

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"    example:"listener@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type sessionData struct {
	Token string `json:"token" example:"eyJhbGci..."`
	User  *User  `json:"user"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create an email/password account and receive a JWT.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Email and password"
//	@Success		201		{object}	response.Envelope{data=sessionData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		response.BadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLen {
		response.BadRequest(w, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrAlreadyExists) {
		response.Conflict(w, "email already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, sessionData{Token: token, User: u})
}

// Login godoc
//
//	@Summary		Login
//	@Description	Verify email/password credentials and receive a JWT.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Email and password"
//	@Success		200		{object}	response.Envelope{data=sessionData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, sessionData{Token: token, User: u})
}

// Anonymous godoc
//
//	@Summary		Anonymous sign-in
//	@Description	Create a throwaway demo account and receive a JWT. Each call creates a new account.
//	@Tags			auth
//	@Produce		json
//	@Success		201	{object}	response.Envelope{data=sessionData}
//	@Failure		500	{object}	response.Envelope
//	@Router			/auth/anonymous [post]
func (h *Handler) Anonymous(w http.ResponseWriter, r *http.Request) {
	token, u, err := h.svc.SignInAnonymously(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, sessionData{Token: token, User: u})
}
