// Package router wires the HTTP endpoints of the notes API: signup, login
// and the authenticated note operations. All service errors are converted
// to JSON error bodies with matching status codes here; nothing below this
// layer writes HTTP responses.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/ainotes/internal/auth"
	"github.com/patric-chuzhbe/ainotes/internal/authenticator"
	"github.com/patric-chuzhbe/ainotes/internal/gzippedhttp"
	"github.com/patric-chuzhbe/ainotes/internal/logger"
	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/service"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type appService interface {
	Signup(ctx context.Context, email, password, name string) (*user.User, error)

	Login(ctx context.Context, email, password string) (*service.Session, error)

	ListNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error)

	CreateNote(ctx context.Context, userID, title, content string, isAudio bool) (*note.Note, error)

	UpdateNote(
		ctx context.Context,
		userID string,
		noteID string,
		patch models.UpdateNoteRequest,
	) (*note.Note, error)

	DeleteNote(ctx context.Context, userID, noteID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type sessionManager interface {
	authenticator.Authenticator
	SetSessionCookie(response http.ResponseWriter, tokenString string)
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	svc  appService
	db   pinger
	auth sessionManager
}

// New builds the chi mux with logging, gzip and authentication middleware
// and all API routes registered.
func New(db pinger, svc appService, theAuth sessionManager) *chi.Mux {
	theRouter := &Router{
		svc:  svc,
		db:   db,
		auth: theAuth,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.UngzipRequest)
	router.Use(gzippedhttp.GzipResponse)

	router.Post(`/api/auth/signup`, theRouter.PostApiauthsignup)
	router.Post(`/api/auth/login`, theRouter.PostApiauthlogin)

	router.Group(func(protected chi.Router) {
		protected.Use(theAuth.AuthenticateUser)
		protected.Get(`/api/notes`, theRouter.GetApinotes)
		protected.Post(`/api/notes`, theRouter.PostApinotes)
		protected.Patch(`/api/notes/{noteID}`, theRouter.PatchApinotesid)
		protected.Delete(`/api/notes/{noteID}`, theRouter.DeleteApinotesid)
	})

	router.Get(`/ping`, theRouter.GetPing)

	return router
}

// PostApiauthsignup registers a new user and returns its public view.
func (r *Router) PostApiauthsignup(response http.ResponseWriter, request *http.Request) {
	var body models.SignupRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, "invalid JSON body")
		return
	}

	usr, err := r.svc.Signup(request.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		renderServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.SignupResponse{
		Message: "User created successfully",
		User: models.UserView{
			ID:        usr.ID,
			Email:     usr.Email,
			Name:      usr.Name,
			CreatedAt: usr.CreatedAt,
		},
	})
}

// PostApiauthlogin validates credentials and issues the session: a bearer
// token in the response body and a browser-session cookie alongside.
func (r *Router) PostApiauthlogin(response http.ResponseWriter, request *http.Request) {
	var body models.LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := r.svc.Login(request.Context(), body.Email, body.Password)
	if err != nil {
		renderServiceError(response, err)
		return
	}

	r.auth.SetSessionCookie(response, session.CookieToken)

	writeJSON(response, http.StatusOK, models.LoginResponse{
		Token: session.BearerToken,
		User: models.LoginUserView{
			ID:    session.User.ID,
			Email: session.User.Email,
		},
	})
}

// GetApinotes lists the authenticated user's notes with optional search
// and sort query parameters.
func (r *Router) GetApinotes(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "unauthorized")
		return
	}

	notes, err := r.svc.ListNotes(
		request.Context(),
		userID,
		request.URL.Query().Get("search"),
		request.URL.Query().Get("sort"),
	)
	if err != nil {
		renderServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, notes)
}

// PostApinotes creates a note owned by the authenticated user.
func (r *Router) PostApinotes(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body models.CreateNoteRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, "invalid JSON body")
		return
	}

	theNote, err := r.svc.CreateNote(request.Context(), userID, body.Title, body.Content, body.IsAudio)
	if err != nil {
		renderServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, theNote)
}

// PatchApinotesid applies a partial update (title, content, isFavorite)
// to one of the authenticated user's notes.
func (r *Router) PatchApinotesid(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "unauthorized")
		return
	}

	noteID := chi.URLParam(request, "noteID")
	if _, err := uuid.Parse(noteID); err != nil {
		writeError(response, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var patch models.UpdateNoteRequest
	if err := json.NewDecoder(request.Body).Decode(&patch); err != nil {
		writeError(response, http.StatusBadRequest, "invalid JSON body")
		return
	}

	theNote, err := r.svc.UpdateNote(request.Context(), userID, noteID, patch)
	if err != nil {
		renderServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, theNote)
}

// DeleteApinotesid removes one of the authenticated user's notes.
func (r *Router) DeleteApinotesid(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "unauthorized")
		return
	}

	noteID := chi.URLParam(request, "noteID")
	if _, err := uuid.Parse(noteID); err != nil {
		writeError(response, http.StatusBadRequest, "Invalid ID format")
		return
	}

	if err := r.svc.DeleteNote(request.Context(), userID, noteID); err != nil {
		renderServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.MessageResponse{Message: "Note deleted successfully"})
}

// GetPing reports storage reachability.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.db.Ping()`: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "internal server error")
		return
	}

	response.WriteHeader(http.StatusOK)
}

func renderServiceError(response http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(response, http.StatusBadRequest, err.Error())

	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(response, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())

	case errors.Is(err, models.ErrConflict):
		writeError(response, http.StatusConflict, "User already exists")

	case errors.Is(err, models.ErrNotFound):
		writeError(response, http.StatusNotFound, "Note not found")

	default:
		// unexpected failures stay generic so connection details never
		// reach the client
		logger.Log.Errorln("unexpected error: ", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, models.ErrorResponse{Error: message})
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response payload: ", zap.Error(err))
	}
}
