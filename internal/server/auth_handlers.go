package server

import (
	"errors"
	"net/http"

	"github.com/Tomlord1122/task-manager/internal/service"
)

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusBadRequest, "User already exists")
		default:
			s.respondWithServiceError(w, r, err, "Failed to register user")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, token)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusBadRequest, "Invalid Credentials")
			return
		}
		s.respondWithServiceError(w, r, err, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, token)
}

func (s *Server) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := s.authService.CurrentUser(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondWithServiceError(w, r, err, "Failed to load user")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// respondWithServiceError maps the errors shared by all handlers. Anything
// unexpected is logged and answered with a generic 500 carrying failMsg.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrInvalidTaskID):
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, "Token is not valid")
	default:
		s.log.ErrorContext(r.Context(), failMsg, "error", err, "path", r.URL.Path)
		respondWithError(w, http.StatusInternalServerError, failMsg)
	}
}
