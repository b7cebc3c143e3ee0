package handlers

import (
	"errors"
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/service"
)

// writeServiceError maps service-layer errors onto HTTP status codes.
// Anything unrecognized is a 500 with a generic message so internal details
// never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidationError(err):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, repository.ErrWebsiteNotFound):
		httputil.WriteError(w, http.StatusNotFound, "website not found")
	case errors.Is(err, repository.ErrUserNotFound):
		httputil.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrTokenNotFound):
		httputil.WriteError(w, http.StatusUnauthorized, "invalid tracking token")
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
