package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/apperr"
	"github.com/go-chi/chi/v5"
)

// fail maps service and request errors onto the JSON error envelope. Anything
// unclassified is logged and reported as a 500 without detail.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *httpx.RequestError
	if errors.As(err, &reqErr) {
		httpx.WriteError(w, r, http.StatusBadRequest, reqErr.Code, reqErr.Message)
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status, code := statusFor(appErr.Kind)
		httpx.WriteError(w, r, status, code, appErr.Message)
		return
	}

	h.logger.Error("request failed",
		"request_id", httpx.RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	httpx.WriteError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "internal server error")
}

// Conflicts are reported as 400, matching the established client contract.
func statusFor(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindInvalid:
		return http.StatusBadRequest, httpx.CodeValidation
	case apperr.KindConflict:
		return http.StatusBadRequest, httpx.CodeConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, httpx.CodeUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden, httpx.CodeForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound, httpx.CodeNotFound
	default:
		return http.StatusInternalServerError, httpx.CodeInternal
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &httpx.RequestError{Code: httpx.CodeBadRequest, Message: "invalid " + name}
	}
	return id, nil
}

// caller is only called behind RequireAuth.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
