package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tamircibul/internal/models"
)

// getParam returns a path or query parameter value regardless of whether the
// router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	return r.URL.Query().Get(name)
}

func getIntParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(getParam(r, name))
}

// actorFromContext reads the identity the JWT middleware stored on the request.
func actorFromContext(r *http.Request) (models.Actor, bool) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		return models.Actor{}, false
	}
	role, ok := r.Context().Value("role").(string)
	if !ok {
		return models.Actor{}, false
	}
	return models.Actor{ID: userID, Role: role}, true
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(getParam(r, "page"))
	limit, _ = strconv.Atoi(getParam(r, "limit"))
	return page, limit
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// listResponse is the envelope for every paginated collection.
type listResponse struct {
	Data       interface{}       `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError maps a service error onto an HTTP status. Anything outside the
// known taxonomy is a 500 and gets logged; the client only sees a generic
// message.
func respondError(w http.ResponseWriter, errorLog *log.Logger, err error) {
	var v *models.ValidationError
	if errors.As(err, &v) {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: v.Fields})
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrSessionNotFound):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrAccountPending),
		errors.Is(err, models.ErrAccountInactive):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrProviderNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrDuplicatePhone):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyTerminal),
		errors.Is(err, models.ErrNotDeletable),
		errors.Is(err, models.ErrResetTokenInvalid):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		if errorLog != nil {
			errorLog.Printf("internal error: %v", err)
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
