package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tamircibul/internal/models"
	"tamircibul/internal/services"
)

type UserHandler struct {
	Service  *services.UserService
	ErrorLog *log.Logger
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	user, err := h.Service.Register(r.Context(), in)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	user, tokens, err := h.Service.Login(r.Context(), in)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RefreshToken == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh_token is required"})
		return
	}
	tokens, err := h.Service.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, tokens)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	if err := h.Service.Logout(r.Context(), actor); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	user, err := h.Service.Me(r.Context(), actor)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	user, err := h.Service.UpdateMe(r.Context(), actor, in.Name, in.Email, in.Phone)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.Service.ChangePassword(r.Context(), actor, in.CurrentPassword, in.NewPassword); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.Service.ForgotPassword(r.Context(), in.Email); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	// Same answer whether or not the address exists.
	respondJSON(w, http.StatusOK, map[string]string{"message": "if the address exists, a reset link has been sent"})
}

func (h *UserHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var in models.VerifyResetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.Service.VerifyResetToken(r.Context(), in); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "token is valid"})
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.Service.ResetPassword(r.Context(), in); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}
