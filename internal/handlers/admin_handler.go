package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tamircibul/internal/models"
	"tamircibul/internal/services"
)

type AdminHandler struct {
	Service  *services.AdminService
	ErrorLog *log.Logger
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	stats, err := h.Service.Dashboard(r.Context(), actor)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	filter := models.UserFilter{
		Role:   getParam(r, "role"),
		Status: getParam(r, "status"),
		Search: getParam(r, "search"),
	}
	filter.Page, filter.Limit = parsePagination(r)
	users, pagination, err := h.Service.ListUsers(r.Context(), actor, filter)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: users, Pagination: pagination})
}

func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.Service.SetUserStatus(r.Context(), actor, id, in.Status); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user status updated"})
}

func (h *AdminHandler) PendingProviders(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	page, limit := parsePagination(r)
	providers, pagination, err := h.Service.PendingProviders(r.Context(), actor, page, limit)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: providers, Pagination: pagination})
}

func (h *AdminHandler) ApproveProvider(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid provider id"})
		return
	}
	provider, err := h.Service.ApproveProvider(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, provider)
}

func (h *AdminHandler) RejectProvider(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid provider id"})
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	provider, err := h.Service.RejectProvider(r.Context(), actor, id, in.Reason)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, provider)
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	filter := models.RequestFilter{
		Status:      getParam(r, "status"),
		ServiceType: getParam(r, "service_type"),
		City:        getParam(r, "city"),
		District:    getParam(r, "district"),
	}
	filter.Page, filter.Limit = parsePagination(r)
	requests, pagination, err := h.Service.ListRequests(r.Context(), actor, filter)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: requests, Pagination: pagination})
}
