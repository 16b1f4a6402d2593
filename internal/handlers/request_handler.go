package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tamircibul/internal/models"
	"tamircibul/internal/services"
)

type RequestHandler struct {
	Service  *services.RequestService
	ErrorLog *log.Logger
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	var in models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req, err := h.Service.CreateRequest(r.Context(), actor, in)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	req, err := h.Service.GetRequest(r.Context(), actor, id)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// ListMine lists the authenticated customer's requests.
func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	page, limit := parsePagination(r)
	requests, pagination, err := h.Service.ListForCustomer(r.Context(), actor, getParam(r, "status"), page, limit)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: requests, Pagination: pagination})
}

// ListAssigned lists the requests assigned to the authenticated provider.
func (h *RequestHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	page, limit := parsePagination(r)
	requests, pagination, err := h.Service.ListForProvider(r.Context(), actor, getParam(r, "status"), page, limit)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: requests, Pagination: pagination})
}

func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.AcceptRequest(r.Context(), actor, id)
	})
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.RejectRequest(r.Context(), actor, id, in.Reason)
	})
}

func (h *RequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.CompleteRequest(r.Context(), actor, id)
	})
}

func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	// The body is optional for cancellation.
	json.NewDecoder(r.Body).Decode(&in)
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.CancelRequest(r.Context(), actor, id, in.Reason)
	})
}

func (h *RequestHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var in models.RateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.RateRequest(r.Context(), actor, id, in)
	})
}

func (h *RequestHandler) Complain(w http.ResponseWriter, r *http.Request) {
	var in models.ComplaintInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.transition(w, r, func(actor models.Actor, id int) (models.ServiceRequest, error) {
		return h.Service.ComplainAboutRequest(r.Context(), actor, id, in)
	})
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	if err := h.Service.DeleteRequest(r.Context(), actor, id); err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "request deleted"})
}

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request, op func(models.Actor, int) (models.ServiceRequest, error)) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	req, err := op(actor, id)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
