package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"tamircibul/internal/models"
	"tamircibul/internal/services"
)

type ProviderHandler struct {
	Service  *services.ProviderService
	ErrorLog *log.Logger
}

// Search is the public directory endpoint. Coordinates switch it into radius
// mode; otherwise sort and the usual filters apply.
func (h *ProviderHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := models.ProviderFilter{
		ServiceType: getParam(r, "service_type"),
		City:        getParam(r, "city"),
		District:    getParam(r, "district"),
		Search:      getParam(r, "search"),
		Sort:        getParam(r, "sort"),
	}
	filter.Page, filter.Limit = parsePagination(r)

	if v := getParam(r, "latitude"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid latitude"})
			return
		}
		filter.Lat = &lat
	}
	if v := getParam(r, "longitude"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid longitude"})
			return
		}
		filter.Lng = &lng
	}
	if v := getParam(r, "radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid radius"})
			return
		}
		filter.RadiusKm = &radius
	}

	providers, pagination, err := h.Service.Search(r.Context(), filter)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Data: providers, Pagination: pagination})
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid provider id"})
		return
	}
	provider, err := h.Service.GetProvider(r.Context(), id)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, provider)
}

func (h *ProviderHandler) ServiceTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Service.ServiceTypes())
}

func (h *ProviderHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	profile, err := h.Service.MyProfile(r.Context(), actor)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *ProviderHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	var upd models.ProviderUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	profile, err := h.Service.UpdateMyProfile(r.Context(), actor, upd)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *ProviderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	profile, stats, err := h.Service.Dashboard(r.Context(), actor)
	if err != nil {
		respondError(w, h.ErrorLog, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"stats":   stats,
	})
}
