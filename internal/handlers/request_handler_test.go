package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bmizerany/pat"

	"tamircibul/internal/lifecycle"
	"tamircibul/internal/models"
	"tamircibul/internal/services"
)

// memRequestStore is a minimal in-memory services.RequestStore for endpoint
// tests; guards behave like the SQL repository's conditional updates.
type memRequestStore struct {
	nextID   int
	requests map[int]models.ServiceRequest
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{nextID: 1, requests: make(map[int]models.ServiceRequest)}
}

func (m *memRequestStore) CreateRequest(_ context.Context, req models.ServiceRequest) (models.ServiceRequest, error) {
	req.ID = m.nextID
	req.CreatedAt = time.Now()
	m.nextID++
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequestStore) GetRequestByID(_ context.Context, id int) (models.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return models.ServiceRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}

func (m *memRequestStore) ListRequests(_ context.Context, f models.RequestFilter) ([]models.ServiceRequest, int, error) {
	matched := []models.ServiceRequest{}
	for id := 1; id < m.nextID; id++ {
		req, ok := m.requests[id]
		if !ok {
			continue
		}
		if f.CustomerID > 0 && req.CustomerID != f.CustomerID {
			continue
		}
		if f.ProviderID > 0 && (req.ProviderID == nil || *req.ProviderID != f.ProviderID) {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		matched = append(matched, req)
	}
	return matched, len(matched), nil
}

func (m *memRequestStore) Accept(_ context.Context, id, providerID int) error {
	req, ok := m.requests[id]
	if !ok || req.Status != lifecycle.StatusPending {
		return models.ErrStatusConflict
	}
	if req.ProviderID != nil && *req.ProviderID != providerID {
		return models.ErrStatusConflict
	}
	req.ProviderID = &providerID
	req.Status = lifecycle.StatusAccepted
	m.requests[id] = req
	return nil
}

func (m *memRequestStore) Reject(_ context.Context, id int, reason string) error {
	req, ok := m.requests[id]
	if !ok || req.Status != lifecycle.StatusPending {
		return models.ErrStatusConflict
	}
	req.Status = lifecycle.StatusRejected
	req.RejectionReason = reason
	m.requests[id] = req
	return nil
}

func (m *memRequestStore) Complete(_ context.Context, id int) error {
	req, ok := m.requests[id]
	if !ok || req.Status != lifecycle.StatusAccepted {
		return models.ErrStatusConflict
	}
	req.Status = lifecycle.StatusCompleted
	m.requests[id] = req
	return nil
}

func (m *memRequestStore) Cancel(_ context.Context, id int, reason string) error {
	req, ok := m.requests[id]
	if !ok || (req.Status != lifecycle.StatusPending && req.Status != lifecycle.StatusAccepted) {
		return models.ErrStatusConflict
	}
	req.Status = lifecycle.StatusCancelled
	req.CancellationReason = reason
	m.requests[id] = req
	return nil
}

func (m *memRequestStore) DeleteRequest(_ context.Context, id int) error {
	req, ok := m.requests[id]
	if !ok || (req.Status != lifecycle.StatusRejected && req.Status != lifecycle.StatusCancelled) {
		return models.ErrStatusConflict
	}
	delete(m.requests, id)
	return nil
}

func (m *memRequestStore) Rate(_ context.Context, id, _ int, rating int, comment string) error {
	req, ok := m.requests[id]
	if !ok || req.Status != lifecycle.StatusAccepted {
		return models.ErrStatusConflict
	}
	req.Rating = &rating
	req.RatingComment = comment
	m.requests[id] = req
	return nil
}

func (m *memRequestStore) SaveComplaint(_ context.Context, id int, reason, description string) error {
	req, ok := m.requests[id]
	if !ok || req.Status != lifecycle.StatusAccepted {
		return models.ErrStatusConflict
	}
	req.HasComplaint = true
	req.ComplaintReason = reason
	req.ComplaintDescription = description
	m.requests[id] = req
	return nil
}

// asActor emulates the JWT middleware by planting the identity on the context.
func asActor(actor models.Actor, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), "user_id", actor.ID)
		ctx = context.WithValue(ctx, "role", actor.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestMux(store *memRequestStore, actor models.Actor) *pat.PatternServeMux {
	h := &RequestHandler{Service: &services.RequestService{Store: store}}
	mux := pat.New()
	mux.Post("/api/requests", asActor(actor, http.HandlerFunc(h.Create)))
	mux.Get("/api/requests/my", asActor(actor, http.HandlerFunc(h.ListMine)))
	mux.Get("/api/requests/:id", asActor(actor, http.HandlerFunc(h.Get)))
	mux.Post("/api/requests/:id/accept", asActor(actor, http.HandlerFunc(h.Accept)))
	mux.Post("/api/requests/:id/cancel", asActor(actor, http.HandlerFunc(h.Cancel)))
	mux.Post("/api/requests/:id/rate", asActor(actor, http.HandlerFunc(h.Rate)))
	mux.Del("/api/requests/:id", asActor(actor, http.HandlerFunc(h.Delete)))
	return mux
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func seedPending(t *testing.T, store *memRequestStore, customerID int) models.ServiceRequest {
	t.Helper()
	req, err := store.CreateRequest(context.Background(), models.ServiceRequest{
		CustomerID:  customerID,
		ServiceType: models.ServiceTypePlumbing,
		Title:       "Su kaçağı",
		Description: "Mutfak lavabosu",
		Address:     "Moda Cad. 12",
		City:        "İstanbul",
		District:    "Kadıköy",
		Status:      lifecycle.StatusPending,
		Priority:    models.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return req
}

func TestCreateRequestEndpoint(t *testing.T) {
	store := newMemRequestStore()
	mux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})

	rec := doJSON(t, mux, http.MethodPost, "/api/requests", `{
		"service_type": "plumbing",
		"title": "Su kaçağı",
		"description": "Mutfak lavabosunun altı",
		"address": "Moda Cad. 12",
		"city": "İstanbul",
		"district": "Kadıköy"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.ServiceRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != lifecycle.StatusPending || created.Priority != models.PriorityMedium {
		t.Errorf("unexpected defaults: %+v", created)
	}
}

func TestCreateRequestEndpointValidation(t *testing.T) {
	store := newMemRequestStore()
	mux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})

	rec := doJSON(t, mux, http.MethodPost, "/api/requests", `{"service_type": "gardening"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"service_type", "title", "city"} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("missing field %q in %v", field, resp.Fields)
		}
	}
}

func TestAcceptEndpointStatusCodes(t *testing.T) {
	store := newMemRequestStore()
	seeded := seedPending(t, store, 1)

	providerMux := newRequestMux(store, models.Actor{ID: 10, Role: models.RoleService})
	rec := doJSON(t, providerMux, http.MethodPost, "/api/requests/1/accept", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Second provider hits the closed window: 422, not 403.
	otherMux := newRequestMux(store, models.Actor{ID: 11, Role: models.RoleService})
	rec = doJSON(t, otherMux, http.MethodPost, "/api/requests/1/accept", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("late accept: status = %d, want 422", rec.Code)
	}

	// A customer cannot accept at all.
	customerMux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})
	rec = doJSON(t, customerMux, http.MethodPost, "/api/requests/1/accept", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer accept: status = %d, want 403", rec.Code)
	}

	_ = seeded
}

func TestRateEndpointGate(t *testing.T) {
	store := newMemRequestStore()
	seedPending(t, store, 1)
	customerMux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})

	rec := doJSON(t, customerMux, http.MethodPost, "/api/requests/1/rate", `{"rating": 5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rate pending: status = %d, want 422", rec.Code)
	}

	providerMux := newRequestMux(store, models.Actor{ID: 10, Role: models.RoleService})
	if rec := doJSON(t, providerMux, http.MethodPost, "/api/requests/1/accept", ""); rec.Code != http.StatusOK {
		t.Fatalf("accept: %d", rec.Code)
	}

	rec = doJSON(t, customerMux, http.MethodPost, "/api/requests/1/rate", `{"rating": 5, "comment": "çok iyi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rate accepted: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, customerMux, http.MethodPost, "/api/requests/1/rate", `{"rating": 9}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rate out of range: status = %d, want 422", rec.Code)
	}
}

func TestDeleteEndpointLifecycle(t *testing.T) {
	store := newMemRequestStore()
	seedPending(t, store, 1)
	customerMux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})

	rec := doJSON(t, customerMux, http.MethodDelete, "/api/requests/1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("delete pending: status = %d, want 422", rec.Code)
	}

	if rec := doJSON(t, customerMux, http.MethodPost, "/api/requests/1/cancel", `{"reason": "vazgeçtim"}`); rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d", rec.Code)
	}
	if rec := doJSON(t, customerMux, http.MethodDelete, "/api/requests/1", ""); rec.Code != http.StatusOK {
		t.Fatalf("delete cancelled: %d", rec.Code)
	}
	if rec := doJSON(t, customerMux, http.MethodGet, "/api/requests/1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: status = %d, want 404", rec.Code)
	}
}

func TestListMineEnvelope(t *testing.T) {
	store := newMemRequestStore()
	seedPending(t, store, 1)
	seedPending(t, store, 1)
	seedPending(t, store, 2)

	mux := newRequestMux(store, models.Actor{ID: 1, Role: models.RoleCustomer})
	rec := doJSON(t, mux, http.MethodGet, "/api/requests/my", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var resp struct {
		Data       []models.ServiceRequest `json:"data"`
		Pagination models.Pagination       `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 || resp.Pagination.Total != 2 {
		t.Errorf("got %d rows, pagination %+v", len(resp.Data), resp.Pagination)
	}
}
