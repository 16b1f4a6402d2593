package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tamircibul/internal/lifecycle"
	"tamircibul/internal/models"
)

// RequestStore is the persistence surface the lifecycle engine runs on. The
// Accept/Reject/Complete/Cancel/Rate writes are status-guarded: the store must
// return models.ErrStatusConflict when the row no longer satisfies the
// operation's precondition at write time.
type RequestStore interface {
	CreateRequest(ctx context.Context, req models.ServiceRequest) (models.ServiceRequest, error)
	GetRequestByID(ctx context.Context, id int) (models.ServiceRequest, error)
	ListRequests(ctx context.Context, f models.RequestFilter) ([]models.ServiceRequest, int, error)
	Accept(ctx context.Context, id, providerID int) error
	Reject(ctx context.Context, id int, reason string) error
	Complete(ctx context.Context, id int) error
	Cancel(ctx context.Context, id int, reason string) error
	DeleteRequest(ctx context.Context, id int) error
	Rate(ctx context.Context, id, providerID, rating int, comment string) error
	SaveComplaint(ctx context.Context, id int, reason, description string) error
}

// RequestService owns the service-request lifecycle. Every operation takes
// the acting account explicitly and enforces both authorization and the
// transition table before touching the store.
type RequestService struct {
	Store RequestStore
}

const maxReasonLength = 500

func (s *RequestService) CreateRequest(ctx context.Context, actor models.Actor, in models.CreateRequestInput) (models.ServiceRequest, error) {
	if actor.Role != models.RoleCustomer {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}

	v := models.NewValidationError()
	if !models.ValidServiceType(in.ServiceType) {
		v.Add("service_type", "unknown service type")
	}
	if strings.TrimSpace(in.Title) == "" {
		v.Add("title", "title is required")
	} else if len(in.Title) > 255 {
		v.Add("title", "title must be at most 255 characters")
	}
	if strings.TrimSpace(in.Description) == "" {
		v.Add("description", "description is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		v.Add("address", "address is required")
	}
	if strings.TrimSpace(in.City) == "" {
		v.Add("city", "city is required")
	}
	if strings.TrimSpace(in.District) == "" {
		v.Add("district", "district is required")
	}
	if in.BudgetMin != nil && *in.BudgetMin < 0 {
		v.Add("budget_min", "budget must be non-negative")
	}
	if in.BudgetMax != nil && *in.BudgetMax < 0 {
		v.Add("budget_max", "budget must be non-negative")
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMax < *in.BudgetMin {
		v.Add("budget_max", "budget_max must be greater than or equal to budget_min")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
	default:
		v.Add("priority", "priority must be one of low, medium, high, urgent")
	}
	var preferredDate *time.Time
	if in.PreferredDate != "" {
		parsed, err := time.Parse("2006-01-02", in.PreferredDate)
		if err != nil {
			v.Add("preferred_date", "preferred_date must be formatted as YYYY-MM-DD")
		} else if !parsed.After(time.Now()) {
			v.Add("preferred_date", "preferred_date must be in the future")
		} else {
			preferredDate = &parsed
		}
	}
	if v.HasErrors() {
		return models.ServiceRequest{}, v
	}

	req := models.ServiceRequest{
		CustomerID:    actor.ID,
		ProviderID:    in.ProviderID,
		ServiceType:   in.ServiceType,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Address:       in.Address,
		City:          in.City,
		District:      in.District,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		PreferredDate: preferredDate,
		PreferredTime: in.PreferredTime,
		BudgetMin:     in.BudgetMin,
		BudgetMax:     in.BudgetMax,
		Status:        lifecycle.StatusPending,
		Priority:      priority,
		Images:        in.Images,
	}
	return s.Store.CreateRequest(ctx, req)
}

// AcceptRequest claims a pending request for the acting provider. Checks run
// status-first: a non-pending request fails with ErrInvalidTransition before
// any assignee comparison; an assignee mismatch on a pending request is
// ErrUnauthorized. Unassigned requests are open to any provider (claim model).
func (s *RequestService) AcceptRequest(ctx context.Context, actor models.Actor, id int) (models.ServiceRequest, error) {
	if actor.Role != models.RoleService {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if err := acceptPrecondition(req, actor.ID); err != nil {
		return models.ServiceRequest{}, err
	}

	if err := s.Store.Accept(ctx, id, actor.ID); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			// Lost the race; classify against the fresh row.
			fresh, ferr := s.Store.GetRequestByID(ctx, id)
			if ferr != nil {
				return models.ServiceRequest{}, ferr
			}
			if perr := acceptPrecondition(fresh, actor.ID); perr != nil {
				return models.ServiceRequest{}, perr
			}
			return models.ServiceRequest{}, models.ErrInvalidTransition
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

func acceptPrecondition(req models.ServiceRequest, providerID int) error {
	if req.Status != lifecycle.StatusPending {
		return models.ErrInvalidTransition
	}
	if req.ProviderID != nil && *req.ProviderID != providerID {
		return models.ErrUnauthorized
	}
	return nil
}

func (s *RequestService) RejectRequest(ctx context.Context, actor models.Actor, id int, reason string) (models.ServiceRequest, error) {
	if actor.Role != models.RoleService {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > maxReasonLength {
		v := models.NewValidationError()
		v.Add("reason", "reason is required and must be at most 500 characters")
		return models.ServiceRequest{}, v
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ProviderID == nil || *req.ProviderID != actor.ID {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if req.Status != lifecycle.StatusPending {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}

	if err := s.Store.Reject(ctx, id, reason); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ServiceRequest{}, models.ErrInvalidTransition
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

func (s *RequestService) CompleteRequest(ctx context.Context, actor models.Actor, id int) (models.ServiceRequest, error) {
	if actor.Role != models.RoleService {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.ProviderID == nil || *req.ProviderID != actor.ID {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if req.Status != lifecycle.StatusAccepted {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}

	if err := s.Store.Complete(ctx, id); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ServiceRequest{}, models.ErrInvalidTransition
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

func (s *RequestService) CancelRequest(ctx context.Context, actor models.Actor, id int, reason string) (models.ServiceRequest, error) {
	if actor.Role != models.RoleCustomer {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.CustomerID != actor.ID {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if lifecycle.IsTerminal(req.Status) {
		return models.ServiceRequest{}, models.ErrAlreadyTerminal
	}

	if err := s.Store.Cancel(ctx, id, strings.TrimSpace(reason)); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ServiceRequest{}, models.ErrAlreadyTerminal
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

// DeleteRequest hard-deletes a rejected or cancelled request. Allowed to the
// customer of record or the assigned provider only.
func (s *RequestService) DeleteRequest(ctx context.Context, actor models.Actor, id int) error {
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return err
	}
	isCustomer := actor.Role == models.RoleCustomer && req.CustomerID == actor.ID
	isProvider := actor.Role == models.RoleService && req.ProviderID != nil && *req.ProviderID == actor.ID
	if !isCustomer && !isProvider {
		return models.ErrUnauthorized
	}
	if !lifecycle.Deletable(req.Status) {
		return models.ErrNotDeletable
	}

	if err := s.Store.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ErrNotDeletable
		}
		return err
	}
	return nil
}

// RateRequest records the customer's 1-5 rating. The gate is status ==
// accepted (see lifecycle.Annotatable); a repeated call overwrites, last
// write wins. The store recomputes the provider's aggregate inside the same
// transaction as the rating write.
func (s *RequestService) RateRequest(ctx context.Context, actor models.Actor, id int, in models.RateRequestInput) (models.ServiceRequest, error) {
	if actor.Role != models.RoleCustomer {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if in.Rating < 1 || in.Rating > 5 {
		v := models.NewValidationError()
		v.Add("rating", "rating must be between 1 and 5")
		return models.ServiceRequest{}, v
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.CustomerID != actor.ID {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if !lifecycle.Annotatable(req.Status) {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}
	if req.ProviderID == nil {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}

	if err := s.Store.Rate(ctx, id, *req.ProviderID, in.Rating, strings.TrimSpace(in.Comment)); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ServiceRequest{}, models.ErrInvalidTransition
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

// ComplainAboutRequest records a complaint annotation. Same accepted-only
// gate as RateRequest; the status does not change and no escalation workflow
// is triggered.
func (s *RequestService) ComplainAboutRequest(ctx context.Context, actor models.Actor, id int, in models.ComplaintInput) (models.ServiceRequest, error) {
	if actor.Role != models.RoleCustomer {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > maxReasonLength {
		v := models.NewValidationError()
		v.Add("reason", "reason is required and must be at most 500 characters")
		return models.ServiceRequest{}, v
	}
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if req.CustomerID != actor.ID {
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	if !lifecycle.Annotatable(req.Status) {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}

	if err := s.Store.SaveComplaint(ctx, id, reason, in.Description); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.ServiceRequest{}, models.ErrInvalidTransition
		}
		return models.ServiceRequest{}, err
	}
	return s.Store.GetRequestByID(ctx, id)
}

// GetRequest returns a request the actor is allowed to see: its customer, its
// assigned provider, or an admin.
func (s *RequestService) GetRequest(ctx context.Context, actor models.Actor, id int) (models.ServiceRequest, error) {
	req, err := s.Store.GetRequestByID(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	switch {
	case actor.Role == models.RoleAdmin:
	case actor.Role == models.RoleCustomer && req.CustomerID == actor.ID:
	case actor.Role == models.RoleService && req.ProviderID != nil && *req.ProviderID == actor.ID:
	default:
		return models.ServiceRequest{}, models.ErrUnauthorized
	}
	return req, nil
}

func (s *RequestService) ListForCustomer(ctx context.Context, actor models.Actor, status string, page, limit int) ([]models.ServiceRequest, models.Pagination, error) {
	if actor.Role != models.RoleCustomer {
		return nil, models.Pagination{}, models.ErrUnauthorized
	}
	page, limit = normalizePage(page, limit)
	requests, total, err := s.Store.ListRequests(ctx, models.RequestFilter{
		CustomerID: actor.ID,
		Status:     status,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return requests, paginate(page, limit, total), nil
}

func (s *RequestService) ListForProvider(ctx context.Context, actor models.Actor, status string, page, limit int) ([]models.ServiceRequest, models.Pagination, error) {
	if actor.Role != models.RoleService {
		return nil, models.Pagination{}, models.ErrUnauthorized
	}
	page, limit = normalizePage(page, limit)
	requests, total, err := s.Store.ListRequests(ctx, models.RequestFilter{
		ProviderID: actor.ID,
		Status:     status,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return requests, paginate(page, limit, total), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func paginate(page, limit, total int) models.Pagination {
	lastPage := (total + limit - 1) / limit
	if lastPage < 1 {
		lastPage = 1
	}
	return models.Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     limit,
		Total:       total,
	}
}
