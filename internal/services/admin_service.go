package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tamircibul/internal/models"
)

// AdminUserStore is the account surface the console needs on top of UserStore.
type AdminUserStore interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	CountByRole(ctx context.Context) (map[string]int, error)
	CountRecentRegistrations(ctx context.Context, days int) (int, error)
}

// AdminProviderStore is the approval-queue surface of the provider store.
type AdminProviderStore interface {
	GetProviderByID(ctx context.Context, id int) (models.ProviderProfile, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]models.ProviderProfile, int, error)
	SetStatus(ctx context.Context, id int, status string, verified bool, rejectionReason string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AdminRequestStore is the read-only request surface of the console.
type AdminRequestStore interface {
	ListRequests(ctx context.Context, f models.RequestFilter) ([]models.ServiceRequest, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AdminService backs the moderation console. Cache may be nil; the dashboard
// then recomputes on every call.
type AdminService struct {
	Users     AdminUserStore
	Providers AdminProviderStore
	Requests  AdminRequestStore
	Cache     *redis.Client
}

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = time.Minute
)

// Dashboard aggregates the console overview, served from Redis when a copy
// less than a minute old exists.
func (s *AdminService) Dashboard(ctx context.Context, actor models.Actor) (models.DashboardStats, error) {
	if actor.Role != models.RoleAdmin {
		return models.DashboardStats{}, models.ErrUnauthorized
	}

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var stats models.DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return stats, nil
			}
		}
	}

	usersByRole, err := s.Users.CountByRole(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	providersByStatus, err := s.Providers.CountByStatus(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	requestsByStatus, err := s.Requests.CountByStatus(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	recent, err := s.Users.CountRecentRegistrations(ctx, 7)
	if err != nil {
		return models.DashboardStats{}, err
	}

	totalRequests := 0
	for _, n := range requestsByStatus {
		totalRequests += n
	}
	stats := models.DashboardStats{
		TotalUsers:          usersByRole[models.RoleCustomer] + usersByRole[models.RoleService] + usersByRole[models.RoleAdmin],
		TotalCustomers:      usersByRole[models.RoleCustomer],
		TotalProviders:      usersByRole[models.RoleService],
		PendingProviders:    providersByStatus[models.ProviderStatusPending],
		ProvidersByStatus:   providersByStatus,
		RequestsByStatus:    requestsByStatus,
		TotalRequests:       totalRequests,
		RecentRegistrations: recent,
		GeneratedAt:         time.Now(),
	}

	if s.Cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.Cache.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL)
		}
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor models.Actor, f models.UserFilter) ([]models.User, models.Pagination, error) {
	if actor.Role != models.RoleAdmin {
		return nil, models.Pagination{}, models.ErrUnauthorized
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	users, total, err := s.Users.ListUsers(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return users, paginate(f.Page, f.Limit, total), nil
}

// SetUserStatus suspends or restores an account. Admin accounts cannot be
// touched through this endpoint.
func (s *AdminService) SetUserStatus(ctx context.Context, actor models.Actor, userID int, status string) error {
	if actor.Role != models.RoleAdmin {
		return models.ErrUnauthorized
	}
	switch status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
	default:
		v := models.NewValidationError()
		v.Add("status", "status must be one of active, inactive, suspended")
		return v
	}
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return models.ErrUnauthorized
	}
	if err := s.Users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)
	return nil
}

// PendingProviders is the approval queue, oldest application first.
func (s *AdminService) PendingProviders(ctx context.Context, actor models.Actor, page, limit int) ([]models.ProviderProfile, models.Pagination, error) {
	if actor.Role != models.RoleAdmin {
		return nil, models.Pagination{}, models.ErrUnauthorized
	}
	page, limit = normalizePage(page, limit)
	providers, total, err := s.Providers.ListByStatus(ctx, models.ProviderStatusPending, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return providers, paginate(page, limit, total), nil
}

// ApproveProvider activates the profile, marks it verified and unlocks the
// owning account for login.
func (s *AdminService) ApproveProvider(ctx context.Context, actor models.Actor, providerID int) (models.ProviderProfile, error) {
	if actor.Role != models.RoleAdmin {
		return models.ProviderProfile{}, models.ErrUnauthorized
	}
	profile, err := s.Providers.GetProviderByID(ctx, providerID)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	if err := s.Providers.SetStatus(ctx, providerID, models.ProviderStatusActive, true, ""); err != nil {
		return models.ProviderProfile{}, err
	}
	if err := s.Users.UpdateStatus(ctx, profile.UserID, models.UserStatusActive); err != nil {
		return models.ProviderProfile{}, err
	}
	s.invalidateDashboard(ctx)
	return s.Providers.GetProviderByID(ctx, providerID)
}

// RejectProvider suspends the profile with the given reason and locks the
// owning account.
func (s *AdminService) RejectProvider(ctx context.Context, actor models.Actor, providerID int, reason string) (models.ProviderProfile, error) {
	if actor.Role != models.RoleAdmin {
		return models.ProviderProfile{}, models.ErrUnauthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > maxReasonLength {
		v := models.NewValidationError()
		v.Add("reason", "reason is required and must be at most 500 characters")
		return models.ProviderProfile{}, v
	}
	profile, err := s.Providers.GetProviderByID(ctx, providerID)
	if err != nil {
		return models.ProviderProfile{}, err
	}
	if err := s.Providers.SetStatus(ctx, providerID, models.ProviderStatusSuspended, false, reason); err != nil {
		return models.ProviderProfile{}, err
	}
	if err := s.Users.UpdateStatus(ctx, profile.UserID, models.UserStatusSuspended); err != nil {
		return models.ProviderProfile{}, err
	}
	s.invalidateDashboard(ctx)
	return s.Providers.GetProviderByID(ctx, providerID)
}

// ListRequests gives the console an unrestricted, filterable request listing.
func (s *AdminService) ListRequests(ctx context.Context, actor models.Actor, f models.RequestFilter) ([]models.ServiceRequest, models.Pagination, error) {
	if actor.Role != models.RoleAdmin {
		return nil, models.Pagination{}, models.ErrUnauthorized
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	requests, total, err := s.Requests.ListRequests(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return requests, paginate(f.Page, f.Limit, total), nil
}

func (s *AdminService) invalidateDashboard(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Del(ctx, dashboardCacheKey)
	}
}
