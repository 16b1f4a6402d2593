package models

import "time"

// Provider profile lifecycle statuses. Only active profiles are eligible for
// search results; the verified flag is informational (see ProviderFilter).
const (
	ProviderStatusActive    = "active"
	ProviderStatusInactive  = "inactive"
	ProviderStatusPending   = "pending"
	ProviderStatusSuspended = "suspended"
)

// ProviderProfile is the service-side profile, one per service account.
// Rating and TotalReviews are a derived aggregate over that provider's rated
// service requests, recomputed inside the rating transaction.
type ProviderProfile struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	CompanyName     string     `json:"company_name"`
	ServiceType     string     `json:"service_type"`
	ServiceTypeName string     `json:"service_type_name,omitempty"`
	Description     string     `json:"description,omitempty"`
	City            string     `json:"city,omitempty"`
	District        string     `json:"district,omitempty"`
	Address         string     `json:"address,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	WorkingHours    string     `json:"working_hours,omitempty"`
	Rating          float64    `json:"rating"`
	TotalReviews    int        `json:"total_reviews"`
	IsVerified      bool       `json:"is_verified"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	OwnerName       string     `json:"owner_name,omitempty"`
	OwnerPhone      string     `json:"owner_phone,omitempty"`
	DistanceKm      *float64   `json:"distance_km,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Search sort modes used when no coordinate is supplied.
const (
	ProviderSortNewest  = "newest"
	ProviderSortRating  = "rating"
	ProviderSortReviews = "reviews"
)

// ProviderFilter describes a directory search. Lat/Lng/RadiusKm are all
// required together for a geo search; Sort only applies without coordinates.
type ProviderFilter struct {
	ServiceType string
	City        string
	District    string
	Search      string
	Lat         *float64
	Lng         *float64
	RadiusKm    *float64
	Sort        string
	Page        int
	Limit       int
}

// HasGeo reports whether the filter asks for a radius search.
func (f ProviderFilter) HasGeo() bool {
	return f.Lat != nil && f.Lng != nil && f.RadiusKm != nil
}

type ProviderUpdate struct {
	CompanyName  *string  `json:"company_name"`
	Description  *string  `json:"description"`
	City         *string  `json:"city"`
	District     *string  `json:"district"`
	Address      *string  `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	WorkingHours *string  `json:"working_hours"`
}

// ProviderStats is the per-provider request breakdown shown on the dashboard.
type ProviderStats struct {
	TotalRequests     int     `json:"total_requests"`
	PendingRequests   int     `json:"pending_requests"`
	AcceptedRequests  int     `json:"accepted_requests"`
	CompletedJobs     int     `json:"completed_jobs"`
	CancelledRequests int     `json:"cancelled_requests"`
	Rating            float64 `json:"rating"`
	TotalReviews      int     `json:"total_reviews"`
}

// Pagination is the envelope returned with every paginated list.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}
