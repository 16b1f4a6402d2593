package models

import "time"

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ServiceRequest is the central entity: a customer's posted job seeking a
// category-matched provider. ProviderID stays nil until a provider accepts or
// the customer targets one at creation time.
type ServiceRequest struct {
	ID                   int        `json:"id"`
	CustomerID           int        `json:"customer_id"`
	ProviderID           *int       `json:"service_provider_id,omitempty"`
	ServiceType          string     `json:"service_type"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	District             string     `json:"district"`
	Latitude             *float64   `json:"latitude,omitempty"`
	Longitude            *float64   `json:"longitude,omitempty"`
	PreferredDate        *time.Time `json:"preferred_date,omitempty"`
	PreferredTime        string     `json:"preferred_time,omitempty"`
	BudgetMin            *float64   `json:"budget_min,omitempty"`
	BudgetMax            *float64   `json:"budget_max,omitempty"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	Images               []string   `json:"images,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	Rating               *int       `json:"rating,omitempty"`
	RatingComment        string     `json:"rating_comment,omitempty"`
	RatedAt              *time.Time `json:"rated_at,omitempty"`
	HasComplaint         bool       `json:"has_complaint"`
	ComplaintReason      string     `json:"complaint_reason,omitempty"`
	ComplaintDescription string     `json:"complaint_description,omitempty"`
	ComplaintDate        *time.Time `json:"complaint_date,omitempty"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

type CreateRequestInput struct {
	ProviderID    *int     `json:"service_provider_id"`
	ServiceType   string   `json:"service_type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	District      string   `json:"district"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	PreferredDate string   `json:"preferred_date"`
	PreferredTime string   `json:"preferred_time"`
	BudgetMin     *float64 `json:"budget_min"`
	BudgetMax     *float64 `json:"budget_max"`
	Priority      string   `json:"priority"`
	Images        []string `json:"images"`
}

type RateRequestInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ComplaintInput struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// RequestFilter narrows request listings; zero values mean "no filter".
type RequestFilter struct {
	CustomerID  int
	ProviderID  int
	Status      string
	ServiceType string
	City        string
	District    string
	Page        int
	Limit       int
}
