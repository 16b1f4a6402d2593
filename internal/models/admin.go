package models

import "time"

// DashboardStats is the admin console overview. Counts are grouped by the
// dimension named in the map key; RecentRegistrations covers the last 7 days.
type DashboardStats struct {
	TotalUsers          int            `json:"total_users"`
	TotalCustomers      int            `json:"total_customers"`
	TotalProviders      int            `json:"total_providers"`
	PendingProviders    int            `json:"pending_providers"`
	ProvidersByStatus   map[string]int `json:"providers_by_status"`
	RequestsByStatus    map[string]int `json:"requests_by_status"`
	TotalRequests       int            `json:"total_requests"`
	RecentRegistrations int            `json:"recent_registrations"`
	GeneratedAt         time.Time      `json:"generated_at"`
}
