package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// Roles and account statuses. Every account is exactly one role; service
// accounts start out pending until an admin approves the provider profile.
const (
	RoleCustomer = "customer"
	RoleService  = "service"
	RoleAdmin    = "admin"
)

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusPending   = "pending"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Password  string           `json:"-"`
	Role      string           `json:"role"`
	Status    string           `json:"status"`
	Provider  *ProviderProfile `json:"service_provider,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

// Actor identifies the authenticated account performing an operation. It is
// threaded explicitly into every lifecycle call instead of being read from
// ambient request state.
type Actor struct {
	ID   int
	Role string
}

type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	CompanyName string `json:"company_name"`
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   int
	Limit  int
}
