package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tamircibul/internal/models"
)

// UserStore is the account and session persistence surface.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateProfile(ctx context.Context, id int, name, email, phone string) error
	SetSession(ctx context.Context, session models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	DeleteSessions(ctx context.Context, userID int) error
}

// ProviderProfileStore is the slice of the provider store registration needs.
type ProviderProfileStore interface {
	CreateProfile(ctx context.Context, p models.ProviderProfile) (models.ProviderProfile, error)
	GetProviderByUserID(ctx context.Context, userID int) (models.ProviderProfile, error)
}

// ResetTokenStore persists password-reset token digests.
type ResetTokenStore interface {
	ReplaceToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	FindValidToken(ctx context.Context, email, tokenHash string) (models.PasswordResetToken, error)
	DeleteTokens(ctx context.Context, email string) error
}

// Mailer delivers transactional mail.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// UserService owns registration, login, token issuance and password recovery.
type UserService struct {
	Store       UserStore
	Providers   ProviderProfileStore
	ResetTokens ResetTokenStore
	Mail        Mailer

	SigningKey  []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	FrontendURL string
}

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

// Register creates an account. Customers are active immediately; service
// accounts get a pending provider profile and stay locked out of login until
// an admin approves them.
func (s *UserService) Register(ctx context.Context, in models.RegisterRequest) (models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	v := models.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if in.Email == "" && in.Phone == "" {
		v.Add("email", "an email address or phone number is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		v.Add("email", "email address is malformed")
	}
	if len(in.Password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	switch in.Role {
	case models.RoleCustomer:
	case models.RoleService:
		if strings.TrimSpace(in.CompanyName) == "" {
			v.Add("company_name", "company name is required for service accounts")
		}
		if !models.ValidServiceType(in.ServiceType) {
			v.Add("service_type", "unknown service type")
		}
	default:
		v.Add("role", "role must be customer or service")
	}
	if v.HasErrors() {
		return models.User{}, v
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	status := models.UserStatusActive
	if in.Role == models.RoleService {
		status = models.UserStatusPending
	}
	user, err := s.Store.CreateUser(ctx, models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Phone:    in.Phone,
		Password: string(hash),
		Role:     in.Role,
		Status:   status,
	})
	if err != nil {
		return models.User{}, err
	}

	if in.Role == models.RoleService {
		profile, err := s.Providers.CreateProfile(ctx, models.ProviderProfile{
			UserID:      user.ID,
			CompanyName: strings.TrimSpace(in.CompanyName),
			ServiceType: in.ServiceType,
			Description: in.Description,
			Status:      models.ProviderStatusPending,
		})
		if err != nil {
			return models.User{}, err
		}
		user.Provider = &profile
	}

	user.Password = ""
	return user, nil
}

// Login authenticates by email or phone. Credential failures and unknown
// accounts both come back as ErrInvalidCredentials; account status gates fire
// only after the password checks out.
func (s *UserService) Login(ctx context.Context, in models.LoginRequest) (models.User, models.Tokens, error) {
	var (
		user models.User
		err  error
	)
	switch {
	case in.Email != "":
		user, err = s.Store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(in.Email)))
	case in.Phone != "":
		user, err = s.Store.GetUserByPhone(ctx, strings.TrimSpace(in.Phone))
	default:
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusActive:
	case models.UserStatusPending:
		return models.User{}, models.Tokens{}, models.ErrAccountPending
	default:
		return models.User{}, models.Tokens{}, models.ErrAccountInactive
	}

	tokens, err := s.issueTokens(ctx, user.ID, user.Role)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}

	if user.Role == models.RoleService {
		profile, err := s.Providers.GetProviderByUserID(ctx, user.ID)
		if err == nil {
			user.Provider = &profile
		} else if !errors.Is(err, models.ErrProviderNotFound) {
			return models.User{}, models.Tokens{}, err
		}
	}

	user.Password = ""
	return user, tokens, nil
}

// Refresh rotates the session: the presented refresh token is invalidated
// together with any other session of the account, and a fresh pair is issued.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.Store.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.Store.DeleteSessions(ctx, session.UserID)
		return models.Tokens{}, models.ErrSessionNotFound
	}
	return s.issueTokens(ctx, session.UserID, session.Role)
}

func (s *UserService) Logout(ctx context.Context, actor models.Actor) error {
	return s.Store.DeleteSessions(ctx, actor.ID)
}

func (s *UserService) Me(ctx context.Context, actor models.Actor) (models.User, error) {
	user, err := s.Store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return models.User{}, err
	}
	if user.Role == models.RoleService {
		profile, err := s.Providers.GetProviderByUserID(ctx, user.ID)
		if err == nil {
			user.Provider = &profile
		} else if !errors.Is(err, models.ErrProviderNotFound) {
			return models.User{}, err
		}
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, actor models.Actor, name, email, phone string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != "" && !strings.Contains(email, "@") {
		v := models.NewValidationError()
		v.Add("email", "email address is malformed")
		return models.User{}, v
	}
	if err := s.Store.UpdateProfile(ctx, actor.ID, strings.TrimSpace(name), email, strings.TrimSpace(phone)); err != nil {
		return models.User{}, err
	}
	return s.Me(ctx, actor)
}

// ChangePassword verifies the current password, stores the new hash and kills
// every open session of the account.
func (s *UserService) ChangePassword(ctx context.Context, actor models.Actor, current, next string) error {
	if len(next) < minPasswordLength {
		v := models.NewValidationError()
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return v
	}
	user, err := s.Store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return models.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Store.UpdatePassword(ctx, actor.ID, string(hash)); err != nil {
		return err
	}
	return s.Store.DeleteSessions(ctx, actor.ID)
}

// ForgotPassword mails a reset link. An unknown address is not an error so the
// endpoint cannot be used to probe which emails exist.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		v := models.NewValidationError()
		v.Add("email", "email is required")
		return v
	}
	if _, err := s.Store.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	if err := s.ResetTokens.ReplaceToken(ctx, email, digest(token), time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", strings.TrimRight(s.FrontendURL, "/"), token, email)
	return s.Mail.SendPasswordReset(email, link)
}

// VerifyResetToken checks a token without consuming it, for the frontend form.
func (s *UserService) VerifyResetToken(ctx context.Context, in models.VerifyResetTokenRequest) error {
	_, err := s.ResetTokens.FindValidToken(ctx, strings.TrimSpace(strings.ToLower(in.Email)), digest(in.Token))
	return err
}

// ResetPassword consumes a valid token, replaces the password and invalidates
// every session and any remaining token for the address.
func (s *UserService) ResetPassword(ctx context.Context, in models.ResetPasswordRequest) error {
	if len(in.Password) < minPasswordLength {
		v := models.NewValidationError()
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return v
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := s.ResetTokens.FindValidToken(ctx, email, digest(in.Token)); err != nil {
		return err
	}
	user, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Store.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.ResetTokens.DeleteTokens(ctx, email); err != nil {
		return err
	}
	return s.Store.DeleteSessions(ctx, user.ID)
}

// ParseAccessToken validates a bearer token and returns its claims.
func (s *UserService) ParseAccessToken(tokenString string) (models.Claims, error) {
	var claims models.Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.SigningKey, nil
	})
	if err != nil || !token.Valid {
		return models.Claims{}, models.ErrInvalidCredentials
	}
	return claims, nil
}

func (s *UserService) issueTokens(ctx context.Context, userID int, role string) (models.Tokens, error) {
	now := time.Now()
	claims := models.Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.AccessTTL).Unix(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.SigningKey)
	if err != nil {
		return models.Tokens{}, err
	}

	refresh := uuid.NewString()
	if err := s.Store.DeleteSessions(ctx, userID); err != nil {
		return models.Tokens{}, err
	}
	err = s.Store.SetSession(ctx, models.Session{
		UserID:       userID,
		Role:         role,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.RefreshTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
