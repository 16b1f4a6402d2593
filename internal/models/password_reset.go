package models

import "time"

// PasswordResetToken stores only the SHA-256 digest of the token mailed to the
// user; the plain token never touches the database.
type PasswordResetToken struct {
	ID        int
	Email     string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyResetTokenRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
