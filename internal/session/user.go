package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated account.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// LoginInput is the password login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type googleRequest struct {
	Token string `json:"token"`
}

type authPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type mePayload struct {
	User User `json:"user"`
}

type registerPayload struct {
	Data User `json:"data"`
}

// expired reports whether token is a JWT whose exp claim lies before now.
// The signature is not checked; opaque tokens are never considered expired.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
