package services

import (
	"log/slog"

	"sayit/auth"
	"sayit/errors"
)

type IAuthService interface {
	Enabled() bool
	Login(password string) (Token, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

const adminSubject = "admin"

// AuthService exchanges the single admin password for a short-lived token.
// A service built without a password hash rejects every login with ErrAdminDisabled.
type AuthService struct {
	passwordHash string
	issuer       *auth.TokenIssuer
	log          *slog.Logger
}

func NewAuthService(passwordHash string, issuer *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{passwordHash: passwordHash, issuer: issuer, log: log}
}

func (s *AuthService) Enabled() bool {
	return s != nil && s.passwordHash != "" && s.issuer != nil
}

func (s *AuthService) Login(password string) (Token, error) {
	if !s.Enabled() {
		return "", errors.ErrAdminDisabled
	}

	match, err := auth.ComparePassword(password, s.passwordHash)
	if err != nil || !match {
		s.log.Warn("Admin login refused")
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.GenerateToken(adminSubject, []string{auth.RoleAdmin})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	s.log.Info("Admin logged in")
	return Token(token), nil
}
