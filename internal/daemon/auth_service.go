package daemon

import (
	"context"
	"errors"
	"strings"

	"jotter/internal/store"
	"jotter/internal/types"
)

const (
	msgUserExists         = "User already registered"
	msgInvalidCredentials = "Invalid login credentials"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService owns account creation and session issuance.
type AuthService struct {
	users     store.UserStore
	issuer    *TokenIssuer
	validator *requestValidator
}

func NewAuthService(users store.UserStore, issuer *TokenIssuer) *AuthService {
	return &AuthService{users: users, issuer: issuer, validator: newRequestValidator()}
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*types.AuthSession, error) {
	if s.users == nil || s.issuer == nil {
		return nil, unavailableError("auth not available", nil)
	}
	req.Email = store.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, invalidError(err.Error(), err)
	}
	user, err := s.users.Create(ctx, &types.User{Email: req.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, conflictError(msgUserExists, err)
		}
		return nil, unavailableError(err.Error(), err)
	}
	return s.session(user)
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*types.AuthSession, error) {
	if s.users == nil || s.issuer == nil {
		return nil, unavailableError("auth not available", nil)
	}
	req.Email = store.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	user, ok, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	if !ok || !VerifyPassword(user.PasswordHash, req.Password) {
		return nil, unauthorizedError(msgInvalidCredentials, nil)
	}
	return s.session(user)
}

// SignOut revokes the token carried by claims. Revoking twice is harmless.
func (s *AuthService) SignOut(ctx context.Context, claims *sessionClaims) error {
	if s.issuer == nil {
		return unavailableError("auth not available", nil)
	}
	if claims == nil {
		return unauthorizedError("unauthorized", nil)
	}
	s.issuer.Revoke(claims)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*types.User, error) {
	if s.users == nil {
		return nil, unavailableError("auth not available", nil)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, unauthorizedError("unauthorized", nil)
	}
	user, ok, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	if !ok {
		return nil, unauthorizedError("unauthorized", store.ErrUserNotFound)
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) session(user *types.User) (*types.AuthSession, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, unavailableError("issue token", err)
	}
	return &types.AuthSession{Token: token, User: user.Public(), ExpiresAt: expiresAt}, nil
}
