package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"adrewards-backend/internal/domain"
	"adrewards-backend/internal/repository"
	"adrewards-backend/internal/security"
)

type authService struct {
	store  repository.Store
	tokens security.TokenManager
}

func NewAuthService(store repository.Store, tokens security.TokenManager) AuthService {
	return &authService{store: store, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if len(password) < 8 {
		return nil, &domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapDatabase("hash password", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         domain.RoleUser,
		Balance:      decimal.Zero,
	}
	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		return nil, domain.WrapDatabase("create user", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.Repos().Users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return "", nil, &domain.ForbiddenError{Reason: "invalid credentials"}
		}
		return "", nil, domain.WrapDatabase("get user by email", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, &domain.ForbiddenError{Reason: "invalid credentials"}
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, domain.WrapDatabase("sign token", err)
	}
	return token, user, nil
}
