package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/core/cache"
	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

const MinPasswordLen = 6

type AuthService struct {
	users  domain.UserRepository
	jwt    *auth.JWTer
	cached *cache.Typed[domain.User]
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, c *cache.Cache, userTTL time.Duration, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		jwt:    jwter,
		cached: cache.NewTyped[domain.User](c, "user", userTTL),
		log:    l,
	}
}

type RegisterInput struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is what register and login hand back to the client.
type Session struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	u, err := s.CreateUser(ctx, in.Name, in.Email, in.Password, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, domain.Errorf(domain.ErrInvalidCredentials, "Invalid email or password")
	}
	return s.session(u)
}

// CreateUser stores a new account. Used by registration and the admin CLI.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string, admin bool) (*domain.User, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.Errorf(domain.ErrValidation, "Please add all fields")
	}
	if len(password) < MinPasswordLen {
		return nil, domain.Errorf(domain.ErrValidation, fmt.Sprintf("Password must be at least %d characters", MinPasswordLen))
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Errorf(domain.ErrDuplicateEmail, "User already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByID resolves a token subject. Reads go through the cache; a missing
// user is returned as nil without error.
func (s *AuthService) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.cached.Get(ctx, id, func(ctx context.Context) (*domain.User, error) {
		return s.users.FindByID(ctx, id)
	})
}

func (s *AuthService) ParseToken(token string) (*auth.Claims, error) { return s.jwt.Parse(token) }

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (s *AuthService) ListUsers(ctx context.Context, q string, offset, limit int) (*UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = max(0, offset)
	users, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserPage{Total: total, Items: users}, nil
}

// SetAdmin grants or revokes the admin flag of the account with that email.
func (s *AuthService) SetAdmin(ctx context.Context, email string, admin bool) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "User not found")
	}
	if err := s.users.SetAdmin(ctx, u.ID, admin); err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	if err := s.cached.Forget(ctx, u.ID); err != nil {
		s.log.Warn("evict cached user", zap.String("user_id", u.ID), zap.Error(err))
	}
	u.IsAdmin = admin
	return u, nil
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, Token: tok}, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
