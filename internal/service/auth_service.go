package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pitlane/internal/apperr"
	"pitlane/internal/auth"
	"pitlane/internal/model"
	"pitlane/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields accepted at registration. Shape validation
// (email format, length bounds) happens at the handler; this layer owns the
// business rules.
type RegisterInput struct {
	Email             string
	Username          string
	Password          string
	FavoriteDriverIDs []string
	FavoriteTeamIDs   []string
}

// AuthService handles registration and login. It is the only component that
// creates users or turns credentials into tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (token string, user *model.User, err error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

// Register creates a user with a hashed password. The email conflict is
// checked before the username conflict, so when both are taken the email one
// is reported; the unique indexes remain the real guarantee under concurrent
// registration, with gorm.ErrDuplicatedKey translated after the fact.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if err := s.checkAvailable(ctx, email, username, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:             email,
		Username:          username,
		PasswordHash:      string(hashed),
		FavoriteDriverIDs: dedupe(in.FavoriteDriverIDs),
		FavoriteTeamIDs:   dedupe(in.FavoriteTeamIDs),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race after the pre-check; re-probe to name the column
			return nil, s.conflictField(ctx, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login authenticates a single identifier that may be a username or an email.
// An unknown identifier and a wrong password produce the same error.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmailOrUsername(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Authentication()
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Authentication()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// checkAvailable reports a conflict when email or username belongs to a user
// other than selfID. Both lookups run regardless of the first result; the
// email conflict wins when both collide.
func (s *authService) checkAvailable(ctx context.Context, email, username string, selfID uint) error {
	var conflict *apperr.Error

	if username != "" {
		existing, err := s.users.FindByUsername(ctx, username)
		if err == nil && existing.ID != selfID {
			conflict = apperr.Conflict("username")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check username: %w", err)
		}
	}
	if email != "" {
		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			conflict = apperr.Conflict("email")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
	}

	if conflict != nil {
		return conflict
	}
	return nil
}

// conflictField decides which column a duplicate-key error came from.
func (s *authService) conflictField(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return apperr.Conflict("email")
	}
	return apperr.Conflict("username")
}

// dedupe removes duplicate IDs while keeping first-seen order.
func dedupe(ids []string) model.StringList {
	if ids == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make(model.StringList, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
