package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pitlane/internal/apperr"
	"pitlane/internal/model"
	"pitlane/internal/repository"
)

// UpdateInput carries an arbitrary subset of profile fields. Nil pointers and
// nil slices mean "leave unchanged".
type UpdateInput struct {
	Email             *string
	Username          *string
	Password          *string
	FavoriteDriverIDs []string
	FavoriteTeamIDs   []string
}

// UserService exposes profile operations for an already-authenticated user.
type UserService interface {
	GetMe(ctx context.Context, userID uint) (*model.User, error)
	UpdateMe(ctx context.Context, userID uint, in UpdateInput) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
	auth  *authService
}

// NewUserService builds a UserService over the credential store.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users, auth: &authService{users: users}}
}

func (s *userService) GetMe(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a verified token pointing at a missing row is an integrity
			// problem worth noticing
			log.Printf("getMe: user %d has a valid token but no record", userID)
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateMe applies only the provided fields. Uniqueness checks treat the
// caller's own record as non-conflicting, so re-submitting the current email
// or username succeeds.
func (s *userService) UpdateMe(ctx context.Context, userID uint, in UpdateInput) (*model.User, error) {
	var email, username string
	if in.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
	}
	if err := s.auth.checkAvailable(ctx, email, username, userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Email != nil {
		fields["email"] = email
	}
	if in.Username != nil {
		fields["username"] = username
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = string(hashed)
	}
	if in.FavoriteDriverIDs != nil {
		fields["favorite_driver_ids"] = dedupe(in.FavoriteDriverIDs)
	}
	if in.FavoriteTeamIDs != nil {
		fields["favorite_team_ids"] = dedupe(in.FavoriteTeamIDs)
	}

	user, err := s.users.Update(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("updateMe: user %d has a valid token but no record", userID)
			return nil, apperr.NotFound("user not found")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, s.auth.conflictField(ctx, email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
