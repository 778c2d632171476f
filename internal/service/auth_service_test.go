package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pitlane/internal/apperr"
	"pitlane/internal/auth"
	"pitlane/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestAuthService(repo *MockUserRepository) AuthService {
	return NewAuthService(repo, auth.NewTokenService("test-secret", time.Hour))
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Email: "Max@Example.com", Username: "max1", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "max1").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "max@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email taken",
			input: RegisterInput{Email: "taken@example.com", Username: "newuser", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: 7, Email: "taken@example.com"}, nil)
			},
			expectedError: apperr.Conflict("email"),
		},
		{
			name:  "username taken",
			input: RegisterInput{Email: "new@example.com", Username: "taken", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "taken").Return(&model.User{ID: 7, Username: "taken"}, nil)
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperr.Conflict("username"),
		},
		{
			name:  "both taken reports email",
			input: RegisterInput{Email: "taken@example.com", Username: "taken", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "taken").Return(&model.User{ID: 7, Username: "taken"}, nil)
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: 8, Email: "taken@example.com"}, nil)
			},
			expectedError: apperr.Conflict("email"),
		},
		{
			name:  "lost creation race",
			input: RegisterInput{Email: "raced@example.com", Username: "racer", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "racer").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "raced@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
				m.On("FindByEmail", mock.Anything, "raced@example.com").Return(&model.User{ID: 9}, nil).Once()
			},
			expectedError: apperr.Conflict("email"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestAuthService(mockRepo)
			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "max@example.com", user.Email)
				assert.Equal(t, "max1", user.Username)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_DeduplicatesFavorites(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "max1").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "max@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := newTestAuthService(mockRepo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:             "max@example.com",
		Username:          "max1",
		Password:          "password123",
		FavoriteDriverIDs: []string{"max_verstappen", "norris", "max_verstappen"},
		FavoriteTeamIDs:   []string{"red_bull", "red_bull"},
	})

	assert.NoError(t, err)
	assert.Equal(t, model.StringList{"max_verstappen", "norris"}, user.FavoriteDriverIDs)
	assert.Equal(t, model.StringList{"red_bull"}, user.FavoriteTeamIDs)
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	stored := &model.User{ID: 42, Email: "lewis@example.com", Username: "lewis44", PasswordHash: string(hashed)}

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:       "login by username",
			identifier: "lewis44",
			password:   "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "lewis44").Return(stored, nil)
			},
		},
		{
			name:       "login by email",
			identifier: "lewis@example.com",
			password:   "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "lewis@example.com").Return(stored, nil)
			},
		},
		{
			name:       "unknown identifier",
			identifier: "nobody@example.com",
			password:   "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperr.Authentication(),
		},
		{
			name:       "wrong password",
			identifier: "lewis44",
			password:   "wrongpassword",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmailOrUsername", mock.Anything, "lewis44").Return(stored, nil)
			},
			expectedError: apperr.Authentication(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			tokens := auth.NewTokenService("test-secret", time.Hour)
			svc := NewAuthService(mockRepo, tokens)
			token, user, err := svc.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, stored, user)

				claims, err := tokens.Verify(token)
				assert.NoError(t, err)
				assert.Equal(t, uint(42), claims.UserID)
				assert.Equal(t, "lewis44", claims.Username)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_EnumerationResistance(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmailOrUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmailOrUsername", mock.Anything, "lewis44").
		Return(&model.User{ID: 42, Username: "lewis44", PasswordHash: string(hashed)}, nil)

	svc := newTestAuthService(mockRepo)

	_, _, errUnknown := svc.Login(context.Background(), "ghost", "anything")
	_, _, errWrongPw := svc.Login(context.Background(), "lewis44", "wrongpassword")

	assert.Error(t, errUnknown)
	assert.Equal(t, errUnknown, errWrongPw)
}
