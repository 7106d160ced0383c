package authservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/school-store/backend/internal/domain"
	"github.com/school-store/backend/pkg/auth"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *auth.MockHashServiceInterface, *auth.MockJWTServiceInterface) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	hashService := auth.NewMockHashServiceInterface(ctrl)
	jwtService := auth.NewMockJWTServiceInterface(ctrl)

	service := New(userRepo, hashService, jwtService)
	defer ctrl.Finish()
	return service, userRepo, hashService, jwtService
}

func TestRegister(t *testing.T) {
	service, userRepo, passwordHasher, _ := NewMock(t)

	params := RegisterParams{
		Username:  "alice",
		Password:  "testpassword",
		Email:     "alice@school.edu",
		FirstName: "Alice",
		LastName:  "Adams",
		Role:      domain.RoleStudent,
	}

	tests := []struct {
		name          string
		params        RegisterParams
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Successful registration",
			params: params,
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				userRepo.EXPECT().Create(context.Background(), gomock.Any()).DoAndReturn(func(ctx context.Context, user *domain.User) (*domain.User, error) {
					user.ID = 1
					return user, nil
				})
			},
		},
		{
			name: "Invalid role",
			params: RegisterParams{
				Username: "alice",
				Password: "testpassword",
				Role:     domain.Role("principal"),
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidRole,
		},
		{
			name:   "Username already taken",
			params: params,
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(&domain.User{Username: "alice"}, nil)
			},
			expectedError: ErrUsernameTaken,
		},
		{
			name:   "Error finding user",
			params: params,
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
		{
			name:   "Error hashing password",
			params: params,
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("testpassword").Return("", errors.New("hashing error"))
			},
			expectedError: errors.New("hashing error"),
		},
		{
			name:   "Error creating user",
			params: params,
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("testpassword").Return("hashedpassword", nil)
				userRepo.EXPECT().Create(context.Background(), gomock.Any()).Return(nil, errors.New("creation failed"))
			},
			expectedError: errors.New("creation failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Register(context.Background(), tt.params)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, user.ID)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "hashedpassword", user.PasswordHash)
				assert.Equal(t, domain.RoleStudent, user.Role)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service, userRepo, passwordHasher, _ := NewMock(t)

	tests := []struct {
		name          string
		username      string
		password      string
		prepareMock   func()
		expectedError error
	}{
		{
			name:     "Successful authentication",
			username: "alice",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(&domain.User{
					ID:           1,
					Username:     "alice",
					PasswordHash: "hashedpassword",
					Role:         domain.RoleStudent,
				}, nil)
				passwordHasher.EXPECT().ComparePassword("hashedpassword", "testpassword").Return(true)
			},
		},
		{
			name:     "Invalid credentials - user not found",
			username: "alice",
			password: "testpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Invalid credentials - incorrect password",
			username: "alice",
			password: "wrongpassword",
			prepareMock: func() {
				userRepo.EXPECT().FindByUsername(context.Background(), "alice").Return(&domain.User{
					ID:           1,
					Username:     "alice",
					PasswordHash: "hashedpassword",
				}, nil)
				passwordHasher.EXPECT().ComparePassword("hashedpassword", "wrongpassword").Return(false)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			user, err := service.Authenticate(context.Background(), tt.username, tt.password)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	service, _, _, jwtService := NewMock(t)

	tests := []struct {
		name          string
		userID        int
		role          domain.Role
		prepareMock   func()
		expectedToken string
		expectedError error
	}{
		{
			name:   "Successful token generation",
			userID: 1,
			role:   domain.RoleStudent,
			prepareMock: func() {
				jwtService.EXPECT().GenerateJWT(1, "student", gomock.Any()).Return("generated-token", nil)
			},
			expectedToken: "generated-token",
		},
		{
			name:   "Error generating token",
			userID: 1,
			role:   domain.RoleTeacher,
			prepareMock: func() {
				jwtService.EXPECT().GenerateJWT(1, "teacher", gomock.Any()).Return("", errors.New("can't generate token"))
			},
			expectedError: errors.New("can't generate token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			token, err := service.GenerateToken(tt.userID, tt.role)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}
