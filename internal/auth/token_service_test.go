package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/repository"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

const testSecret = "test-secret"

func TestTokenService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidTokenResolvesIdentity", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewTokenService(testSecret, users, zap.NewNop())

		token, err := svc.GenerateToken("user1", RoleUser, time.Hour)
		assert.NoError(t, err)

		users.On("GetByID", ctx, "user1").
			Return(&entity.User{ID: "user1", Role: RoleUser, Active: true}, nil).Once()

		identity, err := svc.Verify(ctx, "Bearer "+token)
		assert.NoError(t, err)
		assert.Equal(t, "user1", identity.UserID)
		assert.Equal(t, RoleUser, identity.Role)
	})

	t.Run("LiveRoleWinsOverClaimRole", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewTokenService(testSecret, users, zap.NewNop())

		// token minted while the user was a plain user, promoted since
		token, err := svc.GenerateToken("user1", RoleUser, time.Hour)
		assert.NoError(t, err)

		users.On("GetByID", ctx, "user1").
			Return(&entity.User{ID: "user1", Role: RoleAdmin, Active: true}, nil).Once()

		identity, err := svc.Verify(ctx, "Bearer "+token)
		assert.NoError(t, err)
		assert.Equal(t, RoleAdmin, identity.Role)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewTokenService(testSecret, users, zap.NewNop())

		token, err := svc.GenerateToken("user1", RoleUser, -time.Minute)
		assert.NoError(t, err)

		_, err = svc.Verify(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrExpiredCredential)
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		svc := NewTokenService(testSecret, new(MockUserRepository), zap.NewNop())

		_, err := svc.Verify(ctx, "Bearer not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenService("another-secret", new(MockUserRepository), zap.NewNop())
		token, err := other.GenerateToken("user1", RoleUser, time.Hour)
		assert.NoError(t, err)

		svc := NewTokenService(testSecret, new(MockUserRepository), zap.NewNop())
		_, err = svc.Verify(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		svc := NewTokenService(testSecret, new(MockUserRepository), zap.NewNop())

		for _, header := range []string{"", "Bearer", "Token abc", "Bearer a b c"} {
			_, err := svc.Verify(ctx, header)
			assert.ErrorIs(t, err, ErrMissingCredential, "header %q", header)
		}
	})

	t.Run("DeletedUser", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewTokenService(testSecret, users, zap.NewNop())

		token, err := svc.GenerateToken("ghost", RoleUser, time.Hour)
		assert.NoError(t, err)

		users.On("GetByID", ctx, "ghost").Return(nil, repository.ErrNotFound).Once()

		_, err = svc.Verify(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrUnknownUser)
	})

	t.Run("DeactivatedUser", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewTokenService(testSecret, users, zap.NewNop())

		token, err := svc.GenerateToken("user1", RoleUser, time.Hour)
		assert.NoError(t, err)

		users.On("GetByID", ctx, "user1").
			Return(&entity.User{ID: "user1", Role: RoleUser, Active: false}, nil).Once()

		_, err = svc.Verify(ctx, "Bearer "+token)
		assert.ErrorIs(t, err, ErrUnknownUser)
	})
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		role    string
		action  Action
		allowed bool
	}{
		{RoleAdmin, ActionCreatePost, true},
		{RoleUser, ActionCreatePost, true},
		{RoleTenant, ActionCreatePost, false},
		{RoleTenant, ActionUpdatePost, true},
		{RoleTenant, ActionDeletePost, true},
		{"unknown", ActionCreatePost, false},
		{"", ActionDeletePost, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, Allowed(tc.role, tc.action), "role=%q action=%q", tc.role, tc.action)
	}
}
