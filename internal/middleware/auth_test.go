package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/auth"
	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/repository"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func newAuthRouter(t *testing.T, users *mockUserRepo) (*chi.Mux, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", users, zap.NewNop())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(tokens, zap.NewNop()))
		r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
			identity := IdentityFromContext(req.Context())
			if identity == nil {
				http.Error(w, "no identity in context", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(identity.UserID))
		})
	})
	return r, tokens
}

func TestAuthenticate(t *testing.T) {
	t.Run("ValidTokenPassesIdentityDownstream", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", mock.Anything, "user1").
			Return(&entity.User{ID: "user1", Role: auth.RoleUser, Active: true}, nil).Once()

		router, tokens := newAuthRouter(t, users)
		token, err := tokens.GenerateToken("user1", auth.RoleUser, time.Hour)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user1", rec.Body.String())
	})

	t.Run("MissingHeaderIsUnauthorized", func(t *testing.T) {
		router, _ := newAuthRouter(t, new(mockUserRepo))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "please log in")
	})

	t.Run("MalformedHeaderIsUnauthorized", func(t *testing.T) {
		router, _ := newAuthRouter(t, new(mockUserRepo))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ExpiredTokenIsUnauthorized", func(t *testing.T) {
		router, tokens := newAuthRouter(t, new(mockUserRepo))
		token, err := tokens.GenerateToken("user1", auth.RoleUser, -time.Minute)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("DeletedUserIsUnauthorized", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

		router, tokens := newAuthRouter(t, users)
		token, err := tokens.GenerateToken("ghost", auth.RoleUser, time.Hour)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "no longer exists")
	})
}
