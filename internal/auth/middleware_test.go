package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/domain"
)

func newTestRouter(issuer *Issuer, users map[int64]*domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	load := func(_ context.Context, id int64) (*domain.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, domain.ErrNotFound
	}

	router := gin.New()
	authed := router.Group("/", RequireUser(issuer, load))
	authed.GET("/me", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func doRequest(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer("middleware-secret-0001", time.Hour)
	customer := &domain.User{ID: 1, Role: domain.RoleUser}
	admin := &domain.User{ID: 2, Role: domain.RoleAdmin}
	router := newTestRouter(issuer, map[int64]*domain.User{1: customer, 2: admin})

	customerToken, _, err := issuer.Issue(customer)
	require.NoError(t, err)
	adminToken, _, err := issuer.Issue(admin)
	require.NoError(t, err)
	ghostToken, _, err := issuer.Issue(&domain.User{ID: 3, Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "abc", http.StatusUnauthorized},
		{"customer", "/me", customerToken, http.StatusOK},
		{"deleted user", "/me", ghostToken, http.StatusUnauthorized},
		{"customer on admin", "/admin", customerToken, http.StatusForbidden},
		{"admin", "/admin", adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, tt.path, tt.token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoleIsReadFromStoreNotToken(t *testing.T) {
	issuer := NewIssuer("middleware-secret-0001", time.Hour)
	demoted := &domain.User{ID: 5, Role: domain.RoleUser}
	token, _, err := issuer.Issue(&domain.User{ID: 5, Role: domain.RoleAdmin})
	require.NoError(t, err)

	router := newTestRouter(issuer, map[int64]*domain.User{5: demoted})
	assert.Equal(t, http.StatusForbidden, doRequest(router, "/admin", token).Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}
