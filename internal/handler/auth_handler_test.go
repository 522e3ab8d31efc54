package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedEngine(api *API) *gin.Engine {
	r := gin.New()
	r.GET("/me", api.AuthenticateToken(), api.Me)
	r.GET("/admin", api.AuthenticateToken(), api.RequireAdmin(), func(c *gin.Context) {
		respondOK(c, "ok")
	})
	r.GET("/optional", api.OptionalAuth(), func(c *gin.Context) {
		respondOK(c, gin.H{"authenticated": isAuthenticated(c)})
	})
	return r
}

func issueToken(t *testing.T, api *API, user *db.User) string {
	t.Helper()
	token, _, err := api.tokens.Issue(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return token
}

func TestLoginIssuesToken(t *testing.T) {
	api, _ := setupTestAPI(t)
	seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "password-123",
	}), nil)
	api.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Token string  `json:"token"`
		User  db.User `json:"user"`
	}
	decodeData(t, w, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin", data.User.Username)
	assert.NotContains(t, w.Body.String(), "password\":")

	claims, err := api.tokens.Parse(data.Token)
	require.NoError(t, err)
	assert.Equal(t, db.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api, _ := setupTestAPI(t)
	seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong-password",
	}), nil)
	api.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}), nil)
	api.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Errors, "password")
}

func TestAuthenticateTokenStatuses(t *testing.T) {
	api, gdb := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)
	editor := seedUser(t, api, "editor", db.RoleEditor)
	r := protectedEngine(api)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "missing token", path: "/me", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer not-a-token", status: http.StatusForbidden},
		{name: "valid token", path: "/me", header: "Bearer " + issueToken(t, api, admin), status: http.StatusOK},
		{name: "editor on admin route", path: "/admin", header: "Bearer " + issueToken(t, api, editor), status: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", header: "Bearer " + issueToken(t, api, admin), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	t.Run("inactive user", func(t *testing.T) {
		token := issueToken(t, api, editor)
		require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", editor.ID).Update("is_active", false).Error)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)
	r := protectedEngine(api)

	for header, want := range map[string]bool{
		"":                                    false,
		"Bearer broken":                       false,
		"Bearer " + issueToken(t, api, admin): true,
	} {
		req := httptest.NewRequest(http.MethodGet, "/optional", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var data struct {
			Authenticated bool `json:"authenticated"`
		}
		decodeData(t, w, &data)
		assert.Equal(t, want, data.Authenticated, "header %q", header)
	}
}
