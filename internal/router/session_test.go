package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cookieClient 直接驱动 handler，并像浏览器一样保存 cookie。
type cookieClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newCookieClient(t *testing.T, handler http.Handler) *cookieClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &cookieClient{handler: handler, jar: jar}
}

func (c *cookieClient) do(t *testing.T, method, path string, payload interface{}) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, "http://cms.local"+path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSessionCookieAuthenticatesWithoutHeader(t *testing.T) {
	srv := newTestServer(t)
	client := newCookieClient(t, srv.engine)

	resp := client.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = client.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "password-123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hasSession bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionName {
			hasSession = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	require.True(t, hasSession, "login should set the session cookie")

	resp = client.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Success bool `json:"success"`
		Data    struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.True(t, me.Success)
	assert.Equal(t, "admin", me.Data.Username)

	resp = client.do(t, http.MethodPost, "/api/pages", map[string]interface{}{"title": "Cookie Page"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = client.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = client.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
