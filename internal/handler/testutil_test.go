package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/auth"
	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/storage"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestAPI(t *testing.T) (*API, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler-%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	files := storage.NewLocalStore(t.TempDir(), "/uploads", 1<<20)
	return NewAPI(gdb, zap.NewNop(), tokens, files), gdb
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newContext 构造直接调用 handler 使用的上下文，user 非空时视为已登录。
func newContext(req *http.Request, user *db.User, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if user != nil {
		c.Set(currentUserKey, user)
	}
	return c, w
}

func idParam(key string, id uint) gin.Param {
	return gin.Param{Key: key, Value: fmt.Sprint(id)}
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Errors     map[string]string `json:"errors"`
	Data       json.RawMessage   `json:"data"`
	Pagination json.RawMessage   `json:"pagination"`
	Usages     json.RawMessage   `json:"usages"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %q: %v", string(env.Data), err)
	}
}

func seedUser(t *testing.T, api *API, username, role string) *db.User {
	t.Helper()
	user, _, err := api.users.Upsert(context.Background(), username, "", "password-123", role)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
