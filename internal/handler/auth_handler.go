package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/auth"
	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/service"
)

const (
	currentUserKey  = "current_user"
	sessionTokenKey = "token"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Login 校验账号密码，签发令牌并写入会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "用户名或密码不能为空") {
		return
	}

	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if login == "" {
		respondValidation(c, map[string]string{"username": "此项为必填项"})
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		a.fail(c, err, "登录失败")
		return
	}

	token, expiresAt, err := a.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		a.fail(c, err, "签发令牌失败")
		return
	}

	if session := sessionFrom(c); session != nil {
		session.Set(sessionTokenKey, token)
		if err := session.Save(); err != nil {
			a.fail(c, err, "会话保存失败")
			return
		}
	}

	respondOK(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Logout 清除会话中的令牌。
func (a *API) Logout(c *gin.Context) {
	if session := sessionFrom(c); session != nil {
		session.Clear()
		_ = session.Save()
	}
	respondMessage(c, "已退出登录", nil)
}

// Me 返回当前登录用户。
func (a *API) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}
	respondOK(c, user)
}

// AuthenticateToken 要求请求携带有效令牌：缺失返回 401，无效或过期返回 403。
func (a *API) AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "缺少访问令牌"})
			return
		}

		user, err := a.userFromToken(c, raw)
		if err != nil {
			message := "访问令牌无效"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				message = "访问令牌已过期"
			case errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrUserNotFound):
				message = "账号不可用"
			case !errors.Is(err, auth.ErrTokenInvalid):
				a.fail(c, err, "校验令牌失败")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": message})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin 仅允许管理员继续，需在 AuthenticateToken 之后使用。
func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "请先登录"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "需要管理员权限"})
			return
		}
		c.Next()
	}
}

// OptionalAuth 在令牌有效时附加当前用户，从不拒绝请求。
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFromRequest(c); raw != "" {
			if user, err := a.userFromToken(c, raw); err == nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

func (a *API) userFromToken(c *gin.Context, raw string) (*db.User, error) {
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return a.users.FindActive(c.Request.Context(), id)
}

// tokenFromRequest 依次从 Authorization 头与会话 cookie 中读取令牌。
func tokenFromRequest(c *gin.Context) string {
	if token := auth.ExtractBearer(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if session := sessionFrom(c); session != nil {
		if token, ok := session.Get(sessionTokenKey).(string); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// sessionFrom 未挂载会话中间件时返回 nil。
func sessionFrom(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}

func currentUser(c *gin.Context) *db.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*db.User)
	return user
}

// isAuthenticated 决定是否展示未发布或已停用的内容。
func isAuthenticated(c *gin.Context) bool {
	return currentUser(c) != nil
}
