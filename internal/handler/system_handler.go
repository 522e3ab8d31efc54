package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/db"
	"go.uber.org/zap"
)

// HealthCheck 提供给负载均衡与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	if err := db.Ping(a.db); err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":  false,
			"status":   "error",
			"database": "down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"status":   "ok",
		"database": "up",
	})
}

// Homepage 聚合首页所需的全部公开内容
func (a *API) Homepage(c *gin.Context) {
	home, err := a.homepage.Load(c.Request.Context())
	if err != nil {
		a.fail(c, err, "获取首页数据失败")
		return
	}
	respondOK(c, home)
}
