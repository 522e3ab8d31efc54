package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/handler"
	"github.com/sitecms/internal/logging"
	"go.uber.org/zap"
)

const sessionName = "sitecms_session"

// Options 描述构建路由所需的依赖。
type Options struct {
	API           *handler.API
	Logger        *zap.Logger
	SessionSecret string
	SessionMaxAge time.Duration
	SecureCookie  bool
	CORSOrigins   []string
	UploadDir     string
	UploadURLPath string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(logging.RequestID(), logging.Middleware(logger), logging.Recovery(logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	// 配置会话中间件，cookie 中保存访问令牌供浏览器端使用
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 上传文件的静态访问
	if opts.UploadDir != "" {
		r.Static(uploadPath(opts.UploadURLPath), opts.UploadDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "接口不存在"})
	})

	registerAPI(r.Group("/api"), opts.API)
	return r
}

func registerAPI(api *gin.RouterGroup, h *handler.API) {
	authed := h.AuthenticateToken()
	admin := []gin.HandlerFunc{authed, h.RequireAdmin()}
	optional := h.OptionalAuth()

	api.GET("/health", h.HealthCheck)
	api.GET("/homepage", h.Homepage)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", authed, h.Me)
	}

	pages := api.Group("/pages")
	{
		pages.GET("", optional, h.ListPages)
		pages.GET("/:slug", optional, h.GetPage)
		pages.POST("", append(admin, h.CreatePage)...)
		pages.PUT("/:id", append(admin, h.UpdatePage)...)
		pages.DELETE("/:id", append(admin, h.DeletePage)...)
	}

	// PUT 下 ref 既可能是区块 ID 也可能是页面 slug
	sections := api.Group("/page-content")
	{
		sections.GET("/:pageSlug", optional, h.ListPageSections)
		sections.GET("/:pageSlug/:sectionKey", optional, h.GetPageSection)
		sections.POST("", append(admin, h.CreatePageSection)...)
		sections.PUT("/:ref", append(admin, h.UpdatePageSection)...)
		sections.PUT("/:ref/reorder", append(admin, h.ReorderPageSections)...)
		sections.DELETE("/:id", append(admin, h.DeletePageSection)...)
	}

	blog := api.Group("/blog")
	{
		blog.GET("/posts", optional, h.ListPosts)
		blog.GET("/posts/:slug", optional, h.GetPostBySlug)
		blog.GET("/posts/id/:id", authed, h.GetPostByID)
		blog.POST("/posts", append(admin, h.CreatePost)...)
		blog.PUT("/posts/:id", append(admin, h.UpdatePost)...)
		blog.DELETE("/posts/:id", append(admin, h.DeletePost)...)

		blog.GET("/categories", h.ListCategories)
		blog.POST("/categories", append(admin, h.CreateCategory)...)
		blog.PUT("/categories/:id", append(admin, h.UpdateCategory)...)
		blog.DELETE("/categories/:id", append(admin, h.DeleteCategory)...)
	}

	team := api.Group("/team")
	{
		team.GET("", optional, h.ListTeam)
		team.GET("/:id", optional, h.GetTeamMember)
		team.POST("", append(admin, h.CreateTeamMember)...)
		team.PUT("/reorder", append(admin, h.ReorderTeam)...)
		team.PUT("/:id", append(admin, h.UpdateTeamMember)...)
		team.DELETE("/:id", append(admin, h.DeleteTeamMember)...)
	}

	portfolio := api.Group("/portfolio")
	{
		portfolio.GET("", optional, h.ListPortfolio)
		portfolio.GET("/:id", optional, h.GetPortfolioCompany)
		portfolio.POST("", append(admin, h.CreatePortfolioCompany)...)
		portfolio.PUT("/:id", append(admin, h.UpdatePortfolioCompany)...)
		portfolio.DELETE("/:id", append(admin, h.DeletePortfolioCompany)...)
	}

	investments := api.Group("/investments")
	{
		investments.GET("", optional, h.ListInvestmentAreas)
		investments.GET("/:id", optional, h.GetInvestmentArea)
		investments.POST("", append(admin, h.CreateInvestmentArea)...)
		investments.PUT("/:id", append(admin, h.UpdateInvestmentArea)...)
		investments.DELETE("/:id", append(admin, h.DeleteInvestmentArea)...)
	}

	offices := api.Group("/offices")
	{
		offices.GET("", optional, h.ListOffices)
		offices.GET("/:id", optional, h.GetOffice)
		offices.POST("", append(admin, h.CreateOffice)...)
		offices.PUT("/:id", append(admin, h.UpdateOffice)...)
		offices.DELETE("/:id", append(admin, h.DeleteOffice)...)
	}

	media := api.Group("/media")
	{
		media.POST("/upload", append(admin, h.UploadMedia)...)
		media.GET("", authed, h.ListMedia)
		media.GET("/:id", authed, h.GetMedia)
		media.PUT("/:id", append(admin, h.UpdateMedia)...)
		media.DELETE("/:id", append(admin, h.DeleteMedia)...)
	}

	usage := api.Group("/media-usage", authed)
	{
		usage.GET("", h.MediaUsageSummary)
		usage.GET("/:id", h.GetMediaUsage)
	}

	branding := api.Group("/branding")
	{
		branding.GET("", h.GetBranding)
		branding.PUT("", append(admin, h.UpdateBranding)...)
		branding.GET("/footer-links", optional, h.ListFooterLinks)
		branding.POST("/footer-links", append(admin, h.CreateFooterLink)...)
		branding.PUT("/footer-links/:id", append(admin, h.UpdateFooterLink)...)
		branding.DELETE("/footer-links/:id", append(admin, h.DeleteFooterLink)...)
	}

	// GET/POST 下 form 为 slug，提交记录列表中为表单 ID
	forms := api.Group("/forms")
	{
		forms.GET("", authed, h.ListForms)
		forms.GET("/:form", optional, h.GetForm)
		forms.GET("/:form/submissions", authed, h.ListSubmissions)
		forms.POST("", append(admin, h.CreateForm)...)
		forms.POST("/:form/submit", h.SubmitForm)
		forms.PUT("/submissions/:submissionId/read", append(admin, h.MarkSubmissionRead)...)
		forms.PUT("/:id", append(admin, h.UpdateForm)...)
		forms.DELETE("/submissions/:submissionId", append(admin, h.DeleteSubmission)...)
		forms.DELETE("/:id", append(admin, h.DeleteForm)...)
	}

	fields := api.Group("/form-fields")
	{
		fields.GET("", authed, h.ListFormFields)
		fields.POST("", append(admin, h.CreateFormField)...)
		fields.PUT("/reorder", append(admin, h.ReorderFormFields)...)
		fields.PUT("/:id", append(admin, h.UpdateFormField)...)
		fields.DELETE("/:id", append(admin, h.DeleteFormField)...)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader}
	cfg.ExposeHeaders = []string{logging.RequestIDHeader}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:5173"}
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func uploadPath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return "/uploads"
	}
	return "/" + trimmed
}
