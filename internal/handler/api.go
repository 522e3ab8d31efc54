package handler

import (
	"github.com/sitecms/internal/auth"
	"github.com/sitecms/internal/service"
	"github.com/sitecms/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	logger *zap.Logger
	tokens *auth.TokenManager
	files  *storage.LocalStore

	users       *service.UserService
	pages       *service.PageService
	sections    *service.PageContentService
	posts       *service.BlogService
	categories  *service.CategoryService
	team        *service.TeamService
	portfolio   *service.PortfolioService
	investments *service.InvestmentService
	offices     *service.OfficeService
	media       *service.MediaService
	mediaUsage  *service.MediaUsageService
	branding    *service.BrandingService
	footer      *service.FooterService
	forms       *service.FormService
	formFields  *service.FormFieldService
	homepage    *service.HomepageService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, logger *zap.Logger, tokens *auth.TokenManager, files *storage.LocalStore) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidatorTagNames()

	return &API{
		db:          gdb,
		logger:      logger,
		tokens:      tokens,
		files:       files,
		users:       service.NewUserService(gdb),
		pages:       service.NewPageService(gdb),
		sections:    service.NewPageContentService(gdb),
		posts:       service.NewBlogService(gdb),
		categories:  service.NewCategoryService(gdb),
		team:        service.NewTeamService(gdb),
		portfolio:   service.NewPortfolioService(gdb),
		investments: service.NewInvestmentService(gdb),
		offices:     service.NewOfficeService(gdb),
		media:       service.NewMediaService(gdb, files),
		mediaUsage:  service.NewMediaUsageService(gdb),
		branding:    service.NewBrandingService(gdb),
		footer:      service.NewFooterService(gdb),
		forms:       service.NewFormService(gdb),
		formFields:  service.NewFormFieldService(gdb),
		homepage:    service.NewHomepageService(gdb),
	}
}
