package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

const (
	homePageSlug      = "home"
	homepagePostCount = 3
)

// Homepage 首页聚合数据
type Homepage struct {
	Page            *db.Page                       `json:"page"`
	Sections        []db.PageContent               `json:"sections"`
	InvestmentAreas map[string][]db.InvestmentArea `json:"investment_areas"`
	Portfolio       []db.PortfolioCompany          `json:"featured_portfolio"`
	LatestPosts     []db.BlogPost                  `json:"latest_posts"`
	Branding        map[string]string              `json:"branding"`
}

// HomepageService 组合首页所需的各类内容。
type HomepageService struct {
	pages       *PageService
	investments *InvestmentService
	portfolio   *PortfolioService
	blog        *BlogService
	branding    *BrandingService
}

// NewHomepageService creates a HomepageService over the given database.
func NewHomepageService(gdb *gorm.DB) *HomepageService {
	return &HomepageService{
		pages:       NewPageService(gdb),
		investments: NewInvestmentService(gdb),
		portfolio:   NewPortfolioService(gdb),
		blog:        NewBlogService(gdb),
		branding:    NewBrandingService(gdb),
	}
}

// Load 读取首页数据；首页不存在或未发布时 sections 为空。
func (s *HomepageService) Load(ctx context.Context) (*Homepage, error) {
	home := &Homepage{Sections: []db.PageContent{}}

	page, err := s.pages.GetBySlug(ctx, homePageSlug, true)
	switch {
	case err == nil && page.IsPublished:
		home.Sections = page.Sections
		page.Sections = nil
		home.Page = page
	case err != nil && !errors.Is(err, ErrPageNotFound):
		return nil, fmt.Errorf("load home page: %w", err)
	}

	if home.InvestmentAreas, err = s.investments.Grouped(ctx); err != nil {
		return nil, fmt.Errorf("load investment areas: %w", err)
	}

	featured := true
	if home.Portfolio, err = s.portfolio.List(ctx, PortfolioFilter{Featured: &featured, ActiveOnly: true}); err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	if home.LatestPosts, err = s.blog.Latest(ctx, homepagePostCount); err != nil {
		return nil, fmt.Errorf("load latest posts: %w", err)
	}

	if home.Branding, err = s.branding.Get(ctx); err != nil {
		return nil, fmt.Errorf("load branding: %w", err)
	}
	return home, nil
}
