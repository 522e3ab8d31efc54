package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var ErrCompanyNotFound = errors.New("portfolio company not found")

const minInvestmentYear = 1900

// PortfolioService 管理被投企业。
type PortfolioService struct {
	db  *gorm.DB
	now func() time.Time
}

// PortfolioFilter 列表过滤条件，Featured 为 nil 时不过滤。
type PortfolioFilter struct {
	Sector     string
	Status     string
	Featured   *bool
	ActiveOnly bool
}

// PortfolioInput nil 字段保持原值。
type PortfolioInput struct {
	Name            *string
	Description     *string
	LogoURL         *string
	WebsiteURL      *string
	Sector          *string
	InvestmentStage *string
	InvestmentYear  *int
	Status          *string
	IsFeatured      *bool
	SortOrder       *int
	IsActive        *bool
}

// NewPortfolioService creates a PortfolioService instance.
func NewPortfolioService(gdb *gorm.DB) *PortfolioService {
	return &PortfolioService{db: gdb, now: time.Now}
}

// List returns companies; featured ones first within the same sort order.
func (s *PortfolioService) List(ctx context.Context, filter PortfolioFilter) ([]db.PortfolioCompany, error) {
	query := s.db.WithContext(ctx).Model(&db.PortfolioCompany{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if sector := strings.TrimSpace(filter.Sector); sector != "" {
		query = query.Where("LOWER(sector) = ?", strings.ToLower(sector))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}

	var companies []db.PortfolioCompany
	if err := query.Order("sort_order asc").Order("name asc").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Get returns one company; activeOnly hides inactive rows.
func (s *PortfolioService) Get(ctx context.Context, id uint, activeOnly bool) (*db.PortfolioCompany, error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var company db.PortfolioCompany
	if err := query.First(&company, id).Error; err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	return &company, nil
}

// Create inserts a company.
func (s *PortfolioService) Create(ctx context.Context, input PortfolioInput) (*db.PortfolioCompany, error) {
	company := db.PortfolioCompany{
		Name:            trimmed(input.Name),
		Description:     trimmed(input.Description),
		LogoURL:         trimmed(input.LogoURL),
		WebsiteURL:      trimmed(input.WebsiteURL),
		Sector:          trimmed(input.Sector),
		InvestmentStage: trimmed(input.InvestmentStage),
		InvestmentYear:  valueOr(input.InvestmentYear, 0),
		Status:          strings.ToLower(valueOr(input.Status, db.CompanyStatusActive)),
		IsFeatured:      valueOr(input.IsFeatured, false),
		SortOrder:       valueOr(input.SortOrder, 0),
		IsActive:        valueOr(input.IsActive, true),
	}

	vErr := &ValidationError{}
	if company.Name == "" {
		vErr.Add("name", "请填写企业名称")
	}
	s.validate(vErr, company.Status, company.InvestmentYear, company.LogoURL, company.WebsiteURL)
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, fmt.Errorf("create portfolio company: %w", err)
	}
	return &company, nil
}

// Update applies a partial update.
func (s *PortfolioService) Update(ctx context.Context, id uint, input PortfolioInput) (*db.PortfolioCompany, error) {
	var company db.PortfolioCompany
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&company, id).Error; err != nil {
			return notFound(err, ErrCompanyNotFound)
		}

		vErr := &ValidationError{}
		if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
			vErr.Add("name", "企业名称不能为空")
		}
		status := company.Status
		if input.Status != nil {
			status = strings.ToLower(strings.TrimSpace(*input.Status))
		}
		s.validate(vErr, status, valueOr(input.InvestmentYear, company.InvestmentYear), trimmed(input.LogoURL), trimmed(input.WebsiteURL))
		if err := vErr.OrNil(); err != nil {
			return err
		}

		ch := changes{}
		ch.str("name", input.Name)
		ch.str("description", input.Description)
		ch.str("logo_url", input.LogoURL)
		ch.str("website_url", input.WebsiteURL)
		ch.str("sector", input.Sector)
		ch.str("investment_stage", input.InvestmentStage)
		setField(ch, "investment_year", input.InvestmentYear)
		if input.Status != nil {
			ch["status"] = status
		}
		setField(ch, "is_featured", input.IsFeatured)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&company).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&company, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Delete removes a company.
func (s *PortfolioService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.PortfolioCompany{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (s *PortfolioService) validate(vErr *ValidationError, status string, year int, logoURL, websiteURL string) {
	if status != db.CompanyStatusActive && status != db.CompanyStatusExited {
		vErr.Add("status", "状态必须是 active 或 exited")
	}
	// 0 表示未填写
	if year != 0 && (year < minInvestmentYear || year > s.now().Year()+1) {
		vErr.Add("investment_year", "投资年份超出范围")
	}
	if logoURL != "" && !isLink(logoURL) {
		vErr.Add("logo_url", "Logo 地址不正确")
	}
	if websiteURL != "" && !isLink(websiteURL) {
		vErr.Add("website_url", "网站地址不正确")
	}
}
