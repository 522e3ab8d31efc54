package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var ErrInvestmentAreaNotFound = errors.New("investment area not found")

// InvestmentService 管理投资支柱与行业。
type InvestmentService struct {
	db *gorm.DB
}

// InvestmentAreaInput nil 字段保持原值。
type InvestmentAreaInput struct {
	Title       *string
	Description *string
	Icon        *string
	AreaType    *string
	SortOrder   *int
	IsActive    *bool
}

// NewInvestmentService creates an InvestmentService instance.
func NewInvestmentService(gdb *gorm.DB) *InvestmentService {
	return &InvestmentService{db: gdb}
}

// List returns areas, optionally restricted to one area type.
func (s *InvestmentService) List(ctx context.Context, areaType string, activeOnly bool) ([]db.InvestmentArea, error) {
	query := s.db.WithContext(ctx).Model(&db.InvestmentArea{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if areaType = strings.ToLower(strings.TrimSpace(areaType)); areaType != "" {
		query = query.Where("area_type = ?", areaType)
	}

	var areas []db.InvestmentArea
	if err := query.Order("sort_order asc").Order("id asc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// Grouped 按类型分组返回启用中的投资领域。
func (s *InvestmentService) Grouped(ctx context.Context) (map[string][]db.InvestmentArea, error) {
	areas, err := s.List(ctx, "", true)
	if err != nil {
		return nil, err
	}
	grouped := map[string][]db.InvestmentArea{
		db.AreaTypePillar: {},
		db.AreaTypeSector: {},
	}
	for _, area := range areas {
		grouped[area.AreaType] = append(grouped[area.AreaType], area)
	}
	return grouped, nil
}

// Get returns one area.
func (s *InvestmentService) Get(ctx context.Context, id uint, activeOnly bool) (*db.InvestmentArea, error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var area db.InvestmentArea
	if err := query.First(&area, id).Error; err != nil {
		return nil, notFound(err, ErrInvestmentAreaNotFound)
	}
	return &area, nil
}

// Create inserts an area; title and area type are required.
func (s *InvestmentService) Create(ctx context.Context, input InvestmentAreaInput) (*db.InvestmentArea, error) {
	area := db.InvestmentArea{
		Title:       trimmed(input.Title),
		Description: trimmed(input.Description),
		Icon:        trimmed(input.Icon),
		AreaType:    strings.ToLower(trimmed(input.AreaType)),
		SortOrder:   valueOr(input.SortOrder, 0),
		IsActive:    valueOr(input.IsActive, true),
	}

	vErr := &ValidationError{}
	if area.Title == "" {
		vErr.Add("title", "请填写标题")
	}
	if !validAreaType(area.AreaType) {
		vErr.Add("area_type", "类型必须是 pillar 或 sector")
	}
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&area).Error; err != nil {
		return nil, fmt.Errorf("create investment area: %w", err)
	}
	return &area, nil
}

// Update applies a partial update.
func (s *InvestmentService) Update(ctx context.Context, id uint, input InvestmentAreaInput) (*db.InvestmentArea, error) {
	var area db.InvestmentArea
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&area, id).Error; err != nil {
			return notFound(err, ErrInvestmentAreaNotFound)
		}

		ch := changes{}
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return NewValidationError("title", "标题不能为空")
			}
			ch.str("title", input.Title)
		}
		if input.AreaType != nil {
			areaType := strings.ToLower(strings.TrimSpace(*input.AreaType))
			if !validAreaType(areaType) {
				return NewValidationError("area_type", "类型必须是 pillar 或 sector")
			}
			ch["area_type"] = areaType
		}
		ch.str("description", input.Description)
		ch.str("icon", input.Icon)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&area).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&area, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// Delete removes an area.
func (s *InvestmentService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.InvestmentArea{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvestmentAreaNotFound
	}
	return nil
}

func validAreaType(areaType string) bool {
	return areaType == db.AreaTypePillar || areaType == db.AreaTypeSector
}
