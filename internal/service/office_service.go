package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var ErrOfficeNotFound = errors.New("office not found")

// OfficeService 管理办公地点。
type OfficeService struct {
	db *gorm.DB
}

// OfficeInput nil 字段保持原值。
type OfficeInput struct {
	Name           *string
	City           *string
	Country        *string
	Address        *string
	Phone          *string
	Email          *string
	MapURL         *string
	IsHeadquarters *bool
	SortOrder      *int
	IsActive       *bool
}

// NewOfficeService creates an OfficeService instance.
func NewOfficeService(gdb *gorm.DB) *OfficeService {
	return &OfficeService{db: gdb}
}

// List returns offices with the headquarters first.
func (s *OfficeService) List(ctx context.Context, activeOnly bool) ([]db.OfficeLocation, error) {
	query := s.db.WithContext(ctx).Model(&db.OfficeLocation{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var offices []db.OfficeLocation
	err := query.Order("is_headquarters desc").
		Order("sort_order asc").
		Order("id asc").
		Find(&offices).Error
	if err != nil {
		return nil, err
	}
	return offices, nil
}

// Get returns one office.
func (s *OfficeService) Get(ctx context.Context, id uint, activeOnly bool) (*db.OfficeLocation, error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var office db.OfficeLocation
	if err := query.First(&office, id).Error; err != nil {
		return nil, notFound(err, ErrOfficeNotFound)
	}
	return &office, nil
}

// Create inserts an office.
func (s *OfficeService) Create(ctx context.Context, input OfficeInput) (*db.OfficeLocation, error) {
	office := db.OfficeLocation{
		Name:           trimmed(input.Name),
		City:           trimmed(input.City),
		Country:        trimmed(input.Country),
		Address:        trimmed(input.Address),
		Phone:          trimmed(input.Phone),
		Email:          strings.ToLower(trimmed(input.Email)),
		MapURL:         trimmed(input.MapURL),
		IsHeadquarters: valueOr(input.IsHeadquarters, false),
		SortOrder:      valueOr(input.SortOrder, 0),
		IsActive:       valueOr(input.IsActive, true),
	}

	vErr := &ValidationError{}
	for field, value := range map[string]string{"name": office.Name, "city": office.City, "country": office.Country} {
		if value == "" {
			vErr.Add(field, "不能为空")
		}
	}
	validateOfficeContact(vErr, office.Email, office.MapURL)
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&office).Error; err != nil {
		return nil, fmt.Errorf("create office: %w", err)
	}
	return &office, nil
}

// Update applies a partial update.
func (s *OfficeService) Update(ctx context.Context, id uint, input OfficeInput) (*db.OfficeLocation, error) {
	var office db.OfficeLocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&office, id).Error; err != nil {
			return notFound(err, ErrOfficeNotFound)
		}

		vErr := &ValidationError{}
		for field, value := range map[string]*string{"name": input.Name, "city": input.City, "country": input.Country} {
			if value != nil && strings.TrimSpace(*value) == "" {
				vErr.Add(field, "不能为空")
			}
		}
		validateOfficeContact(vErr, trimmed(input.Email), trimmed(input.MapURL))
		if err := vErr.OrNil(); err != nil {
			return err
		}

		ch := changes{}
		ch.str("name", input.Name)
		ch.str("city", input.City)
		ch.str("country", input.Country)
		ch.str("address", input.Address)
		ch.str("phone", input.Phone)
		if input.Email != nil {
			ch["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		ch.str("map_url", input.MapURL)
		setField(ch, "is_headquarters", input.IsHeadquarters)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&office).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&office, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &office, nil
}

// Delete removes an office.
func (s *OfficeService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.OfficeLocation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfficeNotFound
	}
	return nil
}

func validateOfficeContact(vErr *ValidationError, email, mapURL string) {
	if email != "" && !isEmail(email) {
		vErr.Add("email", "邮箱格式不正确")
	}
	if mapURL != "" && !isLink(mapURL) {
		vErr.Add("map_url", "地图地址不正确")
	}
}
