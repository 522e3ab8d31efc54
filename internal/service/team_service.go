package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamOrder          = errors.New("invalid team order")
)

// TeamService 管理团队成员。
type TeamService struct {
	db *gorm.DB
}

// TeamFilter 团队列表过滤条件
type TeamFilter struct {
	Department string
	ActiveOnly bool
}

// TeamMemberInput nil 字段保持原值。
type TeamMemberInput struct {
	Name        *string
	Position    *string
	Bio         *string
	ImageURL    *string
	Email       *string
	LinkedInURL *string
	Department  *string
	SortOrder   *int
	IsActive    *bool
}

// NewTeamService creates a TeamService instance.
func NewTeamService(gdb *gorm.DB) *TeamService {
	return &TeamService{db: gdb}
}

// List returns team members ordered for display.
func (s *TeamService) List(ctx context.Context, filter TeamFilter) ([]db.TeamMember, error) {
	query := s.db.WithContext(ctx).Model(&db.TeamMember{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if department := strings.TrimSpace(filter.Department); department != "" {
		query = query.Where("LOWER(department) = ?", strings.ToLower(department))
	}

	var members []db.TeamMember
	if err := query.Order("sort_order asc").Order("id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Get returns a member; activeOnly hides inactive members.
func (s *TeamService) Get(ctx context.Context, id uint, activeOnly bool) (*db.TeamMember, error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var member db.TeamMember
	if err := query.First(&member, id).Error; err != nil {
		return nil, notFound(err, ErrTeamMemberNotFound)
	}
	return &member, nil
}

// Create inserts a team member.
func (s *TeamService) Create(ctx context.Context, input TeamMemberInput) (*db.TeamMember, error) {
	member := db.TeamMember{
		Name:        trimmed(input.Name),
		Position:    trimmed(input.Position),
		Bio:         trimmed(input.Bio),
		ImageURL:    trimmed(input.ImageURL),
		Email:       strings.ToLower(trimmed(input.Email)),
		LinkedInURL: trimmed(input.LinkedInURL),
		Department:  trimmed(input.Department),
		SortOrder:   valueOr(input.SortOrder, 0),
		IsActive:    valueOr(input.IsActive, true),
	}

	vErr := &ValidationError{}
	if member.Name == "" {
		vErr.Add("name", "请填写姓名")
	}
	if member.Position == "" {
		vErr.Add("position", "请填写职位")
	}
	validateTeamLinks(vErr, member.Email, member.ImageURL, member.LinkedInURL)
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("create team member: %w", err)
	}
	return &member, nil
}

// Update applies a partial update.
func (s *TeamService) Update(ctx context.Context, id uint, input TeamMemberInput) (*db.TeamMember, error) {
	var member db.TeamMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&member, id).Error; err != nil {
			return notFound(err, ErrTeamMemberNotFound)
		}

		vErr := &ValidationError{}
		if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
			vErr.Add("name", "姓名不能为空")
		}
		if input.Position != nil && strings.TrimSpace(*input.Position) == "" {
			vErr.Add("position", "职位不能为空")
		}
		validateTeamLinks(vErr, trimmed(input.Email), trimmed(input.ImageURL), trimmed(input.LinkedInURL))
		if err := vErr.OrNil(); err != nil {
			return err
		}

		ch := changes{}
		ch.str("name", input.Name)
		ch.str("position", input.Position)
		ch.str("bio", input.Bio)
		ch.str("image_url", input.ImageURL)
		if input.Email != nil {
			ch["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		ch.str("linkedin_url", input.LinkedInURL)
		ch.str("department", input.Department)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&member).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&member, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Delete removes a team member.
func (s *TeamService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.TeamMember{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

// Reorder 按 ids 的顺序重写 sort_order。
func (s *TeamService) Reorder(ctx context.Context, ids []uint) error {
	if err := validateOrder(ids); err != nil {
		return ErrTeamOrder
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(&db.TeamMember{}).Where("id = ?", id).Update("sort_order", idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrTeamMemberNotFound
			}
		}
		return nil
	})
}

func validateTeamLinks(vErr *ValidationError, email, imageURL, linkedInURL string) {
	if email != "" && !isEmail(email) {
		vErr.Add("email", "邮箱格式不正确")
	}
	if imageURL != "" && !isLink(imageURL) {
		vErr.Add("image_url", "图片地址不正确")
	}
	if linkedInURL != "" && !isLink(linkedInURL) {
		vErr.Add("linkedin_url", "LinkedIn 地址不正确")
	}
}
