package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var ErrFooterLinkNotFound = errors.New("footer link not found")

// FooterService 管理页脚链接，删除只是停用。
type FooterService struct {
	db *gorm.DB
}

// FooterSection 同一分组下按顺序排列的链接。
type FooterSection struct {
	Section string          `json:"section"`
	Links   []db.FooterLink `json:"links"`
}

// FooterLinkInput nil 字段保持原值。
type FooterLinkInput struct {
	Section      *string
	Label        *string
	URL          *string
	OpenInNewTab *bool
	SortOrder    *int
	IsActive     *bool
}

// NewFooterService creates a FooterService instance.
func NewFooterService(gdb *gorm.DB) *FooterService {
	return &FooterService{db: gdb}
}

// Grouped 返回按分组聚合的链接，分组顺序以各组最小 sort_order 为准。
func (s *FooterService) Grouped(ctx context.Context, includeInactive bool) ([]FooterSection, error) {
	query := s.db.WithContext(ctx).Model(&db.FooterLink{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var links []db.FooterLink
	if err := query.Order("sort_order asc").Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}

	sections := make([]FooterSection, 0)
	index := make(map[string]int)
	for _, link := range links {
		pos, ok := index[link.Section]
		if !ok {
			pos = len(sections)
			index[link.Section] = pos
			sections = append(sections, FooterSection{Section: link.Section})
		}
		sections[pos].Links = append(sections[pos].Links, link)
	}
	return sections, nil
}

// Create inserts a footer link.
func (s *FooterService) Create(ctx context.Context, input FooterLinkInput) (*db.FooterLink, error) {
	link := db.FooterLink{
		Section:      strings.ToLower(trimmed(input.Section)),
		Label:        trimmed(input.Label),
		URL:          trimmed(input.URL),
		OpenInNewTab: valueOr(input.OpenInNewTab, false),
		SortOrder:    valueOr(input.SortOrder, 0),
		IsActive:     valueOr(input.IsActive, true),
	}

	vErr := &ValidationError{}
	if link.Section == "" {
		vErr.Add("section", "请填写分组")
	}
	if link.Label == "" {
		vErr.Add("label", "请填写链接文字")
	}
	if !isLink(link.URL) {
		vErr.Add("url", "链接格式不正确")
	}
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("create footer link: %w", err)
	}
	return &link, nil
}

// Update applies a partial update.
func (s *FooterService) Update(ctx context.Context, id uint, input FooterLinkInput) (*db.FooterLink, error) {
	var link db.FooterLink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&link, id).Error; err != nil {
			return notFound(err, ErrFooterLinkNotFound)
		}

		vErr := &ValidationError{}
		if input.Section != nil && strings.TrimSpace(*input.Section) == "" {
			vErr.Add("section", "分组不能为空")
		}
		if input.Label != nil && strings.TrimSpace(*input.Label) == "" {
			vErr.Add("label", "链接文字不能为空")
		}
		if input.URL != nil && !isLink(strings.TrimSpace(*input.URL)) {
			vErr.Add("url", "链接格式不正确")
		}
		if err := vErr.OrNil(); err != nil {
			return err
		}

		ch := changes{}
		if input.Section != nil {
			ch["section"] = strings.ToLower(strings.TrimSpace(*input.Section))
		}
		ch.str("label", input.Label)
		ch.str("url", input.URL)
		setField(ch, "open_in_new_tab", input.OpenInNewTab)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&link).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&link, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Delete 仅将链接置为停用，记录保留。
func (s *FooterService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&db.FooterLink{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFooterLinkNotFound
	}
	return nil
}
