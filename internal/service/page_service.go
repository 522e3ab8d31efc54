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
	ErrPageNotFound     = errors.New("page not found")
	ErrPageTitleMissing = errors.New("page title is required")
)

// PageService provides access to marketing pages and their sections.
type PageService struct {
	db *gorm.DB
}

// PageInput 描述创建或部分更新页面时的字段，nil 表示不修改。
type PageInput struct {
	Slug            *string
	Title           *string
	MetaTitle       *string
	MetaDescription *string
	IsPublished     *bool
	SortOrder       *int
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// List returns pages ordered by sort order; publishedOnly hides drafts.
func (s *PageService) List(ctx context.Context, publishedOnly bool) ([]db.Page, error) {
	query := s.db.WithContext(ctx).Model(&db.Page{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var pages []db.Page
	if err := query.Order("sort_order asc").Order("id asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// GetBySlug fetches a page for a given slug together with its sections.
func (s *PageService) GetBySlug(ctx context.Context, slug string, activeSectionsOnly bool) (*db.Page, error) {
	var page db.Page
	err := s.db.WithContext(ctx).
		Preload("Sections", func(tx *gorm.DB) *gorm.DB {
			if activeSectionsOnly {
				tx = tx.Where("is_active = ?", true)
			}
			return tx.Order("sort_order asc").Order("id asc")
		}).
		Where("slug = ?", strings.TrimSpace(slug)).
		First(&page).Error
	if err != nil {
		return nil, notFound(err, ErrPageNotFound)
	}
	return &page, nil
}

// Get fetches a page by id.
func (s *PageService) Get(ctx context.Context, id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		return nil, notFound(err, ErrPageNotFound)
	}
	return &page, nil
}

// Create inserts a page; slug falls back to the title.
func (s *PageService) Create(ctx context.Context, input PageInput) (*db.Page, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, ErrPageTitleMissing
	}

	slug := Slugify(trimmed(input.Slug))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, NewValidationError("slug", "无法从标题生成 slug")
	}

	page := db.Page{
		Slug:            slug,
		Title:           title,
		MetaTitle:       trimmed(input.MetaTitle),
		MetaDescription: trimmed(input.MetaDescription),
		IsPublished:     valueOr(input.IsPublished, false),
		SortOrder:       valueOr(input.SortOrder, 0),
	}

	if err := s.db.WithContext(ctx).Create(&page).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &page, nil
}

// Update applies a partial update; renaming the slug moves the page's sections along.
func (s *PageService) Update(ctx context.Context, id uint, input PageInput) (*db.Page, error) {
	var page db.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, id).Error; err != nil {
			return notFound(err, ErrPageNotFound)
		}

		ch := changes{}
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return ErrPageTitleMissing
			}
			ch.str("title", input.Title)
		}
		ch.str("meta_title", input.MetaTitle)
		ch.str("meta_description", input.MetaDescription)
		setField(ch, "is_published", input.IsPublished)
		setField(ch, "sort_order", input.SortOrder)

		oldSlug := page.Slug
		if input.Slug != nil {
			slug := Slugify(*input.Slug)
			if slug == "" {
				return NewValidationError("slug", "slug 不能为空")
			}
			if slug != oldSlug {
				taken, err := slugTaken(tx, &db.Page{}, slug, page.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrSlugTaken
				}
				ch["slug"] = slug
			}
		}

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&page).Updates(map[string]interface{}(ch)).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSlugTaken
			}
			return err
		}
		if newSlug, ok := ch["slug"].(string); ok {
			if err := tx.Model(&db.PageContent{}).
				Where("page_slug = ?", oldSlug).
				Update("page_slug", newSlug).Error; err != nil {
				return err
			}
		}
		return tx.First(&page, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Delete removes a page and its content sections.
func (s *PageService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var page db.Page
		if err := tx.First(&page, id).Error; err != nil {
			return notFound(err, ErrPageNotFound)
		}
		if err := tx.Where("page_slug = ?", page.Slug).Delete(&db.PageContent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&page).Error
	})
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
