package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSectionNotFound = errors.New("page section not found")
	ErrSectionExists   = errors.New("page section already exists")
	ErrSectionOrder    = errors.New("invalid section order")
)

var sectionKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// PageContentService 管理页面下的类型化内容区块。
type PageContentService struct {
	db *gorm.DB
}

// PageContentInput 描述区块字段，nil 表示不修改。
type PageContentInput struct {
	PageSlug    *string
	SectionKey  *string
	ContentType *string
	Title       *string
	Content     json.RawMessage
	SortOrder   *int
	IsActive    *bool
}

// NewPageContentService creates a PageContentService instance.
func NewPageContentService(gdb *gorm.DB) *PageContentService {
	return &PageContentService{db: gdb}
}

// ListByPage returns the sections of a page in display order.
// activeOnly 同时要求页面已发布，未发布的页面返回 ErrPageNotFound。
func (s *PageContentService) ListByPage(ctx context.Context, pageSlug string, activeOnly bool) ([]db.PageContent, error) {
	pageSlug = strings.TrimSpace(pageSlug)
	query := s.db.WithContext(ctx).Where("page_slug = ?", pageSlug)
	if activeOnly {
		if err := s.requirePublished(ctx, pageSlug); err != nil {
			return nil, err
		}
		query = query.Where("is_active = ?", true)
	}

	var sections []db.PageContent
	if err := query.Order("sort_order asc").Order("id asc").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// GetSection returns one section of a page by its key.
func (s *PageContentService) GetSection(ctx context.Context, pageSlug, sectionKey string, activeOnly bool) (*db.PageContent, error) {
	pageSlug = strings.TrimSpace(pageSlug)
	query := s.db.WithContext(ctx).
		Where("page_slug = ? AND section_key = ?", pageSlug, strings.TrimSpace(sectionKey))
	if activeOnly {
		if err := s.requirePublished(ctx, pageSlug); err != nil {
			return nil, err
		}
		query = query.Where("is_active = ?", true)
	}

	var section db.PageContent
	if err := query.First(&section).Error; err != nil {
		return nil, notFound(err, ErrSectionNotFound)
	}
	return &section, nil
}

func (s *PageContentService) requirePublished(ctx context.Context, pageSlug string) error {
	published, err := recordExists(s.db.WithContext(ctx), &db.Page{}, "slug = ? AND is_published = ?", pageSlug, true)
	if err != nil {
		return err
	}
	if !published {
		return ErrPageNotFound
	}
	return nil
}

// Get returns a section by id.
func (s *PageContentService) Get(ctx context.Context, id uint) (*db.PageContent, error) {
	var section db.PageContent
	if err := s.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, notFound(err, ErrSectionNotFound)
	}
	return &section, nil
}

// Create validates the section shape for its type and inserts it at the end of the page.
func (s *PageContentService) Create(ctx context.Context, input PageContentInput) (*db.PageContent, error) {
	section := db.PageContent{
		PageSlug:    trimmed(input.PageSlug),
		SectionKey:  strings.ToLower(trimmed(input.SectionKey)),
		ContentType: strings.ToLower(trimmed(input.ContentType)),
		Title:       trimmed(input.Title),
		Content:     datatypes.JSON(input.Content),
		IsActive:    valueOr(input.IsActive, true),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vErr := &ValidationError{}
		if section.PageSlug == "" {
			vErr.Add("page_slug", "请指定页面")
		} else if exists, err := recordExists(tx, &db.Page{}, "slug = ?", section.PageSlug); err != nil {
			return err
		} else if !exists {
			vErr.Add("page_slug", "页面不存在")
		}
		if !sectionKeyPattern.MatchString(section.SectionKey) {
			vErr.Add("section_key", "区块标识只能包含小写字母、数字、下划线与连字符")
		}
		if err := validateSectionContent(tx, section.ContentType, section.Content, vErr); err != nil {
			return err
		}
		if err := vErr.OrNil(); err != nil {
			return err
		}

		if input.SortOrder != nil {
			section.SortOrder = *input.SortOrder
		} else {
			var maxOrder int
			if err := tx.Model(&db.PageContent{}).
				Where("page_slug = ?", section.PageSlug).
				Select("COALESCE(MAX(sort_order), -1)").
				Scan(&maxOrder).Error; err != nil {
				return err
			}
			section.SortOrder = maxOrder + 1
		}

		if err := tx.Create(&section).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSectionExists
			}
			return fmt.Errorf("create section: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// Update applies a partial update and re-validates the resulting content against its type.
func (s *PageContentService) Update(ctx context.Context, id uint, input PageContentInput) (*db.PageContent, error) {
	var section db.PageContent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&section, id).Error; err != nil {
			return notFound(err, ErrSectionNotFound)
		}

		ch := changes{}
		vErr := &ValidationError{}

		contentType := section.ContentType
		if input.ContentType != nil {
			contentType = strings.ToLower(strings.TrimSpace(*input.ContentType))
			ch["content_type"] = contentType
		}
		content := section.Content
		if input.Content != nil {
			content = datatypes.JSON(input.Content)
			ch["content"] = content
		}
		if input.ContentType != nil || input.Content != nil {
			if err := validateSectionContent(tx, contentType, content, vErr); err != nil {
				return err
			}
		}

		if input.SectionKey != nil {
			key := strings.ToLower(strings.TrimSpace(*input.SectionKey))
			if !sectionKeyPattern.MatchString(key) {
				vErr.Add("section_key", "区块标识只能包含小写字母、数字、下划线与连字符")
			}
			ch["section_key"] = key
		}
		if input.PageSlug != nil {
			slug := strings.TrimSpace(*input.PageSlug)
			exists, err := recordExists(tx, &db.Page{}, "slug = ?", slug)
			if err != nil {
				return err
			}
			if !exists {
				vErr.Add("page_slug", "页面不存在")
			}
			ch["page_slug"] = slug
		}
		if err := vErr.OrNil(); err != nil {
			return err
		}

		ch.str("title", input.Title)
		setField(ch, "sort_order", input.SortOrder)
		setField(ch, "is_active", input.IsActive)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&section).Updates(map[string]interface{}(ch)).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSectionExists
			}
			return err
		}
		return tx.First(&section, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// Delete removes a section.
func (s *PageContentService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.PageContent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	return nil
}

// Reorder sets sort_order of the page's sections following ids.
func (s *PageContentService) Reorder(ctx context.Context, pageSlug string, ids []uint) error {
	if err := validateOrder(ids); err != nil {
		return ErrSectionOrder
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(&db.PageContent{}).
				Where("id = ? AND page_slug = ?", id, pageSlug).
				Update("sort_order", idx)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrSectionNotFound
			}
		}
		return nil
	})
}

// validateSectionContent 校验区块类型以及该类型要求的最小 JSON 结构。
func validateSectionContent(tx *gorm.DB, contentType string, content datatypes.JSON, vErr *ValidationError) error {
	if !slices.Contains(db.ContentTypes, contentType) {
		vErr.Add("content_type", "区块类型必须是 "+strings.Join(db.ContentTypes, ", ")+" 之一")
		return nil
	}

	var body map[string]interface{}
	if len(content) == 0 || json.Unmarshal(content, &body) != nil || body == nil {
		vErr.Add("content", "区块内容必须是 JSON 对象")
		return nil
	}

	switch contentType {
	case db.ContentTypeHero:
		if jsonString(body, "headline") == "" {
			vErr.Add("content.headline", "请填写主标题")
		}
	case db.ContentTypeText:
		if jsonString(body, "body") == "" {
			vErr.Add("content.body", "请填写正文")
		}
	case db.ContentTypeFeatureList:
		if _, ok := body["items"].([]interface{}); !ok {
			vErr.Add("content.items", "items 必须是数组")
		}
	case db.ContentTypeContactInfo:
		email := jsonString(body, "email")
		if email == "" && jsonString(body, "phone") == "" && jsonString(body, "address") == "" {
			vErr.Add("content", "联系信息至少包含 email、phone 或 address 之一")
		}
		if email != "" && !isEmail(email) {
			vErr.Add("content.email", "邮箱格式不正确")
		}
	case db.ContentTypeFormConfig:
		formSlug := jsonString(body, "form_slug")
		if formSlug == "" {
			vErr.Add("content.form_slug", "请指定表单")
			return nil
		}
		exists, err := recordExists(tx, &db.Form{}, "slug = ?", formSlug)
		if err != nil {
			return err
		}
		if !exists {
			vErr.Add("content.form_slug", "表单不存在")
		}
	}
	return nil
}

func jsonString(body map[string]interface{}, key string) string {
	value, _ := body[key].(string)
	return strings.TrimSpace(value)
}

func recordExists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// validateOrder 要求 id 非零且不重复。
func validateOrder(ids []uint) error {
	if len(ids) == 0 {
		return errors.New("empty order")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return errors.New("zero id")
		}
		if _, ok := seen[id]; ok {
			return errors.New("duplicate id")
		}
		seen[id] = struct{}{}
	}
	return nil
}
