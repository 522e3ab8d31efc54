package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

// 引用来源
const (
	UsageTeamMember      = "team_member"
	UsagePortfolio       = "portfolio_company"
	UsageBlogFeatured    = "blog_featured_image"
	UsageBlogContent     = "blog_content"
	UsagePageContent     = "page_content"
	UsageBrandingSetting = "branding_setting"
)

// MediaUsage 描述一处引用了媒体文件的记录。
type MediaUsage struct {
	Type  string `json:"type"`
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Field string `json:"field"`
}

// MediaUsageSummary 媒体文件及其被引用次数。
type MediaUsageSummary struct {
	MediaID    uint   `json:"media_id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UsageCount int    `json:"usage_count"`
}

// MediaUsageService 查找内容中对媒体 URL 的引用。
type MediaUsageService struct {
	db *gorm.DB
}

// NewMediaUsageService creates a MediaUsageService instance.
func NewMediaUsageService(gdb *gorm.DB) *MediaUsageService {
	return &MediaUsageService{db: gdb}
}

// Usages 返回引用了指定媒体的全部记录。
func (s *MediaUsageService) Usages(ctx context.Context, mediaID uint) (*db.Media, []MediaUsage, error) {
	var media db.Media
	if err := s.db.WithContext(ctx).First(&media, mediaID).Error; err != nil {
		return nil, nil, notFound(err, ErrMediaNotFound)
	}
	usages, err := findUsages(s.db.WithContext(ctx), media)
	if err != nil {
		return nil, nil, err
	}
	return &media, usages, nil
}

// Summary 返回每个媒体文件的引用次数。
func (s *MediaUsageService) Summary(ctx context.Context) ([]MediaUsageSummary, error) {
	var items []db.Media
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}

	summaries := make([]MediaUsageSummary, 0, len(items))
	for _, media := range items {
		usages, err := findUsages(s.db.WithContext(ctx), media)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, MediaUsageSummary{
			MediaID:    media.ID,
			Filename:   media.Filename,
			URL:        media.URL,
			UsageCount: len(usages),
		})
	}
	return summaries, nil
}

// usageToken 是原图与缩略图 URL 共有的片段，存储文件名带日期与 uuid，足以唯一定位。
func usageToken(media db.Media) string {
	name := media.Filename
	if name == "" {
		name = filepath.Base(media.URL)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func findUsages(tx *gorm.DB, media db.Media) ([]MediaUsage, error) {
	token := usageToken(media)
	if token == "" {
		return nil, nil
	}
	pattern := "%" + token + "%"

	usages := make([]MediaUsage, 0)

	var members []db.TeamMember
	if err := tx.Select("id", "name").Where("image_url LIKE ?", pattern).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		usages = append(usages, MediaUsage{Type: UsageTeamMember, ID: m.ID, Label: m.Name, Field: "image_url"})
	}

	var companies []db.PortfolioCompany
	if err := tx.Select("id", "name").Where("logo_url LIKE ?", pattern).Find(&companies).Error; err != nil {
		return nil, err
	}
	for _, c := range companies {
		usages = append(usages, MediaUsage{Type: UsagePortfolio, ID: c.ID, Label: c.Name, Field: "logo_url"})
	}

	var featured []db.BlogPost
	if err := tx.Select("id", "title").Where("featured_image LIKE ?", pattern).Find(&featured).Error; err != nil {
		return nil, err
	}
	for _, p := range featured {
		usages = append(usages, MediaUsage{Type: UsageBlogFeatured, ID: p.ID, Label: p.Title, Field: "featured_image"})
	}

	var inline []db.BlogPost
	if err := tx.Select("id", "title").Where("content LIKE ?", pattern).Find(&inline).Error; err != nil {
		return nil, err
	}
	for _, p := range inline {
		usages = append(usages, MediaUsage{Type: UsageBlogContent, ID: p.ID, Label: p.Title, Field: "content"})
	}

	var sections []db.PageContent
	if err := tx.Select("id", "page_slug", "section_key").Where("CAST(content AS TEXT) LIKE ?", pattern).Find(&sections).Error; err != nil {
		return nil, err
	}
	for _, sec := range sections {
		usages = append(usages, MediaUsage{Type: UsagePageContent, ID: sec.ID, Label: sec.PageSlug + "/" + sec.SectionKey, Field: "content"})
	}

	var settings []db.BrandingSetting
	if err := tx.Select("id", "key").Where("value LIKE ?", pattern).Find(&settings).Error; err != nil {
		return nil, err
	}
	for _, setting := range settings {
		usages = append(usages, MediaUsage{Type: UsageBrandingSetting, ID: setting.ID, Label: setting.Key, Field: "value"})
	}

	return usages, nil
}
