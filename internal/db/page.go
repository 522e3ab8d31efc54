package db

import (
	"time"

	"gorm.io/datatypes"
)

// Page represents a top-level marketing page such as home, about or contact.
type Page struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Slug            string        `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title           string        `gorm:"size:255;not null" json:"title"`
	MetaTitle       string        `gorm:"size:255" json:"meta_title"`
	MetaDescription string        `gorm:"type:text" json:"meta_description"`
	IsPublished     bool          `gorm:"not null" json:"is_published"`
	SortOrder       int           `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Sections        []PageContent `gorm:"foreignKey:PageSlug;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sections,omitempty"`
}

// 页面内容区块类型
const (
	ContentTypeHero        = "hero"
	ContentTypeText        = "text"
	ContentTypeFeatureList = "feature_list"
	ContentTypeContactInfo = "contact_info"
	ContentTypeFormConfig  = "form_config"
)

// ContentTypes 列出全部合法的区块类型。
var ContentTypes = []string{
	ContentTypeHero,
	ContentTypeText,
	ContentTypeFeatureList,
	ContentTypeContactInfo,
	ContentTypeFormConfig,
}

// PageContent 是挂在页面 slug 下的一个类型化内容区块，Content 保存区块的 JSON 数据。
type PageContent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PageSlug    string         `gorm:"size:200;not null;uniqueIndex:idx_page_content_section" json:"page_slug"`
	SectionKey  string         `gorm:"size:100;not null;uniqueIndex:idx_page_content_section" json:"section_key"`
	ContentType string         `gorm:"size:50;not null" json:"content_type"`
	Title       string         `gorm:"size:255" json:"title"`
	Content     datatypes.JSON `json:"content"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName 保持与既有库表一致的单数表名。
func (PageContent) TableName() string {
	return "page_content"
}
