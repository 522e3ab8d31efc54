package db

import "time"

// 文章状态
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// BlogCategory 定义了博客分类模型
type BlogCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	PostCount   int64     `gorm:"->;-:migration" json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlogPost 定义了博客文章模型
type BlogPost struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Title           string        `gorm:"size:255;not null" json:"title"`
	Slug            string        `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt         string        `gorm:"type:text" json:"excerpt"`
	Content         string        `gorm:"type:text" json:"content"`
	FeaturedImage   string        `gorm:"size:500" json:"featured_image"`
	Author          string        `gorm:"size:150" json:"author"`
	CategoryID      *uint         `gorm:"index" json:"category_id"`
	Category        *BlogCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Status          string        `gorm:"size:20;not null;index" json:"status"`
	PublishedAt     *time.Time    `gorm:"index" json:"published_at"`
	ReadingTime     int           `gorm:"not null;default:1" json:"reading_time"`
	ViewCount       int64         `gorm:"not null;default:0" json:"view_count"`
	MetaTitle       string        `gorm:"size:255" json:"meta_title"`
	MetaDescription string        `gorm:"type:text" json:"meta_description"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsPublished 判断文章是否已对外发布。
func (p BlogPost) IsPublished() bool {
	return p.Status == PostStatusPublished
}
