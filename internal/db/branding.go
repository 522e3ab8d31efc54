package db

import "time"

// BrandingSetting 存储站点品牌相关的键值对。
type BrandingSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// 品牌设置键
const (
	BrandingKeySiteName       = "site_name"
	BrandingKeyTagline        = "tagline"
	BrandingKeyLogoURL        = "logo_url"
	BrandingKeyLogoDarkURL    = "logo_dark_url"
	BrandingKeyFaviconURL     = "favicon_url"
	BrandingKeyPrimaryColor   = "primary_color"
	BrandingKeySecondaryColor = "secondary_color"
	BrandingKeyContactEmail   = "contact_email"
	BrandingKeyCopyrightText  = "copyright_text"
	BrandingKeySocialLinkedIn = "social_linkedin"
	BrandingKeySocialTwitter  = "social_twitter"
	BrandingKeySocialYouTube  = "social_youtube"
)

// FooterLink 页脚链接，删除时仅置为不可用
type FooterLink struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Section      string    `gorm:"size:100;not null;index" json:"section"`
	Label        string    `gorm:"size:150;not null" json:"label"`
	URL          string    `gorm:"size:500;not null" json:"url"`
	OpenInNewTab bool      `gorm:"not null" json:"open_in_new_tab"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
