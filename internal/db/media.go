package db

import (
	"strings"
	"time"
)

// Media 记录上传到本地磁盘的文件
type Media struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	MimeType     string    `gorm:"size:100;index" json:"mime_type"`
	Size         int64     `json:"size"`
	URL          string    `gorm:"size:500;not null" json:"url"`
	ThumbnailURL string    `gorm:"size:500" json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	AltText      string    `gorm:"size:255" json:"alt_text"`
	Caption      string    `gorm:"type:text" json:"caption"`
	Folder       string    `gorm:"size:100;index" json:"folder"`
	UploadedBy   *uint     `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 媒体表名不做复数化。
func (Media) TableName() string {
	return "media"
}

// IsImage 判断文件是否为图片。
func (m Media) IsImage() bool {
	return strings.HasPrefix(m.MimeType, "image/")
}
