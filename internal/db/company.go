package db

import "time"

// TeamMember 团队成员
type TeamMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Position    string    `gorm:"size:150;not null" json:"position"`
	Bio         string    `gorm:"type:text" json:"bio"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Email       string    `gorm:"size:255" json:"email"`
	LinkedInURL string    `gorm:"column:linkedin_url;size:500" json:"linkedin_url"`
	Department  string    `gorm:"size:100;index" json:"department"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// 被投企业状态
const (
	CompanyStatusActive = "active"
	CompanyStatusExited = "exited"
)

// PortfolioCompany 被投企业
type PortfolioCompany struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:200;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	LogoURL         string    `gorm:"size:500" json:"logo_url"`
	WebsiteURL      string    `gorm:"size:500" json:"website_url"`
	Sector          string    `gorm:"size:100;index" json:"sector"`
	InvestmentStage string    `gorm:"size:100" json:"investment_stage"`
	InvestmentYear  int       `json:"investment_year"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	IsFeatured      bool      `gorm:"not null" json:"is_featured"`
	SortOrder       int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// 投资领域类型
const (
	AreaTypePillar = "pillar"
	AreaTypeSector = "sector"
)

// InvestmentArea 首页与关于页展示的投资支柱或行业
type InvestmentArea struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	AreaType    string    `gorm:"size:20;not null;index" json:"area_type"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OfficeLocation 办公地点
type OfficeLocation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:150;not null" json:"name"`
	City           string    `gorm:"size:120;not null" json:"city"`
	Country        string    `gorm:"size:120;not null" json:"country"`
	Address        string    `gorm:"type:text" json:"address"`
	Phone          string    `gorm:"size:50" json:"phone"`
	Email          string    `gorm:"size:255" json:"email"`
	MapURL         string    `gorm:"size:500" json:"map_url"`
	IsHeadquarters bool      `gorm:"not null" json:"is_headquarters"`
	SortOrder      int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
