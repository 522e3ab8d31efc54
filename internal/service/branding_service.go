package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BrandingService 读取与更新站点品牌设置。
type BrandingService struct {
	db *gorm.DB
}

// brandingDefaults 为未配置的键提供默认值。
var brandingDefaults = map[string]string{
	db.BrandingKeySiteName:       "Site",
	db.BrandingKeyTagline:        "",
	db.BrandingKeyLogoURL:        "",
	db.BrandingKeyLogoDarkURL:    "",
	db.BrandingKeyFaviconURL:     "",
	db.BrandingKeyPrimaryColor:   "#0f172a",
	db.BrandingKeySecondaryColor: "#c8a165",
	db.BrandingKeyContactEmail:   "",
	db.BrandingKeyCopyrightText:  "",
	db.BrandingKeySocialLinkedIn: "",
	db.BrandingKeySocialTwitter:  "",
	db.BrandingKeySocialYouTube:  "",
}

// NewBrandingService creates a BrandingService instance.
func NewBrandingService(gdb *gorm.DB) *BrandingService {
	return &BrandingService{db: gdb}
}

// Get 返回全部已知键的设置，缺失的键使用默认值。
func (s *BrandingService) Get(ctx context.Context) (map[string]string, error) {
	return loadBranding(s.db.WithContext(ctx))
}

func loadBranding(tx *gorm.DB) (map[string]string, error) {
	settings := make(map[string]string, len(brandingDefaults))
	for key, value := range brandingDefaults {
		settings[key] = value
	}

	var rows []db.BrandingSetting
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, known := brandingDefaults[row.Key]; known {
			settings[row.Key] = row.Value
		}
	}
	return settings, nil
}

// Update 校验并在一个事务中写入多个设置，未知键会被拒绝。
func (s *BrandingService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, NewValidationError("settings", "没有需要更新的设置")
	}

	sanitized := make(map[string]string, len(values))
	vErr := &ValidationError{}
	for key, raw := range values {
		value := strings.TrimSpace(raw)
		if _, known := brandingDefaults[key]; !known {
			vErr.Add(key, "未知的设置项")
			continue
		}
		validateBrandingValue(vErr, key, value)
		sanitized[key] = value
	}
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	var settings map[string]string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range sanitized {
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		var err error
		settings, err = loadBranding(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update branding: %w", err)
	}
	return settings, nil
}

func validateBrandingValue(vErr *ValidationError, key, value string) {
	if value == "" {
		if key == db.BrandingKeySiteName {
			vErr.Add(key, "站点名称不能为空")
		}
		return
	}

	switch key {
	case db.BrandingKeyPrimaryColor, db.BrandingKeySecondaryColor:
		if !hexColorPattern.MatchString(value) {
			vErr.Add(key, "颜色必须是 #RGB 或 #RRGGBB 格式")
		}
	case db.BrandingKeyContactEmail:
		if !isEmail(value) {
			vErr.Add(key, "邮箱格式不正确")
		}
	case db.BrandingKeyLogoURL, db.BrandingKeyLogoDarkURL, db.BrandingKeyFaviconURL,
		db.BrandingKeySocialLinkedIn, db.BrandingKeySocialTwitter, db.BrandingKeySocialYouTube:
		if !isLink(value) {
			vErr.Add(key, "链接格式不正确")
		}
	}
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.BrandingSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
