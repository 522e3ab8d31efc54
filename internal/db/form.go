package db

import (
	"time"

	"gorm.io/datatypes"
)

// 表单字段类型
const (
	FieldTypeText     = "text"
	FieldTypeEmail    = "email"
	FieldTypePhone    = "phone"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeRadio    = "radio"
	FieldTypeCheckbox = "checkbox"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
)

// FieldTypes 列出所有支持的字段类型。
var FieldTypes = []string{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeCheckbox,
	FieldTypeNumber,
	FieldTypeDate,
}

// Form 动态表单定义
type Form struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Name              string      `gorm:"size:200;not null" json:"name"`
	Slug              string      `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description       string      `gorm:"type:text" json:"description"`
	SubmitLabel       string      `gorm:"size:100" json:"submit_label"`
	SuccessMessage    string      `gorm:"type:text" json:"success_message"`
	NotificationEmail string      `gorm:"size:255" json:"notification_email"`
	IsActive          bool        `gorm:"not null" json:"is_active"`
	Fields            []FormField `gorm:"constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	FieldCount        int64       `gorm:"->;-:migration" json:"field_count"`
	SubmissionCount   int64       `gorm:"->;-:migration" json:"submission_count"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// FormField 表单字段，Options 为 select/radio/checkbox 的可选值列表
type FormField struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	FormID      uint                        `gorm:"not null;uniqueIndex:idx_form_field_name" json:"form_id"`
	Name        string                      `gorm:"size:100;not null;uniqueIndex:idx_form_field_name" json:"name"`
	Label       string                      `gorm:"size:200;not null" json:"label"`
	FieldType   string                      `gorm:"size:30;not null" json:"field_type"`
	Placeholder string                      `gorm:"size:255" json:"placeholder"`
	HelpText    string                      `gorm:"type:text" json:"help_text"`
	IsRequired  bool                        `gorm:"not null" json:"is_required"`
	Options     datatypes.JSONSlice[string] `json:"options"`
	MinLength   *int                        `json:"min_length"`
	MaxLength   *int                        `json:"max_length"`
	SortOrder   int                         `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// FormSubmission 表单提交记录
type FormSubmission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FormID    uint           `gorm:"not null;index" json:"form_id"`
	Data      datatypes.JSON `json:"data"`
	IPAddress string         `gorm:"size:64" json:"ip_address"`
	UserAgent string         `gorm:"size:500" json:"user_agent"`
	IsRead    bool           `gorm:"not null" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
