package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrFormNotFound       = errors.New("form not found")
	ErrFormNameMissing    = errors.New("form name is required")
	ErrSubmissionNotFound = errors.New("submission not found")
)

const (
	defaultSubmitLabel    = "Submit"
	defaultSuccessMessage = "Thank you, we will be in touch shortly."
	formWithCounts        = "forms.*, " +
		"(SELECT COUNT(*) FROM form_fields WHERE form_fields.form_id = forms.id) AS field_count, " +
		"(SELECT COUNT(*) FROM form_submissions WHERE form_submissions.form_id = forms.id) AS submission_count"
)

// FormService 管理动态表单及其提交。
type FormService struct {
	db *gorm.DB
}

// FormInput nil 字段保持原值；Fields 非 nil 时整体替换字段列表。
type FormInput struct {
	Name              *string
	Slug              *string
	Description       *string
	SubmitLabel       *string
	SuccessMessage    *string
	NotificationEmail *string
	IsActive          *bool
	Fields            *[]FieldInput
}

// SubmissionFilter 提交记录过滤条件
type SubmissionFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
}

// SubmissionListResult 分页结果
type SubmissionListResult struct {
	Submissions []db.FormSubmission
	Pagination  Pagination
}

// NewFormService creates a FormService instance.
func NewFormService(gdb *gorm.DB) *FormService {
	return &FormService{db: gdb}
}

// List 返回全部表单及字段数、提交数。
func (s *FormService) List(ctx context.Context) ([]db.Form, error) {
	var forms []db.Form
	err := s.db.WithContext(ctx).
		Model(&db.Form{}).
		Select(formWithCounts).
		Order("name asc").
		Find(&forms).Error
	if err != nil {
		return nil, err
	}
	return forms, nil
}

// GetBySlug 返回表单及其有序字段，activeOnly 时停用的表单视为不存在。
func (s *FormService) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*db.Form, error) {
	query := s.db.WithContext(ctx).Preload("Fields", orderFields).Where("slug = ?", strings.TrimSpace(slug))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var form db.Form
	if err := query.First(&form).Error; err != nil {
		return nil, notFound(err, ErrFormNotFound)
	}
	return &form, nil
}

// Get returns a form with its fields.
func (s *FormService) Get(ctx context.Context, id uint) (*db.Form, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *FormService) get(tx *gorm.DB, id uint) (*db.Form, error) {
	var form db.Form
	if err := tx.Preload("Fields", orderFields).First(&form, id).Error; err != nil {
		return nil, notFound(err, ErrFormNotFound)
	}
	return &form, nil
}

func orderFields(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order asc").Order("id asc")
}

// Create 在一个事务中创建表单与字段，任一字段失败都不会留下数据。
func (s *FormService) Create(ctx context.Context, input FormInput) (*db.Form, error) {
	name := trimmed(input.Name)
	if name == "" {
		return nil, ErrFormNameMissing
	}

	form := db.Form{
		Name:              name,
		Description:       trimmed(input.Description),
		SubmitLabel:       trimmed(input.SubmitLabel),
		SuccessMessage:    trimmed(input.SuccessMessage),
		NotificationEmail: strings.ToLower(trimmed(input.NotificationEmail)),
		IsActive:          valueOr(input.IsActive, true),
	}
	if form.SubmitLabel == "" {
		form.SubmitLabel = defaultSubmitLabel
	}
	if form.SuccessMessage == "" {
		form.SuccessMessage = defaultSuccessMessage
	}

	var fields []db.FormField
	vErr := &ValidationError{}
	if form.NotificationEmail != "" && !isEmail(form.NotificationEmail) {
		vErr.Add("notification_email", "邮箱格式不正确")
	}
	if input.Fields != nil {
		fields = buildFields(*input.Fields, vErr)
	}
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	var created *db.Form
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := s.resolveSlug(tx, trimmed(input.Slug), name, 0)
		if err != nil {
			return err
		}
		form.Slug = slug

		if err := tx.Omit("Fields").Create(&form).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSlugTaken
			}
			return fmt.Errorf("create form: %w", err)
		}
		if err := insertFields(tx, form.ID, fields); err != nil {
			return err
		}

		created, err = s.get(tx, form.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 部分更新表单；提供 Fields 时在同一事务内替换全部字段。
func (s *FormService) Update(ctx context.Context, id uint, input FormInput) (*db.Form, error) {
	var updated *db.Form
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form db.Form
		if err := tx.First(&form, id).Error; err != nil {
			return notFound(err, ErrFormNotFound)
		}

		vErr := &ValidationError{}
		ch := changes{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return ErrFormNameMissing
			}
			ch.str("name", input.Name)
		}
		if input.NotificationEmail != nil {
			email := strings.ToLower(strings.TrimSpace(*input.NotificationEmail))
			if email != "" && !isEmail(email) {
				vErr.Add("notification_email", "邮箱格式不正确")
			}
			ch["notification_email"] = email
		}
		var fields []db.FormField
		if input.Fields != nil {
			fields = buildFields(*input.Fields, vErr)
		}
		if err := vErr.OrNil(); err != nil {
			return err
		}

		if input.Slug != nil {
			name := form.Name
			if input.Name != nil {
				name = strings.TrimSpace(*input.Name)
			}
			slug, err := s.resolveSlug(tx, strings.TrimSpace(*input.Slug), name, form.ID)
			if err != nil {
				return err
			}
			ch["slug"] = slug
		}
		ch.str("description", input.Description)
		ch.str("submit_label", input.SubmitLabel)
		ch.str("success_message", input.SuccessMessage)
		setField(ch, "is_active", input.IsActive)

		if !ch.empty() {
			if err := tx.Model(&form).Updates(map[string]interface{}(ch)).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrSlugTaken
				}
				return err
			}
		}

		if input.Fields != nil {
			if err := tx.Where("form_id = ?", form.ID).Delete(&db.FormField{}).Error; err != nil {
				return err
			}
			if err := insertFields(tx, form.ID, fields); err != nil {
				return err
			}
		}

		var err error
		updated, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 在一个事务中删除表单、字段与提交记录。
func (s *FormService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form db.Form
		if err := tx.First(&form, id).Error; err != nil {
			return notFound(err, ErrFormNotFound)
		}
		if err := tx.Where("form_id = ?", id).Delete(&db.FormSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&db.FormField{}).Error; err != nil {
			return err
		}
		return tx.Delete(&form).Error
	})
}

// Submit 校验并保存一次公开提交，返回对应的表单以便展示成功提示。
func (s *FormService) Submit(ctx context.Context, slug string, data map[string]interface{}, ip, userAgent string) (*db.Form, *db.FormSubmission, error) {
	form, err := s.GetBySlug(ctx, slug, true)
	if err != nil {
		return nil, nil, err
	}

	clean, err := validateSubmission(form.Fields, data)
	if err != nil {
		return nil, nil, err
	}
	payload, err := json.Marshal(clean)
	if err != nil {
		return nil, nil, fmt.Errorf("encode submission: %w", err)
	}

	submission := db.FormSubmission{
		FormID:    form.ID,
		Data:      datatypes.JSON(payload),
		IPAddress: truncateRunes(strings.TrimSpace(ip), 64),
		UserAgent: truncateRunes(strings.TrimSpace(userAgent), 500),
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return nil, nil, fmt.Errorf("create submission: %w", err)
	}
	return form, &submission, nil
}

// Submissions 返回表单的提交记录，最新的在前。
func (s *FormService) Submissions(ctx context.Context, formID uint, filter SubmissionFilter) (*SubmissionListResult, error) {
	if exists, err := recordExists(s.db.WithContext(ctx), &db.Form{}, "id = ?", formID); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrFormNotFound
	}

	result := &SubmissionListResult{Pagination: newPagination(filter.Page, filter.Limit, 20)}
	query := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&db.FormSubmission{}).Where("form_id = ?", formID)
		if filter.UnreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	if err := query().Count(&result.Pagination.Total).Error; err != nil {
		return nil, err
	}
	result.Pagination.setTotal(result.Pagination.Total)

	err := query().Order("created_at desc").
		Order("id desc").
		Offset(result.Pagination.offset()).
		Limit(result.Pagination.Limit).
		Find(&result.Submissions).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkRead 将提交记录标记为已读。
func (s *FormService) MarkRead(ctx context.Context, submissionID uint) (*db.FormSubmission, error) {
	var submission db.FormSubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, submissionID).Error; err != nil {
			return notFound(err, ErrSubmissionNotFound)
		}
		if submission.IsRead {
			return nil
		}
		if err := tx.Model(&submission).Update("is_read", true).Error; err != nil {
			return err
		}
		submission.IsRead = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// DeleteSubmission removes a submission.
func (s *FormService) DeleteSubmission(ctx context.Context, submissionID uint) error {
	result := s.db.WithContext(ctx).Delete(&db.FormSubmission{}, submissionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// resolveSlug 显式指定的 slug 冲突时报错，由名称生成的 slug 自动追加序号。
func (s *FormService) resolveSlug(tx *gorm.DB, explicit, name string, excludeID uint) (string, error) {
	if explicit == "" {
		return uniqueSlug(tx, &db.Form{}, name, "form", excludeID)
	}
	slug := Slugify(explicit)
	if slug == "" {
		return "", NewValidationError("slug", "slug 不能为空")
	}
	taken, err := slugTaken(tx, &db.Form{}, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrSlugTaken
	}
	return slug, nil
}

// buildFields 校验一组字段定义，字段名在表单内必须唯一。
func buildFields(inputs []FieldInput, vErr *ValidationError) []db.FormField {
	fields := make([]db.FormField, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for idx, input := range inputs {
		prefix := fmt.Sprintf("fields[%d].", idx)
		base := db.FormField{SortOrder: idx}
		field := applyFieldInput(base, input, prefix, vErr)
		if first, dup := seen[field.Name]; dup && field.Name != "" {
			vErr.Add(prefix+"name", fmt.Sprintf("字段名与第 %d 个字段重复", first+1))
		} else {
			seen[field.Name] = idx
		}
		fields = append(fields, field)
	}
	return fields
}

func insertFields(tx *gorm.DB, formID uint, fields []db.FormField) error {
	if len(fields) == 0 {
		return nil
	}
	for i := range fields {
		fields[i].ID = 0
		fields[i].FormID = formID
	}
	if err := tx.Create(&fields).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrFieldExists
		}
		return fmt.Errorf("create form fields: %w", err)
	}
	return nil
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
