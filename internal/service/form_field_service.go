package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrFieldNotFound = errors.New("form field not found")
	ErrFieldExists   = errors.New("form field name already exists")
	ErrFieldOrder    = errors.New("field ids do not match the form")
)

// FormFieldService 单独维护表单字段。
type FormFieldService struct {
	db *gorm.DB
}

// NewFormFieldService creates a FormFieldService instance.
func NewFormFieldService(gdb *gorm.DB) *FormFieldService {
	return &FormFieldService{db: gdb}
}

// List returns the fields of a form in order.
func (s *FormFieldService) List(ctx context.Context, formID uint) ([]db.FormField, error) {
	if exists, err := recordExists(s.db.WithContext(ctx), &db.Form{}, "id = ?", formID); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrFormNotFound
	}

	var fields []db.FormField
	if err := orderFields(s.db.WithContext(ctx).Where("form_id = ?", formID)).Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

// Get returns one field.
func (s *FormFieldService) Get(ctx context.Context, id uint) (*db.FormField, error) {
	var field db.FormField
	if err := s.db.WithContext(ctx).First(&field, id).Error; err != nil {
		return nil, notFound(err, ErrFieldNotFound)
	}
	return &field, nil
}

// Create 追加一个字段，未指定顺序时排在最后。
func (s *FormFieldService) Create(ctx context.Context, formID uint, input FieldInput) (*db.FormField, error) {
	vErr := &ValidationError{}
	field := applyFieldInput(db.FormField{}, input, "", vErr)
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if exists, err := recordExists(tx, &db.Form{}, "id = ?", formID); err != nil {
			return err
		} else if !exists {
			return ErrFormNotFound
		}
		if exists, err := recordExists(tx, &db.FormField{}, "form_id = ? AND name = ?", formID, field.Name); err != nil {
			return err
		} else if exists {
			return ErrFieldExists
		}

		if input.SortOrder == nil {
			var maxOrder int
			if err := tx.Model(&db.FormField{}).
				Where("form_id = ?", formID).
				Select("COALESCE(MAX(sort_order), -1)").
				Scan(&maxOrder).Error; err != nil {
				return err
			}
			field.SortOrder = maxOrder + 1
		}

		field.FormID = formID
		if err := tx.Create(&field).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrFieldExists
			}
			return fmt.Errorf("create form field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// Update 部分更新字段，并按合并后的结果重新校验。
func (s *FormFieldService) Update(ctx context.Context, id uint, input FieldInput) (*db.FormField, error) {
	var field db.FormField
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&field, id).Error; err != nil {
			return notFound(err, ErrFieldNotFound)
		}

		vErr := &ValidationError{}
		merged := applyFieldInput(field, input, "", vErr)
		if err := vErr.OrNil(); err != nil {
			return err
		}

		if merged.Name != field.Name {
			exists, err := recordExists(tx, &db.FormField{}, "form_id = ? AND name = ? AND id <> ?", field.FormID, merged.Name, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrFieldExists
			}
		}

		// Select 列出全部可编辑列，使 nil 指针与空切片也能写回
		err := tx.Model(&field).
			Select("name", "label", "field_type", "placeholder", "help_text", "is_required", "options", "min_length", "max_length", "sort_order").
			Updates(&merged).Error
		if err != nil {
			if isDuplicateKey(err) {
				return ErrFieldExists
			}
			return err
		}
		return tx.First(&field, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// Delete removes a field; existing submissions keep their stored values.
func (s *FormFieldService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.FormField{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFieldNotFound
	}
	return nil
}

// Reorder 在事务中按 fieldIDs 的顺序重排，所有 id 必须属于该表单。
func (s *FormFieldService) Reorder(ctx context.Context, formID uint, fieldIDs []uint) error {
	if err := validateOrder(fieldIDs); err != nil {
		return ErrFieldOrder
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if exists, err := recordExists(tx, &db.Form{}, "id = ?", formID); err != nil {
			return err
		} else if !exists {
			return ErrFormNotFound
		}

		var count int64
		if err := tx.Model(&db.FormField{}).
			Where("form_id = ? AND id IN ?", formID, fieldIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(fieldIDs)) {
			return ErrFieldOrder
		}

		for idx, id := range fieldIDs {
			if err := tx.Model(&db.FormField{}).Where("id = ?", id).Update("sort_order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
