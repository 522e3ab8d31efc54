package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInUse       = errors.New("category has posts")
	ErrCategoryNameMissing = errors.New("category name is required")
	ErrCategoryExists      = errors.New("category already exists")
)

const categoryWithCount = "blog_categories.*, (SELECT COUNT(*) FROM blog_posts WHERE blog_posts.category_id = blog_categories.id) AS post_count"

// CategoryService handles blog category CRUD.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput 分类字段，nil 表示不修改。
type CategoryInput struct {
	Name        *string
	Description *string
	SortOrder   *int
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns all categories with their post counts.
func (s *CategoryService) List(ctx context.Context) ([]db.BlogCategory, error) {
	var categories []db.BlogCategory
	err := s.db.WithContext(ctx).
		Model(&db.BlogCategory{}).
		Select(categoryWithCount).
		Order("sort_order asc").
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Get returns a category with its post count.
func (s *CategoryService) Get(ctx context.Context, id uint) (*db.BlogCategory, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *CategoryService) get(tx *gorm.DB, id uint) (*db.BlogCategory, error) {
	var category db.BlogCategory
	err := tx.Model(&db.BlogCategory{}).
		Select(categoryWithCount).
		Where("blog_categories.id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &category, nil
}

// Create inserts a category; the slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*db.BlogCategory, error) {
	name := trimmed(input.Name)
	if name == "" {
		return nil, ErrCategoryNameMissing
	}

	category := db.BlogCategory{
		Name:        name,
		Description: trimmed(input.Description),
		SortOrder:   valueOr(input.SortOrder, 0),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if exists, err := recordExists(tx, &db.BlogCategory{}, "LOWER(name) = ?", strings.ToLower(name)); err != nil {
			return err
		} else if exists {
			return ErrCategoryExists
		}

		slug, err := uniqueSlug(tx, &db.BlogCategory{}, name, "category", 0)
		if err != nil {
			return err
		}
		category.Slug = slug

		if err := tx.Create(&category).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrCategoryExists
			}
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update applies a partial update; renaming regenerates the slug.
func (s *CategoryService) Update(ctx context.Context, id uint, input CategoryInput) (*db.BlogCategory, error) {
	var updated *db.BlogCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category db.BlogCategory
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}

		ch := changes{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrCategoryNameMissing
			}
			if name != category.Name {
				exists, err := recordExists(tx, &db.BlogCategory{}, "LOWER(name) = ? AND id <> ?", strings.ToLower(name), id)
				if err != nil {
					return err
				}
				if exists {
					return ErrCategoryExists
				}
				slug, err := uniqueSlug(tx, &db.BlogCategory{}, name, "category", id)
				if err != nil {
					return err
				}
				ch["name"] = name
				ch["slug"] = slug
			}
		}
		ch.str("description", input.Description)
		setField(ch, "sort_order", input.SortOrder)

		if !ch.empty() {
			if err := tx.Model(&category).Updates(map[string]interface{}(ch)).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrCategoryExists
				}
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

// Delete removes a category that no post references.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category db.BlogCategory
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}

		var count int64
		if err := tx.Model(&db.BlogPost{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		return tx.Delete(&category).Error
	})
}
