package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitecms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrPostTitleMissing   = errors.New("post title is required")
	ErrPostContentMissing = errors.New("post content is required")
	ErrPostStatusInvalid  = errors.New("post status is invalid")
)

const excerptLength = 200

// BlogService wraps blog post related database operations.
type BlogService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Category      string
	Status        string
	Search        string
	PublishedOnly bool
	Page          int
	Limit         int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.BlogPost
	Pagination Pagination
}

// PostDetail 是文章详情，附带渲染后的 HTML。
type PostDetail struct {
	db.BlogPost
	ContentHTML string `json:"content_html"`
}

// PostInput represents fields accepted when creating or updating a post.
// CategoryID 为 0 时表示清除分类。
type PostInput struct {
	Title           *string
	Content         *string
	Excerpt         *string
	FeaturedImage   *string
	Author          *string
	CategoryID      *uint
	Status          *string
	PublishedAt     *time.Time
	MetaTitle       *string
	MetaDescription *string
}

// NewBlogService creates a BlogService instance.
func NewBlogService(gdb *gorm.DB) *BlogService {
	return &BlogService{db: gdb, now: time.Now}
}

// List provides paginated posts, newest first.
func (s *BlogService) List(ctx context.Context, filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Pagination: newPagination(filter.Page, filter.Limit, 10)}

	query := s.applyFilters(s.db.WithContext(ctx).Model(&db.BlogPost{}), filter)
	if err := query.Count(&result.Pagination.Total).Error; err != nil {
		return nil, err
	}
	result.Pagination.setTotal(result.Pagination.Total)

	err := s.applyFilters(s.db.WithContext(ctx).Model(&db.BlogPost{}), filter).
		Preload("Category").
		Order("COALESCE(published_at, created_at) desc").
		Order("id desc").
		Offset(result.Pagination.offset()).
		Limit(result.Pagination.Limit).
		Find(&result.Posts).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BlogService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.PublishedOnly {
		query = query.Where("status = ?", db.PostStatusPublished)
	} else if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category_id IN (?)",
			s.db.Model(&db.BlogCategory{}).Select("id").Where("slug = ?", category))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?)", pattern, pattern, pattern)
	}
	return query
}

// Latest returns the most recent published posts.
func (s *BlogService) Latest(ctx context.Context, limit int) ([]db.BlogPost, error) {
	var posts []db.BlogPost
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("status = ?", db.PostStatusPublished).
		Order("COALESCE(published_at, created_at) desc").
		Order("id desc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a post by id with its category.
func (s *BlogService) Get(ctx context.Context, id uint) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.WithContext(ctx).Preload("Category").First(&post, id).Error; err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &post, nil
}

// GetBySlug 返回文章详情；publishedOnly 时草稿视为不存在，countView 时浏览数加一。
func (s *BlogService) GetBySlug(ctx context.Context, slug string, publishedOnly, countView bool) (*PostDetail, error) {
	query := s.db.WithContext(ctx).Preload("Category").Where("slug = ?", strings.TrimSpace(slug))
	if publishedOnly {
		query = query.Where("status = ?", db.PostStatusPublished)
	}

	var post db.BlogPost
	if err := query.First(&post).Error; err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}

	if countView && post.IsPublished() {
		if err := s.db.WithContext(ctx).Model(&db.BlogPost{}).
			Where("id = ?", post.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
			return nil, err
		}
		post.ViewCount++
	}

	rendered, err := RenderMarkdown(post.Content)
	if err != nil {
		return nil, fmt.Errorf("render post %d: %w", post.ID, err)
	}
	return &PostDetail{BlogPost: post, ContentHTML: rendered}, nil
}

// Create persists a post; slug, reading time and excerpt are derived from the content.
func (s *BlogService) Create(ctx context.Context, input PostInput) (*db.BlogPost, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, ErrPostTitleMissing
	}
	if input.Content == nil || strings.TrimSpace(*input.Content) == "" {
		return nil, ErrPostContentMissing
	}

	status := strings.ToLower(valueOr(input.Status, db.PostStatusDraft))
	if !validPostStatus(status) {
		return nil, ErrPostStatusInvalid
	}

	post := db.BlogPost{
		Title:           title,
		Content:         *input.Content,
		Excerpt:         trimmed(input.Excerpt),
		FeaturedImage:   trimmed(input.FeaturedImage),
		Author:          trimmed(input.Author),
		Status:          status,
		PublishedAt:     input.PublishedAt,
		ReadingTime:     CalculateReadingTime(*input.Content),
		MetaTitle:       trimmed(input.MetaTitle),
		MetaDescription: trimmed(input.MetaDescription),
	}
	if post.Excerpt == "" {
		post.Excerpt = excerptFrom(post.Content, excerptLength)
	}
	if post.IsPublished() && post.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := resolveCategory(tx, input.CategoryID)
		if err != nil {
			return err
		}
		post.CategoryID = categoryID

		slug, err := uniqueSlug(tx, &db.BlogPost{}, title, "post", 0)
		if err != nil {
			return err
		}
		post.Slug = slug

		if err := tx.Create(&post).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSlugTaken
			}
			return fmt.Errorf("create post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, post.ID)
}

// Update applies a partial update to an existing post.
func (s *BlogService) Update(ctx context.Context, id uint, input PostInput) (*db.BlogPost, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post db.BlogPost
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err, ErrPostNotFound)
		}

		ch := changes{}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrPostTitleMissing
			}
			if title != post.Title {
				slug, err := uniqueSlug(tx, &db.BlogPost{}, title, "post", post.ID)
				if err != nil {
					return err
				}
				ch["title"] = title
				ch["slug"] = slug
			}
		}
		if input.Content != nil {
			if strings.TrimSpace(*input.Content) == "" {
				return ErrPostContentMissing
			}
			ch.raw("content", input.Content)
			ch["reading_time"] = CalculateReadingTime(*input.Content)
		}
		if input.Status != nil {
			status := strings.ToLower(strings.TrimSpace(*input.Status))
			if !validPostStatus(status) {
				return ErrPostStatusInvalid
			}
			ch["status"] = status
			if status == db.PostStatusPublished && post.PublishedAt == nil && input.PublishedAt == nil {
				ch["published_at"] = s.now()
			}
		}
		if input.PublishedAt != nil {
			ch["published_at"] = *input.PublishedAt
		}
		if input.CategoryID != nil {
			categoryID, err := resolveCategory(tx, input.CategoryID)
			if err != nil {
				return err
			}
			ch["category_id"] = categoryID
		}
		ch.str("excerpt", input.Excerpt)
		ch.str("featured_image", input.FeaturedImage)
		ch.str("author", input.Author)
		ch.str("meta_title", input.MetaTitle)
		ch.str("meta_description", input.MetaDescription)

		if ch.empty() {
			return nil
		}
		if err := tx.Model(&post).Updates(map[string]interface{}(ch)).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSlugTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a post by id.
func (s *BlogService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// resolveCategory 校验分类存在；0 表示不关联分类。
func resolveCategory(tx *gorm.DB, id *uint) (*uint, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	exists, err := recordExists(tx, &db.BlogCategory{}, "id = ?", *id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewValidationError("category_id", "分类不存在")
	}
	value := *id
	return &value, nil
}

func validPostStatus(status string) bool {
	return status == db.PostStatusDraft || status == db.PostStatusPublished
}
