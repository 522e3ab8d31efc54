package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrMediaNotFound = errors.New("media not found")
	ErrMediaInUse    = errors.New("media is referenced by content")
	// ErrMediaCleanup 表示记录已删除但磁盘文件清理失败。
	ErrMediaCleanup = errors.New("media files could not be removed")
)

// 媒体类型过滤
const (
	MediaTypeImage    = "image"
	MediaTypeDocument = "document"
)

// FileRemover 删除已保存的上传文件。
type FileRemover interface {
	Remove(filename string) error
}

// MediaService 管理媒体库记录。
type MediaService struct {
	db    *gorm.DB
	files FileRemover
}

// MediaFilter 媒体列表过滤条件
type MediaFilter struct {
	Type   string
	Folder string
	Search string
	Page   int
	Limit  int
}

// MediaListResult 分页结果
type MediaListResult struct {
	Items      []db.Media
	Pagination Pagination
}

// MediaMeta 可编辑的媒体描述信息。
type MediaMeta struct {
	AltText *string
	Caption *string
	Folder  *string
}

// NewMediaService creates a MediaService; files may be nil when nothing is stored on disk.
func NewMediaService(gdb *gorm.DB, files FileRemover) *MediaService {
	return &MediaService{db: gdb, files: files}
}

// Create 记录一个已经写盘的文件，入库失败时删除该文件。
func (s *MediaService) Create(ctx context.Context, stored *storage.StoredFile, meta MediaMeta, uploadedBy *uint) (*db.Media, error) {
	media := db.Media{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		URL:          stored.URL,
		ThumbnailURL: stored.ThumbnailURL,
		Width:        stored.Width,
		Height:       stored.Height,
		AltText:      trimmed(meta.AltText),
		Caption:      trimmed(meta.Caption),
		Folder:       normalizeFolder(trimmed(meta.Folder)),
		UploadedBy:   uploadedBy,
	}

	if err := s.db.WithContext(ctx).Create(&media).Error; err != nil {
		err = fmt.Errorf("create media: %w", err)
		if s.files != nil {
			if removeErr := s.files.Remove(stored.Filename); removeErr != nil {
				err = errors.Join(err, fmt.Errorf("remove %s: %w", stored.Filename, removeErr))
			}
		}
		return nil, err
	}
	return &media, nil
}

// List 返回分页的媒体列表，最新上传的在前。
func (s *MediaService) List(ctx context.Context, filter MediaFilter) (*MediaListResult, error) {
	result := &MediaListResult{Pagination: newPagination(filter.Page, filter.Limit, 24)}

	if err := s.filtered(ctx, filter).Count(&result.Pagination.Total).Error; err != nil {
		return nil, err
	}
	result.Pagination.setTotal(result.Pagination.Total)

	err := s.filtered(ctx, filter).Order("created_at desc").
		Order("id desc").
		Offset(result.Pagination.offset()).
		Limit(result.Pagination.Limit).
		Find(&result.Items).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *MediaService) filtered(ctx context.Context, filter MediaFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&db.Media{})
	switch strings.ToLower(strings.TrimSpace(filter.Type)) {
	case MediaTypeImage:
		query = query.Where("mime_type LIKE ?", "image/%")
	case MediaTypeDocument:
		query = query.Where("mime_type NOT LIKE ?", "image/%")
	}
	if folder := strings.TrimSpace(filter.Folder); folder != "" {
		query = query.Where("folder = ?", normalizeFolder(folder))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("(LOWER(original_name) LIKE ? OR LOWER(alt_text) LIKE ? OR LOWER(caption) LIKE ?)", pattern, pattern, pattern)
	}

	return query
}

// Get returns one media record.
func (s *MediaService) Get(ctx context.Context, id uint) (*db.Media, error) {
	var media db.Media
	if err := s.db.WithContext(ctx).First(&media, id).Error; err != nil {
		return nil, notFound(err, ErrMediaNotFound)
	}
	return &media, nil
}

// Update 修改替代文本、说明与目录。
func (s *MediaService) Update(ctx context.Context, id uint, meta MediaMeta) (*db.Media, error) {
	var media db.Media
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&media, id).Error; err != nil {
			return notFound(err, ErrMediaNotFound)
		}

		ch := changes{}
		ch.str("alt_text", meta.AltText)
		ch.str("caption", meta.Caption)
		if meta.Folder != nil {
			ch["folder"] = normalizeFolder(strings.TrimSpace(*meta.Folder))
		}
		if ch.empty() {
			return nil
		}
		if err := tx.Model(&media).Updates(map[string]interface{}(ch)).Error; err != nil {
			return err
		}
		return tx.First(&media, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// Delete 删除媒体记录及文件。仍被引用且未强制删除时返回引用列表与 ErrMediaInUse。
func (s *MediaService) Delete(ctx context.Context, id uint, force bool) ([]MediaUsage, error) {
	var (
		media  db.Media
		usages []MediaUsage
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&media, id).Error; err != nil {
			return notFound(err, ErrMediaNotFound)
		}

		var err error
		usages, err = findUsages(tx, media)
		if err != nil {
			return err
		}
		if len(usages) > 0 && !force {
			return ErrMediaInUse
		}
		return tx.Delete(&media).Error
	})
	if errors.Is(err, ErrMediaInUse) {
		return usages, err
	}
	if err != nil {
		return nil, err
	}
	return usages, s.removeFiles(media)
}

func (s *MediaService) removeFiles(media db.Media) error {
	if s.files == nil {
		return nil
	}
	if err := s.files.Remove(media.Filename); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMediaCleanup, media.Filename, err)
	}
	return nil
}

// normalizeFolder 目录名统一为小写 slug，空值表示根目录。
func normalizeFolder(folder string) string {
	if folder == "" {
		return ""
	}
	return Slugify(filepath.ToSlash(folder))
}
