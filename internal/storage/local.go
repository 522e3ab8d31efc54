package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrFileTypeInvalid = errors.New("file type is not allowed")
	ErrFileEmpty       = errors.New("file is empty")
)

// AllowedTypes 列出允许上传的 MIME 类型及其规范扩展名。
var AllowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

const (
	thumbnailSize   = 400
	thumbnailPrefix = "thumb-"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// StoredFile 描述一次成功写盘的结果。
type StoredFile struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	URL          string
	ThumbnailURL string
	Width        int
	Height       int
}

// LocalStore 将上传文件保存在本地目录，并通过 URLPath 对外提供静态访问。
type LocalStore struct {
	Dir      string
	URLPath  string
	MaxBytes int64
	now      func() time.Time
}

// NewLocalStore 创建本地存储。
func NewLocalStore(dir, urlPath string, maxBytes int64) *LocalStore {
	return &LocalStore{
		Dir:      dir,
		URLPath:  "/" + strings.Trim(urlPath, "/"),
		MaxBytes: maxBytes,
		now:      time.Now,
	}
}

// Save 校验并保存上传的文件；栅格图片会额外记录尺寸并生成 JPEG 缩略图。
func (s *LocalStore) Save(header *multipart.FileHeader) (*StoredFile, error) {
	if header == nil || header.Size == 0 {
		return nil, ErrFileEmpty
	}
	if s.MaxBytes > 0 && header.Size > s.MaxBytes {
		return nil, ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mimeType, err := detectType(src)
	if err != nil {
		return nil, err
	}
	ext, ok := AllowedTypes[mimeType]
	if !ok {
		return nil, ErrFileTypeInvalid
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)
	target := filepath.Join(s.Dir, filename)

	dst, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(target); removeErr != nil && !os.IsNotExist(removeErr) {
			err = errors.Join(err, removeErr)
		}
		return nil, fmt.Errorf("write file: %w", err)
	}

	stored := &StoredFile{
		Filename:     filename,
		OriginalName: SanitizeName(header.Filename),
		MimeType:     mimeType,
		Size:         written,
		URL:          s.URLFor(filename),
	}

	if isRaster(mimeType) {
		if cfg, err := decodeConfig(target); err == nil {
			stored.Width = cfg.Width
			stored.Height = cfg.Height
		}
		if thumb, err := s.writeThumbnail(target, filename); err == nil {
			stored.ThumbnailURL = s.URLFor(thumb)
		}
	}

	return stored, nil
}

// Remove 删除文件及其缩略图，文件不存在时不报错。
func (s *LocalStore) Remove(filename string) error {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil
	}
	for _, candidate := range []string{name, thumbnailName(name)} {
		if err := os.Remove(filepath.Join(s.Dir, candidate)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// URLFor 返回文件的公开访问路径。
func (s *LocalStore) URLFor(filename string) string {
	return path.Join(s.URLPath, filename)
}

// SanitizeName 去掉原始文件名中的路径与不安全字符。
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	safe := unsafeNameChars.ReplaceAllString(base, "_")
	if safe == "" || safe == "." {
		return "file"
	}
	return safe
}

func (s *LocalStore) writeThumbnail(source, filename string) (string, error) {
	img, err := imaging.Open(source, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	name := thumbnailName(filename)
	if err := imaging.Save(thumb, filepath.Join(s.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return name, nil
}

func thumbnailName(filename string) string {
	return thumbnailPrefix + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

func detectType(src multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	for candidate := mtype; candidate != nil; candidate = candidate.Parent() {
		base, _, _ := strings.Cut(candidate.String(), ";")
		if _, ok := AllowedTypes[base]; ok {
			return base, nil
		}
	}
	return "", ErrFileTypeInvalid
}

func isRaster(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}
