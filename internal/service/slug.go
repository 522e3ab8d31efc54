package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const maxSlugLength = 160

// Slugify 将标题转换为 URL 友好的 slug：去掉重音符号、转小写，
// 非字母数字的连续字符折叠为单个连字符。相同输入总是得到相同输出。
func Slugify(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	return truncateSlug(b.String(), maxSlugLength)
}

func truncateSlug(slug string, limit int) string {
	runes := []rune(slug)
	if len(runes) <= limit {
		return slug
	}
	return strings.Trim(string(runes[:limit]), "-")
}

// uniqueSlug 以 base 为基础寻找未被占用的 slug，冲突时依次追加 -2、-3……
// excludeID 用于更新场景，忽略记录自身。
func uniqueSlug(tx *gorm.DB, model interface{}, base, fallback string, excludeID uint) (string, error) {
	base = Slugify(base)
	if base == "" {
		base = fallback
	}

	for attempt := 1; attempt <= 1000; attempt++ {
		candidate := base
		if attempt > 1 {
			suffix := fmt.Sprintf("-%d", attempt)
			candidate = truncateSlug(base, maxSlugLength-len(suffix)) + suffix
		}

		taken, err := slugTaken(tx, model, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugTaken
}

func slugTaken(tx *gorm.DB, model interface{}, slug string, excludeID uint) (bool, error) {
	query := tx.Model(model).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
