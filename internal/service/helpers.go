package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// changes 收集部分更新时实际出现的列，未出现的列保持原值。
type changes map[string]interface{}

func (c changes) str(column string, value *string) {
	if value != nil {
		c[column] = strings.TrimSpace(*value)
	}
}

func (c changes) raw(column string, value *string) {
	if value != nil {
		c[column] = *value
	}
}

func setField[T any](c changes, column string, value *T) {
	if value != nil {
		c[column] = *value
	}
}

func (c changes) empty() bool {
	return len(c) == 0
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

const maxPerPage = 100

func newPagination(page, limit, fallback int) Pagination {
	return Pagination{Page: normalizePage(page), Limit: normalizePerPage(limit, fallback)}
}

func (p *Pagination) setTotal(total int64) {
	p.Total = total
	p.TotalPages = calculateTotalPages(total, p.Limit)
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

var (
	validate = validator.New()

	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func isEmail(value string) bool {
	return validate.Var(value, "required,email") == nil
}

// isLink 接受绝对 http(s) 地址或站内路径。
func isLink(value string) bool {
	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return true
	}
	if strings.HasPrefix(value, "mailto:") {
		return isEmail(strings.TrimPrefix(value, "mailto:"))
	}
	return validate.Var(value, "required,url,startswith=http") == nil
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
