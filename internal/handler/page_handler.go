package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type pageRequest struct {
	Slug            *string `json:"slug"`
	Title           *string `json:"title"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	IsPublished     *bool   `json:"is_published"`
	SortOrder       *int    `json:"sort_order"`
}

func (r pageRequest) input() service.PageInput {
	return service.PageInput{
		Slug:            r.Slug,
		Title:           r.Title,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		IsPublished:     r.IsPublished,
		SortOrder:       r.SortOrder,
	}
}

// ListPages 返回页面列表，匿名访问仅包含已发布页面。
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List(c.Request.Context(), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取页面列表失败")
		return
	}
	respondOK(c, pages)
}

// GetPage 根据 slug 返回页面及其区块。
func (a *API) GetPage(c *gin.Context) {
	anonymous := !isAuthenticated(c)
	page, err := a.pages.GetBySlug(c.Request.Context(), c.Param("slug"), anonymous)
	if err != nil {
		a.fail(c, err, "获取页面失败")
		return
	}
	if anonymous && !page.IsPublished {
		a.fail(c, service.ErrPageNotFound, "获取页面失败")
		return
	}
	respondOK(c, page)
}

// CreatePage 创建页面
func (a *API) CreatePage(c *gin.Context) {
	var req pageRequest
	if !bindJSON(c, &req, "页面数据格式不正确") {
		return
	}

	page, err := a.pages.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建页面失败")
		return
	}
	respondCreated(c, "页面创建成功", page)
}

// UpdatePage 部分更新页面
func (a *API) UpdatePage(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的页面ID")
	if !ok {
		return
	}

	var req pageRequest
	if !bindJSON(c, &req, "页面数据格式不正确") {
		return
	}

	page, err := a.pages.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新页面失败")
		return
	}
	respondMessage(c, "页面更新成功", page)
}

// DeletePage 删除页面及其区块
func (a *API) DeletePage(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的页面ID")
	if !ok {
		return
	}

	if err := a.pages.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除页面失败")
		return
	}
	respondMessage(c, "页面删除成功", nil)
}
