package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type sectionRequest struct {
	PageSlug    *string         `json:"page_slug"`
	SectionKey  *string         `json:"section_key"`
	ContentType *string         `json:"content_type"`
	Title       *string         `json:"title"`
	Content     json.RawMessage `json:"content"`
	SortOrder   *int            `json:"sort_order"`
	IsActive    *bool           `json:"is_active"`
}

func (r sectionRequest) input() service.PageContentInput {
	return service.PageContentInput{
		PageSlug:    r.PageSlug,
		SectionKey:  r.SectionKey,
		ContentType: r.ContentType,
		Title:       r.Title,
		Content:     r.Content,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
	}
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// ListPageSections 返回页面的全部区块，匿名访问只包含启用的区块。
func (a *API) ListPageSections(c *gin.Context) {
	sections, err := a.sections.ListByPage(c.Request.Context(), c.Param("pageSlug"), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取页面区块失败")
		return
	}
	respondOK(c, sections)
}

// GetPageSection 返回单个区块
func (a *API) GetPageSection(c *gin.Context) {
	section, err := a.sections.GetSection(c.Request.Context(), c.Param("pageSlug"), c.Param("sectionKey"), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取页面区块失败")
		return
	}
	respondOK(c, section)
}

// CreatePageSection 创建区块
func (a *API) CreatePageSection(c *gin.Context) {
	var req sectionRequest
	if !bindJSON(c, &req, "区块数据格式不正确") {
		return
	}

	section, err := a.sections.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建页面区块失败")
		return
	}
	respondCreated(c, "区块创建成功", section)
}

// UpdatePageSection 部分更新区块，路径参数 ref 为区块 ID。
func (a *API) UpdatePageSection(c *gin.Context) {
	id, ok := pathID(c, "ref", "无效的区块ID")
	if !ok {
		return
	}

	var req sectionRequest
	if !bindJSON(c, &req, "区块数据格式不正确") {
		return
	}

	section, err := a.sections.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新页面区块失败")
		return
	}
	respondMessage(c, "区块更新成功", section)
}

// ReorderPageSections 按 ids 顺序重排页面区块，路径参数 ref 为页面 slug。
func (a *API) ReorderPageSections(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数格式不正确") {
		return
	}

	pageSlug := c.Param("ref")
	if err := a.sections.Reorder(c.Request.Context(), pageSlug, req.IDs); err != nil {
		a.fail(c, err, "区块排序失败")
		return
	}

	sections, err := a.sections.ListByPage(c.Request.Context(), pageSlug, false)
	if err != nil {
		a.fail(c, err, "获取页面区块失败")
		return
	}
	respondMessage(c, "排序已更新", sections)
}

// DeletePageSection 删除区块
func (a *API) DeletePageSection(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的区块ID")
	if !ok {
		return
	}

	if err := a.sections.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除页面区块失败")
		return
	}
	respondMessage(c, "区块删除成功", nil)
}
