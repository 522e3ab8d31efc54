package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

func (r categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Description: r.Description, SortOrder: r.SortOrder}
}

// ListCategories 获取分类列表及文章数量
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.categories.List(c.Request.Context())
	if err != nil {
		a.fail(c, err, "获取分类列表失败")
		return
	}
	respondOK(c, categories)
}

// CreateCategory 创建新分类
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, "分类名称不能为空") {
		return
	}

	category, err := a.categories.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建分类失败")
		return
	}
	respondCreated(c, "分类创建成功", category)
}

// UpdateCategory 更新分类，改名时重新生成 slug
func (a *API) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的分类ID")
	if !ok {
		return
	}

	var req categoryRequest
	if !bindJSON(c, &req, "分类数据格式不正确") {
		return
	}

	category, err := a.categories.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新分类失败")
		return
	}
	respondMessage(c, "分类更新成功", category)
}

// DeleteCategory 删除分类，仍有文章引用时拒绝
func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的分类ID")
	if !ok {
		return
	}

	if err := a.categories.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除分类失败")
		return
	}
	respondMessage(c, "分类删除成功", nil)
}
