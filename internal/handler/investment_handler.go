package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type investmentAreaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	AreaType    *string `json:"area_type"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (r investmentAreaRequest) input() service.InvestmentAreaInput {
	return service.InvestmentAreaInput{
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		AreaType:    r.AreaType,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
	}
}

// ListInvestmentAreas 可通过 type=pillar|sector 过滤
func (a *API) ListInvestmentAreas(c *gin.Context) {
	areas, err := a.investments.List(c.Request.Context(), strings.TrimSpace(c.Query("type")), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取投资领域失败")
		return
	}
	respondOK(c, areas)
}

func (a *API) GetInvestmentArea(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的投资领域ID")
	if !ok {
		return
	}

	area, err := a.investments.Get(c.Request.Context(), id, !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取投资领域失败")
		return
	}
	respondOK(c, area)
}

func (a *API) CreateInvestmentArea(c *gin.Context) {
	var req investmentAreaRequest
	if !bindJSON(c, &req, "投资领域数据格式不正确") {
		return
	}

	area, err := a.investments.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建投资领域失败")
		return
	}
	respondCreated(c, "投资领域创建成功", area)
}

func (a *API) UpdateInvestmentArea(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的投资领域ID")
	if !ok {
		return
	}

	var req investmentAreaRequest
	if !bindJSON(c, &req, "投资领域数据格式不正确") {
		return
	}

	area, err := a.investments.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新投资领域失败")
		return
	}
	respondMessage(c, "投资领域更新成功", area)
}

func (a *API) DeleteInvestmentArea(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的投资领域ID")
	if !ok {
		return
	}

	if err := a.investments.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除投资领域失败")
		return
	}
	respondMessage(c, "投资领域删除成功", nil)
}
