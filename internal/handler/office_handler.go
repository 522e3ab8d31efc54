package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type officeRequest struct {
	Name           *string `json:"name"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	MapURL         *string `json:"map_url"`
	IsHeadquarters *bool   `json:"is_headquarters"`
	SortOrder      *int    `json:"sort_order"`
	IsActive       *bool   `json:"is_active"`
}

func (r officeRequest) input() service.OfficeInput {
	return service.OfficeInput{
		Name:           r.Name,
		City:           r.City,
		Country:        r.Country,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
		MapURL:         r.MapURL,
		IsHeadquarters: r.IsHeadquarters,
		SortOrder:      r.SortOrder,
		IsActive:       r.IsActive,
	}
}

// ListOffices 总部优先，其余按排序值
func (a *API) ListOffices(c *gin.Context) {
	offices, err := a.offices.List(c.Request.Context(), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取办公地点失败")
		return
	}
	respondOK(c, offices)
}

func (a *API) GetOffice(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的办公地点ID")
	if !ok {
		return
	}

	office, err := a.offices.Get(c.Request.Context(), id, !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取办公地点失败")
		return
	}
	respondOK(c, office)
}

func (a *API) CreateOffice(c *gin.Context) {
	var req officeRequest
	if !bindJSON(c, &req, "办公地点数据格式不正确") {
		return
	}

	office, err := a.offices.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建办公地点失败")
		return
	}
	respondCreated(c, "办公地点创建成功", office)
}

func (a *API) UpdateOffice(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的办公地点ID")
	if !ok {
		return
	}

	var req officeRequest
	if !bindJSON(c, &req, "办公地点数据格式不正确") {
		return
	}

	office, err := a.offices.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新办公地点失败")
		return
	}
	respondMessage(c, "办公地点更新成功", office)
}

func (a *API) DeleteOffice(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的办公地点ID")
	if !ok {
		return
	}

	if err := a.offices.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除办公地点失败")
		return
	}
	respondMessage(c, "办公地点删除成功", nil)
}
