package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type teamMemberRequest struct {
	Name        *string `json:"name"`
	Position    *string `json:"position"`
	Bio         *string `json:"bio"`
	ImageURL    *string `json:"image_url"`
	Email       *string `json:"email"`
	LinkedInURL *string `json:"linkedin_url"`
	Department  *string `json:"department"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (r teamMemberRequest) input() service.TeamMemberInput {
	return service.TeamMemberInput{
		Name:        r.Name,
		Position:    r.Position,
		Bio:         r.Bio,
		ImageURL:    r.ImageURL,
		Email:       r.Email,
		LinkedInURL: r.LinkedInURL,
		Department:  r.Department,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
	}
}

// ListTeam 返回团队成员，可按部门过滤
func (a *API) ListTeam(c *gin.Context) {
	members, err := a.team.List(c.Request.Context(), service.TeamFilter{
		Department: strings.TrimSpace(c.Query("department")),
		ActiveOnly: !isAuthenticated(c),
	})
	if err != nil {
		a.fail(c, err, "获取团队成员失败")
		return
	}
	respondOK(c, members)
}

// GetTeamMember 返回单个成员
func (a *API) GetTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的成员ID")
	if !ok {
		return
	}

	member, err := a.team.Get(c.Request.Context(), id, !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取团队成员失败")
		return
	}
	respondOK(c, member)
}

// CreateTeamMember 创建成员
func (a *API) CreateTeamMember(c *gin.Context) {
	var req teamMemberRequest
	if !bindJSON(c, &req, "成员数据格式不正确") {
		return
	}

	member, err := a.team.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建团队成员失败")
		return
	}
	respondCreated(c, "成员创建成功", member)
}

// UpdateTeamMember 部分更新成员
func (a *API) UpdateTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的成员ID")
	if !ok {
		return
	}

	var req teamMemberRequest
	if !bindJSON(c, &req, "成员数据格式不正确") {
		return
	}

	member, err := a.team.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新团队成员失败")
		return
	}
	respondMessage(c, "成员更新成功", member)
}

// DeleteTeamMember 删除成员
func (a *API) DeleteTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的成员ID")
	if !ok {
		return
	}

	if err := a.team.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除团队成员失败")
		return
	}
	respondMessage(c, "成员删除成功", nil)
}

// ReorderTeam 按 ids 顺序重排成员
func (a *API) ReorderTeam(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数格式不正确") {
		return
	}

	if err := a.team.Reorder(c.Request.Context(), req.IDs); err != nil {
		a.fail(c, err, "成员排序失败")
		return
	}
	respondMessage(c, "排序已更新", nil)
}
