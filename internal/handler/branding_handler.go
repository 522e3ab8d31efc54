package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type footerLinkRequest struct {
	Section      *string `json:"section"`
	Label        *string `json:"label"`
	URL          *string `json:"url"`
	OpenInNewTab *bool   `json:"open_in_new_tab"`
	SortOrder    *int    `json:"sort_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r footerLinkRequest) input() service.FooterLinkInput {
	return service.FooterLinkInput{
		Section:      r.Section,
		Label:        r.Label,
		URL:          r.URL,
		OpenInNewTab: r.OpenInNewTab,
		SortOrder:    r.SortOrder,
		IsActive:     r.IsActive,
	}
}

// GetBranding 返回品牌设置，未配置的键使用默认值
func (a *API) GetBranding(c *gin.Context) {
	settings, err := a.branding.Get(c.Request.Context())
	if err != nil {
		a.fail(c, err, "获取品牌设置失败")
		return
	}
	respondOK(c, settings)
}

// UpdateBranding 批量更新品牌设置
func (a *API) UpdateBranding(c *gin.Context) {
	var req map[string]string
	if !bindJSON(c, &req, "品牌设置需为键值对") {
		return
	}

	settings, err := a.branding.Update(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err, "更新品牌设置失败")
		return
	}
	respondMessage(c, "品牌设置已保存", settings)
}

// ListFooterLinks 按分组返回页脚链接，管理员可用 all=true 查看已停用链接
func (a *API) ListFooterLinks(c *gin.Context) {
	user := currentUser(c)
	includeInactive := user != nil && user.IsAdmin() && queryTrue(c, "all")

	sections, err := a.footer.Grouped(c.Request.Context(), includeInactive)
	if err != nil {
		a.fail(c, err, "获取页脚链接失败")
		return
	}
	respondOK(c, sections)
}

func (a *API) CreateFooterLink(c *gin.Context) {
	var req footerLinkRequest
	if !bindJSON(c, &req, "页脚链接数据格式不正确") {
		return
	}

	link, err := a.footer.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建页脚链接失败")
		return
	}
	respondCreated(c, "页脚链接创建成功", link)
}

func (a *API) UpdateFooterLink(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的链接ID")
	if !ok {
		return
	}

	var req footerLinkRequest
	if !bindJSON(c, &req, "页脚链接数据格式不正确") {
		return
	}

	link, err := a.footer.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新页脚链接失败")
		return
	}
	respondMessage(c, "页脚链接更新成功", link)
}

// DeleteFooterLink 软删除，仅将 is_active 置为 false
func (a *API) DeleteFooterLink(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的链接ID")
	if !ok {
		return
	}

	if err := a.footer.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除页脚链接失败")
		return
	}
	respondMessage(c, "页脚链接已停用", nil)
}
