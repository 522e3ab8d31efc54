package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type portfolioRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	LogoURL         *string `json:"logo_url"`
	WebsiteURL      *string `json:"website_url"`
	Sector          *string `json:"sector"`
	InvestmentStage *string `json:"investment_stage"`
	InvestmentYear  *int    `json:"investment_year"`
	Status          *string `json:"status"`
	IsFeatured      *bool   `json:"is_featured"`
	SortOrder       *int    `json:"sort_order"`
	IsActive        *bool   `json:"is_active"`
}

func (r portfolioRequest) input() service.PortfolioInput {
	return service.PortfolioInput{
		Name:            r.Name,
		Description:     r.Description,
		LogoURL:         r.LogoURL,
		WebsiteURL:      r.WebsiteURL,
		Sector:          r.Sector,
		InvestmentStage: r.InvestmentStage,
		InvestmentYear:  r.InvestmentYear,
		Status:          r.Status,
		IsFeatured:      r.IsFeatured,
		SortOrder:       r.SortOrder,
		IsActive:        r.IsActive,
	}
}

// ListPortfolio 按行业、状态、是否精选过滤投资组合
func (a *API) ListPortfolio(c *gin.Context) {
	companies, err := a.portfolio.List(c.Request.Context(), service.PortfolioFilter{
		Sector:     strings.TrimSpace(c.Query("sector")),
		Status:     strings.TrimSpace(c.Query("status")),
		Featured:   queryBool(c, "featured"),
		ActiveOnly: !isAuthenticated(c),
	})
	if err != nil {
		a.fail(c, err, "获取投资组合失败")
		return
	}
	respondOK(c, companies)
}

func (a *API) GetPortfolioCompany(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的公司ID")
	if !ok {
		return
	}

	company, err := a.portfolio.Get(c.Request.Context(), id, !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取公司信息失败")
		return
	}
	respondOK(c, company)
}

func (a *API) CreatePortfolioCompany(c *gin.Context) {
	var req portfolioRequest
	if !bindJSON(c, &req, "公司数据格式不正确") {
		return
	}

	company, err := a.portfolio.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建公司失败")
		return
	}
	respondCreated(c, "公司创建成功", company)
}

func (a *API) UpdatePortfolioCompany(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的公司ID")
	if !ok {
		return
	}

	var req portfolioRequest
	if !bindJSON(c, &req, "公司数据格式不正确") {
		return
	}

	company, err := a.portfolio.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新公司失败")
		return
	}
	respondMessage(c, "公司更新成功", company)
}

func (a *API) DeletePortfolioCompany(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的公司ID")
	if !ok {
		return
	}

	if err := a.portfolio.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除公司失败")
		return
	}
	respondMessage(c, "公司删除成功", nil)
}
