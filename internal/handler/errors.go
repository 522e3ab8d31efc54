package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/logging"
	"github.com/sitecms/internal/service"
	"github.com/sitecms/internal/storage"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// errorMappings 将服务层的哨兵错误映射为 HTTP 状态码与提示语。
var errorMappings = []errorMapping{
	{service.ErrPageNotFound, http.StatusNotFound, "页面不存在"},
	{service.ErrPageTitleMissing, http.StatusBadRequest, "页面标题不能为空"},
	{service.ErrSectionNotFound, http.StatusNotFound, "页面区块不存在"},
	{service.ErrSectionExists, http.StatusConflict, "该页面已存在同名区块"},
	{service.ErrSectionOrder, http.StatusBadRequest, "区块排序参数无效"},
	{service.ErrPostNotFound, http.StatusNotFound, "文章不存在"},
	{service.ErrPostTitleMissing, http.StatusBadRequest, "文章标题不能为空"},
	{service.ErrPostContentMissing, http.StatusBadRequest, "文章内容不能为空"},
	{service.ErrPostStatusInvalid, http.StatusBadRequest, "文章状态无效"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "分类不存在"},
	{service.ErrCategoryInUse, http.StatusBadRequest, "分类下仍有文章，无法删除"},
	{service.ErrCategoryNameMissing, http.StatusBadRequest, "分类名称不能为空"},
	{service.ErrCategoryExists, http.StatusConflict, "分类已存在"},
	{service.ErrTeamMemberNotFound, http.StatusNotFound, "团队成员不存在"},
	{service.ErrTeamOrder, http.StatusBadRequest, "成员排序参数无效"},
	{service.ErrCompanyNotFound, http.StatusNotFound, "投资组合公司不存在"},
	{service.ErrInvestmentAreaNotFound, http.StatusNotFound, "投资领域不存在"},
	{service.ErrOfficeNotFound, http.StatusNotFound, "办公地点不存在"},
	{service.ErrMediaNotFound, http.StatusNotFound, "媒体文件不存在"},
	{service.ErrMediaInUse, http.StatusConflict, "媒体文件正在被使用"},
	{service.ErrFooterLinkNotFound, http.StatusNotFound, "页脚链接不存在"},
	{service.ErrFormNotFound, http.StatusNotFound, "表单不存在"},
	{service.ErrFormNameMissing, http.StatusBadRequest, "表单名称不能为空"},
	{service.ErrSubmissionNotFound, http.StatusNotFound, "提交记录不存在"},
	{service.ErrFieldNotFound, http.StatusNotFound, "表单字段不存在"},
	{service.ErrFieldExists, http.StatusConflict, "字段名称已存在"},
	{service.ErrFieldOrder, http.StatusBadRequest, "字段排序参数与表单不匹配"},
	{service.ErrUserNotFound, http.StatusNotFound, "用户不存在"},
	{service.ErrRoleInvalid, http.StatusBadRequest, "角色无效"},
	{service.ErrSlugTaken, http.StatusConflict, "slug 已被占用"},
	{storage.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "文件超过大小限制"},
	{storage.ErrFileTypeInvalid, http.StatusBadRequest, "不支持的文件类型"},
	{storage.ErrFileEmpty, http.StatusBadRequest, "文件内容为空"},
}

// fail 统一处理服务层错误：校验错误 400，已知哨兵错误按映射返回，其余记录日志后返回 500。
func (a *API) fail(c *gin.Context, err error, message string) {
	if vErr, ok := service.AsValidationError(err); ok {
		respondValidation(c, vErr.Fields)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.message)
			return
		}
	}

	a.logger.Error(message,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", logging.GetRequestID(c)),
	)
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, message)
}
