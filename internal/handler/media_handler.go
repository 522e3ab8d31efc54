package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
	"github.com/sitecms/internal/storage"
	"go.uber.org/zap"
)

type mediaMetaRequest struct {
	AltText *string `json:"alt_text"`
	Caption *string `json:"caption"`
	Folder  *string `json:"folder"`
}

// multipartOverhead 为表单边界与其他字段预留的字节数。
const multipartOverhead = 64 << 10

// UploadMedia 处理 multipart 上传：写盘、生成缩略图并登记媒体记录。
func (a *API) UploadMedia(c *gin.Context) {
	var limit int64
	if a.files.MaxBytes > 0 {
		limit = a.files.MaxBytes + multipartOverhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || (limit > 0 && c.Request.ContentLength > limit) {
			a.fail(c, storage.ErrFileTooLarge, "保存文件失败")
			return
		}
		respondError(c, http.StatusBadRequest, "未找到上传的文件")
		return
	}

	stored, err := a.files.Save(file)
	if err != nil {
		a.fail(c, err, "保存文件失败")
		return
	}

	meta := service.MediaMeta{
		AltText: formValue(c, "alt_text"),
		Caption: formValue(c, "caption"),
		Folder:  formValue(c, "folder"),
	}
	var uploadedBy *uint
	if user := currentUser(c); user != nil {
		uploadedBy = &user.ID
	}

	media, err := a.media.Create(c.Request.Context(), stored, meta, uploadedBy)
	if err != nil {
		a.fail(c, err, "保存媒体记录失败")
		return
	}
	respondCreated(c, "上传成功", media)
}

// ListMedia 分页列出媒体文件，支持 type、folder、search 过滤
func (a *API) ListMedia(c *gin.Context) {
	result, err := a.media.List(c.Request.Context(), service.MediaFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Folder: strings.TrimSpace(c.Query("folder")),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		a.fail(c, err, "获取媒体列表失败")
		return
	}
	respondPage(c, result.Items, result.Pagination)
}

func (a *API) GetMedia(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的媒体ID")
	if !ok {
		return
	}

	media, err := a.media.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取媒体文件失败")
		return
	}
	respondOK(c, media)
}

// UpdateMedia 修改替代文本、说明与目录
func (a *API) UpdateMedia(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的媒体ID")
	if !ok {
		return
	}

	var req mediaMetaRequest
	if !bindJSON(c, &req, "媒体数据格式不正确") {
		return
	}

	media, err := a.media.Update(c.Request.Context(), id, service.MediaMeta{
		AltText: req.AltText,
		Caption: req.Caption,
		Folder:  req.Folder,
	})
	if err != nil {
		a.fail(c, err, "更新媒体文件失败")
		return
	}
	respondMessage(c, "媒体文件更新成功", media)
}

// DeleteMedia 删除媒体文件；仍被引用时返回 409 与引用列表，除非 force=true。
func (a *API) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的媒体ID")
	if !ok {
		return
	}

	usages, err := a.media.Delete(c.Request.Context(), id, queryTrue(c, "force"))
	switch {
	case errors.Is(err, service.ErrMediaInUse):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "媒体文件正在被使用，确认后可使用 force=true 强制删除",
			"usages":  usages,
		})
		return
	case errors.Is(err, service.ErrMediaCleanup):
		// 记录已删除，磁盘文件残留只记日志
		a.logger.Warn("media file cleanup failed", zap.Uint("media_id", id), zap.Error(err))
	case err != nil:
		a.fail(c, err, "删除媒体文件失败")
		return
	}

	respondMessage(c, "媒体文件删除成功", gin.H{"usages": usages})
}

// GetMediaUsage 列出引用该媒体文件的全部内容
func (a *API) GetMediaUsage(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的媒体ID")
	if !ok {
		return
	}

	media, usages, err := a.mediaUsage.Usages(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取媒体引用失败")
		return
	}
	respondOK(c, gin.H{
		"media":       media,
		"usages":      usages,
		"usage_count": len(usages),
	})
}

// MediaUsageSummary 返回每个媒体文件的引用次数
func (a *API) MediaUsageSummary(c *gin.Context) {
	summary, err := a.mediaUsage.Summary(c.Request.Context())
	if err != nil {
		a.fail(c, err, "获取媒体引用统计失败")
		return
	}
	respondOK(c, summary)
}

// formValue 区分字段缺失与空字符串。
func formValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}
