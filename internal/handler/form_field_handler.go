package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type createFieldRequest struct {
	FormID uint `json:"form_id" binding:"required"`
	fieldRequest
}

type reorderFieldsRequest struct {
	FormID   uint   `json:"form_id" binding:"required"`
	FieldIDs []uint `json:"field_ids" binding:"required,min=1"`
}

// ListFormFields 返回表单字段，需提供 form_id 查询参数
func (a *API) ListFormFields(c *gin.Context) {
	formID, err := strconv.ParseUint(strings.TrimSpace(c.Query("form_id")), 10, 32)
	if err != nil || formID == 0 {
		respondError(c, http.StatusBadRequest, "缺少有效的 form_id")
		return
	}

	fields, err := a.formFields.List(c.Request.Context(), uint(formID))
	if err != nil {
		a.fail(c, err, "获取表单字段失败")
		return
	}
	respondOK(c, fields)
}

// CreateFormField 追加字段到表单末尾
func (a *API) CreateFormField(c *gin.Context) {
	var req createFieldRequest
	if !bindJSON(c, &req, "字段数据格式不正确") {
		return
	}

	field, err := a.formFields.Create(c.Request.Context(), req.FormID, req.fieldRequest.input())
	if err != nil {
		a.fail(c, err, "创建表单字段失败")
		return
	}
	respondCreated(c, "字段创建成功", field)
}

func (a *API) UpdateFormField(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的字段ID")
	if !ok {
		return
	}

	var req fieldRequest
	if !bindJSON(c, &req, "字段数据格式不正确") {
		return
	}

	field, err := a.formFields.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新表单字段失败")
		return
	}
	respondMessage(c, "字段更新成功", field)
}

func (a *API) DeleteFormField(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的字段ID")
	if !ok {
		return
	}

	if err := a.formFields.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除表单字段失败")
		return
	}
	respondMessage(c, "字段删除成功", nil)
}

// ReorderFormFields 在事务中按 field_ids 顺序重排
func (a *API) ReorderFormFields(c *gin.Context) {
	var req reorderFieldsRequest
	if !bindJSON(c, &req, "排序参数格式不正确") {
		return
	}

	if err := a.formFields.Reorder(c.Request.Context(), req.FormID, req.FieldIDs); err != nil {
		a.fail(c, err, "字段排序失败")
		return
	}

	fields, err := a.formFields.List(c.Request.Context(), req.FormID)
	if err != nil {
		a.fail(c, err, "获取表单字段失败")
		return
	}
	respondMessage(c, "排序已更新", fields)
}
