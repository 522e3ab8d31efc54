package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type fieldRequest struct {
	Name        *string  `json:"name"`
	Label       *string  `json:"label"`
	FieldType   *string  `json:"field_type"`
	Placeholder *string  `json:"placeholder"`
	HelpText    *string  `json:"help_text"`
	IsRequired  *bool    `json:"is_required"`
	Options     []string `json:"options"`
	MinLength   *int     `json:"min_length"`
	MaxLength   *int     `json:"max_length"`
	SortOrder   *int     `json:"sort_order"`
}

func (r fieldRequest) input() service.FieldInput {
	return service.FieldInput{
		Name:        r.Name,
		Label:       r.Label,
		FieldType:   r.FieldType,
		Placeholder: r.Placeholder,
		HelpText:    r.HelpText,
		IsRequired:  r.IsRequired,
		Options:     r.Options,
		MinLength:   r.MinLength,
		MaxLength:   r.MaxLength,
		SortOrder:   r.SortOrder,
	}
}

type formRequest struct {
	Name              *string         `json:"name"`
	Slug              *string         `json:"slug"`
	Description       *string         `json:"description"`
	SubmitLabel       *string         `json:"submit_label"`
	SuccessMessage    *string         `json:"success_message"`
	NotificationEmail *string         `json:"notification_email"`
	IsActive          *bool           `json:"is_active"`
	Fields            *[]fieldRequest `json:"fields"`
}

func (r formRequest) input() service.FormInput {
	input := service.FormInput{
		Name:              r.Name,
		Slug:              r.Slug,
		Description:       r.Description,
		SubmitLabel:       r.SubmitLabel,
		SuccessMessage:    r.SuccessMessage,
		NotificationEmail: r.NotificationEmail,
		IsActive:          r.IsActive,
	}
	if r.Fields != nil {
		fields := make([]service.FieldInput, 0, len(*r.Fields))
		for _, field := range *r.Fields {
			fields = append(fields, field.input())
		}
		input.Fields = &fields
	}
	return input
}

// ListForms 返回全部表单及字段、提交数量
func (a *API) ListForms(c *gin.Context) {
	forms, err := a.forms.List(c.Request.Context())
	if err != nil {
		a.fail(c, err, "获取表单列表失败")
		return
	}
	respondOK(c, forms)
}

// GetForm 按 slug 返回表单定义，路径参数 form 为 slug。停用的表单对匿名访问返回 404。
func (a *API) GetForm(c *gin.Context) {
	form, err := a.forms.GetBySlug(c.Request.Context(), c.Param("form"), !isAuthenticated(c))
	if err != nil {
		a.fail(c, err, "获取表单失败")
		return
	}
	respondOK(c, form)
}

// CreateForm 在同一事务中创建表单及其字段
func (a *API) CreateForm(c *gin.Context) {
	var req formRequest
	if !bindJSON(c, &req, "表单数据格式不正确") {
		return
	}

	form, err := a.forms.Create(c.Request.Context(), req.input())
	if err != nil {
		a.fail(c, err, "创建表单失败")
		return
	}
	respondCreated(c, "表单创建成功", form)
}

// UpdateForm 部分更新表单，提供 fields 时整体替换字段
func (a *API) UpdateForm(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的表单ID")
	if !ok {
		return
	}

	var req formRequest
	if !bindJSON(c, &req, "表单数据格式不正确") {
		return
	}

	form, err := a.forms.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新表单失败")
		return
	}
	respondMessage(c, "表单更新成功", form)
}

// DeleteForm 删除表单、字段与提交记录
func (a *API) DeleteForm(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的表单ID")
	if !ok {
		return
	}

	if err := a.forms.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除表单失败")
		return
	}
	respondMessage(c, "表单删除成功", nil)
}

// SubmitForm 按字段定义校验提交内容并保存
func (a *API) SubmitForm(c *gin.Context) {
	var data map[string]interface{}
	if !bindJSON(c, &data, "提交内容需为 JSON 对象") {
		return
	}

	form, submission, err := a.forms.Submit(c.Request.Context(), c.Param("form"), data, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		a.fail(c, err, "提交表单失败")
		return
	}
	respondCreated(c, form.SuccessMessage, gin.H{"id": submission.ID})
}

// ListSubmissions 分页返回提交记录，路径参数 form 为表单 ID
func (a *API) ListSubmissions(c *gin.Context) {
	id, ok := pathID(c, "form", "无效的表单ID")
	if !ok {
		return
	}

	result, err := a.forms.Submissions(c.Request.Context(), id, service.SubmissionFilter{
		UnreadOnly: queryTrue(c, "unread"),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		a.fail(c, err, "获取提交记录失败")
		return
	}
	respondPage(c, result.Submissions, result.Pagination)
}

func (a *API) MarkSubmissionRead(c *gin.Context) {
	id, ok := pathID(c, "submissionId", "无效的提交记录ID")
	if !ok {
		return
	}

	submission, err := a.forms.MarkRead(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "更新提交记录失败")
		return
	}
	respondMessage(c, "已标记为已读", submission)
}

func (a *API) DeleteSubmission(c *gin.Context) {
	id, ok := pathID(c, "submissionId", "无效的提交记录ID")
	if !ok {
		return
	}

	if err := a.forms.DeleteSubmission(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除提交记录失败")
		return
	}
	respondMessage(c, "提交记录删除成功", nil)
}
