package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/service"
)

type postRequest struct {
	Title           *string    `json:"title"`
	Content         *string    `json:"content"`
	Excerpt         *string    `json:"excerpt"`
	FeaturedImage   *string    `json:"featured_image"`
	Author          *string    `json:"author"`
	CategoryID      *uint      `json:"category_id"`
	Status          *string    `json:"status" binding:"omitempty,oneof=draft published"`
	PublishedAt     *time.Time `json:"published_at"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:           r.Title,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		FeaturedImage:   r.FeaturedImage,
		Author:          r.Author,
		CategoryID:      r.CategoryID,
		Status:          r.Status,
		PublishedAt:     r.PublishedAt,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
	}
}

// ListPosts 分页返回文章，匿名访问只能看到已发布文章。
func (a *API) ListPosts(c *gin.Context) {
	filter := service.PostFilter{
		Category:      strings.TrimSpace(c.Query("category")),
		Status:        strings.TrimSpace(c.Query("status")),
		Search:        strings.TrimSpace(c.Query("search")),
		PublishedOnly: !isAuthenticated(c),
		Page:          queryInt(c, "page"),
		Limit:         queryInt(c, "limit"),
	}

	result, err := a.posts.List(c.Request.Context(), filter)
	if err != nil {
		a.fail(c, err, "获取文章列表失败")
		return
	}
	respondPage(c, result.Posts, result.Pagination)
}

// GetPostBySlug 返回文章详情及渲染后的 HTML，匿名读者会计入浏览量。
func (a *API) GetPostBySlug(c *gin.Context) {
	anonymous := !isAuthenticated(c)
	post, err := a.posts.GetBySlug(c.Request.Context(), c.Param("slug"), anonymous, anonymous)
	if err != nil {
		a.fail(c, err, "获取文章失败")
		return
	}
	respondOK(c, post)
}

// GetPostByID 后台按 ID 读取文章
func (a *API) GetPostByID(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的文章ID")
	if !ok {
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err, "获取文章失败")
		return
	}
	respondOK(c, post)
}

// CreatePost 创建文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "文章数据格式不正确") {
		return
	}

	input := req.input()
	if (input.Author == nil || strings.TrimSpace(*input.Author) == "") && currentUser(c) != nil {
		author := currentUser(c).Username
		input.Author = &author
	}

	post, err := a.posts.Create(c.Request.Context(), input)
	if err != nil {
		a.fail(c, err, "创建文章失败")
		return
	}
	respondCreated(c, "文章创建成功", post)
}

// UpdatePost 部分更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的文章ID")
	if !ok {
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "文章数据格式不正确") {
		return
	}

	post, err := a.posts.Update(c.Request.Context(), id, req.input())
	if err != nil {
		a.fail(c, err, "更新文章失败")
		return
	}
	respondMessage(c, "文章更新成功", post)
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id", "无效的文章ID")
	if !ok {
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		a.fail(c, err, "删除文章失败")
		return
	}
	respondMessage(c, "文章删除成功", nil)
}
