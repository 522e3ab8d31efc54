package service

import (
	"bytes"
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML(), gmhtml.WithUnsafe()),
	)
	sanitizer  = bluemonday.UGCPolicy()
	textPolicy = bluemonday.StrictPolicy()
)

const wordsPerMinute = 200

// RenderMarkdown 将文章正文渲染为经过清洗的 HTML，正文中内嵌的 HTML 同样会被清洗。
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// PlainText 去掉 Markdown 与 HTML 标记后的纯文本。
func PlainText(source string) string {
	rendered, err := RenderMarkdown(source)
	if err != nil {
		rendered = source
	}
	text := html.UnescapeString(textPolicy.Sanitize(rendered))
	return strings.Join(strings.Fields(text), " ")
}

// CalculateReadingTime 以每分钟 200 词估算阅读时长，向上取整，最少 1 分钟。
func CalculateReadingTime(content string) int {
	words := len(strings.Fields(PlainText(content)))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// excerptFrom 从正文截取摘要。
func excerptFrom(content string, limit int) string {
	plain := PlainText(content)
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
