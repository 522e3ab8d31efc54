package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/db"
)

func TestCreatePageConflictOnDuplicateSlug(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"title": "About Us"}), admin)
	api.CreatePage(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	c, w = newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"title": "Other", "slug": "about-us"}), admin)
	api.CreatePage(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}

	c, w = newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"slug": "empty"}), admin)
	api.CreatePage(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without title, got %d", w.Code)
	}
}

func TestGetPageHidesUnpublishedFromAnonymous(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"title": "Careers", "is_published": false}), admin)
	api.CreatePage(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	slug := gin.Param{Key: "slug", Value: "careers"}

	c, w = newContext(jsonRequest(http.MethodGet, "/api/pages/careers", nil), nil, slug)
	api.GetPage(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for anonymous, got %d", w.Code)
	}

	c, w = newContext(jsonRequest(http.MethodGet, "/api/pages/careers", nil), admin, slug)
	api.GetPage(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", w.Code)
	}
}

func TestUpdatePageKeepsUntouchedFields(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{
		"title":            "Team",
		"meta_title":       "Our team",
		"meta_description": "People",
		"is_published":     true,
	}), admin)
	api.CreatePage(c)

	var created db.Page
	decodeData(t, w, &created)

	c, w = newContext(jsonRequest(http.MethodPut, "/api/pages/1", map[string]any{"title": "The Team"}), admin, idParam("id", created.ID))
	api.UpdatePage(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated db.Page
	decodeData(t, w, &updated)
	if updated.Title != "The Team" || updated.MetaTitle != "Our team" || updated.MetaDescription != "People" || !updated.IsPublished {
		t.Fatalf("partial update changed untouched fields: %+v", updated)
	}

	c, w = newContext(jsonRequest(http.MethodDelete, "/api/pages/1", nil), admin, idParam("id", created.ID))
	api.DeletePage(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	c, w = newContext(jsonRequest(http.MethodDelete, "/api/pages/1", nil), admin, idParam("id", created.ID))
	api.DeletePage(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", w.Code)
	}
}

func TestPageSectionLifecycle(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)

	c, _ := newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"title": "Home", "is_published": true}), admin)
	api.CreatePage(c)

	create := func(key string, content any) (int, db.PageContent) {
		c, w := newContext(jsonRequest(http.MethodPost, "/api/page-content", map[string]any{
			"page_slug":    "home",
			"section_key":  key,
			"content_type": db.ContentTypeHero,
			"content":      content,
		}), admin)
		api.CreatePageSection(c)
		var section db.PageContent
		if w.Code == http.StatusCreated {
			decodeData(t, w, &section)
		}
		return w.Code, section
	}

	status, first := create("hero", map[string]any{"headline": "Hello"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if status, _ := create("hero", map[string]any{"headline": "Again"}); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate section, got %d", status)
	}
	if status, _ := create("banner", map[string]any{"subtitle": "no headline"}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid hero content, got %d", status)
	}
	_, second := create("banner", map[string]any{"headline": "Second"})

	c, w := newContext(jsonRequest(http.MethodPut, "/api/page-content/home/reorder", map[string]any{
		"ids": []uint{second.ID, first.ID},
	}), admin, gin.Param{Key: "ref", Value: "home"})
	api.ReorderPageSections(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sections []db.PageContent
	decodeData(t, w, &sections)
	if len(sections) != 2 || sections[0].ID != second.ID {
		t.Fatalf("unexpected order after reorder: %+v", sections)
	}

	c, w = newContext(jsonRequest(http.MethodPut, "/api/page-content/1", map[string]any{"title": "Intro"}), admin, idParam("ref", first.ID))
	api.UpdatePageSection(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var updated db.PageContent
	decodeData(t, w, &updated)
	var content map[string]any
	if err := json.Unmarshal(updated.Content, &content); err != nil || content["headline"] != "Hello" {
		t.Fatalf("content should be untouched, got %s", string(updated.Content))
	}
}

func TestPageSectionsHiddenForUnpublishedPage(t *testing.T) {
	api, _ := setupTestAPI(t)
	admin := seedUser(t, api, "admin", db.RoleAdmin)

	c, w := newContext(jsonRequest(http.MethodPost, "/api/pages", map[string]any{"title": "Careers", "is_published": false}), admin)
	api.CreatePage(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	c, w = newContext(jsonRequest(http.MethodPost, "/api/page-content", map[string]any{
		"page_slug":    "careers",
		"section_key":  "intro",
		"content_type": "text",
		"content":      map[string]any{"body": "Join us"},
	}), admin)
	api.CreatePageSection(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	slug := gin.Param{Key: "pageSlug", Value: "careers"}

	c, w = newContext(jsonRequest(http.MethodGet, "/api/page-content/careers", nil), nil, slug)
	api.ListPageSections(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for anonymous, got %d", w.Code)
	}

	c, w = newContext(jsonRequest(http.MethodGet, "/api/page-content/careers/intro", nil), nil, slug, gin.Param{Key: "sectionKey", Value: "intro"})
	api.GetPageSection(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for anonymous section, got %d", w.Code)
	}

	c, w = newContext(jsonRequest(http.MethodGet, "/api/page-content/careers", nil), admin, slug)
	api.ListPageSections(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", w.Code)
	}
}
