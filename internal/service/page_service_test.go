package service

import (
	"errors"
	"testing"

	"github.com/sitecms/internal/db"
	"gorm.io/datatypes"
)

func TestPageServiceCreateDerivesSlugFromTitle(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	page, err := svc.Create(ctx, PageInput{Title: ptr("  About Us  "), MetaTitle: ptr("About")})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if page.Slug != "about-us" {
		t.Fatalf("expected slug 'about-us', got %s", page.Slug)
	}
	if page.Title != "About Us" {
		t.Fatalf("expected trimmed title, got %q", page.Title)
	}
	if page.IsPublished {
		t.Fatal("new pages should default to unpublished")
	}

	fetched, err := svc.Get(ctx, page.ID)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if fetched.MetaTitle != "About" || fetched.Slug != page.Slug {
		t.Fatalf("fetched page differs from created one: %+v", fetched)
	}
}

func TestPageServiceCreateRejectsDuplicateSlug(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	if _, err := svc.Create(ctx, PageInput{Title: ptr("Contact")}); err != nil {
		t.Fatalf("seed page: %v", err)
	}
	_, err := svc.Create(ctx, PageInput{Title: ptr("Another"), Slug: ptr("contact")})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestPageServiceCreateRequiresTitle(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	if _, err := svc.Create(ctx, PageInput{Title: ptr("   ")}); !errors.Is(err, ErrPageTitleMissing) {
		t.Fatalf("expected ErrPageTitleMissing, got %v", err)
	}
}

func TestPageServiceUpdateKeepsUntouchedFields(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	page, err := svc.Create(ctx, PageInput{
		Title:           ptr("Home"),
		MetaTitle:       ptr("Welcome"),
		MetaDescription: ptr("Investing in the long term"),
		IsPublished:     ptr(true),
		SortOrder:       ptr(3),
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	updated, err := svc.Update(ctx, page.ID, PageInput{MetaTitle: ptr("Hello")})
	if err != nil {
		t.Fatalf("update page: %v", err)
	}
	if updated.MetaTitle != "Hello" {
		t.Fatalf("expected meta title to change, got %s", updated.MetaTitle)
	}
	if updated.MetaDescription != "Investing in the long term" || !updated.IsPublished || updated.SortOrder != 3 || updated.Title != "Home" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
}

func TestPageServiceUpdatePublishedFalseIsApplied(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	page, err := svc.Create(ctx, PageInput{Title: ptr("Team"), IsPublished: ptr(true)})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	updated, err := svc.Update(ctx, page.ID, PageInput{IsPublished: ptr(false)})
	if err != nil {
		t.Fatalf("update page: %v", err)
	}
	if updated.IsPublished {
		t.Fatal("expected explicit false to unpublish the page")
	}
}

func TestPageServiceSlugRenameMovesSections(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewPageService(gdb)

	page, err := svc.Create(ctx, PageInput{Title: ptr("Careers")})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	section := db.PageContent{
		PageSlug:    page.Slug,
		SectionKey:  "intro",
		ContentType: db.ContentTypeText,
		Content:     datatypes.JSON(`{"body":"Join us"}`),
		IsActive:    true,
	}
	if err := gdb.Create(&section).Error; err != nil {
		t.Fatalf("seed section: %v", err)
	}

	if _, err := svc.Update(ctx, page.ID, PageInput{Slug: ptr("Join Us")}); err != nil {
		t.Fatalf("rename slug: %v", err)
	}

	loaded, err := svc.GetBySlug(ctx, "join-us", false)
	if err != nil {
		t.Fatalf("get renamed page: %v", err)
	}
	if len(loaded.Sections) != 1 || loaded.Sections[0].SectionKey != "intro" {
		t.Fatalf("expected section to follow the page, got %+v", loaded.Sections)
	}
}

func TestPageServiceUpdateRejectsTakenSlug(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	if _, err := svc.Create(ctx, PageInput{Title: ptr("About")}); err != nil {
		t.Fatalf("seed page: %v", err)
	}
	page, err := svc.Create(ctx, PageInput{Title: ptr("Contact")})
	if err != nil {
		t.Fatalf("seed page: %v", err)
	}

	if _, err := svc.Update(ctx, page.ID, PageInput{Slug: ptr("about")}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestPageServiceListHidesDraftsForPublic(t *testing.T) {
	svc := NewPageService(newTestDB(t))

	for _, input := range []PageInput{
		{Title: ptr("Draft"), SortOrder: ptr(0)},
		{Title: ptr("Live"), IsPublished: ptr(true), SortOrder: ptr(1)},
	} {
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("seed page: %v", err)
		}
	}

	public, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	if len(public) != 1 || public[0].Slug != "live" {
		t.Fatalf("expected only the published page, got %+v", public)
	}

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	if len(all) != 2 || all[0].Slug != "draft" {
		t.Fatalf("expected both pages ordered by sort_order, got %+v", all)
	}
}

func TestPageServiceDeleteRemovesSections(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewPageService(gdb)

	page, err := svc.Create(ctx, PageInput{Title: ptr("Legal")})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if err := gdb.Create(&db.PageContent{
		PageSlug:    page.Slug,
		SectionKey:  "terms",
		ContentType: db.ContentTypeText,
		Content:     datatypes.JSON(`{"body":"..."}`),
	}).Error; err != nil {
		t.Fatalf("seed section: %v", err)
	}

	if err := svc.Delete(ctx, page.ID); err != nil {
		t.Fatalf("delete page: %v", err)
	}

	var remaining int64
	gdb.Model(&db.PageContent{}).Where("page_slug = ?", "legal").Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected sections to be deleted, %d left", remaining)
	}

	if err := svc.Delete(ctx, page.ID); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound for second delete, got %v", err)
	}
}
