package service

import (
	"encoding/json"
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPage(t *testing.T, gdb *gorm.DB, slug string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.Page{Slug: slug, Title: slug, IsPublished: true}).Error)
}

func TestPageContentCreateValidatesShapePerType(t *testing.T) {
	gdb := newTestDB(t)
	seedPage(t, gdb, "home")
	require.NoError(t, gdb.Create(&db.Form{Name: "Contact", Slug: "contact", IsActive: true}).Error)
	svc := NewPageContentService(gdb)

	tests := []struct {
		name        string
		contentType string
		content     string
		wantField   string
	}{
		{name: "hero ok", contentType: "hero", content: `{"headline":"Patient capital"}`},
		{name: "hero missing headline", contentType: "hero", content: `{"subheadline":"x"}`, wantField: "content.headline"},
		{name: "text ok", contentType: "text", content: `{"body":"Hello"}`},
		{name: "text blank body", contentType: "text", content: `{"body":"   "}`, wantField: "content.body"},
		{name: "feature list ok", contentType: "feature_list", content: `{"items":[]}`},
		{name: "feature list not array", contentType: "feature_list", content: `{"items":"a,b"}`, wantField: "content.items"},
		{name: "contact ok", contentType: "contact_info", content: `{"phone":"+44 20 7946 0000"}`},
		{name: "contact empty", contentType: "contact_info", content: `{"title":"x"}`, wantField: "content"},
		{name: "contact bad email", contentType: "contact_info", content: `{"email":"nope"}`, wantField: "content.email"},
		{name: "form config ok", contentType: "form_config", content: `{"form_slug":"contact"}`},
		{name: "form config unknown form", contentType: "form_config", content: `{"form_slug":"missing"}`, wantField: "content.form_slug"},
		{name: "unknown type", contentType: "carousel", content: `{}`, wantField: "content_type"},
		{name: "not an object", contentType: "text", content: `["body"]`, wantField: "content"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "section_" + string(rune('a'+i))
			section, err := svc.Create(ctx, PageContentInput{
				PageSlug:    ptr("home"),
				SectionKey:  ptr(key),
				ContentType: ptr(tt.contentType),
				Content:     json.RawMessage(tt.content),
			})
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, key, section.SectionKey)
				assert.True(t, section.IsActive)
				return
			}
			vErr, ok := AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, vErr.Fields, tt.wantField)
		})
	}
}

func TestPageContentCreateRequiresExistingPage(t *testing.T) {
	svc := NewPageContentService(newTestDB(t))

	_, err := svc.Create(ctx, PageContentInput{
		PageSlug:    ptr("ghost"),
		SectionKey:  ptr("hero"),
		ContentType: ptr(db.ContentTypeHero),
		Content:     json.RawMessage(`{"headline":"x"}`),
	})
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "page_slug")
}

func TestPageContentDuplicateSectionConflicts(t *testing.T) {
	gdb := newTestDB(t)
	seedPage(t, gdb, "about")
	svc := NewPageContentService(gdb)

	input := PageContentInput{
		PageSlug:    ptr("about"),
		SectionKey:  ptr("intro"),
		ContentType: ptr(db.ContentTypeText),
		Content:     json.RawMessage(`{"body":"We invest"}`),
	}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	assert.ErrorIs(t, err, ErrSectionExists)
}

func TestPageContentAppendsAndReorders(t *testing.T) {
	gdb := newTestDB(t)
	seedPage(t, gdb, "home")
	svc := NewPageContentService(gdb)

	var ids []uint
	for _, key := range []string{"hero", "intro", "stats"} {
		section, err := svc.Create(ctx, PageContentInput{
			PageSlug:    ptr("home"),
			SectionKey:  ptr(key),
			ContentType: ptr(db.ContentTypeText),
			Content:     json.RawMessage(`{"body":"` + key + `"}`),
		})
		require.NoError(t, err)
		ids = append(ids, section.ID)
	}

	sections, err := svc.ListByPage(ctx, "home", false)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{sections[0].SortOrder, sections[1].SortOrder, sections[2].SortOrder})

	require.NoError(t, svc.Reorder(ctx, "home", []uint{ids[2], ids[0], ids[1]}))

	sections, err = svc.ListByPage(ctx, "home", false)
	require.NoError(t, err)
	assert.Equal(t, "stats", sections[0].SectionKey)
	assert.Equal(t, "hero", sections[1].SectionKey)
	assert.Equal(t, "intro", sections[2].SectionKey)

	assert.ErrorIs(t, svc.Reorder(ctx, "home", []uint{ids[0], ids[0]}), ErrSectionOrder)
	assert.ErrorIs(t, svc.Reorder(ctx, "other", []uint{ids[0]}), ErrSectionNotFound)
}

func TestPageContentUpdateRevalidatesAgainstNewType(t *testing.T) {
	gdb := newTestDB(t)
	seedPage(t, gdb, "home")
	svc := NewPageContentService(gdb)

	section, err := svc.Create(ctx, PageContentInput{
		PageSlug:    ptr("home"),
		SectionKey:  ptr("hero"),
		ContentType: ptr(db.ContentTypeHero),
		Title:       ptr("Hero"),
		Content:     json.RawMessage(`{"headline":"Build"}`),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, section.ID, PageContentInput{ContentType: ptr(db.ContentTypeText)})
	_, ok := AsValidationError(err)
	require.True(t, ok, "switching to text without a body must fail, got %v", err)

	updated, err := svc.Update(ctx, section.ID, PageContentInput{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Hero", updated.Title)
	assert.JSONEq(t, `{"headline":"Build"}`, string(updated.Content))

	active, err := svc.ListByPage(ctx, "home", true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.GetSection(ctx, "home", "hero", true)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestPageContentHiddenWhileUnpublished(t *testing.T) {
	gdb := newTestDB(t)
	require.NoError(t, gdb.Create(&db.Page{Slug: "careers", Title: "Careers"}).Error)
	svc := NewPageContentService(gdb)

	_, err := svc.Create(ctx, PageContentInput{
		PageSlug:    ptr("careers"),
		SectionKey:  ptr("intro"),
		ContentType: ptr(db.ContentTypeText),
		Content:     json.RawMessage(`{"body":"Join us"}`),
	})
	require.NoError(t, err)

	_, err = svc.ListByPage(ctx, "careers", true)
	assert.ErrorIs(t, err, ErrPageNotFound)
	_, err = svc.GetSection(ctx, "careers", "intro", true)
	assert.ErrorIs(t, err, ErrPageNotFound)

	all, err := svc.ListByPage(ctx, "careers", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, gdb.Model(&db.Page{}).Where("slug = ?", "careers").Update("is_published", true).Error)
	visible, err := svc.ListByPage(ctx, "careers", true)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestPageContentDeleteMissing(t *testing.T) {
	svc := NewPageContentService(newTestDB(t))
	assert.ErrorIs(t, svc.Delete(ctx, 42), ErrSectionNotFound)
}
