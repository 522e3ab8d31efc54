package service

import (
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandingDefaultsAndUpsert(t *testing.T) {
	svc := NewBrandingService(newTestDB(t))

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Site", settings[db.BrandingKeySiteName])
	assert.Equal(t, "#0f172a", settings[db.BrandingKeyPrimaryColor])
	assert.Len(t, settings, len(brandingDefaults))

	updated, err := svc.Update(ctx, map[string]string{
		db.BrandingKeySiteName:     " Northwind Capital ",
		db.BrandingKeyPrimaryColor: "#123ABC",
	})
	require.NoError(t, err)
	assert.Equal(t, "Northwind Capital", updated[db.BrandingKeySiteName])
	assert.Equal(t, "#123ABC", updated[db.BrandingKeyPrimaryColor])

	updated, err = svc.Update(ctx, map[string]string{db.BrandingKeySiteName: "Northwind"})
	require.NoError(t, err)
	assert.Equal(t, "Northwind", updated[db.BrandingKeySiteName])
	assert.Equal(t, "#123ABC", updated[db.BrandingKeyPrimaryColor], "keys absent from the payload are untouched")
}

func TestBrandingUpdateRejectsInvalidValues(t *testing.T) {
	svc := NewBrandingService(newTestDB(t))

	_, err := svc.Update(ctx, map[string]string{
		db.BrandingKeyPrimaryColor: "blue",
		db.BrandingKeyContactEmail: "not-an-email",
		db.BrandingKeyLogoURL:      "javascript:alert(1)",
		"favourite_food":           "pizza",
	})
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, db.BrandingKeyPrimaryColor)
	assert.Contains(t, vErr.Fields, db.BrandingKeyContactEmail)
	assert.Contains(t, vErr.Fields, db.BrandingKeyLogoURL)
	assert.Contains(t, vErr.Fields, "favourite_food")

	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#0f172a", settings[db.BrandingKeyPrimaryColor], "rejected payload must not persist anything")
}

func TestFooterLinksGroupedAndSoftDeleted(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewFooterService(gdb)

	_, err := svc.Create(ctx, FooterLinkInput{Section: ptr("Company"), Label: ptr("About"), URL: ptr("ftp://x")})
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "url")

	inputs := []FooterLinkInput{
		{Section: ptr("Company"), Label: ptr("About"), URL: ptr("/about"), SortOrder: ptr(0)},
		{Section: ptr("legal"), Label: ptr("Privacy"), URL: ptr("/privacy"), SortOrder: ptr(1)},
		{Section: ptr("company"), Label: ptr("Careers"), URL: ptr("https://jobs.example.com"), OpenInNewTab: ptr(true), SortOrder: ptr(2)},
	}
	var ids []uint
	for _, input := range inputs {
		link, err := svc.Create(ctx, input)
		require.NoError(t, err)
		ids = append(ids, link.ID)
	}

	sections, err := svc.Grouped(ctx, false)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "company", sections[0].Section)
	require.Len(t, sections[0].Links, 2)
	assert.Equal(t, "Careers", sections[0].Links[1].Label)
	assert.Equal(t, "legal", sections[1].Section)

	updated, err := svc.Update(ctx, ids[1], FooterLinkInput{Label: ptr("Privacy Policy")})
	require.NoError(t, err)
	assert.Equal(t, "/privacy", updated.URL)

	require.NoError(t, svc.Delete(ctx, ids[1]))

	var link db.FooterLink
	require.NoError(t, gdb.First(&link, ids[1]).Error, "soft delete keeps the row")
	assert.False(t, link.IsActive)

	visible, err := svc.Grouped(ctx, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := svc.Grouped(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, svc.Delete(ctx, 999), ErrFooterLinkNotFound)
}
