package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func fileOpener(path string) Opener {
	return func(_ *zap.Logger) (*gorm.DB, error) {
		return db.Open(db.Options{Driver: "sqlite", Path: path})
	}
}

func runCommand(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(fileOpener(path))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openForAssert(t *testing.T, path string) *gorm.DB {
	t.Helper()
	gdb, err := fileOpener(path)(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func TestMigrateCreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")

	out, err := runCommand(t, path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "数据库迁移完成")

	gdb := openForAssert(t, path)
	assert.True(t, gdb.Migrator().HasTable(&db.Page{}))
	assert.True(t, gdb.Migrator().HasTable(&db.FormSubmission{}))
}

func TestCreateAdminThenReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")

	out, err := runCommand(t, path, "create-admin", "--username", "ops", "--password", "first-pass-1")
	require.NoError(t, err)
	assert.Contains(t, out, "创建成功")

	out, err = runCommand(t, path, "create-admin", "--username", "ops", "--email", "ops@example.com",
		"--password", "second-pass-2", "--role", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, "已重置")

	gdb := openForAssert(t, path)
	var user db.User
	require.NoError(t, gdb.Where("username = ?", "ops").First(&user).Error)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.Equal(t, db.RoleEditor, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("second-pass-2")))

	var count int64
	gdb.Model(&db.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateAdminRejectsShortPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")

	_, err := runCommand(t, path, "create-admin", "--username", "ops", "--password", "short")
	require.Error(t, err)
	_, ok := service.AsValidationError(err)
	assert.True(t, ok)
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")

	_, err := runCommand(t, path, "create-admin", "--username", "ops")
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")
	fixture := filepath.Join("testdata", "seed.yaml")

	out, err := runCommand(t, path, "seed", "--file", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "pages: 新建 2, 更新 0")
	assert.Contains(t, out, "offices: 新建 1, 更新 0")

	out, err = runCommand(t, path, "seed", "-f", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "pages: 新建 0, 更新 2")
	assert.Contains(t, out, "footer_links: 新建 0, 更新 2")

	gdb := openForAssert(t, path)
	ctx := context.Background()

	pages, err := service.NewPageService(gdb).List(ctx, false)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "home", pages[0].Slug)
	assert.True(t, pages[0].IsPublished)

	branding, err := service.NewBrandingService(gdb).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Northwind Capital", branding[db.BrandingKeySiteName])
	assert.Equal(t, "#112233", branding[db.BrandingKeyPrimaryColor])

	footer, err := service.NewFooterService(gdb).Grouped(ctx, true)
	require.NoError(t, err)
	assert.Len(t, footer, 2)

	grouped, err := service.NewInvestmentService(gdb).Grouped(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped[db.AreaTypePillar], 1)
	assert.Len(t, grouped[db.AreaTypeSector], 1)

	offices, err := service.NewOfficeService(gdb).List(ctx, true)
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.True(t, offices[0].IsHeadquarters)
}

func TestSeedUpdatesExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")
	gdb := openForAssert(t, path)
	require.NoError(t, db.Migrate(gdb))
	ctx := context.Background()

	title := "Old Title"
	page, err := service.NewPageService(gdb).Create(ctx, service.PageInput{Slug: strPtr("about"), Title: &title})
	require.NoError(t, err)

	newTitle := "About Us"
	report, err := Seed(ctx, gdb, &SeedFile{Pages: []seedPage{{Slug: "about", Title: &newTitle}}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated["pages"])

	reloaded, err := service.NewPageService(gdb).Get(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "About Us", reloaded.Title)
}

func TestSeedRejectsUnknownBrandingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.db")
	gdb := openForAssert(t, path)
	require.NoError(t, db.Migrate(gdb))

	_, err := Seed(context.Background(), gdb, &SeedFile{Branding: map[string]string{"nope": "x"}})
	require.Error(t, err)
	vErr, ok := service.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "nope")
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
