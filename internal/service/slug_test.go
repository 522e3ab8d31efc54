package service

import (
	"strings"
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Hello World", want: "hello-world"},
		{name: "punctuation", input: "  Q3 Results: Growth & Outlook!  ", want: "q3-results-growth-outlook"},
		{name: "accents", input: "Café Crème Brûlée", want: "cafe-creme-brulee"},
		{name: "collapse", input: "a---b___c", want: "a-b-c"},
		{name: "unicode letters kept", input: "投资 策略", want: "投资-策略"},
		{name: "only symbols", input: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyIsDeterministicAndBounded(t *testing.T) {
	long := strings.Repeat("word ", 100)
	first := Slugify(long)
	assert.Equal(t, first, Slugify(long))
	assert.LessOrEqual(t, len([]rune(first)), maxSlugLength)
	assert.False(t, strings.HasSuffix(first, "-"))
}

func TestUniqueSlugAppendsSuffix(t *testing.T) {
	gdb := newTestDB(t)

	require.NoError(t, gdb.Create(&db.BlogPost{Title: "Hello", Slug: "hello", Status: db.PostStatusDraft}).Error)
	require.NoError(t, gdb.Create(&db.BlogPost{Title: "Hello", Slug: "hello-2", Status: db.PostStatusDraft}).Error)

	slug, err := uniqueSlug(gdb, &db.BlogPost{}, "Hello", "post", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello-3", slug)

	var first db.BlogPost
	require.NoError(t, gdb.Where("slug = ?", "hello").First(&first).Error)
	slug, err = uniqueSlug(gdb, &db.BlogPost{}, "Hello", "post", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", slug, "a record keeps its own slug")

	slug, err = uniqueSlug(gdb, &db.BlogPost{}, "???", "post", 0)
	require.NoError(t, err)
	assert.Equal(t, "post", slug)
}
