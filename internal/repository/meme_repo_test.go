package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/drios/memedb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *MemeRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Meme{}, &domain.Etiqueta{}))
	return NewMemeRepository(db)
}

func TestCreateWithTags(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meme := &domain.Meme{
		Description: "funny cat",
		Ruta:        "https://meme-storagee.s3.us-east-2.amazonaws.com/f.png",
		Usuario:     "alice",
	}
	tags := []domain.Etiqueta{
		{Etiqueta: "cat", Confianza: 92},
		{Etiqueta: "animal", Confianza: 71},
	}

	require.NoError(t, repo.CreateWithTags(ctx, meme, tags))
	assert.NotZero(t, meme.ID)

	stored, err := repo.GetByID(ctx, meme.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Etiquetas, 2)
	for _, tag := range stored.Etiquetas {
		assert.Equal(t, meme.ID, tag.MemeID)
	}
}

func TestCreateWithTagsSkipsDuplicateLabels(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meme := &domain.Meme{Description: "dup", Ruta: "https://x/y.png", Usuario: "bob"}
	tags := []domain.Etiqueta{
		{Etiqueta: "cat", Confianza: 92},
		{Etiqueta: "cat", Confianza: 60},
	}

	require.NoError(t, repo.CreateWithTags(ctx, meme, tags))

	count, err := repo.CountTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The first occurrence wins
	stored, err := repo.GetByID(ctx, meme.ID)
	require.NoError(t, err)
	require.Len(t, stored.Etiquetas, 1)
	assert.Equal(t, 92.0, stored.Etiquetas[0].Confianza)
}

func TestTagExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meme := &domain.Meme{Description: "d", Ruta: "https://x/z.png", Usuario: "bob"}
	require.NoError(t, repo.CreateWithTags(ctx, meme, []domain.Etiqueta{{Etiqueta: "cat", Confianza: 92}}))

	exists, err := repo.TagExists(ctx, meme.ID, "cat")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TagExists(ctx, meme.ID, "dog")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.TagExists(ctx, meme.ID+1, "cat")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchByDescription(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, desc := range []string{"Cat meme", "my CATegory", "concatenate", "dog"} {
		require.NoError(t, repo.CreateWithTags(ctx, &domain.Meme{
			Description: desc,
			Ruta:        "https://x/" + desc,
			Usuario:     "alice",
		}, nil))
	}

	testCases := []struct {
		query string
		want  []string
	}{
		{"cat", []string{"Cat meme", "my CATegory", "concatenate"}},
		{"CAT", []string{"Cat meme", "my CATegory", "concatenate"}},
		{"  cat  ", []string{"Cat meme", "my CATegory", "concatenate"}},
		{"dog", []string{"dog"}},
		{"zebra", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			memes, err := repo.SearchByDescription(ctx, tc.query)
			require.NoError(t, err)

			got := make([]string, len(memes))
			for i, m := range memes {
				got[i] = m.Description
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}
