package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"corpsite/internal/models"
)

func setupViews(t *testing.T) (*Views, *gorm.DB, models.Post) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	post := models.Post{Number: 1, Title: "Announcement", Content: "Hello"}
	require.NoError(t, db.Create(&post).Error)
	return NewViews(db), db, post
}

func postViews(t *testing.T, db *gorm.DB, id uint) int64 {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, id).Error)
	return p.Views
}

func TestRecordFirstViewIncrements(t *testing.T) {
	views, db, post := setupViews(t)

	ua := "Mozilla/5.0"
	isNew, err := views.Record(context.Background(), post.ID, "alice", &ua)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.EqualValues(t, 1, postViews(t, db, post.ID))

	var count int64
	require.NoError(t, db.Model(&models.PostViewLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordRepeatViewSuppressed(t *testing.T) {
	views, db, post := setupViews(t)

	_, err := views.Record(context.Background(), post.ID, "alice", nil)
	require.NoError(t, err)

	isNew, err := views.Record(context.Background(), post.ID, "alice", nil)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.EqualValues(t, 1, postViews(t, db, post.ID))

	var count int64
	require.NoError(t, db.Model(&models.PostViewLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordDistinctViewersCountSeparately(t *testing.T) {
	views, db, post := setupViews(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		isNew, err := views.Record(context.Background(), post.ID, name, nil)
		require.NoError(t, err)
		assert.True(t, isNew)
	}
	assert.EqualValues(t, 3, postViews(t, db, post.ID))
}

func TestViewLogsNewestFirst(t *testing.T) {
	views, _, post := setupViews(t)

	_, err := views.Record(context.Background(), post.ID, "alice", nil)
	require.NoError(t, err)
	_, err = views.Record(context.Background(), post.ID, "bob", nil)
	require.NoError(t, err)

	logs, err := views.Logs(context.Background(), post.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	all, err := views.Logs(context.Background(), post.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestViewLogsByUserAcrossPosts(t *testing.T) {
	views, db, post := setupViews(t)
	other := models.Post{Number: 2, Title: "Second", Content: "World"}
	require.NoError(t, db.Create(&other).Error)

	_, err := views.Record(context.Background(), post.ID, "alice", nil)
	require.NoError(t, err)
	_, err = views.Record(context.Background(), other.ID, "alice", nil)
	require.NoError(t, err)
	_, err = views.Record(context.Background(), post.ID, "bob", nil)
	require.NoError(t, err)

	logs, err := views.LogsByUser(context.Background(), "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, "alice", l.Username)
	}

	limited, err := views.LogsByUser(context.Background(), "alice", 1, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
