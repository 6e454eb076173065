package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

func newTestProfileRepo(t *testing.T) ProfileRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ProfileDocument{}))
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM profile_documents").Error
	})
	return NewProfileRepository(db)
}

func TestProfileGetMissingIsRecordNotFound(t *testing.T) {
	repo := newTestProfileRepo(t)

	_, err := repo.Get(context.Background(), models.ProfileKey)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileSaveAndLoad(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	document := models.ProfileDocument{
		Key:  models.ProfileKey,
		Data: datatypes.JSON(`{"institute_name":"Sunrise Public School"}`),
	}
	require.NoError(t, repo.Save(ctx, &document))

	loaded, err := repo.Get(ctx, models.ProfileKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"institute_name":"Sunrise Public School"}`, string(loaded.Data))
	require.False(t, loaded.UpdatedAt.IsZero())
}

func TestProfileSaveUpserts(t *testing.T) {
	repo := newTestProfileRepo(t)
	ctx := context.Background()

	first := models.ProfileDocument{Key: models.ProfileKey, Data: datatypes.JSON(`{"v":1}`)}
	require.NoError(t, repo.Save(ctx, &first))

	second := models.ProfileDocument{Key: models.ProfileKey, Data: datatypes.JSON(`{"v":2}`)}
	require.NoError(t, repo.Save(ctx, &second))

	loaded, err := repo.Get(ctx, models.ProfileKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":2}`, string(loaded.Data))

	var count int64
	// Two saves under one key must leave exactly one row.
	db := gormDB(t, repo)
	require.NoError(t, db.Model(&models.ProfileDocument{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func gormDB(t *testing.T, repo ProfileRepository) *gorm.DB {
	t.Helper()
	concrete, ok := repo.(*profileRepository)
	require.True(t, ok)
	return concrete.db
}
