package reviewControllers

import (
	"testing"

	"github.com/natrenakres/prostore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
	))
	return db
}

func createProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{Name: "widget", Slug: "widget", Category: "test", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestUpsertReviewCreatesAndAggregates(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db)

	err := UpsertReview(db, "user-1", ReviewInput{ProductID: product.ID, Title: "Good", Description: "Works well", Rating: 4})
	require.NoError(t, err)
	err = UpsertReview(db, "user-2", ReviewInput{ProductID: product.ID, Title: "Meh", Description: "Not for me", Rating: 2})
	require.NoError(t, err)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.InDelta(t, 3.0, fresh.Rating, 1e-9)
	assert.Equal(t, 2, fresh.NumReviews)
}

func TestUpsertReviewOverwritesExisting(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db)

	require.NoError(t, UpsertReview(db, "user-1", ReviewInput{ProductID: product.ID, Title: "Good", Description: "Works well", Rating: 4}))
	require.NoError(t, UpsertReview(db, "user-2", ReviewInput{ProductID: product.ID, Title: "Meh", Description: "Not for me", Rating: 2}))

	// Same user again: one row, updated rating
	require.NoError(t, UpsertReview(db, "user-2", ReviewInput{ProductID: product.ID, Title: "Better", Description: "Grew on me", Rating: 5}))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	review, err := GetUserReview(db, "user-2", product.ID)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "Better", review.Title)
	assert.Equal(t, 5, review.Rating)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.InDelta(t, 4.5, fresh.Rating, 1e-9)
	assert.Equal(t, 2, fresh.NumReviews)
}

func TestUpsertReviewInvalidRating(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db)

	err := UpsertReview(db, "user-1", ReviewInput{ProductID: product.ID, Title: "x", Description: "y", Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidRating)

	err = UpsertReview(db, "user-1", ReviewInput{ProductID: product.ID, Title: "x", Description: "y", Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestUpsertReviewUnknownProduct(t *testing.T) {
	db := newTestDB(t)

	err := UpsertReview(db, "user-1", ReviewInput{ProductID: 999, Title: "x", Description: "y", Rating: 3})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetUserReviewMissing(t *testing.T) {
	db := newTestDB(t)
	product := createProduct(t, db)

	review, err := GetUserReview(db, "user-1", product.ID)
	require.NoError(t, err)
	assert.Nil(t, review)
}
