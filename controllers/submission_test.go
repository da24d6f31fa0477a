package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"scholar-review-api/config"
	"scholar-review-api/models"
	"scholar-review-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSubmissionTest(t *testing.T) (*gin.Engine, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Publication{},
		&models.ReviewHistory{},
		&models.Payment{},
		&models.Subscription{},
		&models.Notification{},
	))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	author := models.User{FullName: "author", Email: "author@example.org", Password: "x", RoleID: models.RoleAuthor}
	require.NoError(t, db.Create(&author).Error)

	router := gin.New()
	router.POST("/publications/:id/submit", func(c *gin.Context) {
		c.Set("userID", author.UserID)
		SubmitPublication(c)
	})
	return router, &author
}

func TestSubmitAcceptsEmptyBody(t *testing.T) {
	router, author := setupSubmissionTest(t)

	id := utils.GenerateShortID()
	require.NoError(t, config.DB.Create(&models.Publication{
		PublicationID: id,
		DOI:           utils.GenerateDOI(id),
		Title:         "Draft",
		AuthorID:      author.UserID,
		Status:        models.StatusDraft,
	}).Error)
	require.NoError(t, config.DB.Create(&models.Payment{
		UserID:      author.UserID,
		Reference:   utils.GeneratePaymentReference(),
		PaymentType: models.PaymentTypePublicationFee,
		Amount:      models.PublicationFeeAmount,
		Status:      models.PaymentStatusSuccess,
	}).Error)

	// No body at all is a plain submission.
	req := httptest.NewRequest(http.MethodPost, "/publications/"+id+"/submit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stored models.Publication
	require.NoError(t, config.DB.First(&stored, "publication_id = ?", id).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	router, author := setupSubmissionTest(t)

	id := utils.GenerateShortID()
	require.NoError(t, config.DB.Create(&models.Publication{
		PublicationID: id,
		DOI:           utils.GenerateDOI(id),
		Title:         "Draft",
		AuthorID:      author.UserID,
		Status:        models.StatusDraft,
	}).Error)

	req := httptest.NewRequest(http.MethodPost, "/publications/"+id+"/submit",
		bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var stored models.Publication
	require.NoError(t, config.DB.First(&stored, "publication_id = ?", id).Error)
	assert.Equal(t, models.StatusDraft, stored.Status)
}
