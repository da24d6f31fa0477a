package services

import (
	"testing"
	"time"

	"scholar-review-api/models"
	"scholar-review-api/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedApproved(t *testing.T, db *gorm.DB, author *models.User, published time.Time) {
	t.Helper()
	id := utils.GenerateShortID()
	require.NoError(t, db.Create(&models.Publication{
		PublicationID:   id,
		DOI:             utils.GenerateDOI(id),
		Title:           "Approved " + id,
		AuthorID:        author.UserID,
		Status:          models.StatusApproved,
		PublicationDate: &published,
	}).Error)
}

func TestCountsByStatus(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author", models.RoleAuthor)

	createPublication(t, db, author, models.StatusDraft)
	createPublication(t, db, author, models.StatusDraft)
	createPublication(t, db, author, models.StatusPending)
	createPublication(t, db, author, models.StatusRejected)

	counts, err := NewReportService(db).CountsByStatus()
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[models.StatusDraft])
	assert.Equal(t, int64(1), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusRejected])
	// Absent statuses report zero instead of missing keys.
	assert.Equal(t, int64(0), counts[models.StatusUnderReview])
	assert.Equal(t, int64(0), counts[models.StatusApproved])
}

func TestMonthlyApproved(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author", models.RoleAuthor)

	seedApproved(t, db, author, time.Date(2026, time.March, 5, 10, 0, 0, 0, time.Local))
	seedApproved(t, db, author, time.Date(2026, time.March, 20, 10, 0, 0, 0, time.Local))
	seedApproved(t, db, author, time.Date(2026, time.November, 1, 10, 0, 0, 0, time.Local))
	// Outside the requested year.
	seedApproved(t, db, author, time.Date(2025, time.December, 31, 10, 0, 0, 0, time.Local))

	months, err := NewReportService(db).MonthlyApproved(2026)
	require.NoError(t, err)
	require.Len(t, months, 12)

	assert.Equal(t, int64(2), months[time.March-1].Count)
	assert.Equal(t, int64(1), months[time.November-1].Count)
	assert.Equal(t, int64(0), months[time.December-1].Count)
}

func TestEditorActionTallies(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	author := createUser(t, db, "author", models.RoleAuthor)
	editor := createUser(t, db, "editor", models.RoleEditor)

	first := createPublication(t, db, author, models.StatusPending)
	_, err := svc.EditorReview(first.PublicationID, editor, ActionUnderReview, "")
	require.NoError(t, err)
	_, err = svc.EditorReview(first.PublicationID, editor, ActionApprove, "")
	require.NoError(t, err)

	second := createPublication(t, db, author, models.StatusPending)
	_, err = svc.EditorReview(second.PublicationID, editor, ActionUnderReview, "")
	require.NoError(t, err)

	tallies, err := NewReportService(db).EditorActionTallies()
	require.NoError(t, err)
	require.Len(t, tallies, 2)

	byAction := map[string]int64{}
	for _, tally := range tallies {
		assert.Equal(t, editor.UserID, tally.EditorID)
		byAction[tally.Action] = tally.Count
	}
	assert.Equal(t, int64(2), byAction[models.ReviewActionUnderReview])
	assert.Equal(t, int64(1), byAction[models.ReviewActionApproved])
}

func TestPaymentTotalsAndDualFeePayers(t *testing.T) {
	db := setupTestDB(t)
	single := createUser(t, db, "single", models.RoleAuthor)
	dual := createUser(t, db, "dual", models.RoleAuthor)

	createSuccessPayment(t, db, single, models.PaymentTypePublicationFee, nil)
	createSuccessPayment(t, db, dual, models.PaymentTypePublicationFee, nil)
	createSuccessPayment(t, db, dual, models.PaymentTypeReviewFee, nil)

	// Unpaid attempts never count.
	require.NoError(t, db.Create(&models.Payment{
		UserID:      single.UserID,
		Reference:   utils.GeneratePaymentReference(),
		PaymentType: models.PaymentTypeReviewFee,
		Amount:      models.ReviewFeeAmount,
		Status:      models.PaymentStatusFailed,
	}).Error)

	reports := NewReportService(db)

	totals, err := reports.PaymentTotalsByType()
	require.NoError(t, err)
	require.Len(t, totals, 2)
	byType := map[string]PaymentTotal{}
	for _, total := range totals {
		byType[total.PaymentType] = total
	}
	assert.Equal(t, 2*models.PublicationFeeAmount, byType[models.PaymentTypePublicationFee].Total)
	assert.Equal(t, int64(2), byType[models.PaymentTypePublicationFee].Count)
	assert.Equal(t, models.ReviewFeeAmount, byType[models.PaymentTypeReviewFee].Total)

	payers, err := reports.DualFeePayers()
	require.NoError(t, err)
	assert.Equal(t, []int{dual.UserID}, payers)
}

func TestAuthorSummary(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author", models.RoleAuthor)
	other := createUser(t, db, "other", models.RoleAuthor)

	createPublication(t, db, author, models.StatusDraft)
	createPublication(t, db, author, models.StatusApproved)
	createPublication(t, db, author, models.StatusApproved)
	createPublication(t, db, other, models.StatusDraft)

	summary, err := NewReportService(db).AuthorSummary(author.UserID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary["total"])
	assert.Equal(t, int64(1), summary[models.StatusDraft])
	assert.Equal(t, int64(2), summary[models.StatusApproved])
	assert.Equal(t, int64(0), summary[models.StatusPending])
}
