package services

import (
	"fmt"
	"time"

	"scholar-review-api/models"

	"gorm.io/gorm"
)

// ReportService is the read side over publications, review history and
// payments. It only reflects committed state and never mutates anything.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type MonthlyCount struct {
	Month time.Month `json:"month"`
	Count int64      `json:"count"`
}

type EditorTally struct {
	EditorID int    `gorm:"column:editor_id" json:"editor_id"`
	Action   string `gorm:"column:action" json:"action"`
	Count    int64  `gorm:"column:count" json:"count"`
}

type PaymentTotal struct {
	PaymentType string  `gorm:"column:payment_type" json:"payment_type"`
	Total       float64 `gorm:"column:total" json:"total"`
	Count       int64   `gorm:"column:count" json:"count"`
}

// CountsByStatus returns publication counts keyed by workflow status.
func (s *ReportService) CountsByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	if err := s.db.Model(&models.Publication{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count publications by status: %w", err)
	}

	counts := map[string]int64{
		models.StatusDraft:       0,
		models.StatusPending:     0,
		models.StatusUnderReview: 0,
		models.StatusRejected:    0,
		models.StatusApproved:    0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// MonthlyApproved buckets approved publications of a year by the month of
// their publication date. Bucketing happens in Go so the query stays portable
// across the MySQL and SQLite dialects.
func (s *ReportService) MonthlyApproved(year int) ([]MonthlyCount, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)

	var dates []time.Time
	if err := s.db.Model(&models.Publication{}).
		Where("status = ? AND publication_date >= ? AND publication_date < ?",
			models.StatusApproved, start, end).
		Pluck("publication_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to load approved publications: %w", err)
	}

	buckets := make([]MonthlyCount, 12)
	for i := range buckets {
		buckets[i].Month = time.Month(i + 1)
	}
	for _, d := range dates {
		buckets[d.Month()-1].Count++
	}
	return buckets, nil
}

// EditorActionTallies aggregates the review history per editor and action.
func (s *ReportService) EditorActionTallies() ([]EditorTally, error) {
	var tallies []EditorTally
	if err := s.db.Model(&models.ReviewHistory{}).
		Select("editor_id, action, COUNT(*) AS count").
		Where("editor_id IS NOT NULL").
		Group("editor_id, action").
		Order("editor_id, action").
		Scan(&tallies).Error; err != nil {
		return nil, fmt.Errorf("failed to tally editor actions: %w", err)
	}
	return tallies, nil
}

// PaymentTotalsByType sums successful payments per fee type.
func (s *ReportService) PaymentTotalsByType() ([]PaymentTotal, error) {
	var totals []PaymentTotal
	if err := s.db.Model(&models.Payment{}).
		Select("payment_type, SUM(amount) AS total, COUNT(*) AS count").
		Where("status = ?", models.PaymentStatusSuccess).
		Group("payment_type").
		Order("payment_type").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to total payments: %w", err)
	}
	return totals, nil
}

// DualFeePayers lists users holding successful payments of both fee types.
func (s *ReportService) DualFeePayers() ([]int, error) {
	var userIDs []int
	if err := s.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusSuccess).
		Group("user_id").
		Having("COUNT(DISTINCT payment_type) = 2").
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to find dual fee payers: %w", err)
	}
	return userIDs, nil
}

// AuthorSummary returns the per-author dashboard numbers.
func (s *ReportService) AuthorSummary(userID int) (map[string]int64, error) {
	summary := map[string]int64{}

	var total int64
	if err := s.db.Model(&models.Publication{}).
		Where("author_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count author publications: %w", err)
	}
	summary["total"] = total

	for _, status := range []string{models.StatusDraft, models.StatusPending, models.StatusUnderReview, models.StatusRejected, models.StatusApproved} {
		var n int64
		if err := s.db.Model(&models.Publication{}).
			Where("author_id = ? AND status = ?", userID, status).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count author publications: %w", err)
		}
		summary[status] = n
	}
	return summary, nil
}
