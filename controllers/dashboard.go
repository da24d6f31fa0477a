// controllers/dashboard.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"scholar-review-api/config"
	"scholar-review-api/services"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns workload and financial summaries. Editors and admins
// get the platform-wide view; authors get a summary of their own work.
func GetDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reports := services.NewReportService(config.DB)

	if !user.CanReview() {
		summary, err := reports.AuthorSummary(user.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
		return
	}

	counts, err := reports.CountsByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count publications"})
		return
	}

	tallies, err := reports.EditorActionTallies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally editor actions"})
		return
	}

	totals, err := reports.PaymentTotalsByType()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_counts":  counts,
		"editor_actions": tallies,
		"payment_totals": totals,
	})
}

// GetMonthlyApproved returns approved-publication counts bucketed by month
// for a given year (defaults to the current year).
func GetMonthlyApproved(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 2000 && n < 3000 {
			year = n
		}
	}

	months, err := services.NewReportService(config.DB).MonthlyApproved(year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build monthly report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":   year,
		"months": months,
	})
}

// GetDualFeePayers lists authors who have successfully paid both fee types.
func GetDualFeePayers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	userIDs, err := services.NewReportService(config.DB).DualFeePayers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_ids": userIDs,
		"total":    len(userIDs),
	})
}
