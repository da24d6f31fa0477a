// controllers/publication.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"scholar-review-api/config"
	"scholar-review-api/models"
	"scholar-review-api/services"
	"scholar-review-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.DB, services.NewNotifier(config.DB))
}

func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication context missing"})
		return nil, false
	}
	var user models.User
	if err := config.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

func abortWithTransitionError(c *gin.Context, err error) {
	if te, ok := services.AsTransitionError(err); ok {
		c.JSON(te.HTTPStatus(), gin.H{
			"error":          te.Message,
			"code":           te.Code,
			"field":          te.Field,
			"current_status": te.CurrentStatus,
			"target_status":  te.TargetStatus,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

type createPublicationRequest struct {
	Title        string  `json:"title" binding:"required"`
	Abstract     string  `json:"abstract" binding:"required"`
	Content      string  `json:"content"`
	Keywords     string  `json:"keywords"`
	CategoryName *string `json:"category_name"`
	FilePath     *string `json:"file_path"`
	VideoPath    *string `json:"video_path"`
}

// CreatePublication creates a new draft owned by the caller. Editors are
// notified once per publication at creation time.
func CreatePublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createPublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := utils.GenerateShortID()
	pub := models.Publication{
		PublicationID: id,
		DOI:           utils.GenerateDOI(id),
		Title:         utils.SanitizeInput(req.Title),
		Abstract:      utils.SanitizeInput(req.Abstract),
		Content:       req.Content,
		Keywords:      utils.SanitizeInput(req.Keywords),
		CategoryName:  req.CategoryName,
		FilePath:      req.FilePath,
		VideoPath:     req.VideoPath,
		AuthorID:      user.UserID,
		Status:        models.StatusDraft,
	}

	if err := config.DB.Create(&pub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create publication"})
		return
	}
	log.Printf("[CreatePublication] publication %s created by user %d", pub.PublicationID, user.UserID)

	services.NewNotifier(config.DB).NotifyNewSubmission(&pub, user)

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"publication": pub,
	})
}

// GetPublications lists publications with role-based visibility: editors and
// admins see everything, authors see their own plus any approved work.
func GetPublications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	q := config.DB.Preload("Author").Preload("Editor").Model(&models.Publication{})
	if !user.CanReview() {
		q = q.Where("author_id = ? OR status = ?", user.UserID, models.StatusApproved)
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR abstract LIKE ? OR keywords LIKE ?", like, like, like)
	}

	var publications []models.Publication
	if err := q.Order("create_at DESC").Find(&publications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch publications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publications": publications,
		"total":        len(publications),
	})
}

// GetPublication returns a single publication with its review history.
func GetPublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var pub models.Publication
	if err := config.DB.Preload("Author").Preload("Editor").
		First(&pub, "publication_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load publication"})
		return
	}

	if !user.CanReview() && pub.AuthorID != user.UserID && pub.Status != models.StatusApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	// History ordered newest first for display; storage stays append-only.
	var history []models.ReviewHistory
	if err := config.DB.Preload("Editor").
		Where("publication_id = ?", id).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		log.Printf("[GetPublication] load history for %s failed: %v", id, err)
	}

	// Count a view for readers other than the author.
	if pub.AuthorID != user.UserID {
		if err := config.DB.Model(&models.Publication{}).
			Where("publication_id = ?", id).
			Update("view_count", gorm.Expr("view_count + 1")).Error; err == nil {
			pub.ViewCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"publication":    pub,
		"review_history": history,
	})
}

type updatePublicationRequest struct {
	Title        *string `json:"title"`
	Abstract     *string `json:"abstract"`
	Content      *string `json:"content"`
	Keywords     *string `json:"keywords"`
	CategoryName *string `json:"category_name"`
	FilePath     *string `json:"file_path"`
	VideoPath    *string `json:"video_path"`
	Status       *string `json:"status"`
	IsFreeReview *bool   `json:"is_free_review"`
}

// UpdatePublication edits publication content. Authors may edit drafts only;
// editors may touch non-status fields of any publication. An author write
// that tries to move a rejected publication toward draft or pending is
// coerced into the gated resubmission path, payment gate included.
func UpdatePublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req updatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pub models.Publication
	if err := config.DB.First(&pub, "publication_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load publication"})
		return
	}

	isOwner := pub.AuthorID == user.UserID
	if !isOwner && !user.CanReview() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	// Status changes never go through the generic update path. Editors must
	// use the review endpoint; an author status write on a rejected
	// publication becomes a resubmission.
	if req.Status != nil {
		desired := strings.TrimSpace(*req.Status)
		if isOwner && pub.Status == models.StatusRejected &&
			(desired == models.StatusDraft || desired == models.StatusPending) {
			submitCoerced(c, id, user, &req)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status cannot be changed through this endpoint; use submit or review",
		})
		return
	}

	if isOwner && !user.CanReview() && pub.Status != models.StatusDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only draft publications can be edited"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.SanitizeInput(*req.Title)
	}
	if req.Abstract != nil {
		updates["abstract"] = utils.SanitizeInput(*req.Abstract)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Keywords != nil {
		updates["keywords"] = utils.SanitizeInput(*req.Keywords)
	}
	if req.CategoryName != nil {
		updates["category_name"] = *req.CategoryName
	}
	if req.FilePath != nil {
		updates["file_path"] = *req.FilePath
	}
	if req.VideoPath != nil {
		updates["video_path"] = *req.VideoPath
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := config.DB.Model(&models.Publication{}).
		Where("publication_id = ?", id).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update publication"})
		return
	}

	var updated models.Publication
	_ = config.DB.Preload("Author").Preload("Editor").
		First(&updated, "publication_id = ?", id).Error

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"publication": updated,
	})
}

func submitCoerced(c *gin.Context, id string, user *models.User, req *updatePublicationRequest) {
	in := &services.SubmitInput{
		Title:     req.Title,
		Abstract:  req.Abstract,
		Content:   req.Content,
		Keywords:  req.Keywords,
		FilePath:  req.FilePath,
		VideoPath: req.VideoPath,
	}
	if req.IsFreeReview != nil {
		in.UseFreeReview = *req.IsFreeReview
	}

	pub, err := reviewService().SubmitForReview(id, user, in)
	if err != nil {
		abortWithTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Publication resubmitted for review",
		"publication": pub,
	})
}

// DeletePublication removes a draft. Publications that have entered the
// review workflow are never deleted.
func DeletePublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var pub models.Publication
	if err := config.DB.First(&pub, "publication_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load publication"})
		return
	}

	if pub.AuthorID != user.UserID && !user.CanReview() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if pub.Status != models.StatusDraft {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only draft publications can be deleted"})
		return
	}

	if err := config.DB.Delete(&pub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete publication"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Publication deleted"})
}
