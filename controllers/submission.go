// controllers/submission.go
package controllers

import (
	"errors"
	"io"
	"net/http"

	"scholar-review-api/services"

	"github.com/gin-gonic/gin"
)

type submitRequest struct {
	UseFreeReview bool    `json:"use_free_review"`
	Title         *string `json:"title"`
	Abstract      *string `json:"abstract"`
	Content       *string `json:"content"`
	Keywords      *string `json:"keywords"`
	FilePath      *string `json:"file_path"`
	VideoPath     *string `json:"video_path"`
}

// SubmitPublication moves a draft or rejected publication to pending.
// First submissions consume the publication fee; resubmissions require a
// substantive change plus either a free-review credit or a paid review fee.
func SubmitPublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req submitRequest
	// Empty body is a plain submission with no content changes.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := &services.SubmitInput{
		UseFreeReview: req.UseFreeReview,
		Title:         req.Title,
		Abstract:      req.Abstract,
		Content:       req.Content,
		Keywords:      req.Keywords,
		FilePath:      req.FilePath,
		VideoPath:     req.VideoPath,
	}

	pub, err := reviewService().SubmitForReview(id, user, in)
	if err != nil {
		abortWithTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Publication submitted for review",
		"publication": pub,
	})
}
