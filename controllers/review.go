// controllers/review.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// ReviewPublication performs an editor action on a publication:
// "under_review" claims a pending submission, "approve" and "reject" close
// out an active review. Rejections require a note.
func ReviewPublication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pub, err := reviewService().EditorReview(id, user, req.Action, req.Note)
	if err != nil {
		abortWithTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Review action applied",
		"publication": pub,
	})
}
