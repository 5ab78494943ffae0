package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/services"
	"graduation-project-api/utils"
)

// GetProjectComments returns the visible comment thread for a project.
func GetProjectComments(c *gin.Context) {
	actor := middleware.Actor(c)
	project, ok := loadProjectForActor(c, actor)
	if !ok {
		return
	}

	comments, err := commentSvc.ListForProject(project.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type addCommentRequest struct {
	Content     string `json:"content" binding:"required"`
	ParentID    *int   `json:"parent_id"`
	RequiresAck bool   `json:"requires_student_acknowledgment"`
}

// AddComment creates a comment or reply on a project.
func AddComment(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := commentSvc.Add(actor, projectID, req.ParentID, utils.SanitizeInput(req.Content), req.RequiresAck)
	if err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

// EditComment updates a comment's content; author only.
func EditComment(c *gin.Context) {
	actor := middleware.Actor(c)
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := commentSvc.Edit(actor, commentID, utils.SanitizeInput(req.Content)); err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "comment updated"})
}

// DeleteComment soft-deletes a comment.
func DeleteComment(c *gin.Context) {
	actor := middleware.Actor(c)
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if err := commentSvc.Delete(actor, commentID); err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "comment deleted"})
}

// AcknowledgeComment records the one-way student sign-off.
func AcknowledgeComment(c *gin.Context) {
	actor := middleware.Actor(c)
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if err := commentSvc.Acknowledge(actor, commentID); err != nil {
		respondCommentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "comment acknowledged"})
}

func respondCommentError(c *gin.Context, err error) {
	switch err {
	case services.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "comment not found"})
	case services.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not permitted"})
	case services.ErrReplyDepthExceeded, services.ErrAlreadyAcknowledged:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
	}
}
