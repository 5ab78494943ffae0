package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
)

// GetDashboardStats returns the cached aggregate plus a role-specific
// slice of the caller's own workload.
func GetDashboardStats(c *gin.Context) {
	actor := middleware.Actor(c)

	stats, err := dashboardSvc.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload := gin.H{
		"totals":       stats,
		"current_date": time.Now().Format("2006-01-02"),
	}

	db := dbHandle(c)
	switch actor.Role {
	case models.RoleStudent:
		var mine int64
		db.Model(&models.ProjectStudent{}).Where("student_id = ?", actor.EntityID).Count(&mine)
		payload["my_projects"] = mine
	case models.RoleProfessor:
		var supervised int64
		db.Model(&models.Project{}).
			Where("delete_at IS NULL AND (supervisor_id = ? OR evaluator_id = ?)", actor.EntityID, actor.EntityID).
			Count(&supervised)
		var awaitingReview int64
		db.Model(&models.Project{}).
			Where("delete_at IS NULL AND supervisor_id = ? AND status = ?", actor.EntityID, models.StatusSubmittedForReview).
			Count(&awaitingReview)
		payload["supervised_projects"] = supervised
		payload["awaiting_review"] = awaitingReview
	case models.RoleAdmin:
		var pending int64
		db.Model(&models.ProjectSubmission{}).
			Where("status IN ?", []models.SubmissionStatus{models.SubmissionPending, models.SubmissionUnderReview}).
			Count(&pending)
		payload["pending_submissions"] = pending
	}

	c.JSON(http.StatusOK, gin.H{"stats": payload})
}
