package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
	"graduation-project-api/utils"
)

type adminProjectRequest struct {
	Title        string `json:"title" binding:"required"`
	Abstract     string `json:"abstract"`
	Keywords     string `json:"keywords"`
	AcademicYear string `json:"academic_year"`
	SupervisorID int    `json:"supervisor_id" binding:"required"`
	EvaluatorID  *int   `json:"evaluator_id"`
	StudentIDs   []int  `json:"student_ids" binding:"required"`
}

// AdminCreateProject creates a project directly in approved status,
// skipping the proposal step.
func AdminCreateProject(c *gin.Context) {
	actor := middleware.Actor(c)

	var req adminProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.StudentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one student is required"})
		return
	}

	db := dbHandle(c)
	now := time.Now()
	project := models.Project{
		Title:        utils.SanitizeInput(req.Title),
		Abstract:     utils.SanitizeInput(req.Abstract),
		Keywords:     utils.SanitizeInput(req.Keywords),
		AcademicYear: utils.SanitizeInput(req.AcademicYear),
		Status:       models.StatusApproved,
		SupervisorID: req.SupervisorID,
		EvaluatorID:  req.EvaluatorID,
		CreateAt:     now,
	}
	if err := db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, sid := range req.StudentIDs {
		link := models.ProjectStudent{ProjectID: project.ProjectID, StudentID: sid, CreateAt: now}
		if err := db.Create(&link).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	auditSvc.Record(actor, "create_project", project.Title)
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": project})
}

// AdminUpdateProject edits project metadata; status is never touched
// here, only through transitions.
func AdminUpdateProject(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Title        *string `json:"title"`
		Abstract     *string `json:"abstract"`
		Keywords     *string `json:"keywords"`
		AcademicYear *string `json:"academic_year"`
		SupervisorID *int    `json:"supervisor_id"`
		EvaluatorID  *int    `json:"evaluator_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{"update_at": time.Now()}
	if req.Title != nil {
		updates["title"] = utils.SanitizeInput(*req.Title)
	}
	if req.Abstract != nil {
		updates["abstract"] = utils.SanitizeInput(*req.Abstract)
	}
	if req.Keywords != nil {
		updates["keywords"] = utils.SanitizeInput(*req.Keywords)
	}
	if req.AcademicYear != nil {
		updates["academic_year"] = utils.SanitizeInput(*req.AcademicYear)
	}
	if req.SupervisorID != nil {
		updates["supervisor_id"] = *req.SupervisorID
	}
	if req.EvaluatorID != nil {
		updates["evaluator_id"] = *req.EvaluatorID
	}

	res := dbHandle(c).Model(&models.Project{}).
		Where("project_id = ? AND delete_at IS NULL", projectID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	auditSvc.Record(actor, "update_project", "project "+strconv.Itoa(projectID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "project updated"})
}

type adminTransitionRequest struct {
	NewStatus models.ProjectStatus `json:"new_status" binding:"required"`
	Comments  string               `json:"comments"`
}

// AdminTransitionProject applies any legal workflow transition.
func AdminTransitionProject(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req adminTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := workflowSvc.Transition(projectID, req.NewStatus, actor, req.Comments)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	auditSvc.Record(actor, "transition_project",
		"project "+strconv.Itoa(projectID)+" -> "+string(req.NewStatus))
	c.JSON(http.StatusOK, gin.H{"success": true, "project": updated})
}

// AdminSetVisibility is the gallery escape hatch, gated on the
// manage_gallery permission in routing.
func AdminSetVisibility(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := workflowSvc.SetVisibility(projectID, *req.Visible, actor)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	auditSvc.Record(actor, "set_visibility",
		"project "+strconv.Itoa(projectID)+" visible="+strconv.FormatBool(*req.Visible))
	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}

// AdminDeleteProject soft-deletes a project. The only path that ever
// removes a project, and it still keeps the row.
func AdminDeleteProject(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	now := time.Now()
	res := dbHandle(c).Model(&models.Project{}).
		Where("project_id = ? AND delete_at IS NULL", projectID).
		Updates(map[string]any{"delete_at": now, "is_publicly_visible": false})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	dashboardSvc.Invalidate()
	auditSvc.Record(actor, "delete_project", "project "+strconv.Itoa(projectID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "project deleted"})
}

// GetProjectActivityLog returns the transition history of a project.
func GetProjectActivityLog(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	entries, err := workflowSvc.ActivityLog(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// GetAuditLogs returns system audit rows, newest first.
func GetAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := auditSvc.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": entries})
}
