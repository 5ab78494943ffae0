package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
	"graduation-project-api/services"
)

type createSubmissionRequest struct {
	DocumentPath *string `json:"document_path"`
	PosterPath   *string `json:"poster_path"`
	ReportPath   *string `json:"report_path"`
	CodePath     *string `json:"code_path"`
}

// CreateSubmission files a review request for the caller's project and
// moves it into submitted_for_review.
func CreateSubmission(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req createSubmissionRequest
	_ = c.ShouldBindJSON(&req)

	submission, err := submissionSvc.Create(actor, projectID, services.SubmissionFiles{
		DocumentPath: req.DocumentPath,
		PosterPath:   req.PosterPath,
		ReportPath:   req.ReportPath,
		CodePath:     req.CodePath,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	url := "/admin/submissions/" + strconv.Itoa(submission.SubmissionID)
	_ = notificationSvc.NotifyAdmins(dbHandle(c), "New submission for review",
		"A project was submitted for review", &url, &submission.ProjectID)

	c.JSON(http.StatusCreated, gin.H{"success": true, "submission": submission})
}

// GetSubmissions lists submissions for review; admin only (enforced in
// routing).
func GetSubmissions(c *gin.Context) {
	var statusFilter *models.SubmissionStatus
	if raw := c.Query("status"); raw != "" {
		s := models.SubmissionStatus(raw)
		statusFilter = &s
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := submissionSvc.List(statusFilter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": items})
}

// GetSubmission returns a single submission with its project.
func GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	submission, err := submissionSvc.Get(submissionID)
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

type reviewSubmissionRequest struct {
	NewStatus models.SubmissionStatus `json:"new_status" binding:"required"`
	Comments  string                  `json:"comments"`
}

// ReviewSubmission records the admin decision and applies the matching
// project workflow transition.
func ReviewSubmission(c *gin.Context) {
	actor := middleware.Actor(c)
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	var req reviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc.Review(actor, submissionID, req.NewStatus, req.Comments)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	auditSvc.Record(actor, "review_submission",
		"submission "+strconv.Itoa(submissionID)+" -> "+string(req.NewStatus))
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": submission})
}
