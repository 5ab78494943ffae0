package controllers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
)

// ExportProjectsCSV streams every non-deleted project as a CSV
// download with a fixed header row.
func ExportProjectsCSV(c *gin.Context) {
	actor := middleware.Actor(c)

	var projects []models.Project
	if err := dbHandle(c).Preload("Supervisor").
		Where("delete_at IS NULL").
		Order("project_id ASC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"project_id", "title", "academic_year", "status",
		"supervisor", "grade", "publicly_visible",
		"submission_for_review_date", "defense_date",
	}
	if err := w.Write(header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, p := range projects {
		supervisor := ""
		if p.Supervisor != nil {
			supervisor = p.Supervisor.DisplayName()
		}
		grade := ""
		if p.Grade != nil {
			grade = *p.Grade
		}
		row := []string{
			strconv.Itoa(p.ProjectID),
			p.Title,
			p.AcademicYear,
			string(p.Status),
			supervisor,
			grade,
			strconv.FormatBool(p.IsPubliclyVisible),
			formatDate(p.SubmissionForReviewDate),
			formatDate(p.DefenseDate),
		}
		if err := w.Write(row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "export_projects", "csv export")

	filename := "projects-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
