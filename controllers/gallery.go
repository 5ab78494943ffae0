package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"graduation-project-api/models"
)

// The public gallery API serves only publicly visible projects and
// wraps every response in {success, data, message, timestamp}.

// GetPublicProjects returns a paginated page of the gallery.
func GetPublicProjects(c *gin.Context) {
	db := dbHandle(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := db.Model(&models.Project{}).
		Where("delete_at IS NULL AND is_publicly_visible = ?", true)
	if year := c.Query("academic_year"); year != "" {
		q = q.Where("academic_year = ?", year)
	}
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("title LIKE ? OR keywords LIKE ? OR abstract LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	var projects []models.Project
	if err := q.Preload("Students.Student").Preload("Supervisor").
		Order("project_id DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, apiEnvelope(gin.H{
		"projects":  projects,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}, "ok"))
}

// GetPublicProject returns one gallery project.
func GetPublicProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid project id"})
		return
	}

	var project models.Project
	if err := dbHandle(c).Preload("Students.Student").Preload("Supervisor").
		First(&project, "project_id = ? AND delete_at IS NULL AND is_publicly_visible = ?", id, true).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
		return
	}

	c.JSON(http.StatusOK, apiEnvelope(project, "ok"))
}

// GetPublicStatistics serves the cached gallery aggregate.
func GetPublicStatistics(c *gin.Context) {
	stats, err := dashboardSvc.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, apiEnvelope(stats, "ok"))
}
