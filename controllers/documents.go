package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
)

// artifactKinds maps the URL segment to the project column updated on
// direct uploads.
var artifactKinds = map[string]string{
	"document": "document_path",
	"poster":   "poster_path",
	"report":   "report_path",
	"code":     "code_path",
}

func uploadRoot() string {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	return root
}

// UploadProjectDocument stores an artifact for a project the caller
// participates in. The stored name is a uuid so originals never
// collide; the original filename survives only in the response.
func UploadProjectDocument(c *gin.Context) {
	actor := middleware.Actor(c)
	project, ok := loadProjectForActor(c, actor)
	if !ok {
		return
	}
	if actor.Role == models.RoleGuest {
		c.JSON(http.StatusForbidden, gin.H{"error": "guests cannot upload"})
		return
	}

	kind := c.Param("kind")
	column, known := artifactKinds[kind]
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	storedName := uuid.NewString() + ext
	dir := filepath.Join(uploadRoot(), "projects", kind)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare upload directory"})
		return
	}

	fullPath := filepath.Join(dir, storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	if err := dbHandle(c).Model(&models.Project{}).
		Where("project_id = ?", project.ProjectID).
		Updates(map[string]any{column: fullPath, "update_at": time.Now()}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"stored_path":   fullPath,
		"original_name": file.Filename,
	})
}

// DownloadProjectDocument serves a stored artifact to a participant.
func DownloadProjectDocument(c *gin.Context) {
	actor := middleware.Actor(c)
	project, ok := loadProjectForActor(c, actor)
	if !ok {
		return
	}

	kind := c.Param("kind")
	var path *string
	switch kind {
	case "document":
		path = project.DocumentPath
	case "poster":
		path = project.PosterPath
	case "report":
		path = project.ReportPath
	case "code":
		path = project.CodePath
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}

	if path == nil || *path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not uploaded"})
		return
	}
	c.FileAttachment(*path, filepath.Base(*path))
}
