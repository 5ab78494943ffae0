package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"graduation-project-api/config"
	"graduation-project-api/services"
)

// Package-level services wired once at startup.
var (
	authSvc         *services.AuthService
	permissionSvc   *services.PermissionService
	notificationSvc *services.NotificationService
	workflowSvc     *services.WorkflowService
	submissionSvc   *services.SubmissionService
	commentSvc      *services.CommentService
	dashboardSvc    *services.DashboardService
	auditSvc        *services.AuditService
)

// Init builds the service graph over the shared database handle.
func Init(db *gorm.DB) {
	authSvc = services.NewAuthService(db)
	permissionSvc = services.NewPermissionService(db)
	notificationSvc = services.NewNotificationService(db)
	workflowSvc = services.NewWorkflowService(db, notificationSvc)
	submissionSvc = services.NewSubmissionService(db, workflowSvc)
	commentSvc = services.NewCommentService(db)
	dashboardSvc = services.NewDashboardService(db)
	auditSvc = services.NewAuditService(db)

	workflowSvc.OnChange(dashboardSvc.Invalidate)
}

// PermissionSvc exposes the permission service for route middleware.
func PermissionSvc() *services.PermissionService {
	return permissionSvc
}

func dbHandle(_ *gin.Context) *gorm.DB { return config.DB }

// apiEnvelope is the public API response contract.
func apiEnvelope(data interface{}, message string) gin.H {
	return gin.H{
		"success":   true,
		"data":      data,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
