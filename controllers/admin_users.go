package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
	"graduation-project-api/services"
	"graduation-project-api/utils"
)

type createStudentRequest struct {
	StudentNumber string  `json:"student_number" binding:"required"`
	FirstName     string  `json:"first_name" binding:"required"`
	LastName      string  `json:"last_name" binding:"required"`
	Email         string  `json:"email" binding:"required"`
	Program       *string `json:"program"`
}

// AdminCreateStudent provisions a student account with the derived
// default password and the forced-change flag set.
func AdminCreateStudent(c *gin.Context) {
	actor := middleware.Actor(c)

	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}

	defaultPassword := services.GenerateDefaultPassword(req.FirstName, req.StudentNumber)
	hash, err := services.HashPassword(defaultPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	student := models.Student{
		StudentNumber:      utils.SanitizeInput(req.StudentNumber),
		FirstName:          utils.SanitizeInput(req.FirstName),
		LastName:           utils.SanitizeInput(req.LastName),
		Email:              utils.SanitizeInput(req.Email),
		Password:           hash,
		MustChangePassword: true,
		Program:            req.Program,
		CreateAt:           time.Now(),
	}
	if err := dbHandle(c).Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := permissionSvc.EnsureUser(student.StudentNumber, student.DisplayName(), models.RoleStudent, student.StudentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to provision user identity"})
		return
	}

	auditSvc.Record(actor, "create_student", student.StudentNumber)
	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"student":          student,
		"default_password": defaultPassword,
	})
}

type createProfessorRequest struct {
	StaffNumber string  `json:"staff_number" binding:"required"`
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Department  *string `json:"department"`
}

// AdminCreateProfessor provisions a professor account.
func AdminCreateProfessor(c *gin.Context) {
	actor := middleware.Actor(c)

	var req createProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}

	defaultPassword := services.GenerateDefaultPassword(req.FirstName, req.StaffNumber)
	hash, err := services.HashPassword(defaultPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	professor := models.Professor{
		StaffNumber:        utils.SanitizeInput(req.StaffNumber),
		FirstName:          utils.SanitizeInput(req.FirstName),
		LastName:           utils.SanitizeInput(req.LastName),
		Email:              utils.SanitizeInput(req.Email),
		Password:           hash,
		MustChangePassword: true,
		Department:         req.Department,
		CreateAt:           time.Now(),
	}
	if err := dbHandle(c).Create(&professor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := permissionSvc.EnsureUser(professor.StaffNumber, professor.DisplayName(), models.RoleProfessor, professor.ProfessorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to provision user identity"})
		return
	}

	auditSvc.Record(actor, "create_professor", professor.StaffNumber)
	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"professor":        professor,
		"default_password": defaultPassword,
	})
}

// AdminListUsers returns the permission-table identities.
func AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := dbHandle(c).Where("delete_at IS NULL").Order("user_id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AdminDeactivateUser soft-deletes the permission-table identity. The
// auth middleware rejects tokens of deactivated users on the next
// request; the underlying student/professor record stays.
func AdminDeactivateUser(c *gin.Context) {
	actor := middleware.Actor(c)
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if userID == actor.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate your own account"})
		return
	}

	res := dbHandle(c).Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", userID).
		Updates(map[string]any{"delete_at": time.Now()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	auditSvc.Record(actor, "deactivate_user", "user "+strconv.Itoa(userID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deactivated"})
}

// AdminListRoles returns every role with its permission set.
func AdminListRoles(c *gin.Context) {
	roles, err := permissionSvc.ListRoles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

type roleRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Permissions []models.PermissionCode `json:"permissions"`
}

// AdminCreateRole creates a custom role.
func AdminCreateRole(c *gin.Context) {
	actor := middleware.Actor(c)

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := permissionSvc.CreateRole(utils.SanitizeInput(req.Name), req.Permissions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "create_role", role.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "role": role})
}

// AdminUpdateRolePermissions replaces a role's permission set.
func AdminUpdateRolePermissions(c *gin.Context) {
	actor := middleware.Actor(c)
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || roleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	var req struct {
		Permissions []models.PermissionCode `json:"permissions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := permissionSvc.UpdateRolePermissions(roleID, req.Permissions); err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "update_role_permissions", "role "+strconv.Itoa(roleID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role updated"})
}

// AdminDeleteRole removes a custom role. System roles and roles in use
// are refused.
func AdminDeleteRole(c *gin.Context) {
	actor := middleware.Actor(c)
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || roleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	if err := permissionSvc.DeleteRole(roleID); err != nil {
		switch err {
		case services.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
		case services.ErrSystemRole, services.ErrRoleInUse:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	auditSvc.Record(actor, "delete_role", "role "+strconv.Itoa(roleID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role deleted"})
}

type assignRoleRequest struct {
	RoleID    int        `json:"role_id" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AdminAssignRole grants a role to a user.
func AdminAssignRole(c *gin.Context) {
	actor := middleware.Actor(c)
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := permissionSvc.AssignRole(userID, req.RoleID, actor.UserID, req.ExpiresAt); err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "assign_role",
		"user "+strconv.Itoa(userID)+" role "+strconv.Itoa(req.RoleID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role assigned"})
}

// AdminRemoveRole drops a user's role assignment.
func AdminRemoveRole(c *gin.Context) {
	actor := middleware.Actor(c)
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	roleID, err := strconv.Atoi(c.Param("roleId"))
	if err != nil || roleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}

	if err := permissionSvc.RemoveRole(userID, roleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "remove_role",
		"user "+strconv.Itoa(userID)+" role "+strconv.Itoa(roleID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role removed"})
}

type grantPermissionRequest struct {
	Permission models.PermissionCode `json:"permission" binding:"required"`
	Granted    *bool                 `json:"granted" binding:"required"`
	ExpiresAt  *time.Time            `json:"expires_at"`
}

// AdminGrantPermission records a direct grant or deny for a user.
func AdminGrantPermission(c *gin.Context) {
	actor := middleware.Actor(c)
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req grantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := permissionSvc.Grant(userID, req.Permission, *req.Granted, actor.UserID, req.ExpiresAt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "grant_permission",
		"user "+strconv.Itoa(userID)+" "+string(req.Permission)+" granted="+strconv.FormatBool(*req.Granted))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "permission recorded"})
}

// AdminRevokePermission removes every direct record of a permission
// for a user.
func AdminRevokePermission(c *gin.Context) {
	actor := middleware.Actor(c)
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	code := models.PermissionCode(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permission code"})
		return
	}

	if err := permissionSvc.Revoke(userID, code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditSvc.Record(actor, "revoke_permission",
		"user "+strconv.Itoa(userID)+" "+string(code))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "permission revoked"})
}
