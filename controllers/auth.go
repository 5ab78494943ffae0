package controllers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
	"graduation-project-api/services"
	"graduation-project-api/utils"
)

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string               `json:"token"`
	User    *services.AuthResult `json:"user"`
	Message string               `json:"message"`
}

// Login handles user authentication across the admin, guest, student
// and professor identity kinds.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := authSvc.Authenticate(req.Identifier, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Resolve (or create on first login) the permission-table identity
	// so the token carries the id the authorization tables use.
	userID := 0
	if result.Role != models.RoleGuest {
		user, err := permissionSvc.EnsureUser(result.Identity, result.DisplayName, result.Role, result.EntityID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user identity"})
			return
		}
		userID = user.UserID
	}

	token, err := generateToken(userID, result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    result,
		Message: "Login successful",
	})
}

// GetProfile returns the authenticated identity.
func GetProfile(c *gin.Context) {
	actor := middleware.Actor(c)

	profile := gin.H{
		"user_id":              actor.UserID,
		"entity_id":            actor.EntityID,
		"role":                 actor.Role,
		"must_change_password": c.GetBool("mustChangePassword"),
	}

	switch actor.Role {
	case models.RoleStudent:
		var student models.Student
		if err := dbHandle(c).First(&student, "student_id = ?", actor.EntityID).Error; err == nil {
			profile["student"] = student
		}
	case models.RoleProfessor:
		var professor models.Professor
		if err := dbHandle(c).First(&professor, "professor_id = ?", actor.EntityID).Error; err == nil {
			profile["professor"] = professor
		}
	case models.RoleAdmin:
		var admin models.Admin
		if err := dbHandle(c).First(&admin, "admin_id = ?", actor.EntityID).Error; err == nil {
			profile["admin"] = admin
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// ChangePassword rehashes the caller's password and clears the forced
// change flag. The fresh token it returns no longer carries the flag.
func ChangePassword(c *gin.Context) {
	type PasswordChangeRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ok, reason := utils.ValidatePassword(req.NewPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	actor := middleware.Actor(c)
	if actor.Role == models.RoleGuest {
		c.JSON(http.StatusForbidden, gin.H{"error": "Guests cannot change passwords"})
		return
	}

	if err := authSvc.VerifyPassword(actor.Role, actor.EntityID, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	if err := authSvc.ChangePassword(actor.Role, actor.EntityID, req.NewPassword); err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	auditSvc.Record(actor, "change_password", "password changed")

	result := &services.AuthResult{
		Role:               actor.Role,
		EntityID:           actor.EntityID,
		MustChangePassword: false,
	}
	token, err := generateToken(actor.UserID, result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully", "token": token})
}

// generateToken creates the JWT carrying the session identity.
func generateToken(userID int, result *services.AuthResult) (string, error) {
	expireHours, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	if err != nil {
		expireHours = 24 // default 24 hours
	}

	claims := middleware.Claims{
		UserID:             userID,
		Role:               result.Role,
		EntityID:           result.EntityID,
		MustChangePassword: result.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
