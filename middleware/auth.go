package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"graduation-project-api/config"
	"graduation-project-api/models"
	"graduation-project-api/services"
)

// Claims is the request-scoped identity carried in the bearer token:
// the permission-table user id, the coarse session role, the id within
// the role's own table, and the forced password change flag.
type Claims struct {
	UserID             int             `json:"user_id"`
	Role               models.UserRole `json:"role"`
	EntityID           int             `json:"entity_id"`
	MustChangePassword bool            `json:"must_change_password"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the JWT token and loads the identity into
// the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Guests carry no backing row; everyone else must still exist.
		if claims.Role != models.RoleGuest {
			var user models.User
			if err := config.DB.Where("user_id = ? AND delete_at IS NULL", claims.UserID).First(&user).Error; err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				c.Abort()
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("entityID", claims.EntityID)
		c.Set("mustChangePassword", claims.MustChangePassword)

		c.Next()
	}
}

// RequireRole checks that the session role is one of the given roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		role := roleVal.(models.UserRole)
		allowed := false
		for _, r := range roles {
			if role == r {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermission resolves the fine-grained permission for the
// authenticated user. Absence of any record denies.
func RequirePermission(permissions *services.PermissionService, code models.PermissionCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")
		ok, err := permissions.HasPermission(userID, code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "permission check failed"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePasswordChanged blocks accounts still carrying the forced
// password change flag. The change-password route itself is exempted
// by not mounting this middleware on it.
func RequirePasswordChanged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("mustChangePassword") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Password change required before continuing"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORSMiddleware allows the configured frontend origins.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowed == "" || allowed == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			for _, o := range strings.Split(allowed, ",") {
				if strings.TrimSpace(o) == origin {
					c.Header("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Actor builds the service-layer actor from the gin context.
func Actor(c *gin.Context) services.Actor {
	role, _ := c.Get("role")
	userRole, _ := role.(models.UserRole)
	return services.Actor{
		UserID:   c.GetInt("userID"),
		EntityID: c.GetInt("entityID"),
		Role:     userRole,
	}
}
