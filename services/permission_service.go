package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

// PermissionService answers "does user X have permission P". A direct
// unexpired grant or deny always wins over role-derived permissions;
// absence of any record means denied.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// HasPermission resolves the effective permission for a user id.
func (s *PermissionService) HasPermission(userID int, code models.PermissionCode) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	now := time.Now()

	var grant models.UserPermissionGrant
	err := s.db.Joins("JOIN permissions ON permissions.permission_id = user_permission_grants.permission_id").
		Where("user_permission_grants.user_id = ? AND permissions.code = ?", userID, code).
		Where("user_permission_grants.expires_at IS NULL OR user_permission_grants.expires_at > ?", now).
		Order("user_permission_grants.create_at DESC").
		First(&grant).Error
	if err == nil {
		return grant.IsGranted, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	var n int64
	err = s.db.Model(&models.UserRoleAssignment{}).
		Joins("JOIN role_permissions ON role_permissions.role_id = user_role_assignments.role_id").
		Joins("JOIN permissions ON permissions.permission_id = role_permissions.permission_id").
		Where("user_role_assignments.user_id = ? AND permissions.code = ?", userID, code).
		Where("user_role_assignments.expires_at IS NULL OR user_role_assignments.expires_at > ?", now).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasPermissionForIdentity bridges the legacy string identity plus
// session role to the integer user id the permission tables use.
// Unknown identities are denied.
func (s *PermissionService) HasPermissionForIdentity(identity string, role models.UserRole, code models.PermissionCode) (bool, error) {
	user, err := s.findUserByIdentity(identity, role)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return s.HasPermission(user.UserID, code)
}

func (s *PermissionService) findUserByIdentity(identity string, role models.UserRole) (*models.User, error) {
	var user models.User
	q := s.db.Where("username = ? AND delete_at IS NULL", identity)
	switch role {
	case models.RoleStudent:
		q = q.Where("student_id IS NOT NULL")
	case models.RoleProfessor:
		q = q.Where("professor_id IS NOT NULL")
	case models.RoleAdmin:
		q = q.Where("admin_id IS NOT NULL")
	}
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Grant records a direct grant (or deny) for a user.
func (s *PermissionService) Grant(userID int, code models.PermissionCode, granted bool, grantedBy int, expiresAt *time.Time) error {
	perm, err := s.permissionByCode(code)
	if err != nil {
		return err
	}
	g := models.UserPermissionGrant{
		UserID:       userID,
		PermissionID: perm.PermissionID,
		IsGranted:    granted,
		GrantedBy:    grantedBy,
		ExpiresAt:    expiresAt,
		CreateAt:     time.Now(),
	}
	return s.db.Create(&g).Error
}

// Revoke removes every direct grant/deny record of the permission.
func (s *PermissionService) Revoke(userID int, code models.PermissionCode) error {
	perm, err := s.permissionByCode(code)
	if err != nil {
		return err
	}
	return s.db.Where("user_id = ? AND permission_id = ?", userID, perm.PermissionID).
		Delete(&models.UserPermissionGrant{}).Error
}

// AssignRole grants a role to a user, replacing an existing assignment
// of the same role.
func (s *PermissionService) AssignRole(userID, roleID, assignedBy int, expiresAt *time.Time) error {
	var role models.Role
	if err := s.db.First(&role, "role_id = ?", roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND role_id = ?", userID, roleID).
			Delete(&models.UserRoleAssignment{}).Error; err != nil {
			return err
		}
		a := models.UserRoleAssignment{
			UserID:     userID,
			RoleID:     roleID,
			AssignedBy: assignedBy,
			AssignedAt: time.Now(),
			ExpiresAt:  expiresAt,
		}
		return tx.Create(&a).Error
	})
}

// RemoveRole drops the user's assignment of the role.
func (s *PermissionService) RemoveRole(userID, roleID int) error {
	return s.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRoleAssignment{}).Error
}

// CreateRole creates a named role with the given permission set.
func (s *PermissionService) CreateRole(name string, codes []models.PermissionCode) (*models.Role, error) {
	role := models.Role{
		Name:     name,
		IsSystem: false,
		CreateAt: time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return s.replaceRolePermissions(tx, role.RoleID, codes)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRole(role.RoleID)
}

// UpdateRolePermissions replaces the role's permission set.
func (s *PermissionService) UpdateRolePermissions(roleID int, codes []models.PermissionCode) error {
	var role models.Role
	if err := s.db.First(&role, "role_id = ?", roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.replaceRolePermissions(tx, roleID, codes)
	})
}

func (s *PermissionService) replaceRolePermissions(tx *gorm.DB, roleID int, codes []models.PermissionCode) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	for _, code := range codes {
		var perm models.Permission
		if err := tx.First(&perm, "code = ?", code).Error; err != nil {
			return fmt.Errorf("unknown permission %q: %w", code, err)
		}
		if err := tx.Create(&models.RolePermission{RoleID: roleID, PermissionID: perm.PermissionID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRole removes a role. System roles and roles with active
// (unexpired) assignments are refused.
func (s *PermissionService) DeleteRole(roleID int) error {
	var role models.Role
	if err := s.db.First(&role, "role_id = ?", roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	var active int64
	if err := s.db.Model(&models.UserRoleAssignment{}).
		Where("role_id = ?", roleID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return ErrRoleInUse
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.UserRoleAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, "role_id = ?", roleID).Error
	})
}

// GetRole returns a role with its permission set populated.
func (s *PermissionService) GetRole(roleID int) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, "role_id = ?", roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var perms []models.Permission
	if err := s.db.Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error; err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

// ListRoles returns all roles with permissions populated.
func (s *PermissionService) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("role_id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	for i := range roles {
		full, err := s.GetRole(roles[i].RoleID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = full.Permissions
	}
	return roles, nil
}

// defaultRolePermissions is the fixed permission set each system role
// is seeded with.
var defaultRolePermissions = map[string][]models.PermissionCode{
	"Student": {
		models.PermSubmitProject,
		models.PermCommentProjects,
	},
	"Professor": {
		models.PermSuperviseProject,
		models.PermCommentProjects,
	},
	"Admin": {
		models.PermManageUsers,
		models.PermManageProjects,
		models.PermManageGallery,
		models.PermReviewSubmissions,
		models.PermCommentProjects,
		models.PermViewAuditLogs,
		models.PermExportData,
	},
}

// Seed creates one permission row per code and the three system roles
// with their default permission sets. Safe to call on every startup.
func (s *PermissionService) Seed() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, code := range models.AllPermissionCodes {
			perm := models.Permission{Code: code, CreateAt: time.Now()}
			if err := tx.Where("code = ?", code).FirstOrCreate(&perm).Error; err != nil {
				return err
			}
		}

		for _, name := range []string{"Student", "Professor", "Admin"} {
			role := models.Role{Name: name, IsSystem: true, CreateAt: time.Now()}
			if err := tx.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
				return err
			}

			var existing int64
			if err := tx.Model(&models.RolePermission{}).
				Where("role_id = ?", role.RoleID).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			if err := s.replaceRolePermissions(tx, role.RoleID, defaultRolePermissions[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PermissionService) permissionByCode(code models.PermissionCode) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.First(&perm, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("unknown permission %q", code)
		}
		return nil, err
	}
	return &perm, nil
}

// EnsureUser finds or creates the permission-table identity for an
// authenticated entity and assigns the matching system role on first
// sight.
func (s *PermissionService) EnsureUser(identity, displayName string, role models.UserRole, entityID int) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND delete_at IS NULL", identity).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		Username:    identity,
		DisplayName: displayName,
		CreateAt:    time.Now(),
	}
	switch role {
	case models.RoleStudent:
		user.StudentID = &entityID
	case models.RoleProfessor:
		user.ProfessorID = &entityID
	case models.RoleAdmin:
		user.AdminID = &entityID
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	roleName := map[models.UserRole]string{
		models.RoleStudent:   "Student",
		models.RoleProfessor: "Professor",
		models.RoleAdmin:     "Admin",
	}[role]
	if roleName != "" {
		var systemRole models.Role
		if err := s.db.First(&systemRole, "name = ?", roleName).Error; err != nil {
			log.Printf("system role %q not found for new user %s: %v", roleName, identity, err)
		} else if err := s.AssignRole(user.UserID, systemRole.RoleID, user.UserID, nil); err != nil {
			log.Printf("assigning role %q to new user %s: %v", roleName, identity, err)
		}
	}
	return &user, nil
}
