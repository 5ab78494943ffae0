package models

import "time"

// PermissionCode is a single fine-grained capability, grantable
// directly to a user or through a role.
type PermissionCode string

const (
	PermManageUsers       PermissionCode = "manage_users"
	PermManageProjects    PermissionCode = "manage_projects"
	PermManageGallery     PermissionCode = "manage_gallery"
	PermReviewSubmissions PermissionCode = "review_submissions"
	PermSuperviseProject  PermissionCode = "supervise_projects"
	PermSubmitProject     PermissionCode = "submit_projects"
	PermCommentProjects   PermissionCode = "comment_projects"
	PermViewAuditLogs     PermissionCode = "view_audit_logs"
	PermExportData        PermissionCode = "export_data"
)

// AllPermissionCodes lists every permission seeded at startup.
var AllPermissionCodes = []PermissionCode{
	PermManageUsers,
	PermManageProjects,
	PermManageGallery,
	PermReviewSubmissions,
	PermSuperviseProject,
	PermSubmitProject,
	PermCommentProjects,
	PermViewAuditLogs,
	PermExportData,
}

// User is the identity row the permission tables hang off. It bridges
// to the Student/Professor/Admin entities through nullable foreign
// keys; authorization decisions are made against this table.
type User struct {
	UserID      int    `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username    string `gorm:"column:username;unique" json:"username"`
	DisplayName string `gorm:"column:display_name" json:"display_name"`

	StudentID   *int `gorm:"column:student_id" json:"student_id,omitempty"`
	ProfessorID *int `gorm:"column:professor_id" json:"professor_id,omitempty"`
	AdminID     *int `gorm:"column:admin_id" json:"admin_id,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Permission struct {
	PermissionID int            `gorm:"primaryKey;column:permission_id" json:"permission_id"`
	Code         PermissionCode `gorm:"column:code;unique" json:"code"`
	Description  string         `gorm:"column:description" json:"description"`
	CreateAt     time.Time      `gorm:"column:create_at" json:"create_at"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Name     string     `gorm:"column:name;unique" json:"name"`
	IsSystem bool       `gorm:"column:is_system" json:"is_system"`
	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`

	// Permissions is populated by the permission service, not a gorm
	// association; the join rows live in RolePermission.
	Permissions []Permission `gorm:"-" json:"permissions,omitempty"`
}

// RolePermission is the role/permission join row.
type RolePermission struct {
	RoleID       int `gorm:"primaryKey;column:role_id" json:"role_id"`
	PermissionID int `gorm:"primaryKey;column:permission_id" json:"permission_id"`
}

// UserRoleAssignment grants a role to a user, optionally expiring.
type UserRoleAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	UserID       int        `gorm:"column:user_id" json:"user_id"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	AssignedBy   int        `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedAt   time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// UserPermissionGrant is a direct per-user grant or deny. A matching
// unexpired row wins over anything derived from roles.
type UserPermissionGrant struct {
	GrantID      int        `gorm:"primaryKey;column:grant_id" json:"grant_id"`
	UserID       int        `gorm:"column:user_id" json:"user_id"`
	PermissionID int        `gorm:"column:permission_id" json:"permission_id"`
	IsGranted    bool       `gorm:"column:is_granted" json:"is_granted"`
	GrantedBy    int        `gorm:"column:granted_by" json:"granted_by"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`

	Permission *Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Permission) TableName() string {
	return "permissions"
}

func (Role) TableName() string {
	return "roles"
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

func (UserRoleAssignment) TableName() string {
	return "user_role_assignments"
}

func (UserPermissionGrant) TableName() string {
	return "user_permission_grants"
}
