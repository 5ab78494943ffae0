package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the application uses.
// Called once at startup and by the test harness.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Student{},
		&Professor{},
		&Admin{},
		&User{},
		&Permission{},
		&Role{},
		&RolePermission{},
		&UserRoleAssignment{},
		&UserPermissionGrant{},
		&Project{},
		&ProjectStudent{},
		&ProjectActivityLog{},
		&ProjectSubmission{},
		&ProjectComment{},
		&Notification{},
		&SystemAuditLog{},
	)
}
