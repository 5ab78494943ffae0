package models

import "time"

// SystemAuditLog is an append-only record of a sensitive action
// performed anywhere in the system. Rows are never mutated.
type SystemAuditLog struct {
	AuditID   int       `gorm:"primaryKey;column:audit_id" json:"audit_id"`
	ActorID   int       `gorm:"column:actor_id" json:"actor_id"`
	ActorRole UserRole  `gorm:"column:actor_role" json:"actor_role"`
	Action    string    `gorm:"column:action" json:"action"`
	Detail    string    `gorm:"column:detail" json:"detail"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SystemAuditLog) TableName() string { return "system_audit_logs" }
