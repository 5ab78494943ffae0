package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit row. Audit failures are logged but never
// fail the action being audited.
func (s *AuditService) Record(actor Actor, action, detail string) {
	entry := models.SystemAuditLog{
		ActorID:   actor.EntityID,
		ActorRole: actor.Role,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("audit record failed (action=%s): %v", action, err)
	}
}

// List returns audit rows, newest first.
func (s *AuditService) List(limit, offset int) ([]models.SystemAuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var entries []models.SystemAuditLog
	err := s.db.Order("created_at DESC, audit_id DESC").
		Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}
