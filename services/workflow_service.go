package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

// Actor identifies who is performing an operation. EntityID is the id
// within the role's own table (student_id, professor_id, admin_id);
// UserID is the permission-table identity, zero when unresolved.
type Actor struct {
	UserID   int
	EntityID int
	Role     models.UserRole
}

// allowedTransitions is the single authoritative transition table.
// Student and professor actions route through the same table as admin
// transitions; there are no side-channel status checks.
var allowedTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.StatusProposed:           {models.StatusApproved},
	models.StatusApproved:           {models.StatusInProgress},
	models.StatusInProgress:         {models.StatusCompleted},
	models.StatusCompleted:          {models.StatusSubmittedForReview},
	models.StatusSubmittedForReview: {models.StatusReviewApproved, models.StatusReviewRejected},
	models.StatusReviewApproved:     {models.StatusDefended},
	models.StatusReviewRejected:     {models.StatusSubmittedForReview},
	models.StatusDefended:           {models.StatusPublished},
	models.StatusPublished:          {},
}

// CanTransition reports whether target is in the allowed-next set of
// current.
func CanTransition(current, target models.ProjectStatus) bool {
	for _, next := range allowedTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedNext returns the allowed-next set for a status.
func AllowedNext(current models.ProjectStatus) []models.ProjectStatus {
	return allowedTransitions[current]
}

type WorkflowService struct {
	db            *gorm.DB
	notifications *NotificationService
	onChange      func() // cache invalidation hook
}

func NewWorkflowService(db *gorm.DB, notifications *NotificationService) *WorkflowService {
	return &WorkflowService{db: db, notifications: notifications}
}

// OnChange registers a hook invoked after every committed transition.
func (s *WorkflowService) OnChange(fn func()) {
	s.onChange = fn
}

// Transition loads the project and applies the requested status change.
func (s *WorkflowService) Transition(projectID int, target models.ProjectStatus, actor Actor, comments string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Students").
		First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Apply(&project, target, actor, comments)
}

// Apply performs the transition against an already-loaded project
// snapshot. The snapshot's Version field is the optimistic concurrency
// token: if another writer committed since the snapshot was read, the
// update matches zero rows and the caller gets ErrConcurrencyConflict.
func (s *WorkflowService) Apply(project *models.Project, target models.ProjectStatus, actor Actor, comments string) (*models.Project, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.ApplyIn(tx, project, target, actor, comments)
	})
	if err != nil {
		return nil, err
	}

	s.changed()

	var updated models.Project
	if err := s.db.Preload("Students").First(&updated, "project_id = ?", project.ProjectID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// ApplyIn performs the transition inside the caller's transaction so
// related writes commit or roll back as one unit. Callers owning the
// transaction invoke changed after their commit.
func (s *WorkflowService) ApplyIn(tx *gorm.DB, project *models.Project, target models.ProjectStatus, actor Actor, comments string) error {
	if !CanTransition(project.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, project.Status, target)
	}

	now := time.Now()
	oldStatus := project.Status

	updates := map[string]any{
		"status":    target,
		"version":   project.Version + 1,
		"update_at": now,
	}

	switch target {
	case models.StatusSubmittedForReview:
		updates["submission_for_review_date"] = now
	case models.StatusReviewApproved, models.StatusReviewRejected:
		updates["review_date"] = now
		updates["reviewer_id"] = actor.EntityID
		if comments != "" {
			updates["review_comments"] = comments
		}
	case models.StatusDefended:
		if project.DefenseDate == nil {
			updates["defense_date"] = now
		}
	case models.StatusPublished:
		updates["is_publicly_visible"] = true
	}

	res := tx.Model(&models.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, project.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}

	entry := models.ProjectActivityLog{
		ProjectID: project.ProjectID,
		OldStatus: oldStatus,
		NewStatus: target,
		ActorID:   actor.EntityID,
		ActorRole: string(actor.Role),
		CreatedAt: now,
	}
	if comments != "" {
		c := comments
		entry.Comments = &c
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	return s.notifyParticipants(tx, project, oldStatus, target, actor)
}

// changed fires the registered invalidation hook.
func (s *WorkflowService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ActivityLog returns the project's transition history, oldest first.
func (s *WorkflowService) ActivityLog(projectID int) ([]models.ProjectActivityLog, error) {
	var entries []models.ProjectActivityLog
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at ASC, log_id ASC").
		Find(&entries).Error
	return entries, err
}

// SetVisibility is the gallery escape hatch: admins holding the
// manage_gallery permission may toggle public visibility outside the
// normal transition path. Visibility can only be enabled once the
// project has reached its defense.
func (s *WorkflowService) SetVisibility(projectID int, visible bool, actor Actor) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if visible && project.Status != models.StatusDefended && project.Status != models.StatusPublished {
		return nil, fmt.Errorf("%w: project must be defended before it can be published", ErrInvalidTransition)
	}

	now := time.Now()
	res := s.db.Model(&models.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, project.Version).
		Updates(map[string]any{
			"is_publicly_visible": visible,
			"version":             project.Version + 1,
			"update_at":           now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	s.changed()

	project.IsPubliclyVisible = visible
	project.Version++
	project.UpdateAt = &now
	return &project, nil
}

func (s *WorkflowService) notifyParticipants(tx *gorm.DB, project *models.Project, oldStatus, newStatus models.ProjectStatus, actor Actor) error {
	if s.notifications == nil {
		return nil
	}

	title := "Project status updated"
	message := fmt.Sprintf("Project %q moved from %s to %s", project.Title, oldStatus, newStatus)
	url := fmt.Sprintf("/projects/%d", project.ProjectID)

	for _, ps := range project.Students {
		if actor.Role == models.RoleStudent && actor.EntityID == ps.StudentID {
			continue
		}
		if err := s.notifications.Notify(tx, ps.StudentID, models.RoleStudent, title, message, &url, &project.ProjectID); err != nil {
			return err
		}
	}

	if !(actor.Role == models.RoleProfessor && actor.EntityID == project.SupervisorID) {
		if err := s.notifications.Notify(tx, project.SupervisorID, models.RoleProfessor, title, message, &url, &project.ProjectID); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleDefense records the defense date for a review-approved
// project. The supervisor sets it ahead of the actual defense; the
// Defended transition keeps an already-set date.
func (s *WorkflowService) ScheduleDefense(projectID int, when time.Time, actor Actor) error {
	res := s.db.Model(&models.Project{}).
		Where("project_id = ? AND status = ? AND delete_at IS NULL", projectID, models.StatusReviewApproved).
		Updates(map[string]any{"defense_date": when, "update_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: defense can only be scheduled for review-approved projects", ErrInvalidTransition)
	}
	log.Printf("defense scheduled for project %d by %s %d", projectID, actor.Role, actor.EntityID)
	return nil
}
