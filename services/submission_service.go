package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

// SubmissionService handles review requests: a student bundles
// uploaded artifacts into a ProjectSubmission, admins review it, and
// the outcome drives the owning project's workflow status.
type SubmissionService struct {
	db       *gorm.DB
	workflow *WorkflowService
}

func NewSubmissionService(db *gorm.DB, workflow *WorkflowService) *SubmissionService {
	return &SubmissionService{db: db, workflow: workflow}
}

// SubmissionFiles carries the artifact paths attached to a submission.
type SubmissionFiles struct {
	DocumentPath *string
	PosterPath   *string
	ReportPath   *string
	CodePath     *string
}

// Create files a review request for the student's own project and
// moves the project into submitted_for_review. Valid from completed
// (first submission) and review_rejected (resubmission).
func (s *SubmissionService) Create(actor Actor, projectID int, files SubmissionFiles) (*models.ProjectSubmission, error) {
	if actor.Role != models.RoleStudent {
		return nil, ErrForbidden
	}

	var project models.Project
	if err := s.db.Preload("Students").
		First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !project.HasStudent(actor.EntityID) {
		return nil, ErrForbidden
	}

	now := time.Now()
	submission := models.ProjectSubmission{
		ProjectID:    projectID,
		StudentID:    actor.EntityID,
		Status:       models.SubmissionPending,
		DocumentPath: files.DocumentPath,
		PosterPath:   files.PosterPath,
		ReportPath:   files.ReportPath,
		CodePath:     files.CodePath,
		SubmittedAt:  now,
		CreateAt:     now,
	}

	// The submission row and the project transition commit together; a
	// rejected transition leaves no submission behind.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return s.workflow.ApplyIn(tx, &project, models.StatusSubmittedForReview, actor, "submitted for review")
	})
	if err != nil {
		return nil, err
	}
	s.workflow.changed()
	return &submission, nil
}

// Review records the admin's decision on a pending or under-review
// submission and applies the matching project transition: approved
// promotes the submission's artifact paths onto the project and moves
// it to review_approved; rejected and needs_revision move it to
// review_rejected so the student can resubmit.
func (s *SubmissionService) Review(actor Actor, submissionID int, decision models.SubmissionStatus, comments string) (*models.ProjectSubmission, error) {
	switch decision {
	case models.SubmissionUnderReview, models.SubmissionApproved,
		models.SubmissionRejected, models.SubmissionNeedsRevision:
	default:
		return nil, fmt.Errorf("%w: unsupported review decision %q", ErrInvalidTransition, decision)
	}

	var submission models.ProjectSubmission
	if err := s.db.First(&submission, "submission_id = ?", submissionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if submission.Status == models.SubmissionApproved || submission.Status == models.SubmissionRejected {
		return nil, fmt.Errorf("%w: submission already finalized", ErrInvalidTransition)
	}

	now := time.Now()
	updates := map[string]any{
		"status":      decision,
		"reviewer_id": actor.EntityID,
		"update_at":   now,
	}
	if decision != models.SubmissionUnderReview {
		updates["reviewed_at"] = now
		if comments != "" {
			updates["review_comments"] = comments
		}
	}

	// The decision and the resulting project transition commit as one
	// unit: if the transition is refused, the submission keeps its
	// previous status.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProjectSubmission{}).
			Where("submission_id = ?", submissionID).
			Updates(updates).Error; err != nil {
			return err
		}

		var target models.ProjectStatus
		switch decision {
		case models.SubmissionApproved:
			if err := s.promoteFiles(tx, &submission); err != nil {
				return err
			}
			target = models.StatusReviewApproved
		case models.SubmissionRejected, models.SubmissionNeedsRevision:
			target = models.StatusReviewRejected
		default:
			return nil
		}

		var project models.Project
		if err := tx.Preload("Students").
			First(&project, "project_id = ? AND delete_at IS NULL", submission.ProjectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		return s.workflow.ApplyIn(tx, &project, target, actor, comments)
	})
	if err != nil {
		return nil, err
	}
	if decision != models.SubmissionUnderReview {
		s.workflow.changed()
	}

	var updated models.ProjectSubmission
	if err := s.db.First(&updated, "submission_id = ?", submissionID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// promoteFiles copies the submission's artifact paths onto the
// project, keeping existing project paths when the submission lacks a
// given artifact.
func (s *SubmissionService) promoteFiles(tx *gorm.DB, submission *models.ProjectSubmission) error {
	updates := map[string]any{}
	if submission.PosterPath != nil {
		updates["poster_path"] = *submission.PosterPath
	}
	if submission.ReportPath != nil {
		updates["report_path"] = *submission.ReportPath
	}
	if submission.CodePath != nil {
		updates["code_path"] = *submission.CodePath
	}
	if submission.DocumentPath != nil {
		updates["document_path"] = *submission.DocumentPath
	}
	if len(updates) == 0 {
		return nil
	}
	updates["update_at"] = time.Now()
	return tx.Model(&models.Project{}).
		Where("project_id = ?", submission.ProjectID).
		Updates(updates).Error
}

// List returns submissions, optionally filtered by status, newest
// first.
func (s *SubmissionService) List(status *models.SubmissionStatus, limit, offset int) ([]models.ProjectSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := s.db.Preload("Project").Preload("Student")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var items []models.ProjectSubmission
	err := q.Order("submitted_at DESC, submission_id DESC").
		Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

// Get returns a single submission with its project and student.
func (s *SubmissionService) Get(submissionID int) (*models.ProjectSubmission, error) {
	var submission models.ProjectSubmission
	if err := s.db.Preload("Project").Preload("Student").
		First(&submission, "submission_id = ?", submissionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}
