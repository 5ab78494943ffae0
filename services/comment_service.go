package services

import (
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CanUserComment applies the commenting rules: admins always, students
// only on their own project, professors only when supervising or
// evaluating. Everyone else, including guests, is denied.
func (s *CommentService) CanUserComment(actor Actor, project *models.Project) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return project.HasStudent(actor.EntityID)
	case models.RoleProfessor:
		return project.IsSupervisedBy(actor.EntityID)
	default:
		return false
	}
}

// Add creates a comment or a reply. Threads are two levels deep:
// replying to a reply is rejected. Only professors and admins may flag
// a comment as requiring student acknowledgment.
func (s *CommentService) Add(actor Actor, projectID int, parentID *int, content string, requiresAck bool) (*models.ProjectComment, error) {
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if !s.CanUserComment(actor, project) {
		return nil, ErrForbidden
	}

	if parentID != nil {
		var parent models.ProjectComment
		if err := s.db.First(&parent, "comment_id = ? AND project_id = ?", *parentID, projectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, ErrReplyDepthExceeded
		}
	}

	if requiresAck && actor.Role == models.RoleStudent {
		requiresAck = false
	}

	comment := models.ProjectComment{
		ProjectID:                     projectID,
		ParentID:                      parentID,
		AuthorID:                      actor.EntityID,
		AuthorRole:                    actor.Role,
		Content:                       content,
		Visibility:                    models.CommentActive,
		RequiresStudentAcknowledgment: requiresAck,
		CreateAt:                      time.Now(),
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Edit updates a comment's content. Only the original author may edit.
func (s *CommentService) Edit(actor Actor, commentID int, content string) error {
	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.EntityID || comment.AuthorRole != actor.Role {
		return ErrForbidden
	}

	now := time.Now()
	return s.db.Model(&models.ProjectComment{}).
		Where("comment_id = ?", commentID).
		Updates(map[string]any{"content": content, "edited_at": now}).Error
}

// Delete soft-deletes a comment by flipping its visibility. The row is
// never physically removed. Allowed for the author, any admin, or a
// professor supervising or evaluating the project.
func (s *CommentService) Delete(actor Actor, commentID int) error {
	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}

	allowed := comment.AuthorID == actor.EntityID && comment.AuthorRole == actor.Role
	if !allowed && actor.Role == models.RoleAdmin {
		allowed = true
	}
	if !allowed && actor.Role == models.RoleProfessor {
		project, err := s.loadProject(comment.ProjectID)
		if err != nil {
			return err
		}
		allowed = project.IsSupervisedBy(actor.EntityID)
	}
	if !allowed {
		return ErrForbidden
	}

	return s.db.Model(&models.ProjectComment{}).
		Where("comment_id = ?", commentID).
		Update("visibility", models.CommentSoftDeleted).Error
}

// Acknowledge records a one-way student sign-off on a comment flagged
// as requiring acknowledgment. Only a student owning the project may
// acknowledge, and only once.
func (s *CommentService) Acknowledge(actor Actor, commentID int) error {
	if actor.Role != models.RoleStudent {
		return ErrForbidden
	}

	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}
	if !comment.RequiresStudentAcknowledgment {
		return ErrForbidden
	}
	if comment.AcknowledgedAt != nil {
		return ErrAlreadyAcknowledged
	}

	project, err := s.loadProject(comment.ProjectID)
	if err != nil {
		return err
	}
	if !project.HasStudent(actor.EntityID) {
		return ErrForbidden
	}

	now := time.Now()
	return s.db.Model(&models.ProjectComment{}).
		Where("comment_id = ? AND acknowledged_at IS NULL", commentID).
		Updates(map[string]any{"acknowledged_at": now, "acknowledged_by": actor.EntityID}).Error
}

// ListForProject returns the visible comment thread: top-level
// comments oldest first, each with its visible replies. Soft-deleted
// comments never appear, regardless of caller role.
func (s *CommentService) ListForProject(projectID int) ([]models.ProjectComment, error) {
	var all []models.ProjectComment
	if err := s.db.Where("project_id = ? AND visibility = ?", projectID, models.CommentActive).
		Order("create_at ASC, comment_id ASC").
		Find(&all).Error; err != nil {
		return nil, err
	}

	byParent := make(map[int][]models.ProjectComment)
	var top []models.ProjectComment
	for _, c := range all {
		if c.ParentID == nil {
			top = append(top, c)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}
	for i := range top {
		top[i].Replies = byParent[top[i].CommentID]
	}
	return top, nil
}

func (s *CommentService) loadProject(projectID int) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Students").
		First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *CommentService) loadComment(commentID int) (*models.ProjectComment, error) {
	var comment models.ProjectComment
	if err := s.db.First(&comment, "comment_id = ? AND visibility = ?", commentID, models.CommentActive).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}
