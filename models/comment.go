package models

import "time"

// CommentVisibility is the soft-delete lifecycle state of a comment.
// Deleted comments stay in the table but never appear in listings.
type CommentVisibility string

const (
	CommentActive      CommentVisibility = "active"
	CommentSoftDeleted CommentVisibility = "deleted"
)

// ProjectComment is a two-level thread entry on a project: top-level
// comments may carry replies, replies may not.
type ProjectComment struct {
	CommentID  int      `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ProjectID  int      `gorm:"column:project_id" json:"project_id"`
	ParentID   *int     `gorm:"column:parent_id" json:"parent_id,omitempty"`
	AuthorID   int      `gorm:"column:author_id" json:"author_id"`
	AuthorRole UserRole `gorm:"column:author_role" json:"author_role"`
	Content    string   `gorm:"column:content" json:"content"`

	Visibility CommentVisibility `gorm:"column:visibility" json:"visibility"`

	RequiresStudentAcknowledgment bool       `gorm:"column:requires_student_acknowledgment" json:"requires_student_acknowledgment"`
	AcknowledgedAt                *time.Time `gorm:"column:acknowledged_at" json:"acknowledged_at,omitempty"`
	AcknowledgedBy                *int       `gorm:"column:acknowledged_by" json:"acknowledged_by,omitempty"`

	EditedAt *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`

	Replies []ProjectComment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (ProjectComment) TableName() string { return "project_comments" }
