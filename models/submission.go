package models

import "time"

// SubmissionStatus is the review state of a ProjectSubmission. It is
// independent of, but informs, the owning project's status.
type SubmissionStatus string

const (
	SubmissionPending       SubmissionStatus = "pending"
	SubmissionUnderReview   SubmissionStatus = "under_review"
	SubmissionApproved      SubmissionStatus = "approved"
	SubmissionRejected      SubmissionStatus = "rejected"
	SubmissionNeedsRevision SubmissionStatus = "needs_revision"
)

// ProjectSubmission is a discrete review request bundling uploaded
// artifacts for a project.
type ProjectSubmission struct {
	SubmissionID int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ProjectID    int              `gorm:"column:project_id" json:"project_id"`
	StudentID    int              `gorm:"column:student_id" json:"student_id"`
	Status       SubmissionStatus `gorm:"column:status" json:"status"`

	DocumentPath *string `gorm:"column:document_path" json:"document_path,omitempty"`
	PosterPath   *string `gorm:"column:poster_path" json:"poster_path,omitempty"`
	ReportPath   *string `gorm:"column:report_path" json:"report_path,omitempty"`
	CodePath     *string `gorm:"column:code_path" json:"code_path,omitempty"`

	ReviewerID     *int       `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	ReviewComments *string    `gorm:"column:review_comments" json:"review_comments,omitempty"`
	SubmittedAt    time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (ProjectSubmission) TableName() string {
	return "project_submissions"
}
