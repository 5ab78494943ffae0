package models

import "time"

// ProjectStatus is the lifecycle state of a graduation project.
type ProjectStatus string

const (
	StatusProposed           ProjectStatus = "proposed"
	StatusApproved           ProjectStatus = "approved"
	StatusInProgress         ProjectStatus = "in_progress"
	StatusCompleted          ProjectStatus = "completed"
	StatusSubmittedForReview ProjectStatus = "submitted_for_review"
	StatusReviewApproved     ProjectStatus = "review_approved"
	StatusReviewRejected     ProjectStatus = "review_rejected"
	StatusDefended           ProjectStatus = "defended"
	StatusPublished          ProjectStatus = "published"
)

type Project struct {
	ProjectID    int           `gorm:"primaryKey;column:project_id" json:"project_id"`
	Title        string        `gorm:"column:title" json:"title"`
	Abstract     string        `gorm:"column:abstract" json:"abstract"`
	Keywords     string        `gorm:"column:keywords" json:"keywords"`
	AcademicYear string        `gorm:"column:academic_year" json:"academic_year"`
	Status       ProjectStatus `gorm:"column:status" json:"status"`

	SupervisorID int  `gorm:"column:supervisor_id" json:"supervisor_id"`
	EvaluatorID  *int `gorm:"column:evaluator_id" json:"evaluator_id,omitempty"`

	DocumentPath *string `gorm:"column:document_path" json:"document_path,omitempty"`
	PosterPath   *string `gorm:"column:poster_path" json:"poster_path,omitempty"`
	ReportPath   *string `gorm:"column:report_path" json:"report_path,omitempty"`
	CodePath     *string `gorm:"column:code_path" json:"code_path,omitempty"`

	IsPubliclyVisible bool    `gorm:"column:is_publicly_visible" json:"is_publicly_visible"`
	Grade             *string `gorm:"column:grade" json:"grade,omitempty"`

	SubmissionForReviewDate *time.Time `gorm:"column:submission_for_review_date" json:"submission_for_review_date,omitempty"`
	ReviewDate              *time.Time `gorm:"column:review_date" json:"review_date,omitempty"`
	ReviewerID              *int       `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	ReviewComments          *string    `gorm:"column:review_comments" json:"review_comments,omitempty"`
	DefenseDate             *time.Time `gorm:"column:defense_date" json:"defense_date,omitempty"`

	// Version is the optimistic concurrency token; every successful
	// status transition increments it.
	Version int `gorm:"column:version" json:"version"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Supervisor *Professor       `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	Evaluator  *Professor       `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	Students   []ProjectStudent `gorm:"foreignKey:ProjectID" json:"students,omitempty"`
}

// ProjectStudent links a project to one of its student authors.
type ProjectStudent struct {
	ProjectStudentID int       `gorm:"primaryKey;column:project_student_id" json:"project_student_id"`
	ProjectID        int       `gorm:"column:project_id" json:"project_id"`
	StudentID        int       `gorm:"column:student_id" json:"student_id"`
	CreateAt         time.Time `gorm:"column:create_at" json:"create_at"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// ProjectActivityLog is an append-only record of a status transition.
// Rows are never updated after creation.
type ProjectActivityLog struct {
	LogID     int           `gorm:"primaryKey;column:log_id" json:"log_id"`
	ProjectID int           `gorm:"column:project_id" json:"project_id"`
	OldStatus ProjectStatus `gorm:"column:old_status" json:"old_status"`
	NewStatus ProjectStatus `gorm:"column:new_status" json:"new_status"`
	ActorID   int           `gorm:"column:actor_id" json:"actor_id"`
	ActorRole string        `gorm:"column:actor_role" json:"actor_role"`
	Comments  *string       `gorm:"column:comments" json:"comments,omitempty"`
	CreatedAt time.Time     `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Project) TableName() string {
	return "projects"
}

func (ProjectStudent) TableName() string {
	return "project_students"
}

func (ProjectActivityLog) TableName() string {
	return "project_activity_logs"
}

// HasStudent reports whether the given student is one of the project's
// authors. Students must be preloaded.
func (p *Project) HasStudent(studentID int) bool {
	for _, ps := range p.Students {
		if ps.StudentID == studentID {
			return true
		}
	}
	return false
}

// IsSupervisedBy reports whether the professor supervises or evaluates
// the project.
func (p *Project) IsSupervisedBy(professorID int) bool {
	if p.SupervisorID == professorID {
		return true
	}
	return p.EvaluatorID != nil && *p.EvaluatorID == professorID
}
