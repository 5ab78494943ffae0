package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"graduation-project-api/models"
)

var seedCounter atomic.Int64

// newTestDB opens an in-memory sqlite database with the full schema.
// Max open connections is pinned to one so every session sees the same
// in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// seedProject creates a supervisor, one student author and a project in
// the given status, returning the three ids.
func seedProject(t *testing.T, db *gorm.DB, status models.ProjectStatus) (projectID, studentID, supervisorID int) {
	t.Helper()

	n := seedCounter.Add(1)
	professor := models.Professor{
		StaffNumber: fmt.Sprintf("P-%04d", n),
		FirstName:   "Ada",
		LastName:    "Advisor",
		Email:       "advisor@example.edu",
		CreateAt:    time.Now(),
	}
	if err := db.Create(&professor).Error; err != nil {
		t.Fatalf("create professor: %v", err)
	}

	student := models.Student{
		StudentNumber: fmt.Sprintf("S-%04d", n),
		FirstName:     "Sam",
		LastName:      "Student",
		Email:         "student@example.edu",
		CreateAt:      time.Now(),
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	project := models.Project{
		Title:        "Test Project",
		Abstract:     "abstract",
		AcademicYear: "2025",
		Status:       status,
		SupervisorID: professor.ProfessorID,
		CreateAt:     time.Now(),
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	link := models.ProjectStudent{
		ProjectID: project.ProjectID,
		StudentID: student.StudentID,
		CreateAt:  time.Now(),
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("link student: %v", err)
	}

	return project.ProjectID, student.StudentID, professor.ProfessorID
}

func loadProject(t *testing.T, db *gorm.DB, projectID int) *models.Project {
	t.Helper()
	var project models.Project
	if err := db.Preload("Students").First(&project, "project_id = ?", projectID).Error; err != nil {
		t.Fatalf("load project %d: %v", projectID, err)
	}
	return &project
}
