package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"graduation-project-api/middleware"
	"graduation-project-api/models"
	"graduation-project-api/services"
	"graduation-project-api/utils"
)

// GetProjects lists the projects visible to the caller: students see
// their own, professors see what they supervise or evaluate, admins
// see everything.
func GetProjects(c *gin.Context) {
	actor := middleware.Actor(c)
	db := dbHandle(c)

	q := db.Preload("Students.Student").Preload("Supervisor").
		Where("projects.delete_at IS NULL")

	switch actor.Role {
	case models.RoleStudent:
		q = q.Joins("JOIN project_students ON project_students.project_id = projects.project_id").
			Where("project_students.student_id = ?", actor.EntityID)
	case models.RoleProfessor:
		q = q.Where("supervisor_id = ? OR evaluator_id = ?", actor.EntityID, actor.EntityID)
	case models.RoleAdmin:
		// unrestricted
	default:
		q = q.Where("is_publicly_visible = ?", true)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("projects.status = ?", status)
	}

	var projects []models.Project
	if err := q.Order("projects.project_id DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns one project if the caller may see it.
func GetProject(c *gin.Context) {
	actor := middleware.Actor(c)
	project, ok := loadProjectForActor(c, actor)
	if !ok {
		return
	}

	next := services.AllowedNext(project.Status)
	c.JSON(http.StatusOK, gin.H{"project": project, "allowed_next_statuses": next})
}

type proposalRequest struct {
	Title        string `json:"title" binding:"required"`
	Abstract     string `json:"abstract" binding:"required"`
	Keywords     string `json:"keywords"`
	AcademicYear string `json:"academic_year"`
	SupervisorID int    `json:"supervisor_id" binding:"required"`
	StudentIDs   []int  `json:"student_ids"`
}

// CreateProposal files a new project in proposed status. Students
// propose for themselves; professors may propose on behalf of their
// students.
func CreateProposal(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.Role != models.RoleStudent && actor.Role != models.RoleProfessor {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only students and professors may propose projects"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentIDs := req.StudentIDs
	if actor.Role == models.RoleStudent {
		studentIDs = []int{actor.EntityID}
	}
	if len(studentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one student is required"})
		return
	}

	db := dbHandle(c)
	now := time.Now()
	project := models.Project{
		Title:        utils.SanitizeInput(req.Title),
		Abstract:     utils.SanitizeInput(req.Abstract),
		Keywords:     utils.SanitizeInput(req.Keywords),
		AcademicYear: utils.SanitizeInput(req.AcademicYear),
		Status:       models.StatusProposed,
		SupervisorID: req.SupervisorID,
		CreateAt:     now,
	}

	if err := db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, sid := range studentIDs {
		link := models.ProjectStudent{ProjectID: project.ProjectID, StudentID: sid, CreateAt: now}
		if err := db.Create(&link).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	url := "/projects/" + strconv.Itoa(project.ProjectID)
	_ = notificationSvc.Notify(db, req.SupervisorID, models.RoleProfessor,
		"New project proposal", "A new project proposal awaits your approval: "+project.Title, &url, &project.ProjectID)

	var supervisor models.Professor
	if err := db.First(&supervisor, "professor_id = ?", req.SupervisorID).Error; err == nil {
		notificationSvc.EmailAsync(supervisor.Email, "New project proposal",
			"<p>A new project proposal awaits your approval: <b>"+project.Title+"</b></p>")
	}

	auditSvc.Record(actor, "create_proposal", project.Title)
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": project})
}

// ApproveProject is the supervisor's approval of a proposed project.
func ApproveProject(c *gin.Context) {
	transitionAsParticipant(c, models.StatusApproved, func(actor services.Actor, p *models.Project) bool {
		return actor.Role == models.RoleProfessor && p.SupervisorID == actor.EntityID
	})
}

// StartProject moves an approved project into progress; only an owning
// student may start.
func StartProject(c *gin.Context) {
	transitionAsParticipant(c, models.StatusInProgress, func(actor services.Actor, p *models.Project) bool {
		return actor.Role == models.RoleStudent && p.HasStudent(actor.EntityID)
	})
}

// CompleteProject marks the work finished; supervisor only.
func CompleteProject(c *gin.Context) {
	transitionAsParticipant(c, models.StatusCompleted, func(actor services.Actor, p *models.Project) bool {
		return actor.Role == models.RoleProfessor && p.SupervisorID == actor.EntityID
	})
}

// MarkDefended records that the defense took place; supervisor only.
func MarkDefended(c *gin.Context) {
	transitionAsParticipant(c, models.StatusDefended, func(actor services.Actor, p *models.Project) bool {
		return actor.Role == models.RoleProfessor && p.SupervisorID == actor.EntityID
	})
}

// transitionAsParticipant applies a role-gated workflow transition.
// The gate runs before the state machine so an unauthorized caller
// never mutates anything.
func transitionAsParticipant(c *gin.Context, target models.ProjectStatus, gate func(services.Actor, *models.Project) bool) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var body struct {
		Comments string `json:"comments"`
	}
	_ = c.ShouldBindJSON(&body)

	var project models.Project
	if err := dbHandle(c).Preload("Students").
		First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
		return
	}
	if !gate(actor, &project) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not permitted for this project"})
		return
	}

	updated, err := workflowSvc.Apply(&project, target, actor, body.Comments)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": updated})
}

// ScheduleDefense sets the defense date on a review-approved project.
func ScheduleDefense(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		DefenseDate time.Time `json:"defense_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := dbHandle(c).First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
		return
	}
	if actor.Role != models.RoleProfessor || project.SupervisorID != actor.EntityID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "only the supervisor may schedule the defense"})
		return
	}

	if err := workflowSvc.ScheduleDefense(projectID, req.DefenseDate, actor); err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "defense scheduled"})
}

// canGradeProject restricts grading to the assigned evaluator. The
// supervisor may grade only while no evaluator has been assigned.
func canGradeProject(actor services.Actor, project *models.Project) bool {
	if actor.Role != models.RoleProfessor {
		return false
	}
	if project.EvaluatorID != nil {
		return *project.EvaluatorID == actor.EntityID
	}
	return project.SupervisorID == actor.EntityID
}

// AssignGrade records the evaluating professor's grade once the
// project is defended.
func AssignGrade(c *gin.Context) {
	actor := middleware.Actor(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Grade string `json:"grade" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := dbHandle(c)
	var project models.Project
	if err := db.First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
		return
	}

	if !canGradeProject(actor, &project) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "only the evaluating professor may grade"})
		return
	}
	if project.Status != models.StatusDefended && project.Status != models.StatusPublished {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "project must be defended before grading"})
		return
	}

	if err := db.Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Updates(map[string]any{"grade": req.Grade, "update_at": time.Now()}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auditSvc.Record(actor, "assign_grade", project.Title)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "grade recorded"})
}

// respondWorkflowError maps service errors onto the structured
// {success,message} contract.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case err == services.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
	case err == services.ErrConcurrencyConflict:
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case err == services.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	}
}

// loadProjectForActor fetches a project and enforces read access.
func loadProjectForActor(c *gin.Context, actor services.Actor) (*models.Project, bool) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, false
	}

	var project models.Project
	if err := dbHandle(c).Preload("Students.Student").Preload("Supervisor").Preload("Evaluator").
		First(&project, "project_id = ? AND delete_at IS NULL", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStudent:
		if !project.HasStudent(actor.EntityID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your project"})
			return nil, false
		}
	case models.RoleProfessor:
		if !project.IsSupervisedBy(actor.EntityID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your project"})
			return nil, false
		}
	default:
		if !project.IsPubliclyVisible {
			c.JSON(http.StatusForbidden, gin.H{"error": "project is not public"})
			return nil, false
		}
	}
	return &project, true
}
