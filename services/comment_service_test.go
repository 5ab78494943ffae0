package services

import (
	"errors"
	"testing"
	"time"

	"graduation-project-api/models"
)

func TestCommentPermissions(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	owner := Actor{EntityID: studentID, Role: models.RoleStudent}
	if _, err := svc.Add(owner, projectID, nil, "first milestone done", false); err != nil {
		t.Fatalf("owner comment failed: %v", err)
	}

	supervisor := Actor{EntityID: supervisorID, Role: models.RoleProfessor}
	if _, err := svc.Add(supervisor, projectID, nil, "good progress", false); err != nil {
		t.Fatalf("supervisor comment failed: %v", err)
	}

	outsiderStudent := Actor{EntityID: studentID + 1000, Role: models.RoleStudent}
	if _, err := svc.Add(outsiderStudent, projectID, nil, "hi", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider student: err = %v, want ErrForbidden", err)
	}
	outsiderProfessor := Actor{EntityID: supervisorID + 1000, Role: models.RoleProfessor}
	if _, err := svc.Add(outsiderProfessor, projectID, nil, "hi", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider professor: err = %v, want ErrForbidden", err)
	}
	guest := Actor{Role: models.RoleGuest}
	if _, err := svc.Add(guest, projectID, nil, "hi", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("guest: err = %v, want ErrForbidden", err)
	}
}

func TestReplyDepthIsTwoLevels(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	top, err := svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "question", false)
	if err != nil {
		t.Fatalf("top-level comment: %v", err)
	}
	reply, err := svc.Add(Actor{EntityID: studentID, Role: models.RoleStudent}, projectID, &top.CommentID, "answer", false)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	_, err = svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, &reply.CommentID, "reply to reply", false)
	if !errors.Is(err, ErrReplyDepthExceeded) {
		t.Fatalf("err = %v, want ErrReplyDepthExceeded", err)
	}
}

func TestStudentsCannotFlagAcknowledgment(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	c, err := svc.Add(Actor{EntityID: studentID, Role: models.RoleStudent}, projectID, nil, "note", true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.RequiresStudentAcknowledgment {
		t.Error("student comment must not carry the acknowledgment flag")
	}

	c, err = svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "fix this", true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !c.RequiresStudentAcknowledgment {
		t.Error("professor comment lost the acknowledgment flag")
	}
}

func TestEditIsAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	c, err := svc.Add(Actor{EntityID: studentID, Role: models.RoleStudent}, projectID, nil, "draft", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Edit(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, c.CommentID, "hijacked"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-author edit: err = %v, want ErrForbidden", err)
	}
	if err := svc.Edit(Actor{EntityID: studentID, Role: models.RoleStudent}, c.CommentID, "final"); err != nil {
		t.Fatalf("author edit: %v", err)
	}

	var saved models.ProjectComment
	if err := db.First(&saved, "comment_id = ?", c.CommentID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if saved.Content != "final" {
		t.Errorf("content = %q", saved.Content)
	}
	if saved.EditedAt == nil {
		t.Error("edited_at not stamped")
	}
}

func TestDeleteHidesCommentAndThread(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	student := Actor{EntityID: studentID, Role: models.RoleStudent}
	c, err := svc.Add(student, projectID, nil, "to be removed", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	keep, err := svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "stays", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(Actor{EntityID: 1, Role: models.RoleAdmin}, c.CommentID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	top, err := svc.ListForProject(projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(top) != 1 || top[0].CommentID != keep.CommentID {
		t.Fatalf("listing = %d comments, deleted one still visible", len(top))
	}

	// The row survives as a soft-deleted record.
	var raw models.ProjectComment
	if err := db.First(&raw, "comment_id = ?", c.CommentID).Error; err != nil {
		t.Fatalf("raw load: %v", err)
	}
	if raw.Visibility != models.CommentSoftDeleted {
		t.Errorf("visibility = %s", raw.Visibility)
	}

	// Deleting an already-deleted comment reports not found.
	if err := svc.Delete(student, c.CommentID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete deleted: err = %v, want ErrNotFound", err)
	}
}

func TestAcknowledgeIsOneWayAndOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	c, err := svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "revise the abstract", true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Acknowledge(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, c.CommentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("professor acknowledge: err = %v, want ErrForbidden", err)
	}
	if err := svc.Acknowledge(Actor{EntityID: studentID + 1000, Role: models.RoleStudent}, c.CommentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("outside student acknowledge: err = %v, want ErrForbidden", err)
	}

	owner := Actor{EntityID: studentID, Role: models.RoleStudent}
	if err := svc.Acknowledge(owner, c.CommentID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if err := svc.Acknowledge(owner, c.CommentID); !errors.Is(err, ErrAlreadyAcknowledged) {
		t.Errorf("second acknowledge: err = %v, want ErrAlreadyAcknowledged", err)
	}

	var saved models.ProjectComment
	db.First(&saved, "comment_id = ?", c.CommentID)
	if saved.AcknowledgedAt == nil || saved.AcknowledgedBy == nil || *saved.AcknowledgedBy != studentID {
		t.Error("acknowledgment not recorded")
	}

	// Unflagged comments cannot be acknowledged.
	plain, _ := svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "fyi", false)
	if err := svc.Acknowledge(owner, plain.CommentID); !errors.Is(err, ErrForbidden) {
		t.Errorf("acknowledge unflagged: err = %v, want ErrForbidden", err)
	}
}

func TestListBuildsThreads(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusInProgress)
	svc := NewCommentService(db)

	first, _ := svc.Add(Actor{EntityID: supervisorID, Role: models.RoleProfessor}, projectID, nil, "one", false)
	time.Sleep(5 * time.Millisecond)
	second, _ := svc.Add(Actor{EntityID: studentID, Role: models.RoleStudent}, projectID, nil, "two", false)
	if _, err := svc.Add(Actor{EntityID: studentID, Role: models.RoleStudent}, projectID, &first.CommentID, "re: one", false); err != nil {
		t.Fatalf("reply: %v", err)
	}

	top, err := svc.ListForProject(projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top-level = %d, want 2", len(top))
	}
	if top[0].CommentID != first.CommentID || top[1].CommentID != second.CommentID {
		t.Error("top-level comments not ordered oldest first")
	}
	if len(top[0].Replies) != 1 || top[0].Replies[0].Content != "re: one" {
		t.Error("reply not attached to its parent")
	}
	if len(top[1].Replies) != 0 {
		t.Error("unexpected replies on second comment")
	}
}
