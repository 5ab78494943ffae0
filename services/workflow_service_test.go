package services

import (
	"errors"
	"testing"
	"time"

	"graduation-project-api/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.ProjectStatus
		want     bool
	}{
		{models.StatusProposed, models.StatusApproved, true},
		{models.StatusApproved, models.StatusInProgress, true},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusCompleted, models.StatusSubmittedForReview, true},
		{models.StatusSubmittedForReview, models.StatusReviewApproved, true},
		{models.StatusSubmittedForReview, models.StatusReviewRejected, true},
		{models.StatusReviewRejected, models.StatusSubmittedForReview, true},
		{models.StatusReviewApproved, models.StatusDefended, true},
		{models.StatusDefended, models.StatusPublished, true},

		{models.StatusProposed, models.StatusCompleted, false},
		{models.StatusProposed, models.StatusPublished, false},
		{models.StatusApproved, models.StatusProposed, false},
		{models.StatusPublished, models.StatusDefended, false},
		{models.StatusPublished, models.StatusProposed, false},
		{models.StatusReviewApproved, models.StatusReviewRejected, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTransitionRecordsActivityAndNotifies(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusProposed)

	svc := NewWorkflowService(db, NewNotificationService(db))
	actor := Actor{EntityID: supervisorID, Role: models.RoleProfessor}

	updated, err := svc.Transition(projectID, models.StatusApproved, actor, "looks good")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("status = %s, want %s", updated.Status, models.StatusApproved)
	}
	if updated.Version != 1 {
		t.Errorf("version = %d, want 1", updated.Version)
	}

	entries, err := svc.ActivityLog(projectID)
	if err != nil {
		t.Fatalf("activity log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(entries))
	}
	if entries[0].OldStatus != models.StatusProposed || entries[0].NewStatus != models.StatusApproved {
		t.Errorf("activity entry = %s -> %s", entries[0].OldStatus, entries[0].NewStatus)
	}
	if entries[0].ActorID != supervisorID || entries[0].ActorRole != string(models.RoleProfessor) {
		t.Errorf("actor recorded as %s %d", entries[0].ActorRole, entries[0].ActorID)
	}

	// The student is notified, the acting supervisor is not.
	var studentNotes, supervisorNotes int64
	db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ?", studentID, models.RoleStudent).
		Count(&studentNotes)
	db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ?", supervisorID, models.RoleProfessor).
		Count(&supervisorNotes)
	if studentNotes != 1 {
		t.Errorf("student notifications = %d, want 1", studentNotes)
	}
	if supervisorNotes != 0 {
		t.Errorf("supervisor notifications = %d, want 0", supervisorNotes)
	}
}

func TestTransitionRejectsInvalidTarget(t *testing.T) {
	db := newTestDB(t)
	projectID, _, supervisorID := seedProject(t, db, models.StatusProposed)

	svc := NewWorkflowService(db, nil)
	actor := Actor{EntityID: supervisorID, Role: models.RoleProfessor}

	_, err := svc.Transition(projectID, models.StatusCompleted, actor, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	// Nothing committed on failure.
	project := loadProject(t, db, projectID)
	if project.Status != models.StatusProposed || project.Version != 0 {
		t.Errorf("project mutated on failed transition: status=%s version=%d", project.Status, project.Version)
	}
	var logs int64
	db.Model(&models.ProjectActivityLog{}).Where("project_id = ?", projectID).Count(&logs)
	if logs != 0 {
		t.Errorf("activity entries = %d, want 0", logs)
	}
}

func TestApplyStaleSnapshotConflicts(t *testing.T) {
	db := newTestDB(t)
	projectID, studentID, supervisorID := seedProject(t, db, models.StatusApproved)

	svc := NewWorkflowService(db, nil)
	stale := loadProject(t, db, projectID)

	// Another writer commits first.
	if _, err := svc.Transition(projectID, models.StatusInProgress, Actor{EntityID: studentID, Role: models.RoleStudent}, ""); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	_, err := svc.Apply(stale, models.StatusInProgress, Actor{EntityID: supervisorID, Role: models.RoleProfessor}, "")
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("err = %v, want ErrConcurrencyConflict", err)
	}

	// The losing attempt must not add a second activity entry.
	var logs int64
	db.Model(&models.ProjectActivityLog{}).Where("project_id = ?", projectID).Count(&logs)
	if logs != 1 {
		t.Errorf("activity entries = %d, want 1", logs)
	}
}

func TestReviewTransitionStampsReviewer(t *testing.T) {
	db := newTestDB(t)
	projectID, _, supervisorID := seedProject(t, db, models.StatusSubmittedForReview)

	svc := NewWorkflowService(db, nil)
	actor := Actor{EntityID: supervisorID, Role: models.RoleAdmin}

	updated, err := svc.Transition(projectID, models.StatusReviewRejected, actor, "missing chapter 3")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.ReviewDate == nil {
		t.Error("review_date not stamped")
	}
	if updated.ReviewerID == nil || *updated.ReviewerID != supervisorID {
		t.Error("reviewer_id not stamped")
	}
	if updated.ReviewComments == nil || *updated.ReviewComments != "missing chapter 3" {
		t.Error("review_comments not stamped")
	}
}

func TestPublishedBecomesPubliclyVisible(t *testing.T) {
	db := newTestDB(t)
	projectID, _, supervisorID := seedProject(t, db, models.StatusDefended)

	svc := NewWorkflowService(db, nil)
	updated, err := svc.Transition(projectID, models.StatusPublished, Actor{EntityID: supervisorID, Role: models.RoleAdmin}, "")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if !updated.IsPubliclyVisible {
		t.Error("published project is not publicly visible")
	}
	if len(AllowedNext(updated.Status)) != 0 {
		t.Errorf("published should be terminal, got next=%v", AllowedNext(updated.Status))
	}
}

func TestSetVisibilityRequiresDefense(t *testing.T) {
	db := newTestDB(t)
	projectID, _, _ := seedProject(t, db, models.StatusInProgress)

	svc := NewWorkflowService(db, nil)
	_, err := svc.SetVisibility(projectID, true, Actor{EntityID: 1, Role: models.RoleAdmin})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	// Disabling visibility is allowed at any stage.
	if _, err := svc.SetVisibility(projectID, false, Actor{EntityID: 1, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("disable visibility failed: %v", err)
	}

	defendedID, _, _ := seedProject(t, db, models.StatusDefended)
	updated, err := svc.SetVisibility(defendedID, true, Actor{EntityID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("enable visibility failed: %v", err)
	}
	if !updated.IsPubliclyVisible {
		t.Error("visibility not enabled")
	}
}

func TestScheduleDefenseOnlyWhenReviewApproved(t *testing.T) {
	db := newTestDB(t)
	svc := NewWorkflowService(db, nil)
	when := time.Now().Add(14 * 24 * time.Hour)

	pendingID, _, supervisorID := seedProject(t, db, models.StatusInProgress)
	err := svc.ScheduleDefense(pendingID, when, Actor{EntityID: supervisorID, Role: models.RoleProfessor})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	approvedID, _, supervisorID := seedProject(t, db, models.StatusReviewApproved)
	if err := svc.ScheduleDefense(approvedID, when, Actor{EntityID: supervisorID, Role: models.RoleProfessor}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	project := loadProject(t, db, approvedID)
	if project.DefenseDate == nil {
		t.Fatal("defense_date not set")
	}

	// A later Defended transition keeps the scheduled date.
	scheduled := *project.DefenseDate
	updated, err := svc.Transition(approvedID, models.StatusDefended, Actor{EntityID: supervisorID, Role: models.RoleProfessor}, "")
	if err != nil {
		t.Fatalf("defended transition failed: %v", err)
	}
	if updated.DefenseDate == nil || !updated.DefenseDate.Equal(scheduled) {
		t.Error("defended transition overwrote the scheduled defense date")
	}
}

func TestOnChangeHookFires(t *testing.T) {
	db := newTestDB(t)
	projectID, _, supervisorID := seedProject(t, db, models.StatusProposed)

	svc := NewWorkflowService(db, nil)
	fired := 0
	svc.OnChange(func() { fired++ })

	if _, err := svc.Transition(projectID, models.StatusApproved, Actor{EntityID: supervisorID, Role: models.RoleProfessor}, ""); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if fired != 1 {
		t.Errorf("onChange fired %d times, want 1", fired)
	}

	// Failed transitions do not fire the hook.
	if _, err := svc.Transition(projectID, models.StatusPublished, Actor{EntityID: supervisorID, Role: models.RoleProfessor}, ""); err == nil {
		t.Fatal("expected invalid transition to fail")
	}
	if fired != 1 {
		t.Errorf("onChange fired %d times after failure, want 1", fired)
	}
}
