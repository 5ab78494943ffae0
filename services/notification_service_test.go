package services

import (
	"testing"

	"graduation-project-api/models"
)

func TestNotifyAndCounter(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	url := "/projects/1"
	pid := 1
	if err := svc.Notify(db, 5, models.RoleStudent, "Status", "project approved", &url, &pid); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.Notify(db, 5, models.RoleStudent, "Status", "project started", nil, &pid); err != nil {
		t.Fatalf("notify: %v", err)
	}
	// Same id, different role: a separate inbox.
	if err := svc.Notify(db, 5, models.RoleProfessor, "Status", "other inbox", nil, nil); err != nil {
		t.Fatalf("notify: %v", err)
	}

	n, err := svc.UnreadCount(5, models.RoleStudent)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}
	n, _ = svc.UnreadCount(5, models.RoleProfessor)
	if n != 1 {
		t.Errorf("professor inbox unread = %d, want 1", n)
	}
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	if err := svc.Notify(db, 5, models.RoleStudent, "T", "m", nil, nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	var note models.Notification
	if err := db.First(&note).Error; err != nil {
		t.Fatalf("load: %v", err)
	}

	// A different recipient cannot flip the flag.
	if err := svc.MarkRead(note.NotificationID, 6, models.RoleStudent); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	n, _ := svc.UnreadCount(5, models.RoleStudent)
	if n != 1 {
		t.Errorf("unread = %d after foreign mark, want 1", n)
	}

	if err := svc.MarkRead(note.NotificationID, 5, models.RoleStudent); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	n, _ = svc.UnreadCount(5, models.RoleStudent)
	if n != 0 {
		t.Errorf("unread = %d, want 0", n)
	}
}

func TestMarkAllReadAndUnreadFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	for i := 0; i < 3; i++ {
		if err := svc.Notify(db, 7, models.RoleProfessor, "T", "m", nil, nil); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	var first models.Notification
	db.First(&first)
	if err := svc.MarkRead(first.NotificationID, 7, models.RoleProfessor); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, err := svc.List(7, models.RoleProfessor, true, 20, 0)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 2 {
		t.Errorf("unread listing = %d, want 2", len(unread))
	}
	all, _ := svc.List(7, models.RoleProfessor, false, 20, 0)
	if len(all) != 3 {
		t.Errorf("full listing = %d, want 3", len(all))
	}

	if err := svc.MarkAllRead(7, models.RoleProfessor); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	n, _ := svc.UnreadCount(7, models.RoleProfessor)
	if n != 0 {
		t.Errorf("unread = %d after mark all, want 0", n)
	}
}

func TestNotifyAdminsFansOut(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	for _, name := range []string{"Admin", "Second"} {
		a := models.Admin{Username: name, DisplayName: name}
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("create admin: %v", err)
		}
	}

	if err := svc.NotifyAdmins(db, "New submission", "project 1 submitted", nil, nil); err != nil {
		t.Fatalf("notify admins: %v", err)
	}

	var rows int64
	db.Model(&models.Notification{}).Where("recipient_role = ?", models.RoleAdmin).Count(&rows)
	if rows != 2 {
		t.Errorf("admin notifications = %d, want 2", rows)
	}
}
