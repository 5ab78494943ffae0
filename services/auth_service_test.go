package services

import (
	"errors"
	"testing"
	"time"

	"graduation-project-api/models"
)

func TestGenerateDefaultPassword(t *testing.T) {
	cases := []struct {
		firstName, id, want string
	}{
		{"Somchai", "6401234567", "so4567"},
		{"Ada", "P-001", "ad-001"},
		{"X", "42", "x42"},
		{" Trim ", " 6409 ", "tr6409"},
	}
	for _, c := range cases {
		if got := GenerateDefaultPassword(c.firstName, c.id); got != c.want {
			t.Errorf("GenerateDefaultPassword(%q, %q) = %q, want %q", c.firstName, c.id, got, c.want)
		}
	}
}

func TestAuthenticateStudent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, err := HashPassword("so4567")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	student := models.Student{
		StudentNumber:      "6401234567",
		FirstName:          "Somchai",
		LastName:           "Jaidee",
		Email:              "somchai@example.edu",
		Password:           hash,
		MustChangePassword: true,
		CreateAt:           time.Now(),
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	res, err := svc.Authenticate("6401234567", "so4567")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.Role != models.RoleStudent || res.EntityID != student.StudentID {
		t.Errorf("result = %+v", res)
	}
	if !res.MustChangePassword {
		t.Error("must_change_password flag lost")
	}

	if _, err := svc.Authenticate("6401234567", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("9999999999", "so4567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown identifier: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate("", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty credentials: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateAdminByUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, _ := HashPassword("secret")
	admin := models.Admin{
		Username:    "Admin",
		DisplayName: "Administrator",
		Email:       "admin@example.edu",
		Password:    hash,
		CreateAt:    time.Now(),
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	res, err := svc.Authenticate("Admin", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.Role != models.RoleAdmin || res.EntityID != admin.AdminID {
		t.Errorf("result = %+v", res)
	}

	// The admin identifier never falls through to other tables.
	if _, err := svc.Authenticate("Admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateGuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	t.Setenv("GUEST_PASSWORD", "open-sesame")

	res, err := svc.Authenticate("guest", "open-sesame")
	if err != nil {
		t.Fatalf("authenticate guest: %v", err)
	}
	if res.Role != models.RoleGuest {
		t.Errorf("role = %s, want guest", res.Role)
	}

	if _, err := svc.Authenticate("guest", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}

	t.Setenv("GUEST_PASSWORD", "")
	if _, err := svc.Authenticate("guest", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("guest login must be disabled without a configured password, err = %v", err)
	}
}

func TestChangePasswordClearsFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, _ := HashPassword("so4567")
	student := models.Student{
		StudentNumber:      "6401234567",
		FirstName:          "Somchai",
		LastName:           "Jaidee",
		Password:           hash,
		MustChangePassword: true,
		CreateAt:           time.Now(),
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}

	if err := svc.VerifyPassword(models.RoleStudent, student.StudentID, "so4567"); err != nil {
		t.Fatalf("verify current password: %v", err)
	}
	if err := svc.ChangePassword(models.RoleStudent, student.StudentID, "N3w-Passw0rd"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	res, err := svc.Authenticate("6401234567", "N3w-Passw0rd")
	if err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if res.MustChangePassword {
		t.Error("must_change_password not cleared")
	}
	if _, err := svc.Authenticate("6401234567", "so4567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}

	if err := svc.ChangePassword(models.RoleStudent, 9999, "whatever"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
