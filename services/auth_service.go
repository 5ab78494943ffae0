package services

import (
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"graduation-project-api/models"
)

// adminUsername is the fixed login name of the built-in administrator.
const adminUsername = "Admin"

// guestIdentifier is the reserved read-only login.
const guestIdentifier = "guest"

// AuthResult is what a successful credential check yields: the session
// role, the entity id within that role's table, and whether the
// account must change its password before doing anything else.
type AuthResult struct {
	Role               models.UserRole `json:"role"`
	EntityID           int             `json:"entity_id"`
	Identity           string          `json:"identity"`
	DisplayName        string          `json:"display_name"`
	Email              string          `json:"email"`
	MustChangePassword bool            `json:"must_change_password"`
}

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Authenticate checks the identifier against, in order: the built-in
// admin, the reserved guest login, students, then professors. Every
// failure path returns the same ErrInvalidCredentials so callers
// cannot tell which stage rejected.
func (s *AuthService) Authenticate(identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if identifier == adminUsername {
		var admin models.Admin
		err := s.db.Where("username = ? AND delete_at IS NULL", identifier).First(&admin).Error
		if err == nil && CheckPasswordHash(password, admin.Password) {
			return &AuthResult{
				Role:               models.RoleAdmin,
				EntityID:           admin.AdminID,
				Identity:           admin.Username,
				DisplayName:        admin.DisplayName,
				Email:              admin.Email,
				MustChangePassword: admin.MustChangePassword,
			}, nil
		}
		return nil, ErrInvalidCredentials
	}

	if identifier == guestIdentifier {
		guestPass := os.Getenv("GUEST_PASSWORD")
		if guestPass != "" && password == guestPass {
			return &AuthResult{
				Role:        models.RoleGuest,
				Identity:    guestIdentifier,
				DisplayName: "Guest",
			}, nil
		}
		return nil, ErrInvalidCredentials
	}

	var student models.Student
	err := s.db.Where("student_number = ? AND delete_at IS NULL", identifier).First(&student).Error
	if err == nil && CheckPasswordHash(password, student.Password) {
		return &AuthResult{
			Role:               models.RoleStudent,
			EntityID:           student.StudentID,
			Identity:           student.StudentNumber,
			DisplayName:        student.DisplayName(),
			Email:              student.Email,
			MustChangePassword: student.MustChangePassword,
		}, nil
	}

	var professor models.Professor
	err = s.db.Where("staff_number = ? AND delete_at IS NULL", identifier).First(&professor).Error
	if err == nil && CheckPasswordHash(password, professor.Password) {
		return &AuthResult{
			Role:               models.RoleProfessor,
			EntityID:           professor.ProfessorID,
			Identity:           professor.StaffNumber,
			DisplayName:        professor.DisplayName(),
			Email:              professor.Email,
			MustChangePassword: professor.MustChangePassword,
		}, nil
	}

	return nil, ErrInvalidCredentials
}

// ChangePassword rehashes the password for any of the three identity
// kinds and clears the forced-change flag. Idempotent with respect to
// the flag.
func (s *AuthService) ChangePassword(role models.UserRole, entityID int, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	updates := map[string]any{
		"password":             hash,
		"must_change_password": false,
		"update_at":            now,
	}

	var res *gorm.DB
	switch role {
	case models.RoleStudent:
		res = s.db.Model(&models.Student{}).
			Where("student_id = ? AND delete_at IS NULL", entityID).Updates(updates)
	case models.RoleProfessor:
		res = s.db.Model(&models.Professor{}).
			Where("professor_id = ? AND delete_at IS NULL", entityID).Updates(updates)
	case models.RoleAdmin:
		res = s.db.Model(&models.Admin{}).
			Where("admin_id = ? AND delete_at IS NULL", entityID).Updates(updates)
	default:
		return ErrUserNotFound
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// VerifyPassword checks the current password of an identity, used
// before allowing a change.
func (s *AuthService) VerifyPassword(role models.UserRole, entityID int, password string) error {
	var hash string
	switch role {
	case models.RoleStudent:
		var st models.Student
		if err := s.db.First(&st, "student_id = ? AND delete_at IS NULL", entityID).Error; err != nil {
			return ErrUserNotFound
		}
		hash = st.Password
	case models.RoleProfessor:
		var pr models.Professor
		if err := s.db.First(&pr, "professor_id = ? AND delete_at IS NULL", entityID).Error; err != nil {
			return ErrUserNotFound
		}
		hash = pr.Password
	case models.RoleAdmin:
		var ad models.Admin
		if err := s.db.First(&ad, "admin_id = ? AND delete_at IS NULL", entityID).Error; err != nil {
			return ErrUserNotFound
		}
		hash = ad.Password
	default:
		return ErrUserNotFound
	}
	if !CheckPasswordHash(password, hash) {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateDefaultPassword derives the account-creation password: the
// first two letters of the first name, lowercased, plus the last four
// characters of the id number. Accounts created with it always carry
// must_change_password = true.
func GenerateDefaultPassword(firstName, idNumber string) string {
	name := strings.ToLower(strings.TrimSpace(firstName))
	prefix := name
	if len(name) >= 2 {
		prefix = name[:2]
	}

	id := strings.TrimSpace(idNumber)
	suffix := id
	if len(id) >= 4 {
		suffix = id[len(id)-4:]
	}
	return prefix + suffix
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
