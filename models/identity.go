package models

import "time"

// UserRole is the coarse session role carried in the JWT. Fine-grained
// authorization goes through the Role/Permission tables; this value is
// a routing and display convenience.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleStudent   UserRole = "student"
	RoleProfessor UserRole = "professor"
	RoleGuest     UserRole = "guest"
)

type Student struct {
	StudentID          int     `gorm:"primaryKey;column:student_id" json:"student_id"`
	StudentNumber      string  `gorm:"column:student_number;unique" json:"student_number"`
	FirstName          string  `gorm:"column:first_name" json:"first_name"`
	LastName           string  `gorm:"column:last_name" json:"last_name"`
	Email              string  `gorm:"column:email" json:"email"`
	Password           string  `gorm:"column:password" json:"-"`
	MustChangePassword bool    `gorm:"column:must_change_password" json:"must_change_password"`
	Program            *string `gorm:"column:program" json:"program,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Professor struct {
	ProfessorID        int     `gorm:"primaryKey;column:professor_id" json:"professor_id"`
	StaffNumber        string  `gorm:"column:staff_number;unique" json:"staff_number"`
	FirstName          string  `gorm:"column:first_name" json:"first_name"`
	LastName           string  `gorm:"column:last_name" json:"last_name"`
	Email              string  `gorm:"column:email" json:"email"`
	Password           string  `gorm:"column:password" json:"-"`
	MustChangePassword bool    `gorm:"column:must_change_password" json:"must_change_password"`
	Department         *string `gorm:"column:department" json:"department,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Admin struct {
	AdminID            int    `gorm:"primaryKey;column:admin_id" json:"admin_id"`
	Username           string `gorm:"column:username;unique" json:"username"`
	DisplayName        string `gorm:"column:display_name" json:"display_name"`
	Email              string `gorm:"column:email" json:"email"`
	Password           string `gorm:"column:password" json:"-"`
	MustChangePassword bool   `gorm:"column:must_change_password" json:"must_change_password"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Student) TableName() string {
	return "students"
}

func (Professor) TableName() string {
	return "professors"
}

func (Admin) TableName() string {
	return "admins"
}

func (s *Student) DisplayName() string {
	return s.FirstName + " " + s.LastName
}

func (p *Professor) DisplayName() string {
	return p.FirstName + " " + p.LastName
}
