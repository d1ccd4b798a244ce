package user

import "time"

type Role struct {
	ID       int64  `gorm:"primaryKey"`
	RoleName string `gorm:"column:role_name;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

// Built-in role names seeded at bootstrap.
const (
	RoleResearcher    = "Researcher"
	RoleSupervisor    = "Supervisor"
	RoleAdministrator = "Administrator"
)

type User struct {
	ID                 int64     `gorm:"primaryKey"`
	Email              string    `gorm:"column:email;uniqueIndex;not null"`
	Password           string    `gorm:"column:password;not null"`
	RoleID             int64     `gorm:"column:role_id;not null"`
	WorkingHoursWeekly int       `gorm:"column:working_hours_weekly;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
