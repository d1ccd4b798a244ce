package catalog

import "time"

// NonWorkingProjectTitle is the well-known project holding the fixed
// catalogue of non-working tasks (time off, medical leave, holidays).
// Its tasks are always offered as logging targets and never carry a
// task assignment row.
const NonWorkingProjectTitle = "TimeOffProj"

type Priority struct {
	ID           int64  `gorm:"primaryKey"`
	PriorityName string `gorm:"column:priority_name;not null"`
}

func (Priority) TableName() string {
	return "priority"
}

type Status struct {
	ID         int64  `gorm:"primaryKey"`
	StatusName string `gorm:"column:status_name;not null"`
}

func (Status) TableName() string {
	return "status"
}

type Project struct {
	ID               int64     `gorm:"primaryKey"`
	Title            string    `gorm:"column:title;not null"`
	Description      string    `gorm:"column:description"`
	SupervisorID     int64     `gorm:"column:supervisor_id;not null"`
	CreatedByAdminID int64     `gorm:"column:created_by_admin_id;not null"`
	Archived         bool      `gorm:"column:archived;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Project) TableName() string {
	return "projects"
}

type WorkPackage struct {
	ID          int64     `gorm:"primaryKey"`
	ProjectID   int64     `gorm:"column:project_id;not null"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	StartDate   time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time `gorm:"column:end_date;type:date;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkPackage) TableName() string {
	return "work_packages"
}

type Task struct {
	ID            int64     `gorm:"primaryKey"`
	WorkPackageID int64     `gorm:"column:work_package_id;not null"`
	Title         string    `gorm:"column:title;not null"`
	Description   string    `gorm:"column:description"`
	EffortHours   int       `gorm:"column:effort_hours;not null"`
	DurationHours int       `gorm:"column:duration_hours;not null"`
	Deadline      time.Time `gorm:"column:deadline;type:date;not null"`
	PriorityID    int64     `gorm:"column:priority_id;not null"`
	StatusID      int64     `gorm:"column:status_id;not null"`
}

func (Task) TableName() string {
	return "tasks"
}

type ProjectVisibility struct {
	ProjectID int64 `gorm:"column:project_id;primaryKey"`
	UserID    int64 `gorm:"column:user_id;primaryKey"`
}

func (ProjectVisibility) TableName() string {
	return "project_visibility"
}
