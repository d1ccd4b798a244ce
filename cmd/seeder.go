package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/mzavatta/effort-tracking/internal/core/datamodel/catalog"
	userDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with bootstrap data",
	Long:  `Seed roles, priorities, statuses, demo accounts and the non-working task catalogue.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		seedRoles(db)
		seedPriorities(db)
		seedStatuses(db)

		adminID := seedUser(db, "admin@example.org", userDatamodel.RoleAdministrator, 40)
		supervisorID := seedUser(db, "supervisor@example.org", userDatamodel.RoleSupervisor, 40)
		researcherID := seedUser(db, "researcher@example.org", userDatamodel.RoleResearcher, 36)

		seedNonWorkingCatalogue(db, adminID, supervisorID, researcherID)

		fmt.Println("Seeding complete")
	},
}

func seedRoles(db *gorm.DB) {
	for _, name := range []string{userDatamodel.RoleResearcher, userDatamodel.RoleSupervisor, userDatamodel.RoleAdministrator} {
		var exists int
		row := db.Raw("SELECT 1 FROM roles WHERE role_name = ?", name).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO roles (role_name) VALUES (?)", name).Error; err != nil {
			log.Fatalf("failed to insert role %s: %v", name, err)
		}
		fmt.Println("Seeded role:", name)
	}
}

func seedPriorities(db *gorm.DB) {
	for _, name := range []string{"High", "Medium", "Low"} {
		var exists int
		row := db.Raw("SELECT 1 FROM priority WHERE priority_name = ?", name).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO priority (priority_name) VALUES (?)", name).Error; err != nil {
			log.Fatalf("failed to insert priority %s: %v", name, err)
		}
		fmt.Println("Seeded priority:", name)
	}
}

func seedStatuses(db *gorm.DB) {
	statuses := []string{"Not started", "In Progress", "Waiting dependency", "Blocked", "Completed"}
	for _, name := range statuses {
		var exists int
		row := db.Raw("SELECT 1 FROM status WHERE status_name = ?", name).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO status (status_name) VALUES (?)", name).Error; err != nil {
			log.Fatalf("failed to insert status %s: %v", name, err)
		}
		fmt.Println("Seeded status:", name)
	}
}

func seedUser(db *gorm.DB, email, roleName string, workingHours int) int64 {
	var userID int64
	row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&userID); err == nil {
		return userID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	err = db.Exec(
		"INSERT INTO users (email, password, role_id, working_hours_weekly) SELECT ?, ?, id, ? FROM roles WHERE role_name = ?",
		email, string(hash), workingHours, roleName,
	).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}

	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&userID); err != nil {
		log.Fatalf("failed to read back user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return userID
}

// seedNonWorkingCatalogue creates the well-known time-off project with one
// open-ended work package and its fixed tasks. These tasks are loggable by
// everyone and never carry assignments.
func seedNonWorkingCatalogue(db *gorm.DB, adminID, supervisorID, researcherID int64) {
	var projectID int64
	row := db.Raw("SELECT id FROM projects WHERE title = ?", catalog.NonWorkingProjectTitle).Row()
	if err := row.Scan(&projectID); err != nil {
		err := db.Exec(
			"INSERT INTO projects (title, description, supervisor_id, created_by_admin_id, archived) VALUES (?, ?, ?, ?, false)",
			catalog.NonWorkingProjectTitle, "Non-working time catalogue", supervisorID, adminID,
		).Error
		if err != nil {
			log.Fatalf("failed to insert non-working project: %v", err)
		}
		if err := db.Raw("SELECT id FROM projects WHERE title = ?", catalog.NonWorkingProjectTitle).Row().Scan(&projectID); err != nil {
			log.Fatalf("failed to read back non-working project: %v", err)
		}
		fmt.Println("Seeded project:", catalog.NonWorkingProjectTitle)
	}

	for _, userID := range []int64{adminID, supervisorID, researcherID} {
		db.Exec("INSERT INTO project_visibility (project_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING", projectID, userID)
	}

	var wpID int64
	row = db.Raw("SELECT id FROM work_packages WHERE project_id = ? AND title = ?", projectID, "Time off").Row()
	if err := row.Scan(&wpID); err != nil {
		start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)
		err := db.Exec(
			"INSERT INTO work_packages (project_id, title, description, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
			projectID, "Time off", "Holds the fixed non-working tasks", start, end,
		).Error
		if err != nil {
			log.Fatalf("failed to insert time-off work package: %v", err)
		}
		if err := db.Raw("SELECT id FROM work_packages WHERE project_id = ? AND title = ?", projectID, "Time off").Row().Scan(&wpID); err != nil {
			log.Fatalf("failed to read back time-off work package: %v", err)
		}
		fmt.Println("Seeded work package: Time off")
	}

	deadline := time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, title := range []string{"Medical certification", "Blood donation", "Public holiday"} {
		var exists int
		row := db.Raw("SELECT 1 FROM tasks WHERE work_package_id = ? AND title = ?", wpID, title).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		err := db.Exec(
			"INSERT INTO tasks (work_package_id, title, description, effort_hours, duration_hours, deadline, priority_id, status_id) VALUES (?, ?, '', 0, 0, ?, (SELECT id FROM priority WHERE priority_name = 'Low'), (SELECT id FROM status WHERE status_name = 'Not started'))",
			wpID, title, deadline,
		).Error
		if err != nil {
			log.Fatalf("failed to insert non-working task %s: %v", title, err)
		}
		fmt.Println("Seeded task:", title)
	}
}
