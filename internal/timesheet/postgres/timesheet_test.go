package postgres_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzavatta/effort-tracking/internal/timesheet"
	timesheetPostgres "github.com/mzavatta/effort-tracking/internal/timesheet/postgres"
)

func TestTimesheetPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timesheet Postgres Suite")
}

const schema = `
CREATE TABLE work_packages (
	id INTEGER PRIMARY KEY,
	project_id INTEGER NOT NULL,
	title TEXT NOT NULL
);
CREATE TABLE tasks (
	id INTEGER PRIMARY KEY,
	work_package_id INTEGER NOT NULL,
	title TEXT NOT NULL
);
CREATE TABLE time_entries (
	user_id INTEGER NOT NULL,
	task_id INTEGER NOT NULL,
	entry_date DATE NOT NULL,
	hours REAL NOT NULL,
	PRIMARY KEY (user_id, task_id, entry_date)
);`

var _ = Describe("Timesheet Repository", func() {
	var (
		db   *sqlx.DB
		repo timesheet.Repository
		ctx  context.Context
		day  time.Time
	)

	const userID = int64(7)

	BeforeEach(func() {
		var err error
		db, err = sqlx.Connect("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())

		db.MustExec(schema)
		db.MustExec(`INSERT INTO work_packages (id, project_id, title) VALUES (1, 100, 'WP1'), (2, 200, 'WP2')`)
		db.MustExec(`INSERT INTO tasks (id, work_package_id, title) VALUES (10, 1, 'Alignment'), (11, 1, 'Annotation'), (20, 2, 'Review')`)

		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = timesheetPostgres.NewTimesheetRepository(db, lg)
		ctx = context.Background()
		day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		db.Close()
	})

	insertEntry := func(userID, taskID int64, entryDate time.Time, hours float64) {
		db.MustExec(`INSERT INTO time_entries (user_id, task_id, entry_date, hours) VALUES (?, ?, ?, ?)`,
			userID, taskID, entryDate, hours)
	}

	It("returns the user's rows within the inclusive range, joined to their project", func() {
		insertEntry(userID, 10, day, 4.0)
		insertEntry(userID, 20, day.AddDate(0, 0, 2), 2.0)
		insertEntry(userID, 11, day.AddDate(0, 0, 10), 8.0) // outside range
		insertEntry(userID+1, 10, day, 6.0)                 // another user

		rows, err := repo.EntriesInRange(ctx, userID, day, day.AddDate(0, 0, 6))

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].TaskID).To(Equal(int64(10)))
		Expect(rows[0].ProjectID).To(Equal(int64(100)))
		Expect(rows[0].Hours).To(Equal(4.0))
		Expect(rows[1].TaskID).To(Equal(int64(20)))
		Expect(rows[1].ProjectID).To(Equal(int64(200)))
	})

	It("orders rows by date, project and task", func() {
		insertEntry(userID, 20, day, 1.0)
		insertEntry(userID, 11, day, 2.0)
		insertEntry(userID, 10, day.AddDate(0, 0, -1), 3.0)

		rows, err := repo.EntriesInRange(ctx, userID, day.AddDate(0, 0, -1), day)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0].TaskID).To(Equal(int64(10)))
		Expect(rows[1].TaskID).To(Equal(int64(11)))
		Expect(rows[2].TaskID).To(Equal(int64(20)))
	})

	It("returns an empty slice when nothing is logged", func() {
		rows, err := repo.EntriesInRange(ctx, userID, day, day)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})
})
