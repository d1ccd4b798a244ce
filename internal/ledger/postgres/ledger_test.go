package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	catalogDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/catalog"
	trackingDatamodel "github.com/mzavatta/effort-tracking/internal/core/datamodel/tracking"
	"github.com/mzavatta/effort-tracking/internal/ledger"
	ledgerPostgres "github.com/mzavatta/effort-tracking/internal/ledger/postgres"
)

func TestLedgerPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ledger Postgres Suite")
}

var _ = Describe("Ledger Repository", func() {
	var (
		db   *gorm.DB
		repo ledger.Repository
		ctx  context.Context
		day  time.Time
	)

	const (
		userID = int64(7)
		taskID = int64(1)
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&catalogDatamodel.Project{},
			&catalogDatamodel.WorkPackage{},
			&catalogDatamodel.Task{},
			&trackingDatamodel.TimeEntry{},
			&trackingDatamodel.TaskAssignment{},
		)
		Expect(err).NotTo(HaveOccurred())

		seedCatalog(db)

		repo = ledgerPostgres.NewLedgerRepository(db)
		ctx = context.Background()
		day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	})

	Describe("InsertEntry", func() {
		It("stores an entry with fractional hours", func() {
			err := repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 2.5})
			Expect(err).NotTo(HaveOccurred())

			entry, err := repo.GetEntry(ctx, userID, taskID, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Hours).To(Equal(2.5))
		})

		It("translates a primary key collision to a duplicate entry conflict", func() {
			err := repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 2.0})
			Expect(err).NotTo(HaveOccurred())

			err = repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 3.0})
			Expect(errors.Is(err, apperrors.ErrDuplicateEntry)).To(BeTrue())
		})

		It("allows the same task and day for different users", func() {
			Expect(repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 2.0})).To(Succeed())
			Expect(repo.InsertEntry(ctx, &ledger.Entry{UserID: userID + 1, TaskID: taskID, Day: day, Hours: 4.0})).To(Succeed())
		})
	})

	Describe("GetEntry", func() {
		It("reports a missing entry as not found", func() {
			_, err := repo.GetEntry(ctx, userID, taskID, day)
			Expect(errors.Is(err, apperrors.ErrEntryNotFound)).To(BeTrue())
		})
	})

	Describe("DeleteEntry", func() {
		It("reports zero rows for a missing entry", func() {
			rows, err := repo.DeleteEntry(ctx, userID, taskID, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeZero())
		})

		It("reports one row for an existing entry", func() {
			Expect(repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 2.0})).To(Succeed())

			rows, err := repo.DeleteEntry(ctx, userID, taskID, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))
		})
	})

	Describe("AdjustConsumed", func() {
		BeforeEach(func() {
			err := db.Create(&trackingDatamodel.TaskAssignment{
				TaskID:           taskID,
				UserID:           userID,
				EffortHypothetic: 40,
				EffortConsumed:   5,
			}).Error
			Expect(err).NotTo(HaveOccurred())
		})

		It("adds the delta in place", func() {
			rows, err := repo.AdjustConsumed(ctx, taskID, userID, 3, ledger.AdjustAdd)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			assignment, err := repo.GetAssignment(ctx, taskID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.EffortConsumed).To(Equal(8))
		})

		It("subtracts the delta in place", func() {
			rows, err := repo.AdjustConsumed(ctx, taskID, userID, 2, ledger.AdjustSubtract)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			assignment, err := repo.GetAssignment(ctx, taskID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.EffortConsumed).To(Equal(3))
		})

		It("replaces the counter outright", func() {
			rows, err := repo.AdjustConsumed(ctx, taskID, userID, 11, ledger.AdjustReplace)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			assignment, err := repo.GetAssignment(ctx, taskID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.EffortConsumed).To(Equal(11))
		})

		It("touches no rows for a missing assignment", func() {
			rows, err := repo.AdjustConsumed(ctx, taskID, userID+99, 3, ledger.AdjustAdd)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeZero())
		})
	})

	Describe("SumTruncatedEntryHours", func() {
		It("returns zero for an assignment without entries", func() {
			total, err := repo.SumTruncatedEntryHours(ctx, taskID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})

		It("truncates each entry before summing", func() {
			Expect(repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day, Hours: 2.5})).To(Succeed())
			Expect(repo.InsertEntry(ctx, &ledger.Entry{UserID: userID, TaskID: taskID, Day: day.AddDate(0, 0, 1), Hours: 1.25})).To(Succeed())

			total, err := repo.SumTruncatedEntryHours(ctx, taskID, userID)
			Expect(err).NotTo(HaveOccurred())
			// 2.5 + 1.25 truncate to 2 + 1, not to int(3.75).
			Expect(total).To(Equal(3))
		})
	})

	Describe("IsNonWorkingTask", func() {
		It("classifies catalogue tasks by their project title", func() {
			nonWorking, err := repo.IsNonWorkingTask(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(nonWorking).To(BeTrue())
		})

		It("classifies regular tasks as working", func() {
			nonWorking, err := repo.IsNonWorkingTask(ctx, taskID)
			Expect(err).NotTo(HaveOccurred())
			Expect(nonWorking).To(BeFalse())
		})
	})
})

// seedCatalog builds one regular project (task 1) and the non-working
// catalogue project (task 2).
func seedCatalog(db *gorm.DB) {
	deadline := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

	projects := []catalogDatamodel.Project{
		{ID: 1, Title: "Genome Mapping", SupervisorID: 2, CreatedByAdminID: 1},
		{ID: 2, Title: catalogDatamodel.NonWorkingProjectTitle, SupervisorID: 2, CreatedByAdminID: 1},
	}
	Expect(db.Create(&projects).Error).NotTo(HaveOccurred())

	workPackages := []catalogDatamodel.WorkPackage{
		{ID: 1, ProjectID: 1, Title: "WP1", StartDate: deadline.AddDate(-1, 0, 0), EndDate: deadline},
		{ID: 2, ProjectID: 2, Title: "Time off", StartDate: deadline.AddDate(-1, 0, 0), EndDate: deadline},
	}
	Expect(db.Create(&workPackages).Error).NotTo(HaveOccurred())

	tasks := []catalogDatamodel.Task{
		{ID: 1, WorkPackageID: 1, Title: "Sequence alignment", Deadline: deadline, PriorityID: 1, StatusID: 1},
		{ID: 2, WorkPackageID: 2, Title: "Public holiday", Deadline: deadline, PriorityID: 1, StatusID: 1},
	}
	Expect(db.Create(&tasks).Error).NotTo(HaveOccurred())
}
