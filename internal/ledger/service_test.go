package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/core/events"
	"github.com/mzavatta/effort-tracking/internal/ledger"
)

func TestLedger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ledger Suite")
}

// Mock repository backed by in-memory maps
type mockLedgerRepository struct {
	entries     map[string]*ledger.Entry
	assignments map[string]*ledger.Assignment
	nonWorking  map[int64]bool

	insertError error
	adjustError error
	deleteError error
	getError    error
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{
		entries:     make(map[string]*ledger.Entry),
		assignments: make(map[string]*ledger.Assignment),
		nonWorking:  make(map[int64]bool),
	}
}

func entryKey(userID, taskID int64, day time.Time) string {
	return fmt.Sprintf("%d/%d/%s", userID, taskID, day.Format("2006-01-02"))
}

func assignmentKey(taskID, userID int64) string {
	return fmt.Sprintf("%d/%d", taskID, userID)
}

func (m *mockLedgerRepository) InsertEntry(_ context.Context, entry *ledger.Entry) error {
	if m.insertError != nil {
		return m.insertError
	}
	key := entryKey(entry.UserID, entry.TaskID, entry.Day)
	if _, exists := m.entries[key]; exists {
		return apperrors.ErrDuplicateEntry
	}
	stored := *entry
	m.entries[key] = &stored
	return nil
}

func (m *mockLedgerRepository) GetEntry(_ context.Context, userID, taskID int64, day time.Time) (*ledger.Entry, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	entry, exists := m.entries[entryKey(userID, taskID, day)]
	if !exists {
		return nil, apperrors.ErrEntryNotFound
	}
	return entry, nil
}

func (m *mockLedgerRepository) DeleteEntry(_ context.Context, userID, taskID int64, day time.Time) (int64, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	key := entryKey(userID, taskID, day)
	if _, exists := m.entries[key]; !exists {
		return 0, nil
	}
	delete(m.entries, key)
	return 1, nil
}

func (m *mockLedgerRepository) GetAssignment(_ context.Context, taskID, userID int64) (*ledger.Assignment, error) {
	assignment, exists := m.assignments[assignmentKey(taskID, userID)]
	if !exists {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return assignment, nil
}

func (m *mockLedgerRepository) AdjustConsumed(_ context.Context, taskID, userID int64, delta int, mode ledger.AdjustMode) (int64, error) {
	if m.adjustError != nil {
		return 0, m.adjustError
	}
	assignment, exists := m.assignments[assignmentKey(taskID, userID)]
	if !exists {
		return 0, nil
	}
	switch mode {
	case ledger.AdjustAdd:
		assignment.EffortConsumed += delta
	case ledger.AdjustSubtract:
		assignment.EffortConsumed -= delta
	case ledger.AdjustReplace:
		assignment.EffortConsumed = delta
	}
	return 1, nil
}

func (m *mockLedgerRepository) SumTruncatedEntryHours(_ context.Context, taskID, userID int64) (int, error) {
	total := 0
	for _, entry := range m.entries {
		if entry.TaskID == taskID && entry.UserID == userID {
			total += int(entry.Hours)
		}
	}
	return total, nil
}

func (m *mockLedgerRepository) IsNonWorkingTask(_ context.Context, taskID int64) (bool, error) {
	return m.nonWorking[taskID], nil
}

// Mock publisher capturing published events
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) eventTypes() []string {
	types := make([]string, len(m.published))
	for i, event := range m.published {
		types[i] = event.EventType()
	}
	return types
}

var _ = Describe("LedgerService", func() {
	var (
		service  *ledger.Service
		mockRepo *mockLedgerRepository
		bus      *mockPublisher
		ctx      context.Context
		day      time.Time
	)

	const (
		userID = int64(7)
		taskID = int64(42)
	)

	BeforeEach(func() {
		mockRepo = newMockLedgerRepository()
		bus = &mockPublisher{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = ledger.NewService(mockRepo, bus, lg)
		ctx = context.Background()
		day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

		mockRepo.assignments[assignmentKey(taskID, userID)] = &ledger.Assignment{
			TaskID:           taskID,
			UserID:           userID,
			EffortHypothetic: 40,
			EffortConsumed:   0,
		}
	})

	Describe("RecordHours", func() {
		It("inserts the entry and advances the counter by the whole hours", func() {
			entry, err := service.RecordHours(ctx, userID, taskID, day, 3.0)

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Hours).To(Equal(3.0))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(3))
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeEntryRecorded))
		})

		It("truncates fractional hours on the counter but keeps them on the entry", func() {
			entry, err := service.RecordHours(ctx, userID, taskID, day, 2.5)

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Hours).To(Equal(2.5))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(2))
		})

		It("rejects non-positive hours", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 0)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("rejects a second entry for the same task and day", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.RecordHours(ctx, userID, taskID, day, 1.0)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeDuplicateEntry))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(3))
		})

		It("refuses to record against a task without an assignment", func() {
			_, err := service.RecordHours(ctx, userID, int64(999), day, 2.0)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeConstraintViolation))
			Expect(mockRepo.entries).To(BeEmpty())
		})

		It("records against a non-working task without an assignment and skips the counter", func() {
			holidayTask := int64(500)
			mockRepo.nonWorking[holidayTask] = true

			entry, err := service.RecordHours(ctx, userID, holidayTask, day, 8.0)

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Hours).To(Equal(8.0))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
		})

		Context("when the counter update fails after the entry insert", func() {
			BeforeEach(func() {
				mockRepo.adjustError = apperrors.NewUnavailableError("store down", errors.New("connection reset"))
			})

			It("reports a partial write", func() {
				_, err := service.RecordHours(ctx, userID, taskID, day, 4.0)

				Expect(err).To(HaveOccurred())
				Expect(ledger.IsPartialWrite(err)).To(BeTrue())
				// The entry row is left behind for the caller to compensate.
				Expect(mockRepo.entries).To(HaveLen(1))
			})

			It("is fully undone by the compensating removal once the store recovers", func() {
				_, err := service.RecordHours(ctx, userID, taskID, day, 4.0)
				Expect(ledger.IsPartialWrite(err)).To(BeTrue())

				mockRepo.adjustError = nil
				removed, err := service.RemoveHours(ctx, userID, taskID, day)

				Expect(err).ToNot(HaveOccurred())
				Expect(removed).To(BeTrue())
				Expect(mockRepo.entries).To(BeEmpty())
				// The increment never landed, so the reversal must not move the
				// counter off its pre-record value.
				Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
			})
		})
	})

	Describe("RemoveHours", func() {
		It("deletes the entry and rolls the counter back", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())

			removed, err := service.RemoveHours(ctx, userID, taskID, day)

			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())
			Expect(mockRepo.entries).To(BeEmpty())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeEntryRemoved))
		})

		It("treats a missing entry as a no-op", func() {
			removed, err := service.RemoveHours(ctx, userID, taskID, day)

			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeFalse())
		})

		It("is idempotent when invoked twice", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())

			removed, err := service.RemoveHours(ctx, userID, taskID, day)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())

			removed, err = service.RemoveHours(ctx, userID, taskID, day)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeFalse())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
		})

		It("stays inverse to record across fractional entries", func() {
			nextDay := day.AddDate(0, 0, 1)
			_, err := service.RecordHours(ctx, userID, taskID, day, 1.5)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.RecordHours(ctx, userID, taskID, nextDay, 1.5)
			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(2))

			removed, err := service.RemoveHours(ctx, userID, taskID, day)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())
			// Each entry put 1 whole hour on the counter, so each removal
			// takes exactly 1 back.
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(1))

			removed, err = service.RemoveHours(ctx, userID, taskID, nextDay)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())
			Expect(mockRepo.entries).To(BeEmpty())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
		})

		It("keeps the entry when the counter decrement fails", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())

			mockRepo.adjustError = apperrors.NewUnavailableError("store down", errors.New("connection reset"))
			removed, err := service.RemoveHours(ctx, userID, taskID, day)

			Expect(err).To(HaveOccurred())
			Expect(removed).To(BeFalse())
			Expect(mockRepo.entries).To(HaveLen(1))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(3))
		})

		It("skips the counter for non-working tasks", func() {
			holidayTask := int64(500)
			mockRepo.nonWorking[holidayTask] = true
			_, err := service.RecordHours(ctx, userID, holidayTask, day, 8.0)
			Expect(err).ToNot(HaveOccurred())

			removed, err := service.RemoveHours(ctx, userID, holidayTask, day)

			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())
		})
	})

	Describe("AdjustConsumed", func() {
		It("rejects unknown modes", func() {
			_, err := service.AdjustConsumed(ctx, taskID, userID, 1, ledger.AdjustMode("divide"))

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("rejects negative deltas", func() {
			_, err := service.AdjustConsumed(ctx, taskID, userID, -1, ledger.AdjustAdd)

			Expect(err).To(HaveOccurred())
		})

		It("reports a missing assignment when no row is touched", func() {
			_, err := service.AdjustConsumed(ctx, int64(999), userID, 1, ledger.AdjustAdd)

			Expect(errors.Is(err, apperrors.ErrAssignmentNotFound)).To(BeTrue())
		})

		It("replaces the counter outright in replace mode", func() {
			ok, err := service.AdjustConsumed(ctx, taskID, userID, 17, ledger.AdjustReplace)

			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(17))
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeCounterAdjusted))
		})
	})

	Describe("CheckConsistency", func() {
		It("passes when the counter matches the truncated entry sum", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.5)
			Expect(err).ToNot(HaveOccurred())

			Expect(service.CheckConsistency(ctx, taskID, userID)).To(Succeed())
		})

		It("accepts fractional entries across days without reporting drift", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 1.5)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.RecordHours(ctx, userID, taskID, day.AddDate(0, 0, 1), 1.5)
			Expect(err).ToNot(HaveOccurred())

			// Counter is 2 while the raw sum is 3.0; the per-entry basis
			// must not flag this as drift.
			Expect(service.CheckConsistency(ctx, taskID, userID)).To(Succeed())
		})

		It("reports drift when the counter disagrees with the entries", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())
			mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed = 99

			err = service.CheckConsistency(ctx, taskID, userID)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeConsistencyDrift))
		})
	})

	Describe("RepairConsistency", func() {
		It("rewrites the counter from the entry rows", func() {
			_, err := service.RecordHours(ctx, userID, taskID, day, 3.0)
			Expect(err).ToNot(HaveOccurred())
			mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed = 99

			Expect(service.RepairConsistency(ctx, taskID, userID)).To(Succeed())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(3))
			Expect(service.CheckConsistency(ctx, taskID, userID)).To(Succeed())
		})
	})
})
