package availability_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mzavatta/effort-tracking/internal/availability"
)

func TestAvailability(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Availability Suite")
}

// Mock repository returning canned task refs
type mockAvailabilityRepository struct {
	assigned      []availability.TaskRef
	catalogue     []availability.TaskRef
	assignedError error
}

func (m *mockAvailabilityRepository) AssignedTasksWithoutEntry(_ context.Context, _ int64, _ time.Time) ([]availability.TaskRef, error) {
	if m.assignedError != nil {
		return nil, m.assignedError
	}
	return m.assigned, nil
}

func (m *mockAvailabilityRepository) NonWorkingTasks(_ context.Context) ([]availability.TaskRef, error) {
	return m.catalogue, nil
}

var _ = Describe("AvailabilityService", func() {
	var (
		service  *availability.Service
		mockRepo *mockAvailabilityRepository
		ctx      context.Context
		day      time.Time
	)

	const userID = int64(7)

	BeforeEach(func() {
		mockRepo = &mockAvailabilityRepository{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = availability.NewService(mockRepo, lg)
		ctx = context.Background()
		day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	})

	It("unions assigned tasks with the non-working catalogue", func() {
		mockRepo.assigned = []availability.TaskRef{
			{TaskID: 42, TaskTitle: "Sequence alignment", ProjectID: 1, ProjectTitle: "Genome Mapping"},
		}
		mockRepo.catalogue = []availability.TaskRef{
			{TaskID: 500, TaskTitle: "Public holiday", ProjectID: 9, ProjectTitle: "TimeOffProj"},
		}

		available, err := service.AvailableTasks(ctx, userID, day)

		Expect(err).ToNot(HaveOccurred())
		Expect(available).To(HaveLen(2))
		Expect(available).To(HaveKeyWithValue("42 - Sequence alignment", "1 - Genome Mapping"))
		Expect(available).To(HaveKeyWithValue("500 - Public holiday", "9 - TimeOffProj"))
	})

	It("offers the catalogue even when nothing is assigned", func() {
		mockRepo.catalogue = []availability.TaskRef{
			{TaskID: 500, TaskTitle: "Public holiday", ProjectID: 9, ProjectTitle: "TimeOffProj"},
			{TaskID: 501, TaskTitle: "Blood donation", ProjectID: 9, ProjectTitle: "TimeOffProj"},
		}

		available, err := service.AvailableTasks(ctx, userID, day)

		Expect(err).ToNot(HaveOccurred())
		Expect(available).To(HaveLen(2))
	})

	It("lets the catalogue win a label collision", func() {
		mockRepo.assigned = []availability.TaskRef{
			{TaskID: 500, TaskTitle: "Public holiday", ProjectID: 1, ProjectTitle: "Genome Mapping"},
		}
		mockRepo.catalogue = []availability.TaskRef{
			{TaskID: 500, TaskTitle: "Public holiday", ProjectID: 9, ProjectTitle: "TimeOffProj"},
		}

		available, err := service.AvailableTasks(ctx, userID, day)

		Expect(err).ToNot(HaveOccurred())
		Expect(available).To(HaveLen(1))
		Expect(available).To(HaveKeyWithValue("500 - Public holiday", "9 - TimeOffProj"))
	})

	It("propagates repository failures", func() {
		mockRepo.assignedError = errors.New("store down")

		_, err := service.AvailableTasks(ctx, userID, day)

		Expect(err).To(HaveOccurred())
	})
})
