package ledger_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
	"github.com/mzavatta/effort-tracking/internal/ledger"
)

var _ = Describe("LedgerHandler", func() {
	var (
		handler  *ledger.Handler
		mockRepo *mockLedgerRepository
		day      time.Time
	)

	const (
		userID = int64(7)
		taskID = int64(42)
	)

	admin := &auth.User{ID: 1, Email: "admin@lab.example", Role: "Administrator"}
	researcher := &auth.User{ID: userID, Email: "researcher@lab.example", Role: "Researcher"}

	BeforeEach(func() {
		mockRepo = newMockLedgerRepository()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := ledger.NewService(mockRepo, &mockPublisher{}, lg)
		handler = ledger.NewHandler(service)
		day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

		mockRepo.assignments[assignmentKey(taskID, userID)] = &ledger.Assignment{
			TaskID:           taskID,
			UserID:           userID,
			EffortHypothetic: 40,
			EffortConsumed:   0,
		}
	})

	doRequest := func(user *auth.User, target, body string, handle http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req = req.WithContext(auth.ContextWithUser(context.Background(), user))
		rec := httptest.NewRecorder()
		handle(rec, req)
		return rec
	}

	Describe("AdjustConsumed", func() {
		It("lets an administrator move the counter", func() {
			rec := doRequest(admin, "/api/v1/tracking/consumed",
				`{"task_id": 42, "user_id": 7, "delta": 5, "mode": "add"}`,
				handler.AdjustConsumed)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(5))
		})

		It("refuses non-administrators", func() {
			rec := doRequest(researcher, "/api/v1/tracking/consumed",
				`{"task_id": 42, "user_id": 7, "delta": 5, "mode": "add"}`,
				handler.AdjustConsumed)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
		})

		It("reports a missing assignment", func() {
			rec := doRequest(admin, "/api/v1/tracking/consumed",
				`{"task_id": 999, "user_id": 7, "delta": 5, "mode": "add"}`,
				handler.AdjustConsumed)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects an unknown mode", func() {
			rec := doRequest(admin, "/api/v1/tracking/consumed",
				`{"task_id": 42, "user_id": 7, "delta": 5, "mode": "divide"}`,
				handler.AdjustConsumed)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("RepairConsistency", func() {
		It("rewrites a drifted counter from the entry rows", func() {
			mockRepo.entries[entryKey(userID, taskID, day)] = &ledger.Entry{
				UserID: userID, TaskID: taskID, Day: day, Hours: 1.5,
			}
			mockRepo.entries[entryKey(userID, taskID, day.AddDate(0, 0, 1))] = &ledger.Entry{
				UserID: userID, TaskID: taskID, Day: day.AddDate(0, 0, 1), Hours: 1.5,
			}
			mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed = 99

			rec := doRequest(admin, "/api/v1/tracking/consumed/repair",
				`{"task_id": 42, "user_id": 7}`,
				handler.RepairConsistency)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(2))
		})

		It("refuses non-administrators", func() {
			rec := doRequest(researcher, "/api/v1/tracking/consumed/repair",
				`{"task_id": 42, "user_id": 7}`,
				handler.RepairConsistency)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("RecordHours", func() {
		It("compensates a partial write before reporting the failure", func() {
			mockRepo.adjustError = apperrors.NewUnavailableError("store down", errors.New("connection reset"))

			rec := doRequest(researcher, "/api/v1/tracking/entries",
				`{"task_id": 42, "date": "2025-03-10", "hours": 3}`,
				handler.RecordHours)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			// The compensating removal cleared the orphaned entry and left
			// the counter on its pre-record value.
			Expect(mockRepo.entries).To(BeEmpty())
			Expect(mockRepo.assignments[assignmentKey(taskID, userID)].EffortConsumed).To(Equal(0))
		})
	})
})
