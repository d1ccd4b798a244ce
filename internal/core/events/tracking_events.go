package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEntryRecorded   = "tracking.entry_recorded"
	EventTypeEntryRemoved    = "tracking.entry_removed"
	EventTypeCounterAdjusted = "tracking.counter_adjusted"
)

func NewEntryRecordedEvent(userID, taskID int64, day time.Time, hours float64) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeEntryRecorded,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"task_id":    taskID,
			"entry_date": day.Format("2006-01-02"),
			"hours":      hours,
		},
	}
}

func NewEntryRemovedEvent(userID, taskID int64, day time.Time, hours float64) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeEntryRemoved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"task_id":    taskID,
			"entry_date": day.Format("2006-01-02"),
			"hours":      hours,
		},
	}
}

// NewCounterAdjustedEvent records every mutation of an assignment's
// effort_consumed counter so the single choke point stays auditable.
func NewCounterAdjustedEvent(userID, taskID int64, delta int, mode string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeCounterAdjusted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"task_id": taskID,
			"delta":   delta,
			"mode":    mode,
		},
	}
}
