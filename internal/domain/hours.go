package domain

import "time"

// DailyHoursEntry records the hours spent on a task during one calendar day.
// At most one entry exists per (task, date) pair; logging hours again for the
// same day overwrites the earlier value.
type DailyHoursEntry struct {
	TaskID     int64     `json:"task_id"`
	Date       time.Time `json:"date"`
	HoursSpent int       `json:"hours_spent"`
}

// NewDailyHoursEntry creates an entry for the given task and day. The
// time-of-day portion of date is discarded. Returns a validation error for
// negative hours.
func NewDailyHoursEntry(taskID int64, date time.Time, hoursSpent int) (*DailyHoursEntry, error) {
	if hoursSpent < 0 {
		return nil, NewValidationError("hours_spent", "must be zero or greater", ErrNegativeHours)
	}

	return &DailyHoursEntry{
		TaskID:     taskID,
		Date:       DateOnly(date),
		HoursSpent: hoursSpent,
	}, nil
}
