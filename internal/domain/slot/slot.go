package slot

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// TimeSlot is a bookable unit of school+sport+date+time range. SeatsLeft is
// mutated only through the seat reservation primitive; everywhere else the
// struct is a read snapshot.
type TimeSlot struct {
	ID             uuid.UUID
	SchoolID       uuid.UUID
	SportID        uuid.UUID
	Date           time.Time
	StartTime      time.Time
	EndTime        time.Time
	Capacity       int
	SeatsLeft      int
	PricePerPerson int64
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t *TimeSlot) IsOpen() bool {
	return t.Status == StatusOpen
}
