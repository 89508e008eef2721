package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShiftTemplate is a weekly recurring shift. A template without days never
// produces an occurrence.
type ShiftTemplate struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"companyID"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	StartTime string    `json:"startTime"` // HH:MM
	EndTime   string    `json:"endTime"`   // HH:MM
	Days      []int32   `json:"days"`      // ISO weekdays, 1 = Monday ... 7 = Sunday
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
