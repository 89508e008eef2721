package domain

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder is a proposed assignment produced by the scheduler. It is
// never stored as is.
type Placeholder struct {
	WorkerID   uuid.UUID `json:"workerID"`
	TemplateID uuid.UUID `json:"templateID"`
	Start      time.Time `json:"startDate"`
	End        time.Time `json:"endDate"`
}

// Suggestion is a stored placeholder waiting for an admin to accept or
// decline the whole batch of its company.
type Suggestion struct {
	ID         uuid.UUID `json:"id"`
	WorkerID   uuid.UUID `json:"workerID"`
	CompanyID  uuid.UUID `json:"companyID"`
	TemplateID uuid.UUID `json:"templateID"`
	Start      time.Time `json:"startDate"`
	End        time.Time `json:"endDate"`
	CreatedAt  time.Time `json:"createdAt"`
}
