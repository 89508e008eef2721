package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkerShift is a committed assignment of a worker.
type WorkerShift struct {
	ID         uuid.UUID      `json:"id"`
	WorkerID   uuid.UUID      `json:"workerID"`
	CompanyID  uuid.UUID      `json:"companyID"`
	TemplateID uuid.NullUUID  `json:"templateID"`
	Start      time.Time      `json:"startDate"`
	End        time.Time      `json:"endDate"`
	Template   *ShiftTemplate `json:"template,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
