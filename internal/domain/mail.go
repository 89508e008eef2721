package domain

const (
	MailTypeNewAccount     = "new_account"
	MailTypeShiftsAssigned = "shifts_assigned"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewAccountMailData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AssignedShift struct {
	TemplateName string `json:"templateName"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

type ShiftsAssignedMailData struct {
	FullName string          `json:"fullName"`
	Shifts   []AssignedShift `json:"shifts"`
}
