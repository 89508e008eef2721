package mailqueue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func TestDecode_ShiftsAssigned(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeShiftsAssigned,
		To:   "sam@example.com",
		Data: domain.ShiftsAssignedMailData{
			FullName: "Sam Park",
			Shifts: []domain.AssignedShift{
				{TemplateName: "Morning", Start: "Mon 06 Jan 2025 06:00 UTC", End: "Mon 06 Jan 2025 14:00 UTC"},
			},
		},
	})
	require.NoError(t, err)

	msg, err := Decode(body)
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com", msg.To)
	data, ok := msg.Data.(domain.ShiftsAssignedMailData)
	require.True(t, ok)
	assert.Equal(t, "Sam Park", data.FullName)
	require.Len(t, data.Shifts, 1)
	assert.Equal(t, "Morning", data.Shifts[0].TemplateName)
}

func TestDecode_NewAccount(t *testing.T) {
	body := []byte(`{"type":"new_account","to":"lee@example.com","data":{"fullName":"Lee Chen","email":"lee@example.com","password":"s3cret"}}`)

	msg, err := Decode(body)
	require.NoError(t, err)

	data, ok := msg.Data.(domain.NewAccountMailData)
	require.True(t, ok)
	assert.Equal(t, "s3cret", data.Password)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte(`{"type":"reset_password","to":"a@example.com","data":{}}`))
	assert.ErrorContains(t, err, "unsupported mail type")

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
