package handler

import (
	"net/http"

	"github.com/google/uuid"
)

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	CompanyCtxKey    ContextKey = "company"
	MyInfoCtx        ContextKey = "myInfo"
	WorkerInfoCtx    ContextKey = "workerInfo"
	ShiftTemplateCtx ContextKey = "shiftTemplate"
)

// companyID is set by the auth middleware for every logged in request.
func companyID(r *http.Request) uuid.UUID {
	return r.Context().Value(CompanyCtxKey).(uuid.UUID)
}
