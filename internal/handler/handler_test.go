package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/suggestion"
	"golang.org/x/crypto/bcrypt"
)

var testCompany = uuid.MustParse("0000000c-0000-0000-0000-000000000000")

// fakeStore keeps everything in memory. Methods the tests never reach fall
// through to the nil embedded Store and panic.
type fakeStore struct {
	Store

	mu          sync.Mutex
	companies   []*domain.Company
	users       []*domain.User
	templates   []*domain.ShiftTemplate
	shifts      []*domain.WorkerShift
	suggestions []*domain.Suggestion
	overlap     bool
}

func (s *fakeStore) RegisterCompany(_ context.Context, company *domain.Company, admin *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.Name == company.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "companies_name_key"}
		}
	}
	for _, u := range s.users {
		if u.Email == admin.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	company.ID = uuid.New()
	admin.ID = uuid.New()
	admin.CompanyID = company.ID
	admin.Role = domain.RoleAdmin
	admin.IsActive = true
	s.companies = append(s.companies, company)
	s.users = append(s.users, admin)
	return nil
}

func (s *fakeStore) GetCompanyByID(_ context.Context, id uuid.UUID) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) CheckEmailIfExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DeleteUser(_ context.Context, companyID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id && u.CompanyID == companyID {
			s.users = slices.Delete(s.users, i, i+1)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) GetUsersByCompanyID(_ context.Context, companyID uuid.UUID) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*domain.User
	for _, u := range s.users {
		if u.CompanyID == companyID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeStore) GetWorkersByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error) {
	users, _ := s.GetUsersByCompanyID(ctx, companyID)
	var workers []*domain.User
	for _, u := range users {
		if u.Role == domain.RoleWorker && u.IsActive {
			workers = append(workers, u)
		}
	}
	return workers, nil
}

func (s *fakeStore) GetShiftTemplatesByCompanyID(_ context.Context, companyID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var templates []*domain.ShiftTemplate
	for _, t := range s.templates {
		if t.CompanyID == companyID {
			templates = append(templates, t)
		}
	}
	return templates, nil
}

func (s *fakeStore) GetShiftTemplateByID(_ context.Context, companyID, id uuid.UUID) (*domain.ShiftTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.CompanyID == companyID && t.ID == id {
			return t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) CreateShiftTemplate(_ context.Context, template *domain.ShiftTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	template.ID = uuid.New()
	s.templates = append(s.templates, template)
	return nil
}

func (s *fakeStore) GetWorkerShiftsInRange(_ context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shifts []*domain.WorkerShift
	for _, shift := range s.shifts {
		if shift.CompanyID == companyID && rng.Contains(shift.Start) {
			shifts = append(shifts, shift)
		}
	}
	return shifts, nil
}

func (s *fakeStore) GetWorkerShiftsOverlapping(_ context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shifts []*domain.WorkerShift
	for _, shift := range s.shifts {
		if shift.CompanyID == companyID && rng.Overlaps(shift.Start, shift.End) {
			shifts = append(shifts, shift)
		}
	}
	return shifts, nil
}

func (s *fakeStore) CreateWorkerShift(_ context.Context, shift *domain.WorkerShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlap {
		return repository.ErrShiftOverlap
	}
	shift.ID = uuid.New()
	s.shifts = append(s.shifts, shift)
	return nil
}

func (s *fakeStore) GetSuggestionsByCompanyID(_ context.Context, _ uuid.UUID) ([]*domain.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Suggestion(nil), s.suggestions...), nil
}

func (s *fakeStore) ReplaceSuggestions(_ context.Context, _ uuid.UUID, suggestions []*domain.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append([]*domain.Suggestion(nil), suggestions...)
	return nil
}

func (s *fakeStore) DeleteAllSuggestions(_ context.Context, _ uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.suggestions))
	s.suggestions = nil
	return n, nil
}

func (s *fakeStore) MaterializeSuggestions(_ context.Context, _ uuid.UUID) ([]*domain.WorkerShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shifts := make([]*domain.WorkerShift, 0, len(s.suggestions))
	for _, sg := range s.suggestions {
		shifts = append(shifts, &domain.WorkerShift{
			ID:         uuid.New(),
			WorkerID:   sg.WorkerID,
			CompanyID:  sg.CompanyID,
			TemplateID: uuid.NullUUID{UUID: sg.TemplateID, Valid: true},
			Start:      sg.Start,
			End:        sg.End,
		})
	}
	s.shifts = append(s.shifts, shifts...)
	s.suggestions = nil
	return shifts, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.MailMessage
}

func (m *fakeMailer) Publish(_ context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T, store *fakeStore) (*Handler, *fakeMailer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.NewUser.PasswordLength = 12

	mailer := &fakeMailer{}
	manager := suggestion.NewManager(store, nil, nil, nil, nil)

	h, err := NewHandler(cfg, store, manager, mailer, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h, mailer
}

func newUser(role domain.Role, email string) *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		CompanyID: testCompany,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
}

func do(t *testing.T, h *Handler, method, path string, body any, as *domain.User) testResponse {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		token, _, err := h.issueToken(as)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestAuth_RequiresCookie(t *testing.T) {
	h, _ := newTestHandler(t, &fakeStore{})

	resp := do(t, h, http.MethodGet, "/shift-templates", nil, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "not logged in", resp.Message)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	user := newUser(domain.RoleWorker, "worker@example.com")
	user.PasswordHash = string(hash)
	h, _ := newTestHandler(t, &fakeStore{users: []*domain.User{user}})

	t.Run("wrong password", func(t *testing.T) {
		resp := do(t, h, http.MethodPost, "/auth/login", map[string]string{
			"email":    "worker@example.com",
			"password": "battery staple",
		}, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, "incorrect email or password", resp.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := do(t, h, http.MethodPost, "/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "correct horse",
		}, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, "incorrect email or password", resp.Message)
	})

	t.Run("cookie grants access", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"email": "worker@example.com", "password": "correct horse"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, tokenCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		req = httptest.NewRequest(http.MethodGet, "/my-info", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		var resp testResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotContains(t, string(resp.Data), "passwordHash")
	})
}

func TestRegister(t *testing.T) {
	existing := newUser(domain.RoleWorker, "taken@example.com")
	store := &fakeStore{
		companies: []*domain.Company{{ID: testCompany, Name: "Acme"}},
		users:     []*domain.User{existing},
	}
	h, _ := newTestHandler(t, store)

	register := func(company, email string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{
			"companyName": company,
			"email":       email,
			"password":    "long enough",
			"firstName":   "Dana",
			"lastName":    "Reyes",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)
		return rec
	}
	decode := func(rec *httptest.ResponseRecorder) testResponse {
		var resp testResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
		return resp
	}

	t.Run("email taken", func(t *testing.T) {
		resp := decode(register("Globex", "taken@example.com"))
		assert.False(t, resp.Success)
		assert.Equal(t, "email already exists", resp.Message)
		assert.Len(t, store.companies, 1)
	})

	t.Run("company name taken", func(t *testing.T) {
		resp := decode(register("Acme", "new@example.com"))
		assert.False(t, resp.Success)
		assert.Equal(t, "company name already exists", resp.Message)
	})

	t.Run("registered admin is logged in", func(t *testing.T) {
		rec := register("Globex", "dana@example.com")
		resp := decode(rec)
		require.True(t, resp.Success, resp.Message)
		assert.NotContains(t, string(resp.Data), "passwordHash")

		var data struct {
			Company domain.Company `json:"company"`
			Admin   domain.User    `json:"admin"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "Globex", data.Company.Name)
		assert.Equal(t, data.Company.ID, data.Admin.CompanyID)
		assert.Equal(t, domain.RoleAdmin, data.Admin.Role)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)

		req := httptest.NewRequest(http.MethodGet, "/my-info/company", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp = decode(rec)
		require.True(t, resp.Success, resp.Message)
		var company domain.Company
		require.NoError(t, json.Unmarshal(resp.Data, &company))
		assert.Equal(t, data.Company.ID, company.ID)
		assert.Equal(t, "Globex", company.Name)
	})
}

func TestDeleteWorker(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	otherAdmin := newUser(domain.RoleAdmin, "second@example.com")
	worker := newUser(domain.RoleWorker, "worker@example.com")
	stranger := newUser(domain.RoleWorker, "stranger@example.com")
	stranger.CompanyID = uuid.New()
	store := &fakeStore{users: []*domain.User{admin, otherAdmin, worker, stranger}}
	h, _ := newTestHandler(t, store)

	resp := do(t, h, http.MethodDelete, "/workers/"+otherAdmin.ID.String(), nil, admin)
	assert.False(t, resp.Success)
	assert.Equal(t, "only workers can be deleted", resp.Message)

	resp = do(t, h, http.MethodDelete, "/workers/"+stranger.ID.String(), nil, admin)
	assert.False(t, resp.Success)
	assert.Equal(t, "worker not found", resp.Message)

	resp = do(t, h, http.MethodDelete, "/workers/"+worker.ID.String(), nil, worker)
	assert.False(t, resp.Success)
	assert.Equal(t, "permission denied", resp.Message)

	resp = do(t, h, http.MethodDelete, "/workers/"+worker.ID.String(), nil, admin)
	require.True(t, resp.Success, resp.Message)
	assert.NotContains(t, store.users, worker)
	assert.Len(t, store.users, 3)

	resp = do(t, h, http.MethodDelete, "/workers/"+worker.ID.String(), nil, admin)
	assert.False(t, resp.Success)
	assert.Equal(t, "worker not found", resp.Message)
}

func TestSuggestions_RequireAdmin(t *testing.T) {
	worker := newUser(domain.RoleWorker, "worker@example.com")
	h, _ := newTestHandler(t, &fakeStore{users: []*domain.User{worker}})

	resp := do(t, h, http.MethodGet, "/worker-shifts/suggestions", nil, worker)
	assert.False(t, resp.Success)
	assert.Equal(t, "permission denied", resp.Message)
}

func dailyTemplate() *domain.ShiftTemplate {
	return &domain.ShiftTemplate{
		ID:        uuid.New(),
		CompanyID: testCompany,
		Name:      "Day",
		StartTime: "09:00",
		EndTime:   "17:00",
		Days:      []int32{1, 2, 3, 4, 5, 6, 7},
	}
}

func TestAutoAssign_WithoutWorkers(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	h, _ := newTestHandler(t, &fakeStore{
		users:     []*domain.User{admin},
		templates: []*domain.ShiftTemplate{dailyTemplate()},
	})

	resp := do(t, h, http.MethodPost, "/worker-shifts/auto-assign", map[string]any{
		"rangeStart": "2025-01-01T00:00:00Z",
		"rangeEnd":   "2025-01-01T23:59:59Z",
	}, admin)
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Message, "cannot auto-assign with current roster"), resp.Message)
}

func TestAutoAssign_Exhausted(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	worker := newUser(domain.RoleWorker, "worker@example.com")
	second := dailyTemplate()
	second.Name = "Day backup"
	h, _ := newTestHandler(t, &fakeStore{
		users:     []*domain.User{admin, worker},
		templates: []*domain.ShiftTemplate{dailyTemplate(), second},
	})

	resp := do(t, h, http.MethodPost, "/worker-shifts/auto-assign", map[string]any{
		"rangeStart": "2025-01-01T00:00:00Z",
		"rangeEnd":   "2025-01-01T23:59:59Z",
	}, admin)
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Message, "cannot auto-assign with current roster"), resp.Message)
	assert.Contains(t, resp.Message, "Day backup")
}

func TestAutoAssign_InvalidRange(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	h, _ := newTestHandler(t, &fakeStore{users: []*domain.User{admin}})

	resp := do(t, h, http.MethodPost, "/worker-shifts/auto-assign", map[string]any{
		"rangeStart": "2025-01-02T00:00:00Z",
		"rangeEnd":   "2025-01-01T00:00:00Z",
	}, admin)
	assert.False(t, resp.Success)
}

func TestAutoAssign_AcceptQueuesMails(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	alice := newUser(domain.RoleWorker, "alice@example.com")
	bob := newUser(domain.RoleWorker, "bob@example.com")
	store := &fakeStore{
		users:     []*domain.User{admin, alice, bob},
		templates: []*domain.ShiftTemplate{dailyTemplate()},
	}
	h, mailer := newTestHandler(t, store)

	resp := do(t, h, http.MethodPost, "/worker-shifts/auto-assign", map[string]any{
		"rangeStart": "2025-01-01T00:00:00Z",
		"rangeEnd":   "2025-01-02T23:59:59Z",
	}, admin)
	require.True(t, resp.Success, resp.Message)

	var suggestions []*domain.Suggestion
	require.NoError(t, json.Unmarshal(resp.Data, &suggestions))
	require.Len(t, suggestions, 2)
	assert.NotEqual(t, suggestions[0].WorkerID, suggestions[1].WorkerID)

	resp = do(t, h, http.MethodGet, "/worker-shifts/suggestions", nil, admin)
	require.True(t, resp.Success)
	var listed []*domain.Suggestion
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	assert.Len(t, listed, 2)

	resp = do(t, h, http.MethodPost, "/worker-shifts/suggestions/accept", nil, admin)
	require.True(t, resp.Success, resp.Message)
	var shifts []*domain.WorkerShift
	require.NoError(t, json.Unmarshal(resp.Data, &shifts))
	assert.Len(t, shifts, 2)

	require.Len(t, mailer.sent, 2)
	recipients := []string{mailer.sent[0].To, mailer.sent[1].To}
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, recipients)
	for _, mail := range mailer.sent {
		assert.Equal(t, domain.MailTypeShiftsAssigned, mail.Type)
	}

	resp = do(t, h, http.MethodDelete, "/worker-shifts/suggestions", nil, admin)
	require.True(t, resp.Success)
	assert.JSONEq(t, `{"deleted":0}`, string(resp.Data))
}

func TestCreateShiftTemplate_Validation(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	store := &fakeStore{users: []*domain.User{admin}}
	h, _ := newTestHandler(t, store)

	resp := do(t, h, http.MethodPost, "/shift-templates", map[string]any{
		"name":      "Night",
		"startTime": "22:00",
		"endTime":   "06:00",
		"days":      []int{1},
	}, admin)
	assert.False(t, resp.Success)
	assert.Equal(t, "end time must be after start time", resp.Message)

	resp = do(t, h, http.MethodPost, "/shift-templates", map[string]any{
		"name":      "Morning",
		"startTime": "06:00:00",
		"endTime":   "12:00",
		"days":      []int{3, 1, 3},
	}, admin)
	require.True(t, resp.Success, resp.Message)

	var template domain.ShiftTemplate
	require.NoError(t, json.Unmarshal(resp.Data, &template))
	assert.Equal(t, "06:00", template.StartTime)
	assert.Equal(t, []int32{1, 3}, template.Days)
	assert.Equal(t, testCompany, template.CompanyID)
}

func TestCreateWorkerShift(t *testing.T) {
	admin := newUser(domain.RoleAdmin, "admin@example.com")
	worker := newUser(domain.RoleWorker, "worker@example.com")
	template := dailyTemplate()

	t.Run("template window", func(t *testing.T) {
		store := &fakeStore{users: []*domain.User{admin, worker}, templates: []*domain.ShiftTemplate{template}}
		h, _ := newTestHandler(t, store)

		resp := do(t, h, http.MethodPost, "/worker-shifts", map[string]any{
			"workerID":   worker.ID,
			"templateID": template.ID,
			"startDate":  "2025-01-06T00:00:00Z",
		}, admin)
		require.True(t, resp.Success, resp.Message)
		require.Len(t, store.shifts, 1)
		assert.Equal(t, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), store.shifts[0].Start.UTC())
		assert.Equal(t, time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC), store.shifts[0].End.UTC())
	})

	t.Run("template window follows the date's location", func(t *testing.T) {
		withSeconds := dailyTemplate()
		withSeconds.StartTime = "09:00:00"
		store := &fakeStore{users: []*domain.User{admin, worker}, templates: []*domain.ShiftTemplate{withSeconds}}
		h, _ := newTestHandler(t, store)

		resp := do(t, h, http.MethodPost, "/worker-shifts", map[string]any{
			"workerID":   worker.ID,
			"templateID": withSeconds.ID,
			"startDate":  "2025-01-06T00:00:00+08:00",
		}, admin)
		require.True(t, resp.Success, resp.Message)
		require.Len(t, store.shifts, 1)
		assert.Equal(t, time.Date(2025, 1, 6, 1, 0, 0, 0, time.UTC), store.shifts[0].Start.UTC())
		assert.Equal(t, time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), store.shifts[0].End.UTC())
	})

	t.Run("overlap rejected", func(t *testing.T) {
		store := &fakeStore{users: []*domain.User{admin, worker}, overlap: true}
		h, _ := newTestHandler(t, store)

		resp := do(t, h, http.MethodPost, "/worker-shifts", map[string]any{
			"workerID":  worker.ID,
			"startDate": "2025-01-06T09:00:00Z",
			"endDate":   "2025-01-06T17:00:00Z",
		}, admin)
		assert.False(t, resp.Success)
		assert.Equal(t, "worker already has a shift in this time window", resp.Message)
	})

	t.Run("empty window rejected", func(t *testing.T) {
		store := &fakeStore{users: []*domain.User{admin, worker}}
		h, _ := newTestHandler(t, store)

		resp := do(t, h, http.MethodPost, "/worker-shifts", map[string]any{
			"workerID":  worker.ID,
			"startDate": "2025-01-06T09:00:00Z",
			"endDate":   "2025-01-06T09:00:00Z",
		}, admin)
		assert.False(t, resp.Success)
		assert.Empty(t, store.shifts)
	})
}

func TestAssignmentMails_GroupsByWorker(t *testing.T) {
	alice := newUser(domain.RoleWorker, "alice@example.com")
	bob := newUser(domain.RoleWorker, "bob@example.com")
	template := dailyTemplate()
	day := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	shift := func(worker *domain.User, offset int) *domain.WorkerShift {
		start := day.AddDate(0, 0, offset)
		return &domain.WorkerShift{
			WorkerID:   worker.ID,
			TemplateID: uuid.NullUUID{UUID: template.ID, Valid: true},
			Start:      start,
			End:        start.Add(8 * time.Hour),
		}
	}
	stranger := &domain.WorkerShift{WorkerID: uuid.New(), Start: day, End: day.Add(time.Hour)}

	mails := assignmentMails(
		[]*domain.User{alice, bob},
		[]*domain.ShiftTemplate{template},
		[]*domain.WorkerShift{shift(bob, 0), shift(alice, 0), shift(bob, 1), stranger},
	)
	require.Len(t, mails, 2)

	assert.Equal(t, "bob@example.com", mails[0].To)
	bobData := mails[0].Data.(domain.ShiftsAssignedMailData)
	require.Len(t, bobData.Shifts, 2)
	assert.Equal(t, "Day", bobData.Shifts[0].TemplateName)
	assert.Equal(t, "Wed 01 Jan 2025 09:00 UTC", bobData.Shifts[0].Start)

	assert.Equal(t, "alice@example.com", mails[1].To)
	assert.Len(t, mails[1].Data.(domain.ShiftsAssignedMailData).Shifts, 1)
}
