package suggestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/scheduler"
)

// ErrConcurrentProposal is returned when another suggestion operation for
// the same company is still running.
var ErrConcurrentProposal = errors.New("another suggestion operation is in progress for this company")

// Store is the storage the manager works on. ReplaceSuggestions,
// DeleteAllSuggestions and MaterializeSuggestions must each run in a single
// transaction.
type Store interface {
	GetShiftTemplatesByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.ShiftTemplate, error)
	GetWorkersByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error)
	GetWorkerShiftsOverlapping(ctx context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error)
	GetSuggestionsByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.Suggestion, error)
	ReplaceSuggestions(ctx context.Context, companyID uuid.UUID, suggestions []*domain.Suggestion) error
	DeleteAllSuggestions(ctx context.Context, companyID uuid.UUID) (int64, error)
	MaterializeSuggestions(ctx context.Context, companyID uuid.UUID) ([]*domain.WorkerShift, error)
}

// Locker serializes writers of one company's suggestion batch.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

// Manager owns the suggestion batch of every company: a batch is proposed
// as a whole, then either accepted into committed shifts or declined.
type Manager struct {
	store      Store
	locker     Locker
	parameters *scheduler.Parameters
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewManager builds a manager. locker may be nil, in which case writers are
// serialized by the store alone.
func NewManager(store Store, locker Locker, parameters *scheduler.Parameters, m *metrics.Metrics, logger *slog.Logger) *Manager {
	if parameters == nil {
		parameters = scheduler.DefaultParameters()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:      store,
		locker:     locker,
		parameters: parameters,
		metrics:    m,
		logger:     logger,
	}
}

func (m *Manager) lock(ctx context.Context, companyID uuid.UUID) (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}

	unlock, ok, err := m.locker.TryLock(ctx, "suggestions:"+companyID.String())
	if err != nil {
		return nil, fmt.Errorf("lock suggestions of company %s: %w", companyID, err)
	}
	if !ok {
		return nil, ErrConcurrentProposal
	}

	return unlock, nil
}

// Generate runs the scheduler for rng over the company's templates and
// workers and proposes the result. The scheduler expands whole calendar days,
// so every committed shift touching those days is taken into account. With
// overwrite the committed shifts are ignored.
func (m *Manager) Generate(ctx context.Context, companyID uuid.UUID, rng domain.Range, overwrite bool) ([]*domain.Suggestion, error) {
	unlock, err := m.lock(ctx, companyID)
	if err != nil {
		if errors.Is(err, ErrConcurrentProposal) {
			m.metrics.AllocationRuns.WithLabelValues(metrics.OutcomeConflict).Inc()
		}
		return nil, err
	}
	defer unlock()

	templates, err := m.store.GetShiftTemplatesByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load shift templates of company %s: %w", companyID, err)
	}

	workers, err := m.store.GetWorkersByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load workers of company %s: %w", companyID, err)
	}

	var existing []*domain.WorkerShift
	if !overwrite {
		existing, err = m.store.GetWorkerShiftsOverlapping(ctx, companyID, scheduler.CoveredDays(rng))
		if err != nil {
			return nil, fmt.Errorf("load worker shifts of company %s: %w", companyID, err)
		}
	}

	start := time.Now()
	placeholders, err := scheduler.Allocate(rng, existing, templates, workers, m.parameters)
	m.metrics.AllocationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.metrics.AllocationRuns.WithLabelValues(outcomeOf(err)).Inc()
		m.logger.Warn("auto-assign failed",
			"company", companyID,
			"rangeStart", rng.Start,
			"rangeEnd", rng.End,
			"templates", len(templates),
			"workers", len(workers),
			"error", err,
		)
		return nil, fmt.Errorf("auto-assign company %s: %w", companyID, err)
	}

	m.metrics.AllocationRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	m.metrics.PlaceholdersGenerated.Add(float64(len(placeholders)))
	m.logger.Info("auto-assign finished",
		"company", companyID,
		"templates", len(templates),
		"workers", len(workers),
		"existing", len(existing),
		"placeholders", len(placeholders),
	)

	return m.propose(ctx, companyID, placeholders)
}

// Propose replaces the company's suggestion batch with placeholders.
func (m *Manager) Propose(ctx context.Context, companyID uuid.UUID, placeholders []domain.Placeholder) ([]*domain.Suggestion, error) {
	unlock, err := m.lock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return m.propose(ctx, companyID, placeholders)
}

func (m *Manager) propose(ctx context.Context, companyID uuid.UUID, placeholders []domain.Placeholder) ([]*domain.Suggestion, error) {
	now := time.Now().UTC()
	suggestions := make([]*domain.Suggestion, 0, len(placeholders))
	for _, p := range placeholders {
		suggestions = append(suggestions, &domain.Suggestion{
			ID:         uuid.New(),
			WorkerID:   p.WorkerID,
			CompanyID:  companyID,
			TemplateID: p.TemplateID,
			Start:      p.Start,
			End:        p.End,
			CreatedAt:  now,
		})
	}

	if err := m.store.ReplaceSuggestions(ctx, companyID, suggestions); err != nil {
		return nil, fmt.Errorf("replace suggestions of company %s: %w", companyID, err)
	}

	return suggestions, nil
}

// List returns the company's current suggestions.
func (m *Manager) List(ctx context.Context, companyID uuid.UUID) ([]*domain.Suggestion, error) {
	suggestions, err := m.store.GetSuggestionsByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions of company %s: %w", companyID, err)
	}
	return suggestions, nil
}

// Accept turns every suggestion of the company into a committed shift and
// removes the suggestions, all or nothing.
func (m *Manager) Accept(ctx context.Context, companyID uuid.UUID) ([]*domain.WorkerShift, error) {
	unlock, err := m.lock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	shifts, err := m.store.MaterializeSuggestions(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("accept suggestions of company %s: %w", companyID, err)
	}

	m.metrics.SuggestionsAccepted.Add(float64(len(shifts)))
	m.logger.Info("suggestions accepted", "company", companyID, "shifts", len(shifts))

	return shifts, nil
}

// Decline drops the company's suggestions and reports how many were removed.
func (m *Manager) Decline(ctx context.Context, companyID uuid.UUID) (int64, error) {
	unlock, err := m.lock(ctx, companyID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := m.store.DeleteAllSuggestions(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("decline suggestions of company %s: %w", companyID, err)
	}

	m.metrics.SuggestionsDeclined.Add(float64(n))
	m.logger.Info("suggestions declined", "company", companyID, "count", n)

	return n, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, scheduler.ErrAllocationExhausted):
		return metrics.OutcomeExhausted
	case errors.Is(err, scheduler.ErrInsufficientWorkers):
		return metrics.OutcomeNoWorkers
	default:
		return metrics.OutcomeError
	}
}
