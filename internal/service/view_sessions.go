package service

import (
	"context"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var viewTracer = otel.Tracer("service/views")

// ViewSessions holds the per-viewer dashboard selection. A session lives
// until it is closed or its TTL expires.
type ViewSessions struct {
	store   port.StateStore[domain.ViewState]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewViewSessions creates a session manager backed by store.
func NewViewSessions(store port.StateStore[domain.ViewState], metrics *observability.Metrics, logger *zap.Logger) *ViewSessions {
	return &ViewSessions{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (v *ViewSessions) WithClock(now func() time.Time) *ViewSessions {
	v.now = now
	return v
}

// Open mounts a new dashboard view: month selected, personnel expanded.
func (v *ViewSessions) Open(ctx context.Context) domain.ViewState {
	_, span := viewTracer.Start(ctx, "ViewSessions.Open")
	defer span.End()

	state := domain.DefaultViewState(uuid.NewString(), v.now())
	v.store.Set(state.ID, state)
	v.metrics.ViewOpened()

	span.SetAttributes(attribute.String("view_id", state.ID))
	v.logger.Debug("view opened", zap.String("view_id", state.ID))
	return state
}

// Get returns the state of the view id.
func (v *ViewSessions) Get(ctx context.Context, id string) (domain.ViewState, error) {
	_, span := viewTracer.Start(ctx, "ViewSessions.Get")
	defer span.End()

	state, ok := v.store.Get(id)
	if !ok {
		return domain.ViewState{}, &domain.ErrNotFound{Resource: "view", ID: id}
	}
	return state, nil
}

// SelectPeriod changes the selected period of the view id. Expanded
// flags are kept.
func (v *ViewSessions) SelectPeriod(ctx context.Context, id string, p domain.Period) (domain.ViewState, error) {
	_, span := viewTracer.Start(ctx, "ViewSessions.SelectPeriod")
	defer span.End()
	span.SetAttributes(attribute.String("view_id", id), attribute.String("period", p.Key()))

	state, err := v.update(id, func(s domain.ViewState) (domain.ViewState, error) {
		if err := s.SelectPeriod(p); err != nil {
			return s, err
		}
		s.UpdatedAt = v.now()
		return s, nil
	})
	if err != nil {
		return domain.ViewState{}, err
	}
	v.metrics.IncrPeriodSelection(p)
	return state, nil
}

// ToggleCategory flips the expanded flag of c in the view id.
func (v *ViewSessions) ToggleCategory(ctx context.Context, id string, c domain.ExpenseCategory) (domain.ViewState, error) {
	_, span := viewTracer.Start(ctx, "ViewSessions.ToggleCategory")
	defer span.End()
	span.SetAttributes(attribute.String("view_id", id), attribute.String("category", c.Key()))

	state, err := v.update(id, func(s domain.ViewState) (domain.ViewState, error) {
		if err := s.ToggleCategory(c); err != nil {
			return s, err
		}
		s.UpdatedAt = v.now()
		return s, nil
	})
	if err != nil {
		return domain.ViewState{}, err
	}
	v.metrics.IncrCategoryToggle(c)
	return state, nil
}

// Close unmounts the view id. Closing an unknown view is a no-op.
func (v *ViewSessions) Close(ctx context.Context, id string) {
	_, span := viewTracer.Start(ctx, "ViewSessions.Close")
	defer span.End()

	if !v.store.Remove(id) {
		return
	}
	v.metrics.ViewClosed()
	v.logger.Debug("view closed", zap.String("view_id", id))
}

func (v *ViewSessions) update(id string, fn func(domain.ViewState) (domain.ViewState, error)) (domain.ViewState, error) {
	state, ok, err := v.store.Update(id, fn)
	if !ok {
		return domain.ViewState{}, &domain.ErrNotFound{Resource: "view", ID: id}
	}
	if err != nil {
		return domain.ViewState{}, err
	}
	return state, nil
}
