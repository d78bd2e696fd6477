// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"html/template"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
)

// FinancialSource supplies the period-indexed summaries and the monthly
// evolution series. Implementations return *domain.ErrNoData when a
// period has no record.
type FinancialSource interface {
	Summary(ctx context.Context, period domain.Period) (*domain.FinancialSummary, error)
	Evolution(ctx context.Context) ([]domain.EvolutionPoint, error)
	Name() string
}

// Pinger is implemented by sources that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// StateStore is a Cache whose entries can be modified atomically.
type StateStore[T any] interface {
	Cache[T]
	Update(key string, fn func(T) (T, error)) (T, bool, error)
	Remove(key string) bool
}

// Navigator performs a client-side navigation to an application path.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// ChartRenderer draws the dashboard charts as inline markup.
type ChartRenderer interface {
	Area(points []domain.EvolutionPoint) template.HTML
	Ring(slices []domain.DistributionSlice) template.HTML
}
