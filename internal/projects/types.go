package projects

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("project not found")

// Record is a stored project: light metadata plus the full nested planning
// document exactly as the pipeline produced it.
type Record struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Goal      string         `json:"goal,omitempty"`
	Status    string         `json:"status"`
	Document  map[string]any `json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists and retrieves project records by identifier.
type Store interface {
	Create(ctx context.Context, record Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
