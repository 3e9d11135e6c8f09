package moderation

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter selects reports for the admin queue
type ListFilter struct {
	Status     *Status
	TargetType *TargetType
	Page       int
	PageSize   int
}

// Repository defines persistence for reports
type Repository interface {
	Create(ctx context.Context, r *Report) error
	Update(ctx context.Context, r *Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]*Report, int64, error)
	// HasOpenReport reports whether the reporter already has a pending or investigating report on the target
	HasOpenReport(ctx context.Context, reporterID uuid.UUID, targetType TargetType, targetID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
