package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// EventRepository is the contract the core consumes from the event store.
// Every query returns events in ascending timestamp order per student; this
// ordering is load-bearing for the learning-curve and retry computations.
type EventRepository interface {
	Create(ctx context.Context, event *models.InteractionEvent) error

	// Query operations
	GetByStudent(ctx context.Context, studentID int64) ([]*models.InteractionEvent, error)
	GetByStudents(ctx context.Context, studentIDs []int64) ([]*models.InteractionEvent, error)
	GetAll(ctx context.Context) ([]*models.InteractionEvent, error)

	// Cohort helpers
	ListStudentIDs(ctx context.Context) ([]int64, error)
	CountByStudent(ctx context.Context, studentID int64) (int64, error)
}
