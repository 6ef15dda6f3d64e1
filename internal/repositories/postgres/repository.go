package postgres

import (
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	events   repositories.EventRepository
	analyses repositories.AnalysisRepository
}

// NewRepository wires the gorm-backed repositories into the aggregate the
// services consume.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		events:   NewEventPostgreSQL(db),
		analyses: NewAnalysisPostgreSQL(db),
	}
}

func (r *repository) Events() repositories.EventRepository {
	return r.events
}

func (r *repository) Analyses() repositories.AnalysisRepository {
	return r.analyses
}
