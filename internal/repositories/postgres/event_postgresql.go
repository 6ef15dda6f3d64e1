package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type EventPostgreSQL struct {
	db *gorm.DB
}

func NewEventPostgreSQL(db *gorm.DB) repositories.EventRepository {
	return &EventPostgreSQL{db: db}
}

func (r *EventPostgreSQL) Create(ctx context.Context, event *models.InteractionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventPostgreSQL) GetByStudent(ctx context.Context, studentID int64) ([]*models.InteractionEvent, error) {
	var events []*models.InteractionEvent
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("timestamp ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventPostgreSQL) GetByStudents(ctx context.Context, studentIDs []int64) ([]*models.InteractionEvent, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var events []*models.InteractionEvent
	if err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Order("student_id ASC, timestamp ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventPostgreSQL) GetAll(ctx context.Context) ([]*models.InteractionEvent, error) {
	var events []*models.InteractionEvent
	if err := r.db.WithContext(ctx).
		Order("student_id ASC, timestamp ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventPostgreSQL) ListStudentIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.InteractionEvent{}).
		Distinct("student_id").
		Order("student_id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *EventPostgreSQL) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InteractionEvent{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
