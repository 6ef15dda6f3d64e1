package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-analytics-service/internal/analyzers"
	"github.com/SAP-F-2025/learning-analytics-service/internal/cache"
	"github.com/SAP-F-2025/learning-analytics-service/internal/events"
	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.InteractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByStudent(ctx context.Context, studentID int64) ([]*models.InteractionEvent, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]*models.InteractionEvent), args.Error(1)
}

func (m *MockEventRepository) GetByStudents(ctx context.Context, studentIDs []int64) ([]*models.InteractionEvent, error) {
	args := m.Called(ctx, studentIDs)
	return args.Get(0).([]*models.InteractionEvent), args.Error(1)
}

func (m *MockEventRepository) GetAll(ctx context.Context) ([]*models.InteractionEvent, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.InteractionEvent), args.Error(1)
}

func (m *MockEventRepository) ListStudentIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockEventRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnalysisRepository is a mock implementation of AnalysisRepository
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Upsert(ctx context.Context, analysis *models.StudentAnalytics) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByStudent(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(*models.StudentAnalytics), args.Error(1)
}

func (m *MockAnalysisRepository) List(ctx context.Context, limit, offset int) ([]*models.StudentAnalytics, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.StudentAnalytics), args.Get(1).(int64), args.Error(2)
}

// MockRepository aggregates the entity mocks
type MockRepository struct {
	events   *MockEventRepository
	analyses *MockAnalysisRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		events:   new(MockEventRepository),
		analyses: new(MockAnalysisRepository),
	}
}

func (m *MockRepository) Events() repositories.EventRepository      { return m.events }
func (m *MockRepository) Analyses() repositories.AnalysisRepository { return m.analyses }

// MockAnalysisCache is a mock implementation of AnalysisCache
type MockAnalysisCache struct {
	mock.Mock
}

func (m *MockAnalysisCache) Get(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentAnalytics), args.Error(1)
}

func (m *MockAnalysisCache) Set(ctx context.Context, studentID int64, analysis *models.StudentAnalytics, ttl time.Duration) error {
	args := m.Called(ctx, studentID, analysis, ttl)
	return args.Error(0)
}

func (m *MockAnalysisCache) Delete(ctx context.Context, studentID int64) error {
	args := m.Called(ctx, studentID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func studentEvents(studentID int64, n int) []*models.InteractionEvent {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	evs := make([]*models.InteractionEvent, n)
	for i := range evs {
		evs[i] = &models.InteractionEvent{
			StudentID:    studentID,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			Artifact:     models.ArtifactTestQuestion,
			TimeSpentSec: 60,
			Correctness:  1.0,
			Attempts:     1,
		}
	}
	return evs
}

func TestAnalyzeStudent_InvalidID(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	_, err := svc.AnalyzeStudent(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidStudentID)

	_, err = svc.AnalyzeStudent(context.Background(), -5)
	assert.ErrorIs(t, err, ErrInvalidStudentID)
}

func TestAnalyzeStudent_CacheHit(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	cached := &models.StudentAnalytics{StudentID: 42, EngagementScore: 90}
	analysisCache.On("Get", mock.Anything, int64(42)).Return(cached, nil)

	result, err := svc.AnalyzeStudent(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, cached, result)
	// Nothing touched the store and nothing was published.
	repo.events.AssertNotCalled(t, "GetByStudent", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestAnalyzeStudent_ComputesPersistsAndCaches(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	analysisCache.On("Get", mock.Anything, int64(42)).Return(nil, cache.ErrCacheMiss)
	repo.events.On("GetByStudent", mock.Anything, int64(42)).Return(studentEvents(42, 3), nil)
	repo.analyses.On("Upsert", mock.Anything, mock.AnythingOfType("*models.StudentAnalytics")).Return(nil)
	analysisCache.On("Set", mock.Anything, int64(42), mock.AnythingOfType("*models.StudentAnalytics"), time.Hour).Return(nil)

	result, err := svc.AnalyzeStudent(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.StudentID)
	assert.Equal(t, 90, result.EngagementScore)
	// No cohort model has been built yet.
	assert.Equal(t, models.RiskUndetermined, result.RiskFlag)

	repo.analyses.AssertExpectations(t)
	analysisCache.AssertExpectations(t)

	published := publisher.GetPublishedEvents()
	assert.Len(t, published, 1)
	assert.Equal(t, events.EventAnalysisCompleted, published[0].Type)
}

func TestAnalyzeStudent_NoEvents(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	analysisCache.On("Get", mock.Anything, int64(7)).Return(nil, cache.ErrCacheMiss)
	repo.events.On("GetByStudent", mock.Anything, int64(7)).Return([]*models.InteractionEvent{}, nil)
	repo.analyses.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	analysisCache.On("Set", mock.Anything, int64(7), mock.Anything, time.Hour).Return(nil)

	result, err := svc.AnalyzeStudent(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, models.ClusterNewStudent, result.ClusterGroup)
	assert.Equal(t, []string{models.RecNoData}, []string(result.Recommendations))
}

func TestAnalyzeStudent_StoreFailureIsInfrastructure(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	analysisCache.On("Get", mock.Anything, int64(42)).Return(nil, cache.ErrCacheMiss)
	repo.events.On("GetByStudent", mock.Anything, int64(42)).
		Return([]*models.InteractionEvent(nil), errors.New("connection refused"))

	_, err := svc.AnalyzeStudent(context.Background(), 42)

	assert.Error(t, err)
	assert.True(t, IsInfrastructure(err))
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestAnalyzeStudent_CacheFailureIsInfrastructure(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	analysisCache.On("Get", mock.Anything, int64(42)).Return(nil, errors.New("redis down"))

	_, err := svc.AnalyzeStudent(context.Background(), 42)

	assert.Error(t, err)
	assert.True(t, IsInfrastructure(err))
}

func TestRefreshCohort_SmallCohort(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	evs := append(studentEvents(1, 2), studentEvents(2, 2)...)
	repo.events.On("ListStudentIDs", mock.Anything).Return([]int64{1, 2}, nil)
	repo.events.On("GetByStudents", mock.Anything, []int64{1, 2}).Return(evs, nil)

	model, err := svc.RefreshCohort(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, model.Size)
	assert.Equal(t, 0, model.Anomalous)
	assert.Equal(t, models.RiskUndetermined, model.Flags[1])
	assert.Equal(t, models.RiskUndetermined, model.Flags[2])

	// The refreshed model is visible through the snapshot accessor.
	assert.Equal(t, model, svc.CohortSnapshot())

	published := publisher.GetPublishedEvents()
	assert.Len(t, published, 1)
	assert.Equal(t, events.EventCohortRefreshed, published[0].Type)
}

func TestRefreshCohort_FeedsOnlineRiskLookup(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	// Before any refresh the snapshot is absent.
	assert.Nil(t, svc.CohortSnapshot())

	var evs []*models.InteractionEvent
	ids := make([]int64, 0, 6)
	for id := int64(1); id <= 6; id++ {
		ids = append(ids, id)
		evs = append(evs, studentEvents(id, int(id))...)
	}
	repo.events.On("ListStudentIDs", mock.Anything).Return(ids, nil)
	repo.events.On("GetByStudents", mock.Anything, ids).Return(evs, nil)

	model, err := svc.RefreshCohort(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 6, model.Size)

	// Every student has a definite verdict; a student the model never saw
	// stays undetermined on the online path.
	for _, id := range ids {
		assert.Contains(t, []models.RiskFlag{models.RiskNormal, models.RiskAnomalous}, model.Flags[id])
	}

	analysisCache.On("Get", mock.Anything, int64(99)).Return(nil, cache.ErrCacheMiss)
	repo.events.On("GetByStudent", mock.Anything, int64(99)).Return(studentEvents(99, 3), nil)
	repo.analyses.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	analysisCache.On("Set", mock.Anything, int64(99), mock.Anything, time.Hour).Return(nil)

	result, err := svc.AnalyzeStudent(context.Background(), 99)
	assert.NoError(t, err)
	assert.Equal(t, models.RiskUndetermined, result.RiskFlag)
}

func TestRefreshCohort_StoreFailure(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.events.On("ListStudentIDs", mock.Anything).Return([]int64(nil), errors.New("timeout"))

	_, err := svc.RefreshCohort(context.Background())

	assert.Error(t, err)
	assert.True(t, IsInfrastructure(err))
	assert.Nil(t, svc.CohortSnapshot())
}

func TestIngestRawEvent(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.events.On("Create", mock.Anything, mock.AnythingOfType("*models.InteractionEvent")).Return(nil)
	analysisCache.On("Delete", mock.Anything, int64(42)).Return(nil)
	// The async recomputation may or may not run before the test finishes.
	analysisCache.On("Get", mock.Anything, int64(42)).Return(nil, cache.ErrCacheMiss).Maybe()
	repo.events.On("GetByStudent", mock.Anything, int64(42)).Return(studentEvents(42, 3), nil).Maybe()
	repo.analyses.On("Upsert", mock.Anything, mock.Anything).Return(nil).Maybe()
	analysisCache.On("Set", mock.Anything, int64(42), mock.Anything, time.Hour).Return(nil).Maybe()

	err := svc.IngestRawEvent(context.Background(), analyzers.RawEvent{
		"student_id": 42,
		"timestamp":  "2025-03-03T10:00:00Z",
	})

	assert.NoError(t, err)
	repo.events.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*models.InteractionEvent"))
	analysisCache.AssertCalled(t, "Delete", mock.Anything, int64(42))
}

func TestIngestRawEvent_Invalid(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	err := svc.IngestRawEvent(context.Background(), analyzers.RawEvent{
		"timestamp": "2025-03-03T10:00:00Z",
	})

	assert.ErrorIs(t, err, analyzers.ErrMissingStudentID)
	assert.False(t, IsInfrastructure(err))
	repo.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetEngagementProfile(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.events.On("GetByStudent", mock.Anything, int64(42)).Return(studentEvents(42, 3), nil)

	profile, err := svc.GetEngagementProfile(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), profile.StudentID)
	assert.Equal(t, 3, profile.Activity.TotalEvents)
	assert.Equal(t, 1.0, profile.Learning.AvgCorrectness)

	_, err = svc.GetEngagementProfile(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidStudentID)
}

func TestGetMaterialEffectiveness(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	mat := "algebra-1"
	evs := studentEvents(1, 3)
	for _, ev := range evs {
		ev.MaterialID = &mat
	}
	repo.events.On("GetAll", mock.Anything).Return(evs, nil)

	report, err := svc.GetMaterialEffectiveness(context.Background())

	assert.NoError(t, err)
	assert.Len(t, report.Materials, 1)
	assert.Equal(t, 1.0, report.Materials[mat].SuccessRate)
	assert.Equal(t, 1.0, report.CourseSuccessRate)
}

func TestGetStoredAnalysis(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	snapshot := &models.StudentAnalytics{StudentID: 42, EngagementScore: 77}
	repo.analyses.On("GetByStudent", mock.Anything, int64(42)).Return(snapshot, nil)
	repo.events.On("CountByStudent", mock.Anything, int64(42)).Return(int64(12), nil)

	stored, err := svc.GetStoredAnalysis(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), stored.Analysis.StudentID)
	assert.Equal(t, 77, stored.Analysis.EngagementScore)
	assert.Equal(t, int64(12), stored.TotalEvents)

	// Reads the persisted row only, never recomputes.
	repo.events.AssertNotCalled(t, "GetByStudent", mock.Anything, mock.Anything)

	_, err = svc.GetStoredAnalysis(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidStudentID)
}

func TestGetStoredAnalysis_NotFound(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.analyses.On("GetByStudent", mock.Anything, int64(7)).
		Return((*models.StudentAnalytics)(nil), gorm.ErrRecordNotFound)

	_, err := svc.GetStoredAnalysis(context.Background(), 7)

	assert.ErrorIs(t, err, ErrAnalysisNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsInfrastructure(err))
}

func TestGetStoredAnalysis_StoreFailure(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.analyses.On("GetByStudent", mock.Anything, int64(7)).
		Return((*models.StudentAnalytics)(nil), errors.New("connection refused"))

	_, err := svc.GetStoredAnalysis(context.Background(), 7)

	assert.True(t, IsInfrastructure(err))
	assert.False(t, IsNotFound(err))
}

func TestListAnalyses(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	rows := []*models.StudentAnalytics{
		{StudentID: 1},
		{StudentID: 2},
	}
	repo.analyses.On("List", mock.Anything, 50, 0).Return(rows, int64(9), nil)

	analyses, total, err := svc.ListAnalyses(context.Background(), 50, 0)

	assert.NoError(t, err)
	assert.Len(t, analyses, 2)
	assert.Equal(t, int64(9), total)
}

func TestListAnalyses_StoreFailure(t *testing.T) {
	repo := newMockRepository()
	analysisCache := new(MockAnalysisCache)
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAnalyticsService(repo, analysisCache, publisher, testLogger(), time.Hour)

	repo.analyses.On("List", mock.Anything, 10, 0).
		Return([]*models.StudentAnalytics(nil), int64(0), errors.New("connection refused"))

	_, _, err := svc.ListAnalyses(context.Background(), 10, 0)

	assert.True(t, IsInfrastructure(err))
}
