package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/learning-analytics-service/internal/analyzers"
	"github.com/SAP-F-2025/learning-analytics-service/internal/cache"
	"github.com/SAP-F-2025/learning-analytics-service/internal/events"
	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
)

// AnalyticsService runs the behavioral analysis pipeline: engagement
// metrics, behavior clustering, cohort risk lookup and material
// effectiveness, aggregated into one snapshot per student.
type AnalyticsService interface {
	// Online per-request path.
	AnalyzeStudent(ctx context.Context, studentID int64) (*models.StudentAnalytics, error)
	GetEngagementProfile(ctx context.Context, studentID int64) (*models.EngagementProfile, error)
	GetMaterialEffectiveness(ctx context.Context) (*MaterialReport, error)

	// Persisted-snapshot reads, served straight from the store without
	// recomputation.
	GetStoredAnalysis(ctx context.Context, studentID int64) (*StoredAnalysis, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]*models.StudentAnalytics, int64, error)

	// Offline cohort path: refreshed periodically over all students; the
	// per-request path looks risk flags up here instead of refitting.
	RefreshCohort(ctx context.Context) (*CohortModel, error)
	CohortSnapshot() *CohortModel

	// Ingestion path, driven by the feed consumer.
	IngestRawEvent(ctx context.Context, raw analyzers.RawEvent) error
}

// MaterialReport carries the per-material statistics together with the
// course-wide success baseline they should be read against.
type MaterialReport struct {
	CourseSuccessRate float64                          `json:"course_success_rate"`
	Materials         map[string]*models.MaterialStats `json:"materials"`
}

// StoredAnalysis pairs a persisted snapshot with the student's current event
// count. A count above the snapshot's total means activity has landed since
// the snapshot was computed.
type StoredAnalysis struct {
	Analysis    *models.StudentAnalytics `json:"analysis"`
	TotalEvents int64                    `json:"total_events"`
}

// CohortModel is the population model produced by a cohort refresh: one risk
// verdict per student, valid until the next refresh supersedes it.
type CohortModel struct {
	Flags       map[int64]models.RiskFlag `json:"flags"`
	Size        int                       `json:"size"`
	Anomalous   int                       `json:"anomalous"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
}

type analyticsService struct {
	repo      repositories.Repository
	cache     cache.AnalysisCache
	publisher events.EventPublisher
	clusterer *analyzers.BehaviorClusterer
	detector  *analyzers.RiskDetector
	logger    *slog.Logger
	cacheTTL  time.Duration

	mu     sync.RWMutex
	cohort *CohortModel
}

func NewAnalyticsService(
	repo repositories.Repository,
	analysisCache cache.AnalysisCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	cacheTTL time.Duration,
) AnalyticsService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultAnalysisTTL
	}
	return &analyticsService{
		repo:      repo,
		cache:     analysisCache,
		publisher: publisher,
		clusterer: analyzers.NewBehaviorClusterer(),
		detector:  analyzers.NewRiskDetector(),
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// ===== ONLINE PATH =====

func (s *analyticsService) AnalyzeStudent(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	if studentID <= 0 {
		return nil, ErrInvalidStudentID
	}

	cached, err := s.cache.Get(ctx, studentID)
	if err == nil {
		s.logger.Debug("Analysis served from cache", "student_id", studentID)
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, NewInfrastructureError("cache", "get", err)
	}

	result, err := s.computeAnalysis(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Analyses().Upsert(ctx, result); err != nil {
		return nil, NewInfrastructureError("event_store", "upsert_analysis", err)
	}
	if err := s.cache.Set(ctx, studentID, result, s.cacheTTL); err != nil {
		return nil, NewInfrastructureError("cache", "set", err)
	}

	s.publishAnalysisCompleted(ctx, result)
	return result, nil
}

// computeAnalysis runs the pipeline over the student's own events. The only
// errors it can return are infrastructure ones: every data-insufficiency
// case resolves to a defined default inside the analyzers.
func (s *analyticsService) computeAnalysis(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	evs, err := s.repo.Events().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "get_events", err)
	}

	profile := analyzers.BuildProfile(studentID, evs)
	cluster := s.clusterer.Classify(evs)
	risk := s.lookupRisk(studentID)
	materials := analyzers.AnalyzeMaterials(evs)

	result := analyzers.BuildAnalysis(studentID, profile, cluster, risk, materials, time.Now())

	s.logger.Info("Student analysis computed",
		"student_id", studentID,
		"cluster_group", result.ClusterGroup,
		"risk_flag", result.RiskFlag,
		"engagement_score", result.EngagementScore,
		"total_events", profile.Activity.TotalEvents)

	return result, nil
}

func (s *analyticsService) GetEngagementProfile(ctx context.Context, studentID int64) (*models.EngagementProfile, error) {
	if studentID <= 0 {
		return nil, ErrInvalidStudentID
	}
	evs, err := s.repo.Events().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "get_events", err)
	}
	return analyzers.BuildProfile(studentID, evs), nil
}

func (s *analyticsService) GetMaterialEffectiveness(ctx context.Context) (*MaterialReport, error) {
	evs, err := s.repo.Events().GetAll(ctx)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "get_events", err)
	}
	return &MaterialReport{
		CourseSuccessRate: analyzers.CourseSuccessRate(evs),
		Materials:         analyzers.AnalyzeMaterials(evs),
	}, nil
}

// ===== PERSISTED SNAPSHOT READS =====

// GetStoredAnalysis returns the last persisted snapshot without triggering a
// recomputation, so dashboards can read history even while the pipeline is
// busy.
func (s *analyticsService) GetStoredAnalysis(ctx context.Context, studentID int64) (*StoredAnalysis, error) {
	if studentID <= 0 {
		return nil, ErrInvalidStudentID
	}

	analysis, err := s.repo.Analyses().GetByStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnalysisNotFound
		}
		return nil, NewInfrastructureError("event_store", "get_analysis", err)
	}

	total, err := s.repo.Events().CountByStudent(ctx, studentID)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "count_events", err)
	}

	return &StoredAnalysis{Analysis: analysis, TotalEvents: total}, nil
}

func (s *analyticsService) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.StudentAnalytics, int64, error) {
	analyses, total, err := s.repo.Analyses().List(ctx, limit, offset)
	if err != nil {
		return nil, 0, NewInfrastructureError("event_store", "list_analyses", err)
	}
	return analyses, total, nil
}

// ===== OFFLINE COHORT PATH =====

func (s *analyticsService) RefreshCohort(ctx context.Context) (*CohortModel, error) {
	ids, err := s.repo.Events().ListStudentIDs(ctx)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "list_students", err)
	}
	evs, err := s.repo.Events().GetByStudents(ctx, ids)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "get_events", err)
	}

	profiles := analyzers.BuildProfiles(evs)
	features := analyzers.BuildCohortFeatures(profiles)
	flags := s.detector.Detect(features)

	model := &CohortModel{
		Flags:       flags,
		Size:        len(flags),
		RefreshedAt: time.Now(),
	}
	for _, f := range flags {
		if f == models.RiskAnomalous {
			model.Anomalous++
		}
	}

	s.mu.Lock()
	s.cohort = model
	s.mu.Unlock()

	s.logger.Info("Cohort model refreshed",
		"cohort_size", model.Size,
		"anomalous", model.Anomalous)

	s.publishCohortRefreshed(ctx, model)
	return model, nil
}

// CohortSnapshot returns the last refreshed model, nil before the first
// refresh.
func (s *analyticsService) CohortSnapshot() *CohortModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cohort
}

// lookupRisk reads the student's verdict from the population model. No model
// yet, or a student the model has never seen, is an absent verdict.
func (s *analyticsService) lookupRisk(studentID int64) models.RiskFlag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cohort == nil {
		return models.RiskUndetermined
	}
	if flag, ok := s.cohort.Flags[studentID]; ok {
		return flag
	}
	return models.RiskUndetermined
}

// ===== INGESTION PATH =====

// IngestRawEvent normalizes and persists one raw feed delivery, invalidates
// the student's cached analysis and schedules a recomputation. Invalidation
// and recomputation are not atomic: a read between them recomputes on its
// own, which is bounded redundant work, not a correctness hazard.
func (s *analyticsService) IngestRawEvent(ctx context.Context, raw analyzers.RawEvent) error {
	ev, err := analyzers.NormalizeEvent(raw)
	if err != nil {
		return err
	}

	if err := s.repo.Events().Create(ctx, ev); err != nil {
		return NewInfrastructureError("event_store", "create_event", err)
	}
	if err := s.cache.Delete(ctx, ev.StudentID); err != nil {
		return NewInfrastructureError("cache", "delete", err)
	}

	go func(studentID int64) {
		rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.AnalyzeStudent(rctx, studentID); err != nil {
			s.logger.Error("Async recomputation failed",
				"student_id", studentID,
				"error", err)
		}
	}(ev.StudentID)

	return nil
}

// ===== EVENT PUBLISHING =====

func (s *analyticsService) publishAnalysisCompleted(ctx context.Context, result *models.StudentAnalytics) {
	event := &events.AnalyticsEvent{
		ID:        uuid.New().String(),
		Type:      events.EventAnalysisCompleted,
		Timestamp: time.Now(),
		Source:    "learning-analytics-service",
		Version:   "1.0",
		Data: events.AnalysisCompletedEvent{
			StudentID:       result.StudentID,
			ClusterGroup:    result.ClusterGroup,
			RiskFlag:        result.RiskFlag,
			EngagementScore: result.EngagementScore,
			AnalyzedAt:      result.AnalyzedAt,
		},
	}
	// Publishing is a notification, not part of the analysis contract.
	if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish analysis event",
			"student_id", result.StudentID,
			"error", err)
	}
}

func (s *analyticsService) publishCohortRefreshed(ctx context.Context, model *CohortModel) {
	event := &events.AnalyticsEvent{
		ID:        uuid.New().String(),
		Type:      events.EventCohortRefreshed,
		Timestamp: time.Now(),
		Source:    "learning-analytics-service",
		Version:   "1.0",
		Data: events.CohortRefreshedEvent{
			CohortSize:  model.Size,
			Anomalous:   model.Anomalous,
			RefreshedAt: model.RefreshedAt,
		},
	}
	if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish cohort event", "error", err)
	}
}
