package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-analytics-service/internal/analyzers"
	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
)

// ReportService exports analytics data for instructors.
type ReportService interface {
	ExportMaterialStats(ctx context.Context) ([]byte, error)
}

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportMaterialStats builds an Excel workbook with one row per material,
// ordered by material id.
func (s *reportService) ExportMaterialStats(ctx context.Context) ([]byte, error) {
	evs, err := s.repo.Events().GetAll(ctx)
	if err != nil {
		return nil, NewInfrastructureError("event_store", "get_events", err)
	}
	stats := analyzers.AnalyzeMaterials(evs)

	f := excelize.NewFile()
	sheetName := "Material Effectiveness"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Material ID", "Success Rate", "Difficulty Index", "Learning Curve",
		"Unique Students", "Top Distractors",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for rowIndex, id := range ids {
		st := stats[id]
		row := materialStatsRow(id, st)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Material stats exported", "materials", len(ids))
	return buf.Bytes(), nil
}

func materialStatsRow(id string, st *models.MaterialStats) []interface{} {
	return []interface{}{
		id,
		st.SuccessRate,
		st.DifficultyIndex,
		st.LearningCurve,
		st.UniqueStudents,
		strings.Join(st.TopDistractors, ", "),
	}
}
