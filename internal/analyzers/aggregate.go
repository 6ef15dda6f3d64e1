package analyzers

import (
	"math"
	"time"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"gorm.io/datatypes"
)

// BuildAnalysis combines the analyzer outputs for one student into the final
// analysis snapshot. Pure: all inputs are explicit and the moment of
// aggregation is a parameter, so re-running on identical inputs differs only
// in AnalyzedAt.
func BuildAnalysis(
	studentID int64,
	profile *models.EngagementProfile,
	cluster models.ClusterGroup,
	risk models.RiskFlag,
	materials map[string]*models.MaterialStats,
	now time.Time,
) *models.StudentAnalytics {
	result := &models.StudentAnalytics{
		StudentID:       studentID,
		ClusterGroup:    cluster,
		RiskFlag:        risk,
		TopicEfficiency: datatypes.NewJSONType(map[string]float64{}),
		AnalyzedAt:      now,
	}

	if profile == nil || profile.Activity.TotalEvents == 0 {
		// A student with no recorded events still gets a well-formed
		// result, never an error.
		result.ClusterGroup = models.ClusterNewStudent
		result.Recommendations = datatypes.JSONSlice[string]{models.RecNoData}
		return result
	}

	lp := profile.Learning
	score := math.Round(lp.AvgCorrectness * (1 - lp.PassiveScore) * 100)
	result.EngagementScore = int(clip(score, 0, 100))
	result.SuccessRate = lp.AvgCorrectness
	result.AvgTimePerTask = profile.Activity.TotalTimeSec / float64(profile.Activity.TotalEvents)

	efficiency := make(map[string]float64, len(materials))
	for id, st := range materials {
		efficiency[id] = st.SuccessRate
	}
	result.TopicEfficiency = datatypes.NewJSONType(efficiency)

	result.Recommendations = recommendations(cluster, risk)
	return result
}

// recommendations evaluates the fixed rule list in order, appending without
// deduplication; the risk message, when present, always leads.
func recommendations(cluster models.ClusterGroup, risk models.RiskFlag) datatypes.JSONSlice[string] {
	var recs []string
	if cluster == models.ClusterStruggling {
		recs = append(recs, models.RecFocusBasics)
	} else {
		recs = append(recs, models.RecKeepPace)
	}
	if risk == models.RiskAnomalous {
		recs = append([]string{models.RecRiskDetected}, recs...)
	}
	return recs
}
