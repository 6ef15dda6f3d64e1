package analyzers

import (
	"math"
	"sort"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

const (
	// DefaultContamination is the expected fraction of anomalous students
	// in a cohort.
	DefaultContamination = 0.2
	// DefaultRiskSeed fixes the forest's randomness so identical cohort
	// tables always produce identical verdicts.
	DefaultRiskSeed = 42

	riskForestTrees = 100
	// minCohortSize is the smallest cohort a population-relative verdict
	// makes sense for; below it every member is undetermined.
	minCohortSize = 3
)

// CohortFeatures is one row of the cohort feature table: the population-level
// engagement features of a single student.
type CohortFeatures struct {
	StudentID      int64
	EventsPerDay   float64
	AvgCorrectness float64
	PassiveScore   float64
	AvgAttempts    float64
}

// BuildCohortFeatures joins engagement profiles into the cohort feature
// table, ordered by student id so that detection is deterministic regardless
// of map iteration order.
func BuildCohortFeatures(profiles map[int64]*models.EngagementProfile) []CohortFeatures {
	rows := make([]CohortFeatures, 0, len(profiles))
	for id, p := range profiles {
		rows = append(rows, CohortFeatures{
			StudentID:      id,
			EventsPerDay:   p.Activity.EventsPerDay,
			AvgCorrectness: p.Learning.AvgCorrectness,
			PassiveScore:   p.Learning.PassiveScore,
			AvgAttempts:    p.Learning.AvgAttempts,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })
	return rows
}

// RiskDetector flags statistically anomalous students within a cohort using
// an isolation forest over standardized engagement features.
type RiskDetector struct {
	Contamination float64
	Seed          int64
}

func NewRiskDetector() *RiskDetector {
	return &RiskDetector{
		Contamination: DefaultContamination,
		Seed:          DefaultRiskSeed,
	}
}

// Detect labels every row of the cohort table. Cohorts smaller than 3 yield
// undetermined for every member: the absence of a verdict, not a "normal"
// one. A degenerate feature table (no variance anywhere) is treated the same
// way, since no population-relative statement can be made.
func (d *RiskDetector) Detect(rows []CohortFeatures) map[int64]models.RiskFlag {
	flags := make(map[int64]models.RiskFlag, len(rows))
	if len(rows) < minCohortSize {
		for _, r := range rows {
			flags[r.StudentID] = models.RiskUndetermined
		}
		return flags
	}

	features := make([][]float64, len(rows))
	for i, r := range rows {
		features[i] = []float64{r.EventsPerDay, r.AvgCorrectness, r.PassiveScore, r.AvgAttempts}
	}
	scaled, err := standardize(features)
	if err != nil {
		for _, r := range rows {
			flags[r.StudentID] = models.RiskUndetermined
		}
		return flags
	}

	forest := newIsolationForest(riskForestTrees, d.Seed)
	scores := forest.scores(scaled)

	// Flag the round(contamination*n) highest-scoring rows, at least one.
	k := int(math.Round(d.Contamination * float64(len(rows))))
	if k < 1 {
		k = 1
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return rows[order[a]].StudentID < rows[order[b]].StudentID
	})

	for _, r := range rows {
		flags[r.StudentID] = models.RiskNormal
	}
	for _, i := range order[:k] {
		flags[rows[i].StudentID] = models.RiskAnomalous
	}
	return flags
}
