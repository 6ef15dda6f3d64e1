package analyzers

import (
	"sort"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

const (
	// DefaultClusterRadius is the neighborhood radius in standardized
	// feature space.
	DefaultClusterRadius = 1.5
	// DefaultMinNeighborhood is the minimum dense-neighborhood size.
	DefaultMinNeighborhood = 3
)

// clusterLabels is the fixed mapping from discovered cluster id to semantic
// behavior label. Ids outside the mapping resolve to unknown.
var clusterLabels = map[int]models.ClusterGroup{
	dbscanNoise: models.ClusterOutlier,
	0:           models.ClusterHighPerformer,
	1:           models.ClusterAverage,
	2:           models.ClusterStruggling,
	3:           models.ClusterPassiveLearner,
}

// BehaviorClusterer assigns a semantic behavior label to a student from a
// density-based clustering of their event-level feature vectors. Density
// clustering is used deliberately: it has a first-class noise category, so an
// outlier is a meaningful verdict rather than a forced assignment to the
// nearest convex segment.
type BehaviorClusterer struct {
	Radius          float64
	MinNeighborhood int
}

func NewBehaviorClusterer() *BehaviorClusterer {
	return &BehaviorClusterer{
		Radius:          DefaultClusterRadius,
		MinNeighborhood: DefaultMinNeighborhood,
	}
}

// Classify labels one student from their own events. Fewer than 3 events
// skips clustering entirely and yields new_student; any numerical degeneracy
// yields analysis_failed. Neither case is an error.
func (c *BehaviorClusterer) Classify(events []*models.InteractionEvent) models.ClusterGroup {
	if len(events) < 3 {
		return models.ClusterNewStudent
	}

	evs := append([]*models.InteractionEvent(nil), events...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })

	features := make([][]float64, len(evs))
	for i, ev := range evs {
		features[i] = eventFeatures(ev)
	}

	scaled, err := standardize(features)
	if err != nil {
		return models.ClusterAnalysisFailed
	}

	labels := dbscan(scaled, c.Radius, c.MinNeighborhood)

	// The student's label is the cluster of their most recent event.
	last := labels[len(labels)-1]
	if group, ok := clusterLabels[last]; ok {
		return group
	}
	return models.ClusterUnknown
}

// eventFeatures is the 6-dimensional numeric view of one event used for
// behavior clustering.
func eventFeatures(ev *models.InteractionEvent) []float64 {
	return []float64{
		float64(ev.Attempts),
		ev.Correctness,
		ev.TimeSpentOnQuestion,
		ev.TimeSpentOnMaterial,
		ev.DistractorFrequency,
		ev.StudyTimePreference,
	}
}
