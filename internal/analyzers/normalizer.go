package analyzers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// RawEvent is one interaction record as delivered by the ingestion feed or a
// legacy export. Field names, types and presence vary across producers; the
// normalizer is the only component that ever sees this shape.
type RawEvent map[string]any

var (
	ErrMissingStudentID = errors.New("raw event has no student_id")
	ErrMissingTimestamp = errors.New("raw event has no timestamp")
)

// NormalizeEvent reshapes one raw record into the canonical InteractionEvent,
// supplying defaults for every optional field. Unknown extra fields are
// ignored. Only a missing student_id or timestamp is fatal; everything else
// degrades to a default.
func NormalizeEvent(raw RawEvent) (*models.InteractionEvent, error) {
	studentID, ok := intField(raw, "student_id")
	if !ok || studentID <= 0 {
		return nil, ErrMissingStudentID
	}
	ts, ok := timeField(raw, "timestamp")
	if !ok {
		return nil, ErrMissingTimestamp
	}

	ev := &models.InteractionEvent{
		StudentID:          studentID,
		Timestamp:          ts,
		Artifact:           artifactField(raw),
		Attempts:           1,
		SelectedDistractor: models.DistractorNone,
	}

	if v, ok := floatField(raw, "time_spent_sec"); ok && v >= 0 {
		ev.TimeSpentSec = v
	}
	if v, ok := floatField(raw, "correctness"); ok {
		ev.Correctness = clip(v, 0, 1)
	} else if b, ok := raw["correct"].(bool); ok {
		// Legacy producers report a boolean "correct" column.
		if b {
			ev.Correctness = 1
		}
	}
	if v, ok := intField(raw, "attempts"); ok && v >= 1 {
		ev.Attempts = int(v)
	}
	if s, ok := stringField(raw, "selected_distractor"); ok && s != "" {
		ev.SelectedDistractor = s
	}
	if s, ok := stringField(raw, "material_id"); ok && s != "" {
		ev.MaterialID = &s
	}

	// Time splits fall back to the total when a producer does not break the
	// session down; the clusterer depends on these always being present.
	ev.TimeSpentOnQuestion = ev.TimeSpentSec
	if v, ok := floatField(raw, "time_spent_on_question"); ok {
		ev.TimeSpentOnQuestion = v
	}
	ev.TimeSpentOnMaterial = ev.TimeSpentSec
	if v, ok := floatField(raw, "time_spent_on_material"); ok {
		ev.TimeSpentOnMaterial = v
	}
	if v, ok := floatField(raw, "selected_distractor_freq"); ok {
		ev.DistractorFrequency = v
	}
	if v, ok := floatField(raw, "study_time_preference"); ok {
		ev.StudyTimePreference = v
	}

	return ev, nil
}

func artifactField(raw RawEvent) models.ArtifactType {
	if s, ok := stringField(raw, "artifact_type"); ok && s != "" {
		return models.ArtifactType(s)
	}
	// Historical schema used action_type for the same column.
	if s, ok := stringField(raw, "action_type"); ok && s != "" {
		return models.ArtifactType(s)
	}
	return models.ArtifactMaterialView
}

func floatField(raw RawEvent, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func intField(raw RawEvent, key string) (int64, bool) {
	switch v := raw[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func stringField(raw RawEvent, key string) (string, bool) {
	switch v := raw[key].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

func timeField(raw RawEvent, key string) (time.Time, bool) {
	switch v := raw[key].(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		// Epoch seconds, possibly fractional.
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
