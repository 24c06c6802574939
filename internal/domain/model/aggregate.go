package model

import "github.com/okian/trainops/internal/domain/stats"

// Tally counts present sessions against all recorded sessions.
type Tally struct {
	Present int
	Total   int
}

// Ratio returns Present/Total, or 0 with no sessions.
func (t Tally) Ratio() float64 {
	return stats.Ratio(t.Present, t.Total)
}

// AttendanceByLearner groups attendance records into per-learner tallies in a
// single pass.
func AttendanceByLearner(records []AttendanceRecord) map[ID]Tally {
	out := make(map[ID]Tally)
	for _, a := range records {
		t := out[a.LearnerID]
		t.Total++
		if a.Present() {
			t.Present++
		}
		out[a.LearnerID] = t
	}
	return out
}

// ScoresByLearner groups assessment scores per learner in record order.
func ScoresByLearner(records []AssessmentRecord) map[ID][]float64 {
	out := make(map[ID][]float64)
	for _, a := range records {
		out[a.LearnerID] = append(out[a.LearnerID], a.Score)
	}
	return out
}

// RatingsByLearner groups satisfaction ratings per learner in record order.
func RatingsByLearner(records []SatisfactionRecord) map[ID][]float64 {
	out := make(map[ID][]float64)
	for _, s := range records {
		out[s.LearnerID] = append(out[s.LearnerID], s.Rating)
	}
	return out
}
