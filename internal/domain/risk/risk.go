// Package risk scores learners by their likelihood of disengaging.
package risk

import (
	"math"
	"sort"

	"github.com/okian/trainops/internal/domain/filter"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/stats"
)

// Default scoring configuration constants.
const (
	defaultAttendanceWeight   = 0.5
	defaultScoreWeight        = 0.3
	defaultSatisfactionWeight = 0.2

	// ScoreFloor is the average assessment score below which risk accrues.
	ScoreFloor = 60.0
	// SatisfactionFloor is the average rating below which risk accrues.
	SatisfactionFloor = 3.5

	weightTolerance = 1e-9
)

// Weights sets how much each signal contributes to the risk score.
type Weights struct {
	Attendance   float64 `json:"attendance"`
	Score        float64 `json:"score"`
	Satisfaction float64 `json:"satisfaction"`
}

// DefaultWeights makes attendance the dominant signal, then assessment
// performance, then satisfaction.
func DefaultWeights() Weights {
	return Weights{
		Attendance:   defaultAttendanceWeight,
		Score:        defaultScoreWeight,
		Satisfaction: defaultSatisfactionWeight,
	}
}

// Valid reports whether every weight is non-negative and they sum to at most
// 1, which keeps risk within [0, 1] for in-range inputs.
func (w Weights) Valid() bool {
	if w.Attendance < 0 || w.Score < 0 || w.Satisfaction < 0 {
		return false
	}
	sum := w.Attendance + w.Score + w.Satisfaction
	return sum > 0 && sum <= 1+weightTolerance
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the signal weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Valid() {
			s.weights = w
		}
	}
}

// Detail carries the per-learner sub-metrics behind a risk score.
type Detail struct {
	Attendance   float64 `json:"attendance"`
	Score        float64 `json:"score"`
	Satisfaction float64 `json:"satisfaction"`
}

// Entry is one ranked learner.
type Entry struct {
	LearnerID string  `json:"learner_id"`
	Risk      float64 `json:"risk"`
	Detail    Detail  `json:"detail"`
}

// Scorer computes weighted risk scores for the learners of a cohort.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score ranks every distinct learner of cohortID by risk, highest first.
// Learners with equal risk are ordered by ascending learner id.
func (s *Scorer) Score(ds *model.Dataset, cohortID string) []Entry {
	inCohort := filter.Constraints{"cohort_id": filter.Eq(cohortID)}

	learners := filter.Where(ds.Learners(), model.LearnerFields, inCohort)
	tallies := model.AttendanceByLearner(filter.Where(ds.Attendance(), model.AttendanceFields, inCohort))
	scores := model.ScoresByLearner(filter.Where(ds.Assessments(), model.AssessmentFields, inCohort))
	ratings := model.RatingsByLearner(filter.Where(ds.Satisfaction(), model.SatisfactionFields, inCohort))

	seen := make(map[model.ID]struct{}, len(learners))
	out := make([]Entry, 0, len(learners))
	for _, l := range learners {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}

		att := tallies[l.ID].Ratio()
		avgScore := stats.Mean(scores[l.ID])
		avgSat := stats.Mean(ratings[l.ID])
		out = append(out, Entry{
			LearnerID: l.ID.String(),
			Risk:      stats.Round(s.risk(att, avgScore, avgSat), 3),
			Detail: Detail{
				Attendance:   stats.Round(att, 2),
				Score:        stats.Round(avgScore, 1),
				Satisfaction: stats.Round(avgSat, 2),
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk != out[j].Risk {
			return out[i].Risk > out[j].Risk
		}
		return out[i].LearnerID < out[j].LearnerID
	})
	return out
}

func (s *Scorer) risk(attendance, score, satisfaction float64) float64 {
	return s.weights.Attendance*(1-attendance) +
		s.weights.Score*math.Max(0, ScoreFloor-score)/ScoreFloor +
		s.weights.Satisfaction*math.Max(0, SatisfactionFloor-satisfaction)/SatisfactionFloor
}

// Top returns at most n entries; n <= 0 returns all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// AtLeast returns the entries whose risk is >= threshold, keeping order.
func AtLeast(entries []Entry, threshold float64) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Risk >= threshold {
			out = append(out, e)
		}
	}
	return out
}
