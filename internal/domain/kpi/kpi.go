// Package kpi aggregates cohort and company level training indicators.
package kpi

import (
	"math"
	"sort"

	"github.com/okian/trainops/internal/domain/dedupe"
	"github.com/okian/trainops/internal/domain/filter"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/stats"
)

// Completion proxy and NPS thresholds.
const (
	CompletionMinAttendance = 0.7
	CompletionMinScore      = 60.0

	npsScaleMax    = 10.0
	npsDetractor   = 6
	npsPromoter    = 9
	npsRatingScale = 2.0
)

// Scope restricts the aggregation. Empty fields are not applied.
type Scope struct {
	CompanyID string
	CohortID  string
}

// Result holds the rounded indicators for a scope. CohortIDs lists the
// matched cohorts in ascending order.
type Result struct {
	AttendanceRate           float64  `json:"attendance_rate"`
	AssignmentCompletionRate float64  `json:"assignment_completion_rate"`
	QuizAvg                  float64  `json:"quiz_avg"`
	CompletionRate           float64  `json:"completion_rate"`
	SatisfactionAvg          float64  `json:"satisfaction_avg"`
	NPS                      float64  `json:"nps"`
	CohortIDs                []string `json:"cohort_ids"`
}

// Compute aggregates the indicators for scope over ds. An empty scope match
// yields zero values and no cohort ids.
func Compute(ds *model.Dataset, scope Scope) Result {
	cohorts := ResolveCohorts(ds, scope)
	inScope := cohorts.Members()

	attendance := filter.In(ds.Attendance(), model.AttendanceFields["cohort_id"], inScope)
	assessments := filter.In(ds.Assessments(), model.AssessmentFields["cohort_id"], inScope)
	satisfaction := filter.In(ds.Satisfaction(), model.SatisfactionFields["cohort_id"], inScope)
	learners := filter.In(ds.Learners(), model.LearnerFields["cohort_id"], inScope)

	ids := append([]string{}, cohorts.IDs()...)
	sort.Strings(ids)

	ratings := make([]float64, len(satisfaction))
	for i, s := range satisfaction {
		ratings[i] = s.Rating
	}

	return Result{
		AttendanceRate:           stats.Round(attendanceRate(attendance), 3),
		AssignmentCompletionRate: stats.Round(submissionRate(assessments), 3),
		QuizAvg:                  stats.Round(quizAverage(assessments), 1),
		CompletionRate:           stats.Round(completionRate(learners, attendance, assessments), 3),
		SatisfactionAvg:          stats.Round(stats.Mean(ratings), 2),
		NPS:                      stats.Round(NetPromoterScore(ratings), 1),
		CohortIDs:                ids,
	}
}

// ResolveCohorts returns the distinct ids of cohorts matching scope.
func ResolveCohorts(ds *model.Dataset, scope Scope) *dedupe.Set {
	matched := filter.Where(ds.Cohorts(), model.CohortFields, filter.Constraints{
		"company_id": filter.Optional(scope.CompanyID),
		"id":         filter.Optional(scope.CohortID),
	})
	set := dedupe.New(len(matched))
	for _, c := range matched {
		set.SeenAndRecord(c.ID.String())
	}
	return set
}

// NetPromoterScore maps 1-5 ratings onto 0-10, counts detractors (<= 6) and
// promoters (>= 9) and returns (promoters - detractors) / total * 100.
func NetPromoterScore(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var promoters, detractors int
	for _, r := range ratings {
		x := int(math.RoundToEven(stats.Clamp(r*npsRatingScale, 0, npsScaleMax)))
		switch {
		case x <= npsDetractor:
			detractors++
		case x >= npsPromoter:
			promoters++
		}
	}
	return float64(promoters-detractors) / float64(len(ratings)) * 100.0
}

func attendanceRate(records []model.AttendanceRecord) float64 {
	present := 0
	for _, a := range records {
		if a.Present() {
			present++
		}
	}
	return stats.Ratio(present, len(records))
}

func submissionRate(records []model.AssessmentRecord) float64 {
	submitted := 0
	for _, a := range records {
		if a.Submitted {
			submitted++
		}
	}
	return stats.Ratio(submitted, len(records))
}

func quizAverage(records []model.AssessmentRecord) float64 {
	var scores []float64
	for _, a := range records {
		if a.IsQuiz() {
			scores = append(scores, a.Score)
		}
	}
	return stats.Mean(scores)
}

// completionRate counts learners with attendance >= 0.7 and an average
// assessment score >= 60 over all distinct learners in scope.
func completionRate(learners []model.Learner, attendance []model.AttendanceRecord, assessments []model.AssessmentRecord) float64 {
	ids := dedupe.New(len(learners))
	for _, l := range learners {
		ids.SeenAndRecord(l.ID.String())
	}

	tallies := model.AttendanceByLearner(attendance)
	scores := model.ScoresByLearner(assessments)

	completed := 0
	for _, id := range ids.IDs() {
		lid := model.ID(id)
		if tallies[lid].Ratio() >= CompletionMinAttendance && stats.Mean(scores[lid]) >= CompletionMinScore {
			completed++
		}
	}
	return stats.Ratio(completed, ids.Len())
}
