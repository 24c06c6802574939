package kpi_test

import (
	"testing"

	"github.com/okian/trainops/internal/domain/kpi"
	"github.com/okian/trainops/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scenarioDataset builds two cohorts of company A: C1 is healthy, C2 is not.
func scenarioDataset() *model.Dataset {
	return model.NewDataset(model.Collections{
		Cohorts: []model.Cohort{
			{ID: "C1", CompanyID: "A"},
			{ID: "C2", CompanyID: "A"},
			{ID: "C3", CompanyID: "B"},
		},
		Learners: []model.Learner{
			{ID: "L1", CohortID: "C1"},
			{ID: "L2", CohortID: "C1"},
			{ID: "L3", CohortID: "C2"},
		},
		Attendance: []model.AttendanceRecord{
			{LearnerID: "L1", CohortID: "C1", Status: "present"},
			{LearnerID: "L1", CohortID: "C1", Status: "absent"},
			{LearnerID: "L2", CohortID: "C1", Status: "present"},
			{LearnerID: "L2", CohortID: "C1", Status: "present"},
			{LearnerID: "L2", CohortID: "C1", Status: "present"},
			{LearnerID: "L2", CohortID: "C1", Status: "present"},
			{LearnerID: "L3", CohortID: "C2", Status: "absent"},
			{LearnerID: "L3", CohortID: "C2", Status: "absent"},
		},
		Assessments: []model.AssessmentRecord{
			{LearnerID: "L1", CohortID: "C1", Type: "quiz", Score: 50, Submitted: true},
			{LearnerID: "L2", CohortID: "C1", Type: "quiz", Score: 90, Submitted: true},
			{LearnerID: "L3", CohortID: "C2", Type: "quiz", Score: 40, Submitted: false},
		},
		Satisfaction: []model.SatisfactionRecord{
			{LearnerID: "L1", CohortID: "C1", Rating: 3.0},
			{LearnerID: "L2", CohortID: "C1", Rating: 5.0},
			{LearnerID: "L3", CohortID: "C2", Rating: 2.0},
		},
	})
}

func TestCompute(t *testing.T) {
	Convey("Given the two-learner cohort C1", t, func() {
		ds := scenarioDataset()

		Convey("When computing KPIs scoped to C1", func() {
			res := kpi.Compute(ds, kpi.Scope{CohortID: "C1"})

			Convey("Then the rates should match the scenario", func() {
				So(res.AttendanceRate, ShouldEqual, 0.833)
				So(res.AssignmentCompletionRate, ShouldEqual, 1.0)
				So(res.QuizAvg, ShouldEqual, 70.0)
				So(res.CompletionRate, ShouldEqual, 0.5)
				So(res.SatisfactionAvg, ShouldEqual, 4.0)
				So(res.NPS, ShouldEqual, 0.0)
				So(res.CohortIDs, ShouldResemble, []string{"C1"})
			})
		})

		Convey("When computing KPIs scoped to company A", func() {
			res := kpi.Compute(ds, kpi.Scope{CompanyID: "A"})

			Convey("Then both A cohorts should be aggregated", func() {
				So(res.CohortIDs, ShouldResemble, []string{"C1", "C2"})
				So(res.AttendanceRate, ShouldEqual, 0.625)
				So(res.AssignmentCompletionRate, ShouldEqual, 0.667)
				So(res.QuizAvg, ShouldEqual, 60.0)
				So(res.CompletionRate, ShouldEqual, 0.333)
				So(res.SatisfactionAvg, ShouldEqual, 3.33)
				So(res.NPS, ShouldEqual, -33.3)
			})
		})

		Convey("When the company and cohort disagree", func() {
			res := kpi.Compute(ds, kpi.Scope{CompanyID: "B", CohortID: "C1"})

			Convey("Then nothing should match", func() {
				So(res.CohortIDs, ShouldBeEmpty)
				So(res.AttendanceRate, ShouldEqual, 0.0)
			})
		})

		Convey("When the scope is empty", func() {
			res := kpi.Compute(ds, kpi.Scope{})

			Convey("Then every cohort should be in scope", func() {
				So(res.CohortIDs, ShouldResemble, []string{"C1", "C2", "C3"})
			})
		})
	})

	Convey("Given a cohort id that does not exist", t, func() {
		res := kpi.Compute(scenarioDataset(), kpi.Scope{CohortID: "nope"})

		Convey("Then all KPIs should be zero and cohort ids an empty list", func() {
			So(res.CohortIDs, ShouldNotBeNil)
			So(res.CohortIDs, ShouldBeEmpty)
			So(res.AttendanceRate, ShouldEqual, 0.0)
			So(res.AssignmentCompletionRate, ShouldEqual, 0.0)
			So(res.QuizAvg, ShouldEqual, 0.0)
			So(res.CompletionRate, ShouldEqual, 0.0)
			So(res.SatisfactionAvg, ShouldEqual, 0.0)
			So(res.NPS, ShouldEqual, 0.0)
		})
	})

	Convey("Given an empty dataset", t, func() {
		res := kpi.Compute(model.NewDataset(model.Collections{}), kpi.Scope{})

		Convey("Then computing should not fail", func() {
			So(res.CohortIDs, ShouldBeEmpty)
			So(res.NPS, ShouldEqual, 0.0)
		})
	})

	Convey("Given a cohort whose learners have no records", t, func() {
		ds := model.NewDataset(model.Collections{
			Cohorts:  []model.Cohort{{ID: "C1"}},
			Learners: []model.Learner{{ID: "L1", CohortID: "C1"}, {ID: "L1", CohortID: "C1"}},
		})
		res := kpi.Compute(ds, kpi.Scope{CohortID: "C1"})

		Convey("Then the completion rate should be 0 rather than failing", func() {
			So(res.CompletionRate, ShouldEqual, 0.0)
			So(res.AttendanceRate, ShouldEqual, 0.0)
		})
	})

	Convey("Given identical inputs", t, func() {
		ds := scenarioDataset()

		Convey("Then repeated computation should be identical", func() {
			So(kpi.Compute(ds, kpi.Scope{CompanyID: "A"}), ShouldResemble, kpi.Compute(ds, kpi.Scope{CompanyID: "A"}))
		})
	})
}

func TestRanges(t *testing.T) {
	Convey("Given KPIs for every scope of the scenario", t, func() {
		ds := scenarioDataset()
		scopes := []kpi.Scope{{}, {CompanyID: "A"}, {CompanyID: "B"}, {CohortID: "C1"}, {CohortID: "C2"}}

		Convey("Then every rate should be within [0,1] and NPS within [-100,100]", func() {
			for _, s := range scopes {
				res := kpi.Compute(ds, s)
				So(res.AttendanceRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
				So(res.AssignmentCompletionRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
				So(res.CompletionRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
				So(res.SatisfactionAvg, ShouldBeBetweenOrEqual, 0.0, 5.0)
				So(res.NPS, ShouldBeBetweenOrEqual, -100.0, 100.0)
			}
		})
	})
}

func TestNetPromoterScore(t *testing.T) {
	Convey("Given satisfaction ratings", t, func() {
		Convey("Then no ratings should score 0", func() {
			So(kpi.NetPromoterScore(nil), ShouldEqual, 0.0)
		})

		Convey("And 3.0 and 5.0 should cancel out", func() {
			So(kpi.NetPromoterScore([]float64{3.0, 5.0}), ShouldEqual, 0.0)
		})

		Convey("And all promoters should score 100", func() {
			So(kpi.NetPromoterScore([]float64{4.5, 5.0}), ShouldEqual, 100.0)
		})

		Convey("And passives should count only in the total", func() {
			// 4.0 -> 8 is neither detractor nor promoter.
			So(kpi.NetPromoterScore([]float64{4.0, 5.0}), ShouldEqual, 50.0)
		})

		Convey("And out-of-range ratings should be clamped", func() {
			So(kpi.NetPromoterScore([]float64{7.0}), ShouldEqual, 100.0)
			So(kpi.NetPromoterScore([]float64{-2.0}), ShouldEqual, -100.0)
		})

		Convey("And half points should round to even", func() {
			// 3.25 -> 6.5 -> 6 (detractor); 4.25 -> 8.5 -> 8 (passive).
			So(kpi.NetPromoterScore([]float64{3.25}), ShouldEqual, -100.0)
			So(kpi.NetPromoterScore([]float64{4.25}), ShouldEqual, 0.0)
		})
	})
}
