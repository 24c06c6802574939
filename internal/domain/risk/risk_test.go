package risk_test

import (
	"testing"

	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func scenarioDataset() *model.Dataset {
	return model.NewDataset(model.Collections{
		Cohorts: []model.Cohort{{ID: "C1", CompanyID: "A"}, {ID: "C2", CompanyID: "A"}},
		Learners: []model.Learner{
			{ID: "L2", CohortID: "C1"},
			{ID: "L1", CohortID: "C1"},
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
		},
		Assessments: []model.AssessmentRecord{
			{LearnerID: "L1", CohortID: "C1", Type: "quiz", Score: 50, Submitted: true},
			{LearnerID: "L2", CohortID: "C1", Type: "quiz", Score: 90, Submitted: true},
			{LearnerID: "L3", CohortID: "C2", Type: "quiz", Score: 40},
		},
		Satisfaction: []model.SatisfactionRecord{
			{LearnerID: "L1", CohortID: "C1", Rating: 3.0},
			{LearnerID: "L2", CohortID: "C1", Rating: 5.0},
			{LearnerID: "L3", CohortID: "C2", Rating: 2.0},
		},
	})
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		scorer := risk.NewScorer()
		ds := scenarioDataset()

		Convey("When scoring cohort C1", func() {
			entries := scorer.Score(ds, "C1")

			Convey("Then L1 should rank above L2", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[0].LearnerID, ShouldEqual, "L1")
				So(entries[1].LearnerID, ShouldEqual, "L2")
				So(entries[0].Risk, ShouldBeGreaterThan, entries[1].Risk)
			})

			Convey("And the scores should follow the 0.5/0.3/0.2 weighting", func() {
				// 0.5*0.5 + 0.3*10/60 + 0.2*0.5/3.5 = 0.3286
				So(entries[0].Risk, ShouldEqual, 0.329)
				So(entries[1].Risk, ShouldEqual, 0.0)
			})

			Convey("And the detail should carry rounded sub-metrics", func() {
				So(entries[0].Detail, ShouldResemble, risk.Detail{Attendance: 0.5, Score: 50.0, Satisfaction: 3.0})
				So(entries[1].Detail, ShouldResemble, risk.Detail{Attendance: 1.0, Score: 90.0, Satisfaction: 5.0})
			})
		})

		Convey("When scoring cohort C2", func() {
			entries := scorer.Score(ds, "C2")

			Convey("Then the lone learner should be high risk", func() {
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Risk, ShouldEqual, 0.686)
			})
		})

		Convey("When scoring an unknown cohort", func() {
			entries := scorer.Score(ds, "C9")

			Convey("Then the result should be empty", func() {
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When scoring twice", func() {
			Convey("Then the results should be identical", func() {
				So(scorer.Score(ds, "C1"), ShouldResemble, scorer.Score(ds, "C1"))
			})
		})
	})

	Convey("Given learners with no records at all", t, func() {
		ds := model.NewDataset(model.Collections{
			Learners: []model.Learner{{ID: "L1", CohortID: "C1"}, {ID: "L1", CohortID: "C1"}},
		})
		entries := risk.NewScorer().Score(ds, "C1")

		Convey("Then each distinct learner should get the maximum risk", func() {
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Risk, ShouldEqual, 1.0)
			So(entries[0].Detail, ShouldResemble, risk.Detail{})
		})
	})

	Convey("Given learners with identical metrics", t, func() {
		ds := model.NewDataset(model.Collections{
			Learners: []model.Learner{
				{ID: "LB", CohortID: "C1"},
				{ID: "LC", CohortID: "C1"},
				{ID: "LA", CohortID: "C1"},
			},
			Attendance: []model.AttendanceRecord{{LearnerID: "LC", CohortID: "C1", Status: "present"}},
		})
		entries := risk.NewScorer().Score(ds, "C1")

		Convey("Then ties should break by ascending learner id", func() {
			So(entries[0].LearnerID, ShouldEqual, "LA")
			So(entries[1].LearnerID, ShouldEqual, "LB")
			So(entries[2].LearnerID, ShouldEqual, "LC")
		})
	})
}

func TestScorer_Options(t *testing.T) {
	Convey("Given weight options", t, func() {
		Convey("When valid weights are supplied", func() {
			w := risk.Weights{Attendance: 1, Score: 0, Satisfaction: 0}
			scorer := risk.NewScorer(risk.WithWeights(w))

			Convey("Then they should be used", func() {
				So(scorer.Weights(), ShouldResemble, w)
				entries := scorer.Score(scenarioDataset(), "C1")
				So(entries[0].Risk, ShouldEqual, 0.5)
			})
		})

		Convey("When weights sum above one", func() {
			scorer := risk.NewScorer(risk.WithWeights(risk.Weights{Attendance: 0.6, Score: 0.6}))

			Convey("Then the defaults should be kept", func() {
				So(scorer.Weights(), ShouldResemble, risk.DefaultWeights())
			})
		})

		Convey("When a weight is negative", func() {
			scorer := risk.NewScorer(risk.WithWeights(risk.Weights{Attendance: -0.1, Score: 0.5}))

			Convey("Then the defaults should be kept", func() {
				So(scorer.Weights(), ShouldResemble, risk.DefaultWeights())
			})
		})

		Convey("When every weight is zero", func() {
			So(risk.Weights{}.Valid(), ShouldBeFalse)
		})
	})
}

func TestTopAndAtLeast(t *testing.T) {
	Convey("Given ranked entries", t, func() {
		entries := []risk.Entry{
			{LearnerID: "a", Risk: 0.9},
			{LearnerID: "b", Risk: 0.5},
			{LearnerID: "c", Risk: 0.2},
		}

		Convey("Then Top should cap the count", func() {
			So(len(risk.Top(entries, 2)), ShouldEqual, 2)
			So(len(risk.Top(entries, 10)), ShouldEqual, 3)
			So(len(risk.Top(entries, 0)), ShouldEqual, 3)
		})

		Convey("And AtLeast should keep entries at or above the threshold", func() {
			out := risk.AtLeast(entries, 0.5)
			So(len(out), ShouldEqual, 2)
			So(out[1].LearnerID, ShouldEqual, "b")
		})
	})
}

func TestRiskRange(t *testing.T) {
	Convey("Given in-range inputs", t, func() {
		ds := scenarioDataset()

		Convey("Then every risk should lie in [0,1]", func() {
			for _, c := range []string{"C1", "C2"} {
				for _, e := range risk.NewScorer().Score(ds, c) {
					So(e.Risk, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})
	})
}
