// Package report composes KPI and risk results into narrative status reports.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/trainops/internal/domain/kpi"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/risk"
)

// Generator builds reports from a dataset snapshot.
type Generator struct {
	scorer *risk.Scorer
}

// NewGenerator creates a Generator ranking learners with scorer. A nil scorer
// uses the default weights.
func NewGenerator(scorer *risk.Scorer) *Generator {
	if scorer == nil {
		scorer = risk.NewScorer()
	}
	return &Generator{scorer: scorer}
}

// Weekly renders the weekly status report for a company cohort.
func (g *Generator) Weekly(ds *model.Dataset, companyID, cohortID string) string {
	k := kpi.Compute(ds, kpi.Scope{CompanyID: companyID, CohortID: cohortID})
	highRisk := risk.Top(risk.AtLeast(g.scorer.Score(ds, cohortID), WeeklyRiskThreshold), WeeklyRiskLimit)

	lines := []string{
		fmt.Sprintf("주간 리포트 - Company %s, Cohort %s", companyID, cohortID),
		"핵심 KPI: " + strings.Join([]string{
			"출석 " + Percent(k.AttendanceRate),
			"과제 " + Percent(k.AssignmentCompletionRate),
			"퀴즈 " + Decimal(k.QuizAvg),
			"완료 " + Percent(k.CompletionRate),
			"만족도 " + Decimal(k.SatisfactionAvg),
			"NPS " + strconv.FormatFloat(k.NPS, 'f', 1, 64),
		}, ", "),
	}
	if len(highRisk) > 0 {
		lines = append(lines, "고위험 학습자: "+learnerList(highRisk, "r"))
	} else {
		lines = append(lines, "고위험 학습자: 없음")
	}
	lines = append(lines, "다음 단계:")
	lines = append(lines, bullets(WeeklyActions(k))...)
	return strings.Join(lines, "\n")
}

// AAR renders the after-action report for a cohort.
func (g *Generator) AAR(ds *model.Dataset, cohortID string) string {
	k := kpi.Compute(ds, kpi.Scope{CohortID: cohortID})
	topRisk := risk.Top(g.scorer.Score(ds, cohortID), AARRiskLimit)
	issues := AARIssues(k)

	lines := []string{
		"AAR - Cohort " + cohortID,
		"요약 KPI:",
		Summary(k),
	}

	names := make([]string, 0, len(issues))
	actions := make([]string, 0, len(issues))
	for _, is := range issues {
		names = append(names, is.Name)
		actions = append(actions, is.Action)
	}
	if len(names) > 0 {
		lines = append(lines, "핵심 이슈: "+strings.Join(names, ", "))
	} else {
		lines = append(lines, "핵심 이슈: "+AARNoIssues)
		actions = []string{AARDefaultAction}
	}
	if len(topRisk) > 0 {
		lines = append(lines, "고위험 학습자 TOP3: "+learnerList(topRisk, "risk"))
	}
	lines = append(lines, "개선 액션 제안:")
	lines = append(lines, bullets(actions)...)
	return strings.Join(lines, "\n")
}

// Summary renders every KPI field on one line.
func Summary(k kpi.Result) string {
	return strings.Join([]string{
		"attendance_rate=" + Decimal(k.AttendanceRate),
		"assignment_completion_rate=" + Decimal(k.AssignmentCompletionRate),
		"quiz_avg=" + Decimal(k.QuizAvg),
		"completion_rate=" + Decimal(k.CompletionRate),
		"satisfaction_avg=" + Decimal(k.SatisfactionAvg),
		"nps=" + Decimal(k.NPS),
		"cohorts=[" + strings.Join(k.CohortIDs, ", ") + "]",
	}, ", ")
}

// Percent renders a rate as a whole percentage, e.g. 0.833 -> "83%".
func Percent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 0, 64) + "%"
}

// Decimal renders x in its shortest form with at least one fractional digit,
// e.g. 70 -> "70.0" and 0.833 -> "0.833".
func Decimal(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func learnerList(entries []risk.Entry, label string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s(%s=%s)", e.LearnerID, label, Decimal(e.Risk))
	}
	return strings.Join(parts, ", ")
}

func bullets(items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = "- " + it
	}
	return out
}
