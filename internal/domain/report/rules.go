package report

import "github.com/okian/trainops/internal/domain/kpi"

// Weekly report thresholds.
const (
	WeeklyAttendanceMin   = 0.85
	WeeklyAssignmentMin   = 0.75
	WeeklySatisfactionMin = 3.8
	WeeklyRiskThreshold   = 0.5
	WeeklyRiskLimit       = 5
)

// After-action report thresholds.
const (
	AARAttendanceMin   = 0.8
	AARAssignmentMin   = 0.7
	AARQuizMin         = 60.0
	AARSatisfactionMin = 3.5
	AARNPSMin          = 0.0
	AARRiskLimit       = 3
)

// Fallback actions when no rule triggers.
const (
	WeeklyDefaultAction = "현재 운영 유지, 베스트 프랙티스 문서화"
	AARDefaultAction    = "다음 기수 동일 운영 유지"
	AARNoIssues         = "특별한 이슈 없음"
)

// Issue is a triggered AAR finding and the single action it maps to.
type Issue struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

type rule struct {
	issue   string
	action  string
	trigger func(kpi.Result) bool
}

var weeklyRules = []rule{
	{action: "다음 주 초 리마인드 메시지 자동 발송", trigger: func(k kpi.Result) bool { return k.AttendanceRate < WeeklyAttendanceMin }},
	{action: "과제 마감 48/12시간 전 이중 알림", trigger: func(k kpi.Result) bool { return k.AssignmentCompletionRate < WeeklyAssignmentMin }},
	{action: "세션 중 체크인 질문 2개 추가", trigger: func(k kpi.Result) bool { return k.SatisfactionAvg < WeeklySatisfactionMin }},
}

var aarRules = []rule{
	{issue: "출석률 저하", action: "주중 리마인드 및 보강 세션 제공", trigger: func(k kpi.Result) bool { return k.AttendanceRate < AARAttendanceMin }},
	{issue: "과제 완료율 저하", action: "마감 전 알림 자동화 및 과제 가이드 간소화", trigger: func(k kpi.Result) bool { return k.AssignmentCompletionRate < AARAssignmentMin }},
	{issue: "퀴즈 평균 저하", action: "난이도 재조정 및 사전 예습 자료 배포", trigger: func(k kpi.Result) bool { return k.QuizAvg < AARQuizMin }},
	{issue: "만족도 저하", action: "강사별 피드백 공유와 인터랙션 강화 활동", trigger: func(k kpi.Result) bool { return k.SatisfactionAvg < AARSatisfactionMin }},
	{issue: "NPS 음수", action: "고객사 커뮤니케이션 빈도 상향 및 성과 공유", trigger: func(k kpi.Result) bool { return k.NPS < AARNPSMin }},
}

// WeeklyActions returns the next-step actions for k in rule order, or the
// single default action when no threshold is crossed.
func WeeklyActions(k kpi.Result) []string {
	var out []string
	for _, r := range weeklyRules {
		if r.trigger(k) {
			out = append(out, r.action)
		}
	}
	if len(out) == 0 {
		return []string{WeeklyDefaultAction}
	}
	return out
}

// AARIssues returns the triggered issues for k in rule order.
func AARIssues(k kpi.Result) []Issue {
	var out []Issue
	for _, r := range aarRules {
		if r.trigger(k) {
			out = append(out, Issue{Name: r.issue, Action: r.action})
		}
	}
	return out
}
