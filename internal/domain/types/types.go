// Package types contains the request and response shapes shared by the
// service and its adapters.
package types

import (
	"github.com/okian/trainops/internal/domain/kpi"
	"github.com/okian/trainops/internal/domain/risk"
)

// KPIRequest scopes a KPI aggregation. Both fields are optional.
type KPIRequest struct {
	CompanyID string `name:"company"`
	CohortID  string `name:"cohort"`
}

// WeeklyRequest selects the cohort a weekly report is written for.
type WeeklyRequest struct {
	CompanyID string `name:"company" validate:"notblank"`
	CohortID  string `name:"cohort" validate:"notblank"`
}

// RiskRequest ranks one cohort. Top <= 0 returns every learner.
type RiskRequest struct {
	CohortID string `name:"cohort" validate:"notblank"`
	Top      int    `name:"top"`
}

// RecommendRequest describes the learner profile for module selection.
type RecommendRequest struct {
	Role  string   `name:"role" validate:"notblank"`
	Level string   `name:"level" validate:"notblank"`
	Weeks int      `name:"weeks" validate:"min=0"`
	Tags  []string `name:"tags"`
}

// AARRequest selects the cohort for an after-action report.
type AARRequest struct {
	CohortID string `name:"cohort" validate:"notblank"`
}

// BatchRequest evaluates every cohort, optionally of one company.
type BatchRequest struct {
	CompanyID string `name:"company"`
}

// CohortSummary is one batch evaluation result.
type CohortSummary struct {
	CohortID  string       `json:"cohort_id"`
	CompanyID string       `json:"company_id"`
	KPIs      kpi.Result   `json:"kpis"`
	AtRisk    int          `json:"at_risk"`
	TopRisk   []risk.Entry `json:"top_risk"`
}
