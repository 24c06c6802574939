package model

import "slices"

// Collections is the document shape of a persisted dataset. Nil slices mark
// collections missing from the document.
type Collections struct {
	Cohorts      []Cohort             `json:"cohorts" yaml:"cohorts"`
	Learners     []Learner            `json:"learners" yaml:"learners"`
	Attendance   []AttendanceRecord   `json:"attendance" yaml:"attendance"`
	Assessments  []AssessmentRecord   `json:"assessments" yaml:"assessments"`
	Satisfaction []SatisfactionRecord `json:"satisfaction" yaml:"satisfaction"`
	Modules      []Module             `json:"modules" yaml:"modules"`
}

// Dataset is an immutable snapshot of the training data. Accessors return
// copies so callers cannot mutate the snapshot.
type Dataset struct {
	cohorts      []Cohort
	learners     []Learner
	attendance   []AttendanceRecord
	assessments  []AssessmentRecord
	satisfaction []SatisfactionRecord
	modules      []Module
}

// NewDataset copies c into a new snapshot.
func NewDataset(c Collections) *Dataset {
	modules := make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		modules[i] = m.clone()
	}
	return &Dataset{
		cohorts:      slices.Clone(c.Cohorts),
		learners:     slices.Clone(c.Learners),
		attendance:   slices.Clone(c.Attendance),
		assessments:  slices.Clone(c.Assessments),
		satisfaction: slices.Clone(c.Satisfaction),
		modules:      modules,
	}
}

// Cohorts returns a copy of the cohort records.
func (d *Dataset) Cohorts() []Cohort { return slices.Clone(d.cohorts) }

// Learners returns a copy of the learner records.
func (d *Dataset) Learners() []Learner { return slices.Clone(d.learners) }

// Attendance returns a copy of the attendance records.
func (d *Dataset) Attendance() []AttendanceRecord { return slices.Clone(d.attendance) }

// Assessments returns a copy of the assessment records.
func (d *Dataset) Assessments() []AssessmentRecord { return slices.Clone(d.assessments) }

// Satisfaction returns a copy of the satisfaction records.
func (d *Dataset) Satisfaction() []SatisfactionRecord { return slices.Clone(d.satisfaction) }

// Modules returns the module catalog in dataset order.
func (d *Dataset) Modules() []Module {
	out := make([]Module, len(d.modules))
	for i, m := range d.modules {
		out[i] = m.clone()
	}
	return out
}

// Counts returns the number of records per collection, keyed by the
// collection's document name.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		"cohorts":      len(d.cohorts),
		"learners":     len(d.learners),
		"attendance":   len(d.attendance),
		"assessments":  len(d.assessments),
		"satisfaction": len(d.satisfaction),
		"modules":      len(d.modules),
	}
}
