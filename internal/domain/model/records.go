// Package model contains the training dataset records passed between layers.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/okian/trainops/internal/domain/filter"
)

// Well-known record values.
const (
	StatusPresent = "present"
	TypeQuiz      = "quiz"

	// DefaultModuleHours applies to modules without duration_hours.
	DefaultModuleHours = 2.0
)

// ErrInvalidID is returned when an identifier is neither a string nor a number.
var ErrInvalidID = errors.New("identifier must be a string or number")

// ID is an opaque identifier. Datasets may carry ids as strings or numbers;
// both decode to their textual form so 1 and "1" compare equal.
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, b)
	}
	*id = ID(b)
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (id *ID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d", ErrInvalidID, n.Line)
	}
	if n.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ID(n.Value)
	return nil
}

// Cohort is a training group run for one company.
type Cohort struct {
	ID        ID `json:"id" yaml:"id"`
	CompanyID ID `json:"company_id" yaml:"company_id"`
}

// Learner belongs to exactly one cohort.
type Learner struct {
	ID       ID `json:"id" yaml:"id"`
	CohortID ID `json:"cohort_id" yaml:"cohort_id"`
}

// AttendanceRecord is one session attendance mark.
type AttendanceRecord struct {
	LearnerID ID     `json:"learner_id" yaml:"learner_id"`
	CohortID  ID     `json:"cohort_id" yaml:"cohort_id"`
	Status    string `json:"status" yaml:"status"`
}

// Present reports whether the learner attended the session.
func (a AttendanceRecord) Present() bool { return a.Status == StatusPresent }

// AssessmentRecord is one graded quiz or assignment.
type AssessmentRecord struct {
	LearnerID ID      `json:"learner_id" yaml:"learner_id"`
	CohortID  ID      `json:"cohort_id" yaml:"cohort_id"`
	Type      string  `json:"type" yaml:"type"`
	Score     float64 `json:"score" yaml:"score"`
	Submitted bool    `json:"submitted" yaml:"submitted"`
}

// IsQuiz reports whether the assessment is a quiz.
func (a AssessmentRecord) IsQuiz() bool { return a.Type == TypeQuiz }

// SatisfactionRecord is one survey rating, nominally on a 1-5 scale.
type SatisfactionRecord struct {
	LearnerID ID      `json:"learner_id" yaml:"learner_id"`
	CohortID  ID      `json:"cohort_id" yaml:"cohort_id"`
	Rating    float64 `json:"rating" yaml:"rating"`
}

// Module is a curriculum catalog entry.
type Module struct {
	ID            ID       `json:"id" yaml:"id"`
	Topic         string   `json:"topic" yaml:"topic"`
	Level         string   `json:"level" yaml:"level"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
}

// Hours returns the module duration, defaulting to DefaultModuleHours.
func (m Module) Hours() float64 {
	if m.DurationHours == nil {
		return DefaultModuleHours
	}
	return *m.DurationHours
}

func (m Module) clone() Module {
	c := m
	if m.Tags != nil {
		c.Tags = append([]string(nil), m.Tags...)
	}
	if m.DurationHours != nil {
		h := *m.DurationHours
		c.DurationHours = &h
	}
	return c
}

// Field accessor sets for the record filter.
var (
	CohortFields = filter.Accessors[Cohort]{
		"id":         func(c Cohort) string { return c.ID.String() },
		"company_id": func(c Cohort) string { return c.CompanyID.String() },
	}
	LearnerFields = filter.Accessors[Learner]{
		"id":        func(l Learner) string { return l.ID.String() },
		"cohort_id": func(l Learner) string { return l.CohortID.String() },
	}
	AttendanceFields = filter.Accessors[AttendanceRecord]{
		"learner_id": func(a AttendanceRecord) string { return a.LearnerID.String() },
		"cohort_id":  func(a AttendanceRecord) string { return a.CohortID.String() },
		"status":     func(a AttendanceRecord) string { return a.Status },
	}
	AssessmentFields = filter.Accessors[AssessmentRecord]{
		"learner_id": func(a AssessmentRecord) string { return a.LearnerID.String() },
		"cohort_id":  func(a AssessmentRecord) string { return a.CohortID.String() },
		"type":       func(a AssessmentRecord) string { return a.Type },
		"submitted":  func(a AssessmentRecord) string { return strconv.FormatBool(a.Submitted) },
	}
	SatisfactionFields = filter.Accessors[SatisfactionRecord]{
		"learner_id": func(s SatisfactionRecord) string { return s.LearnerID.String() },
		"cohort_id":  func(s SatisfactionRecord) string { return s.CohortID.String() },
	}
)
