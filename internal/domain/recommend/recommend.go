// Package recommend selects curriculum modules for a requested learner profile.
package recommend

import (
	"sort"
	"strings"

	"github.com/okian/trainops/internal/domain/model"
)

// Scoring and selection constants.
const (
	levelMatchPoints = 2
	pmRolePoints     = 1
	modulesPerWeek   = 2
	minModules       = 2

	// PMTag marks modules relevant to product managers.
	PMTag = "pm"
)

// DefaultPMRoleSynonyms are the role names treated as product manager.
func DefaultPMRoleSynonyms() []string {
	return []string{"pm", "product manager"}
}

// Request is the profile modules are matched against.
type Request struct {
	Role  string
	Level string
	Weeks int
	Tags  []string
}

// Result echoes the request with the selected modules and their total hours.
type Result struct {
	Role       string         `json:"role"`
	Level      string         `json:"level"`
	Weeks      int            `json:"weeks"`
	Tags       []string       `json:"tags"`
	Modules    []model.Module `json:"modules"`
	TotalHours float64        `json:"total_hours"`
}

// Option applies a configuration option to the Recommender.
type Option func(*Recommender)

// WithPMRoleSynonyms replaces the role names treated as product manager.
// Names are compared case-insensitively; an empty list is ignored.
func WithPMRoleSynonyms(names []string) Option {
	return func(r *Recommender) {
		set := normalizeSet(names)
		if len(set) > 0 {
			r.pmRoles = set
		}
	}
}

// Recommender scores a module catalog against a request.
type Recommender struct {
	pmRoles map[string]struct{}
}

// New creates a Recommender with configuration options.
func New(opts ...Option) *Recommender {
	r := &Recommender{pmRoles: normalizeSet(DefaultPMRoleSynonyms())}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsPMRole reports whether role is one of the configured product manager names.
func (r *Recommender) IsPMRole(role string) bool {
	_, ok := r.pmRoles[normalize(role)]
	return ok
}

// Score returns the match score of m for req: 2 for a level match, 1 per
// shared tag, and 1 more for PM-tagged modules when the role is a PM role.
func (r *Recommender) Score(m model.Module, req Request) int {
	score := 0
	if m.Level == req.Level {
		score += levelMatchPoints
	}
	tags := normalizeSet(m.Tags)
	for want := range normalizeSet(req.Tags) {
		if _, ok := tags[want]; ok {
			score++
		}
	}
	if r.IsPMRole(req.Role) {
		if _, ok := tags[PMTag]; ok {
			score += pmRolePoints
		}
	}
	return score
}

// Recommend ranks catalog by score, keeping catalog order on ties, and picks
// Count(len(catalog), req.Weeks) modules.
func (r *Recommender) Recommend(catalog []model.Module, req Request) Result {
	type scored struct {
		score  int
		module model.Module
	}
	ranked := make([]scored, len(catalog))
	for i, m := range catalog {
		ranked[i] = scored{score: r.Score(m, req), module: m}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := Count(len(catalog), req.Weeks)
	picked := make([]model.Module, 0, n)
	var hours float64
	for _, s := range ranked[:n] {
		picked = append(picked, s.module)
		hours += s.module.Hours()
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, normalize(t))
	}

	return Result{
		Role:       req.Role,
		Level:      req.Level,
		Weeks:      req.Weeks,
		Tags:       tags,
		Modules:    picked,
		TotalHours: hours,
	}
}

// Count returns how many modules a plan of weeks gets: two per week, at least
// two, never more than the catalog holds.
func Count(catalogSize, weeks int) int {
	n := max(minModules, weeks*modulesPerWeek)
	return min(n, catalogSize)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
