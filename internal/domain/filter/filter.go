// Package filter subsets typed record collections by named field equality.
package filter

// Accessors maps a field name to a function reading that field as a string.
// Each record type publishes one accessor set; the filter never inspects
// records any other way.
type Accessors[T any] map[string]func(T) string

// Constraints maps field names to required values. A nil value means the
// constraint is absent and matches every record.
type Constraints map[string]*string

// Eq returns a constraint value requiring equality with v.
func Eq(v string) *string {
	return &v
}

// Optional returns a constraint value for v, or nil when v is empty.
func Optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Where returns the records matching every non-nil constraint, in input order.
// With no active constraints the input slice is returned as is. A constraint
// on a field unknown to the accessor set matches nothing.
func Where[T any](records []T, fields Accessors[T], constraints Constraints) []T {
	active := make(map[string]string, len(constraints))
	for name, v := range constraints {
		if v != nil {
			active[name] = *v
		}
	}
	if len(active) == 0 {
		return records
	}

	getters := make([]func(T) string, 0, len(active))
	wants := make([]string, 0, len(active))
	for name, want := range active {
		get, ok := fields[name]
		if !ok {
			return []T{}
		}
		getters = append(getters, get)
		wants = append(wants, want)
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if matches(r, getters, wants) {
			out = append(out, r)
		}
	}
	return out
}

// In returns the records whose field value is a member of set, in input order.
func In[T any](records []T, field func(T) string, set map[string]struct{}) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if _, ok := set[field(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}

func matches[T any](r T, getters []func(T) string, wants []string) bool {
	for i, get := range getters {
		if get(r) != wants[i] {
			return false
		}
	}
	return true
}
