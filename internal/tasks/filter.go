package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/mailtasks/internal/model"
)

// Filter is a conjunction of optional field matches. Nil fields are not
// checked.
type Filter struct {
	Priority  *model.Priority
	Category  *model.Category
	Status    *model.Status
	Completed *bool
}

// Empty reports whether the filter checks no field.
func (f Filter) Empty() bool {
	return f.Priority == nil && f.Category == nil && f.Status == nil && f.Completed == nil
}

// Match reports whether t satisfies every set field. A task with an empty
// value for a checked field never matches.
func (f Filter) Match(t model.Task) bool {
	if f.Priority != nil && (t.Priority == "" || t.Priority != *f.Priority) {
		return false
	}
	if f.Category != nil && (t.Category == "" || t.Category != *f.Category) {
		return false
	}
	if f.Status != nil && (t.Status == "" || t.Status != *f.Status) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

// FilterTasks returns the tasks matching f, preserving order.
func FilterTasks(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseFilter builds a Filter from field/value pairs. Priority and status
// are lowercased and category names match case-insensitively. An unknown
// field name is a caller error.
func ParseFilter(fields map[string]string) (Filter, error) {
	var f Filter
	for name, value := range fields {
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "priority":
			p := model.Priority(strings.ToLower(value))
			f.Priority = &p
		case "category":
			c := canonicalCategory(value)
			f.Category = &c
		case "status":
			s := model.Status(strings.ToLower(value))
			f.Status = &s
		case "completed":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Filter{}, fmt.Errorf("parsing completed filter %q: %w", value, err)
			}
			f.Completed = &b
		default:
			return Filter{}, fmt.Errorf("unknown filter field %q", name)
		}
	}
	return f, nil
}

func canonicalCategory(s string) model.Category {
	for _, c := range model.Categories {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	if strings.EqualFold(string(model.CategoryOther), s) {
		return model.CategoryOther
	}
	return model.Category(s)
}
