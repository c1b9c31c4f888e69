package model

import (
	"sort"
	"time"
)

// Task is the read-only task snapshot the analysis engine consumes.
// Optional schedule and effort fields are pointers: nil means unknown,
// which downstream calculations treat as "skip", never as zero.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	MaxDailyHours  *float64 `json:"max_daily_hours,omitempty"`

	// AssignedTo is the legacy single-assignee column; AssigneeIDs is the
	// newer multi-assignment edge set. Use Assignees to read either.
	AssignedTo  string   `json:"assigned_to,omitempty"`
	AssigneeIDs []string `json:"assignee_ids,omitempty"`
}

// Assignees returns the union of the legacy single-assignee field and the
// multi-assignment edge set, deduplicated and sorted. A task assigned to a
// user through both paths yields that user exactly once.
func (t *Task) Assignees() []string {
	seen := make(map[string]bool, len(t.AssigneeIDs)+1)
	if t.AssignedTo != "" {
		seen[t.AssignedTo] = true
	}
	for _, id := range t.AssigneeIDs {
		if id != "" {
			seen[id] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AssignedToUser reports whether the task is assigned to userID through
// either assignment representation.
func (t *Task) AssignedToUser(userID string) bool {
	if userID == "" {
		return false
	}
	if t.AssignedTo == userID {
		return true
	}
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// User is the read-only user snapshot consumed by the workload allocator.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MaxHoursPerDay *float64 `json:"max_hours_per_day,omitempty"`
}
