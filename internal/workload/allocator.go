// Package workload turns a task/assignment snapshot into per-user daily
// allocation and utilization figures, plus the team-level aggregates the
// calendar grid displays. Pure computation: no I/O, no clock, no state
// across calls.
package workload

import (
	"errors"
	"fmt"
	"math"
	"time"

	"planboard/internal/model"
	"planboard/internal/timewindow"
)

var (
	// ErrNegativeEstimate signals a task with estimated hours below zero.
	ErrNegativeEstimate = errors.New("negative estimated hours")
	// ErrNegativeDailyCap signals a task with a negative max-daily-hours cap.
	ErrNegativeDailyCap = errors.New("negative max daily hours")
	// ErrNegativeCapacity signals a user with a negative daily capacity.
	ErrNegativeCapacity = errors.New("negative max hours per day")
	// ErrUnnormalizedDate signals a target date carrying a time-of-day.
	// The contract is that dates arrive normalized to midnight in one
	// consistent calendar; the allocator does no timezone conversion.
	ErrUnnormalizedDate = errors.New("date not normalized to midnight")
)

// Sample is one user's workload on one date.
type Sample struct {
	UserID             string    `json:"user_id"`
	Date               time.Time `json:"date"`
	ActiveTaskCount    int       `json:"active_task_count"`
	AllocatedHours     float64   `json:"allocated_hours"`
	UtilizationPercent float64   `json:"utilization_percent"`
}

// TeamSample aggregates one date across the users who actually have work
// that day. Idle users are excluded rather than counted as 0%: averaging
// them in would dilute the figure toward a number that misrepresents how
// loaded the working people are.
type TeamSample struct {
	Date                      time.Time `json:"date"`
	AverageUtilizationPercent float64   `json:"average_utilization_percent"`
	PeakUtilizationPercent    float64   `json:"peak_utilization_percent"`
	SampleUserCount           int       `json:"sample_user_count"`
}

// Allocator computes workload samples. Construct with NewAllocator.
type Allocator struct {
	defaultCapacity float64
	defaultEstimate float64
}

// NewAllocator returns an Allocator with the stock defaults: 8h/day user
// capacity and a 4h estimate for tasks that declare none.
func NewAllocator() *Allocator {
	return &Allocator{defaultCapacity: 8, defaultEstimate: 4}
}

// NewAllocatorWith overrides the default capacity and task estimate.
// Non-positive arguments fall back to the stock values.
func NewAllocatorWith(defaultCapacity, defaultEstimate float64) *Allocator {
	a := NewAllocator()
	if defaultCapacity > 0 {
		a.defaultCapacity = defaultCapacity
	}
	if defaultEstimate > 0 {
		a.defaultEstimate = defaultEstimate
	}
	return a
}

// Allocate computes every user's workload sample for one date. A task
// contributes to a user when it is assigned through either assignment
// representation (once, never twice), declares both a start and an end
// date, and its window contains the target date.
//
// AllocatedHours is never clamped, so over-allocation stays visible;
// UtilizationPercent is clamped to [0, 100] for display.
func (a *Allocator) Allocate(tasks []model.Task, users []model.User, date time.Time) (map[string]Sample, error) {
	if !timewindow.IsNormalized(date) {
		return nil, fmt.Errorf("%s: %w", date.Format(time.RFC3339), ErrUnnormalizedDate)
	}
	for i := range tasks {
		t := &tasks[i]
		if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
			return nil, fmt.Errorf("task %s: %w", t.ID, ErrNegativeEstimate)
		}
		if t.MaxDailyHours != nil && *t.MaxDailyHours < 0 {
			return nil, fmt.Errorf("task %s: %w", t.ID, ErrNegativeDailyCap)
		}
	}

	samples := make(map[string]Sample, len(users))
	for _, u := range users {
		capacity, err := a.capacity(&u)
		if err != nil {
			return nil, err
		}

		s := Sample{UserID: u.ID, Date: date}
		for i := range tasks {
			t := &tasks[i]
			if !t.AssignedToUser(u.ID) || !eligible(t, date) {
				continue
			}
			s.ActiveTaskCount++
			s.AllocatedHours += a.dailyHours(t)
		}
		s.UtilizationPercent = clampPercent(math.Round(s.AllocatedHours / capacity * 100))
		samples[u.ID] = s
	}
	return samples, nil
}

// AggregateTeam folds one date's samples into the team-level figures.
// Only users with allocated hours participate; an empty active set yields
// zeros.
func (a *Allocator) AggregateTeam(samples map[string]Sample) TeamSample {
	var out TeamSample
	sum := 0.0
	for _, s := range samples {
		if out.Date.IsZero() {
			out.Date = s.Date
		}
		if s.AllocatedHours <= 0 {
			continue
		}
		out.SampleUserCount++
		sum += s.UtilizationPercent
		if s.UtilizationPercent > out.PeakUtilizationPercent {
			out.PeakUtilizationPercent = s.UtilizationPercent
		}
	}
	if out.SampleUserCount > 0 {
		out.AverageUtilizationPercent = sum / float64(out.SampleUserCount)
	}
	return out
}

// dailyHours spreads the task's estimate evenly over its inclusive day
// span, then applies the task's own throughput ceiling if it has one.
// Tasks without an estimate fall back to the default: something is better
// than nothing for a calendar heat map.
func (a *Allocator) dailyHours(t *model.Task) float64 {
	estimate := a.defaultEstimate
	if t.EstimatedHours != nil {
		estimate = *t.EstimatedHours
	}
	span := timewindow.InclusiveDays(*t.StartDate, *t.EndDate)
	if span < 1 {
		span = 1
	}
	hours := estimate / float64(span)
	if t.MaxDailyHours != nil && *t.MaxDailyHours < hours {
		hours = *t.MaxDailyHours
	}
	return hours
}

func (a *Allocator) capacity(u *model.User) (float64, error) {
	if u.MaxHoursPerDay == nil {
		return a.defaultCapacity, nil
	}
	if *u.MaxHoursPerDay < 0 {
		return 0, fmt.Errorf("user %s: %w", u.ID, ErrNegativeCapacity)
	}
	if *u.MaxHoursPerDay == 0 {
		return a.defaultCapacity, nil
	}
	return *u.MaxHoursPerDay, nil
}

func eligible(t *model.Task, date time.Time) bool {
	return t.StartDate != nil && t.EndDate != nil &&
		timewindow.Contains(*t.StartDate, *t.EndDate, date)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
