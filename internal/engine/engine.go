// Package engine composes the timeline analyzer and the workload
// allocator behind one facade with stable result shapes. Like its parts
// it is a pure function over its inputs: safe to call concurrently for
// different projects and dates with no locking.
package engine

import (
	"fmt"
	"time"

	"planboard/internal/model"
	"planboard/internal/timeline"
	"planboard/internal/timewindow"
	"planboard/internal/workload"
)

// Config tunes the engine defaults. Zero values mean "use the stock
// constants" (8h capacity, 4h estimate, 20% critical ratio, 30-day
// fallback planned duration).
type Config struct {
	DefaultDailyCapacity float64 `yaml:"default_daily_capacity"`
	DefaultTaskEstimate  float64 `yaml:"default_task_estimate"`
	CriticalTaskRatio    float64 `yaml:"critical_task_ratio"`
	FallbackPlannedDays  int     `yaml:"fallback_planned_days"`
}

// Engine is the facade the presentation layer calls.
type Engine struct {
	timeline *timeline.Analyzer
	workload *workload.Allocator
}

// New returns an Engine with stock tuning.
func New() *Engine {
	return NewWithConfig(Config{})
}

// NewWithConfig returns an Engine tuned by cfg.
func NewWithConfig(cfg Config) *Engine {
	return &Engine{
		timeline: timeline.NewAnalyzerWith(cfg.CriticalTaskRatio, cfg.FallbackPlannedDays),
		workload: workload.NewAllocatorWith(cfg.DefaultDailyCapacity, cfg.DefaultTaskEstimate),
	}
}

// AnalyzeTimeline derives the project's planned/actual windows, delay and
// risk set from the task snapshot as of now.
func (e *Engine) AnalyzeTimeline(tasks []model.Task, projectStatus model.ProjectStatus, now time.Time) (timeline.Analysis, error) {
	return e.timeline.Analyze(tasks, projectStatus, now)
}

// AllocateWorkload computes every user's allocation for one date.
func (e *Engine) AllocateWorkload(tasks []model.Task, users []model.User, date time.Time) (map[string]workload.Sample, error) {
	return e.workload.Allocate(tasks, users, date)
}

// AggregateTeamWorkload folds one date's samples into team figures.
func (e *Engine) AggregateTeamWorkload(samples map[string]workload.Sample) workload.TeamSample {
	return e.workload.AggregateTeam(samples)
}

// ProjectAnalysis is the composed per-project result: the timeline plus
// one team sample per day of the requested calendar range.
type ProjectAnalysis struct {
	Timeline timeline.Analysis     `json:"timeline"`
	Calendar []workload.TeamSample `json:"calendar,omitempty"`
}

// AnalyzeProject runs both analyzers for one project over a calendar
// range. from and to are inclusive, day-granular; a reversed range yields
// an empty calendar rather than an error.
func (e *Engine) AnalyzeProject(tasks []model.Task, users []model.User, projectStatus model.ProjectStatus, from, to, now time.Time) (ProjectAnalysis, error) {
	tl, err := e.timeline.Analyze(tasks, projectStatus, now)
	if err != nil {
		return ProjectAnalysis{}, fmt.Errorf("timeline: %w", err)
	}
	res := ProjectAnalysis{Timeline: tl}

	for day := timewindow.Normalize(from); !day.After(timewindow.Normalize(to)); day = day.Add(timewindow.Day) {
		samples, err := e.workload.Allocate(tasks, users, day)
		if err != nil {
			return ProjectAnalysis{}, fmt.Errorf("workload %s: %w", day.Format("2006-01-02"), err)
		}
		team := e.workload.AggregateTeam(samples)
		team.Date = day
		res.Calendar = append(res.Calendar, team)
	}
	return res, nil
}
