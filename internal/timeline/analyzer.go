// Package timeline derives a project's realistic schedule from its task
// snapshot: planned and actual windows, completion, delay magnitude with
// cause attribution, and a coarse set of at-risk tasks. The package is
// pure: it performs no I/O, reads no clock, and holds no state between
// calls, so identical inputs always produce identical results.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"planboard/internal/model"
	"planboard/internal/timewindow"
)

// ErrNegativeEstimate signals a task snapshot carrying a negative
// estimated-hours value. Missing estimates are fine; negative ones are a
// caller bug.
var ErrNegativeEstimate = errors.New("negative estimated hours")

// Analyzer computes timeline analyses. The zero value is not usable;
// construct with NewAnalyzer.
type Analyzer struct {
	criticalRatio      float64
	fallbackPlannedDur int
}

// NewAnalyzer returns an Analyzer with the stock tuning: the critical set
// is topped up with 20% of open tasks, and a planned window with an
// unknown start assumes a 30-day duration for progress extrapolation.
func NewAnalyzer() *Analyzer {
	return &Analyzer{criticalRatio: 0.2, fallbackPlannedDur: 30}
}

// NewAnalyzerWith overrides the critical-set ratio and the fallback
// planned duration in days. Non-positive arguments fall back to the stock
// values.
func NewAnalyzerWith(criticalRatio float64, fallbackPlannedDays int) *Analyzer {
	a := NewAnalyzer()
	if criticalRatio > 0 {
		a.criticalRatio = criticalRatio
	}
	if fallbackPlannedDays > 0 {
		a.fallbackPlannedDur = fallbackPlannedDays
	}
	return a
}

// Analyze reconciles the task snapshot with the current date into one
// explainable timeline result. now is injected by the caller; the analyzer
// never reads the wall clock.
//
// Unknown dates are skipped, not treated as zero, so a sparse snapshot
// degrades to a sparse result rather than an error. Tasks whose end date
// precedes their start date are accepted as-is; the analyzer measures, it
// does not validate.
func (a *Analyzer) Analyze(tasks []model.Task, projectStatus model.ProjectStatus, now time.Time) (Analysis, error) {
	for i := range tasks {
		if tasks[i].EstimatedHours != nil && *tasks[i].EstimatedHours < 0 {
			return Analysis{}, fmt.Errorf("task %s: %w", tasks[i].ID, ErrNegativeEstimate)
		}
	}

	res := Analysis{Status: StatusOnTime, Breakdown: DelayBreakdown{Dominant: FactorNone}}

	// Planned window: recomputed from tasks every call, never cached.
	for i := range tasks {
		t := &tasks[i]
		if t.StartDate != nil {
			d := timewindow.Normalize(*t.StartDate)
			if res.PlannedStartDate == nil || d.Before(*res.PlannedStartDate) {
				res.PlannedStartDate = &d
			}
		}
		if t.EndDate != nil {
			d := timewindow.Normalize(*t.EndDate)
			if res.PlannedEndDate == nil || d.After(*res.PlannedEndDate) {
				res.PlannedEndDate = &d
			}
		}
	}

	// Actual start and completion.
	completed := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Status != model.TaskCompleted {
			continue
		}
		completed++
		signal := t.CompletedAt
		if signal == nil {
			signal = t.StartDate
		}
		if signal != nil {
			d := timewindow.Normalize(*signal)
			if res.ActualStartDate == nil || d.Before(*res.ActualStartDate) {
				res.ActualStartDate = &d
			}
		}
	}
	if res.ActualStartDate == nil && res.PlannedStartDate != nil {
		d := *res.PlannedStartDate
		res.ActualStartDate = &d
	}
	if len(tasks) > 0 {
		res.CompletionPercentage = float64(completed) / float64(len(tasks)) * 100
	}

	res.OverdueTasks = overdueTasks(tasks, now)

	if projectStatus.Done() {
		a.analyzeCompleted(tasks, &res)
	} else {
		a.analyzeOngoing(tasks, now, &res)
	}

	res.CriticalTasks = a.criticalTasks(tasks, res.OverdueTasks)
	return res, nil
}

// analyzeCompleted closes the measurement for a finished project: the
// actual end is the latest completion, and the delay is its distance past
// the planned end. No other factor applies once a project is done.
func (a *Analyzer) analyzeCompleted(tasks []model.Task, res *Analysis) {
	for i := range tasks {
		t := &tasks[i]
		if t.Status != model.TaskCompleted || t.CompletedAt == nil {
			continue
		}
		d := timewindow.Normalize(*t.CompletedAt)
		if res.ActualEndDate == nil || d.After(*res.ActualEndDate) {
			res.ActualEndDate = &d
		}
	}
	if res.ActualEndDate == nil && res.PlannedEndDate != nil {
		d := *res.PlannedEndDate
		res.ActualEndDate = &d
	}
	if res.ActualEndDate != nil && res.PlannedEndDate != nil {
		if days := timewindow.DaysBetween(*res.PlannedEndDate, *res.ActualEndDate); days > 0 {
			res.DelayDays = days
			res.Breakdown.TaskBasedDays = days
			res.Breakdown.Dominant = FactorTask
		}
	}
	res.Status = StatusCompleted
}

// analyzeOngoing computes the four candidate delays for a live project and
// reports the largest as the delay, with the factor that produced it.
func (a *Analyzer) analyzeOngoing(tasks []model.Task, now time.Time, res *Analysis) {
	latestSignal := latestTaskSignal(tasks)

	if latestSignal != nil && res.PlannedEndDate != nil {
		if days := timewindow.DaysBetween(*res.PlannedEndDate, *latestSignal); days > 0 {
			res.Breakdown.TaskBasedDays = days
		}
	}

	if res.PlannedEndDate != nil && res.CompletionPercentage < 100 &&
		timewindow.IsPast(*res.PlannedEndDate, now) {
		res.Breakdown.ScheduleBasedDays = timewindow.DaysBetween(*res.PlannedEndDate, now)
	}

	res.Breakdown.ProgressBasedDays = a.progressDelay(res)

	for _, ot := range res.OverdueTasks {
		if ot.DaysOverdue > res.Breakdown.OverdueTaskDays {
			res.Breakdown.OverdueTaskDays = ot.DaysOverdue
		}
	}

	res.DelayDays, res.Breakdown.Dominant = dominantDelay(res.Breakdown)

	if res.PlannedEndDate != nil {
		d := res.PlannedEndDate.Add(time.Duration(res.DelayDays) * timewindow.Day)
		res.ActualEndDate = &d
	} else {
		res.ActualEndDate = latestSignal
	}

	switch {
	case res.DelayDays > 0:
		res.Status = StatusDelayed
	case res.ActualEndDate != nil && res.PlannedEndDate != nil &&
		res.ActualEndDate.Before(*res.PlannedEndDate):
		res.Status = StatusEarly
	default:
		res.Status = StatusOnTime
	}
}

// progressDelay linearly extrapolates "this share of the work took this
// long" into a projected total duration. An earned-schedule heuristic, not
// a guarantee.
func (a *Analyzer) progressDelay(res *Analysis) int {
	pct := res.CompletionPercentage
	if pct <= 0 || pct >= 100 || res.PlannedEndDate == nil || res.ActualStartDate == nil {
		return 0
	}
	plannedDur := a.fallbackPlannedDur
	if res.PlannedStartDate != nil {
		plannedDur = timewindow.DaysBetween(*res.PlannedStartDate, *res.PlannedEndDate)
	}
	if plannedDur <= 0 {
		return 0
	}
	projectedDur := float64(plannedDur) / (pct / 100)
	projectedEnd := res.ActualStartDate.Add(time.Duration(projectedDur * float64(timewindow.Day)))
	if days := timewindow.CeilDays(projectedEnd.Sub(*res.PlannedEndDate)); days > 0 {
		return days
	}
	return 0
}

// dominantDelay picks the maximum component and names it. Ties resolve in
// declaration order: task, schedule, progress, overdue.
func dominantDelay(b DelayBreakdown) (int, Factor) {
	max, factor := 0, FactorNone
	for _, c := range []struct {
		days int
		f    Factor
	}{
		{b.TaskBasedDays, FactorTask},
		{b.ScheduleBasedDays, FactorSchedule},
		{b.ProgressBasedDays, FactorProgress},
		{b.OverdueTaskDays, FactorOverdue},
	} {
		if c.days > max {
			max, factor = c.days, c.f
		}
	}
	return max, factor
}

// latestTaskSignal returns the newest per-task evidence of when work ends:
// the completion timestamp for completed tasks, the declared end date for
// everything else.
func latestTaskSignal(tasks []model.Task) *time.Time {
	var latest *time.Time
	for i := range tasks {
		t := &tasks[i]
		signal := t.EndDate
		if t.Status == model.TaskCompleted && t.CompletedAt != nil {
			signal = t.CompletedAt
		}
		if signal == nil {
			continue
		}
		d := timewindow.Normalize(*signal)
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest
}

// overdueTasks lists open tasks whose end date has passed, sorted by days
// overdue descending with task id as the deterministic tie-break.
func overdueTasks(tasks []model.Task, now time.Time) []OverdueTask {
	var out []OverdueTask
	for i := range tasks {
		t := &tasks[i]
		if !t.Status.Open() || t.EndDate == nil || !timewindow.IsPast(*t.EndDate, now) {
			continue
		}
		out = append(out, OverdueTask{
			TaskID:      t.ID,
			Title:       t.Title,
			DaysOverdue: timewindow.DaysBetween(*t.EndDate, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysOverdue != out[j].DaysOverdue {
			return out[i].DaysOverdue > out[j].DaysOverdue
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// criticalTasks flags where schedule risk concentrates: every overdue open
// task, topped up with the highest-effort not-yet-started tasks until the
// set covers criticalRatio of the open tasks. A ranking heuristic, not a
// precedence-aware critical path; the snapshot carries no dependency
// edges.
func (a *Analyzer) criticalTasks(tasks []model.Task, overdue []OverdueTask) []string {
	flagged := make(map[string]bool, len(overdue))
	for _, ot := range overdue {
		flagged[ot.TaskID] = true
	}

	openCount := 0
	for i := range tasks {
		if tasks[i].Status.Open() {
			openCount++
		}
	}
	quota := int(math.Ceil(a.criticalRatio * float64(openCount)))

	var candidates []*model.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Status.Open() && !t.Status.Started() && !flagged[t.ID] {
			candidates = append(candidates, t)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ei, ej := estimateOrZero(candidates[i]), estimateOrZero(candidates[j])
		if ei != ej {
			return ei > ej
		}
		return candidates[i].ID < candidates[j].ID
	})
	for i := 0; i < len(candidates) && i < quota; i++ {
		flagged[candidates[i].ID] = true
	}

	if len(flagged) == 0 {
		return nil
	}
	out := make([]string, 0, len(flagged))
	for id := range flagged {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func estimateOrZero(t *model.Task) float64 {
	if t.EstimatedHours == nil {
		return 0
	}
	return *t.EstimatedHours
}
