package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func hours(h float64) *float64 { return &h }

func TestAnalyzeEmptyTaskList(t *testing.T) {
	a := NewAnalyzer()
	res, err := a.Analyze(nil, model.ProjectInProgress, day(2025, time.June, 15))
	require.NoError(t, err)

	assert.Nil(t, res.PlannedStartDate)
	assert.Nil(t, res.PlannedEndDate)
	assert.Nil(t, res.ActualStartDate)
	assert.Nil(t, res.ActualEndDate)
	assert.Zero(t, res.CompletionPercentage)
	assert.Zero(t, res.DelayDays)
	assert.Equal(t, FactorNone, res.Breakdown.Dominant)
	assert.Empty(t, res.CriticalTasks)
	assert.Equal(t, StatusOnTime, res.Status)
}

func TestAnalyzePlannedWindowFromTasks(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Status: model.TaskTodo, StartDate: dayPtr(2025, time.May, 10), EndDate: dayPtr(2025, time.May, 20)},
		{ID: "b", Status: model.TaskTodo, StartDate: dayPtr(2025, time.May, 1), EndDate: dayPtr(2025, time.July, 3)},
		{ID: "c", Status: model.TaskTodo}, // no dates, no contribution
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, day(2025, time.May, 15))
	require.NoError(t, err)

	require.NotNil(t, res.PlannedStartDate)
	require.NotNil(t, res.PlannedEndDate)
	assert.Equal(t, day(2025, time.May, 1), *res.PlannedStartDate)
	assert.Equal(t, day(2025, time.July, 3), *res.PlannedEndDate)
}

func TestAnalyzeScheduleDominatedDelay(t *testing.T) {
	// Planned end ten days behind now, 60% complete, no overdue open
	// tasks and no task signal past the planned end: the schedule factor
	// must dominate at exactly ten days.
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskCompleted, StartDate: dayPtr(2025, time.May, 31), EndDate: dayPtr(2025, time.June, 2), CompletedAt: dayPtr(2025, time.May, 31)},
		{ID: "t2", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 3), CompletedAt: dayPtr(2025, time.June, 2)},
		{ID: "t3", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 5), CompletedAt: dayPtr(2025, time.June, 4)},
		{ID: "t4", Status: model.TaskInProgress},
		{ID: "t5", Status: model.TaskTodo},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, res.CompletionPercentage, 1e-9)
	assert.Equal(t, 0, res.Breakdown.TaskBasedDays)
	assert.Equal(t, 10, res.Breakdown.ScheduleBasedDays)
	assert.Equal(t, 0, res.Breakdown.OverdueTaskDays)
	assert.LessOrEqual(t, res.Breakdown.ProgressBasedDays, 10)
	assert.Equal(t, 10, res.DelayDays)
	assert.Equal(t, FactorSchedule, res.Breakdown.Dominant)
	assert.Equal(t, StatusDelayed, res.Status)

	require.NotNil(t, res.ActualEndDate)
	assert.Equal(t, day(2025, time.June, 15), *res.ActualEndDate)
}

func TestAnalyzeProgressDominatedDelay(t *testing.T) {
	// 50% complete over a 10-day planned window, measured 4 days in:
	// linear extrapolation projects a 20-day total, i.e. 10 days late.
	now := day(2025, time.June, 5)
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskCompleted, StartDate: dayPtr(2025, time.June, 1), CompletedAt: dayPtr(2025, time.June, 1)},
		{ID: "t2", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 11)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Breakdown.TaskBasedDays)
	assert.Equal(t, 0, res.Breakdown.ScheduleBasedDays)
	assert.Equal(t, 0, res.Breakdown.OverdueTaskDays)
	assert.Equal(t, 10, res.Breakdown.ProgressBasedDays)
	assert.Equal(t, 10, res.DelayDays)
	assert.Equal(t, FactorProgress, res.Breakdown.Dominant)
}

func TestAnalyzeOverdueDominatedDelay(t *testing.T) {
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskInProgress, StartDate: dayPtr(2025, time.June, 1), EndDate: dayPtr(2025, time.June, 10)},
		{ID: "t2", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 13)},
		{ID: "t3", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 20)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	// Planned end (June 20) is still ahead, so only the overdue factor fires.
	assert.Equal(t, 5, res.Breakdown.OverdueTaskDays)
	assert.Equal(t, 5, res.DelayDays)
	assert.Equal(t, FactorOverdue, res.Breakdown.Dominant)

	// Diagnostics sorted by days overdue descending.
	require.Len(t, res.OverdueTasks, 2)
	assert.Equal(t, "t1", res.OverdueTasks[0].TaskID)
	assert.Equal(t, 5, res.OverdueTasks[0].DaysOverdue)
	assert.Equal(t, "t2", res.OverdueTasks[1].TaskID)
	assert.Equal(t, 2, res.OverdueTasks[1].DaysOverdue)
}

func TestAnalyzeTaskSignalDominatedDelay(t *testing.T) {
	// A completed task finished past every declared end date drags the
	// latest task signal beyond the planned end.
	now := day(2025, time.June, 5)
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskCompleted, StartDate: dayPtr(2025, time.May, 1), EndDate: dayPtr(2025, time.June, 1), CompletedAt: dayPtr(2025, time.June, 4)},
		{ID: "t2", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.May, 20), CompletedAt: dayPtr(2025, time.May, 19)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Breakdown.TaskBasedDays)
	assert.Equal(t, 3, res.DelayDays)
	assert.Equal(t, FactorTask, res.Breakdown.Dominant)
}

func TestAnalyzeCompletedProject(t *testing.T) {
	// Completed projects are one closed measurement: latest completion
	// minus planned end, regardless of anything else in the snapshot.
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 5), CompletedAt: dayPtr(2025, time.June, 8)},
		{ID: "t2", Status: model.TaskCompleted, CompletedAt: dayPtr(2025, time.June, 1)},
		{ID: "t3", Status: model.TaskTodo, EndDate: dayPtr(2025, time.May, 1), EstimatedHours: hours(100)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectCompleted, day(2025, time.December, 31))
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 3, res.DelayDays)
	require.NotNil(t, res.ActualEndDate)
	assert.Equal(t, day(2025, time.June, 8), *res.ActualEndDate)
}

func TestAnalyzeCompletedProjectWithoutCompletionTimestamps(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 5)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectCompleted, day(2025, time.June, 20))
	require.NoError(t, err)

	require.NotNil(t, res.ActualEndDate)
	assert.Equal(t, day(2025, time.June, 5), *res.ActualEndDate)
	assert.Zero(t, res.DelayDays)
	assert.Equal(t, StatusCompleted, res.Status)
}

func TestAnalyzeDelayIsMaxOfFactorsNotSum(t *testing.T) {
	// Harness for the core invariant: delayDays equals the maximum of the
	// four components and the dominant factor names it, with ties broken
	// in task, schedule, progress, overdue order.
	now := day(2025, time.June, 15)
	scenarios := [][]model.Task{
		nil,
		{
			{ID: "a", Status: model.TaskCompleted, StartDate: dayPtr(2025, time.May, 1), EndDate: dayPtr(2025, time.May, 10), CompletedAt: dayPtr(2025, time.May, 12)},
			{ID: "b", Status: model.TaskInProgress, StartDate: dayPtr(2025, time.May, 5), EndDate: dayPtr(2025, time.June, 5)},
			{ID: "c", Status: model.TaskTodo, StartDate: dayPtr(2025, time.May, 20), EndDate: dayPtr(2025, time.June, 1), EstimatedHours: hours(20)},
			{ID: "d", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 20), EstimatedHours: hours(40)},
		},
		{
			{ID: "a", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 1), CompletedAt: dayPtr(2025, time.June, 10)},
			{ID: "b", Status: model.TaskBlocked, EndDate: dayPtr(2025, time.June, 12)},
		},
		{
			{ID: "a", Status: model.TaskCancelled, EndDate: dayPtr(2025, time.June, 1)},
			{ID: "b", Status: model.TaskReview, EndDate: dayPtr(2025, time.June, 30)},
		},
	}

	for i, tasks := range scenarios {
		res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
		require.NoError(t, err, "scenario %d", i)

		b := res.Breakdown
		wantMax, wantFactor := 0, FactorNone
		for _, c := range []struct {
			days int
			f    Factor
		}{
			{b.TaskBasedDays, FactorTask},
			{b.ScheduleBasedDays, FactorSchedule},
			{b.ProgressBasedDays, FactorProgress},
			{b.OverdueTaskDays, FactorOverdue},
		} {
			if c.days > wantMax {
				wantMax, wantFactor = c.days, c.f
			}
		}
		assert.Equal(t, wantMax, res.DelayDays, "scenario %d", i)
		assert.Equal(t, wantFactor, res.Breakdown.Dominant, "scenario %d", i)
	}
}

func TestAnalyzeCriticalTasks(t *testing.T) {
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "t1", Status: model.TaskInProgress, EndDate: dayPtr(2025, time.June, 10)},
		{ID: "t2", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 13)},
		{ID: "t3", Status: model.TaskTodo, EndDate: dayPtr(2025, time.July, 1), EstimatedHours: hours(40)},
		{ID: "t4", Status: model.TaskTodo, EndDate: dayPtr(2025, time.July, 1), EstimatedHours: hours(10)},
		{ID: "t5", Status: model.TaskBlocked, EndDate: dayPtr(2025, time.July, 1), EstimatedHours: hours(30)},
		{ID: "t6", Status: model.TaskCompleted, CompletedAt: dayPtr(2025, time.June, 1)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	// Overdue open tasks t1 and t2 are always flagged; five open tasks
	// allow ceil(0.2*5)=1 top-up, which effort ranking gives to t3.
	assert.Equal(t, []string{"t1", "t2", "t3"}, res.CriticalTasks)
}

func TestAnalyzeCriticalTaskTieBreakByID(t *testing.T) {
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "zz", Status: model.TaskTodo, EstimatedHours: hours(10)},
		{ID: "aa", Status: model.TaskTodo, EstimatedHours: hours(10)},
		{ID: "mm", Status: model.TaskInProgress},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	// ceil(0.2*3)=1 slot; equal estimates resolve by id.
	assert.Equal(t, []string{"aa"}, res.CriticalTasks)
}

func TestAnalyzeIdempotent(t *testing.T) {
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "a", Status: model.TaskCompleted, StartDate: dayPtr(2025, time.May, 1), EndDate: dayPtr(2025, time.May, 10), CompletedAt: dayPtr(2025, time.May, 12)},
		{ID: "b", Status: model.TaskInProgress, StartDate: dayPtr(2025, time.May, 5), EndDate: dayPtr(2025, time.June, 5)},
		{ID: "c", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 20), EstimatedHours: hours(40)},
	}
	first, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)
	second, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzePlannedEndMonotonicUnderEndDateGrowth(t *testing.T) {
	now := day(2025, time.June, 15)
	tasks := []model.Task{
		{ID: "a", Status: model.TaskTodo, StartDate: dayPtr(2025, time.May, 1), EndDate: dayPtr(2025, time.June, 1)},
		{ID: "b", Status: model.TaskTodo, EndDate: dayPtr(2025, time.June, 10)},
	}
	before, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, now)
	require.NoError(t, err)

	// Push b's end date out past the current planned end.
	grown := make([]model.Task, len(tasks))
	copy(grown, tasks)
	grown[1].EndDate = dayPtr(2025, time.July, 10)

	after, err := NewAnalyzer().Analyze(grown, model.ProjectInProgress, now)
	require.NoError(t, err)

	require.NotNil(t, before.PlannedEndDate)
	require.NotNil(t, after.PlannedEndDate)
	assert.False(t, after.PlannedEndDate.Before(*before.PlannedEndDate))
	assert.GreaterOrEqual(t, after.Breakdown.TaskBasedDays, before.Breakdown.TaskBasedDays)
}

func TestAnalyzeAcceptsReversedTaskDates(t *testing.T) {
	// End before start is accepted as-is; the analyzer measures, it does
	// not validate task well-formedness.
	tasks := []model.Task{
		{ID: "a", Status: model.TaskTodo, StartDate: dayPtr(2025, time.June, 10), EndDate: dayPtr(2025, time.June, 1)},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, day(2025, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.June, 10), *res.PlannedStartDate)
	assert.Equal(t, day(2025, time.June, 1), *res.PlannedEndDate)
}

func TestAnalyzeNormalizesTimeOfDay(t *testing.T) {
	noisy := time.Date(2025, time.June, 8, 17, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "a", Status: model.TaskCompleted, EndDate: dayPtr(2025, time.June, 5), CompletedAt: &noisy},
	}
	res, err := NewAnalyzer().Analyze(tasks, model.ProjectCompleted, day(2025, time.June, 20))
	require.NoError(t, err)
	assert.Equal(t, 3, res.DelayDays)
	assert.Equal(t, day(2025, time.June, 8), *res.ActualEndDate)
}

func TestAnalyzeRejectsNegativeEstimate(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Status: model.TaskTodo, EstimatedHours: hours(-1)},
	}
	_, err := NewAnalyzer().Analyze(tasks, model.ProjectInProgress, day(2025, time.June, 15))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeEstimate))
	assert.Contains(t, err.Error(), "a")
}
