package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/model"
	"planboard/internal/timeline"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func hours(h float64) *float64 { return &h }

func fixtureTasks() []model.Task {
	return []model.Task{
		{
			ID: "t1", Status: model.TaskInProgress,
			StartDate: dayPtr(2025, time.June, 10), EndDate: dayPtr(2025, time.June, 13),
			EstimatedHours: hours(16), MaxDailyHours: hours(4),
			AssignedTo: "u1",
		},
		{
			ID: "t2", Status: model.TaskTodo,
			StartDate: dayPtr(2025, time.June, 12), EndDate: dayPtr(2025, time.June, 15),
			EstimatedHours: hours(8),
			AssigneeIDs:    []string{"u2"},
		},
	}
}

func fixtureUsers() []model.User {
	return []model.User{{ID: "u1", MaxHoursPerDay: hours(8)}, {ID: "u2"}}
}

func TestEngineAnalyzeTimeline(t *testing.T) {
	e := New()
	res, err := e.AnalyzeTimeline(fixtureTasks(), model.ProjectInProgress, day(2025, time.June, 11))
	require.NoError(t, err)
	assert.Equal(t, timeline.StatusOnTime, res.Status)
	assert.Equal(t, day(2025, time.June, 10), *res.PlannedStartDate)
	assert.Equal(t, day(2025, time.June, 15), *res.PlannedEndDate)
}

func TestEngineAllocateAndAggregate(t *testing.T) {
	e := New()
	samples, err := e.AllocateWorkload(fixtureTasks(), fixtureUsers(), day(2025, time.June, 12))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// Both users have work on the 12th: t1 capped at 4h, t2 at 8/4=2h.
	assert.InDelta(t, 4.0, samples["u1"].AllocatedHours, 1e-9)
	assert.InDelta(t, 2.0, samples["u2"].AllocatedHours, 1e-9)

	team := e.AggregateTeamWorkload(samples)
	assert.Equal(t, 2, team.SampleUserCount)
	assert.InDelta(t, (50.0+25.0)/2, team.AverageUtilizationPercent, 1e-9)
	assert.InDelta(t, 50.0, team.PeakUtilizationPercent, 1e-9)
}

func TestEngineAnalyzeProjectCalendarRange(t *testing.T) {
	e := New()
	res, err := e.AnalyzeProject(
		fixtureTasks(), fixtureUsers(), model.ProjectInProgress,
		day(2025, time.June, 10), day(2025, time.June, 14), day(2025, time.June, 11),
	)
	require.NoError(t, err)

	require.Len(t, res.Calendar, 5)
	for i, team := range res.Calendar {
		assert.Equal(t, day(2025, time.June, 10+i), team.Date)
	}
	// June 10-11: only t1 active. June 12-13: both. June 14: only t2.
	assert.Equal(t, 1, res.Calendar[0].SampleUserCount)
	assert.Equal(t, 2, res.Calendar[2].SampleUserCount)
	assert.Equal(t, 1, res.Calendar[4].SampleUserCount)
}

func TestEngineAnalyzeProjectReversedRange(t *testing.T) {
	e := New()
	res, err := e.AnalyzeProject(
		fixtureTasks(), fixtureUsers(), model.ProjectInProgress,
		day(2025, time.June, 14), day(2025, time.June, 10), day(2025, time.June, 11),
	)
	require.NoError(t, err)
	assert.Empty(t, res.Calendar)
}

func TestEngineConfigOverrides(t *testing.T) {
	e := NewWithConfig(Config{DefaultDailyCapacity: 4, DefaultTaskEstimate: 8})
	tasks := []model.Task{{
		ID: "t1", Status: model.TaskTodo,
		StartDate: dayPtr(2025, time.June, 10), EndDate: dayPtr(2025, time.June, 11),
		AssignedTo: "u1",
	}}
	samples, err := e.AllocateWorkload(tasks, []model.User{{ID: "u1"}}, day(2025, time.June, 10))
	require.NoError(t, err)

	// 8h default estimate over 2 days against a 4h default capacity.
	assert.InDelta(t, 4.0, samples["u1"].AllocatedHours, 1e-9)
	assert.InDelta(t, 100.0, samples["u1"].UtilizationPercent, 1e-9)
}
