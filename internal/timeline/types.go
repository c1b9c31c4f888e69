package timeline

import "time"

// Status classifies where a project timeline stands.
type Status string

const (
	StatusEarly     Status = "EARLY"
	StatusOnTime    Status = "ON_TIME"
	StatusDelayed   Status = "DELAYED"
	StatusCompleted Status = "COMPLETED"
)

// Factor names which delay estimate produced the reported delay. The four
// factors are alternative explanations of the same lateness, so the
// analyzer reports the largest one, never their sum.
type Factor string

const (
	FactorNone     Factor = "none"
	FactorTask     Factor = "task"
	FactorSchedule Factor = "schedule"
	FactorProgress Factor = "progress"
	FactorOverdue  Factor = "overdue"
)

// DelayBreakdown carries the four component delays in days plus the
// dominant one. Dominant is FactorNone when every component is zero.
type DelayBreakdown struct {
	TaskBasedDays     int    `json:"task_based_days"`
	ScheduleBasedDays int    `json:"schedule_based_days"`
	ProgressBasedDays int    `json:"progress_based_days"`
	OverdueTaskDays   int    `json:"overdue_task_days"`
	Dominant          Factor `json:"dominant"`
}

// OverdueTask is a diagnostic record for an open task whose end date has
// already passed.
type OverdueTask struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	DaysOverdue int    `json:"days_overdue"`
}

// Analysis is the immutable result of one timeline analysis. Nil dates
// mean the input carried no signal for them.
type Analysis struct {
	PlannedStartDate *time.Time `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time `json:"planned_end_date,omitempty"`
	ActualStartDate  *time.Time `json:"actual_start_date,omitempty"`
	ActualEndDate    *time.Time `json:"actual_end_date,omitempty"`

	CompletionPercentage float64        `json:"completion_percentage"`
	DelayDays            int            `json:"delay_days"`
	Breakdown            DelayBreakdown `json:"delay_breakdown"`
	OverdueTasks         []OverdueTask  `json:"overdue_tasks,omitempty"`
	CriticalTasks        []string       `json:"critical_tasks,omitempty"`
	Status               Status         `json:"status"`
}
