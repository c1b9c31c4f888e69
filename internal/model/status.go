package model

// TaskStatus is the lifecycle state of a single task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskReview     TaskStatus = "REVIEW"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// Open reports whether the task still occupies schedule. Completed and
// cancelled tasks are closed; everything else, including blocked and
// in-review tasks, is open.
func (s TaskStatus) Open() bool {
	return s != TaskCompleted && s != TaskCancelled
}

// Started reports whether work on the task has begun.
func (s TaskStatus) Started() bool {
	return s == TaskInProgress || s == TaskReview || s == TaskCompleted
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "PLANNING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectOnHold     ProjectStatus = "ON_HOLD"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectCancelled  ProjectStatus = "CANCELLED"
)

// Done reports whether the project has been closed out.
func (s ProjectStatus) Done() bool {
	return s == ProjectCompleted
}
