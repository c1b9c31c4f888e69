package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planboard/internal/model"
	"planboard/pkg/metrics"
)

// TaskRepository loads read-only task snapshots for the analysis engine.
// It never writes; task mutation belongs to the tracking application.
type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// SnapshotByProject returns every task of the project with both assignment
// representations populated: the legacy assigned_to column and the
// task_assignments edge set.
func (r *TaskRepository) SnapshotByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	start := time.Now()
	r.logger.Debug("Loading task snapshot", zap.String("project_id", projectID))

	query := `
        SELECT id, project_id, title, status, start_date, end_date,
               completed_at, estimated_hours, max_daily_hours, assigned_to
        FROM tasks
        WHERE project_id = $1
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	index := map[string]int{}
	for rows.Next() {
		var t model.Task
		var assignedTo *string
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Status,
			&t.StartDate,
			&t.EndDate,
			&t.CompletedAt,
			&t.EstimatedHours,
			&t.MaxDailyHours,
			&assignedTo,
		); err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.String("project_id", projectID),
			)
			return nil, err
		}
		if assignedTo != nil {
			t.AssignedTo = *assignedTo
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAssignments(ctx, projectID, tasks, index); err != nil {
		return nil, err
	}

	metrics.RecordSnapshotLoad("tasks", time.Since(start))
	r.logger.Info("Task snapshot loaded",
		zap.String("project_id", projectID),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

func (r *TaskRepository) attachAssignments(ctx context.Context, projectID string, tasks []model.Task, index map[string]int) error {
	query := `
        SELECT ta.task_id, ta.user_id
        FROM task_assignments ta
        JOIN tasks t ON t.id = ta.task_id
        WHERE t.project_id = $1
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query task assignments",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, userID string
		if err := rows.Scan(&taskID, &userID); err != nil {
			r.logger.Error("Failed to scan assignment row",
				zap.Error(err),
				zap.String("project_id", projectID),
			)
			return err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].AssigneeIDs = append(tasks[i].AssigneeIDs, userID)
		}
	}
	return rows.Err()
}
