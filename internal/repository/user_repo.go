package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planboard/internal/model"
	"planboard/pkg/metrics"
)

// UserRepository loads the read-only user capacity snapshot.
type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// SnapshotByProject returns every user assigned to at least one task of
// the project, through either assignment representation.
func (r *UserRepository) SnapshotByProject(ctx context.Context, projectID string) ([]model.User, error) {
	start := time.Now()
	r.logger.Debug("Loading user snapshot", zap.String("project_id", projectID))

	query := `
        SELECT DISTINCT u.id, u.name, u.max_hours_per_day
        FROM users u
        WHERE u.id IN (
            SELECT assigned_to FROM tasks
            WHERE project_id = $1 AND assigned_to IS NOT NULL
            UNION
            SELECT ta.user_id FROM task_assignments ta
            JOIN tasks t ON t.id = ta.task_id
            WHERE t.project_id = $1
        )
        ORDER BY u.id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query users",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.MaxHoursPerDay); err != nil {
			r.logger.Error("Failed to scan user row",
				zap.Error(err),
				zap.String("project_id", projectID),
			)
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.RecordSnapshotLoad("users", time.Since(start))
	r.logger.Info("User snapshot loaded",
		zap.String("project_id", projectID),
		zap.Int("count", len(users)),
	)
	return users, nil
}
