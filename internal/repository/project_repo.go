package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planboard/internal/model"
)

// ErrProjectNotFound is returned when a project id matches no row.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository reads project status; the analyzer needs it to tell a
// closed timeline from a live one.
type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Status returns the project's lifecycle status.
func (r *ProjectRepository) Status(ctx context.Context, projectID string) (model.ProjectStatus, error) {
	var status model.ProjectStatus
	err := r.db.QueryRow(ctx,
		`SELECT status FROM projects WHERE id = $1`,
		projectID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("project %s: %w", projectID, ErrProjectNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to query project status",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return "", err
	}
	return status, nil
}
