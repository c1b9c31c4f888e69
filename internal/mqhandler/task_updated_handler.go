package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	contracts "planboard/contracts/mq"
)

// CacheInvalidator is the slice of AnalysisService this handler needs.
type CacheInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string) error
}

// TaskUpdatedHandler drops cached analyses when the tracking application
// reports a task change, so the next read recomputes from fresh data.
type TaskUpdatedHandler struct {
	svc    CacheInvalidator
	logger *zap.Logger
}

func NewTaskUpdatedHandler(svc CacheInvalidator, logger *zap.Logger) *TaskUpdatedHandler {
	return &TaskUpdatedHandler{svc: svc, logger: logger}
}

func (h *TaskUpdatedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload contracts.TaskUpdatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.Error("Invalid task.updated payload", zap.Error(err))
		// A malformed event will never parse on redelivery; drop it.
		return nil
	}
	if payload.ProjectID == "" {
		h.logger.Warn("task.updated without project_id",
			zap.String("task_id", payload.TaskID),
		)
		return nil
	}

	h.logger.Debug("Handling task.updated",
		zap.String("task_id", payload.TaskID),
		zap.String("project_id", payload.ProjectID),
	)
	if err := h.svc.InvalidateProject(ctx, payload.ProjectID); err != nil {
		return fmt.Errorf("invalidate project %s: %w", payload.ProjectID, err)
	}
	return nil
}
