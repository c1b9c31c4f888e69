package logger

import (
	"go.uber.org/zap"
)

// NewLogger builds the production zap logger every component receives by
// constructor injection.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// WithProject returns a logger scoped to one project's analysis run.
func WithProject(log *zap.Logger, projectID string) *zap.Logger {
	if projectID == "" {
		return log
	}
	return log.With(zap.String("project_id", projectID))
}
