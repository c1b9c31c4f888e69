package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	contracts "planboard/contracts/mq"
	"planboard/internal/engine"
	"planboard/internal/model"
	"planboard/internal/timeline"
	"planboard/internal/timewindow"
	"planboard/internal/workload"
	"planboard/pkg/metrics"
)

// TaskSource yields the read-only task snapshot for one project.
type TaskSource interface {
	SnapshotByProject(ctx context.Context, projectID string) ([]model.Task, error)
}

// UserSource yields the read-only user capacity snapshot for one project.
type UserSource interface {
	SnapshotByProject(ctx context.Context, projectID string) ([]model.User, error)
}

// ProjectSource yields a project's lifecycle status.
type ProjectSource interface {
	Status(ctx context.Context, projectID string) (model.ProjectStatus, error)
}

// EventPublisher publishes analysis events to the message bus.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// AnalysisService glues the pure engine to the outside world: it loads
// snapshots, injects the clock, caches derived results in Redis and emits
// project.delayed events. The engine itself stays free of I/O.
type AnalysisService struct {
	tasks     TaskSource
	users     UserSource
	projects  ProjectSource
	engine    *engine.Engine
	cache     *redis.Client // nil disables caching
	publisher EventPublisher
	cacheTTL  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewAnalysisService(
	tasks TaskSource,
	users UserSource,
	projects ProjectSource,
	eng *engine.Engine,
	cache *redis.Client,
	publisher EventPublisher,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		tasks:     tasks,
		users:     users,
		projects:  projects,
		engine:    eng,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the wall clock. Tests pin it; production keeps
// time.Now. The engine never sees a clock, only the date this returns.
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	s.now = now
	return s
}

// Timeline computes (or serves from cache) the project's timeline
// analysis as of today.
func (s *AnalysisService) Timeline(ctx context.Context, projectID string) (timeline.Analysis, error) {
	today := timewindow.Normalize(s.now())
	key, err := s.cacheKey(ctx, projectID, "timeline", today)
	if err == nil && key != "" {
		var cached timeline.Analysis
		if s.cacheGet(ctx, key, &cached) {
			return cached, nil
		}
	}

	tasks, status, err := s.loadProject(ctx, projectID)
	if err != nil {
		return timeline.Analysis{}, err
	}

	start := time.Now()
	res, err := s.engine.AnalyzeTimeline(tasks, status, today)
	if err != nil {
		return timeline.Analysis{}, fmt.Errorf("analyze timeline: %w", err)
	}
	metrics.RecordAnalysisDuration("timeline", time.Since(start))

	s.cacheSet(ctx, key, res)
	s.publishIfDelayed(projectID, res, today)
	return res, nil
}

// Workload computes every assignee's allocation for the project on one
// date, plus the team aggregate for calendar display.
func (s *AnalysisService) Workload(ctx context.Context, projectID string, date time.Time) (map[string]workload.Sample, workload.TeamSample, error) {
	tasks, users, err := s.loadWorkloadInputs(ctx, projectID)
	if err != nil {
		return nil, workload.TeamSample{}, err
	}

	start := time.Now()
	samples, err := s.engine.AllocateWorkload(tasks, users, timewindow.Normalize(date))
	if err != nil {
		return nil, workload.TeamSample{}, fmt.Errorf("allocate workload: %w", err)
	}
	metrics.RecordAnalysisDuration("workload", time.Since(start))

	return samples, s.engine.AggregateTeamWorkload(samples), nil
}

// Calendar runs the composed analysis over an inclusive date range.
func (s *AnalysisService) Calendar(ctx context.Context, projectID string, from, to time.Time) (engine.ProjectAnalysis, error) {
	tasks, status, err := s.loadProject(ctx, projectID)
	if err != nil {
		return engine.ProjectAnalysis{}, err
	}
	users, err := s.users.SnapshotByProject(ctx, projectID)
	if err != nil {
		return engine.ProjectAnalysis{}, fmt.Errorf("load users: %w", err)
	}

	start := time.Now()
	res, err := s.engine.AnalyzeProject(tasks, users, status, from, to, timewindow.Normalize(s.now()))
	if err != nil {
		return engine.ProjectAnalysis{}, err
	}
	metrics.RecordAnalysisDuration("calendar", time.Since(start))
	return res, nil
}

// InvalidateProject bumps the project's cache version so every cached
// analysis for it becomes unreachable. Called when task data changes.
func (s *AnalysisService) InvalidateProject(ctx context.Context, projectID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Incr(ctx, versionKey(projectID)).Err(); err != nil {
		s.logger.Warn("Failed to bump cache version",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("Analysis cache invalidated", zap.String("project_id", projectID))
	return nil
}

func (s *AnalysisService) loadProject(ctx context.Context, projectID string) ([]model.Task, model.ProjectStatus, error) {
	status, err := s.projects.Status(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("load project: %w", err)
	}
	tasks, err := s.tasks.SnapshotByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("load tasks: %w", err)
	}
	return tasks, status, nil
}

func (s *AnalysisService) loadWorkloadInputs(ctx context.Context, projectID string) ([]model.Task, []model.User, error) {
	tasks, err := s.tasks.SnapshotByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	users, err := s.users.SnapshotByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load users: %w", err)
	}
	return tasks, users, nil
}

// cacheKey folds the project's current cache version into the key, so
// invalidation is a version bump instead of a key scan.
func (s *AnalysisService) cacheKey(ctx context.Context, projectID, kind string, day time.Time) (string, error) {
	if s.cache == nil {
		return "", nil
	}
	ver, err := s.cache.Get(ctx, versionKey(projectID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		metrics.IncrementCacheLookup("error")
		return "", err
	}
	return fmt.Sprintf("analysis:%s:v%d:%s:%s", projectID, ver, kind, day.Format("2006-01-02")), nil
}

func (s *AnalysisService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil || key == "" {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncrementCacheLookup("miss")
		return false
	}
	if err != nil {
		// Cache trouble never blocks an analysis; recompute instead.
		metrics.IncrementCacheLookup("error")
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		metrics.IncrementCacheLookup("error")
		s.logger.Warn("Cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	metrics.IncrementCacheLookup("hit")
	return true
}

func (s *AnalysisService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AnalysisService) publishIfDelayed(projectID string, res timeline.Analysis, today time.Time) {
	if s.publisher == nil || res.DelayDays == 0 {
		return
	}
	metrics.IncrementDelayedProject(string(res.Breakdown.Dominant))
	payload := contracts.ProjectDelayedPayload{
		ProjectID:      projectID,
		DelayDays:      res.DelayDays,
		DominantFactor: string(res.Breakdown.Dominant),
		AsOf:           today.Format("2006-01-02"),
	}
	if err := s.publisher.Publish("project.delayed", payload); err != nil {
		s.logger.Error("Failed to publish project.delayed",
			zap.String("project_id", projectID),
			zap.Int("delay_days", res.DelayDays),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Published project.delayed",
		zap.String("project_id", projectID),
		zap.Int("delay_days", res.DelayDays),
		zap.String("dominant_factor", string(res.Breakdown.Dominant)),
	)
}

func versionKey(projectID string) string {
	return fmt.Sprintf("analysis:%s:version", projectID)
}
