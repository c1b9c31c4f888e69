package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planboard/internal/repository"
	"planboard/internal/service"
)

// AnalysisHandler exposes the engine's results over HTTP for the
// presentation layer.
type AnalysisHandler struct {
	svc    *service.AnalysisService
	logger *zap.Logger
}

func NewAnalysisHandler(svc *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, logger: logger}
}

// Timeline handles GET /projects/:id/timeline.
func (h *AnalysisHandler) Timeline(c *gin.Context) {
	projectID := c.Param("id")
	h.logger.Info("Timeline request received",
		zap.String("project_id", projectID),
		zap.String("client_ip", c.ClientIP()),
	)

	res, err := h.svc.Timeline(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, projectID, "timeline analysis failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": res})
}

// Workload handles GET /projects/:id/workload?date=YYYY-MM-DD.
func (h *AnalysisHandler) Workload(c *gin.Context) {
	projectID := c.Param("id")
	date, ok := h.parseDate(c, c.Query("date"), "date")
	if !ok {
		return
	}

	samples, team, err := h.svc.Workload(c.Request.Context(), projectID, date)
	if err != nil {
		h.respondError(c, projectID, "workload allocation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":    date.Format("2006-01-02"),
		"users":   samples,
		"team":    team,
		"project": projectID,
	})
}

// Calendar handles GET /projects/:id/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *AnalysisHandler) Calendar(c *gin.Context) {
	projectID := c.Param("id")
	from, ok := h.parseDate(c, c.Query("from"), "from")
	if !ok {
		return
	}
	to, ok := h.parseDate(c, c.Query("to"), "to")
	if !ok {
		return
	}

	res, err := h.svc.Calendar(c.Request.Context(), projectID, from, to)
	if err != nil {
		h.respondError(c, projectID, "calendar analysis failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timeline": res.Timeline,
		"calendar": res.Calendar,
	})
}

func (h *AnalysisHandler) parseDate(c *gin.Context, raw, name string) (time.Time, bool) {
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " required (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		h.logger.Warn("Invalid date parameter",
			zap.String("param", name),
			zap.String("value", raw),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

func (h *AnalysisHandler) respondError(c *gin.Context, projectID, msg string, err error) {
	if errors.Is(err, repository.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	h.logger.Error(msg,
		zap.String("project_id", projectID),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
