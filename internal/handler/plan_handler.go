package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planboard/internal/depgraph"
)

// PlanHandler backs the planning sandbox: it validates a proposed set of
// dependency edges without touching stored data.
type PlanHandler struct {
	logger *zap.Logger
}

func NewPlanHandler(logger *zap.Logger) *PlanHandler {
	return &PlanHandler{logger: logger}
}

type planEdge struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type planValidateRequest struct {
	Edges []planEdge `json:"edges"`
}

// Validate handles POST /plan/validate. Each request builds its own
// graph; the sandbox is stateless on the server side.
func (h *PlanHandler) Validate(c *gin.Context) {
	var req planValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	g := depgraph.New()
	for _, e := range req.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			if errors.Is(err, depgraph.ErrCycle) {
				c.JSON(http.StatusOK, gin.H{
					"valid": false,
					"cycle": gin.H{"from": e.From, "to": e.To},
				})
				return
			}
			h.logger.Error("Plan validation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "plan validation failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "edge_count": len(req.Edges)})
}
