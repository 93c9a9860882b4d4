package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"tempo/internal/clock"
	"tempo/internal/condition"
	"tempo/internal/parse"

	"github.com/gin-gonic/gin"
)

// ConditionsHandler evaluates ad-hoc condition expressions
type ConditionsHandler struct {
	parser *parse.Registry
	clk    clock.Clock
	logger *slog.Logger
}

// NewConditionsHandler creates a new conditions handler
func NewConditionsHandler(parser *parse.Registry, clk clock.Clock, logger *slog.Logger) *ConditionsHandler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &ConditionsHandler{
		parser: parser,
		clk:    clk,
		logger: logger,
	}
}

type evaluateRequest struct {
	Expression string `json:"expression"`
}

// Evaluate parses and evaluates an expression once
// POST /conditions/evaluate
func (h *ConditionsHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	cond, err := h.parser.Parse(req.Expression)
	if err != nil {
		if errors.Is(err, parse.ErrParse) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "INVALID_EXPRESSION",
			})
			return
		}
		h.logger.Error("Failed to parse expression",
			"component", "api",
			"expression", req.Expression,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to parse expression",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	value, err := cond.Evaluate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"code":  "EVALUATION_FAILED",
		})
		return
	}

	now := h.clk.Now()
	c.JSON(http.StatusOK, gin.H{
		"expression":          req.Expression,
		"value":               value,
		"next_change_seconds": condition.EstimateNextChange(cond, now).Seconds(),
	})
}
