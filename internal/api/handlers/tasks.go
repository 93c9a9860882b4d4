package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tempo/internal/parse"
	"tempo/internal/storage"

	"github.com/gin-gonic/gin"
)

// TasksHandler handles task-related requests
type TasksHandler struct {
	storage storage.Storage
	parser  *parse.Registry
	logger  *slog.Logger
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(store storage.Storage, parser *parse.Registry, logger *slog.Logger) *TasksHandler {
	return &TasksHandler{
		storage: store,
		parser:  parser,
		logger:  logger,
	}
}

type taskRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Runner     string `json:"runner"`
	Action     string `json:"action"`
	Enabled    *bool  `json:"enabled"`
}

// ListTasks returns all tasks
// GET /tasks
func (h *TasksHandler) ListTasks(c *gin.Context) {
	tasks, err := h.storage.ListTasks(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tasks",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve tasks",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, formatTask(task))
	}
	c.JSON(http.StatusOK, response)
}

// GetTask returns a single task by ID
// GET /tasks/:id
func (h *TasksHandler) GetTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.storage.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
				"code":  "TASK_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to get task",
			"component", "api",
			"task_id", taskID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, formatTask(task))
}

// CreateTask creates a new task
// POST /tasks
func (h *TasksHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	// Reject expressions the parser cannot handle up front
	if _, err := h.parser.Parse(req.Expression); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "INVALID_EXPRESSION",
		})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	task := &storage.Task{
		Name:       req.Name,
		Expression: req.Expression,
		Runner:     req.Runner,
		Action:     req.Action,
		Enabled:    enabled,
	}

	if err := h.storage.CreateTask(c.Request.Context(), task); err != nil {
		if errors.Is(err, storage.ErrTaskExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Task with this name already exists",
				"code":  "TASK_EXISTS",
			})
			return
		}
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "INVALID_TASK",
			})
			return
		}
		h.logger.Error("Failed to create task",
			"component", "api",
			"task", req.Name,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusCreated, formatTask(task))
}

// UpdateTask updates fields of an existing task
// PATCH /tasks/:id
func (h *TasksHandler) UpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.storage.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
				"code":  "TASK_NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	if req.Name != "" {
		task.Name = req.Name
	}
	if req.Expression != "" {
		if _, err := h.parser.Parse(req.Expression); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "INVALID_EXPRESSION",
			})
			return
		}
		task.Expression = req.Expression
	}
	if req.Runner != "" {
		task.Runner = req.Runner
	}
	if req.Action != "" {
		task.Action = req.Action
	}
	if req.Enabled != nil {
		task.Enabled = *req.Enabled
	}

	if err := h.storage.UpdateTask(c.Request.Context(), task); err != nil {
		h.logger.Error("Failed to update task",
			"component", "api",
			"task_id", taskID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, formatTask(task))
}

// DeleteTask removes a task and its run history
// DELETE /tasks/:id
func (h *TasksHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.storage.DeleteTask(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
				"code":  "TASK_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to delete task",
			"component", "api",
			"task_id", taskID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRuns returns the recent run history of a task
// GET /tasks/:id/runs
func (h *TasksHandler) ListRuns(c *gin.Context) {
	taskID := c.Param("id")

	if _, err := h.storage.GetTask(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
				"code":  "TASK_NOT_FOUND",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve task",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	runs, err := h.storage.ListRuns(c.Request.Context(), taskID, 50)
	if err != nil {
		h.logger.Error("Failed to list runs",
			"component", "api",
			"task_id", taskID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve runs",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		response = append(response, gin.H{
			"id":       run.ID,
			"task_id":  run.TaskID,
			"fired_at": run.FiredAt.Format(time.RFC3339),
			"status":   string(run.Status),
			"detail":   run.Detail,
		})
	}
	c.JSON(http.StatusOK, response)
}

func formatTask(task *storage.Task) gin.H {
	return gin.H{
		"id":         task.ID,
		"name":       task.Name,
		"expression": task.Expression,
		"runner":     task.Runner,
		"action":     task.Action,
		"enabled":    task.Enabled,
		"created_at": task.CreatedAt.Format(time.RFC3339),
		"updated_at": task.UpdatedAt.Format(time.RFC3339),
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, storage.ErrInvalidName) ||
		errors.Is(err, storage.ErrInvalidExpression) ||
		errors.Is(err, storage.ErrInvalidRunner)
}
