package storage

import (
	"context"
	"errors"
	"time"
)

// RunStatus represents the outcome of one scheduler decision for a task
type RunStatus string

const (
	// RunStatusFired - condition was true and the runner succeeded
	RunStatusFired RunStatus = "fired"
	// RunStatusFailed - condition was true but the runner returned an error
	RunStatusFailed RunStatus = "failed"
	// RunStatusError - the condition itself could not be evaluated
	RunStatusError RunStatus = "error"
)

// Task is a scheduled unit of work guarded by a condition expression
type Task struct {
	ID         string
	Name       string
	Expression string // condition expression, parsed at load time
	Runner     string // registered runner name
	Action     string // runner-specific payload (command line, URL, message)
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskRun records one firing (or failure) of a task
type TaskRun struct {
	ID      string
	TaskID  string
	FiredAt time.Time
	Status  RunStatus
	Detail  string
}

// Validation errors
var (
	ErrInvalidName       = errors.New("task name cannot be empty")
	ErrInvalidExpression = errors.New("task condition expression cannot be empty")
	ErrInvalidRunner     = errors.New("task runner cannot be empty")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskExists        = errors.New("task already exists")
)

// Validate validates a Task
func (t *Task) Validate() error {
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Expression == "" {
		return ErrInvalidExpression
	}
	if t.Runner == "" {
		return ErrInvalidRunner
	}
	return nil
}

// Storage defines the interface for task persistence. Only task
// definitions and run history are stored; condition state never is.
type Storage interface {
	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	GetTaskByName(ctx context.Context, name string) (*Task, error)
	ListTasks(ctx context.Context) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id string) error

	// Runs
	RecordRun(ctx context.Context, run *TaskRun) error
	ListRuns(ctx context.Context, taskID string, limit int) ([]*TaskRun, error)

	// Lifecycle
	Close() error
}
