package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tempo/internal/storage"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements storage.Storage using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema
func (s *SQLiteStorage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			expression TEXT NOT NULL,
			runner TEXT NOT NULL,
			action TEXT NOT NULL DEFAULT '',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS task_runs (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			fired_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_task_runs_task ON task_runs(task_id, fired_at);
		CREATE INDEX IF NOT EXISTS idx_tasks_enabled ON tasks(enabled);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateTask creates a new task. A missing ID is generated.
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *storage.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, expression, runner, action, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Expression, task.Runner, task.Action,
		boolToInt(task.Enabled), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", storage.ErrTaskExists, task.Name)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID
func (s *SQLiteStorage) GetTask(ctx context.Context, id string) (*storage.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, expression, runner, action, enabled, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// GetTaskByName retrieves a task by its unique name
func (s *SQLiteStorage) GetTaskByName(ctx context.Context, name string) (*storage.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, expression, runner, action, enabled, created_at, updated_at
		FROM tasks WHERE name = ?`, name)
	return scanTask(row)
}

// ListTasks returns all tasks ordered by name
func (s *SQLiteStorage) ListTasks(ctx context.Context) ([]*storage.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, expression, runner, action, enabled, created_at, updated_at
		FROM tasks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*storage.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask updates an existing task
func (s *SQLiteStorage) UpdateTask(ctx context.Context, task *storage.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET name = ?, expression = ?, runner = ?, action = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		task.Name, task.Expression, task.Runner, task.Action,
		boolToInt(task.Enabled), task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task and its run history
func (s *SQLiteStorage) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// RecordRun appends one run record. A missing ID is generated.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *storage.TaskRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FiredAt.IsZero() {
		run.FiredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs (id, task_id, fired_at, status, detail)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.TaskID, run.FiredAt, string(run.Status), run.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs for a task, newest first
func (s *SQLiteStorage) ListRuns(ctx context.Context, taskID string, limit int) ([]*storage.TaskRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, fired_at, status, detail
		FROM task_runs WHERE task_id = ?
		ORDER BY fired_at DESC LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*storage.TaskRun
	for rows.Next() {
		run := &storage.TaskRun{}
		var status string
		if err := rows.Scan(&run.ID, &run.TaskID, &run.FiredAt, &status, &run.Detail); err != nil {
			return nil, err
		}
		run.Status = storage.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*storage.Task, error) {
	task := &storage.Task{}
	var enabled int
	err := row.Scan(&task.ID, &task.Name, &task.Expression, &task.Runner,
		&task.Action, &enabled, &task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	task.Enabled = enabled != 0
	return task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
