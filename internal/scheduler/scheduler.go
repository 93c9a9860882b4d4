package scheduler

import (
	"context"
	"log/slog"
	"time"

	"tempo/internal/clock"
	"tempo/internal/condition"
	"tempo/internal/parse"
	"tempo/internal/runner"
	"tempo/internal/storage"
)

// Storage interface for scheduler operations
type Storage interface {
	ListTasks(ctx context.Context) ([]*storage.Task, error)
	RecordRun(ctx context.Context, run *storage.TaskRun) error
}

// RunnerRegistry interface for resolving task runners
type RunnerRegistry interface {
	Get(name string) (runner.Runner, error)
}

// Notifier receives task outcome notifications. A nil notifier disables
// notifications.
type Notifier interface {
	TaskFired(ctx context.Context, taskName, detail string)
	TaskFailed(ctx context.Context, taskName, reason string)
}

// compiled caches a parsed condition keyed by the expression it came from
type compiled struct {
	expression string
	cond       condition.Condition
}

// Scheduler polls every enabled task's condition and fires its runner
// when the condition is true. Tasks whose condition reports a next-change
// estimate are not re-checked before the estimate elapses.
type Scheduler struct {
	storage   Storage
	runners   RunnerRegistry
	parser    *parse.Registry
	notifier  Notifier
	clk       clock.Clock
	interval  time.Duration
	maxDefer  time.Duration
	stopChan  chan struct{}
	logger    *slog.Logger
	compiled  map[string]compiled
	nextCheck map[string]time.Time
}

// Options configures a Scheduler
type Options struct {
	Storage  Storage
	Runners  RunnerRegistry
	Parser   *parse.Registry
	Notifier Notifier       // optional
	Clock    clock.Clock    // optional, defaults to the real clock
	Interval time.Duration  // poll interval
	MaxDefer time.Duration  // upper bound for estimate-based deferrals
	Logger   *slog.Logger   // optional
}

// NewScheduler creates a new scheduler
func NewScheduler(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.MaxDefer <= 0 {
		opts.MaxDefer = time.Hour
	}
	return &Scheduler{
		storage:   opts.Storage,
		runners:   opts.Runners,
		parser:    opts.Parser,
		notifier:  opts.Notifier,
		clk:       opts.Clock,
		interval:  opts.Interval,
		maxDefer:  opts.MaxDefer,
		stopChan:  make(chan struct{}),
		logger:    opts.Logger,
		compiled:  make(map[string]compiled),
		nextCheck: make(map[string]time.Time),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started", "interval", s.interval.String())
	ticker := s.clk.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			s.logger.Info("Scheduler stopped")
			return
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// tick performs one polling cycle
func (s *Scheduler) tick() {
	ctx := context.Background()
	now := s.clk.Now()

	tasks, err := s.storage.ListTasks(ctx)
	if err != nil {
		s.logger.Error("Failed to list tasks", "error", err)
		return
	}

	s.logger.Debug("Scheduler tick", "tasks", len(tasks))

	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		if deadline, ok := s.nextCheck[task.ID]; ok && now.Before(deadline) {
			continue
		}
		s.processTask(ctx, task, now)
	}
}

// processTask evaluates one task's condition and acts on the outcome.
// A failing task never stops the loop; outcomes are surfaced per task.
func (s *Scheduler) processTask(ctx context.Context, task *storage.Task, now time.Time) {
	cond, err := s.conditionFor(task)
	if err != nil {
		s.logger.Error("Failed to parse task condition",
			"task_id", task.ID,
			"task", task.Name,
			"expression", task.Expression,
			"error", err)
		s.recordOutcome(ctx, task, storage.RunStatusError, err.Error(), now)
		s.nextCheck[task.ID] = now.Add(s.maxDefer)
		return
	}

	ok, err := cond.Evaluate(ctx)
	if err != nil {
		s.logger.Error("Condition evaluation failed",
			"task_id", task.ID,
			"task", task.Name,
			"error", err)
		s.recordOutcome(ctx, task, storage.RunStatusError, err.Error(), now)
		if s.notifier != nil {
			s.notifier.TaskFailed(ctx, task.Name, err.Error())
		}
		s.nextCheck[task.ID] = now.Add(s.interval)
		return
	}

	if !ok {
		s.deferTask(task, cond, now)
		return
	}

	s.fire(ctx, task, now)
	s.nextCheck[task.ID] = now.Add(s.interval)
}

// deferTask schedules the next check based on the condition's estimate of
// when its truth value could change
func (s *Scheduler) deferTask(task *storage.Task, cond condition.Condition, now time.Time) {
	wait := condition.EstimateNextChange(cond, now)
	if wait < s.interval {
		wait = s.interval
	}
	if wait > s.maxDefer {
		wait = s.maxDefer
	}
	s.nextCheck[task.ID] = now.Add(wait)

	s.logger.Debug("Task deferred",
		"task_id", task.ID,
		"task", task.Name,
		"defer", wait.String())
}

// fire runs the task's action and records the outcome
func (s *Scheduler) fire(ctx context.Context, task *storage.Task, now time.Time) {
	r, err := s.runners.Get(task.Runner)
	if err != nil {
		s.logger.Error("Failed to get runner",
			"task_id", task.ID,
			"task", task.Name,
			"runner", task.Runner,
			"error", err)
		s.recordOutcome(ctx, task, storage.RunStatusFailed, err.Error(), now)
		if s.notifier != nil {
			s.notifier.TaskFailed(ctx, task.Name, err.Error())
		}
		return
	}

	detail, err := r.Run(ctx, task.Action)
	if err != nil {
		s.logger.Error("Task run failed",
			"task_id", task.ID,
			"task", task.Name,
			"error", err)
		s.recordOutcome(ctx, task, storage.RunStatusFailed, err.Error(), now)
		if s.notifier != nil {
			s.notifier.TaskFailed(ctx, task.Name, err.Error())
		}
		return
	}

	s.logger.Info("Task fired",
		"task_id", task.ID,
		"task", task.Name,
		"runner", task.Runner)
	s.recordOutcome(ctx, task, storage.RunStatusFired, detail, now)
	if s.notifier != nil {
		s.notifier.TaskFired(ctx, task.Name, detail)
	}
}

// recordOutcome appends a run record; recording failures are logged, not
// propagated
func (s *Scheduler) recordOutcome(ctx context.Context, task *storage.Task, status storage.RunStatus, detail string, now time.Time) {
	run := &storage.TaskRun{
		TaskID:  task.ID,
		FiredAt: now,
		Status:  status,
		Detail:  detail,
	}
	if err := s.storage.RecordRun(ctx, run); err != nil {
		s.logger.Error("Failed to record run",
			"task_id", task.ID,
			"error", err)
	}
}

// conditionFor parses and caches the task's condition. The cache entry is
// invalidated when the expression changes.
func (s *Scheduler) conditionFor(task *storage.Task) (condition.Condition, error) {
	if entry, ok := s.compiled[task.ID]; ok && entry.expression == task.Expression {
		return entry.cond, nil
	}
	cond, err := s.parser.Parse(task.Expression)
	if err != nil {
		return nil, err
	}
	s.compiled[task.ID] = compiled{expression: task.Expression, cond: cond}
	return cond, nil
}
