package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tempo/internal/clock"
	"tempo/internal/parse"
	"tempo/internal/runner"
	"tempo/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2026-03-04 12:00 UTC
var noon = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

type fakeStorage struct {
	mu      sync.Mutex
	tasks   []*storage.Task
	runs    []*storage.TaskRun
	listErr error
}

func (f *fakeStorage) ListTasks(context.Context) ([]*storage.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeStorage) RecordRun(_ context.Context, run *storage.TaskRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStorage) recorded() []*storage.TaskRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*storage.TaskRun(nil), f.runs...)
}

type fakeRunner struct {
	mu     sync.Mutex
	name   string
	err    error
	called int
}

func (f *fakeRunner) Name() string { return f.name }

func (f *fakeRunner) Run(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	if f.err != nil {
		return "", f.err
	}
	return "done", nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called
}

type fakeNotifier struct {
	fired  []string
	failed []string
}

func (f *fakeNotifier) TaskFired(_ context.Context, taskName, _ string) {
	f.fired = append(f.fired, taskName)
}

func (f *fakeNotifier) TaskFailed(_ context.Context, taskName, _ string) {
	f.failed = append(f.failed, taskName)
}

func newTestScheduler(t *testing.T, store *fakeStorage, run runner.Runner, notifier Notifier, clk clock.Clock) *Scheduler {
	t.Helper()
	runners := runner.NewRegistry()
	if run != nil {
		require.NoError(t, runners.Register(run))
	}
	return NewScheduler(Options{
		Storage:  store,
		Runners:  runners,
		Parser:   parse.NewRegistryAt(time.UTC, clk),
		Notifier: notifier,
		Clock:    clk,
		Interval: 10 * time.Second,
		MaxDefer: time.Hour,
		Logger:   slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})),
	})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func task(id, name, expression string) *storage.Task {
	return &storage.Task{
		ID:         id,
		Name:       name,
		Expression: expression,
		Runner:     "test",
		Action:     "noop",
		Enabled:    true,
	}
}

func TestTickFiresWhenConditionTrue(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{tasks: []*storage.Task{task("t1", "backup", "daily between 08:00 and 17:00")}}
	run := &fakeRunner{name: "test"}
	notifier := &fakeNotifier{}

	s := newTestScheduler(t, store, run, notifier, clk)
	s.tick()

	assert.Equal(t, 1, run.calls())
	runs := store.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, storage.RunStatusFired, runs[0].Status)
	assert.Equal(t, "t1", runs[0].TaskID)
	assert.Equal(t, []string{"backup"}, notifier.fired)
}

func TestTickSkipsDisabledTasks(t *testing.T) {
	clk := clock.NewMock(noon)
	disabled := task("t1", "backup", "true")
	disabled.Enabled = false
	store := &fakeStorage{tasks: []*storage.Task{disabled}}
	run := &fakeRunner{name: "test"}

	s := newTestScheduler(t, store, run, nil, clk)
	s.tick()

	assert.Zero(t, run.calls())
	assert.Empty(t, store.recorded())
}

func TestFalseConditionDefersNextCheck(t *testing.T) {
	clk := clock.NewMock(noon)
	// Window opens in two hours; the estimate should push the next check
	// well past the poll interval
	store := &fakeStorage{tasks: []*storage.Task{task("t1", "backup", "daily between 14:00 and 16:00")}}
	run := &fakeRunner{name: "test"}

	s := newTestScheduler(t, store, run, nil, clk)
	s.tick()

	assert.Zero(t, run.calls())
	assert.Empty(t, store.recorded())

	// Estimate (2h) exceeds maxDefer (1h), so the deferral is capped
	deadline, ok := s.nextCheck["t1"]
	require.True(t, ok)
	assert.Equal(t, noon.Add(time.Hour), deadline)

	// Ticks before the deadline do not re-evaluate
	clk.Advance(10 * time.Second)
	s.tick()
	assert.Zero(t, run.calls())

	// Past the deadline the task is checked again; the window is now open
	clk.Set(noon.Add(2*time.Hour + time.Minute))
	s.tick()
	assert.Equal(t, 1, run.calls())
}

func TestParseErrorRecordsErrorStatus(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{tasks: []*storage.Task{task("t1", "backup", "every full moon")}}
	run := &fakeRunner{name: "test"}

	s := newTestScheduler(t, store, run, nil, clk)
	s.tick()

	assert.Zero(t, run.calls())
	runs := store.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, storage.RunStatusError, runs[0].Status)

	// Unparseable expressions back off by the maximum deferral
	assert.Equal(t, noon.Add(time.Hour), s.nextCheck["t1"])
}

func TestRunnerErrorRecordsFailedStatus(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{tasks: []*storage.Task{task("t1", "backup", "true")}}
	run := &fakeRunner{name: "test", err: errors.New("exit status 1")}
	notifier := &fakeNotifier{}

	s := newTestScheduler(t, store, run, notifier, clk)
	s.tick()

	runs := store.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, storage.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "exit status 1", runs[0].Detail)
	assert.Equal(t, []string{"backup"}, notifier.failed)
	assert.Empty(t, notifier.fired)
}

func TestMissingRunnerRecordsFailedStatus(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{tasks: []*storage.Task{task("t1", "backup", "true")}}

	s := newTestScheduler(t, store, nil, nil, clk)
	s.tick()

	runs := store.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, storage.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Detail, "runner not found")
}

func TestOneFailingTaskDoesNotBlockOthers(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{tasks: []*storage.Task{
		task("t1", "broken", "every full moon"),
		task("t2", "healthy", "true"),
	}}
	run := &fakeRunner{name: "test"}

	s := newTestScheduler(t, store, run, nil, clk)
	s.tick()

	assert.Equal(t, 1, run.calls())
	runs := store.recorded()
	require.Len(t, runs, 2)
	assert.Equal(t, storage.RunStatusError, runs[0].Status)
	assert.Equal(t, storage.RunStatusFired, runs[1].Status)
}

func TestConditionCacheInvalidatedOnExpressionChange(t *testing.T) {
	clk := clock.NewMock(noon)
	tsk := task("t1", "backup", "true")
	store := &fakeStorage{tasks: []*storage.Task{tsk}}
	run := &fakeRunner{name: "test"}

	s := newTestScheduler(t, store, run, nil, clk)
	s.tick()
	assert.Equal(t, 1, run.calls())

	// Editing the expression must take effect without a restart
	tsk.Expression = "false"
	clk.Advance(time.Minute)
	s.tick()
	assert.Equal(t, 1, run.calls())
}

func TestStartStop(t *testing.T) {
	clk := clock.NewMock(noon)
	store := &fakeStorage{}

	s := newTestScheduler(t, store, nil, nil, clk)
	done := make(chan struct{})
	go func() {
		s.Start()
		close(done)
	}()

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
