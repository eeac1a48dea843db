// Package tasks runs background jobs and hands their results back to a single coordinator.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultDrainInterval is how often Run drains the completion queue.
	DefaultDrainInterval = 100 * time.Millisecond

	// NotificationTitleTaskError titles failures surfaced to the presenter.
	NotificationTitleTaskError = "Background Task Error"

	errorJobPanicFormat     = "job %s panicked: %v"
	taskFailedMessageFormat = "%s failed: %v"
	callbackPanicFormat     = "completion of %s panicked: %v"
	coordinatorActionLabel  = "coordinator action"
)

// ErrShutdown is returned for work submitted after Shutdown.
var ErrShutdown = errors.New("task orchestrator is shut down")

type completionKind int

const (
	completionResult completionKind = iota
	completionDecrement
	completionAction
)

type completion struct {
	kind   completionKind
	job    Job
	result any
	err    error
	action func()
}

// Options configures an Orchestrator. Zero values select defaults.
type Options struct {
	Workers       int
	DrainInterval time.Duration
	Presenter     Presenter
	Logger        *zap.Logger
}

// Orchestrator dispatches jobs onto a bounded worker pool and queues their completions.
// Submit, Drain, Run and the completion callbacks belong to one coordinating goroutine.
type Orchestrator struct {
	logger        *zap.Logger
	presenter     Presenter
	drainInterval time.Duration
	workerSlots   *semaphore.Weighted
	workers       errgroup.Group

	// lifecycle is held shared across Submit and exclusively while Shutdown closes, so no
	// worker starts once Shutdown waits on the group.
	lifecycle  sync.RWMutex
	mutex      sync.Mutex
	queue      []completion
	inFlight   int
	closed     bool
	debouncers map[string]*time.Timer
}

// WorkerCount returns requested when positive, otherwise the number of CPUs (never zero).
func WorkerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	if cpuCount := runtime.NumCPU(); cpuCount > 0 {
		return cpuCount
	}
	return 1
}

// NewOrchestrator constructs an orchestrator ready to accept jobs.
func NewOrchestrator(options Options) *Orchestrator {
	drainInterval := options.DrainInterval
	if drainInterval <= 0 {
		drainInterval = DefaultDrainInterval
	}
	presenter := options.Presenter
	if presenter == nil {
		presenter = noopPresenter{}
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		logger:        logger,
		presenter:     presenter,
		drainInterval: drainInterval,
		workerSlots:   semaphore.NewWeighted(int64(WorkerCount(options.Workers))),
		debouncers:    make(map[string]*time.Timer),
	}
}

// Submit dispatches job. Its completion is delivered by a later Drain, followed by the
// in-flight decrement, whether the job succeeded, failed or panicked.
func (orchestrator *Orchestrator) Submit(job Job) error {
	orchestrator.lifecycle.RLock()
	defer orchestrator.lifecycle.RUnlock()

	orchestrator.mutex.Lock()
	if orchestrator.closed {
		orchestrator.mutex.Unlock()
		return ErrShutdown
	}
	orchestrator.inFlight++
	inFlight := orchestrator.inFlight
	orchestrator.mutex.Unlock()

	orchestrator.presenter.SetBusy(true, inFlight)
	orchestrator.logger.Debug("job submitted",
		zap.String("job", job.Name),
		zap.String("job_id", job.ID.String()),
		zap.Int("in_flight", inFlight))

	orchestrator.workers.Go(func() error {
		if acquireError := orchestrator.workerSlots.Acquire(context.Background(), 1); acquireError != nil {
			orchestrator.enqueue(completion{kind: completionResult, job: job, err: acquireError}, completion{kind: completionDecrement, job: job})
			return nil
		}
		result, runError := runProtected(job)
		orchestrator.workerSlots.Release(1)
		orchestrator.enqueue(
			completion{kind: completionResult, job: job, result: result, err: runError},
			completion{kind: completionDecrement, job: job},
		)
		return nil
	})
	return nil
}

// Post queues action for the coordinator's next Drain.
func (orchestrator *Orchestrator) Post(action func()) error {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()
	if orchestrator.closed {
		return ErrShutdown
	}
	orchestrator.queue = append(orchestrator.queue, completion{kind: completionAction, action: action})
	return nil
}

// Debounce schedules action to be posted after delay, replacing any action still
// pending under key.
func (orchestrator *Orchestrator) Debounce(key string, delay time.Duration, action func()) {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()
	if orchestrator.closed {
		return
	}
	if pending, exists := orchestrator.debouncers[key]; exists {
		pending.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		orchestrator.mutex.Lock()
		defer orchestrator.mutex.Unlock()
		if orchestrator.debouncers[key] != timer {
			return
		}
		delete(orchestrator.debouncers, key)
		if orchestrator.closed {
			return
		}
		orchestrator.queue = append(orchestrator.queue, completion{kind: completionAction, action: action})
	})
	orchestrator.debouncers[key] = timer
}

// CancelDebounce drops the action pending under key, if any.
func (orchestrator *Orchestrator) CancelDebounce(key string) {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()
	if pending, exists := orchestrator.debouncers[key]; exists {
		pending.Stop()
		delete(orchestrator.debouncers, key)
	}
}

// ReportProgress forwards a progress label to the presenter.
func (orchestrator *Orchestrator) ReportProgress(label string, fraction float64) {
	orchestrator.presenter.ReportProgress(label, fraction)
}

// InFlight returns the number of submitted jobs whose decrement has not been drained.
func (orchestrator *Orchestrator) InFlight() int {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()
	return orchestrator.inFlight
}

// Idle reports whether no job is in flight, nothing is queued and no debounce is pending.
func (orchestrator *Orchestrator) Idle() bool {
	orchestrator.mutex.Lock()
	defer orchestrator.mutex.Unlock()
	return orchestrator.inFlight == 0 && len(orchestrator.queue) == 0 && len(orchestrator.debouncers) == 0
}

// Drain runs every queued completion in FIFO order and returns how many it processed.
// Failures and callback panics are logged and reported, never propagated.
func (orchestrator *Orchestrator) Drain() int {
	orchestrator.mutex.Lock()
	pending := orchestrator.queue
	orchestrator.queue = nil
	orchestrator.mutex.Unlock()

	for _, item := range pending {
		switch item.kind {
		case completionResult:
			orchestrator.complete(item)
		case completionDecrement:
			orchestrator.decrement()
		case completionAction:
			orchestrator.invoke(coordinatorActionLabel, item.action)
		}
	}
	return len(pending)
}

// Run drains on every tick until ctx is done.
func (orchestrator *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(orchestrator.drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			orchestrator.Drain()
		}
	}
}

// WaitIdle drains on every tick until Idle reports true or ctx is done.
func (orchestrator *Orchestrator) WaitIdle(ctx context.Context) error {
	orchestrator.Drain()
	if orchestrator.Idle() {
		return nil
	}
	ticker := time.NewTicker(orchestrator.drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			orchestrator.Drain()
			if orchestrator.Idle() {
				return nil
			}
		}
	}
}

// Shutdown stops accepting work, cancels pending debounces, waits for running jobs
// without interrupting them and drains what they produced. It is safe to call while other
// goroutines submit: every Submit either returns ErrShutdown or has its job waited for.
func (orchestrator *Orchestrator) Shutdown() {
	orchestrator.lifecycle.Lock()
	orchestrator.mutex.Lock()
	orchestrator.closed = true
	for key, pending := range orchestrator.debouncers {
		pending.Stop()
		delete(orchestrator.debouncers, key)
	}
	orchestrator.mutex.Unlock()
	orchestrator.lifecycle.Unlock()

	_ = orchestrator.workers.Wait()
	orchestrator.Drain()
	orchestrator.logger.Debug("task orchestrator stopped")
}

func (orchestrator *Orchestrator) enqueue(items ...completion) {
	orchestrator.mutex.Lock()
	orchestrator.queue = append(orchestrator.queue, items...)
	orchestrator.mutex.Unlock()
}

func (orchestrator *Orchestrator) complete(item completion) {
	if item.err != nil {
		orchestrator.logger.Error("background task failed",
			zap.String("job", item.job.Name),
			zap.String("job_id", item.job.ID.String()),
			zap.Error(item.err))
		orchestrator.presenter.Notify(NotificationTitleTaskError, fmt.Sprintf(taskFailedMessageFormat, item.job.Name, item.err))
		if item.job.Failed != nil {
			orchestrator.invoke(item.job.Name, func() { item.job.Failed(item.err) })
		}
		return
	}
	if item.job.Done != nil {
		orchestrator.invoke(item.job.Name, func() { item.job.Done(item.result) })
	}
}

func (orchestrator *Orchestrator) decrement() {
	orchestrator.mutex.Lock()
	if orchestrator.inFlight > 0 {
		orchestrator.inFlight--
	}
	inFlight := orchestrator.inFlight
	orchestrator.mutex.Unlock()
	orchestrator.presenter.SetBusy(inFlight > 0, inFlight)
}

func (orchestrator *Orchestrator) invoke(label string, callback func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			orchestrator.logger.Error("coordinator callback panicked", zap.String("job", label), zap.Any("panic", recovered))
			orchestrator.presenter.Notify(NotificationTitleTaskError, fmt.Sprintf(callbackPanicFormat, label, recovered))
		}
	}()
	if callback != nil {
		callback()
	}
}
