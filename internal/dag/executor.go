package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Executor evaluates parts of a graph. It is safe for concurrent use; every
// Run has its own state.
type Executor struct {
	graph      *Graph
	numWorkers int
	env        *registry.Env
}

// NewExecutor creates an executor with the given worker pool size.
func NewExecutor(g *Graph, numWorkers int, env *registry.Env) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Executor{graph: g, numWorkers: numWorkers, env: env}
}

// run is the state of one Executor.Run call.
type run struct {
	nodes map[*Node]*runNode
	ready chan *runNode
	wg    sync.WaitGroup
}

// Run executes the targets and all of their prerequisites, running
// independent tasks concurrently. A failing task skips its dependents but
// does not stop unrelated tasks. The returned error wraps the first root
// cause.
func (e *Executor) Run(ctx context.Context, targets ...string) error {
	closure, err := e.graph.Closure(targets...)
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx).With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Initializing run.", "targets", targets, "tasks", len(closure))

	r := &run{
		nodes: make(map[*Node]*runNode, len(closure)),
		ready: make(chan *runNode, len(closure)),
	}
	for _, n := range closure {
		r.nodes[n] = &runNode{Node: n}
	}
	for _, rn := range r.nodes {
		rn.depCount.Store(int32(len(rn.Deps)))
	}

	r.wg.Add(len(closure))
	for _, n := range closure {
		if len(n.Deps) == 0 {
			logger.Debug("Found root task.", "task", n.ID.String())
			r.ready <- r.nodes[n]
		}
	}

	for i := 0; i < e.numWorkers; i++ {
		go e.worker(ctx, r, i)
	}
	r.wg.Wait()
	close(r.ready)

	var failed, skipped []string
	var rootCause error
	for _, n := range closure {
		rn := r.nodes[n]
		if IsSkipped(rn.err) {
			skipped = append(skipped, n.ID.String())
			continue
		}
		if rn.State() != Failed {
			continue
		}
		failed = append(failed, n.ID.String())
		if rootCause == nil {
			rootCause = rn.err
		}
	}
	if len(skipped) > 0 {
		logger.Warn("Tasks did not run.", "skipped", skipped)
	}
	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Debug("Run finished.", "targets", targets)
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, r *run, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for rn := range r.ready {
		workerLogger := logger.With("workerID", workerID, "task", rn.ID.String())
		taskCtx := ctxlog.WithLogger(ctx, workerLogger)

		if ctx.Err() != nil {
			workerLogger.Warn("Context canceled, skipping task.")
			rn.err = fmt.Errorf("%w: %w", ErrSkipped, ctx.Err())
			rn.state.Store(int32(Skipped))
			e.finish(taskCtx, r, rn)
			continue
		}

		rn.state.Store(int32(Running))
		if err := e.execute(taskCtx, rn); err != nil {
			rn.err = err
			rn.state.Store(int32(Failed))
		} else {
			rn.state.Store(int32(Done))
		}
		e.finish(taskCtx, r, rn)
	}
}

// execute runs one task action and logs its timing.
func (e *Executor) execute(ctx context.Context, rn *runNode) (err error) {
	logger := ctxlog.FromContext(ctx)
	if rn.Task.Fn == nil {
		logger.Debug("Alias task has no action.")
		return nil
	}

	logger.Info("▶️ Starting task")
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task '%s' panicked: %v", rn.ID, p)
		}
		if err != nil {
			logger.Error("❌ Task failed", "error", err, "duration", time.Since(start))
			return
		}
		logger.Info("✅ Finished task", "duration", time.Since(start))
	}()
	return rn.Task.Fn(ctx, e.env)
}

// finish settles the dependents of a task that is done, failed or skipped.
// A dependent whose last prerequisite settled is queued, or skipped when a
// prerequisite did not succeed and the dependent is not tolerant. Skips
// therefore propagate in dependency order. The task itself counts as
// finished only after its dependents were settled.
func (e *Executor) finish(ctx context.Context, r *run, rn *runNode) {
	logger := ctxlog.FromContext(ctx)
	succeeded := rn.State() == Done

	for _, dependent := range rn.Dependents {
		drn, inRun := r.nodes[dependent]
		if !inRun {
			continue
		}
		if !succeeded {
			drn.blockedBy.CompareAndSwap(nil, rn)
		}
		if drn.depCount.Add(-1) != 0 {
			continue
		}

		up := drn.blockedBy.Load()
		switch {
		case up == nil:
			logger.Debug("Unlocking dependent task.", "dependent", dependent.ID.String())
		case dependent.Task.Tolerant:
			logger.Warn("Running task despite upstream failure.", "dependent", dependent.ID.String(), "dependency", up.ID.String())
		default:
			logger.Warn("Skipping dependent task due to upstream failure.", "dependent", dependent.ID.String(), "dependency", up.ID.String())
			drn.err = fmt.Errorf("%w: upstream failure of '%s'", ErrSkipped, up.ID)
			drn.state.Store(int32(Skipped))
			e.finish(ctx, r, drn)
			continue
		}
		r.ready <- drn
	}
	r.wg.Done()
}

// IsSkipped reports whether err means a task did not run.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkipped)
}
