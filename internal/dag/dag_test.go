package dag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/sitegridgo/internal/nodeid"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the order in which task actions ran.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) action(name string, err error) registry.Action {
	return func(ctx context.Context, env *registry.Env) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return err
	}
}

func (r *recorder) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *recorder) index(name string) int {
	for i, n := range r.ran() {
		if n == name {
			return i
		}
	}
	return -1
}

// addr parses a task name written in a test.
func addr(name string) nodeid.Address {
	a, err := nodeid.Parse(name)
	if err != nil {
		panic(err)
	}
	return a
}

func register(r *registry.Registry, fn registry.Action, name string, deps ...string) {
	t := &registry.RegisteredTask{Name: addr(name), Fn: fn}
	for _, d := range deps {
		t.DependsOn = append(t.DependsOn, addr(d))
	}
	r.RegisterTask(t)
}

// siteRegistry mirrors the shape of the real task set for two categories.
func siteRegistry(rec *recorder, failing map[string]error) *registry.Registry {
	r := registry.New()
	add := func(name string, deps ...string) {
		register(r, rec.action(name, failing[name]), name, deps...)
	}
	add("clean:scripts")
	add("lint:scripts")
	add("build:scripts", "clean:scripts", "lint:scripts")
	add("clean:styles")
	add("lint:styles")
	add("build:styles", "clean:styles", "lint:styles")
	register(r, nil, "build", "build:scripts", "build:styles")
	add("serve", "build")
	return r
}

func TestBuild_CycleDetection(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	r := registry.New()
	register(r, nil, "a", "b")
	register(r, nil, "b", "c")
	register(r, nil, "c", "a")

	// --- Act ---
	_, err := Build(context.Background(), r)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorContains(t, err, "cycle")
}

func TestBuild_UnknownDependency(t *testing.T) {
	t.Parallel()

	r := registry.New()
	register(r, nil, "build", "compile")

	_, err := Build(context.Background(), r)

	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestClosure_OrdersPrerequisitesFirst(t *testing.T) {
	t.Parallel()

	g, err := Build(context.Background(), siteRegistry(&recorder{}, nil))
	require.NoError(t, err)

	nodes, err := g.Closure("build:styles")
	require.NoError(t, err)

	var names []string
	for _, n := range nodes {
		names = append(names, n.ID.String())
	}
	assert.Equal(t, []string{"clean:styles", "lint:styles", "build:styles"}, names)

	_, err = g.Closure("deploy")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRun_RespectsDependencies(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	rec := &recorder{}
	g, err := Build(context.Background(), siteRegistry(rec, nil))
	require.NoError(t, err)

	// --- Act ---
	err = NewExecutor(g, 4, &registry.Env{}).Run(context.Background(), "serve")

	// --- Assert ---
	require.NoError(t, err)
	assert.Len(t, rec.ran(), 7, "every task with an action runs exactly once")
	assert.Less(t, rec.index("clean:styles"), rec.index("build:styles"))
	assert.Less(t, rec.index("lint:styles"), rec.index("build:styles"))
	assert.Less(t, rec.index("clean:scripts"), rec.index("build:scripts"))
	assert.Less(t, rec.index("build:scripts"), rec.index("serve"))
	assert.Less(t, rec.index("build:styles"), rec.index("serve"))
}

func TestRun_OnlyRunsTheClosure(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	g, err := Build(context.Background(), siteRegistry(rec, nil))
	require.NoError(t, err)

	require.NoError(t, NewExecutor(g, 2, &registry.Env{}).Run(context.Background(), "build:styles"))

	assert.ElementsMatch(t, []string{"clean:styles", "lint:styles", "build:styles"}, rec.ran())
}

func TestRun_FailureSkipsDependentsOnly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	boom := errors.New("sass exploded")
	rec := &recorder{}
	g, err := Build(context.Background(), siteRegistry(rec, map[string]error{"build:styles": boom}))
	require.NoError(t, err)

	// --- Act ---
	err = NewExecutor(g, 4, &registry.Env{}).Run(context.Background(), "serve")

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "execution failed for build:styles")
	assert.NotContains(t, rec.ran(), "serve")
	assert.Contains(t, rec.ran(), "build:scripts", "unrelated branches still complete")
}

func TestRun_TolerantTaskRunsAfterFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	boom := errors.New("sass exploded")
	rec := &recorder{}
	r := siteRegistry(rec, map[string]error{"build:styles": boom})
	r.RegisterTask(&registry.RegisteredTask{
		Name:      addr("watch:styles"),
		DependsOn: []nodeid.Address{addr("build:styles")},
		Fn:        rec.action("watch:styles", nil),
		Tolerant:  true,
	})
	serve, ok := r.Task("serve")
	require.True(t, ok)
	serve.Tolerant = true
	g, err := Build(context.Background(), r)
	require.NoError(t, err)

	// --- Act ---
	err = NewExecutor(g, 4, &registry.Env{}).Run(context.Background(), "serve", "watch:styles")

	// --- Assert ---
	require.ErrorIs(t, err, boom, "the failure is still reported")
	assert.Contains(t, rec.ran(), "serve", "a skipped alias does not stop a tolerant dependent")
	assert.Contains(t, rec.ran(), "watch:styles")
	assert.Less(t, rec.index("build:scripts"), rec.index("serve"), "tolerant tasks still wait for every prerequisite")
	assert.Less(t, rec.index("build:styles"), rec.index("watch:styles"))
}

func TestRun_TasksRunConcurrently(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var running, peak atomic.Int32
	slow := func(ctx context.Context, env *registry.Env) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return nil
	}
	r := registry.New()
	register(r, slow, "build:scripts")
	register(r, slow, "build:styles")
	register(r, slow, "build:images")
	register(r, slow, "build:html")
	register(r, nil, "build", "build:scripts", "build:styles", "build:images", "build:html")
	g, err := Build(context.Background(), r)
	require.NoError(t, err)

	// --- Act ---
	err = NewExecutor(g, 4, &registry.Env{}).Run(context.Background(), "build")

	// --- Assert ---
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestRun_GraphIsReusable(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	g, err := Build(context.Background(), siteRegistry(rec, nil))
	require.NoError(t, err)
	exec := NewExecutor(g, 2, &registry.Env{})

	require.NoError(t, exec.Run(context.Background(), "build:scripts"))
	require.NoError(t, exec.Run(context.Background(), "build:scripts"))

	assert.Len(t, rec.ran(), 6)
}

func TestRun_PanicBecomesError(t *testing.T) {
	t.Parallel()

	r := registry.New()
	register(r, func(ctx context.Context, env *registry.Env) error { panic("boom") }, "build")
	g, err := Build(context.Background(), r)
	require.NoError(t, err)

	err = NewExecutor(g, 1, &registry.Env{}).Run(context.Background(), "build")

	assert.ErrorContains(t, err, "panicked: boom")
}

func TestRun_CancelledContextSkipsEverything(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	g, err := Build(context.Background(), siteRegistry(rec, nil))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewExecutor(g, 2, &registry.Env{}).Run(ctx, "build")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.ran())
}
