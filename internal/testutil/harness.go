package testutil

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/sitegridgo/internal/config"
	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/dag"
	"github.com/specialistvlad/sitegridgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewEnv returns an environment for model with a SafeBuffer console, a
// RecordingNotifier, a FakeSass compiler and a FakeWatcher.
func NewEnv(t *testing.T, model *config.Model) *registry.Env {
	t.Helper()
	return &registry.Env{
		Config:  model,
		Console: &SafeBuffer{},
		Reload:  &RecordingNotifier{},
		Watcher: &FakeWatcher{},
		Server:  &FakeServer{},
		Sass:    &FakeSass{},
	}
}

// RunTasks registers modules, builds the graph and runs targets with env.
// Logs go to the test log when SITEGRID_TEST_LOGS=true.
func RunTasks(t *testing.T, ctx context.Context, env *registry.Env, modules []registry.Module, targets ...string) error {
	t.Helper()

	logs := &SafeBuffer{}
	ctx = ctxlog.WithLogger(ctx, NewLogger(logs))
	t.Cleanup(func() {
		if os.Getenv("SITEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	reg := registry.New()
	for _, m := range modules {
		m.Register(reg)
	}
	graph, err := dag.Build(ctx, reg)
	require.NoError(t, err)

	return dag.NewExecutor(graph, 4, env).Run(ctx, targets...)
}
