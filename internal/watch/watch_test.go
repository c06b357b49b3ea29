package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/reload"
)

type requests struct {
	mu  sync.Mutex
	got []reload.Type
}

func (r *requests) Request(t reload.Type) {
	r.mu.Lock()
	r.got = append(r.got, t)
	r.mu.Unlock()
}

func (r *requests) list() []reload.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reload.Type(nil), r.got...)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{ext: ".wgsl"}
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "basic.wgsl", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "SKYBOX.WGSL", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "basic.wgsl", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "basic.wgsl", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "basic.wgsl", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.ev), "%v", tt.ev)
	}
}

func TestHandleCoalesces(t *testing.T) {
	r := &requests{}
	w := &Watcher{req: r, ext: ".wgsl", delay: 20 * time.Millisecond}

	for i := 0; i < 5; i++ {
		w.handle(fsnotify.Event{Name: "basic.wgsl", Op: fsnotify.Write})
	}
	require.Eventually(t, func() bool { return w.Requests() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []reload.Type{reload.Shader}, r.list())
}

func TestWatcherRequestsShaderReload(t *testing.T) {
	dir := t.TempDir()
	r := &requests{}
	w, err := New(dir, ".wgsl", r)
	require.NoError(t, err)
	w.SetDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
		w.Close()
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.wgsl"), []byte("fn main() {}"), 0o644))

	require.Eventually(t, func() bool { return len(r.list()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, got := range r.list() {
		assert.Equal(t, reload.Shader, got)
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), ".wgsl", &requests{})
	assert.Error(t, err)
}
