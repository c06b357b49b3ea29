// Package watch requests a shader reload when shader sources change on
// disk.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/reload"
)

// DefaultDelay coalesces the burst of events editors emit on save.
const DefaultDelay = 100 * time.Millisecond

// Requester receives reload requests. reload.Coordinator implements it.
type Requester interface {
	Request(reload.Type)
}

// Watcher watches a directory and requests a reload.Shader whenever a
// file with a matching extension is written, created or renamed.
type Watcher struct {
	req   Requester
	ext   string
	delay time.Duration

	w *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	fired int
}

// New watches dir for files ending in ext. Close releases the watcher.
func New(dir, ext string, req Requester) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		req:   req,
		ext:   strings.ToLower(ext),
		delay: DefaultDelay,
		w:     w,
	}, nil
}

// SetDelay changes the coalescing delay. Call before Run.
func (w *Watcher) SetDelay(d time.Duration) { w.delay = d }

// Requests returns how many reloads have been requested.
func (w *Watcher) Requests() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			logging.L().Warn("watch: error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.w.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.ext == "" || strings.ToLower(filepath.Ext(ev.Name)) == w.ext
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !w.relevant(ev) {
		return
	}
	logging.L().Debug("watch: shader changed", "file", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(w.delay)
		return
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	w.timer = nil
	w.fired++
	w.mu.Unlock()
	w.req.Request(reload.Shader)
}
