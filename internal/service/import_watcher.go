package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"boards/internal/domain"
	"boards/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Import Watcher: drop-folder import of workspace bundles
// ─────────────────────────────────────────────────────────────

// EventWorkspaceImported is emitted with {"path": p, "documents": n}.
const EventWorkspaceImported = "workspace:imported"

// ErrImportRunning is returned when a file is already being imported.
var ErrImportRunning = errors.New("import already running for this file")

// ImportDebounce is how long a file must stay quiet before it is imported.
const ImportDebounce = 500 * time.Millisecond

// ImportWatcher imports every JSON bundle written into a directory.
// Imported files are renamed with an .imported suffix; files that fail to
// parse get a .failed suffix so they are not retried on every write.
type ImportWatcher struct {
	dir     string
	ws      Workspace
	emitter EventEmitter
	delay   time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	timers  map[string]*time.Timer
	done    chan struct{}
	jobs    jobGuard
}

// NewImportWatcher creates an ImportWatcher for dir. Call Start to begin.
func NewImportWatcher(dir string, ws Workspace, emitter EventEmitter) *ImportWatcher {
	return &ImportWatcher{dir: dir, ws: ws, emitter: emitter, delay: ImportDebounce}
}

// Start begins watching. Bundles already sitting in the directory are
// imported first.
func (w *ImportWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("import watcher: create dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("import watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("import watcher: watch %q: %w", w.dir, err)
	}
	w.watcher = watcher
	w.timers = make(map[string]*time.Timer)
	w.done = make(chan struct{})

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if pending, err := filepath.Glob(filepath.Join(w.dir, "*.json")); err == nil {
		for _, p := range pending {
			w.schedule(watchCtx, p)
		}
	}

	go w.loop(watchCtx, watcher, w.done)
	log.Printf("import watcher: watching %s", w.dir)
	return nil
}

func (w *ImportWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			w.mu.Lock()
			w.schedule(ctx, event.Name)
			w.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("import watcher: error: %v", err)
		}
	}
}

// schedule (re)starts the quiet-period timer for path. w.mu must be held.
func (w *ImportWatcher) schedule(ctx context.Context, path string) {
	if w.timers == nil {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, abs)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if _, err := w.ImportFile(ctx, abs); err != nil {
			log.Printf("import watcher: %s: %v", filepath.Base(abs), err)
		}
	})
}

// ImportFile imports one bundle and marks the file as handled. A file
// already being imported is skipped.
func (w *ImportWatcher) ImportFile(ctx context.Context, path string) (int, error) {
	release, ok := w.jobs.Acquire(path)
	if !ok {
		return 0, ErrImportRunning
	}
	defer release()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	bundle, err := storage.DecodeWorkspace(data)
	if err != nil {
		os.Rename(path, path+".failed")
		return 0, err
	}
	n, err := importDecoded(ctx, w.ws, w.emitter, bundle, path)
	if err != nil {
		return n, err
	}
	if err := os.Rename(path, path+".imported"); err != nil {
		log.Printf("import watcher: mark %s: %v", filepath.Base(path), err)
	}
	log.Printf("import watcher: imported %d document(s) from %s", n, filepath.Base(path))
	return n, nil
}

// Stop stops watching and cancels pending imports.
func (w *ImportWatcher) Stop() {
	w.mu.Lock()
	if w.watcher == nil {
		w.mu.Unlock()
		return
	}
	w.cancel()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	watcher, done := w.watcher, w.done
	w.watcher = nil
	w.mu.Unlock()

	watcher.Close()
	<-done

	// Let imports already reading a file finish before the store closes
	wait, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.jobs.Wait(wait)
}

// ImportBundle decodes and imports a bundle read from anywhere, emitting
// the same events as a watched import.
func ImportBundle(ctx context.Context, ws Workspace, emitter EventEmitter, data []byte) (*domain.Workspace, int, error) {
	bundle, err := storage.DecodeWorkspace(data)
	if err != nil {
		return nil, 0, err
	}
	n, err := importDecoded(ctx, ws, emitter, bundle, "")
	return bundle, n, err
}

func importDecoded(ctx context.Context, ws Workspace, emitter EventEmitter, bundle *domain.Workspace, path string) (int, error) {
	n, err := ws.ImportAll(bundle)
	if err != nil {
		return n, err
	}
	for _, b := range bundle.Boards {
		emitter.Emit(ctx, EventBoardChanged, map[string]string{"boardId": b.ID})
	}
	emitter.Emit(ctx, EventWorkspaceImported, map[string]any{"path": path, "documents": n})
	return n, nil
}
