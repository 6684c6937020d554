package bus

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tabstore/tabstore/lib/logging"
)

// --------------------------------------------------------------------------
// Cross-Process Watcher
// --------------------------------------------------------------------------

// Watcher is the cross-process delivery path: it observes the raw store's
// backing file and signals consumers when another process wrote to it.
//
// Unlike the in-process bus, the watcher carries no payload. The raw bytes
// on disk may be encrypted or use a non-default codec, so consumers must
// re-read through the storage manager instead of trusting the signal.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	subs    *xsync.MapOf[uint64, func()]
	nextID  atomic.Uint64
	done    chan struct{}
	running atomic.Bool
	log     logging.ILogger
}

// NewWatcher starts watching the store file at path. The parent directory is
// watched (not the file itself) so atomic rename-style writes are observed.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path: filepath.Clean(path),
		fsw:  fsw,
		subs: xsync.NewMapOf[uint64, func()](),
		done: make(chan struct{}),
		log:  logging.CreateLogger("bus/watcher"),
	}
	w.running.Store(true)
	go w.loop()
	return w, nil
}

// Subscribe registers a callback invoked after each external change to the
// store file. The returned function cancels the subscription.
func (w *Watcher) Subscribe(fn func()) (cancel func()) {
	id := w.nextID.Add(1)
	w.subs.Store(id, fn)
	return func() {
		w.subs.Delete(id)
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}

// loop dispatches file events to subscribers until the watcher is closed.
func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != w.path {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			w.subs.Range(func(_ uint64, fn func()) bool {
				fn()
				return true
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warningf("watch error: %v", err)
		}
	}
}
