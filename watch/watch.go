// Package watch is the file-watching external collaborator named but
// deliberately kept outside the engine core by spec.md §1: it reads
// changed files off disk and calls a program.Program back, but the
// engine itself never touches the filesystem. Grounded on the
// teacher's util.WatchReplicateDir fsnotify event loop, generalized
// from "replicate a directory" to "notify a handler of a changed
// path".
package watch

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/brightscope/bsc/util"
)

// Handler is called with the path that changed and its new content.
// program.Program.OnFileChanged satisfies this after its pkgPath
// argument is bound by the caller.
type Handler func(absPath util.Path, content string) error

// Watcher wraps an fsnotify.Watcher, dispatching Write/Create events
// on watched roots to a Handler.
type Watcher struct {
	fs      *fsnotify.Watcher
	handler Handler
	errs    chan error
}

// New builds a Watcher over roots, calling handler for every
// Write/Create event observed once Run starts.
func New(roots []util.Path, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := fsw.Add(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{fs: fsw, handler: handler, errs: make(chan error, 1)}, nil
}

// Run processes events until ctx is cancelled or the underlying
// watcher's event channel closes. Handler errors are forwarded to
// Errors() rather than stopping the loop, so one bad read doesn't
// starve the rest of the watched tree.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.dispatch(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.reportErr(err)
		}
	}
}

func (w *Watcher) dispatch(absPath string) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		w.reportErr(err)
		return
	}
	if err := w.handler(absPath, string(content)); err != nil {
		w.reportErr(err)
	}
}

func (w *Watcher) reportErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// Errors returns a channel receiving at most one buffered error at a
// time from Run; drain it alongside Run to observe dispatch failures.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fs.Close() }
