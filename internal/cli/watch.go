package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <file.cue|dir>",
		Short: "Re-validate edit-decision files whenever they change",
		Long: `Validate once, then again every time the file (or any .cue file in the
directory) is written, created or removed. Bursts of events within the
debounce window trigger a single run. Stops on interrupt.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 100*time.Millisecond, "quiet period before re-validating")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	w, err := NewFileWatcher(path, opts.Debounce)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeWatch, err.Error(), nil)
	}
	if err := w.Start(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWatch, err.Error(), nil)
	}
	defer w.Stop()

	opts.logger().Info("watching", "path", path, "debounce", opts.Debounce)
	reportValidation(f, path)

	for {
		select {
		case <-ctx.Done():
			opts.logger().Info("watch stopped")
			return nil
		case file, ok := <-w.Changes:
			if !ok {
				return nil
			}
			f.VerboseLog("Change detected: %s", file)
			reportValidation(f, path)
		}
	}
}

// reportValidation prints one validation run without ending the watch.
func reportValidation(f *OutputFormatter, path string) {
	result := validatePath(path)
	if f.JSON() {
		status := "ok"
		if !result.Valid {
			status = "error"
		}
		_ = f.encode(CLIResponse{Status: status, Data: result})
		return
	}

	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(f.Writer, "✗ %s\n", formatValidationError(e))
		}
		return
	}
	fmt.Fprint(f.Writer, formatValidationSuccess(result))
}

const minDebounce = 10 * time.Millisecond

// FileWatcher reports debounced changes to a CUE file, or to any CUE file
// in a directory.
type FileWatcher struct {
	Path    string
	Changes <-chan string // Read-only external channel

	changes  chan string // Internal write channel
	done     chan struct{}
	dir      string
	target   string // absolute file path, empty when watching a directory
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewFileWatcher creates a watcher for path. Files are watched through
// their parent directory so editors that save by rename are still seen.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	if debounce < minDebounce {
		debounce = minDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 16)
	w := &FileWatcher{
		Path:     path,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		dir:      abs,
		debounce: debounce,
		watcher:  fw,
	}
	if !info.IsDir() {
		w.dir = filepath.Dir(abs)
		w.target = abs
	}
	return w, nil
}

// Start begins watching. If the directory cannot be watched the underlying
// watcher is closed and Stop must not be called.
func (w *FileWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *FileWatcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *FileWatcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					delete(pending, file)
					select {
					case w.changes <- file:
					default:
						// A run is already queued; it will see this change too.
					}
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *FileWatcher) relevant(name string) bool {
	if w.target != "" {
		abs, err := filepath.Abs(name)
		return err == nil && abs == w.target
	}
	return filepath.Ext(name) == ".cue"
}
