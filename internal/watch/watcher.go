package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/metawatch/internal/manifest"
)

// ErrInvalidRoot means the watch root does not exist or is not a directory.
// It is the only error that prevents a session from starting.
var ErrInvalidRoot = errors.New("invalid watch root")

// RegenerateFunc runs the manifest pipeline once and reports the result.
type RegenerateFunc func(ctx context.Context) (*manifest.Result, error)

// Options configures a watch session.
type Options struct {
	// Root is the directory tree to watch recursively.
	Root string

	// Debounce is the quiet period after the last change before a
	// regeneration runs.
	Debounce time.Duration

	// ShowDiff logs the full unified diff after each changed regeneration
	// instead of only the one-line summary.
	ShowDiff bool

	// Color enables ANSI colors in diff output.
	Color bool

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status lines.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: time.Second,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts a watch session and blocks until ctx is cancelled or a
// SIGINT/SIGTERM arrives. An initial regeneration cycle is scheduled through
// the same debounce path as real changes. On shutdown the scheduler drains:
// Run does not return while a regeneration is still writing.
func Run(ctx context.Context, opts Options, regen RegenerateFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidRoot, opts.Root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, opts.Root); err != nil {
		return fmt.Errorf("watching root: %w", err)
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", opts.Root, opts.Debounce)

	manifestPath := manifest.PathIn(opts.Root)

	scheduler := NewScheduler(sigCtx, opts.Debounce, func(runCtx context.Context) error {
		doRun(runCtx, opts, regen)
		return nil
	}, opts.Logger)

	// Initial regeneration, through the same path as a change event.
	scheduler.Notify()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			scheduler.Stop()

			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				scheduler.Stop()
				return nil
			}

			if !isRelevant(event, manifestPath) {
				continue
			}

			// If a new directory was created, watch it too.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}

			scheduler.Notify()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				scheduler.Stop()
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single regeneration and prints the status line. Failures
// are reported and swallowed: the session stays alive so the next change can
// retry.
func doRun(ctx context.Context, opts Options, regen RegenerateFunc) {
	now := time.Now().Format("15:04:05")

	res, err := regen(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] ERROR: %v\n", now, err)
		opts.Logger.Error("regeneration failed", slog.String("error", err.Error()))

		return
	}

	if !res.Changed {
		fmt.Fprintf(opts.Out, "[%s] OK (%d entries, unchanged)\n", now, res.Entries)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] OK (%d entries, %d preserved, %s)\n",
		now, res.Entries, res.Preserved, res.Summary)

	if opts.ShowDiff {
		manifest.WriteDiff(opts.Out, res.Diff, opts.Color)
	}
}

// addRecursive walks root and adds all directories to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories (e.g., .git).
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}

			return watcher.Add(path)
		}

		return nil
	})
}

// isRelevant filters out events that must not trigger a regeneration: the
// manifest itself (and its staging temp files), editor droppings, and ops we
// do not care about. Without the manifest filter every write would schedule
// the next run forever.
func isRelevant(event fsnotify.Event, manifestPath string) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if filepath.Clean(event.Name) == filepath.Clean(manifestPath) {
		return false
	}

	name := filepath.Base(event.Name)

	if strings.HasPrefix(name, manifest.Filename+".tmp-") {
		return false
	}

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
