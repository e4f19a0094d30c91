package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/metawatch/internal/config"
	"github.com/hupe1980/metawatch/internal/logging"
	"github.com/hupe1980/metawatch/internal/manifest"
	"github.com/hupe1980/metawatch/internal/watch"
)

type watchOptions struct {
	debounce time.Duration
	showDiff bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <root>",
		Short: "Watch a resource directory and keep its manifest current",
		Long: `Watch monitors a resource directory tree for file changes and
regenerates its meta.xml whenever the tree settles.

Changes are debounced: a burst of filesystem events within one quiet period
triggers exactly one regeneration, and regenerations never overlap. Each run
reports the entry count and a summary of what changed in the manifest.

Hand-authored manifest content (anything that is not a generated script,
assembly, or file entry) survives every regeneration unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&opts.debounce, "debounce", 0, "quiet period before regenerating (default from config, 1s)")
	f.BoolVar(&opts.showDiff, "show-diff", false, "print the full manifest diff after each regeneration")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, root string, opts *watchOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	abs, err := absRoot(root)
	if err != nil {
		return err
	}

	debounce := opts.debounce
	if debounce <= 0 {
		debounce = cfg.Debounce
	}

	watchOpts := watch.Options{
		Root:     abs,
		Debounce: debounce,
		ShowDiff: opts.showDiff,
		Color:    !cfg.NoColor,
		Logger:   logger,
		Out:      cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, func(runCtx context.Context) (*manifest.Result, error) {
		return manifest.Regenerate(runCtx, abs, logger)
	})
}

// absRoot resolves root to an absolute path and verifies it is an existing
// directory. Usage-level failures map to exit code 2.
func absRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ExitError{Code: 2, Err: fmt.Errorf("resolving root %q: %w", root, err)}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &ExitError{Code: 2, Err: fmt.Errorf("root %q does not exist", root)}
	}

	if !info.IsDir() {
		return "", &ExitError{Code: 2, Err: fmt.Errorf("root %q is not a directory", root)}
	}

	return abs, nil
}
