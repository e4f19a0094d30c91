package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/metawatch/internal/config"
	"github.com/hupe1980/metawatch/internal/logging"
	"github.com/hupe1980/metawatch/internal/manifest"
)

type generateOptions struct {
	showDiff bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <root>",
		Short: "Regenerate the manifest once, without watching",
		Long: `Generate runs a single regeneration pass over the resource directory:
walk the tree, classify every file, merge with hand-authored manifest
content, and write a fresh meta.xml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.showDiff, "show-diff", false, "print the manifest diff")

	return cmd
}

func runGenerate(cmd *cobra.Command, root string, opts *generateOptions) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	abs, err := absRoot(root)
	if err != nil {
		return err
	}

	res, err := manifest.Regenerate(ctx, abs, logger)
	if err != nil {
		return fmt.Errorf("regenerating %s: %w", abs, err)
	}

	if !res.Changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s up to date (%d entries)\n", res.ManifestPath, res.Entries)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d entries, %d preserved, %s)\n",
		res.ManifestPath, res.Entries, res.Preserved, res.Summary)

	if opts.showDiff {
		cfg := config.FromContext(ctx)
		manifest.WriteDiff(cmd.OutOrStdout(), res.Diff, !cfg.NoColor)
	}

	return nil
}
