package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/metawatch/internal/manifest"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <root>",
		Short: "Validate the manifest inside a resource directory",
		Long: `Validate parses the meta.xml inside the given root and reports problems:
generated entries without a src, entries whose src does not exist under the
root, malformed min_version attributes, and an unexpected root element.

Returns exit code 7 on errors (or on warnings with --strict).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(cmd *cobra.Command, root string, opts *validateOptions) error {
	abs, err := absRoot(root)
	if err != nil {
		return err
	}

	res, err := manifest.Validate(abs)
	if err != nil {
		return &ExitError{Code: 7, Err: err}
	}

	for _, f := range res.Findings {
		fmt.Fprintln(cmd.ErrOrStderr(), f.Error())
	}

	if res.HasErrors() {
		return &ExitError{Code: 7, Err: fmt.Errorf("validation failed with %d finding(s)", len(res.Findings))}
	}

	if opts.strict && len(res.Findings) > 0 {
		return &ExitError{Code: 7, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", len(res.Findings))}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}
