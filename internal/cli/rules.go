package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/metawatch/internal/classify"
)

// ruleDoc is the YAML shape of one classification rule.
type ruleDoc struct {
	Suffix string `yaml:"suffix"`
	Kind   string `yaml:"kind"`
	Type   string `yaml:"type,omitempty"`
	Lang   string `yaml:"lang,omitempty"`
}

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the classification rule table",
		Long: `Rules prints the fixed suffix-rule table used to classify files, in match
order. The first matching rule wins; files nothing matches become plain
file entries. The table is not configurable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var docs []ruleDoc

			for _, r := range classify.Rules() {
				d := ruleDoc{Suffix: r.Suffix}

				switch r.Result.Kind {
				case classify.KindScript:
					d.Kind = "script"
					d.Type = r.Result.Target
					d.Lang = r.Result.Lang
				case classify.KindIgnored:
					d.Kind = "ignored"
				default:
					d.Kind = "file"
				}

				docs = append(docs, d)
			}

			docs = append(docs, ruleDoc{Suffix: "*", Kind: "file"})

			out, err := yaml.Marshal(docs)
			if err != nil {
				return fmt.Errorf("marshaling rules: %w", err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))

			return err
		},
	}

	return cmd
}
