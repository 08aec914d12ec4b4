package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/semantify/pkg/semantic"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rule table",
	Long: `Rules prints the keyword table in match order, after applying the
config file, --rules-file and --rule flags. The output can be saved and
passed back with --rules-file.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().String("format", "yaml", "output format: yaml, json")
}

type rulesDocument struct {
	Rules semantic.Rules `json:"rules" yaml:"rules"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	rules, err := configuredRules()
	if err != nil {
		return err
	}
	if rules == nil {
		rules = semantic.DefaultRules()
	}
	if err := (&semantic.Config{Rules: rules}).Validate(); err != nil {
		return err
	}

	doc := rulesDocument{Rules: rules}
	w := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format: %s (use yaml or json)", format)
	}
}
