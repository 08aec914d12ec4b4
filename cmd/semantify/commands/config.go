package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jmylchreest/semantify/pkg/cleaner"
	"github.com/jmylchreest/semantify/pkg/semantic"
)

// Output formats accepted by --format.
const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
	formatText     = "text"
)

// converterConfig builds the converter configuration from flags, the
// environment and the config file.
func converterConfig() (*semantic.Config, error) {
	rules, err := configuredRules()
	if err != nil {
		return nil, err
	}
	return &semantic.Config{
		Rules:    rules,
		Pretty:   viper.GetBool("pretty"),
		Fragment: viper.GetBool("fragment"),
	}, nil
}

// configuredRules returns the rule table: --rules-file, else the config
// file's rules list, else the built-in table; --rule entries go first.
// A nil result means the built-in table.
func configuredRules() (semantic.Rules, error) {
	var rules semantic.Rules
	if path := viper.GetString("rules_file"); path != "" {
		loaded, err := semantic.LoadRules(path)
		if err != nil {
			return nil, err
		}
		rules = loaded
	} else if viper.IsSet("rules") {
		if err := viper.UnmarshalKey("rules", &rules); err != nil {
			return nil, fmt.Errorf("%w: rules: %v", semantic.ErrInvalidConfig, err)
		}
	}

	extra, _ := rootCmd.PersistentFlags().GetStringArray("rule")
	if len(extra) == 0 {
		return rules, nil
	}
	parsed := make(semantic.Rules, 0, len(extra))
	for _, s := range extra {
		r, err := semantic.ParseRule(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
	}
	if rules == nil {
		rules = semantic.DefaultRules()
	}
	return rules.Prepend(parsed...), nil
}

// pipeline is a converter plus the stage producing the requested format.
type pipeline struct {
	converter *semantic.Converter
	cleaner   cleaner.Cleaner
	ext       string
}

// newPipeline creates the conversion pipeline for format. Markdown renders
// the body fragment and pipes it through the markdown cleaner; sanitize
// strips unsafe markup before conversion.
func newPipeline(cfg *semantic.Config, format string, sanitize bool) (*pipeline, error) {
	p := &pipeline{}
	switch strings.ToLower(format) {
	case formatHTML, "":
		cfg.Output = semantic.OutputHTML
		p.ext = ".html"
	case formatText:
		cfg.Output = semantic.OutputText
		p.ext = ".txt"
	case formatMarkdown:
		cfg.Output = semantic.OutputHTML
		cfg.Fragment = true
		cfg.Pretty = false
		p.ext = ".md"
	default:
		return nil, fmt.Errorf("unknown format: %s (use html, markdown or text)", format)
	}

	conv, err := semantic.New(cfg)
	if err != nil {
		return nil, err
	}
	p.converter = conv

	var stages []cleaner.Cleaner
	if sanitize {
		stages = append(stages, cleaner.NewSanitizer())
	}
	stages = append(stages, conv)
	if p.ext == ".md" {
		stages = append(stages, cleaner.NewMarkdown())
	}
	p.cleaner = conv
	if len(stages) > 1 {
		p.cleaner = cleaner.NewChain(stages...)
	}
	return p, nil
}

// maxSize parses the max_size setting. Empty or "0" means unlimited.
func maxSize() (int64, error) {
	s := strings.TrimSpace(viper.GetString("max_size"))
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max-size %q: %w", s, err)
	}
	return int64(n), nil
}
