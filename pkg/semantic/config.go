// Package semantic rewrites generic HTML containers into semantic elements.
// A div or span whose class or id hints at its role (nav, footer, post...)
// is promoted to the matching HTML5 element; every other div and span is
// unwrapped so that only its children remain.
package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"
)

// OutputFormat specifies how the rewritten document is rendered.
type OutputFormat string

const (
	OutputHTML OutputFormat = "html"
	OutputText OutputFormat = "text"
)

// Rule maps a keyword found in an element's class/id signature to a tag.
type Rule struct {
	// Keyword is matched as a substring of the lowercased signature.
	Keyword string `json:"keyword" yaml:"keyword" mapstructure:"keyword" validate:"required,keyword,lowercase"`

	// Tag is the element name the generic element is promoted to.
	Tag string `json:"tag" yaml:"tag" mapstructure:"tag" validate:"required,htmltag"`
}

// String returns the rule in keyword=tag form.
func (r Rule) String() string {
	return r.Keyword + "=" + r.Tag
}

// Rules is an ordered rule table. The first matching rule wins.
type Rules []Rule

// DefaultRules returns a fresh copy of the built-in rule table.
func DefaultRules() Rules {
	return Rules{
		{Keyword: "header", Tag: "header"},
		{Keyword: "nav", Tag: "nav"},
		{Keyword: "navbar", Tag: "nav"},
		{Keyword: "menu", Tag: "nav"},
		{Keyword: "main", Tag: "main"},
		{Keyword: "content", Tag: "main"},
		{Keyword: "section", Tag: "section"},
		{Keyword: "article", Tag: "article"},
		{Keyword: "post", Tag: "article"},
		{Keyword: "footer", Tag: "footer"},
		{Keyword: "sidebar", Tag: "aside"},
		{Keyword: "aside", Tag: "aside"},
	}
}

// Prepend returns a new table with extra placed ahead of r, so that
// extra rules take precedence under first-match.
func (r Rules) Prepend(extra ...Rule) Rules {
	out := make(Rules, 0, len(extra)+len(r))
	out = append(out, extra...)
	return append(out, r...)
}

// ParseRule parses a "keyword=tag" pair. The keyword is lowercased.
func ParseRule(s string) (Rule, error) {
	keyword, tag, ok := strings.Cut(s, "=")
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q must be keyword=tag", ErrInvalidConfig, s)
	}
	rule := Rule{
		Keyword: strings.ToLower(strings.TrimSpace(keyword)),
		Tag:     strings.ToLower(strings.TrimSpace(tag)),
	}
	if err := validate.Struct(rule); err != nil {
		return Rule{}, validationError(err)
	}
	return rule, nil
}

// Config defines the options for a Converter.
type Config struct {
	// Rules is the keyword table. Nil means DefaultRules().
	Rules Rules `json:"rules" yaml:"rules" mapstructure:"rules" validate:"dive"`

	// Output selects html (default) or text rendering.
	Output OutputFormat `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=html text"`

	// Pretty indents the rendered HTML.
	Pretty bool `json:"pretty" yaml:"pretty" mapstructure:"pretty"`

	// Fragment renders only the contents of <body> instead of the whole document.
	Fragment bool `json:"fragment" yaml:"fragment" mapstructure:"fragment"`
}

// DefaultConfig returns the configuration used by Convert.
func DefaultConfig() *Config {
	return &Config{
		Rules:  DefaultRules(),
		Output: OutputHTML,
	}
}

// Validate checks the rule table and output options.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}
	return nil
}

type rulesFile struct {
	Rules Rules `json:"rules" yaml:"rules"`
}

// LoadRules reads a rule table from a YAML or JSON file with a top-level
// "rules" list. Files ending in .json are decoded as JSON.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var f rulesFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidConfig, path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: %s contains no rules", ErrInvalidConfig, path)
	}

	cfg := Config{Rules: f.Rules}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("keyword", func(fl validator.FieldLevel) bool {
		return isKeyword(fl.Field().String())
	})
	_ = v.RegisterValidation("htmltag", func(fl validator.FieldLevel) bool {
		return isPromotableTag(fl.Field().String())
	})
	return v
}

// isKeyword rejects blank keywords and surrounding whitespace. A lone
// space would match every signature that has both a class and an id.
func isKeyword(kw string) bool {
	return kw != "" && strings.TrimSpace(kw) == kw
}

// nonPromotable lists elements a container can never become: generic
// tags (the output must hold none), void elements, document structure,
// raw-text and table-structure elements the parser relocates or
// reinterprets on reparse.
var nonPromotable = map[atom.Atom]bool{
	// generic
	atom.Div: true, atom.Span: true,

	// void
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Keygen: true, atom.Link: true, atom.Meta: true, atom.Param: true,
	atom.Source: true, atom.Track: true, atom.Wbr: true,

	// document structure
	atom.Html: true, atom.Head: true, atom.Body: true,
	atom.Frameset: true, atom.Frame: true, atom.Template: true,

	// raw text and escapable raw text
	atom.Script: true, atom.Style: true, atom.Title: true, atom.Textarea: true,
	atom.Xmp: true, atom.Iframe: true, atom.Noembed: true, atom.Noframes: true,
	atom.Noscript: true, atom.Plaintext: true,

	// table structure
	atom.Caption: true, atom.Colgroup: true, atom.Tbody: true, atom.Thead: true,
	atom.Tfoot: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

func isPromotableTag(tag string) bool {
	a := atom.Lookup([]byte(tag))
	return a != 0 && !nonPromotable[a]
}

func isGenericTag(tag string) bool {
	a := atom.Lookup([]byte(tag))
	return a == atom.Div || a == atom.Span
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "lowercase":
		return fmt.Sprintf("%s must be lowercase, got %q", field, e.Value())
	case "keyword":
		return fmt.Sprintf("%s %q must not be blank or padded with whitespace", field, e.Value())
	case "htmltag":
		if isGenericTag(fmt.Sprint(e.Value())) {
			return fmt.Sprintf("%s %q is a generic element; rules must promote to a semantic tag", field, e.Value())
		}
		return fmt.Sprintf("%s %q is not an HTML element that can replace a container", field, e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
