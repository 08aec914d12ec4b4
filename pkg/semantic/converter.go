package semantic

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosssi/gohtml"

	"github.com/jmylchreest/semantify/internal/logger"
)

// Converter rewrites HTML documents with a fixed configuration.
// It implements the cleaner.Cleaner interface and is safe for concurrent
// use: every call parses and owns its own tree.
type Converter struct {
	config   *Config
	rewriter *Rewriter

	mu    sync.Mutex
	stats *Stats
}

// Result contains the output of a conversion.
type Result struct {
	// Content is the rendered document.
	Content string `json:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`
}

// New creates a Converter. If config is nil, DefaultConfig() is used.
func New(config *Config) (*Converter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cfg := *config
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.Output == "" {
		cfg.Output = OutputHTML
	}
	return &Converter{
		config:   &cfg,
		rewriter: NewRewriter(NewClassifier(cfg.Rules)),
	}, nil
}

var defaultConverter = func() *Converter {
	c, err := New(nil)
	if err != nil {
		panic(err)
	}
	return c
}()

// Convert rewrites htmlText with the default rule table.
func Convert(htmlText string) (string, error) {
	return defaultConverter.Convert(htmlText)
}

// ConvertBytes decodes data and rewrites it with the default rule table.
func ConvertBytes(data []byte, contentType string) (string, error) {
	result, err := defaultConverter.ConvertBytes(data, contentType)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// Name returns the converter name for logging.
func (c *Converter) Name() string {
	return "semantic"
}

// Rules returns the rule table in match order.
func (c *Converter) Rules() Rules {
	return c.rewriter.classifier.Rules()
}

// Clean implements cleaner.Cleaner.
func (c *Converter) Clean(html string) (string, error) {
	return c.Convert(html)
}

// Convert rewrites htmlText and returns the rendered document.
func (c *Converter) Convert(htmlText string) (string, error) {
	result, err := c.ConvertWithStats(htmlText)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// ConvertBytes decodes raw input with DecodeBytes and converts it.
func (c *Converter) ConvertBytes(data []byte, contentType string) (*Result, error) {
	text, cs := DecodeBytes(data, contentType)
	logger.Debug("input decoded", "charset", cs, "bytes", len(data))
	return c.ConvertWithStats(text)
}

// ConvertWithStats performs the conversion and returns detailed stats.
// On error no partial output is returned.
func (c *Converter) ConvertWithStats(htmlText string) (*Result, error) {
	start := time.Now()

	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	parseDuration := time.Since(parseStart)

	rewriteStart := time.Now()
	stats := c.rewriter.Rewrite(doc.Nodes[0])
	stats.RewriteDuration = time.Since(rewriteStart)
	stats.ParseDuration = parseDuration

	renderStart := time.Now()
	out, err := c.render(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	stats.RenderDuration = time.Since(renderStart)

	stats.InputBytes = len(htmlText)
	stats.OutputBytes = len(out)
	stats.TotalDuration = time.Since(start)

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()

	logger.Debug("conversion complete",
		"generic", stats.GenericElements,
		"promoted", stats.TotalPromoted(),
		"unwrapped", stats.TotalUnwrapped(),
		"duration", stats.TotalDuration)

	return &Result{Content: out, Stats: stats}, nil
}

// Stats returns the stats from the most recent conversion.
func (c *Converter) Stats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// render serializes the rewritten document in the configured format.
func (c *Converter) render(doc *goquery.Document) (string, error) {
	if c.config.Output == OutputText {
		text := doc.Find("body").Text()
		return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " ")), nil
	}

	var out string
	var err error
	if c.config.Fragment {
		out, err = doc.Find("body").Html()
	} else {
		out, err = doc.Html()
	}
	if err != nil {
		return "", err
	}

	if c.config.Pretty {
		out = gohtml.Format(out)
	}
	return out, nil
}
