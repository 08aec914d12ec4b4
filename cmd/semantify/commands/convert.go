package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/semantify/internal/logger"
	"github.com/jmylchreest/semantify/internal/output"
	"github.com/jmylchreest/semantify/pkg/fetcher"
	"github.com/jmylchreest/semantify/pkg/semantic"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file|url|-]...",
	Short: "Convert HTML files or pages to semantic markup",
	Long: `Convert reads HTML from files, http(s) URLs or stdin ("-" or no
argument), rewrites generic div/span elements and writes the result.

A single input is written to --output or stdout. Several inputs need
--out-dir; each result is named after its source.

Examples:
  semantify convert page.html -o semantic_output.html
  semantify convert a.html b.html --out-dir out/
  semantify convert https://example.com --format markdown
  semantify convert page.html --preview 2000 --stats --stats-format json`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("out-dir", "", "directory for results when converting several inputs")
	flags.String("format", formatHTML, "output format: html, markdown, text")
	flags.Bool("sanitize", false, "strip scripts and unsafe attributes before converting")
	flags.Int("preview", 0, "print the first N characters of input and output to stderr")
	flags.Bool("stats", false, "report conversion stats to stderr")
	flags.String("stats-format", string(output.FormatText), "stats format: text, json, jsonl, yaml")
	flags.Duration("timeout", 30*time.Second, "fetch timeout for URL inputs")

	_ = viper.BindPFlag("format", flags.Lookup("format"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	outPath, _ := cmd.Flags().GetString("output")
	outDir, _ := cmd.Flags().GetString("out-dir")
	if len(inputs) > 1 && outDir == "" {
		return fmt.Errorf("%d inputs given: use --out-dir to convert several inputs", len(inputs))
	}
	if outPath != "" && outDir != "" {
		return fmt.Errorf("--output and --out-dir are mutually exclusive")
	}

	cfg, err := converterConfig()
	if err != nil {
		return err
	}
	format := viper.GetString("format")
	sanitize, _ := cmd.Flags().GetBool("sanitize")
	p, err := newPipeline(cfg, format, sanitize)
	if err != nil {
		return err
	}
	limit, err := maxSize()
	if err != nil {
		return err
	}
	logger.Debug("convert command starting", "inputs", len(inputs), "format", format,
		"pipeline", p.cleaner.Name(), "rules", len(p.converter.Rules()))

	var reports output.Writer
	if withStats, _ := cmd.Flags().GetBool("stats"); withStats {
		statsFormat, _ := cmd.Flags().GetString("stats-format")
		reports, err = output.NewWriter(cmd.ErrOrStderr(), output.Format(statsFormat))
		if err != nil {
			return err
		}
		defer func() { _ = reports.Close() }()
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	previewLen, _ := cmd.Flags().GetInt("preview")
	fetchCfg := fetcher.StaticConfig{Timeout: timeout}
	if limit > 0 {
		// One byte over the limit so oversized pages are reported, not truncated
		fetchCfg.MaxBodySize = int(limit + 1)
	}
	src := &sourceReader{
		stdin:   cmd.InOrStdin(),
		limit:   limit,
		fetcher: fetcher.NewStatic(fetchCfg),
	}

	var failed int
	for _, input := range inputs {
		dest := outPath
		if outDir != "" {
			dest = filepath.Join(outDir, outputName(input, p.ext))
		}
		report, err := convertOne(ctx, cmd, p, src, input, dest, previewLen)
		if err != nil {
			if len(inputs) == 1 {
				return err
			}
			logger.Error("conversion failed", "source", input, "error", err)
			failed++
			continue
		}
		if reports != nil {
			if err := reports.Write(report); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

func convertOne(ctx context.Context, cmd *cobra.Command, p *pipeline, src *sourceReader, input, dest string, previewLen int) (output.Report, error) {
	data, contentType, err := src.read(ctx, input)
	if err != nil {
		return output.Report{}, err
	}

	text, cs := semantic.DecodeBytes(data, contentType)
	content, err := p.cleaner.Clean(text)
	if err != nil {
		return output.Report{}, fmt.Errorf("%s: %w", input, err)
	}
	stats := p.converter.Stats()

	if previewLen > 0 {
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "--- original (%s) ---\n%s\n", input, truncate(text, previewLen))
		fmt.Fprintf(w, "--- converted ---\n%s\n", truncate(content, previewLen))
	}

	if err := writeResult(cmd.OutOrStdout(), dest, content); err != nil {
		return output.Report{}, err
	}
	logger.Info("converted", "source", input, "destination", destName(dest),
		"promoted", stats.TotalPromoted(), "unwrapped", stats.TotalUnwrapped())

	return output.Report{
		Source:      input,
		Destination: dest,
		Charset:     cs,
		Stats:       stats,
	}, nil
}

// sourceReader loads raw input from stdin, a file or a URL.
type sourceReader struct {
	stdin   io.Reader
	limit   int64
	fetcher fetcher.Fetcher
}

func (s *sourceReader) read(ctx context.Context, input string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch {
	case input == "-":
		r := s.stdin
		if s.limit > 0 {
			r = io.LimitReader(r, s.limit+1)
		}
		data, err = io.ReadAll(r)
	case isURL(input):
		var content fetcher.Content
		content, err = s.fetcher.Fetch(ctx, input)
		data, contentType = content.Body, content.ContentType
	default:
		data, err = os.ReadFile(input) //#nosec G304 -- CLI tool reads user-specified input files
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", input, err)
	}
	if s.limit > 0 && int64(len(data)) > s.limit {
		return nil, "", fmt.Errorf("%s exceeds max size of %s", input, humanize.Bytes(uint64(s.limit)))
	}
	return data, contentType, nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// outputName derives a result file name from a source.
func outputName(input, ext string) string {
	if input == "-" {
		return "stdin" + ext
	}
	base := filepath.Base(input)
	if isURL(input) {
		u, _ := url.Parse(input)
		base = path.Base(u.Path)
		if base == "/" || base == "." {
			return u.Hostname() + ext
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func writeResult(stdout io.Writer, dest, content string) error {
	if dest == "" {
		_, err := io.WriteString(stdout, content+"\n")
		return err
	}
	if err := os.WriteFile(dest, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func destName(dest string) string {
	if dest == "" {
		return "stdout"
	}
	return dest
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
