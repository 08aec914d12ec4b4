package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/semantify/internal/logger"
	"github.com/jmylchreest/semantify/internal/server"
	"github.com/jmylchreest/semantify/pkg/semantic"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter over HTTP",
	Long: `Serve starts an HTTP server with the following routes:

  GET  /health    liveness check
  GET  /rules     the active rule table
  POST /convert   converted document as a semantic_output.html download
  POST /preview   JSON with the first characters of input and output

POST bodies are raw HTML or a multipart form with an .html/.htm "file" field.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("listen", ":8080", "address to listen on")
	flags.Int("preview-length", server.DefaultPreviewLength, "characters returned by /preview")

	_ = viper.BindPFlag("listen", flags.Lookup("listen"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := converterConfig()
	if err != nil {
		return err
	}
	conv, err := semantic.New(cfg)
	if err != nil {
		return err
	}
	limit, err := maxSize()
	if err != nil {
		return err
	}
	previewLen, _ := cmd.Flags().GetInt("preview-length")

	logger.Debug("serve command starting", "rules", len(conv.Rules()), "max_bytes", limit)
	srv := server.New(conv, server.Options{MaxBytes: limit, PreviewLength: previewLen})
	return srv.ListenAndServe(ctx, viper.GetString("listen"))
}
