// Package server exposes the semantic converter over HTTP: upload markup,
// get the converted document back as a download or a JSON preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/semantify/internal/logger"
	"github.com/jmylchreest/semantify/pkg/semantic"
)

const (
	// DownloadName is the file name offered for converted documents.
	DownloadName = "semantic_output.html"

	// DefaultMaxBytes bounds request bodies when Options.MaxBytes is zero.
	DefaultMaxBytes = 10 << 20

	// DefaultPreviewLength is the number of characters shown by /preview.
	DefaultPreviewLength = 2000
)

// Options configures the server.
type Options struct {
	MaxBytes      int64
	PreviewLength int
}

// Server serves conversions.
type Server struct {
	converter  *semantic.Converter
	maxBytes   int64
	previewLen int
	router     chi.Router
}

// New creates a server around conv.
func New(conv *semantic.Converter, opts Options) *Server {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = DefaultPreviewLength
	}
	s := &Server{
		converter:  conv,
		maxBytes:   opts.MaxBytes,
		previewLen: opts.PreviewLength,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/rules", s.handleRules)
	r.Post("/convert", s.handleConvert)
	r.Post("/preview", s.handlePreview)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rules": s.converter.Rules()})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	_, result, source, ok := s.convertRequest(w, r)
	if !ok {
		return
	}
	logger.Info("converted", "source", source, "request_id", middleware.GetReqID(r.Context()),
		"promoted", result.Stats.TotalPromoted(), "unwrapped", result.Stats.TotalUnwrapped())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": DownloadName}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.Content)
}

type previewResponse struct {
	Original  string          `json:"original"`
	Converted string          `json:"converted"`
	Stats     *semantic.Stats `json:"stats"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	input, result, _, ok := s.convertRequest(w, r)
	if !ok {
		return
	}
	original, _ := semantic.DecodeBytes(input, contentTypeFor(r))
	writeJSON(w, http.StatusOK, previewResponse{
		Original:  truncate(original, s.previewLen),
		Converted: truncate(result.Content, s.previewLen),
		Stats:     result.Stats,
	})
}

func (s *Server) convertRequest(w http.ResponseWriter, r *http.Request) ([]byte, *semantic.Result, string, bool) {
	input, source, ok := s.readInput(w, r)
	if !ok {
		return nil, nil, "", false
	}
	result, err := s.converter.ConvertBytes(input, contentTypeFor(r))
	if err != nil {
		s.conversionFailed(w, source, err)
		return nil, nil, "", false
	}
	return input, result, source, true
}

func (s *Server) conversionFailed(w http.ResponseWriter, source string, err error) {
	logger.Error("conversion failed", "source", source, "error", err)
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": semantic.UnavailableMessage})
}

// readInput returns the uploaded markup: the "file" field of a multipart
// form, or the raw request body.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readUpload(w, r)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.readFailed(w, err)
		return nil, "", false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty request body"))
		return nil, "", false
	}
	return data, "body", true
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		s.readFailed(w, err)
		return nil, "", false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return nil, "", false
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if ext != ".html" && ext != ".htm" {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported file type %q, expected .html or .htm", ext))
		return nil, "", false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		s.readFailed(w, err)
		return nil, "", false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty file"))
		return nil, "", false
	}
	return data, hdr.Filename, true
}

func (s *Server) readFailed(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("input exceeds %d bytes", s.maxBytes))
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

// contentTypeFor returns the charset hint for the body. Multipart uploads
// carry their own parts, so only raw bodies pass their header through.
func contentTypeFor(r *http.Request) string {
	if r.MultipartForm != nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
