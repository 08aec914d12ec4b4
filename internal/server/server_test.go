package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/semantify/pkg/semantic"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	conv, err := semantic.New(&semantic.Config{Fragment: true})
	if err != nil {
		t.Fatalf("semantic.New() error = %v", err)
	}
	return New(conv, opts)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, Options{}), httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRules(t *testing.T) {
	rec := do(t, newTestServer(t, Options{}), httptest.NewRequest(http.MethodGet, "/rules", nil))

	var got struct {
		Rules semantic.Rules `json:"rules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Rules) != len(semantic.DefaultRules()) || got.Rules[0].Keyword != "header" {
		t.Errorf("unexpected rules: %v", got.Rules)
	}
}

func TestConvert_RawBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`<div class="navbar top" id="nav1">X</div>`))
	req.Header.Set("Content-Type", "text/html")

	rec := do(t, newTestServer(t, Options{}), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != `<nav class="navbar top" id="nav1">X</nav>` {
		t.Errorf("unexpected body: %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, DownloadName) {
		t.Errorf("unexpected content disposition: %s", cd)
	}
}

func TestConvert_DeclaredCharset(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("<span class=\"footer\">caf\xe9</span>"))
	req.Header.Set("Content-Type", "text/html; charset=iso-8859-1")

	rec := do(t, newTestServer(t, Options{}), req)

	if got := rec.Body.String(); got != `<footer class="footer">café</footer>` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestConvert_Upload(t *testing.T) {
	req := multipartRequest(t, "/convert", "page.HTML", `<div class="wrapper">A<b>B</b></div>`)

	rec := do(t, newTestServer(t, Options{}), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != `A<b>B</b>` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestConvert_BadInput(t *testing.T) {
	tests := []struct {
		name string
		req      func(t *testing.T) *http.Request
		maxBytes int64
		code     int
	}{
		{
			name: "empty body",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(""))
			},
			code: http.StatusBadRequest,
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/convert", "notes.txt", "<div></div>")
			},
			code: http.StatusUnsupportedMediaType,
		},
		{
			name: "empty upload",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/convert", "page.htm", "")
			},
			code: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(strings.Repeat("x", 64)))
			},
			maxBytes: 32,
			code:     http.StatusRequestEntityTooLarge,
		},
		{
			name: "wrong method",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/convert", nil)
			},
			code: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{MaxBytes: tt.maxBytes})
			rec := do(t, s, tt.req(t))
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPreview(t *testing.T) {
	in := `<div class="post">` + strings.Repeat("é", 50) + `</div>`
	req := httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(in))

	rec := do(t, newTestServer(t, Options{PreviewLength: 30}), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Original != truncate(in, 30) {
		t.Errorf("unexpected original preview: %q", got.Original)
	}
	if !strings.HasPrefix(got.Converted, `<article class="post">`) || len([]rune(got.Converted)) != 30 {
		t.Errorf("unexpected converted preview: %q", got.Converted)
	}
	if got.Stats == nil || got.Stats.TotalPromoted() != 1 {
		t.Errorf("unexpected stats: %+v", got.Stats)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Errorf("expected hé, got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
