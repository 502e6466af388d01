package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigurra/expense-extractor/internal"
	"github.com/gigurra/expense-extractor/internal/logger"
)

//go:embed index.html
var indexHTML []byte

const (
	maxFormSize    = 64 << 20
	exportFilename = "whatsapp_expenses.xlsx"
	xlsxMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Server serves the upload page and runs one batch per upload
type Server struct {
	pipeline  *internal.Pipeline
	basicAuth BasicAuth
	log       zerolog.Logger
	mux       *http.ServeMux
}

// NewServer creates a new Server
func NewServer(pipeline *internal.Pipeline, basicAuth BasicAuth, log zerolog.Logger) *Server {
	s := &Server{
		pipeline:  pipeline,
		basicAuth: basicAuth,
		log:       log,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("POST /extract", s.requireAuth(s.handleExtract))
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// shutdownTimeout bounds how long in-flight batches may finish after ctx is done
const shutdownTimeout = 30 * time.Second

// Start listens on addr until ctx is done or the server fails.
// A shutdown caused by ctx returns nil.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.basicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.basicAuth.Password)) == 1
	return userOK && passOK
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="expense-extractor"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		http.Error(w, fmt.Sprintf("invalid upload: %v", err), http.StatusBadRequest)
		return
	}

	// Files keep the order the browser sent them in
	var uploads []internal.Upload
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("reading %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("reading %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = internal.DetectContentType(header.Filename, data)
		}
		uploads = append(uploads, internal.Upload{
			Source:      header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	ctx := logger.WithContext(r.Context(), s.log)
	records, err := s.pipeline.Run(ctx, uploads)
	if err != nil {
		s.log.Error().Err(err).Msg("Batch failed")
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		if err := internal.PrintRecordsJSON(w, records); err != nil {
			s.log.Error().Err(err).Msg("Writing JSON response failed")
		}
		return
	}

	var buf bytes.Buffer
	if err := internal.WriteXLSX(&buf, records); err != nil {
		s.log.Error().Err(err).Msg("Export failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	w.Write(buf.Bytes())
}
