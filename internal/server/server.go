// Package server is the HTTP boundary: one generation endpoint per document
// type, signed file downloads and a health probe. Handlers translate the
// service's error taxonomy to status codes; the caller always gets either
// PDF bytes or a JSON error body, never a half-written stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/locadoc/locadoc/internal/document"
	"github.com/locadoc/locadoc/internal/storage"
	"github.com/locadoc/locadoc/internal/store"
)

// Generator is the document service dependency.
type Generator interface {
	GenerateLease(ctx context.Context, req document.Request) (*document.Result, error)
	GenerateInventory(ctx context.Context, req document.Request) (*document.Result, error)
	GenerateReceipt(ctx context.Context, req document.Request) (*document.Result, error)
}

// Files serves stored blobs behind signed URLs.
type Files interface {
	Download(path string) ([]byte, error)
	VerifySignedURL(path, exp, sig string) (string, error)
}

// Server hosts the HTTP API.
type Server struct {
	addr      string
	generator Generator
	files     Files
	log       zerolog.Logger
}

// New builds a server listening on addr.
func New(addr string, generator Generator, files Files, log zerolog.Logger) *Server {
	return &Server{addr: addr, generator: generator, files: files, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/documents").Subrouter()
	api.HandleFunc("/lease", s.handleGenerate(s.generator.GenerateLease)).Methods(http.MethodPost)
	api.HandleFunc("/inventory", s.handleGenerate(s.generator.GenerateInventory)).Methods(http.MethodPost)
	api.HandleFunc("/receipt", s.handleGenerate(s.generator.GenerateReceipt)).Methods(http.MethodPost)

	r.PathPrefix("/files/").HandlerFunc(s.handleFile).Methods(http.MethodGet)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleGenerate(generate func(context.Context, document.Request) (*document.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req document.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.RecordID <= 0 {
			writeErr(w, http.StatusBadRequest, "record_id is required")
			return
		}

		res, err := generate(r.Context(), req)
		if err != nil {
			s.writeGenerateError(w, err)
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
		w.Header().Set("X-Used-Template", fmt.Sprintf("%t", res.UsedTemplate))
		if res.Stored {
			w.Header().Set("X-Document-Stored", res.StoragePath)
		}
		if res.EmailSent {
			w.Header().Set("X-Email-Sent", "true")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Bytes)
	}
}

func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	var verr *document.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErr(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "record not found")
	default:
		s.log.Error().Err(err).Msg("document generation failed")
		writeErr(w, http.StatusInternalServerError, "document generation failed")
	}
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/files/"):]
	q := r.URL.Query()

	verified, err := s.files.VerifySignedURL(path, q.Get("exp"), q.Get("sig"))
	if err != nil {
		writeErr(w, http.StatusForbidden, "invalid or expired link")
		return
	}

	b, err := s.files.Download(verified)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "file not found")
			return
		}
		s.log.Error().Err(err).Str("path", verified).Msg("file download failed")
		writeErr(w, http.StatusInternalServerError, "download failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(b)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
