// Package server exposes the info and download operations over HTTP for
// browser front ends.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cpunion/ytgrab/extractor"
	"github.com/cpunion/ytgrab/fetch"
	"github.com/cpunion/ytgrab/logger"
	"github.com/cpunion/ytgrab/thumbnail"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var log = logger.Get("Server")

const (
	thumbnailPrefix = "/thumbnails/"
	defaultFormat   = "mp4"
	maxBodyBytes    = 64 << 10
)

var formatRegex = regexp.MustCompile(`^[a-z0-9]{2,5}$`)

type Config struct {
	// CacheDir holds thumbnails. It is emptied before every info lookup.
	CacheDir string
	// TempDir receives downloads until they have been sent to the client.
	TempDir string
}

type Server struct {
	svc    *fetch.Service
	config Config
	router *mux.Router
}

func New(svc *fetch.Service, config Config) *Server {
	s := &Server{svc: svc, config: config, router: mux.NewRouter()}

	s.router.HandleFunc("/api/info", s.handleInfo).Methods(http.MethodPost)
	s.router.HandleFunc("/api/download", s.handleDownload).Methods(http.MethodGet)
	s.router.PathPrefix(thumbnailPrefix).Handler(
		http.StripPrefix(thumbnailPrefix, http.FileServer(http.Dir(config.CacheDir))),
	).Methods(http.MethodGet)
	s.router.Use(logMiddleware)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type infoRequest struct {
	URL string `json:"url"`
}

type infoResponse struct {
	Success   bool    `json:"success"`
	Title     string  `json:"title,omitempty"`
	Thumbnail *string `json:"thumbnail"`
	Message   string  `json:"message,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusOK, infoResponse{Message: "invalid URL"})
		return
	}
	if _, err := extractor.NormalizeURL(req.URL); err != nil {
		writeJSON(w, http.StatusOK, infoResponse{Message: "invalid URL", Error: err.Error()})
		return
	}

	if n, err := thumbnail.ClearCache(s.config.CacheDir); err != nil {
		log.Emit(logger.WARNING, "Failed to clear thumbnail cache: %v\n", err)
	} else if n > 0 {
		log.Emit(logger.DEBUG, "Removed %d cached thumbnails\n", n)
	}

	res := s.svc.Info(r.Context(), req.URL, s.config.CacheDir)
	if res.Failed() {
		writeJSON(w, http.StatusOK, infoResponse{Message: "failed to fetch video info", Error: res.Error})
		return
	}

	var thumb *string
	if res.Thumbnail != "" {
		link := thumbnailPrefix + res.Thumbnail
		thumb = &link
	}
	writeJSON(w, http.StatusOK, infoResponse{Success: true, Title: res.Title, Thumbnail: thumb})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "invalid URL", http.StatusBadRequest)
		return
	}
	if _, err := extractor.NormalizeURL(rawURL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = defaultFormat
	}
	if !formatRegex.MatchString(format) {
		http.Error(w, fmt.Sprintf("invalid format %q", format), http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("video_%s.%s", uuid.New(), format)
	target := filepath.Join(s.config.TempDir, filename)
	defer func() {
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Emit(logger.WARNING, "Failed to remove %s: %v\n", target, err)
		}
	}()

	if err := s.svc.Download(r.Context(), rawURL, target, format); err != nil {
		http.Error(w, "download failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, target)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Emit(logger.WARNING, "Failed to write response: %v\n", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Emit(logger.INFO, "%s %s -> %d (%s)\n", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
