package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/amaguregi/folio/internal/app"
	"github.com/amaguregi/folio/internal/content"
	"github.com/amaguregi/folio/internal/logging"
	"github.com/amaguregi/folio/internal/mirror"
)

// Server is the HTTP + WebSocket API surface the editor UI talks to. Content
// paths in the API are always relative to the content root; the server never
// accepts absolute paths or paths escaping the root.
type Server struct {
	cfg      Config
	pipeline *app.Pipeline
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
	hub      *progressHub
}

// NewServer creates a Server with its own Pipeline. The remote store is
// attached lazily on the first deploy so the editor works without
// credentials.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	pipeline, err := app.NewPipeline(cfg.AppConfig, logger.With("app"))
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		router:   chi.NewRouter(),
		logger:   logger,
		hub:      newProgressHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Loopback server for the local editor UI.
				return true
			},
		},
	}
	pipeline.SetNotify(s.hub.broadcast)

	s.routes()
	return s, nil
}

// Pipeline returns the underlying pipeline for advanced use (tests, etc.).
func (s *Server) Pipeline() *app.Pipeline {
	return s.pipeline
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/content", s.optionsHandler("GET"))
	r.Options("/content/{category}", s.optionsHandler("POST"))
	r.Options("/content/files/*", s.optionsHandler("GET, PUT, DELETE"))
	r.Options("/content/next-ordinal", s.optionsHandler("GET"))
	r.Options("/assets/urls", s.optionsHandler("GET"))
	r.Options("/undo", s.optionsHandler("GET"))
	r.Options("/undo/{id}", s.optionsHandler("POST"))
	r.Options("/changes", s.optionsHandler("GET"))
	r.Options("/publish", s.optionsHandler("POST"))
	r.Options("/deploy", s.optionsHandler("POST"))
	r.Options("/history", s.optionsHandler("GET"))

	// Content records
	r.Get("/content", s.handleListContent)
	r.Post("/content/{category}", s.handleCreateContent)
	r.Get("/content/files/*", s.handleReadContent)
	r.Put("/content/files/*", s.handleWriteContent)
	r.Delete("/content/files/*", s.handleDeleteContent)
	r.Get("/content/next-ordinal", s.handleNextOrdinal)

	// Remote asset discovery
	r.Get("/assets/urls", s.handleFindAssetURLs)

	// Undo history
	r.Get("/undo", s.handleListUndo)
	r.Post("/undo/latest", s.handleUndoLatest)
	r.Post("/undo/{id}", s.handleUndo)

	// Pipeline operations
	r.Get("/changes", s.handleCheckChanges)
	r.Post("/publish", s.handlePublish)
	r.Post("/deploy", s.handleDeploy)
	r.Get("/history", s.handleHistory)

	// WebSocket for progress events
	r.Get("/ws/progress", s.handleProgressWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			if len(bodyBytes) > 0 {
				fields = append(fields, logging.F("body_bytes", len(bodyBytes)))
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the pipeline and underlying resources.
func (s *Server) Close() {
	if s.pipeline != nil {
		if err := s.pipeline.Close(); err != nil {
			s.logger.Warn("closing pipeline", logging.F("error", err.Error()))
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, content.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, content.ErrProtected):
		return http.StatusForbidden
	case errors.Is(err, content.ErrInvalidInput), errors.Is(err, content.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, mirror.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, mirror.ErrRemoteOperation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, op string, err error) {
	s.logger.Warn(op, logging.F("error", err.Error()))
	writeError(w, statusFor(err), err.Error())
}

// contentPath resolves the wildcard tail of an API path against the content
// root and refuses anything that would escape it.
func (s *Server) contentPath(r *http.Request) (string, error) {
	rel := chi.URLParam(r, "*")
	if rel == "" {
		return "", fmt.Errorf("%w: empty content path", content.ErrInvalidInput)
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes the content root", content.ErrInvalidInput, rel)
	}
	return filepath.Join(s.pipeline.Store().Root(), rel), nil
}

// --- HTTP handlers ---

// Content records

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	paths, err := s.pipeline.Store().List()
	if err != nil {
		s.writeFailure(w, "listing content", err)
		return
	}

	root := s.pipeline.Store().Root()
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		files = append(files, filepath.ToSlash(rel))
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	category, err := content.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeFailure(w, "creating content", err)
		return
	}

	var body struct {
		Name   string          `json:"name"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	record := content.NewItemRecord(category)
	if len(body.Record) > 0 {
		if err := json.Unmarshal(body.Record, record); err != nil {
			writeError(w, http.StatusBadRequest, "record does not match category shape")
			return
		}
	}

	name := body.Name
	if name == "" {
		n, err := s.pipeline.Store().NextOrdinal(category)
		if err != nil {
			s.writeFailure(w, "creating content", err)
			return
		}
		name = defaultFileName(category, n)
	}

	path, err := s.pipeline.Store().Create(category, name, record)
	if err != nil {
		s.writeFailure(w, "creating content", err)
		return
	}
	s.logger.Info("created content", logging.F("path", path))
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func defaultFileName(category content.Category, ordinal int) string {
	if category == content.CategoryHome {
		return fmt.Sprintf("home%d.json", ordinal)
	}
	return fmt.Sprintf("%s-%d.json", category, ordinal)
}

func (s *Server) handleReadContent(w http.ResponseWriter, r *http.Request) {
	path, err := s.contentPath(r)
	if err != nil {
		s.writeFailure(w, "reading content", err)
		return
	}
	data, err := s.pipeline.Store().Read(path)
	if err != nil {
		s.writeFailure(w, "reading content", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleWriteContent(w http.ResponseWriter, r *http.Request) {
	path, err := s.contentPath(r)
	if err != nil {
		s.writeFailure(w, "writing content", err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	if err := s.pipeline.Store().WriteRaw(path, data); err != nil {
		s.writeFailure(w, "writing content", err)
		return
	}
	s.logger.Info("wrote content", logging.F("path", path))
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleDeleteContent removes a whole file, or a single array element when
// the index query parameter is present. cascade=true also deletes remote
// assets referenced by the removed content.
func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	path, err := s.contentPath(r)
	if err != nil {
		s.writeFailure(w, "deleting content", err)
		return
	}

	q := r.URL.Query()
	cascade := q.Get("cascade") == "true"

	if idxStr := q.Get("index"); idxStr != "" {
		index, err := strconv.Atoi(idxStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "index must be an integer")
			return
		}
		entry, err := s.pipeline.DeleteArrayItem(r.Context(), path, q.Get("field"), index, cascade)
		if err != nil {
			s.writeFailure(w, "deleting array item", err)
			return
		}
		s.logger.Info("deleted array item", logging.F("path", path), logging.F("index", index))
		writeJSON(w, http.StatusOK, entry)
		return
	}

	entry, err := s.pipeline.DeleteFile(r.Context(), path, cascade)
	if err != nil {
		s.writeFailure(w, "deleting content", err)
		return
	}
	s.logger.Info("deleted content", logging.F("path", path))
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleNextOrdinal(w http.ResponseWriter, r *http.Request) {
	category, err := content.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		s.writeFailure(w, "next ordinal", err)
		return
	}
	n, err := s.pipeline.Store().NextOrdinal(category)
	if err != nil {
		s.writeFailure(w, "next ordinal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"next": n})
}

// Remote asset discovery

func (s *Server) handleFindAssetURLs(w http.ResponseWriter, r *http.Request) {
	found, err := s.pipeline.Store().FindObjectURLs()
	if err != nil {
		s.writeFailure(w, "finding asset urls", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// Undo history

func (s *Server) handleListUndo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.UndoLog().Entries())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.pipeline.Undo(id); err != nil {
		s.writeFailure(w, "undoing delete", err)
		return
	}
	s.logger.Info("undid delete", logging.F("id", id))
	writeJSON(w, http.StatusOK, map[string]string{"undone": id})
}

// handleUndoLatest reverses the most recent deletion.
func (s *Server) handleUndoLatest(w http.ResponseWriter, r *http.Request) {
	entry, err := s.pipeline.UndoLatest()
	if err != nil {
		s.writeFailure(w, "undoing latest delete", err)
		return
	}
	s.logger.Info("undid delete", logging.F("id", entry.ID))
	writeJSON(w, http.StatusOK, map[string]string{"undone": entry.ID})
}

// Pipeline operations

func (s *Server) handleCheckChanges(w http.ResponseWriter, r *http.Request) {
	report, err := s.pipeline.CheckChanges()
	if err != nil {
		s.writeFailure(w, "checking changes", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	out, err := s.pipeline.Publish(r.Context())
	if err != nil {
		s.writeFailure(w, "publishing", err)
		return
	}
	s.logger.Info("published site", logging.F("output", out))
	writeJSON(w, http.StatusOK, map[string]string{"output": out})
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureRemote(); err != nil {
		s.writeFailure(w, "deploying", err)
		return
	}
	uploaded, err := s.pipeline.Deploy(r.Context())
	if err != nil {
		s.writeFailure(w, "deploying", err)
		return
	}
	s.logger.Info("deployed site", logging.F("uploaded", uploaded))
	resp := map[string]any{"uploaded": uploaded}
	if remote, ok := s.pipeline.Remote().(interface{ WebsiteURL() string }); ok {
		resp["url"] = remote.WebsiteURL()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ensureRemote attaches the object store on first use. Credentials missing
// or incomplete surface as mirror.ErrNotConfigured.
func (s *Server) ensureRemote() error {
	if s.pipeline.Remote() != nil {
		return nil
	}
	rc, err := mirror.LoadRemoteConfig(s.cfg.AppConfig.RemoteConfigPath)
	if err != nil {
		return err
	}
	store, err := mirror.NewS3Store(context.Background(), rc)
	if err != nil {
		return err
	}
	s.pipeline.SetRemote(store)
	return nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}
	runs, err := s.pipeline.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, "reading history", err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// WebSocket

// handleProgressWS streams pipeline progress events to the client until it
// disconnects. Publish and deploy still run on their own request
// goroutines; this socket only observes.
func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.F("error", err.Error()))
		return
	}
	defer conn.Close()

	events, cancel := s.hub.subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// progressHub fans pipeline events out to websocket subscribers. A slow
// subscriber drops events rather than stalling the pipeline.
type progressHub struct {
	mu   sync.Mutex
	subs map[chan app.Event]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[chan app.Event]struct{})}
}

func (h *progressHub) subscribe() (<-chan app.Event, func()) {
	ch := make(chan app.Event, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *progressHub) broadcast(ev app.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
