// Package httpapi exposes the directory over HTTP.
package httpapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/filesoup/directory"
	"github.com/krisalay/filesoup/internal/logger"
	"github.com/krisalay/filesoup/metrics"
	"github.com/krisalay/filesoup/types"
)

// envelopeBytes is the room left around the payload for the rest of the
// request document.
const envelopeBytes = 1 << 10

// BodyLimit returns the request body cap that still admits every payload of
// up to maxPayload bytes. A JSON string may spell each byte as a six byte
// \uXXXX escape.
func BodyLimit(maxPayload int) int64 {
	if maxPayload <= 0 {
		maxPayload = directory.DefaultMaxPayloadLength
	}
	return 6*int64(maxPayload) + envelopeBytes
}

// Directory is what the handlers need from the directory service.
type Directory interface {
	Create(payload string) (types.Entry, error)
	Lookup(id string) (types.Entry, bool)
	Len() int
}

// NotFoundFunc builds the error reported for a missing id.
type NotFoundFunc func(id string) error

// Options configures a Handler. Zero values select the defaults.
type Options struct {
	// MaxPayloadLength is the payload limit enforced by the directory.
	// It sizes the body cap when MaxBodyBytes is not set.
	MaxPayloadLength int

	// MaxBodyBytes overrides the request body cap.
	MaxBodyBytes int64

	NotFound NotFoundFunc

	// Stats, if set, backs GET /stats.
	Stats func() metrics.Snapshot
}

// NewFileRequest is the body of POST /files.
type NewFileRequest struct {
	MagnetURI string `json:"magnetUri"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Entries  int              `json:"entries"`
	Counters metrics.Snapshot `json:"counters"`
	HitRatio float64          `json:"hitRatio"`
}

// Handler routes the HTTP surface of the directory.
type Handler struct {
	dir  Directory
	opts Options
	mux  *http.ServeMux
}

// New registers the directory routes. GET /stats is only served when
// opts.Stats is set.
func New(dir Directory, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = BodyLimit(opts.MaxPayloadLength)
	}
	if opts.NotFound == nil {
		opts.NotFound = func(id string) error {
			return errors.WithContext(errors.New(errors.CodeNotFound, "file not found"), "id", id)
		}
	}

	h := &Handler{dir: dir, opts: opts, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /files", h.createFile)
	h.mux.HandleFunc("GET /files/{id}", h.getFile)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	if opts.Stats != nil {
		h.mux.HandleFunc("GET /stats", h.stats)
	}
	return h
}

// Handle mounts an extra handler, e.g. the MCP endpoint.
func (h *Handler) Handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

// ServeHTTP dispatches r and logs its outcome at debug level.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	if _, pattern := h.mux.Handler(r); pattern == "" {
		h.unrouted(rec, r)
	} else {
		h.mux.ServeHTTP(rec, r)
	}
	logger.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
}

// unrouted answers requests no pattern matched. The mux decides between
// 404 and 405; the reply carries the same error document as every other route.
func (h *Handler) unrouted(w http.ResponseWriter, r *http.Request) {
	fallback, _ := h.mux.Handler(r)
	seen := &headerOnly{header: http.Header{}, status: http.StatusNotFound}
	fallback.ServeHTTP(seen, r)

	if seen.status == http.StatusMethodNotAllowed {
		if allow := seen.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		writeErrorStatus(w, http.StatusMethodNotAllowed, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "method not allowed"), "method", r.Method))
		return
	}
	writeErrorStatus(w, http.StatusNotFound, errors.WithContext(
		errors.New(errors.CodeNotFound, "route not found"), "path", r.URL.Path))
}

func (h *Handler) createFile(w http.ResponseWriter, r *http.Request) {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeErrorStatus(w, http.StatusUnsupportedMediaType, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "request body must be application/json"),
			"contentType", r.Header.Get("Content-Type")))
		return
	}

	var req NewFileRequest
	body := http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorStatus(w, http.StatusRequestEntityTooLarge, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidInput, "request body too large"),
				"limit", tooLarge.Limit))
			return
		}
		writeError(w, errors.Wrap(err, errors.CodeInvalidInput, "invalid request body"))
		return
	}

	ent, err := h.dir.Create(req.MagnetURI)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Debugf("shared %s", ent.ID)
	writeJSON(w, http.StatusOK, ent)
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ent, ok := h.dir.Lookup(id)
	if !ok {
		writeError(w, h.opts.NotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	snap := h.opts.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Entries:  h.dir.Len(),
		Counters: snap,
		HitRatio: snap.HitRatio(),
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, statusFor(errors.GetCode(err)), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status == http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, errors.ToJSON(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("write response: %v", err)
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

// Flush lets streaming handlers mounted on the mux keep working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// headerOnly records what the mux fallback would answer without sending it.
type headerOnly struct {
	header http.Header
	status int
}

func (h *headerOnly) Header() http.Header         { return h.header }
func (h *headerOnly) Write(b []byte) (int, error) { return len(b), nil }
func (h *headerOnly) WriteHeader(status int)      { h.status = status }
