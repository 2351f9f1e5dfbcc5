package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytz/internal/extract"
	"github.com/desertthunder/ytz/internal/pipeline"
	"github.com/desertthunder/ytz/internal/shared"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Pipeline defines the batch processing operations the handlers depend on.
//
// This abstraction allows for easier testing and decoupling from the concrete
// processor implementation.
type Pipeline interface {
	// Process runs one reference through the full item pipeline.
	Process(ctx context.Context, ref string) pipeline.Result

	// Run processes all references with a bounded worker pool.
	Run(ctx context.Context, refs []string, opts pipeline.BatchOpts) (*pipeline.Outcome, error)
}

// Expander resolves a playlist reference into ordered item references.
//
// An empty result means the expansion failed or the playlist is empty; the
// handlers surface that as a 400 rather than running an empty batch.
type Expander interface {
	ExpandPlaylist(ctx context.Context, ref string) []string
}

// Recorder persists batch outcomes for the history surface.
type Recorder interface {
	RecordBatch(outcome *pipeline.Outcome) (string, error)
}

// DownloadHandler serves the download endpoints: playlist expansion and the
// single-item and batch download variants.
type DownloadHandler struct {
	pipe      Pipeline
	expander  Expander
	recorder  Recorder // optional, nil disables history
	rateLimit float64
	logger    *log.Logger
}

// DownloadHandlerOpts contains dependencies for a DownloadHandler.
type DownloadHandlerOpts struct {
	Pipeline  Pipeline
	Expander  Expander
	Recorder  Recorder
	RateLimit float64
	Logger    *log.Logger
}

// NewDownloadHandler creates a DownloadHandler with the provided collaborators.
func NewDownloadHandler(opts DownloadHandlerOpts) *DownloadHandler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &DownloadHandler{
		pipe:      opts.Pipeline,
		expander:  opts.Expander,
		recorder:  opts.Recorder,
		rateLimit: opts.RateLimit,
		logger:    opts.Logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *DownloadHandler) Routes() []string {
	return []string{"/download", "/get_urls"}
}

// ServeHTTP dispatches to the endpoint matching the request path.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/get_urls":
		h.handleGetURLs(w, r)
	case "/download":
		h.handleDownload(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleGetURLs expands one playlist reference into item references.
//
// Accepts the reference as a form field or JSON body. A missing reference or
// failed/empty expansion yields a 400 error object.
func (h *DownloadHandler) handleGetURLs(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.FormValue("url"))
	if ref == "" && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			ref = strings.TrimSpace(body.URL)
		}
	}

	if ref == "" {
		writeJSONError(w, http.StatusBadRequest, "no url provided")
		return
	}

	urls := h.expander.ExpandPlaylist(r.Context(), ref)
	if len(urls) == 0 {
		writeJSONError(w, http.StatusBadRequest, "failed to extract playlist or playlist is empty")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"urls": urls})
}

// handleDownload serves both download variants.
//
// A youtube_url field alone selects the single-item variant returning one MP3;
// playlist_url and/or youtube_urls select the batch variant returning a zip
// with an errors.txt manifest for partial failures.
func (h *DownloadHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	playlistURL := strings.TrimSpace(r.FormValue("playlist_url"))
	urlsText := strings.TrimSpace(r.FormValue("youtube_urls"))
	single := strings.TrimSpace(r.FormValue("youtube_url"))

	if single != "" && playlistURL == "" && urlsText == "" {
		h.serveSingle(w, r, single)
		return
	}

	var refs []string
	if playlistURL != "" {
		refs = h.expander.ExpandPlaylist(r.Context(), playlistURL)
		if len(refs) == 0 {
			http.Error(w, "Failed to extract playlist or playlist is empty", http.StatusBadRequest)
			return
		}
	}
	refs = append(refs, extract.NormalizeLines(urlsText)...)

	if len(refs) == 0 {
		http.Error(w, "No YouTube links provided", http.StatusBadRequest)
		return
	}

	opts := pipeline.BatchOpts{
		Workers:   pipeline.ParseWorkers(r.FormValue("workers")),
		RateLimit: h.rateLimit,
	}

	outcome, err := h.pipe.Run(r.Context(), refs, opts)
	if err != nil {
		h.logger.Error("batch run failed", "error", err)
		http.Error(w, "Failed to process batch", http.StatusInternalServerError)
		return
	}

	h.record(outcome)

	data, err := pipeline.BuildArchive(outcome)
	if err != nil {
		h.logger.Error("archive assembly failed", "error", err)
		http.Error(w, "Failed to assemble archive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.ArchiveName))
	w.Write(data)
}

// serveSingle processes one reference and returns the encoded file directly.
func (h *DownloadHandler) serveSingle(w http.ResponseWriter, r *http.Request, raw string) {
	refs := extract.NormalizeLines(raw)
	if len(refs) == 0 {
		http.Error(w, "Error: Invalid YouTube URL", http.StatusBadRequest)
		return
	}

	res := h.pipe.Process(r.Context(), refs[0])
	if !res.Success() {
		h.logger.Error("single download failed", "ref", refs[0], "error", res.Err)
		http.Error(w, fmt.Sprintf("An error occurred: %v", res.Err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Write(res.Payload)
}

// record persists the outcome when a recorder is configured, best effort.
func (h *DownloadHandler) record(outcome *pipeline.Outcome) {
	if h.recorder == nil {
		return
	}
	if id, err := h.recorder.RecordBatch(outcome); err != nil {
		h.logger.Warn("failed to record batch history", "error", err)
	} else {
		h.logger.Debug("recorded batch", "batch_id", id)
	}
}

// IndexHandler serves the HTML submission form.
type IndexHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *IndexHandler) Routes() []string {
	return []string{"/{$}"}
}

// ServeHTTP renders the index page.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTemplate.Execute(w, map[string]int{
		"DefaultWorkers": pipeline.DefaultWorkers,
		"MinWorkers":     pipeline.MinWorkers,
		"MaxWorkers":     pipeline.MaxWorkers,
	})
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP writes the health status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
