// Package handlers provides HTTP request handlers for the drug mentions API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/metrics"
	"github.com/giygas/drug-mentions/publicationsparser"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
	results       *cache.Cache
	defaultDepth  int
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// Query results are cached per snapshot for cacheTTL.
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator,
	healthChecker interfaces.HealthChecker, defaultDepth int, cacheTTL time.Duration) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
		results:       cache.New(cacheTTL, 2*cacheTTL),
		defaultDepth:  defaultDepth,
	}
}

// CoMentionsResponse is the body of the co-mentions endpoint
type CoMentionsResponse struct {
	Drug        string   `json:"drug"`
	Depth       int      `json:"depth"`
	CoMentioned []string `json:"co_mentioned"`
}

// JournalCount is one entry of the journal coverage endpoint
type JournalCount struct {
	Journal   string `json:"journal"`
	DrugCount int    `json:"drug_count"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondWithSnapshot writes a 200 JSON response computed from snap
func (h *HTTPHandlerImpl) respondWithSnapshot(w http.ResponseWriter, snap *interfaces.Snapshot, payload any) {
	if !snap.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", snap.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	h.RespondWithJSON(w, http.StatusOK, payload)
}

// respondWithQueryError maps errors of the mentions package to HTTP statuses
func (h *HTTPHandlerImpl) respondWithQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mentions.ErrInvalidInput):
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, mentions.ErrNoCoverageData):
		h.RespondWithError(w, http.StatusNotFound, "No journal mentions any drug")
	default:
		logging.Error("Query failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// checkETag sets the ETag of snap and reports whether the client already holds it.
// Every response body is a pure function of the snapshot, so its id identifies it.
func (h *HTTPHandlerImpl) checkETag(w http.ResponseWriter, r *http.Request, snap *interfaces.Snapshot) bool {
	id := snap.ID
	if id == "" {
		return false
	}
	etag := `"` + id + `"`
	w.Header().Set("ETag", etag)

	for candidate := range strings.SplitSeq(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// drugParam reads, validates and normalizes the {drug} path parameter
func (h *HTTPHandlerImpl) drugParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "drug")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	if err := h.validator.ValidateInput(raw); err != nil {
		logging.Warn("Unusual user input", "drug", raw)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return publicationsparser.CleanText(raw), true
}

// cached returns the value stored under key for snap, computing it on a miss.
// compute must read snap only.
func (h *HTTPHandlerImpl) cached(snap *interfaces.Snapshot, query, key string, compute func() (any, error)) (any, error) {
	key = snap.ID + ":" + query + ":" + key
	if v, found := h.results.Get(key); found {
		metrics.RecordCacheLookup(query, true)
		return v, nil
	}
	metrics.RecordCacheLookup(query, false)

	v, err := compute()
	if err != nil {
		return nil, err
	}
	h.results.SetDefault(key, v)
	return v, nil
}

// ListDrugs returns the per-drug report of every indexed drug
func (h *HTTPHandlerImpl) ListDrugs(w http.ResponseWriter, r *http.Request) {
	snap := h.dataStore.GetSnapshot()
	if h.checkETag(w, r, snap) {
		return
	}
	h.respondWithSnapshot(w, snap, snap.DrugReport)
}

// GetDrug returns the journals and dates a drug is mentioned in
func (h *HTTPHandlerImpl) GetDrug(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.drugParam(w, r)
	if !ok {
		return
	}

	snap := h.dataStore.GetSnapshot()
	entry, exists := snap.DrugEntry(drug)
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Drug not found")
		return
	}

	if h.checkETag(w, r, snap) {
		return
	}
	h.respondWithSnapshot(w, snap, entry)
}

// CoMentions returns the drugs reachable from {drug} through shared pubmed journals
func (h *HTTPHandlerImpl) CoMentions(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.drugParam(w, r)
	if !ok {
		return
	}

	depth, err := h.validator.ValidateDepth(r.URL.Query().Get("depth"), h.defaultDepth)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.dataStore.GetSnapshot()
	if !snap.Index.Has(drug) {
		h.RespondWithError(w, http.StatusNotFound, "Drug not found")
		return
	}

	if h.checkETag(w, r, snap) {
		return
	}

	result, err := h.cached(snap, "co_mentions", fmt.Sprintf("%s:%d", drug, depth), func() (any, error) {
		drugs, err := mentions.CoMentioned(snap.Index, drug, depth)
		if err != nil {
			return nil, err
		}
		return CoMentionsResponse{Drug: drug, Depth: depth, CoMentioned: drugs}, nil
	})
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}

	h.respondWithSnapshot(w, snap, result)
}

// TopJournal returns the journal mentioning the most distinct drugs
func (h *HTTPHandlerImpl) TopJournal(w http.ResponseWriter, r *http.Request) {
	snap := h.dataStore.GetSnapshot()
	if h.checkETag(w, r, snap) {
		return
	}

	result, err := h.cached(snap, "top_journal", "", func() (any, error) {
		top, err := mentions.TopJournal(snap.Index)
		if err != nil {
			return nil, err
		}
		return JournalCount{Journal: top.Journal, DrugCount: top.DrugCount}, nil
	})
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}

	h.respondWithSnapshot(w, snap, result)
}

// JournalCoverage returns every journal with its distinct drug count,
// most covered first and ties by name
func (h *HTTPHandlerImpl) JournalCoverage(w http.ResponseWriter, r *http.Request) {
	snap := h.dataStore.GetSnapshot()
	if h.checkETag(w, r, snap) {
		return
	}

	result, err := h.cached(snap, "coverage", "", func() (any, error) {
		coverage := mentions.JournalCoverageOf(snap.Index)
		counts := make([]JournalCount, 0, len(coverage))
		for journal, count := range coverage {
			counts = append(counts, JournalCount{Journal: journal, DrugCount: count})
		}
		slices.SortFunc(counts, func(a, b JournalCount) int {
			return cmp.Or(cmp.Compare(b.DrugCount, a.DrugCount), cmp.Compare(a.Journal, b.Journal))
		})
		return counts, nil
	})
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}

	h.respondWithSnapshot(w, snap, result)
}

// DataQuality returns the data quality report of the last build
func (h *HTTPHandlerImpl) DataQuality(w http.ResponseWriter, r *http.Request) {
	snap := h.dataStore.GetSnapshot()
	if snap.Quality == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "No build has completed yet")
		return
	}

	if h.checkETag(w, r, snap) {
		return
	}
	h.respondWithSnapshot(w, snap, snap.Quality)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.healthChecker.HealthCheck()

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"cached":     h.results.ItemCount(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
