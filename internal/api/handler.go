package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/explorenyc/eventscout/internal/aggregate"
	"github.com/explorenyc/eventscout/internal/config"
	"github.com/explorenyc/eventscout/internal/event"
	"github.com/explorenyc/eventscout/internal/metrics"
	"github.com/explorenyc/eventscout/internal/recommend"
	"github.com/explorenyc/eventscout/internal/timeframe"
	"github.com/explorenyc/eventscout/internal/tools"
)

// Handler holds all HTTP handler dependencies. The aggregator is swapped
// atomically on config hot-reload, so in-flight requests keep the instance
// they started with.
type Handler struct {
	agg      atomic.Pointer[aggregate.Aggregator]
	loader   *config.Loader
	recTool  *tools.Recommendations
	cooldown *cooldownGate
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(agg *aggregate.Aggregator, loader *config.Loader) *Handler {
	h := &Handler{
		loader:  loader,
		recTool: tools.NewRecommendations(),
		cooldown: newCooldownGate(
			time.Duration(loader.Config().Server.QueryCooldownSeconds) * time.Second),
		mux: http.NewServeMux(),
	}
	h.agg.Store(agg)

	h.mux.HandleFunc("POST /v1/tools/search", h.toolSearch)
	h.mux.HandleFunc("POST /v1/tools/recommendations", h.toolRecommendations)
	h.mux.HandleFunc("POST /v1/search", h.search)
	h.mux.HandleFunc("POST /v1/recommendations", h.recommendations)
	h.mux.HandleFunc("POST /v1/query/annotate", h.annotateQuery)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /v1/categories", h.categories)
	h.mux.HandleFunc("GET /v1/sources", h.sources)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return h
}

// ServeHTTP routes through the logging middleware.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	loggingMiddleware(h.mux).ServeHTTP(w, r)
}

// SwapAggregator replaces the aggregator after a config reload.
func (h *Handler) SwapAggregator(agg *aggregate.Aggregator) {
	h.agg.Store(agg)
}

// searchTool builds the tool wrapper over the current aggregator using the
// current search defaults.
func (h *Handler) searchTool() *tools.Search {
	cfg := h.loader.Config()
	return tools.NewSearch(h.agg.Load(),
		tools.WithDefaultLocation(cfg.Search.DefaultLocation),
		tools.WithLimitPerSource(cfg.Search.LimitPerSource),
		tools.WithConcurrentSearch(cfg.Search.Concurrent),
	)
}

type toolSearchRequest struct {
	Query string `json:"query"`
}

type toolResponse struct {
	Result string `json:"result"`
}

// POST /v1/tools/search — string-in, string-out search for the agent layer.
func (h *Handler) toolSearch(w http.ResponseWriter, r *http.Request) {
	if !h.gateQuery(w) {
		return
	}
	var req toolSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	writeJSON(w, http.StatusOK, toolResponse{Result: h.searchTool().Run(r.Context(), req.Query)})
}

type toolRecommendRequest struct {
	Preferences string `json:"preferences"`
	Events      string `json:"events"`
}

// POST /v1/tools/recommendations — string-in, string-out recommendations.
func (h *Handler) toolRecommendations(w http.ResponseWriter, r *http.Request) {
	if !h.gateQuery(w) {
		return
	}
	var req toolRecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	writeJSON(w, http.StatusOK, toolResponse{
		Result: h.recTool.Run(r.Context(), req.Preferences, req.Events),
	})
}

type searchRequest struct {
	Location   string   `json:"location"`
	Categories []string `json:"categories"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	TimeFrame  string   `json:"time_frame"`
	Keywords   string   `json:"keywords"`
	Limit      int      `json:"limit_per_source"`
}

// POST /v1/search — structured search over all configured sources. A named
// time frame fills in the date bounds when explicit dates are absent.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}

	cfg := h.loader.Config()
	c := aggregate.Criteria{
		Location:       cfg.Search.DefaultLocation,
		Categories:     req.Categories,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Keywords:       req.Keywords,
		LimitPerSource: cfg.Search.LimitPerSource,
	}
	if req.Location != "" {
		c.Location = req.Location
	}
	if req.Limit > 0 {
		c.LimitPerSource = req.Limit
	}
	if req.TimeFrame != "" && c.StartDate == "" && c.EndDate == "" {
		start, end, err := timeframe.Resolve(timeframe.Frame(req.TimeFrame), time.Now())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.StartDate = start.Format("2006-01-02")
		c.EndDate = end.Format("2006-01-02")
	}

	agg := h.agg.Load()
	var events []event.Event
	if cfg.Search.Concurrent {
		events = agg.SearchEventsConcurrent(r.Context(), c)
	} else {
		events = agg.SearchEvents(r.Context(), c)
	}
	if events == nil {
		events = []event.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
		"stats":  recommend.Summarize(events, time.Now()),
	})
}

type recommendRequest struct {
	Preferences event.UserPreferences `json:"preferences"`
	Events      []event.Event         `json:"events"`
}

// POST /v1/recommendations — general-purpose ranking, top twenty back.
// Accessibility requirements and the preferred date window are hard
// constraints applied before scoring; categories, budget, and neighborhoods
// only influence the ranking.
func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	candidates := recommend.Filter(req.Events, filterOptions(req.Preferences, time.Now()))
	ranked := recommend.Recommend(candidates, req.Preferences)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": ranked,
		"count":  len(ranked),
	})
}

// filterOptions derives the hard constraints from a preference profile. An
// explicit date range wins over the named time frame.
func filterOptions(prefs event.UserPreferences, now time.Time) recommend.FilterOptions {
	opts := recommend.FilterOptions{Accessibility: prefs.AccessibilityRequirements}
	if len(prefs.DateRange) == 2 {
		opts.StartDate, opts.EndDate = prefs.DateRange[0], prefs.DateRange[1]
	} else if prefs.TimeFrame != "" {
		if start, end, ok := timeframe.ForPreference(prefs.TimeFrame, now); ok {
			opts.StartDate, opts.EndDate = event.NewDate(start), event.NewDate(end)
		}
	}
	return opts
}

type annotateRequest struct {
	Query string `json:"query"`
}

// POST /v1/query/annotate — inline date-range annotation of time-frame
// phrases for the conversational agent.
func (h *Handler) annotateQuery(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"query": timeframe.Annotate(req.Query, time.Now()),
	})
}

// POST /v1/config/reload — re-read the config from disk without waiting for
// the file watcher. Reload fires the loader's change callbacks synchronously,
// so the aggregator rebuild registered in main has completed by the time we
// report the source list.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"sources":  h.agg.Load().AvailableSources(),
	})
}

// GET /v1/categories — per-source category listings.
func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agg.Load().Categories(r.Context()))
}

// GET /v1/sources — configured adapters and their availability.
func (h *Handler) sources(w http.ResponseWriter, r *http.Request) {
	agg := h.agg.Load()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available": agg.AvailableSources(),
		"status":    agg.SourceStatus(),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 until an aggregator with at least one source is wired.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	agg := h.agg.Load()
	if agg == nil || len(agg.AvailableSources()) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no sources"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"sources": len(agg.AvailableSources()),
	})
}

// gateQuery enforces the conversational cooldown on tool endpoints.
func (h *Handler) gateQuery(w http.ResponseWriter) bool {
	if h.cooldown.allow() {
		return true
	}
	metrics.QueriesRejected.Inc()
	writeError(w, http.StatusTooManyRequests,
		"please wait a few seconds before your next query")
	return false
}

// cooldownGate enforces a minimum interval between accepted queries. It is
// separate from the per-adapter rate gates, which protect upstreams rather
// than the conversational flow.
type cooldownGate struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

func newCooldownGate(interval time.Duration) *cooldownGate {
	return &cooldownGate{interval: interval}
}

func (g *cooldownGate) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}
