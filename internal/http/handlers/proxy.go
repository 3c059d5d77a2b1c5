package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/observability/metrics"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/upstream"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

// Proxy forwards page-level calls to the records API. The API is opaque:
// status and body pass through unmodified. When the API answers 401 the
// AuthTransport has already cleared the session, so the browser is sent to
// the login page instead of the dead response, unless it is already there.
type Proxy struct {
	api     *upstream.Client
	logger  *logging.Logger
	metrics *metrics.PortalMetrics
}

// NewProxy creates a proxy over the records API client.
func NewProxy(api *upstream.Client, logger *logging.Logger, m *metrics.PortalMetrics) *Proxy {
	if logger == nil {
		logger = logging.Default()
	}
	return &Proxy{api: api, logger: logger, metrics: m}
}

// Forward performs the upstream call and streams the response back.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request, method, upstreamPath, resource string) {
	start := time.Now()

	resp, err := p.api.Do(r.Context(), method, upstreamPath, r.URL.Query(), r.Body)
	if err != nil {
		p.logger.Error("upstream call failed", "resource", resource, "error", err)
		p.metrics.ObserveUpstream(resource, "error", time.Since(start).Seconds())
		writeError(w, http.StatusBadGateway, "records service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	p.metrics.ObserveUpstream(resource, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized && r.URL.Path != auth.LoginPath {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Warn("response copy interrupted", "resource", resource, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
