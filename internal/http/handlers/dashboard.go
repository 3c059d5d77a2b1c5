package handlers

import "net/http"

// DashboardHandler serves the role landing pages. Each proxies the matching
// summary endpoint so the screen renders from one call.
type DashboardHandler struct {
	proxy *Proxy
}

// NewDashboardHandler creates the dashboard surface.
func NewDashboardHandler(proxy *Proxy) *DashboardHandler {
	return &DashboardHandler{proxy: proxy}
}

// Patient handles GET /patient/dashboard.
func (h *DashboardHandler) Patient(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/dashboard/patient", "dashboard")
}

// Doctor handles GET /doctor/dashboard.
func (h *DashboardHandler) Doctor(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/dashboard/doctor", "dashboard")
}

// Admin handles GET /admin/dashboard.
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/dashboard/admin", "dashboard")
}
