package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves the admin CRUD screens: users, appointments, records,
// notices, and system settings. Admin-only; the guard enforces the role.
type AdminHandler struct {
	proxy *Proxy
}

// NewAdminHandler creates the admin surface.
func NewAdminHandler(proxy *Proxy) *AdminHandler {
	return &AdminHandler{proxy: proxy}
}

// Routes mounts the admin CRUD subtree.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{userID}", h.getUser)
		r.Put("/{userID}", h.updateUser)
		r.Delete("/{userID}", h.deleteUser)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.listAppointments)
		r.Put("/{appointmentID}", h.updateAppointment)
		r.Delete("/{appointmentID}", h.deleteAppointment)
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/", h.listRecords)
		r.Delete("/{recordID}", h.deleteRecord)
	})

	r.Route("/notices", func(r chi.Router) {
		r.Get("/", h.listNotices)
		r.Post("/", h.createNotice)
		r.Delete("/{noticeID}", h.deleteNotice)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.getSettings)
		r.Put("/", h.updateSettings)
	})

	return r
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/users", "admin_users")
}

func (h *AdminHandler) createUser(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPost, "/api/admin/users", "admin_users")
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/users/"+chi.URLParam(r, "userID"), "admin_users")
}

func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPut, "/api/admin/users/"+chi.URLParam(r, "userID"), "admin_users")
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodDelete, "/api/admin/users/"+chi.URLParam(r, "userID"), "admin_users")
}

func (h *AdminHandler) listAppointments(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/appointments", "admin_appointments")
}

func (h *AdminHandler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPut, "/api/admin/appointments/"+chi.URLParam(r, "appointmentID"), "admin_appointments")
}

func (h *AdminHandler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodDelete, "/api/admin/appointments/"+chi.URLParam(r, "appointmentID"), "admin_appointments")
}

func (h *AdminHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/records", "admin_records")
}

func (h *AdminHandler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodDelete, "/api/admin/records/"+chi.URLParam(r, "recordID"), "admin_records")
}

func (h *AdminHandler) listNotices(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/notices", "admin_notices")
}

func (h *AdminHandler) createNotice(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPost, "/api/admin/notices", "admin_notices")
}

func (h *AdminHandler) deleteNotice(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodDelete, "/api/admin/notices/"+chi.URLParam(r, "noticeID"), "admin_notices")
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/admin/settings", "admin_settings")
}

func (h *AdminHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPut, "/api/admin/settings", "admin_settings")
}
