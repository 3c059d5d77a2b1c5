package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AppointmentsHandler serves the booking screens for patients and doctors.
// All data lives in the records API; these are role-gated pass-throughs.
type AppointmentsHandler struct {
	proxy *Proxy
}

// NewAppointmentsHandler creates the appointments surface.
func NewAppointmentsHandler(proxy *Proxy) *AppointmentsHandler {
	return &AppointmentsHandler{proxy: proxy}
}

// List handles GET /patient/appointments.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/appointments", "appointments")
}

// Book handles POST /patient/appointments.
func (h *AppointmentsHandler) Book(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPost, "/api/appointments", "appointments")
}

// Cancel handles DELETE /patient/appointments/{appointmentID}.
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	h.proxy.Forward(w, r, http.MethodDelete, "/api/appointments/"+id, "appointments")
}

// Doctors handles GET /patient/doctors, the booking form's doctor picker.
func (h *AppointmentsHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/doctors", "doctors")
}

// DoctorList handles GET /doctor/appointments.
func (h *AppointmentsHandler) DoctorList(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/appointments/doctor", "appointments")
}

// UpdateStatus handles PUT /doctor/appointments/{appointmentID}/status
// (confirm, complete, cancel).
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	h.proxy.Forward(w, r, http.MethodPut, "/api/appointments/"+id+"/status", "appointments")
}
