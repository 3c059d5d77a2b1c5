package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RecordsHandler serves the medical record viewer and editor screens.
type RecordsHandler struct {
	proxy *Proxy
}

// NewRecordsHandler creates the medical records surface.
func NewRecordsHandler(proxy *Proxy) *RecordsHandler {
	return &RecordsHandler{proxy: proxy}
}

// List handles GET /patient/records: the caller's own records.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodGet, "/api/records", "records")
}

// Get handles GET /patient/records/{recordID}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")
	h.proxy.Forward(w, r, http.MethodGet, "/api/records/"+id, "records")
}

// PatientRecords handles GET /doctor/patients/{patientID}/records.
func (h *RecordsHandler) PatientRecords(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	h.proxy.Forward(w, r, http.MethodGet, "/api/records/patient/"+patientID, "records")
}

// Create handles POST /doctor/records.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, http.MethodPost, "/api/records", "records")
}

// Update handles PUT /doctor/records/{recordID}.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordID")
	h.proxy.Forward(w, r, http.MethodPut, "/api/records/"+id, "records")
}
