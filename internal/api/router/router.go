package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/auth"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/http/handlers"
	httpmiddleware "github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/http/middleware"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/internal/session"
	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	SessionManager *session.Manager
	Cookies        *auth.CookieManager

	AuthHandler  *handlers.AuthHandler
	Dashboard    *handlers.DashboardHandler
	Appointments *handlers.AppointmentsHandler
	Records      *handlers.RecordsHandler
	Messages     *handlers.MessagesHandler
	Admin        *handlers.AdminHandler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.WithSession(cfg.SessionManager, cfg.Cookies))

	// Public endpoints
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Get(auth.LoginPath, cfg.AuthHandler.LoginPage)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	// Any authenticated user
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.RequireRoles())
		private.Get("/profile", cfg.AuthHandler.Profile)
		private.Put("/profile", cfg.AuthHandler.UpdateProfile)
	})

	// Patient screens
	r.Route("/patient", func(patient chi.Router) {
		patient.Use(httpmiddleware.RequireRoles(auth.RolePatient))
		patient.Get("/dashboard", cfg.Dashboard.Patient)
		patient.Get("/doctors", cfg.Appointments.Doctors)
		patient.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.Appointments.List)
			r.Post("/", cfg.Appointments.Book)
			r.Delete("/{appointmentID}", cfg.Appointments.Cancel)
		})
		patient.Route("/records", func(r chi.Router) {
			r.Get("/", cfg.Records.List)
			r.Get("/{recordID}", cfg.Records.Get)
		})
	})

	// Doctor screens
	r.Route("/doctor", func(doctor chi.Router) {
		doctor.Use(httpmiddleware.RequireRoles(auth.RoleDoctor))
		doctor.Get("/dashboard", cfg.Dashboard.Doctor)
		doctor.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.Appointments.DoctorList)
			r.Put("/{appointmentID}/status", cfg.Appointments.UpdateStatus)
		})
		doctor.Get("/patients/{patientID}/records", cfg.Records.PatientRecords)
		doctor.Route("/records", func(r chi.Router) {
			r.Post("/", cfg.Records.Create)
			r.Put("/{recordID}", cfg.Records.Update)
		})
	})

	// Messaging inbox, shared between patients and doctors
	r.Route("/messages", func(messages chi.Router) {
		messages.Use(httpmiddleware.RequireRoles(auth.RolePatient, auth.RoleDoctor))
		messages.Get("/", cfg.Messages.Inbox)
		messages.Get("/{userID}", cfg.Messages.Thread)
		messages.Post("/", cfg.Messages.Send)
	})

	// Admin screens
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.RequireRoles(auth.RoleAdmin))
		admin.Get("/dashboard", cfg.Dashboard.Admin)
		admin.Mount("/", cfg.Admin.Routes())
	})

	// Root and unmatched paths resolve to the role's landing page.
	r.Get("/", httpmiddleware.DefaultRoute())
	r.NotFound(httpmiddleware.DefaultRoute())

	return r
}
