package http

import (
	"net/http"

	"dental-clinic-booking/internal/delivery/http/handler"
	"dental-clinic-booking/internal/delivery/http/middleware"
	"dental-clinic-booking/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router                 *mux.Router
	log                    *logrus.Logger
	authHandler            *handler.AuthHandler
	appointmentHandler     *handler.AppointmentHandler
	appointmentTypeHandler *handler.AppointmentTypeHandler
	doctorHandler          *handler.DoctorHandler
	auditLogHandler        *handler.AuditLogHandler
	authMiddleware         *middleware.AuthMiddleware
	corsMiddleware         *middleware.CORSMiddleware
	loginLimiter           *middleware.RateLimiter
}

func NewRouter(
	log *logrus.Logger,
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	appointmentTypeHandler *handler.AppointmentTypeHandler,
	doctorHandler *handler.DoctorHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loginLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		router:                 mux.NewRouter(),
		log:                    log,
		authHandler:            authHandler,
		appointmentHandler:     appointmentHandler,
		appointmentTypeHandler: appointmentTypeHandler,
		doctorHandler:          doctorHandler,
		auditLogHandler:        auditLogHandler,
		authMiddleware:         authMiddleware,
		corsMiddleware:         corsMiddleware,
		loginLimiter:           loginLimiter,
	}
}

// Setup registers every route and returns the root handler. CORS and access
// logging wrap the mux so preflight requests never reach route matching.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/login", r.loginLimiter.Limit(http.HandlerFunc(r.authHandler.Login))).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Reference data (public)
	api.HandleFunc("/appointment-types", r.appointmentTypeHandler.GetAllAppointmentTypes).Methods(http.MethodGet)
	api.HandleFunc("/appointment-types/{id:[0-9]+}", r.appointmentTypeHandler.GetAppointmentType).Methods(http.MethodGet)

	// Doctors (authenticated)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)

	// Appointments (authenticated)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("/check-availability", r.appointmentHandler.CheckAvailability).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/{id:[0-9]+}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id:[0-9]+}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPatch)
	appointments.Handle("/{id:[0-9]+}/confirm", middleware.RequireDoctor(http.HandlerFunc(r.appointmentHandler.ConfirmAppointment))).Methods(http.MethodPatch)
	appointments.Handle("/{id:[0-9]+}/complete", middleware.RequireDoctor(http.HandlerFunc(r.appointmentHandler.CompleteAppointment))).Methods(http.MethodPatch)

	// Audit logs (doctor only)
	auditLogs := api.PathPrefix("/audit-logs").Subrouter()
	auditLogs.Use(r.authMiddleware.Authenticate)
	auditLogs.Use(middleware.RequireDoctor)
	auditLogs.HandleFunc("", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	auditLogs.HandleFunc("/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return middleware.RequestLogger(r.log)(r.corsMiddleware.Handle(r.router))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
