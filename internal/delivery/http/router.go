package http

import (
	"net/http"

	"healgenie-portal/internal/delivery/http/handler"
	"healgenie-portal/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	authHandler     *handler.AuthHandler
	profileHandler  *handler.ProfileHandler
	doctorHandler   *handler.DoctorHandler
	patientHandler  *handler.PatientHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		authHandler:     authHandler,
		profileHandler:  profileHandler,
		doctorHandler:   doctorHandler,
		patientHandler:  patientHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Health check
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := r.router.PathPrefix("/auth/v1").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/token", r.authHandler.Token).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := r.router.PathPrefix("/auth/v1").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/user", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/user/audit_logs", r.auditLogHandler.ListOwnActivity).Methods(http.MethodGet)

	// Doctor-only routes
	doctor := r.router.PathPrefix("/rest/v1/patients").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("", r.patientHandler.SearchPatients).Methods(http.MethodGet)
	doctor.HandleFunc("/{id}/record", r.patientHandler.GetPatientRecord).Methods(http.MethodGet)

	// Record routes; row ownership is checked in the usecases
	rest := r.router.PathPrefix("/rest/v1").Subrouter()
	rest.Use(r.authMiddleware.Authenticate)
	rest.HandleFunc("/profiles/{id}", r.profileHandler.GetProfile).Methods(http.MethodGet)
	rest.HandleFunc("/profiles/{id}", r.profileHandler.UpdateProfile).Methods(http.MethodPatch)
	rest.HandleFunc("/doctor_profiles/{id}", r.doctorHandler.GetDoctorProfile).Methods(http.MethodGet)
	rest.HandleFunc("/doctor_profiles/{id}", r.doctorHandler.UpdateDoctorProfile).Methods(http.MethodPatch)
	rest.HandleFunc("/patient_profiles/{id}", r.patientHandler.GetPatientProfile).Methods(http.MethodGet)
	rest.HandleFunc("/patient_profiles/{id}", r.patientHandler.UpdatePatientProfile).Methods(http.MethodPatch)
	rest.HandleFunc("/profile_symbols", r.profileHandler.ListProfileSymbols).Methods(http.MethodGet)
	rest.HandleFunc("/profile_symbols/{id}", r.profileHandler.GetProfileSymbol).Methods(http.MethodGet)
	rest.HandleFunc("/prescriptions", r.patientHandler.ListOwnPrescriptions).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
