package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository/postgres"
	"lavarenta-backend/internal/security"
	"lavarenta-backend/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// Server is the HTTP surface over the operation families. Handlers stay
// thin: decode, call the service, encode.
type Server struct {
	store       *postgres.Store
	tokens      security.TokenManager
	auth        service.AuthService
	admin       service.AdminService
	delivery    service.DeliveryService
	pickup      service.PickupService
	change      service.ChangeService
	extension   service.ExtensionService
	maintenance service.MaintenanceService
	evidenceDir string
}

func NewServer(store *postgres.Store, tokens security.TokenManager, auth service.AuthService, admin service.AdminService,
	delivery service.DeliveryService, pickup service.PickupService, change service.ChangeService,
	extension service.ExtensionService, maintenance service.MaintenanceService, evidenceDir string) *Server {
	return &Server{
		store:       store,
		tokens:      tokens,
		auth:        auth,
		admin:       admin,
		delivery:    delivery,
		pickup:      pickup,
		change:      change,
		extension:   extension,
		maintenance: maintenance,
		evidenceDir: evidenceDir,
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	for _, kind := range []string{"deliveries", "pickups", "changes"} {
		kind := kind
		api.HandleFunc("/"+kind, s.handleSaveTask(kind)).Methods(http.MethodPost)
		api.HandleFunc("/"+kind, s.handleListTasksByDay(kind)).Methods(http.MethodGet)
		api.HandleFunc("/"+kind+"/{id}/assign", s.handleAssignTask(kind)).Methods(http.MethodPost)
		api.HandleFunc("/"+kind+"/{id}/complete", s.handleCompleteTask(kind)).Methods(http.MethodPost)
		api.HandleFunc("/"+kind+"/{id}/cancel", s.handleCancelTask(kind)).Methods(http.MethodPost)
		api.HandleFunc("/"+kind+"/{id}/time", s.handleUpdateTaskTime(kind)).Methods(http.MethodPut)
	}

	api.HandleFunc("/rents", s.handleRegisterRent).Methods(http.MethodPost)
	api.HandleFunc("/rents/{id}", s.handleGetRent).Methods(http.MethodGet)
	api.HandleFunc("/rents/{id}/extend", s.handleExtendRent).Methods(http.MethodPost)
	api.HandleFunc("/rents/{id}/payday", s.handleChangePayDay).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/movements", s.handleListCustomerMovements).Methods(http.MethodGet)
	api.HandleFunc("/partners/{id}/payouts", s.handleListPartnerPayouts).Methods(http.MethodGet)

	api.HandleFunc("/maintenance/receive", s.handleReceiveEquipment).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/start", s.handleStartMaintenance).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/{id}/products", s.handleAddUsedProduct).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/{id}/complete", s.handleCompleteMaintenance).Methods(http.MethodPost)

	api.HandleFunc("/machines", s.handleRegisterMachine).Methods(http.MethodPost)
	api.HandleFunc("/machines", s.handleListMachinesByStatus).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/machines", s.handleListVehicleMachines).Methods(http.MethodGet)

	api.HandleFunc("/operators/{id}/unblock", s.handleUnblockOperator).Methods(http.MethodPost)

	// completion evidence served straight off the volume
	r.PathPrefix("/evidence/").Handler(
		http.StripPrefix("/evidence/", http.FileServer(http.Dir(s.evidenceDir))))

	return r
}

// authMiddleware validates the bearer token and stashes its claims
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.Type != security.TokenTypeAccess {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actingUser returns the authenticated operator's id
func actingUser(r *http.Request) int64 {
	claims, _ := r.Context().Value(claimsKey).(*security.OperatorClaims)
	if claims == nil {
		return 0
	}
	return claims.OperatorID
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain precondition violations to client statuses
// and hides everything else behind a generic retry message
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case domain.CodeNotFound:
			status = http.StatusNotFound
		case domain.CodeDuplicate:
			status = http.StatusConflict
		}
		writeJSON(w, status, de)
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "ocurrió un error, intenta de nuevo")
}
