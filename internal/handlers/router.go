package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/idi-foods/xorobridge/internal/config"
	"github.com/idi-foods/xorobridge/internal/database"
	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/middleware"
	"github.com/idi-foods/xorobridge/internal/orders"
)

// Router wraps the mux router and the services behind the admin API
type Router struct {
	*mux.Router
	db       *database.DB
	store    *mapping.Store
	resolver *mapping.Resolver
	orders   *orders.Service
	cfg      *config.Config
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, store *mapping.Store, resolver *mapping.Resolver, orderSvc *orders.Service, cfg *config.Config) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		store:    store,
		resolver: resolver,
		orders:   orderSvc,
		cfg:      cfg,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")
	api.HandleFunc("/resolve/item", r.resolveItem).Methods("POST")

	// Mapping administration (protected)
	mappings := r.PathPrefix("/api/mappings").Subrouter()
	mappings.Use(middleware.Auth(cfg.JWTSecret))

	mappings.HandleFunc("/items", r.listItemMappings).Methods("GET")
	mappings.HandleFunc("/items", r.upsertItemMapping).Methods("POST", "PUT")
	mappings.HandleFunc("/items", r.deleteItemMappings).Methods("DELETE")
	mappings.HandleFunc("/items/bulk", r.bulkItemMappings).Methods("POST")
	mappings.HandleFunc("/items/export", r.exportItemMappings).Methods("GET")

	mappings.HandleFunc("/stores", r.listStoreMappings).Methods("GET")
	mappings.HandleFunc("/stores", r.upsertStoreMapping).Methods("POST", "PUT")
	mappings.HandleFunc("/stores", r.deleteStoreMappings).Methods("DELETE")
	mappings.HandleFunc("/stores/bulk", r.bulkStoreMappings).Methods("POST")

	mappings.HandleFunc("/customers", r.listCustomerMappings).Methods("GET")
	mappings.HandleFunc("/customers", r.upsertCustomerMapping).Methods("POST", "PUT")
	mappings.HandleFunc("/customers", r.deleteCustomerMappings).Methods("DELETE")
	mappings.HandleFunc("/customers/bulk", r.bulkCustomerMappings).Methods("POST")

	// Conversion log (protected)
	history := r.PathPrefix("/api/history").Subrouter()
	history.Use(middleware.Auth(cfg.JWTSecret))
	history.HandleFunc("", r.getHistory).Methods("GET")

	processed := r.PathPrefix("/api/orders").Subrouter()
	processed.Use(middleware.Auth(cfg.JWTSecret))
	processed.HandleFunc("", r.getOrders).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"version": "1.0.0",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
