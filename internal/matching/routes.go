package matching

import (
	"github.com/gorilla/mux"
	"github.com/rentwise/rentwise-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Ranked matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches", handler.SearchMatches).Methods("POST")
	api.HandleFunc("/matches/top", handler.GetTopMatches).Methods("GET")
	api.HandleFunc("/matches/detailed", handler.GetDetailedMatches).Methods("GET")
	api.HandleFunc("/matches/cache", handler.RefreshMatches).Methods("DELETE")

	// Single property and search
	api.HandleFunc("/properties/{id}", handler.GetPropertyMatch).Methods("GET")
	api.HandleFunc("/search", handler.SearchProperties).Methods("GET")

	// Configuration
	api.HandleFunc("/weights", handler.GetWeights).Methods("GET")
}
